package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
	"github.com/wareflow/ruleengine/internal/rule"
)

var (
	exportOutput string
)

// ExportFormat represents the structure for exporting rules. Rule documents
// travel as generic maps so the YAML encoding keeps the same key casing as
// the JSON wire format.
type ExportFormat struct {
	Rules []map[string]any `yaml:"rules" json:"rules"`
}

// rulesToDocuments converts typed rules to their wire-format maps.
func rulesToDocuments(rules []rule.Rule) ([]map[string]any, error) {
	docs := make([]map[string]any, 0, len(rules))
	for _, r := range rules {
		blob, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule '%s': %w", r.RuleID, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(blob, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode rule '%s': %w", r.RuleID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export rules to a file",
	Long: `Export all rules from the specified environment to a YAML or JSON file.

Examples:
  rulectl export --env prod --output rules.yaml
  rulectl export --env prod --output rules.json --format json
  rulectl export --env prod > backup.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get environment configuration
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		// List rules
		ctx := context.Background()
		rules, err := c.ListRules(ctx)
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}

		docs, err := rulesToDocuments(rules)
		if err != nil {
			return err
		}
		exportData := ExportFormat{Rules: docs}

		// Determine output destination
		var output *os.File
		if exportOutput == "" || exportOutput == "-" {
			output = os.Stdout
		} else {
			output, err = os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer output.Close()
		}

		// Export based on format
		switch format {
		case "json":
			encoder := json.NewEncoder(output)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
		case "yaml", "table":
			// Default to YAML for export
			encoder := yaml.NewEncoder(output)
			defer encoder.Close()
			encoder.SetIndent(2)
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
		default:
			return fmt.Errorf("unsupported export format: %s", format)
		}

		if exportOutput != "" && exportOutput != "-" && !quiet {
			fmt.Fprintf(os.Stderr, "Successfully exported %d rule(s) to %s\n", len(rules), exportOutput)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}
