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
	importDryRun bool
	importForce  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a file",
	Long: `Import rules from a YAML or JSON export file.

Examples:
  rulectl import rules.yaml --env prod
  rulectl import rules.yaml --env staging --dry-run
  rulectl import rules.yaml --env prod --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		// Read file
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		// Parse file
		var importData ExportFormat
		if err := yaml.Unmarshal(data, &importData); err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}

		// Validate rules
		if len(importData.Rules) == 0 {
			return fmt.Errorf("no rules found in file")
		}

		if verbose {
			fmt.Printf("Found %d rule(s) to import\n", len(importData.Rules))
		}

		// Convert wire-format maps into typed rule documents
		rules := make([]rule.Rule, 0, len(importData.Rules))
		for _, raw := range importData.Rules {
			blob, err := json.Marshal(raw)
			if err != nil {
				return fmt.Errorf("failed to encode rule document: %w", err)
			}
			var doc rule.Rule
			if err := json.Unmarshal(blob, &doc); err != nil {
				return fmt.Errorf("failed to parse rule document: %w", err)
			}
			rules = append(rules, doc)
		}

		// Dry run mode - just validate and show what would be imported
		if importDryRun {
			fmt.Println("Dry run mode - the following rules would be imported:")
			for _, doc := range rules {
				fmt.Printf("  - %s (enabled: %v, actions: %d)\n",
					doc.RuleID, doc.Enabled, len(doc.Actions))
			}
			return nil
		}

		// Get environment configuration
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		ctx := context.Background()

		// Import rules
		successCount := 0
		errorCount := 0

		for _, doc := range rules {
			if verbose {
				fmt.Printf("Importing rule: %s\n", doc.RuleID)
			}

			if err := c.UpsertRule(ctx, doc); err != nil {
				errorCount++
				fmt.Fprintf(os.Stderr, "Failed to import rule '%s': %v\n", doc.RuleID, err)
				if !importForce {
					return fmt.Errorf("import failed, use --force to continue on errors")
				}
			} else {
				successCount++
			}
		}

		if !quiet {
			fmt.Printf("Import complete: %d succeeded, %d failed\n", successCount, errorCount)
		}

		if errorCount > 0 && !importForce {
			return fmt.Errorf("import completed with errors")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without importing")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Continue on errors")
}
