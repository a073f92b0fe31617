package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
	"github.com/wareflow/ruleengine/internal/rule"
)

var (
	createSkipValidate bool
)

var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create or update a rule from a JSON document",
	Long: `Create or update a rule from a JSON rule document. The document is
validated server-side before it is stored; a document with validation errors
can only be saved disabled.

Examples:
  rulectl create rules/low-stock.json --env staging
  rulectl create rules/low-stock.json --env prod --skip-validate`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var doc rule.Rule
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse rule document: %w", err)
		}
		if doc.RuleID == "" {
			return fmt.Errorf("rule document must carry a ruleId")
		}

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		ctx := context.Background()

		if !createSkipValidate {
			result, err := c.ValidateRule(ctx, doc)
			if err != nil {
				return fmt.Errorf("failed to validate rule: %w", err)
			}
			if !result.Valid {
				fmt.Fprintf(os.Stderr, "Rule '%s' has %d validation error(s):\n", doc.RuleID, len(result.Errors))
				for _, e := range result.Errors {
					printFinding(e)
				}
				return fmt.Errorf("validation failed")
			}
		}

		if err := c.UpsertRule(ctx, doc); err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}

		if !quiet {
			fmt.Printf("Created rule '%s'\n", doc.RuleID)
		}

		return nil
	},
}

func printFinding(e rule.ValidationError) {
	if e.NodeID != "" {
		fmt.Fprintf(os.Stderr, "  - [%s] node %s: %s\n", e.Code, e.NodeID, e.Message)
	} else {
		fmt.Fprintf(os.Stderr, "  - [%s] %s\n", e.Code, e.Message)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().BoolVar(&createSkipValidate, "skip-validate", false, "Skip client-side validation call before upsert")
}
