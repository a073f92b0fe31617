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

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a rule document without storing it",
	Long: `Validate a JSON rule document against the server's field catalog and
action registry. Reports every finding with its machine-readable code.

Examples:
  rulectl validate rules/low-stock.json --env staging
  rulectl validate rules/low-stock.json --env prod --format json`,
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

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		result, err := c.ValidateRule(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to validate rule: %w", err)
		}

		if format == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		if result.Valid {
			fmt.Printf("Rule '%s' is valid\n", doc.RuleID)
			return nil
		}

		fmt.Printf("Rule '%s' has %d validation error(s):\n", doc.RuleID, len(result.Errors))
		for _, e := range result.Errors {
			printFinding(e)
		}
		return fmt.Errorf("validation failed")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
