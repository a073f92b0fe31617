package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
)

var (
	testExecute bool
)

var testCmd = &cobra.Command{
	Use:   "test <rule-id> <context-file>",
	Short: "Test a stored rule against a context",
	Long: `Evaluate a stored rule against a JSON context document. By default
only the condition tree is evaluated; pass --execute to also run the rule's
actions when it matches.

Examples:
  rulectl test low-stock-alert context.json --env staging
  rulectl test low-stock-alert context.json --env staging --execute`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleID := args[0]
		contextFile := args[1]

		data, err := os.ReadFile(contextFile)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}

		var evalCtx map[string]any
		if err := json.Unmarshal(data, &evalCtx); err != nil {
			return fmt.Errorf("failed to parse context file: %w", err)
		}

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		result, err := c.TestRule(ctx, ruleID, evalCtx, testExecute)
		if err != nil {
			return fmt.Errorf("failed to test rule: %w", err)
		}

		if format == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		if result.Matched {
			fmt.Printf("Rule '%s' MATCHED\n", result.RuleID)
		} else {
			fmt.Printf("Rule '%s' did not match\n", result.RuleID)
		}

		for _, a := range result.Actions {
			if a.Error != "" {
				fmt.Printf("  action %s: %s (%s)\n", a.ActionID, a.Status, a.Error)
			} else {
				fmt.Printf("  action %s: %s\n", a.ActionID, a.Status)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().BoolVar(&testExecute, "execute", false, "Run the rule's actions when it matches")
}
