package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
	"github.com/wareflow/ruleengine/internal/rule"
)

var (
	listEnabledOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rules",
	Long: `List all rules in the specified environment.

Examples:
  rulectl list --env prod
  rulectl list --env prod --format json
  rulectl list --env prod --enabled-only`,
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

		// Filter enabled only if requested
		if listEnabledOnly {
			var enabled []rule.Rule
			for _, r := range rules {
				if r.Enabled {
					enabled = append(enabled, r)
				}
			}
			rules = enabled
		}

		if !quiet {
			if len(rules) == 0 {
				fmt.Println("No rules found")
				return nil
			}
			return cli.PrintRules(rules, cli.OutputFormat(format))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listEnabledOnly, "enabled-only", false, "Show only enabled rules")
}
