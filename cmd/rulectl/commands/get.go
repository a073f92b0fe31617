package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
)

var getCmd = &cobra.Command{
	Use:   "get <rule-id>",
	Short: "Get a single rule",
	Long: `Get a single rule by id.

Examples:
  rulectl get low-stock-alert --env prod
  rulectl get low-stock-alert --env prod --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleID := args[0]

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		doc, err := c.GetRule(ctx, ruleID)
		if err != nil {
			return fmt.Errorf("failed to get rule: %w", err)
		}

		if !quiet {
			return cli.PrintRule(doc, cli.OutputFormat(format))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
