package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/cli"
	"github.com/wareflow/ruleengine/internal/client"
)

var (
	deleteYes bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule",
	Long: `Delete a rule by id. The delete is idempotent: removing a rule that
does not exist succeeds.

Examples:
  rulectl delete low-stock-alert --env staging
  rulectl delete low-stock-alert --env prod --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleID := args[0]

		if !deleteYes {
			fmt.Printf("Delete rule '%s'? [y/N]: ", ruleID)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		if err := c.DeleteRule(ctx, ruleID); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}

		if !quiet {
			fmt.Printf("Deleted rule '%s'\n", ruleID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
}
