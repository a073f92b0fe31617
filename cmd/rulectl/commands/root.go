package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rulectl",
	Short: "CLI tool for managing business rules",
	Long: `Rulectl is a command-line tool for managing business rules in the rule engine service.

It provides commands for creating, reading, validating, testing, and deleting
rules, as well as importing and exporting rule configurations.

Examples:
  rulectl list --env prod
  rulectl create rules/low-stock.json --env prod
  rulectl get low-stock-alert --env prod
  rulectl test low-stock-alert context.json --env staging
  rulectl export --env prod --output rules.yaml
  rulectl import rules.yaml --env staging`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the rule engine API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (dev, staging, prod)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
