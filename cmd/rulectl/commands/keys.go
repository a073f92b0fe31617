package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wareflow/ruleengine/internal/auth"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long:  `Generate API keys for the rule engine service.`,
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API key",
	Long: `Generate a new API key and its bcrypt hash.

The plain key is shown once and handed to the caller; the hash goes into the
server's ADMIN_API_KEY or CLIENT_API_KEY environment variable so the plain
key never has to be stored on the server side.

Example:
  rulectl keys generate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}

		hash, err := auth.HashAPIKey(key)
		if err != nil {
			return fmt.Errorf("failed to hash key: %w", err)
		}

		fmt.Println("API key (shown once, give this to the caller):")
		fmt.Printf("  %s\n\n", key)
		fmt.Println("Hash (set as ADMIN_API_KEY or CLIENT_API_KEY on the server):")
		fmt.Printf("  %s\n", hash)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)
}
