package cmd

import (
	"github.com/spf13/cobra"
)

var modelOverride string

// NewRootCmd builds the vaultchat command tree. Running it without a
// subcommand opens the chat window.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vaultchat",
		Short: "Terminal chat client for OpenRouter",
		Long: `vaultchat talks to OpenRouter's chat completion API from the terminal.

The API key is kept in the operating system's keychain and never written to
disk by vaultchat. The conversation is mirrored to conversation.json in the
data directory and restored on the next start.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}

	rootCmd.PersistentFlags().StringVarP(&modelOverride, "model", "m", "", "Model identifier for this run (overrides config.toml)")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newKeyCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newUsageCmd())

	return rootCmd
}
