package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vaultchat/model"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text...>",
		Short: "Send one message and print the reply",
		Long: `Appends one message to the stored conversation, sends the whole history and
prints the reply. On failure the message is rolled back exactly as in the
chat window.

Example:
  vaultchat ask "What is the capital of France?"
  vaultchat ask --model anthropic/claude-3.5-haiku "Summarize our chat"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.newSession()
	if err != nil {
		return err
	}

	session.SetInput(strings.Join(args, " "))

	reply, err := session.Submit(cmd.Context())
	if err != nil {
		var archiveErr *model.ArchiveError
		if !errors.As(err, &archiveErr) {
			if !session.State().HasCredential {
				return fmt.Errorf("%s Run \"vaultchat key set\" first.", model.Describe(err))
			}
			return errors.New(model.Describe(err))
		}
		// The reply was accepted; only the archive write failed
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", model.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	return nil
}
