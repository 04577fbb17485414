package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"vaultchat/ui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the chat window (default command)",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		showStartupError("Configuration Error", err)
		return err
	}
	defer a.close()

	session, err := a.newSession()
	if err != nil {
		showStartupError("Startup Error", err)
		return err
	}

	p := tea.NewProgram(
		ui.NewAppView(cmd.Context(), session, a.cfg.Keybindings, a.modelName()),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running vaultchat: %w", err)
	}
	return nil
}

func showStartupError(title string, err error) {
	p := tea.NewProgram(
		ui.NewErrorModal(title, err.Error()),
		tea.WithAltScreen(),
	)
	// The error is still returned to the caller if the modal cannot run
	_, _ = p.Run()
}
