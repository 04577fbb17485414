package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"vaultchat/config"
	"vaultchat/model"
	"vaultchat/storage"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the stored conversation",
	}

	historyClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored conversation",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}

	historyExportCmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the stored conversation to a JSON file",
		Long: `Writes the stored conversation to path.
Without a path the file goes to ~/Downloads/vaultchat-<timestamp>.json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryExport,
	}

	historyCmd.AddCommand(historyClearCmd, historyExportCmd)
	return historyCmd
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.newSession()
	if err != nil {
		return err
	}

	if err := session.ClearHistory(); err != nil {
		return errors.New(model.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	exportPath := storage.GenerateExportPath()
	if len(args) == 1 {
		exportPath = config.ExpandPath(args[0])
	}

	if err := config.EnsureDir(filepath.Dir(exportPath)); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := a.archive.Export(exportPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(a.archive.Load()), exportPath)
	return nil
}
