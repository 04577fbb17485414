package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vaultchat/model"
)

func newKeyCmd() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenRouter API key in the system keychain",
	}

	keySetCmd := &cobra.Command{
		Use:   "set",
		Short: "Store or replace the API key",
		Long: `Reads the API key without echoing it and stores it in the system keychain.
When stdin is not a terminal the first line of stdin is used:

  pass show openrouter | vaultchat key set`,
		Args: cobra.NoArgs,
		RunE: runKeySet,
	}

	keyClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the API key from the system keychain",
		Args:  cobra.NoArgs,
		RunE:  runKeyClear,
	}

	keyStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE:  runKeyStatus,
	}

	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyStatusCmd)
	return keyCmd
}

func runKeySet(cmd *cobra.Command, args []string) error {
	value, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.newSession()
	if err != nil {
		return err
	}

	if err := session.SetCredential(value); err != nil {
		return errors.New(model.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "API key saved to the system keychain.")
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.newSession()
	if err != nil {
		return err
	}

	if err := session.ClearCredential(); err != nil {
		return errors.New(model.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "API key removed. Your conversation was kept.")
	return nil
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ok, err := a.creds.Has()
	if err != nil {
		return errors.New(model.Describe(err))
	}

	if ok {
		fmt.Fprintln(cmd.OutOrStdout(), "API key: present (system keychain)")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "API key: not set")
	}
	return nil
}

// readSecret reads the key with echo disabled on a terminal, or the first
// line of in otherwise.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "OpenRouter API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
