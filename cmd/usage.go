package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	usageReset bool
	usageJSON  bool
)

func newUsageCmd() *cobra.Command {
	usageCmd := &cobra.Command{
		Use:   "usage",
		Short: "Show token usage per model",
		Long: `Prints the prompt and completion tokens OpenRouter reported for every
successful request, grouped by model. Only counts are stored, never message
text.`,
		Args: cobra.NoArgs,
		RunE: runUsage,
	}

	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "Delete all recorded usage")
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Print usage as JSON")

	return usageCmd
}

func runUsage(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ledger, err := a.openUsage()
	if err != nil {
		return fmt.Errorf("failed to open usage ledger: %w", err)
	}

	out := cmd.OutOrStdout()

	if usageReset {
		if err := ledger.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Usage history cleared.")
		return nil
	}

	totals, err := ledger.Totals()
	if err != nil {
		return err
	}

	if usageJSON {
		type modelRow struct {
			Model            string `json:"model"`
			Requests         int64  `json:"requests"`
			PromptTokens     int64  `json:"prompt_tokens"`
			CompletionTokens int64  `json:"completion_tokens"`
		}
		rows := make([]modelRow, 0, len(totals))
		for _, t := range totals {
			rows = append(rows, modelRow{t.Model, t.Requests, t.PromptTokens, t.CompletionTokens})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Models []modelRow `json:"models"`
		}{Models: rows})
	}

	if len(totals) == 0 {
		fmt.Fprintln(out, "No usage recorded yet.")
		return nil
	}

	var requests, prompt, completion int64
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MODEL\tREQUESTS\tPROMPT\tCOMPLETION")
	fmt.Fprintln(w, "-----\t--------\t------\t----------")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Model, t.Requests, t.PromptTokens, t.CompletionTokens)
		requests += t.Requests
		prompt += t.PromptTokens
		completion += t.CompletionTokens
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\n", requests, prompt, completion)
	return w.Flush()
}
