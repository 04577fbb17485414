package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"vaultchat/cmd"
)

const Version = "v0.01.00"

func main() {
	// Interrupt cancels an in-flight `ask`; the chat window handles ctrl+c itself
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.NewRootCmd(Version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
