package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Fine-grained reactive state server",
		Long: `Reflow tracks reads and writes of shared state at key granularity
and re-runs only the observers whose inputs actually changed.

The serve command hosts a WebSocket endpoint where each client gets
its own reactive store: clients subscribe to keys, mutate the store,
and receive coalesced patches with exactly the values that changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
