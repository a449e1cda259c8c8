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
		Use:   "ripple",
		Short: "Reactive state synchronization for Go",
		Long: `Ripple keeps reactive state containers synchronized across processes.

The CLI runs the hub, a websocket relay that fans state deltas out
between connected clients. Clients embed the ripple library and attach
a sync engine to their store; the hub carries the envelopes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
