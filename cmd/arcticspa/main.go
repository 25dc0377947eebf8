// Arcticspa is a command-line client for Arctic Spa hot tub controllers.
//
// It discovers controllers on the local network via the BlueFalls UDP probe,
// polls a controller for telemetry over its TCP control port, and can keep a
// live dashboard open with the watch command. It talks directly to the
// controller on the LAN; no cloud account is involved.
//
// Usage:
//
//	arcticspa [command] [flags]
//
// See 'arcticspa --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjhall/arcticspa/internal/logging"
	"github.com/mjhall/arcticspa/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcticspa",
	Short: "Arctic Spa Controller Client",
	Long: `A command-line client for Arctic Spa hot tub controllers.

Discovers controllers on the local subnet, polls them for live telemetry,
configuration, and Onzen water-treatment data, and streams frames to an
interactive dashboard.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent by default; ARCTICSPA_LOG_LEVEL turns logging on.
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arcticspa %s (commit: %s)\n", version.Version, version.Commit)
	},
}
