// Package main is the entry point for the syncboard CLI.
//
// SyncBoard can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	syncboard serve -c config.yaml      # Start the dashboard
//	syncboard validate -c config.yaml   # Validate configuration
//	syncboard payload -f form.json ...  # Normalize a date-range form
//	syncboard version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "syncboard",
	Short: "A dashboard of charts that pan together",
	Long: `SyncBoard is a dashboard of time-series charts whose date windows
stay synchronized.

Panning any visible chart moves every other visible chart, and the
reference overview, to the same window. Changes stream to the browser
with Server-Sent Events.

Quick start:
  1. Create a config file (syncboard.yaml)
  2. Run: syncboard serve -c syncboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  window:
    lookback: 336h
  charts:
    - name: Overview
      reference: true
    - name: CPU
    - name: Memory`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this syncboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("syncboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
