// Package cli implements the dashctl command-line interface for
// operating the dashboard service.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "Task log dashboard CLI",
	Long: `dashctl is the command-line interface for the task log dashboard.

Inspect snapshots, force refreshes, and seed demo data from your
terminal.`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Dashboard API base URL")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}
