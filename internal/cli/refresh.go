package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/data-ashita/monitor-dash/internal/models"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a snapshot recompute for a window",
	Example: `  dashctl refresh
  dashctl refresh --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		days, _ := cmd.Flags().GetInt("days")

		snap, err := newAPIClient(baseURL).refresh(days)
		if err != nil {
			return err
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return printJSON(snap)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recomputed %d-day snapshot: %d events, %d tasks\n",
			snap.Days, snap.TotalEvents, snap.TaskCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().Int("days", models.DefaultWindowDays, "Window size in days (1-30)")
}
