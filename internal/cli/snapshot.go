package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/data-ashita/monitor-dash/internal/models"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the dashboard snapshot for a window",
	Example: `  dashctl snapshot
  dashctl snapshot --days 30
  dashctl snapshot --days 7 --refresh --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL, _ := cmd.Flags().GetString("url")
		days, _ := cmd.Flags().GetInt("days")
		refresh, _ := cmd.Flags().GetBool("refresh")

		snap, err := newAPIClient(baseURL).snapshot(days, refresh)
		if err != nil {
			return err
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return printJSON(snap)
		}
		printSnapshot(cmd, snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().Int("days", models.DefaultWindowDays, "Window size in days (1-30)")
	snapshotCmd.Flags().Bool("refresh", false, "Bypass the cache and recompute")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSnapshot(cmd *cobra.Command, snap *models.Snapshot) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Window: last %d days (fetched %s)\n", snap.Days, snap.FetchedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Events: %d  Tasks: %d  Success rate: %.1f%%\n", snap.TotalEvents, snap.TaskCount, snap.SuccessRate)

	if snap.Alert.HasAlert {
		fmt.Fprintf(out, "ALERT: %d failure events across %d tasks: %v\n",
			snap.Alert.FailureCount, len(snap.Alert.FailedTasks), snap.Alert.FailedTasks)
	} else {
		fmt.Fprintln(out, "No failures in window")
	}

	if len(snap.Latest) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tLEVEL\tLAST RUN\tMESSAGE")
	for _, st := range snap.Latest {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.TaskName, st.Level, st.LastRun.Format(time.RFC3339), st.Message)
	}
	w.Flush()
}
