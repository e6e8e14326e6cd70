package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/data-ashita/monitor-dash/internal/seeder"
	"github.com/data-ashita/monitor-dash/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert synthetic task log events into Postgres",
	Long: `Generate synthetic task log events and insert them directly into the
task_logs table. Useful for demos and local development. Task profiles
can be customized with a YAML file; without one, a built-in fleet is
used.`,
	Example: `  dashctl seed --database-url postgres://localhost/dash
  dashctl seed --database-url $DATABASE_URL --days 30 --seed 42
  dashctl seed --database-url $DATABASE_URL --profiles fleet.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, _ := cmd.Flags().GetString("database-url")
		if databaseURL == "" {
			return fmt.Errorf("--database-url is required")
		}
		days, _ := cmd.Flags().GetInt("days")
		seed, _ := cmd.Flags().GetInt64("seed")
		profilesPath, _ := cmd.Flags().GetString("profiles")

		profiles := seeder.DefaultProfiles()
		if profilesPath != "" {
			var err error
			profiles, err = seeder.LoadProfilesFile(profilesPath)
			if err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		pg, err := store.NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		events := seeder.NewGenerator(seed).Generate(profiles, days, time.Now())
		if err := seeder.Seed(ctx, pg, events); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d events for %d tasks over %d days\n",
			len(events), len(profiles), days)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("database-url", "", "Postgres connection string")
	seedCmd.Flags().Int("days", 7, "Number of days to backfill")
	seedCmd.Flags().Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	seedCmd.Flags().String("profiles", "", "YAML file with task profiles")
}
