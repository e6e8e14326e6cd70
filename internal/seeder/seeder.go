// Package seeder generates synthetic task log events for demos and
// local development. Generation is deterministic for a given seed so
// fixtures are reproducible.
package seeder

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"

	"github.com/data-ashita/monitor-dash/internal/models"
	"github.com/data-ashita/monitor-dash/internal/store"
)

// Profile describes one synthetic task: how often it runs and how often
// it fails. CriticalRate is the share of failures reported as CRITICAL
// rather than ERROR.
type Profile struct {
	TaskName     string  `yaml:"task_name"`
	RunsPerDay   int     `yaml:"runs_per_day"`
	FailureRate  float64 `yaml:"failure_rate"`
	CriticalRate float64 `yaml:"critical_rate"`
	RunSource    string  `yaml:"run_source"`
}

// LoadProfiles parses task profiles from YAML.
func LoadProfiles(r io.Reader) ([]Profile, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles defined")
	}
	for i, p := range doc.Profiles {
		if p.TaskName == "" {
			return nil, fmt.Errorf("profile %d: task_name is required", i)
		}
		if p.RunsPerDay < 1 {
			return nil, fmt.Errorf("profile %q: runs_per_day must be positive", p.TaskName)
		}
		if p.FailureRate < 0 || p.FailureRate > 1 {
			return nil, fmt.Errorf("profile %q: failure_rate must be in [0, 1]", p.TaskName)
		}
	}
	return doc.Profiles, nil
}

// LoadProfilesFile loads task profiles from a YAML file on disk.
func LoadProfilesFile(path string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return LoadProfiles(f)
}

// DefaultProfiles returns a small built-in fleet for quick demos.
func DefaultProfiles() []Profile {
	return []Profile{
		{TaskName: "sync-users", RunsPerDay: 24, FailureRate: 0.05, CriticalRate: 0.2, RunSource: "cron"},
		{TaskName: "ingest-orders", RunsPerDay: 48, FailureRate: 0.02, CriticalRate: 0.1, RunSource: "cron"},
		{TaskName: "nightly-report", RunsPerDay: 1, FailureRate: 0.15, CriticalRate: 0.5, RunSource: "scheduler"},
		{TaskName: "cleanup-temp", RunsPerDay: 4, FailureRate: 0.01, CriticalRate: 0, RunSource: "cron"},
	}
}

// Generator produces synthetic events from profiles.
type Generator struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewGenerator creates a deterministic generator for a seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Generate produces events for every profile across the given number of
// days ending at now. Each run lands on a jittered timestamp inside its
// day so trend buckets are uneven, like real schedules.
func (g *Generator) Generate(profiles []Profile, days int, now time.Time) []models.LogEvent {
	days = models.ClampDays(days)

	var events []models.LogEvent
	for _, p := range profiles {
		for day := 0; day < days; day++ {
			dayStart := now.AddDate(0, 0, -day-1)
			for run := 0; run < p.RunsPerDay; run++ {
				jitter := time.Duration(g.rng.Int63n(int64(24 * time.Hour)))
				events = append(events, g.event(p, dayStart.Add(jitter)))
			}
		}
	}
	return events
}

func (g *Generator) event(p Profile, at time.Time) models.LogEvent {
	ev := models.LogEvent{
		TaskName:  p.TaskName,
		RunSource: p.RunSource,
		CreatedAt: at,
	}

	if g.rng.Float64() < p.FailureRate {
		ev.Level = models.LevelError
		if g.rng.Float64() < p.CriticalRate {
			ev.Level = models.LevelCritical
		}
		ev.Message = g.faker.HackerPhrase()
	} else {
		ev.Level = models.LevelInfo
		ev.Message = "completed successfully"
	}
	return ev
}

// Seed writes generated events through an EventWriter in one batch.
func Seed(ctx context.Context, w store.EventWriter, events []models.LogEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := w.InsertEvents(ctx, events); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}
