package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/health"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	Format          string // config.FormatVCard, FormatJSON, FormatYAML; empty to detect
	LocalPath       string // Path to the contact export
	WebURL          string // CardDAV, WebDAV or REST URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
}

// Report is the evaluated state of the whole contact list.
type Report struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Entries     []health.Assessment `json:"entries"`
	Garden      health.Garden       `json:"garden"`
}

// Generator is the core service responsible for fetching, evaluating and
// publishing contact health.
type Generator struct {
	Clock   health.Clock   // Interface for time mocking.
	Fetcher ContactFetcher // Interface for network abstraction.
	Policy  health.Policy  // Zero value means the default thresholds.

	// FormatLabel localizes a status label. count drives plural forms and may be nil.
	FormatLabel func(messageID string, data map[string]interface{}, count interface{}) string

	// FormatSummary localizes calendar event titles.
	FormatSummary func(messageID, name string) string
}

// RunSync executes the fetching, evaluation and generation pipeline.
// It returns the ICS data and the health report.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, Report, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	// 1. Acquire Data Stream
	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Report{}, ctx.Err()
		}
		return nil, Report{}, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}

	// 2. Decode
	format := DetectFormat(cfg.Format, sourceLocation(cfg))
	contacts, processed, err := decodeContacts(ctx, reader, format)
	if err != nil {
		return nil, Report{}, err
	}

	// 3. Evaluate with a single reading of the clock
	report := g.evaluate(contacts)

	// 4. Publish
	ics, err := g.buildCalendar(report, cfg.ReminderTrigger)
	if err != nil {
		return nil, Report{}, err
	}

	g.logSuccess(processed, report)
	log.Debug(config.MsgSyncFinished,
		config.LogKeyFormat, format,
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return ics, report, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func sourceLocation(cfg SyncConfig) string {
	if cfg.Mode == config.SourceModeWeb {
		return cfg.WebURL
	}
	return cfg.LocalPath
}

// evaluate assesses every contact, localizes labels and orders the entries by urgency.
func (g *Generator) evaluate(contacts []health.Contact) Report {
	clock := g.Clock
	if clock == nil {
		clock = health.RealClock{}
	}
	now := clock.Now()

	eval := health.NewEvaluator(g.Policy, health.FixedClock(now))
	entries := eval.AssessAll(contacts)

	for i := range entries {
		a := &entries[i]
		if g.FormatLabel != nil {
			a.Frequency.Label = g.FormatLabel(a.Frequency.MessageID, nil, nil)
			a.Standing.Label = g.FormatLabel(a.Standing.MessageID, a.Standing.TemplateData(), a.Standing.PluralCount())
		}
		if a.NeedsCare() {
			slog.Debug(config.MsgContactNeedsCare,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyContactID, a.Contact.ID,
				config.LogKeyName, a.Contact.Name,
				config.LogKeyStanding, a.Standing.Standing,
				config.LogKeyDays, a.Frequency.DaysSince)
		}
	}
	health.SortByUrgency(entries)

	return Report{
		GeneratedAt: now,
		Entries:     entries,
		Garden:      health.Summarize(entries),
	}
}

// logSuccess logs the final statistics of the generation process.
func (g *Generator) logSuccess(processed int, report Report) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, processed),
			slog.Int(config.LogKeyEvaluated, report.Garden.Total),
			slog.Int(config.LogKeyNeedCare, report.Garden.NeedsCare),
			slog.Int(config.LogKeyMilestone, report.Garden.Milestones),
		),
	)
}
