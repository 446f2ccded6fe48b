package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/engine"
)

// Syncer produces the calendar feed and the health report.
type Syncer interface {
	RunSync(ctx context.Context, cfg engine.SyncConfig) ([]byte, engine.Report, error)
}

// Publisher receives every successful sync result.
type Publisher interface {
	Update(ics, report []byte)
}

// Refresher re-evaluates the contact list on a ticker and on demand.
type Refresher struct {
	Syncer    Syncer
	Publisher Publisher

	// Config is called before every sync so that settings reloads and
	// keyring changes are picked up.
	Config func() engine.SyncConfig

	trigger   chan struct{}
	intervals chan time.Duration
	interval  time.Duration

	mu   sync.RWMutex
	last *engine.Report
}

// NewRefresher creates a refresher ticking every interval. A non-positive
// interval means config.DefaultRefreshMin minutes.
func NewRefresher(s Syncer, p Publisher, cfg func() engine.SyncConfig, interval time.Duration) *Refresher {
	return &Refresher{
		Syncer:    s,
		Publisher: p,
		Config:    cfg,
		trigger:   make(chan struct{}, config.ChannelBufferSize),
		intervals: make(chan time.Duration, config.ChannelBufferSize),
		interval:  normalizeInterval(interval),
	}
}

func normalizeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Duration(config.DefaultRefreshMin) * time.Minute
	}
	return d
}

// Trigger requests an immediate sync. Requests made while one is pending are coalesced.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// SetInterval changes the ticker period of a running refresher.
func (r *Refresher) SetInterval(d time.Duration) {
	d = normalizeInterval(d)
	select {
	case r.intervals <- d:
	default:
		// Replace a pending change that was not consumed yet.
		select {
		case <-r.intervals:
		default:
		}
		r.intervals <- d
	}
}

// Last returns the most recent successful report.
func (r *Refresher) Last() (engine.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return engine.Report{}, false
	}
	return *r.last, true
}

// Run performs an initial sync, then loops until ctx is cancelled.
// Sync failures are logged and never stop the loop.
func (r *Refresher) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = r.SyncOnce(ctx, false)

	currentDuration := r.interval
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return nil

		case newDuration := <-r.intervals:
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}

		case <-r.trigger:
			_ = r.SyncOnce(ctx, true)

		case <-ticker.C:
			_ = r.SyncOnce(ctx, false)
		}
	}
}

// SyncOnce runs one sync and publishes its result.
func (r *Refresher) SyncOnce(ctx context.Context, manual bool) error {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyManual, manual)

	var cfg engine.SyncConfig
	if r.Config != nil {
		cfg = r.Config()
	}

	ics, report, err := r.Syncer.RunSync(ctx, cfg)
	if err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompWorker)
		return err
	}

	body, err := json.Marshal(report)
	if err != nil {
		err = fmt.Errorf("%s: %w", config.ErrReportEncode, err)
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompWorker)
		return err
	}

	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()

	if r.Publisher != nil {
		r.Publisher.Update(ics, body)
	}
	slog.Info(config.MsgSyncSuccess,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyEvaluated, report.Garden.Total,
		config.LogKeyNeedCare, report.Garden.NeedsCare)
	return nil
}
