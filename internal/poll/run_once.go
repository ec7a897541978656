package poll

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/gofrs/flock"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/events"
	"github.com/atg25/ProductHunt-Scraper/internal/metrics"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

// ErrRunInProgress is returned when another process (or the poller) already
// holds the run lock.
var ErrRunInProgress = errors.New("a tracking run is already in progress")

// Deps carries the shared collaborators a run needs. DB, Hub, Metrics, and
// Tagger may each be nil; the run degrades to fetch-only.
type Deps struct {
	DB       *sql.DB
	Hub      *events.Hub
	Metrics  *metrics.Metrics
	Tagger   track.Tagger
	Token    string
	LockPath string
}

// RunOnce performs one full tracking run: acquire the run lock, fetch with
// retries (a fresh provider per attempt), persist, publish. The returned
// result is always well-formed when err is nil; runID is zero when nothing
// was persisted.
func RunOnce(ctx context.Context, cfg config.Config, deps Deps) (domain.TrackerResult, int64, error) {
	if deps.LockPath != "" {
		lock := flock.New(deps.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return domain.TrackerResult{}, 0, err
		}
		if !ok {
			return domain.TrackerResult{}, 0, ErrRunInProgress
		}
		defer func() { _ = lock.Unlock() }()
	}

	publish(deps.Hub, events.TypeRunStarted, map[string]any{
		"strategy": cfg.Tracker.Strategy,
		"search":   cfg.Tracker.SearchTerm,
	})

	start := time.Now()
	runner := track.NewRunner(track.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     time.Duration(cfg.Retry.BackoffSeconds) * time.Second,
	}, nil)

	// A provider is not reusable after Close, so each attempt gets its own.
	attempt := func(ctx context.Context) (domain.TrackerResult, error) {
		provider, err := BuildProvider(cfg, deps.Token, nil)
		if err != nil {
			return domain.TrackerResult{}, err
		}
		tracker := track.New(instrumented{Provider: provider, m: deps.Metrics}, deps.Tagger)
		return tracker.GetProducts(ctx, cfg.Tracker.SearchTerm, cfg.Tracker.Limit)
	}

	result, attempts, err := runner.Run(ctx, attempt)
	if deps.Metrics != nil {
		deps.Metrics.AttemptsTotal.Add(float64(attempts))
		deps.Metrics.RunDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return domain.TrackerResult{}, 0, err
	}
	if deps.Metrics != nil {
		deps.Metrics.RunsTotal.WithLabelValues(string(result.Status())).Inc()
	}

	var runID int64
	if deps.DB != nil {
		runID, err = store.SaveResult(ctx, deps.DB, result)
		if err != nil {
			log.Printf("[poll] save failed: %v", err)
		} else if deps.Metrics != nil {
			deps.Metrics.ProductsSaved.Add(float64(len(result.Products)))
		}
	}

	publish(deps.Hub, events.TypeRunFinished, map[string]any{
		"status":   string(result.Status()),
		"source":   result.Source,
		"count":    len(result.Products),
		"attempts": attempts,
		"run_id":   runID,
	})
	return result, runID, nil
}

func publish(hub *events.Hub, typ string, data any) {
	if hub == nil {
		return
	}
	hub.Publish(events.MakeEvent("", typ, 1, data))
}
