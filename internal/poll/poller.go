package poll

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
)

// Status is the poller's last-known state, published through an atomic.Value
// for the status endpoint.
type Status struct {
	Running    bool   `json:"running"`
	LastRunAt  string `json:"last_run_at,omitempty"`
	LastOkAt   string `json:"last_ok_at,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
	LastSource string `json:"last_source,omitempty"`
	LastCount  int    `json:"last_count"`
	LastError  string `json:"last_error,omitempty"`
}

// StartPoller runs tracking on a fixed interval until ctx is cancelled. The
// config is re-read from cfgVal on each tick so saved config edits take
// effect without a restart.
func StartPoller(ctx context.Context, cfgVal *atomic.Value, status *atomic.Value, deps Deps) {
	go func() {
		cfgAny := cfgVal.Load()
		if cfgAny == nil {
			log.Printf("[poll] no config loaded; poller not starting")
			return
		}
		interval := time.Duration(cfgAny.(config.Config).Polling.IntervalSeconds) * time.Second

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			cfgAny := cfgVal.Load()
			if cfgAny == nil {
				continue
			}
			cfg := cfgAny.(config.Config)

			st := loadStatus(status)
			st.Running = true
			st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
			status.Store(st)

			result, _, err := RunOnce(ctx, cfg, deps)

			st = loadStatus(status)
			st.Running = false
			switch {
			case errors.Is(err, ErrRunInProgress):
				// Manual run holds the lock; leave the previous status alone.
			case err != nil:
				st.LastError = err.Error()
				log.Printf("[poll] error: %v", err)
			default:
				st.LastError = result.Err
				st.LastStatus = string(result.Status())
				st.LastSource = result.Source
				st.LastCount = len(result.Products)
				if result.OK() {
					st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
				}
				log.Printf("[poll] done status=%s source=%s count=%d",
					result.Status(), result.Source, len(result.Products))
			}
			status.Store(st)

			if deps.DB != nil && cfg.Polling.RetentionDays > 0 {
				retention := time.Duration(cfg.Polling.RetentionDays) * 24 * time.Hour
				if n, err := store.CleanupOldRuns(deps.DB, retention); err != nil {
					log.Printf("[poll] retention cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("[poll] retention cleanup removed runs=%d", n)
				}
			}
		}
	}()
}

func loadStatus(v *atomic.Value) Status {
	if st, ok := v.Load().(Status); ok {
		return st
	}
	return Status{}
}
