package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/events"
	"github.com/atg25/ProductHunt-Scraper/internal/poll"
)

type TrackHandler struct {
	CfgVal      *atomic.Value // config.Config
	TrackStatus *atomic.Value // poll.Status
	Hub         *events.Hub
	RunOnce     func(ctx context.Context, cfg config.Config) (domain.TrackerResult, int64, error)
}

func (h TrackHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, _ := h.TrackStatus.Load().(poll.Status)
	out := map[string]any{
		"running":     st.Running,
		"last_run_at": st.LastRunAt,
		"last_ok_at":  st.LastOkAt,
		"last_status": st.LastStatus,
		"last_source": st.LastSource,
		"last_count":  st.LastCount,
		"last_error":  st.LastError,
	}
	if h.Hub != nil {
		out["subscribers"] = h.Hub.Len()
	}
	writeJSON(w, out)
}

// Run kicks off a tracking run in the background; the run lock inside
// RunOnce prevents overlap with the poller.
func (h TrackHandler) Run(w http.ResponseWriter, r *http.Request) {
	st, _ := h.TrackStatus.Load().(poll.Status)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	st.Running = true
	st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	h.TrackStatus.Store(st)

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		result, _, err := h.RunOnce(context.Background(), cfg)

		now := time.Now().UTC().Format(time.RFC3339)
		next, _ := h.TrackStatus.Load().(poll.Status)
		next.Running = false
		next.LastRunAt = now
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = result.Err
			next.LastStatus = string(result.Status())
			next.LastSource = result.Source
			next.LastCount = len(result.Products)
			if result.OK() {
				next.LastOkAt = now
			}
		}
		h.TrackStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
