package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/events"
	"github.com/atg25/ProductHunt-Scraper/internal/metrics"
)

type Deps struct {
	DB *sql.DB

	Hub     *events.Hub
	Metrics *metrics.Metrics

	// Atomic stores
	CfgVal      *atomic.Value // stores config.Config
	TrackStatus *atomic.Value // stores poll.Status

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Tracking entrypoint (inject for testability)
	RunOnce func(ctx context.Context, cfg config.Config) (domain.TrackerResult, int64, error)
}
