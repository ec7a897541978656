package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/events"
	"github.com/atg25/ProductHunt-Scraper/internal/httpapi"
	"github.com/atg25/ProductHunt-Scraper/internal/metrics"
	"github.com/atg25/ProductHunt-Scraper/internal/poll"
	"github.com/atg25/ProductHunt-Scraper/internal/secrets"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
	"github.com/atg25/ProductHunt-Scraper/internal/tagging"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

func main() {
	// Data dir: env override, else local folder.
	dataDir := os.Getenv("PH_TRACKER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warn := range vr.Warnings {
			log.Printf("level=warn msg=%q", warn)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "ph-tracker.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	m := metrics.New()

	var tagger track.Tagger
	if cfg.Tagging.Enabled {
		tagger = tagging.NewLLM(cfg.Tagging.APIURL, os.Getenv("PH_TRACKER_LLM_KEY"), cfg.Tagging.Model)
	} else {
		tagger = tagging.NoOp{}
	}

	deps := poll.Deps{
		DB:       db.Pool,
		Hub:      hub,
		Metrics:  m,
		Tagger:   tagger,
		Token:    secrets.GetAPIToken(),
		LockPath: filepath.Join(dataDir, "ph-tracker.lock"),
	}

	var trackStatus atomic.Value
	trackStatus.Store(poll.Status{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll.StartPoller(ctx, &cfgVal, &trackStatus, deps)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Metrics:     m,
		CfgVal:      &cfgVal,
		TrackStatus: &trackStatus,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		RunOnce: func(ctx context.Context, cfg config.Config) (domain.TrackerResult, int64, error) {
			// Token may have been set through the API since startup.
			d := deps
			d.Token = secrets.GetAPIToken()
			return poll.RunOnce(ctx, cfg, d)
		},
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.Recover,
			httpapi.AccessLog,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Printf("engine stopped")
}
