// Command tracker runs one tracking cycle and prints a digest. Exit code 0
// means success, 2 partial, 3 failure; configuration errors exit 1.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/digest"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/poll"
	"github.com/atg25/ProductHunt-Scraper/internal/secrets"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
)

func main() {
	var (
		strategy = flag.String("strategy", "auto", "data source: api, scraper, or auto")
		search   = flag.String("search", "AI", "keyword to filter products by")
		limit    = flag.Int("limit", 10, "max products to return")
		dbPath   = flag.String("db", "", "sqlite path for persisting the run (empty disables)")
		token    = flag.String("token", "", "Product Hunt API token (overrides env and keychain)")
		attempts = flag.Int("retry-attempts", 2, "max fetch attempts")
		backoff  = flag.Duration("retry-backoff", 2*time.Second, "pause between retries")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall run deadline")
		asJSON   = flag.Bool("json", false, "emit the raw result as JSON instead of a digest")
	)
	flag.Parse()

	var cfg config.Config
	cfg.Tracker.Strategy = *strategy
	cfg.Tracker.SearchTerm = *search
	cfg.Tracker.Limit = *limit
	cfg.Retry.MaxAttempts = *attempts
	cfg.Retry.BackoffSeconds = int(*backoff / time.Second)
	cfg.App.Port = 1 // unused by a one-shot run; keeps validation quiet
	cfg.Polling.IntervalSeconds = 1
	config.OverlayEnv(&cfg)

	normalized, vr := config.NormalizeAndValidate(cfg)
	for _, warn := range vr.Warnings {
		log.Printf("level=warn msg=%q", warn)
	}
	if !vr.OK() {
		log.Fatalf("invalid flags: %v", vr.Errors)
	}
	cfg = normalized

	deps := poll.Deps{Token: *token}
	if deps.Token == "" {
		deps.Token = secrets.GetAPIToken()
	}

	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer db.Close()
		if err := store.Migrate(db.Pool); err != nil {
			log.Fatalf("migrate db: %v", err)
		}
		deps.DB = db.Pool
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, _, err := poll.RunOnce(ctx, cfg, deps)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		fmt.Print(digest.Build(result.Products))
		if result.Err != "" {
			fmt.Fprintf(os.Stderr, "source=%s error: %s\n", result.Source, result.Err)
		}
	}

	switch result.Status() {
	case domain.RunSuccess:
		os.Exit(0)
	case domain.RunPartial:
		os.Exit(2)
	default:
		os.Exit(3)
	}
}
