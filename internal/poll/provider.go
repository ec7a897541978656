package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/metrics"
	"github.com/atg25/ProductHunt-Scraper/internal/phapi"
	"github.com/atg25/ProductHunt-Scraper/internal/scrape"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

// BuildProvider constructs a fresh provider for one attempt based on the
// configured strategy. An unknown strategy is a configuration error, not a
// failed run.
func BuildProvider(cfg config.Config, token string, warn track.Diagnostic) (track.Provider, error) {
	switch cfg.Tracker.Strategy {
	case "api":
		if token == "" {
			if warn == nil {
				warn = track.LogDiagnostic
			}
			warn(track.MissingTokenMsg)
			return track.NoTokenProvider{}, nil
		}
		return newAPIClient(cfg, token)
	case "scraper":
		return newScraper(cfg), nil
	case "auto":
		var primary track.Provider
		if token != "" {
			client, err := newAPIClient(cfg, token)
			if err != nil {
				return nil, err
			}
			primary = client
		}
		return track.NewFallback(primary, newScraper(cfg), warn), nil
	default:
		return nil, fmt.Errorf("unknown tracker strategy %q (want api, scraper, or auto)", cfg.Tracker.Strategy)
	}
}

func newAPIClient(cfg config.Config, token string) (*phapi.Client, error) {
	return phapi.NewClient(token, phapi.Config{
		Endpoint:   cfg.API.Endpoint,
		Timeout:    time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		TopicSlug:  cfg.API.TopicSlug,
		RecentDays: cfg.API.RecentDays,
	})
}

func newScraper(cfg config.Config) *scrape.Scraper {
	return scrape.NewScraper(scrape.Config{
		BaseURL:     cfg.Scraper.BaseURL,
		ListingPath: cfg.Scraper.ListingPath,
		Timeout:     time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		SkipEnrich:  cfg.Scraper.SkipEnrich,
		MaxEnrich:   cfg.Scraper.MaxEnrich,
		HostRPS:     cfg.Scraper.HostRPS,
	})
}

// instrumented wraps a provider and counts classified fetch errors.
type instrumented struct {
	track.Provider
	m *metrics.Metrics
}

func (p instrumented) Fetch(ctx context.Context, searchTerm string, limit int) ([]domain.Product, error) {
	products, err := p.Provider.Fetch(ctx, searchTerm, limit)
	if err != nil && p.m != nil {
		p.m.ProviderErrors.WithLabelValues(track.ErrorLabel(err)).Inc()
	}
	return products, err
}
