package config

import (
	"os"
	"strconv"
	"strings"
)

// OverlayEnv applies PH_TRACKER_* environment overrides on top of a loaded
// config. Env wins over file so containers and CI can retune a deployment
// without editing the yaml.
func OverlayEnv(cfg *Config) {
	if v := os.Getenv("PH_TRACKER_STRATEGY"); v != "" {
		cfg.Tracker.Strategy = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("PH_TRACKER_SEARCH_TERM"); v != "" {
		cfg.Tracker.SearchTerm = v
	}
	if v := os.Getenv("PH_TRACKER_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.Limit = n
		}
	}
	if v := os.Getenv("PH_TRACKER_API_ENDPOINT"); v != "" {
		cfg.API.Endpoint = v
	}
	if v := os.Getenv("PH_TRACKER_BASE_URL"); v != "" {
		cfg.Scraper.BaseURL = v
	}
	if v := os.Getenv("PH_TRACKER_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.IntervalSeconds = n
		}
	}
	if v := os.Getenv("PH_TRACKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	}
}
