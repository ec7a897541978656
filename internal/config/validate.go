package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Defaults are filled here so downstream code can trust
// the values.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Tracker.Strategy = strings.ToLower(strings.TrimSpace(out.Tracker.Strategy))
	if out.Tracker.Strategy == "" {
		out.Tracker.Strategy = "auto"
	}
	switch out.Tracker.Strategy {
	case "api", "scraper", "auto":
	default:
		res.addErr("tracker.strategy must be one of: api, scraper, auto (got %q)", out.Tracker.Strategy)
	}

	out.Tracker.SearchTerm = strings.TrimSpace(out.Tracker.SearchTerm)
	if out.Tracker.SearchTerm == "" {
		out.Tracker.SearchTerm = "AI"
	}
	if out.Tracker.Limit <= 0 {
		out.Tracker.Limit = 10
	}
	if out.Tracker.Limit > 100 {
		res.addWarn("tracker.limit is very high (%d); the sources rarely return that many.", out.Tracker.Limit)
	}

	if out.API.RecentDays <= 0 {
		out.API.RecentDays = 7
	}
	if out.API.TimeoutSeconds <= 0 {
		out.API.TimeoutSeconds = 15
	}

	if out.Scraper.TimeoutSeconds <= 0 {
		out.Scraper.TimeoutSeconds = 15
	}
	if out.Scraper.MaxEnrich <= 0 {
		out.Scraper.MaxEnrich = 10
	}
	if out.Scraper.MaxEnrich > 25 {
		res.addWarn("scraper.max_enrich is high (%d); each enrichment is an extra page fetch.", out.Scraper.MaxEnrich)
	}
	if out.Scraper.HostRPS <= 0 {
		out.Scraper.HostRPS = 1
	}

	if out.Retry.MaxAttempts <= 0 {
		out.Retry.MaxAttempts = 2
	}
	if out.Retry.BackoffSeconds < 0 {
		res.addErr("retry.backoff_seconds must be >= 0")
	}

	if out.Polling.IntervalSeconds <= 0 {
		res.addErr("polling.interval_seconds must be > 0")
	} else if out.Polling.IntervalSeconds < 60 {
		res.addWarn("polling.interval_seconds is very low (%d) and may cause rate limits.", out.Polling.IntervalSeconds)
	}
	if out.Polling.RetentionDays <= 0 {
		out.Polling.RetentionDays = 90
	}

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Tagging.Enabled {
		if strings.TrimSpace(out.Tagging.APIURL) == "" {
			res.addErr("tagging.api_url is required when tagging.enabled=true")
		}
		if strings.TrimSpace(out.Tagging.Model) == "" {
			res.addErr("tagging.model is required when tagging.enabled=true")
		}
	}

	return out, res
}
