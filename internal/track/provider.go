// Package track holds the provider abstraction and the orchestration layer
// that turns provider calls into TrackerResult values.
package track

import (
	"context"
	"errors"
	"log"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// Provider is a data source that can fetch product listings. Fetch never
// returns more than limit items and raises a typed error on failure. Close
// releases held network resources; a provider is not guaranteed reusable
// after Close, so callers construct a fresh one per attempt.
type Provider interface {
	SourceName() string
	Fetch(ctx context.Context, searchTerm string, limit int) ([]domain.Product, error)
	Close() error
}

// Diagnostic is an injectable sink for operator-facing warnings, so tests
// can observe them instead of scraping log output.
type Diagnostic func(msg string)

// LogDiagnostic writes the warning to the standard logger.
func LogDiagnostic(msg string) { log.Printf("level=warn msg=%q", msg) }

// MissingTokenMsg is emitted whenever the auto or api strategy is chosen
// without an API token.
const MissingTokenMsg = "api token is missing or blank; the auto strategy will fall back " +
	"to the scraper, which is slower and less reliable. Set PRODUCTHUNT_TOKEN " +
	"or store a token in the keyring to silence this warning."

// Fallback tries a primary (API) provider and falls through to a secondary
// (scraper) provider on typed API failures only. The caller never learns
// which source ran except via the result's source label, which is always the
// combinator's own.
type Fallback struct {
	primary   Provider // nil when no credential was supplied
	secondary Provider
}

// NewFallback builds the combinator. A nil primary is a configuration hint,
// not an error: the diagnostic fires once at construction time and the
// secondary path stays fully functional.
func NewFallback(primary, secondary Provider, warn Diagnostic) *Fallback {
	if primary == nil {
		if warn == nil {
			warn = LogDiagnostic
		}
		warn(MissingTokenMsg)
	}
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) SourceName() string { return "auto" }

func (f *Fallback) Fetch(ctx context.Context, searchTerm string, limit int) ([]domain.Product, error) {
	if f.primary != nil {
		products, err := f.primary.Fetch(ctx, searchTerm, limit)
		if err == nil {
			return products, nil
		}
		if !IsAPIFailure(err) {
			return nil, err
		}
		log.Printf("[track] primary provider failed, falling back to scraper: %v", err)
	}
	return f.secondary.Fetch(ctx, searchTerm, limit)
}

func (f *Fallback) Close() error {
	var errs []error
	if f.primary != nil {
		errs = append(errs, f.primary.Close())
	}
	errs = append(errs, f.secondary.Close())
	return errors.Join(errs...)
}

// NoTokenProvider is the sentinel used when the api strategy is requested
// without a credential. Fetch raises the same typed error an unauthenticated
// API client would, so the orchestrator needs no special case for "credential
// absent" versus "credential rejected".
type NoTokenProvider struct{}

func (NoTokenProvider) SourceName() string { return "api" }

func (NoTokenProvider) Fetch(context.Context, string, int) ([]domain.Product, error) {
	return nil, APIError{Message: "missing api token"}
}

func (NoTokenProvider) Close() error { return nil }
