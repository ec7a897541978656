package track

import (
	"errors"
	"fmt"
)

// APIError indicates an upstream API failure: auth rejection, bad status,
// malformed body, or a transport failure. Transient is set for transport
// failures (timeout, connection refused), which are worth retrying; auth and
// protocol failures are not.
type APIError struct {
	Message   string
	Status    int
	Transient bool
	Err       error
}

func (e APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api: %s: %v", e.Message, e.Err)
	}
	return "api: " + e.Message
}

func (e APIError) Unwrap() error { return e.Err }

// RateLimitError indicates an HTTP 429 from the API, carrying the parsed
// quota headers. RetryAfterSeconds is the effective back-off to use; zero
// values mean the header was absent.
type RateLimitError struct {
	Message           string
	RetryAfterSeconds int
	Limit             int
	Remaining         int
	ResetSeconds      int
}

func (e RateLimitError) Error() string {
	if e.RetryAfterSeconds > 0 {
		return fmt.Sprintf("rate_limited: %s (retry after %ds)", e.Message, e.RetryAfterSeconds)
	}
	return "rate_limited: " + e.Message
}

// ScrapeError indicates a network-layer scraping failure (timeout, HTTP
// 4xx/5xx on the listing page). Parse errors and empty pages are never
// raised as ScrapeError; they degrade to empty results plus a warning.
type ScrapeError struct {
	Message string
	Status  int
	Err     error
}

func (e ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape: %s: %v", e.Message, e.Err)
	}
	return "scrape: " + e.Message
}

func (e ScrapeError) Unwrap() error { return e.Err }

// IsAPIFailure reports whether err is any API-layer failure (plain or
// rate-limited). The fallback combinator falls through on exactly these;
// anything else is a programming error and must propagate.
func IsAPIFailure(err error) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var rlErr RateLimitError
	return errors.As(err, &rlErr)
}

// ErrorLabel returns a short classification label for metrics.
func ErrorLabel(err error) string {
	if err == nil {
		return "none"
	}
	var rlErr RateLimitError
	if errors.As(err, &rlErr) {
		return "rate_limited"
	}
	var apiErr APIError
	if errors.As(err, &apiErr) {
		if apiErr.Transient {
			return "api_transport"
		}
		return "api"
	}
	var scErr ScrapeError
	if errors.As(err, &scErr) {
		return "scrape"
	}
	return "other"
}
