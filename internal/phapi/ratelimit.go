package phapi

import (
	"net/http"
	"strconv"
	"strings"
)

// RateLimitInfo is the parsed view of a 429 response's quota headers. It
// lives only for the duration of one failure-handling step. Zero values mean
// the header was absent or unparseable.
type RateLimitInfo struct {
	Limit        int // X-Rate-Limit-Limit
	Remaining    int // X-Rate-Limit-Remaining
	ResetSeconds int // X-Rate-Limit-Reset (seconds until the window resets)
	RetryAfter   int // effective back-off to use
}

// ParseRateLimit reads the quota headers. X-Rate-Limit-Reset takes
// precedence over Retry-After for the effective back-off.
func ParseRateLimit(h http.Header) RateLimitInfo {
	reset := headerInt(h, "X-Rate-Limit-Reset")
	retry := headerInt(h, "Retry-After")
	effective := reset
	if effective == 0 {
		effective = retry
	}
	return RateLimitInfo{
		Limit:        headerInt(h, "X-Rate-Limit-Limit"),
		Remaining:    headerInt(h, "X-Rate-Limit-Remaining"),
		ResetSeconds: reset,
		RetryAfter:   effective,
	}
}

func headerInt(h http.Header, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(h.Get(key)))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
