package domain

import "time"

// RunStatus classifies a completed tracker run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailure RunStatus = "failure"
)

// TrackerResult is the outcome of a single orchestrated fetch.
//
// Err == "" is the sole success signal. Products may be non-empty even when
// Err is set: that is a partial result where some data was recovered before
// the failure. Transient hints to the retry driver that re-running may help.
type TrackerResult struct {
	Products   []Product `json:"products"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	Err        string    `json:"error,omitempty"`
	Transient  bool      `json:"is_transient,omitempty"`
	SearchTerm string    `json:"search_term,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// Success builds a result for a completed fetch.
func Success(products []Product, source, searchTerm string, limit int) TrackerResult {
	return TrackerResult{
		Products:   append([]Product(nil), products...),
		Source:     source,
		FetchedAt:  time.Now().UTC(),
		SearchTerm: searchTerm,
		Limit:      limit,
	}
}

// Failure builds a result for a failed fetch. Products is left empty; a
// partial result is recorded by setting Products on the returned value.
func Failure(source, errMsg string, transient bool, searchTerm string, limit int) TrackerResult {
	return TrackerResult{
		Source:     source,
		FetchedAt:  time.Now().UTC(),
		Err:        errMsg,
		Transient:  transient,
		SearchTerm: searchTerm,
		Limit:      limit,
	}
}

// OK reports whether the run completed without error.
func (r TrackerResult) OK() bool { return r.Err == "" }

// Status maps the result to success, partial, or failure. A result with an
// error but recovered products is partial: some data beats no data.
func (r TrackerResult) Status() RunStatus {
	switch {
	case r.Err == "":
		return RunSuccess
	case len(r.Products) > 0:
		return RunPartial
	default:
		return RunFailure
	}
}
