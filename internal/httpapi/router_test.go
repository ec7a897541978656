package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/atg25/ProductHunt-Scraper/internal/config"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/events"
	"github.com/atg25/ProductHunt-Scraper/internal/poll"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db.Pool); err != nil {
		t.Fatal(err)
	}

	var cfgVal, trackStatus atomic.Value
	var cfg config.Config
	cfg.App.Port = 38472
	cfg.Tracker.Strategy = "auto"
	cfg.Polling.IntervalSeconds = 1800
	cfgVal.Store(cfg)
	trackStatus.Store(poll.Status{})

	return Deps{
		DB:          db.Pool,
		Hub:         events.NewHub(),
		CfgVal:      &cfgVal,
		TrackStatus: &trackStatus,
		RunOnce: func(ctx context.Context, cfg config.Config) (domain.TrackerResult, int64, error) {
			return domain.Success(nil, "api", "AI", 10), 1, nil
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProductsEndpointListsSaved(t *testing.T) {
	deps := testDeps(t)
	result := domain.Success([]domain.Product{
		{Name: "Alpha AI", VotesCount: 123},
	}, "api", "AI", 10)
	if _, err := store.SaveResult(context.Background(), deps.DB, result); err != nil {
		t.Fatal(err)
	}

	mux := NewMux(deps)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?window=all", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var rows []store.ProductRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Name != "Alpha AI" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestTrackStatusEndpoint(t *testing.T) {
	deps := testDeps(t)
	deps.TrackStatus.Store(poll.Status{LastStatus: "success", LastSource: "api", LastCount: 3})

	mux := NewMux(deps)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/status", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["last_status"] != "success" || body["last_count"] != float64(3) {
		t.Fatalf("body = %v", body)
	}
}

func TestDigestEndpoint(t *testing.T) {
	deps := testDeps(t)
	result := domain.Success([]domain.Product{
		{Name: "Alpha AI", VotesCount: 123, Tagline: "code reviewer"},
	}, "api", "AI", 10)
	if _, err := store.SaveResult(context.Background(), deps.DB, result); err != nil {
		t.Fatal(err)
	}

	mux := NewMux(deps)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digest?window=all", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got == "" || got == "No products found.\n" {
		t.Fatalf("digest = %q", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFrom(r.Context()) == "" {
			t.Error("request id missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}), RequestID)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header not set")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
