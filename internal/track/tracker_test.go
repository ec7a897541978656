package track

import (
	"context"
	"errors"
	"testing"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

type fakeProvider struct {
	name     string
	products []domain.Product
	fetchErr error
	fetches  int
	closes   int
}

func (f *fakeProvider) SourceName() string { return f.name }

func (f *fakeProvider) Fetch(context.Context, string, int) ([]domain.Product, error) {
	f.fetches++
	return f.products, f.fetchErr
}

func (f *fakeProvider) Close() error {
	f.closes++
	return nil
}

func TestGetProductsSuccess(t *testing.T) {
	p := &fakeProvider{name: "api", products: []domain.Product{{Name: "Alpha"}}}
	result, err := New(p, nil).GetProducts(context.Background(), "AI", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() || result.Source != "api" || len(result.Products) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.SearchTerm != "AI" || result.Limit != 10 {
		t.Fatalf("echo fields = %q %d", result.SearchTerm, result.Limit)
	}
	if p.closes != 1 {
		t.Fatalf("closes = %d, want 1", p.closes)
	}
}

func TestGetProductsErrorMapping(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"rate limit", RateLimitError{Message: "quota", RetryAfterSeconds: 850}, true},
		{"scrape", ScrapeError{Message: "listing page returned HTTP 500", Status: 500}, true},
		{"api auth", APIError{Message: "auth failed", Status: 401}, false},
		{"api transport", APIError{Message: "request timed out", Transient: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{name: "api", fetchErr: tc.err}
			result, err := New(p, nil).GetProducts(context.Background(), "AI", 10)
			if err != nil {
				t.Fatalf("typed provider error must map, not propagate: %v", err)
			}
			if result.OK() {
				t.Fatal("expected failure result")
			}
			if result.Transient != tc.wantTransient {
				t.Fatalf("transient = %v, want %v", result.Transient, tc.wantTransient)
			}
			if p.closes != 1 {
				t.Fatalf("closes = %d, want 1", p.closes)
			}
		})
	}
}

func TestGetProductsUnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	p := &fakeProvider{name: "api", fetchErr: boom}
	_, err := New(p, nil).GetProducts(context.Background(), "AI", 10)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if p.closes != 1 {
		t.Fatalf("closes = %d, want 1", p.closes)
	}
}

type staticTagger struct{ tags []string }

func (s staticTagger) Categorize(context.Context, domain.Product) ([]string, error) {
	return s.tags, nil
}

type brokenTagger struct{}

func (brokenTagger) Categorize(context.Context, domain.Product) ([]string, error) {
	return nil, errors.New("llm unreachable")
}

func TestGetProductsAppliesTags(t *testing.T) {
	p := &fakeProvider{name: "api", products: []domain.Product{{Name: "Alpha"}}}
	result, err := New(p, staticTagger{tags: []string{"ai"}}).GetProducts(context.Background(), "AI", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Products[0].Tags) != 1 || result.Products[0].Tags[0] != "ai" {
		t.Fatalf("tags = %v", result.Products[0].Tags)
	}
}

func TestGetProductsBrokenTaggerPropagates(t *testing.T) {
	p := &fakeProvider{name: "api", products: []domain.Product{{Name: "Alpha"}}}
	_, err := New(p, brokenTagger{}).GetProducts(context.Background(), "AI", 10)
	if err == nil {
		t.Fatal("expected tagger error to propagate")
	}
}

func TestFallbackUsesSecondaryOnAPIFailure(t *testing.T) {
	primary := &fakeProvider{name: "api", fetchErr: APIError{Message: "auth failed", Status: 401}}
	secondary := &fakeProvider{name: "scraper", products: []domain.Product{{Name: "Alpha"}}}

	fb := NewFallback(primary, secondary, func(string) {})
	if fb.SourceName() != "auto" {
		t.Fatalf("source = %q", fb.SourceName())
	}

	products, err := fb.Fetch(context.Background(), "AI", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || secondary.fetches != 1 {
		t.Fatalf("products = %v, secondary fetches = %d", products, secondary.fetches)
	}
}

func TestFallbackPropagatesNonAPIFailure(t *testing.T) {
	boom := errors.New("boom")
	primary := &fakeProvider{name: "api", fetchErr: boom}
	secondary := &fakeProvider{name: "scraper"}

	fb := NewFallback(primary, secondary, func(string) {})
	_, err := fb.Fetch(context.Background(), "AI", 10)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if secondary.fetches != 0 {
		t.Fatal("secondary must not run after an unexpected primary error")
	}
}

func TestFallbackMissingPrimaryWarnsOnce(t *testing.T) {
	var warned []string
	secondary := &fakeProvider{name: "scraper", products: []domain.Product{{Name: "Alpha"}}}

	fb := NewFallback(nil, secondary, func(msg string) { warned = append(warned, msg) })
	if len(warned) != 1 || warned[0] != MissingTokenMsg {
		t.Fatalf("warned = %v", warned)
	}

	products, err := fb.Fetch(context.Background(), "AI", 10)
	if err != nil || len(products) != 1 {
		t.Fatalf("products = %v err = %v", products, err)
	}
	if len(warned) != 1 {
		t.Fatal("diagnostic must fire only at construction")
	}
}

func TestFallbackCloseClosesBoth(t *testing.T) {
	primary := &fakeProvider{name: "api"}
	secondary := &fakeProvider{name: "scraper"}
	fb := NewFallback(primary, secondary, func(string) {})
	if err := fb.Close(); err != nil {
		t.Fatal(err)
	}
	if primary.closes != 1 || secondary.closes != 1 {
		t.Fatalf("closes = %d/%d", primary.closes, secondary.closes)
	}
}

func TestNoTokenProvider(t *testing.T) {
	var p NoTokenProvider
	_, err := p.Fetch(context.Background(), "AI", 10)
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Transient {
		t.Fatal("missing token is not transient")
	}
	if p.SourceName() != "api" {
		t.Fatalf("source = %q", p.SourceName())
	}
}

func TestErrorLabel(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{RateLimitError{}, "rate_limited"},
		{APIError{Transient: true}, "api_transport"},
		{APIError{}, "api"},
		{ScrapeError{}, "scrape"},
		{errors.New("boom"), "other"},
	}
	for _, tc := range cases {
		if got := ErrorLabel(tc.err); got != tc.want {
			t.Errorf("ErrorLabel(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
