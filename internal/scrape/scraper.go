package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

const (
	DefaultBaseURL     = "https://www.producthunt.com"
	DefaultListingPath = "/topics/artificial-intelligence"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	defaultTimeout   = 15 * time.Second
	defaultMaxEnrich = 10
)

// Config tunes the scraper. Zero values fall back to defaults; enrichment
// runs unless SkipEnrich is set, bounded by MaxEnrich and the host limiter.
type Config struct {
	BaseURL     string
	ListingPath string
	Timeout     time.Duration
	SkipEnrich  bool
	MaxEnrich   int
	HostRPS     float64
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ListingPath == "" {
		c.ListingPath = DefaultListingPath
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxEnrich <= 0 {
		c.MaxEnrich = defaultMaxEnrich
	}
	if c.HostRPS <= 0 {
		c.HostRPS = 1
	}
	return c
}

// Scraper fetches the public listing page and extracts products without an
// API token. Extraction prefers the embedded __NEXT_DATA__ blob and falls
// back to anchor scanning when the blob is missing or unreadable.
type Scraper struct {
	cfg      Config
	hc       *http.Client
	enricher *enricher
}

func NewScraper(cfg Config) *Scraper {
	cfg = cfg.withDefaults()
	hc := &http.Client{Timeout: cfg.Timeout}
	limiter := NewHostLimiter(cfg.HostRPS, 2)
	return &Scraper{
		cfg:      cfg,
		hc:       hc,
		enricher: newEnricher(hc, limiter),
	}
}

func (s *Scraper) SourceName() string { return "scraper" }

func (s *Scraper) Close() error {
	s.hc.CloseIdleConnections()
	return nil
}

// Fetch implements track.Provider over the public listing page.
func (s *Scraper) Fetch(ctx context.Context, searchTerm string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	listingURL := strings.TrimSuffix(s.cfg.BaseURL, "/") + s.cfg.ListingPath
	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	products := extractNextData(doc)
	if len(products) == 0 {
		products = extractAnchors(doc, s.cfg.BaseURL)
	}

	// Bare listings (anchor fallback, stripped-down payloads) carry nothing
	// but names, so the keyword filter would silently drop everything; only
	// filter when some candidate has text to match against.
	matched := products
	if hasRichText(products) {
		matched = make([]domain.Product, 0, len(products))
		for _, p := range products {
			if matchesTerm(p.SearchableText(), searchTerm) {
				matched = append(matched, p)
			}
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	if !s.cfg.SkipEnrich {
		matched = s.enrichCandidates(ctx, matched)
	}

	// Anchor-derived products all carry zero votes; sorting then would just
	// shuffle a tie, so only sort when some product actually has votes.
	if anyVotes(matched) {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].VotesCount > matched[j].VotesCount
		})
	}
	return matched, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, track.ScrapeError{Message: fmt.Sprintf("building request for %s", rawURL), Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := s.hc.Do(req)
	if err != nil {
		msg := "fetching listing page"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "listing page fetch timed out"
		}
		return nil, track.ScrapeError{Message: msg, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, track.ScrapeError{
			Message: fmt.Sprintf("listing page returned HTTP %d", res.StatusCode),
			Status:  res.StatusCode,
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, track.ScrapeError{Message: "reading listing page body", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, track.ScrapeError{Message: "parsing listing page HTML", Err: err}
	}
	return doc, nil
}

// enrichCandidates visits detail pages for products that are missing a
// description or votes, capped at MaxEnrich pages per run.
func (s *Scraper) enrichCandidates(ctx context.Context, products []domain.Product) []domain.Product {
	budget := s.cfg.MaxEnrich
	out := make([]domain.Product, len(products))
	for i, p := range products {
		if budget > 0 && p.URL != "" && (p.Description == "" || p.VotesCount == 0) {
			out[i] = s.enricher.enrich(ctx, p)
			budget--
			continue
		}
		out[i] = p
	}
	if budget == 0 && len(products) > s.cfg.MaxEnrich {
		log.Printf("[scrape] enrichment budget exhausted max=%d candidates=%d", s.cfg.MaxEnrich, len(products))
	}
	return out
}

func hasRichText(products []domain.Product) bool {
	for _, p := range products {
		if p.Tagline != "" || p.Description != "" || len(p.Topics) > 0 {
			return true
		}
	}
	return false
}

func anyVotes(products []domain.Product) bool {
	for _, p := range products {
		if p.VotesCount > 0 {
			return true
		}
	}
	return false
}
