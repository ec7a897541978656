package scrape

import (
	"context"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

var votesCountRe = regexp.MustCompile(`"votesCount"\s*:\s*(\d+)`)

const enrichCacheSize = 128

type enrichPage struct {
	description string
	votes       int
}

// enricher fills in missing fields on a product by fetching its own detail
// page. OpenGraph meta tags are preferred because they are server-set and
// survive layout churn. Pages are cached by URL so repeated attempts inside
// one process do not refetch.
type enricher struct {
	hc      *http.Client
	limiter *HostLimiter
	cache   *lru.Cache[string, enrichPage]
}

func newEnricher(hc *http.Client, limiter *HostLimiter) *enricher {
	cache, _ := lru.New[string, enrichPage](enrichCacheSize)
	return &enricher{hc: hc, limiter: limiter, cache: cache}
}

// enrich returns p with description and votes filled from its detail page.
// Any network failure or status >= 400 returns p unchanged; enrichment never
// aborts a run.
func (e *enricher) enrich(ctx context.Context, p domain.Product) domain.Product {
	if p.URL == "" {
		return p
	}
	page, ok := e.fetchPage(ctx, p.URL)
	if !ok {
		return p
	}

	description := p.Description
	if description == "" {
		description = page.description
	}
	votes := p.VotesCount
	if votes == 0 {
		votes = page.votes
	}
	if description == p.Description && votes == p.VotesCount {
		return p
	}

	out := p
	out.Description = description
	out.VotesCount = votes
	return out
}

func (e *enricher) fetchPage(ctx context.Context, rawURL string) (enrichPage, bool) {
	if page, ok := e.cache.Get(rawURL); ok {
		return page, true
	}
	if e.limiter != nil {
		if err := e.limiter.WaitURL(ctx, rawURL); err != nil {
			return enrichPage{}, false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return enrichPage{}, false
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := e.hc.Do(req)
	if err != nil {
		log.Printf("[scrape] enrichment request failed url=%s err=%v", rawURL, err)
		return enrichPage{}, false
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return enrichPage{}, false
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return enrichPage{}, false
	}
	html := string(body)

	page := enrichPage{
		description: metaDescription(html),
		votes:       maxEmbeddedVotes(html),
	}
	e.cache.Add(rawURL, page)
	return page, true
}

// metaDescription prefers the OpenGraph description tag, then the standard
// description meta tag.
func metaDescription(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if c := strings.TrimSpace(content); c != "" {
				return c
			}
		}
	}
	return ""
}

// maxEmbeddedVotes scans every JSON blob on the page for votesCount fields
// and takes the maximum as a heuristic vote count.
func maxEmbeddedVotes(html string) int {
	max := 0
	for _, m := range votesCountRe.FindAllStringSubmatch(html, -1) {
		if v, err := strconv.Atoi(m[1]); err == nil && v > max {
			max = v
		}
	}
	return max
}
