// Package domain defines the value types shared by every layer of the
// tracker: a Product observation and the TrackerResult of one run.
package domain

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// Product is one listing observation captured during a tracker run.
//
// Name is the only required field. Everything else is optional enrichment
// filled in by the API path, the scraper path, or the per-product enrichment
// step. Treat a Product as immutable once returned by a provider; enrichment
// helpers return a copy instead of mutating.
type Product struct {
	Name        string     `json:"name"`
	Tagline     string     `json:"tagline,omitempty"`
	Description string     `json:"description,omitempty"`
	VotesCount  int        `json:"votes_count"`
	URL         string     `json:"url,omitempty"`
	Topics      []string   `json:"topics,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// NewProduct validates and canonicalizes p. Name must be non-empty after
// trimming; VotesCount must not be negative.
func NewProduct(p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, errors.New("product name must be a non-empty string")
	}
	if p.VotesCount < 0 {
		return Product{}, errors.New("product votes_count must not be negative")
	}
	return p, nil
}

// SearchableText is the lowercase concatenation of all free-text fields,
// used by the keyword filters.
func (p Product) SearchableText() string {
	parts := []string{p.Name, p.Tagline, p.Description, strings.Join(p.Topics, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}

// WithTags returns a copy of p with its enrichment tags replaced.
func (p Product) WithTags(tags []string) Product {
	out := p
	out.Tags = append([]string(nil), tags...)
	return out
}

// CanonicalKey derives the stable identity key used by the store for
// deduplication: "url:" plus a normalized URL when one is usable, otherwise
// "name:" plus a normalized name. The key is idempotent: feeding the bare
// value back through the same normalization yields the same key.
func (p Product) CanonicalKey() string {
	if u := normalizeURL(p.URL); u != "" {
		return "url:" + u
	}
	return "name:" + normalizeName(p.Name)
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	path := strings.TrimSuffix(strings.ToLower(u.EscapedPath()), "/")
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
