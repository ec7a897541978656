package scrape

import (
	"strings"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// dedupByNameURL keeps the first product seen for each (name, url) pair,
// preserving extraction order.
func dedupByNameURL(products []domain.Product) []domain.Product {
	type key struct{ name, url string }
	seen := map[key]bool{}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		k := key{p.Name, p.URL}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
