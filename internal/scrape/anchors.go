package scrape

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// Canonical product pages live at /products/<slug> (current) or
// /posts/<slug> (legacy): exactly two path segments. Navigation and category
// links that contain the prefix as a substring carry more segments and are
// discarded.
const productPathDepth = 2

var productPathPrefixes = map[string]bool{
	"products": true,
	"posts":    true,
}

// extractAnchors is the fallback extraction path, used only when the
// structured-data walk yields nothing. Each accepted anchor becomes a
// minimal product: link text as name, resolved absolute URL.
func extractAnchors(doc *goquery.Document, baseURL string) []domain.Product {
	var found []domain.Product
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if p, ok := anchorToProduct(href, cleanText(a.Text()), baseURL); ok {
			found = append(found, p)
		}
	})
	found = dedupByNameURL(found)
	if len(found) == 0 {
		log.Printf("[scrape] DOM fallback found no product anchors; possible layout change")
	}
	return found
}

func anchorToProduct(href, text, baseURL string) (domain.Product, bool) {
	href = strings.TrimSpace(href)
	if href == "" || text == "" {
		return domain.Product{}, false
	}
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return domain.Product{}, false
	}
	if !strings.Contains(href, "/products/") && !strings.Contains(href, "/posts/") {
		return domain.Product{}, false
	}

	abs := href
	if strings.HasPrefix(href, "/") {
		abs = strings.TrimSuffix(baseURL, "/") + href
	}
	u, err := url.Parse(abs)
	if err != nil {
		return domain.Product{}, false
	}

	var parts []string
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) != productPathDepth || !productPathPrefixes[parts[0]] {
		return domain.Product{}, false
	}

	p, err := domain.NewProduct(domain.Product{Name: text, URL: abs})
	if err != nil {
		return domain.Product{}, false
	}
	return p, true
}
