package scrape

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// extractNextData walks the __NEXT_DATA__ JSON blob that Next.js embeds in a
// script tag on every page load. The blob mirrors the GraphQL response shape
// and is stable enough for a recursive walk heuristic. Absent or malformed
// payloads yield an empty slice, never an error: the DOM fallback takes over.
func extractNextData(doc *goquery.Document) []domain.Product {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[scrape] failed to parse __NEXT_DATA__ JSON: %v", err)
		return nil
	}

	var found []domain.Product
	walkNode(payload, &found)
	found = dedupByNameURL(found)
	if len(found) == 0 {
		log.Printf("[scrape] no products found in __NEXT_DATA__; possible layout change")
	}
	return found
}

func walkNode(node any, found *[]domain.Product) {
	switch v := node.(type) {
	case map[string]any:
		if p, ok := productFromNode(v); ok {
			*found = append(*found, p)
		}
		for _, child := range v {
			walkNode(child, found)
		}
	case []any:
		for _, child := range v {
			walkNode(child, found)
		}
	}
}

// productFromNode accepts a JSON object as a product candidate iff it has a
// non-empty string name AND at least one of tagline, description, or
// votesCount. The second condition guards against unrelated nodes (UI
// labels, topics) that merely share a "name" field.
func productFromNode(obj map[string]any) (domain.Product, bool) {
	name, ok := obj["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return domain.Product{}, false
	}
	tagline, hasTagline := obj["tagline"]
	description, hasDescription := obj["description"]
	votes, hasVotes := obj["votesCount"]
	if !hasTagline && !hasDescription && !hasVotes {
		return domain.Product{}, false
	}

	rawURL, _ := obj["url"].(string)
	if rawURL == "" {
		rawURL, _ = obj["website"].(string)
	}

	p, err := domain.NewProduct(domain.Product{
		Name:        strings.TrimSpace(name),
		Tagline:     stringOrEmpty(tagline),
		Description: stringOrEmpty(description),
		VotesCount:  coerceVotes(votes),
		URL:         rawURL,
		Topics:      nodeTopics(obj["topics"]),
	})
	if err != nil {
		return domain.Product{}, false
	}
	return p, true
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}

// coerceVotes converts whatever the blob carries to a non-negative int; a
// non-numeric value becomes zero rather than failing the candidate.
func coerceVotes(v any) int {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

func nodeTopics(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var topics []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := m["name"].(string); ok && name != "" {
			topics = append(topics, name)
		}
	}
	return topics
}
