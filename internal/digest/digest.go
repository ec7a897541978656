// Package digest renders a run's products as a short plain-text summary
// suitable for logs, terminals, or notification bodies.
package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// Build renders products ordered by votes (descending, name as tiebreak)
// followed by a tag frequency summary. An empty slice renders a one-line
// notice rather than an empty string.
func Build(products []domain.Product) string {
	if len(products) == 0 {
		return "No products found.\n"
	}

	ordered := make([]domain.Product, len(products))
	copy(ordered, products)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].VotesCount != ordered[j].VotesCount {
			return ordered[i].VotesCount > ordered[j].VotesCount
		}
		return ordered[i].Name < ordered[j].Name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d products\n", len(ordered))
	for i, p := range ordered {
		line := p.Name
		if p.Tagline != "" {
			line += " - " + p.Tagline
		}
		fmt.Fprintf(&b, "%2d. %s (%d votes)\n", i+1, line, p.VotesCount)
		if p.URL != "" {
			fmt.Fprintf(&b, "    %s\n", p.URL)
		}
	}

	if summary := tagSummary(ordered); summary != "" {
		b.WriteString("\nTags: ")
		b.WriteString(summary)
		b.WriteString("\n")
	}
	return b.String()
}

// tagSummary counts tag occurrences across products, ordered by count
// descending then tag ascending.
func tagSummary(products []domain.Product) string {
	counts := map[string]int{}
	for _, p := range products {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf("%s (%d)", t, counts[t])
	}
	return strings.Join(parts, ", ")
}
