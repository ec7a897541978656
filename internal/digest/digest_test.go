package digest

import (
	"strings"
	"testing"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

func TestBuildOrdersByVotesThenName(t *testing.T) {
	out := Build([]domain.Product{
		{Name: "Zeta", VotesCount: 10},
		{Name: "Alpha", VotesCount: 100, Tagline: "code reviewer", URL: "https://example.com/products/alpha"},
		{Name: "Beta", VotesCount: 10},
	})

	alpha := strings.Index(out, "Alpha")
	beta := strings.Index(out, "Beta")
	zeta := strings.Index(out, "Zeta")
	if !(alpha < beta && beta < zeta) {
		t.Fatalf("order wrong:\n%s", out)
	}
	if !strings.Contains(out, "Alpha - code reviewer (100 votes)") {
		t.Fatalf("missing headline line:\n%s", out)
	}
	if !strings.Contains(out, "https://example.com/products/alpha") {
		t.Fatalf("missing url line:\n%s", out)
	}
}

func TestBuildTagSummary(t *testing.T) {
	out := Build([]domain.Product{
		{Name: "A", Tags: []string{"ai", "devtools"}},
		{Name: "B", Tags: []string{"ai"}},
		{Name: "C", Tags: []string{"writing"}},
	})

	// Counts descending, then alphabetical for ties.
	if !strings.Contains(out, "Tags: ai (2), devtools (1), writing (1)") {
		t.Fatalf("tag summary wrong:\n%s", out)
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); got != "No products found.\n" {
		t.Fatalf("got %q", got)
	}
}
