package scrape

import (
	"regexp"
	"strings"
)

// Short generic terms like "ai" or "ml" appear inside ordinary words
// ("paid", "html"), so they only count on a word boundary. Longer terms
// match as plain substrings.
var genericSignalRe = regexp.MustCompile(`(?i)\b(ai|ml|llm|gpt)\b`)

var genericTerms = map[string]bool{
	"ai":  true,
	"ml":  true,
	"llm": true,
	"gpt": true,
}

// matchesTerm reports whether haystack mentions term. An empty term matches
// everything.
func matchesTerm(haystack, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if genericTerms[term] {
		return genericSignalRe.MatchString(haystack)
	}
	return strings.Contains(strings.ToLower(haystack), term)
}
