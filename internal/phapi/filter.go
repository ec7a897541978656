package phapi

import (
	"regexp"
	"strings"
)

// Strict filtering applies when the search term is the generic default or a
// close synonym; it demands a genuine AI signal instead of a naive substring
// match ("paid" contains "ai" but is not an AI product).
var strictTerms = map[string]bool{
	"ai":                      true,
	"artificial intelligence": true,
}

// Word-boundary pattern for a genuine AI signal. Heuristic: tune against
// real content rather than treating it as a precision guarantee.
var aiSignalRe = regexp.MustCompile(`(?i)\bartificial\s+intelligence\b|\b(ai|ml|llm|gpt)\b`)

// IsStrictTerm reports whether term warrants strict AI-only filtering.
func IsStrictTerm(term string) bool {
	return strictTerms[strings.ToLower(strings.TrimSpace(term))]
}

// MatchesStrict reports whether haystack or topics carry a genuine AI
// signal: an exact "artificial intelligence" topic label always matches,
// otherwise the word-boundary pattern decides.
func MatchesStrict(haystack string, topics []string) bool {
	for _, t := range topics {
		if strings.ToLower(t) == "artificial intelligence" {
			return true
		}
	}
	return aiSignalRe.MatchString(haystack)
}

// MatchesLoose is the plain case-insensitive substring filter used for any
// non-generic search term.
func MatchesLoose(haystack, term string) bool {
	return strings.Contains(haystack, strings.ToLower(term))
}
