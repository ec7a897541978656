package scrape

import "testing"

func TestMatchesTerm(t *testing.T) {
	cases := []struct {
		haystack string
		term     string
		want     bool
	}{
		{"alphaai ai code reviewer", "AI", true},
		{"paid service for notaries", "ai", false},
		{"an llm notepad", "llm", true},
		{"a chatbot for support", "chatbot", true},
		{"a chatbot for support", "crm", false},
		{"anything at all", "", true},
		{"html to pdf converter", "ml", false},
	}
	for _, tc := range cases {
		if got := matchesTerm(tc.haystack, tc.term); got != tc.want {
			t.Errorf("matchesTerm(%q, %q) = %v, want %v", tc.haystack, tc.term, got, tc.want)
		}
	}
}
