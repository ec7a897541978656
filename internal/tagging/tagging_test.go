package tagging

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

func TestCleanTags(t *testing.T) {
	in := []string{" AI ", "ai", "DevTools", "", "this tag is far too long to keep around", "b", "c", "d", "e"}
	got := CleanTags(in)

	want := []string{"ai", "devtools", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got = %v, want %v", got, want)
		}
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  int
	}{
		{"plain array", `["ai", "devtools"]`, 2},
		{"fenced array", "```json\n[\"ai\"]\n```", 1},
		{"prose refusal", "I cannot classify this product.", 0},
		{"object not array", `{"tags": ["ai"]}`, 0},
		{"empty", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseTags(tc.reply); len(got) != tc.want {
				t.Fatalf("ParseTags(%q) = %v", tc.reply, got)
			}
		})
	}
}

func TestNoOp(t *testing.T) {
	tags, err := NoOp{}.Categorize(context.Background(), domain.Product{Name: "Alpha"})
	if err != nil || tags != nil {
		t.Fatalf("tags = %v err = %v", tags, err)
	}
}

func TestLLMCategorize(t *testing.T) {
	c := NewLLM("https://llm.example.com/v1/chat/completions", "key", "gpt-4o-mini")
	httpmock.ActivateNonDefault(c.HttpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", c.ApiURL,
		func(r *http.Request) (*http.Response, error) {
			if got := r.Header.Get("Authorization"); got != "Bearer key" {
				t.Errorf("auth header = %q", got)
			}
			return httpmock.NewStringResponse(200,
				`{"choices":[{"message":{"content":"[\"ai\", \"code review\"]"}}]}`), nil
		})

	tags, err := c.Categorize(context.Background(), domain.Product{Name: "Alpha AI", Tagline: "code reviewer"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[0] != "ai" || tags[1] != "code review" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestLLMCategorizeMalformedReplyYieldsNoTags(t *testing.T) {
	c := NewLLM("https://llm.example.com/v1/chat/completions", "key", "gpt-4o-mini")
	httpmock.ActivateNonDefault(c.HttpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", c.ApiURL,
		httpmock.NewStringResponder(200, `{"choices":[{"message":{"content":"no tags for you"}}]}`))

	tags, err := c.Categorize(context.Background(), domain.Product{Name: "Alpha"})
	if err != nil {
		t.Fatalf("malformed reply must not error: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tags = %v", tags)
	}
}

func TestLLMCategorizeServerErrorYieldsNoTags(t *testing.T) {
	c := NewLLM("https://llm.example.com/v1/chat/completions", "key", "gpt-4o-mini")
	httpmock.ActivateNonDefault(c.HttpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", c.ApiURL,
		httpmock.NewStringResponder(500, `{"error":"overloaded"}`))

	tags, err := c.Categorize(context.Background(), domain.Product{Name: "Alpha"})
	if err != nil {
		t.Fatalf("a flaky tagging service must not fail the run: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tags = %v", tags)
	}
}

func TestLLMCategorizeTransportFailureYieldsNoTags(t *testing.T) {
	c := NewLLM("https://llm.example.com/v1/chat/completions", "key", "gpt-4o-mini")
	httpmock.ActivateNonDefault(c.HttpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", c.ApiURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	tags, err := c.Categorize(context.Background(), domain.Product{Name: "Alpha"})
	if err != nil {
		t.Fatalf("a transport failure must not fail the run: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tags = %v", tags)
	}
}
