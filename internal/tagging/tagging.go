// Package tagging assigns short category tags to products, optionally via an
// OpenAI-compatible chat completions endpoint.
package tagging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

const (
	maxTagLen  = 20
	maxTags    = 5
	promptTmpl = "Classify this product into at most %d short category tags " +
		"(single words or short phrases, lowercase). Respond with a JSON array " +
		"of strings only.\n\nName: %s\nTagline: %s\nDescription: %s"
)

// NoOp categorizes nothing; it is the default tagger when no LLM endpoint is
// configured.
type NoOp struct{}

func (NoOp) Categorize(context.Context, domain.Product) ([]string, error) {
	return nil, nil
}

// LLM is a client for any OpenAI-compatible chat completions API.
type LLM struct {
	ApiURL     string
	ApiKey     string
	Model      string
	HttpClient *http.Client
}

func NewLLM(apiURL, apiKey, model string) *LLM {
	return &LLM{
		ApiURL: apiURL,
		ApiKey: apiKey,
		Model:  model,
		HttpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type (
	apiRequest struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
		Stream   bool      `json:"stream"`
	}
	message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
)

// Categorize asks the model for category tags. Tagging is advisory and must
// never fail a run: transport failures, non-200 replies, and malformed
// bodies all degrade to no tags. Only building the request can error, which
// indicates a misconfigured client rather than a flaky service.
func (c *LLM) Categorize(ctx context.Context, p domain.Product) ([]string, error) {
	prompt := fmt.Sprintf(promptTmpl, maxTags, p.Name, p.Tagline, p.Description)

	reqBody, err := json.Marshal(apiRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.ApiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ApiKey)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		log.Printf("[tagging] request failed; dropping tags: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("[tagging] api returned %s; dropping tags: %s", resp.Status, string(bodyBytes))
		return nil, nil
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[tagging] failed to decode response; dropping tags: %v", err)
		return nil, nil
	}
	if len(out.Choices) == 0 {
		return nil, nil
	}

	return ParseTags(out.Choices[0].Message.Content), nil
}

// ParseTags extracts a JSON string array from a model reply and cleans it.
// Replies that are not a JSON array (refusals, prose, fenced blocks that do
// not parse) produce no tags.
func ParseTags(reply string) []string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &raw); err != nil {
		log.Printf("[tagging] model reply was not a JSON array; dropping tags: %v", err)
		return nil
	}
	return CleanTags(raw)
}

// CleanTags lowercases, trims, drops blank or over-long entries, dedups
// while preserving order, and caps the count.
func CleanTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || len(t) > maxTagLen || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
