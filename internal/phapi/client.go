// Package phapi is the Product Hunt GraphQL API client.
//
// Authentication is a developer token sent as a bearer header. The client
// queries the artificial-intelligence topic by default and over-fetches
// beyond the requested limit so that client-side keyword filtering still
// yields a full page. When the topic-scoped query shape returns GraphQL
// errors (schema drift between API versions), it retries once with the
// global posts shape before surfacing a hard error.
package phapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/track"
)

const (
	DefaultEndpoint  = "https://api.producthunt.com/v2/api/graphql"
	DefaultTopicSlug = "artificial-intelligence"

	paginationMultiplier = 5
	minFetchSize         = 20
	maxFetchSize         = 50
)

// Config holds the client knobs. Zero values fall back to defaults.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	TopicSlug  string
	RecentDays int
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.TopicSlug == "" {
		c.TopicSlug = DefaultTopicSlug
	}
	if c.RecentDays <= 0 {
		c.RecentDays = 7
	}
	return c
}

const gqlPostFields = `
          name
          tagline
          description
          createdAt
          votesCount
          url
          topics(first: 10) {
            edges { node { name } }
          }`

const gqlTopicPosts = `query TopicPosts($slug: String!, $first: Int!) {
  topic(slug: $slug) {
    posts(first: $first, order: RANKING) {
      edges { node {` + gqlPostFields + `
      } }
    }
  }
}`

const gqlGlobalPosts = `query Posts($first: Int!) {
  posts(first: $first, order: RANKING) {
    edges { node {` + gqlPostFields + `
    } }
  }
}`

// Client is the API-backed provider.
type Client struct {
	token string
	cfg   Config
	hc    *http.Client
}

// NewClient validates the token eagerly: an empty token would produce a 401
// on the first request and is caught here for a clearer error message.
func NewClient(token string, cfg Config) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("api token is required")
	}
	cfg = cfg.withDefaults()
	return &Client{
		token: token,
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) SourceName() string { return "api" }

func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlPostConn struct {
	Edges []struct {
		Node gqlPostNode `json:"node"`
	} `json:"edges"`
}

type gqlPostNode struct {
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	VotesCount  int    `json:"votesCount"`
	URL         string `json:"url"`
	Topics      struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
}

type gqlResponse struct {
	Data struct {
		Topic *struct {
			Posts gqlPostConn `json:"posts"`
		} `json:"topic"`
		Posts *gqlPostConn `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch implements track.Provider. It over-fetches, filters client-side,
// keeps only recently posted entries when timestamps are available, sorts by
// votes, and truncates to limit.
func (c *Client) Fetch(ctx context.Context, searchTerm string, limit int) ([]domain.Product, error) {
	if limit < 1 {
		limit = 1
	}
	first := limit * paginationMultiplier
	if first < minFetchSize {
		first = minFetchSize
	}
	if first > maxFetchSize {
		first = maxFetchSize
	}

	resp, err := c.execute(ctx, gqlRequest{
		Query:     gqlTopicPosts,
		Variables: map[string]any{"slug": c.cfg.TopicSlug, "first": first},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		// Topic shape rejected: retry once with the global posts shape.
		resp, err = c.execute(ctx, gqlRequest{
			Query:     gqlGlobalPosts,
			Variables: map[string]any{"first": first},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Errors) > 0 {
			return nil, track.APIError{Message: "graphql errors returned: " + resp.Errors[0].Message}
		}
	}

	products := c.buildProducts(extractEdges(resp), searchTerm)
	products = filterRecent(products, c.cfg.RecentDays, time.Now().UTC())
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].VotesCount > products[j].VotesCount
	})
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (c *Client) execute(ctx context.Context, reqBody gqlRequest) (gqlResponse, error) {
	var out gqlResponse

	body, err := json.Marshal(reqBody)
	if err != nil {
		return out, track.APIError{Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return out, track.APIError{Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return out, classifyTransport(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		rl := ParseRateLimit(res.Header)
		return out, track.RateLimitError{
			Message:           "api rate limit hit",
			RetryAfterSeconds: rl.RetryAfter,
			Limit:             rl.Limit,
			Remaining:         rl.Remaining,
			ResetSeconds:      rl.ResetSeconds,
		}
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return out, track.APIError{Message: "auth failed", Status: res.StatusCode}
	}
	if res.StatusCode >= 400 {
		return out, track.APIError{Message: fmt.Sprintf("unexpected status %d", res.StatusCode), Status: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return gqlResponse{}, track.APIError{Message: "non-JSON response", Err: err}
	}
	return out, nil
}

// classifyTransport maps transport failures to a transient APIError so the
// retry driver knows they are worth retrying, unlike auth failures.
func classifyTransport(err error) error {
	msg := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = "request timed out"
	}
	return track.APIError{Message: msg, Transient: true, Err: err}
}

func extractEdges(resp gqlResponse) []gqlPostNode {
	var conn *gqlPostConn
	switch {
	case resp.Data.Topic != nil:
		conn = &resp.Data.Topic.Posts
	case resp.Data.Posts != nil:
		conn = resp.Data.Posts
	default:
		return nil
	}
	nodes := make([]gqlPostNode, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		nodes = append(nodes, e.Node)
	}
	return nodes
}

func (c *Client) buildProducts(nodes []gqlPostNode, searchTerm string) []domain.Product {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	strict := IsStrictTerm(term)

	var products []domain.Product
	for _, node := range nodes {
		p, err := nodeToProduct(node)
		if err != nil {
			continue
		}
		switch {
		case term == "":
			products = append(products, p)
		case strict && MatchesStrict(p.SearchableText(), p.Topics):
			products = append(products, p)
		case !strict && MatchesLoose(p.SearchableText(), term):
			products = append(products, p)
		}
	}
	return products
}

func nodeToProduct(node gqlPostNode) (domain.Product, error) {
	var topics []string
	for _, te := range node.Topics.Edges {
		if te.Node.Name != "" {
			topics = append(topics, te.Node.Name)
		}
	}
	votes := node.VotesCount
	if votes < 0 {
		votes = 0
	}
	return domain.NewProduct(domain.Product{
		Name:        node.Name,
		Tagline:     node.Tagline,
		Description: node.Description,
		VotesCount:  votes,
		URL:         node.URL,
		Topics:      topics,
		PostedAt:    parsePostedAt(node.CreatedAt),
	})
}

func parsePostedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// filterRecent keeps products posted inside the rolling window. When no
// product carries a timestamp the filter is a no-op: the data source simply
// did not provide dates.
func filterRecent(products []domain.Product, days int, now time.Time) []domain.Product {
	anyDated := false
	for _, p := range products {
		if p.PostedAt != nil {
			anyDated = true
			break
		}
	}
	if !anyDated {
		return products
	}
	cutoff := now.AddDate(0, 0, -days)
	var out []domain.Product
	for _, p := range products {
		if p.PostedAt != nil && !p.PostedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}
