package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ProductRow struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Topics      []string `json:"topics"`
	Tags        []string `json:"tags"`
	VotesCount  int      `json:"votesCount"`
	PostedAt    string   `json:"postedAt,omitempty"`
	FirstSeenAt string   `json:"firstSeenAt"`
	LastSeenAt  string   `json:"lastSeenAt"`
}

type RunRow struct {
	ID           int64  `json:"id"`
	Source       string `json:"source"`
	Status       string `json:"status"`
	SearchTerm   string `json:"searchTerm"`
	Limit        int    `json:"limit"`
	ProductCount int    `json:"productCount"`
	Error        string `json:"error,omitempty"`
	Transient    bool   `json:"transient"`
	FetchedAt    string `json:"fetchedAt"`
}

type ListProductsOpts struct {
	Search string
	Sort   string // votes | name | seen
	Window string // 24h | 7d | all
	Limit  int
}

// ListProducts queries the deduplicated product catalog.
func ListProducts(ctx context.Context, db *sql.DB, opts ListProductsOpts) ([]ProductRow, error) {
	if opts.Sort == "" {
		opts.Sort = "votes"
	}
	if opts.Window == "" {
		opts.Window = "7d"
	}
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 50
	}

	// whitelist sort columns (prevents SQL injection)
	orderBy := map[string]string{
		"votes": "votes_count DESC, name ASC",
		"name":  "name ASC",
		"seen":  "last_seen_at DESC",
	}[opts.Sort]
	if orderBy == "" {
		orderBy = "votes_count DESC, name ASC"
	}

	var where []string
	var args []any
	switch opts.Window {
	case "24h":
		where = append(where, "last_seen_at >= datetime('now','-24 hours')")
	case "all":
		// no filter
	default:
		where = append(where, "last_seen_at >= datetime('now','-7 days')")
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		where = append(where, "(name LIKE ? OR tagline LIKE ? OR description LIKE ?)")
		pat := "%" + s + "%"
		args = append(args, pat, pat, pat)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
SELECT id, name, tagline, description, url, topics, tags, votes_count, posted_at, first_seen_at, last_seen_at
FROM products
%s
ORDER BY %s
LIMIT ?;
`, whereClause, orderBy)
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var p ProductRow
		var topicsJSON, tagsJSON string
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Tagline,
			&p.Description,
			&p.URL,
			&topicsJSON,
			&tagsJSON,
			&p.VotesCount,
			&p.PostedAt,
			&p.FirstSeenAt,
			&p.LastSeenAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(topicsJSON), &p.Topics)
		_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, source, status, search_term, fetch_limit, product_count, error, transient, fetched_at
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var transient int
		if err := rows.Scan(
			&r.ID,
			&r.Source,
			&r.Status,
			&r.SearchTerm,
			&r.Limit,
			&r.ProductCount,
			&r.Error,
			&transient,
			&r.FetchedAt,
		); err != nil {
			return nil, err
		}
		r.Transient = transient != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanupOldRuns deletes run and observation rows older than the retention
// window. Products are kept; they are the catalog.
func CleanupOldRuns(db *sql.DB, retention time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)
	if _, err := db.Exec(`
DELETE FROM observations
WHERE run_id IN (SELECT id FROM runs WHERE fetched_at < ?);
`, cutoff); err != nil {
		return 0, fmt.Errorf("cleanup observations: %w", err)
	}
	res, err := db.Exec(`DELETE FROM runs WHERE fetched_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
