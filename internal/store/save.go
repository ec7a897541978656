package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// SaveResult records one run in a single transaction. The run row is always
// written, even for failures; product and observation rows exist only when
// the run produced products. Failed runs therefore leave an audit trail
// without polluting product history.
func SaveResult(ctx context.Context, db *sql.DB, r domain.TrackerResult) (runID int64, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.FetchedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	nowStr := now.UTC().Format(time.RFC3339)

	transient := 0
	if r.Transient {
		transient = 1
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs (source, status, search_term, fetch_limit, product_count, error, transient, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		r.Source, string(r.Status()), r.SearchTerm, r.Limit, len(r.Products), r.Err, transient, nowStr,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for rank, p := range r.Products {
		productID, err := upsertProduct(ctx, tx, p, nowStr)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO observations (run_id, product_id, votes_count, rank, observed_at)
VALUES (?, ?, ?, ?, ?);`,
			runID, productID, p.VotesCount, rank+1, nowStr,
		); err != nil {
			return 0, fmt.Errorf("insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return runID, nil
}

// upsertProduct inserts or refreshes a product keyed by its canonical key.
// On conflict the descriptive fields are overwritten with the newest
// sighting and last_seen_at advances; first_seen_at is preserved.
func upsertProduct(ctx context.Context, tx *sql.Tx, p domain.Product, nowStr string) (int64, error) {
	topicsJSON, _ := json.Marshal(orEmpty(p.Topics))
	tagsJSON, _ := json.Marshal(orEmpty(p.Tags))

	postedAt := ""
	if p.PostedAt != nil {
		postedAt = p.PostedAt.UTC().Format(time.RFC3339)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO products (canonical_key, name, tagline, description, url, topics, tags, votes_count, posted_at, first_seen_at, last_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(canonical_key) DO UPDATE SET
  name = excluded.name,
  tagline = excluded.tagline,
  description = excluded.description,
  url = excluded.url,
  topics = excluded.topics,
  tags = excluded.tags,
  votes_count = excluded.votes_count,
  posted_at = excluded.posted_at,
  last_seen_at = excluded.last_seen_at;`,
		p.CanonicalKey(), p.Name, p.Tagline, p.Description, p.URL,
		string(topicsJSON), string(tagsJSON), p.VotesCount, postedAt, nowStr, nowStr,
	); err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM products WHERE canonical_key = ? LIMIT 1;`,
		p.CanonicalKey(),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("product id: %w", err)
	}
	return id, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
