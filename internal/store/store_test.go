package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	require.Equal(t, 1, v)
}

func TestSaveResultSuccess(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	result := domain.Success([]domain.Product{
		{Name: "Alpha AI", URL: "https://example.com/products/alpha", VotesCount: 123, Tags: []string{"ai"}},
		{Name: "Beta AI", VotesCount: 45},
	}, "api", "AI", 10)

	runID, err := SaveResult(ctx, db.Pool, result)
	require.NoError(t, err)
	require.Positive(t, runID)

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "success", runs[0].Status)
	require.Equal(t, 2, runs[0].ProductCount)

	products, err := ListProducts(ctx, db.Pool, ListProductsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Alpha AI", products[0].Name) // votes descending
	require.Equal(t, []string{"ai"}, products[0].Tags)
}

func TestSaveResultFailureWritesRunOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	result := domain.Failure("api", "auth failed", false, "AI", 10)
	runID, err := SaveResult(ctx, db.Pool, result)
	require.NoError(t, err)
	require.Positive(t, runID)

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "failure", runs[0].Status)
	require.Equal(t, "auth failed", runs[0].Error)

	products, err := ListProducts(ctx, db.Pool, ListProductsOpts{Window: "all"})
	require.NoError(t, err)
	require.Empty(t, products)

	var observations int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM observations;`).Scan(&observations))
	require.Zero(t, observations)
}

func TestSaveResultUpsertsByCanonicalKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := domain.Success([]domain.Product{
		{Name: "Alpha AI", URL: "https://example.com/products/alpha", VotesCount: 10},
	}, "api", "AI", 10)
	_, err := SaveResult(ctx, db.Pool, first)
	require.NoError(t, err)

	// Same product, fresher votes, trailing slash in the URL.
	second := domain.Success([]domain.Product{
		{Name: "Alpha AI", URL: "https://example.com/products/alpha/", VotesCount: 150},
	}, "scraper", "AI", 10)
	_, err = SaveResult(ctx, db.Pool, second)
	require.NoError(t, err)

	products, err := ListProducts(ctx, db.Pool, ListProductsOpts{Window: "all"})
	require.NoError(t, err)
	require.Len(t, products, 1, "canonical key must dedupe across runs")
	require.Equal(t, 150, products[0].VotesCount)

	var observations int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM observations;`).Scan(&observations))
	require.Equal(t, 2, observations, "each sighting is an observation")
}

func TestListProductsSearch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	result := domain.Success([]domain.Product{
		{Name: "Alpha AI", Tagline: "code reviewer"},
		{Name: "Beta Notes", Description: "a notepad"},
	}, "api", "", 10)
	_, err := SaveResult(ctx, db.Pool, result)
	require.NoError(t, err)

	products, err := ListProducts(ctx, db.Pool, ListProductsOpts{Window: "all", Search: "notepad"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Beta Notes", products[0].Name)
}

func TestCleanupOldRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	old := domain.Success([]domain.Product{{Name: "Old AI"}}, "api", "AI", 10)
	old.FetchedAt = time.Now().UTC().AddDate(0, -6, 0)
	_, err := SaveResult(ctx, db.Pool, old)
	require.NoError(t, err)

	fresh := domain.Success([]domain.Product{{Name: "Fresh AI"}}, "api", "AI", 10)
	_, err = SaveResult(ctx, db.Pool, fresh)
	require.NoError(t, err)

	deleted, err := CleanupOldRuns(db.Pool, 90*24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
