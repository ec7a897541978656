package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/atg25/ProductHunt-Scraper/internal/digest"
	"github.com/atg25/ProductHunt-Scraper/internal/domain"
	"github.com/atg25/ProductHunt-Scraper/internal/store"
)

type ProductsHandler struct {
	DB *sql.DB
}

func (h ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, err := store.ListProducts(r.Context(), h.DB, store.ListProductsOpts{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Window: q.Get("window"),
		Limit:  limit,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if products == nil {
		products = []store.ProductRow{}
	}
	writeJSON(w, products)
}

func (h ProductsHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := store.ListRuns(r.Context(), h.DB, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if runs == nil {
		runs = []store.RunRow{}
	}
	writeJSON(w, runs)
}

// Digest renders the stored catalog as the plain-text summary, same format
// as the CLI output.
func (h ProductsHandler) Digest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	rows, err := store.ListProducts(r.Context(), h.DB, store.ListProductsOpts{
		Search: q.Get("search"),
		Window: q.Get("window"),
		Limit:  limit,
	})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.Product{
			Name:        row.Name,
			Tagline:     row.Tagline,
			Description: row.Description,
			VotesCount:  row.VotesCount,
			URL:         row.URL,
			Topics:      row.Topics,
			Tags:        row.Tags,
		})
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(digest.Build(products)))
}
