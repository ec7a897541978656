package track

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// Tagger enriches a product with category tags. Implementations may return
// an empty slice as a benign no-op; an error is treated as a caller
// configuration bug and propagates out of GetProducts unmapped.
type Tagger interface {
	Categorize(ctx context.Context, p domain.Product) ([]string, error)
}

// Tracker drives exactly one provider and maps every typed provider failure
// into a TrackerResult. The provider is closed on every exit path.
type Tracker struct {
	provider Provider
	tagger   Tagger
}

// New builds a tracker around provider. tagger may be nil.
func New(provider Provider, tagger Tagger) *Tracker {
	return &Tracker{provider: provider, tagger: tagger}
}

// GetProducts fetches once through the provider and returns a well-formed
// result. Typed provider errors become failure results; only an unexpected
// error (a broken tagger) is returned as err, since masking it would hide a
// real defect.
func (t *Tracker) GetProducts(ctx context.Context, searchTerm string, limit int) (result domain.TrackerResult, err error) {
	source := t.provider.SourceName()

	defer func() {
		if cerr := t.provider.Close(); cerr != nil {
			log.Printf("[track] provider close failed source=%s err=%v", source, cerr)
		}
	}()

	products, fetchErr := t.provider.Fetch(ctx, searchTerm, limit)
	if fetchErr != nil {
		return t.mapError(fetchErr, source, searchTerm, limit)
	}

	if t.tagger != nil {
		products, err = t.applyTags(ctx, products)
		if err != nil {
			return domain.TrackerResult{}, err
		}
	}
	return domain.Success(products, source, searchTerm, limit), nil
}

func (t *Tracker) applyTags(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		tags, err := t.tagger.Categorize(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("categorize %q: %w", p.Name, err)
		}
		if len(tags) > 0 {
			p = p.WithTags(tags)
		}
		out = append(out, p)
	}
	return out, nil
}

func (t *Tracker) mapError(fetchErr error, source, searchTerm string, limit int) (domain.TrackerResult, error) {
	var rlErr RateLimitError
	if errors.As(fetchErr, &rlErr) {
		return domain.Failure(source, "rate limited: "+rlErr.Error(), true, searchTerm, limit), nil
	}
	var scErr ScrapeError
	if errors.As(fetchErr, &scErr) {
		return domain.Failure(source, scErr.Error(), true, searchTerm, limit), nil
	}
	var apiErr APIError
	if errors.As(fetchErr, &apiErr) {
		return domain.Failure(source, apiErr.Error(), apiErr.Transient, searchTerm, limit), nil
	}
	// Not one of the three provider error types: a programming error.
	return domain.TrackerResult{}, fetchErr
}
