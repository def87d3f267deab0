package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/scancart-backend/pkg/enums"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	"github.com/angelmondragon/scancart-backend/pkg/metrics"
)

// Record is the oracle's answer for one code.
type Record struct {
	Found    bool
	Name     string
	ImageURL string
}

// Oracle looks a scanned code up in an external catalog.
type Oracle interface {
	Lookup(ctx context.Context, code string) (Record, error)
}

// Resolver maps scanned codes to products. Resolve never fails: not-found and
// lookup failures come back as sentinel products.
type Resolver interface {
	Resolve(ctx context.Context, code string) Product
}

type resolver struct {
	oracle    Oracle
	sentinels Sentinels
	logg      *logger.Logger
	metrics   *metrics.CatalogMetrics
	now       func() time.Time
}

// NewResolver builds a resolver issuing exactly one oracle lookup per call.
func NewResolver(oracle Oracle, sentinels Sentinels, logg *logger.Logger, m *metrics.CatalogMetrics) (Resolver, error) {
	if oracle == nil {
		return nil, fmt.Errorf("catalog oracle required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sentinels.Unknown == "" || sentinels.NotFound == "" || sentinels.LookupError == "" {
		return nil, fmt.Errorf("all sentinel names are required")
	}
	return &resolver{
		oracle:    oracle,
		sentinels: sentinels,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}, nil
}

func (r *resolver) Resolve(ctx context.Context, code string) Product {
	ctx = r.logg.WithField(ctx, "code", code)
	started := r.now()

	product, outcome, err := r.lookup(ctx, code)
	took := r.now().Sub(started)
	r.metrics.ObserveLookup(outcome, took)

	ctx = r.logg.WithFields(ctx, map[string]any{
		"outcome":     outcome.String(),
		"duration_ms": took.Milliseconds(),
	})
	if err != nil {
		r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "catalog lookup failed")
		return product
	}
	r.logg.Info(ctx, "catalog lookup resolved")
	return product
}

func (r *resolver) lookup(ctx context.Context, code string) (p Product, outcome enums.LookupOutcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p = Product{Name: r.sentinels.LookupError}
			outcome = enums.LookupOutcomeError
			err = fmt.Errorf("oracle panic: %v", rec)
		}
	}()

	record, err := r.oracle.Lookup(ctx, code)
	if err != nil {
		return Product{Name: r.sentinels.LookupError}, enums.LookupOutcomeError, err
	}
	if !record.Found {
		return Product{Name: r.sentinels.NotFound}, enums.LookupOutcomeNotFound, nil
	}

	product := Product{Name: strings.TrimSpace(record.Name)}
	outcome = enums.LookupOutcomeFound
	if product.Name == "" {
		product.Name = r.sentinels.Unknown
		outcome = enums.LookupOutcomeUnnamed
	}
	if img := strings.TrimSpace(record.ImageURL); img != "" {
		product.Image = &img
	}
	return product, outcome, nil
}
