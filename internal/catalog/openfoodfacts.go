package catalog

import (
	"context"

	"github.com/angelmondragon/scancart-backend/pkg/openfoodfacts"
)

type productLookup interface {
	Lookup(ctx context.Context, code string) (openfoodfacts.Result, error)
}

type openFoodFactsOracle struct {
	client productLookup
}

// NewOpenFoodFactsOracle adapts the Open Food Facts client to the Oracle contract.
func NewOpenFoodFactsOracle(client productLookup) Oracle {
	return &openFoodFactsOracle{client: client}
}

func (o *openFoodFactsOracle) Lookup(ctx context.Context, code string) (Record, error) {
	res, err := o.client.Lookup(ctx, code)
	if err != nil {
		return Record{}, err
	}
	return Record{Found: res.Found, Name: res.Name, ImageURL: res.ImageURL}, nil
}
