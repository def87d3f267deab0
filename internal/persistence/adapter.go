package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/scancart-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
)

// BlobStore is an opaque key/value store for serialized carts.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Adapter loads and saves the cart as one JSON blob under a fixed key.
type Adapter struct {
	store BlobStore
	key   string
	logg  *logger.Logger
}

func NewAdapter(store BlobStore, key string, logg *logger.Logger) (*Adapter, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("blob key required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Adapter{store: store, key: key, logg: logg}, nil
}

// Load returns the persisted cart. A missing, unreadable or corrupt blob
// yields an empty cart.
func (a *Adapter) Load(ctx context.Context) []cart.Line {
	ctx = a.logg.WithField(ctx, "blob_key", a.key)

	raw, found, err := a.store.Get(ctx, a.key)
	if err != nil {
		a.logg.Warn(a.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart blob unreadable, starting empty")
		return []cart.Line{}
	}
	if !found || strings.TrimSpace(raw) == "" {
		a.logg.Info(ctx, "no persisted cart, starting empty")
		return []cart.Line{}
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "cart blob corrupt, starting empty")
		return []cart.Line{}
	}

	clean, dropped := sanitize(lines)
	if dropped > 0 {
		a.logg.Warn(a.logg.WithField(ctx, "dropped_lines", dropped), "cart blob contained invalid lines")
	}
	return clean
}

// Save overwrites the blob with the full cart.
func (a *Adapter) Save(ctx context.Context, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := a.store.Set(ctx, a.key, string(data)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart blob")
	}
	return nil
}

// sanitize drops lines that would break the cart invariants and folds
// duplicate names into their first occurrence.
func sanitize(lines []cart.Line) ([]cart.Line, int) {
	out := make([]cart.Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	dropped := 0
	for _, l := range lines {
		if l.Name == "" || l.Quantity < 1 {
			dropped++
			continue
		}
		if i, ok := index[l.Name]; ok {
			out[i].Quantity += l.Quantity
			dropped++
			continue
		}
		index[l.Name] = len(out)
		out = append(out, l)
	}
	return out, dropped
}
