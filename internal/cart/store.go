package cart

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/logger"
	"github.com/angelmondragon/scancart-backend/pkg/metrics"
)

// Persister writes the full cart after every mutation.
type Persister interface {
	Save(ctx context.Context, lines []Line) error
}

// Config wires a Store.
type Config struct {
	Key       string
	UnitPrice decimal.Decimal
	Currency  string
	Initial   []Line
	Persister Persister
	Publisher EventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics
}

// Store is the ordered cart ledger. Mutations are serialized and each one is
// persisted before the lock is released, so writes land in mutation order.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	key       string
	unitPrice decimal.Decimal
	currency  string

	persister Persister
	publisher EventPublisher
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	now       func() time.Time

	events    chan Event
	drained   chan struct{}
	closeOnce sync.Once
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price must be non-negative")
	}
	key := cfg.Key
	if key == "" {
		key = "cart"
	}

	s := &Store{
		lines:     copyLines(cfg.Initial),
		key:       key,
		unitPrice: cfg.UnitPrice,
		currency:  cfg.Currency,
		persister: cfg.Persister,
		publisher: cfg.Publisher,
		logg:      cfg.Logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
	if cfg.Publisher != nil {
		s.events = make(chan Event, eventBuffer)
		s.drained = make(chan struct{})
		go s.drain(s.events)
	}
	s.metrics.SetLines(len(s.lines))
	return s, nil
}

// Merge adds p to the cart: an existing line with the same name is
// incremented in place, otherwise a new line with quantity 1 is appended.
func (s *Store) Merge(ctx context.Context, p catalog.Product) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{Name: p.Name, Index: -1}
	for i := range s.lines {
		if s.lines[i].Name == p.Name {
			s.lines[i].Quantity = addQuantity(s.lines[i].Quantity, 1)
			ev.Type = enums.CartEventLineIncremented
			ev.Index = i
			ev.Quantity = s.lines[i].Quantity
			break
		}
	}
	if ev.Index < 0 {
		s.lines = append(s.lines, lineFromProduct(p))
		ev.Type = enums.CartEventLineAdded
		ev.Index = len(s.lines) - 1
		ev.Quantity = 1
	}

	return s.commitLocked(ctx, ev)
}

// AdjustQuantity adds delta to the line at index and removes the line when
// its quantity drops to zero or below. Later lines shift down by one. A zero
// delta is a persisted no-op and large increments saturate.
func (s *Store) AdjustQuantity(ctx context.Context, index, delta int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return s.snapshotLocked(), pkgerrors.New(pkgerrors.CodeValidation, "line index out of range").
			WithDetails(map[string]any{"index": index, "lines": len(s.lines)})
	}

	line := s.lines[index]
	qty := addQuantity(line.Quantity, delta)
	ev := Event{Index: index, Name: line.Name, Delta: delta, Quantity: qty}
	if qty <= 0 {
		s.lines = append(s.lines[:index], s.lines[index+1:]...)
		ev.Type = enums.CartEventLineRemoved
		ev.Quantity = 0
	} else {
		s.lines[index].Quantity = qty
		ev.Type = enums.CartEventQuantityAdjusted
	}

	return s.commitLocked(ctx, ev), nil
}

// addQuantity saturates at math.MaxInt instead of wrapping.
func addQuantity(qty, delta int) int {
	if delta > 0 && qty > math.MaxInt-delta {
		return math.MaxInt
	}
	return qty + delta
}

// Clear empties the cart in a single persisted mutation.
func (s *Store) Clear(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.commitLocked(ctx, Event{Type: enums.CartEventCleared, Index: -1})
}

// Total is the sum of quantity times unit price over every line.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOf(s.lines, s.unitPrice)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the event publisher after flushing queued events.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		events := s.events
		s.events = nil
		s.mu.Unlock()
		if events == nil {
			return
		}
		close(events)
		<-s.drained
	})
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:     copyLines(s.lines),
		Total:     totalOf(s.lines, s.unitPrice),
		UnitPrice: s.unitPrice,
		Currency:  s.currency,
	}
}

func (s *Store) commitLocked(ctx context.Context, ev Event) Snapshot {
	snap := s.snapshotLocked()

	if err := s.persister.Save(ctx, snap.Lines); err != nil {
		s.metrics.IncPersistFailure()
		s.logg.Error(s.logg.WithField(ctx, "mutation", ev.Type.String()), "cart persist failed", err)
	}
	s.metrics.ObserveMutation(ev.Type, len(snap.Lines))

	ev.Cart = s.key
	ev.LineCount = len(snap.Lines)
	ev.Total = snap.Total
	ev.OccurredAt = s.now().UTC()
	s.emit(ctx, ev)

	return snap
}
