package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/scancart-backend/pkg/enums"
)

// EventPublisher receives cart mutation events keyed by cart key.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// Event describes one cart mutation.
type Event struct {
	Type       enums.CartEventType `json:"type"`
	Cart       string              `json:"cart"`
	Index      int                 `json:"index"`
	Name       string              `json:"name,omitempty"`
	Quantity   int                 `json:"quantity"`
	Delta      int                 `json:"delta,omitempty"`
	LineCount  int                 `json:"line_count"`
	Total      decimal.Decimal     `json:"total"`
	OccurredAt time.Time           `json:"occurred_at"`
}

const (
	eventBuffer         = 64
	eventPublishTimeout = 5 * time.Second
)

// emit queues ev without blocking the mutation. A full buffer drops the event.
func (s *Store) emit(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logg.Warn(s.logg.WithField(ctx, "event_type", ev.Type.String()), "cart event buffer full, dropping event")
	}
}

// drain publishes queued events in mutation order until the channel closes.
func (s *Store) drain(events <-chan Event) {
	defer close(s.drained)
	base := context.Background()
	for ev := range events {
		ctx, cancel := context.WithTimeout(base, eventPublishTimeout)
		if err := s.publisher.PublishEvent(ctx, s.key, ev); err != nil {
			logCtx := s.logg.WithFields(base, map[string]any{"event_type": ev.Type.String(), "error": err.Error()})
			s.logg.Warn(logCtx, "cart event publish failed")
		}
		cancel()
	}
}
