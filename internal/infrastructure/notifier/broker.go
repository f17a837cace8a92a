// Package notifier carries change events from the write path to the cache
// invalidation worker.
package notifier

import (
	"log/slog"

	"github.com/splitpot/splitpot/internal/domain"
)

// Broker implements usecase.ChangeNotifier over a buffered channel. Publish
// never blocks the request path: when the buffer is full the event is
// dropped and the cache falls back to TTL expiry.
type Broker struct {
	events chan domain.ChangeEvent
	logger *slog.Logger
}

// NewBroker creates a Broker with the given buffer size.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Broker{
		events: make(chan domain.ChangeEvent, buffer),
		logger: logger,
	}
}

// Publish hands an event to the worker.
func (b *Broker) Publish(event domain.ChangeEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("event buffer full, dropping invalidation event",
			slog.String("kind", event.Kind),
			slog.String("group_id", event.GroupID))
	}
}

// Events returns the consumer side of the broker.
func (b *Broker) Events() <-chan domain.ChangeEvent {
	return b.events
}
