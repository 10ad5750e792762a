package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"
)

// Bus implements ports.EventPublisher. Subscribers receive envelopes on a
// buffered channel; a subscriber that falls behind loses events rather than
// blocking the publisher.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan Envelope]struct{}
	sinks  []ports.EventPublisher
	logger *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[chan Envelope]struct{}),
		logger: logger.With("component", "eventbus"),
	}
}

// Attach adds an external sink. Sinks are called in attach order.
func (b *Bus) Attach(sink ports.EventPublisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Subscribe returns a channel of envelopes and a function that unsubscribes
// and closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Envelope, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Envelope, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Bus) Publish(ctx context.Context, events []kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		if e, ok := event.(order.StatusChanged); ok {
			metrics.OrderTransitions.WithLabelValues(e.To.String()).Inc()
		}
	}

	b.mu.Lock()
	sinks := append([]ports.EventPublisher(nil), b.sinks...)
	for _, event := range events {
		env := NewEnvelope(event)
		for ch := range b.subs {
			select {
			case ch <- env:
			default:
				b.logger.WarnContext(ctx, "subscriber is full, dropping event", "event", env.Name)
			}
		}
	}
	b.mu.Unlock()

	var errs []error
	for _, sink := range sinks {
		if err := sink.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
