package memory

import (
	"context"
	"time"

	"depot/internal/core/events"
	"depot/internal/core/id"
)

// Publish implements events.Publisher. Events are kept only if the
// surrounding transaction commits.
func (s *Store) Publish(ctx context.Context, event events.DomainEvent) error {
	return s.do(ctx, func() error {
		s.st.outbox = append(s.st.outbox, Event{
			DomainEvent: event,
			ID:          id.New(),
			CreatedAt:   time.Now().UTC(),
		})
		return nil
	})
}

// Events returns every published event in order.
func (s *Store) Events(ctx context.Context) []Event {
	var out []Event
	_ = s.do(ctx, func() error {
		out = append(out, s.st.outbox...)
		return nil
	})
	return out
}
