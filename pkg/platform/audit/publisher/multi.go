package publisher

import (
	"context"
	"errors"

	audit "mintbank/pkg/platform/audit"
)

// Sink is anything that can receive audit events.
type Sink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Multi fans each event out to every sink. All sinks see the event even when
// an earlier one fails; errors are joined.
type Multi struct {
	sinks []Sink
}

// NewMulti builds a fan-out over the given sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Emit delivers the event to all sinks.
func (m *Multi) Emit(ctx context.Context, event audit.Event) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
