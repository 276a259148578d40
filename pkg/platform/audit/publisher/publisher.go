// Package publisher connects domain code to an audit store, either
// synchronously or through a buffered channel drained by a worker goroutine.
package publisher

import (
	"context"
	"sync"
	"time"

	audit "mintbank/pkg/platform/audit"
	"mintbank/pkg/platform/audit/worker"
)

// Publisher emits audit events into a store. In sync mode Emit appends
// directly; with an async buffer events flow through an inbox channel and a
// background worker, and Emit never blocks the caller.
type Publisher struct {
	store audit.Store

	inbox  chan audit.Event
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given inbox
// capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// NewPublisher builds a publisher backed by the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox)
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records an event. Events missing a timestamp are stamped here so
// call sites stay terse.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns all stored events for a subject identity.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Close stops the background worker after draining buffered events.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
		p.cancel()
	})
}
