// Package idempotency provides bounded retention of committed-transfer
// receipts keyed by idempotency key, so retried requests collapse onto
// their prior result instead of re-executing.
package idempotency

import (
	"container/list"
	"context"
	"sync"
	"time"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/sentinel"
)

const (
	// DefaultTTL bounds how long a receipt stays replayable. Chat command
	// retries happen within seconds to minutes; anything later is a new
	// logical request.
	DefaultTTL = 15 * time.Minute

	// DefaultMaxEntries caps memory growth independently of the TTL.
	DefaultMaxEntries = 10_000
)

type entry struct {
	key       string
	receipt   *models.Receipt
	createdAt time.Time
}

// InMemory retains receipts for a bounded time window and a bounded entry
// count, evicting oldest-first.
type InMemory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = oldest
	ttl        time.Duration
	maxEntries int
	clock      func() time.Time
}

// Option configures the in-memory store.
type Option func(*InMemory)

// WithTTL overrides the retention window.
func WithTTL(ttl time.Duration) Option {
	return func(s *InMemory) { s.ttl = ttl }
}

// WithMaxEntries overrides the retention cap.
func WithMaxEntries(n int) Option {
	return func(s *InMemory) { s.maxEntries = n }
}

// WithClock injects a clock for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *InMemory) { s.clock = clock }
}

// NewInMemory creates an idempotency store with default retention bounds.
func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the receipt recorded under key, or sentinel.ErrNotFound when
// the key is unknown or its record has aged out.
func (s *InMemory) Get(_ context.Context, key string) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	el, ok := s.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return el.Value.(*entry).receipt, nil
}

// Put records a committed receipt under key.
func (s *InMemory) Put(_ context.Context, key string, receipt *models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	if _, ok := s.entries[key]; ok {
		// A replayed commit carries the same receipt; keep the original
		// record and its age.
		return nil
	}
	el := s.order.PushBack(&entry{key: key, receipt: receipt, createdAt: s.clock()})
	s.entries[key] = el
	for len(s.entries) > s.maxEntries {
		s.evictOldest()
	}
	return nil
}

// evictExpired drops entries older than the TTL. Callers hold s.mu.
func (s *InMemory) evictExpired() {
	cutoff := s.clock().Add(-s.ttl)
	for {
		front := s.order.Front()
		if front == nil || front.Value.(*entry).createdAt.After(cutoff) {
			return
		}
		s.evictOldest()
	}
}

func (s *InMemory) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	delete(s.entries, front.Value.(*entry).key)
	s.order.Remove(front)
}
