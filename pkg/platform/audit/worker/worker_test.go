package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "mintbank/pkg/platform/audit"
)

// flakyStore fails a fixed number of appends, then stores normally.
type flakyStore struct {
	mu       sync.Mutex
	failures int
	events   []audit.Event
}

func (s *flakyStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("append failed")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *flakyStore) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRunSurvivesAppendFailures(t *testing.T) {
	store := &flakyStore{failures: 1}
	inbox := make(chan audit.Event, 2)
	w := NewWorker(store, inbox, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	inbox <- audit.Event{Action: audit.EventGrantMinted, Subject: "alice"}
	inbox <- audit.Event{Action: audit.EventTaxPaid, Subject: "bob"}
	close(inbox)

	select {
	case err := <-done:
		require.NoError(t, err, "a failed append must not stop the drain")
	case <-time.After(time.Second):
		t.Fatal("worker did not finish draining")
	}

	stored, err := store.ListBySubject(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "events after a failed append must still be persisted")
}

func TestRunStopsOnClosedInbox(t *testing.T) {
	store := &flakyStore{}
	inbox := make(chan audit.Event)
	w := NewWorker(store, inbox)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	close(inbox)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on closed inbox")
	}
}
