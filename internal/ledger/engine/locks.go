package engine

import (
	"sort"
	"sync"
)

// keyedLocks hands out one mutex per identity. Multi-identity acquisition
// always happens in lexicographic key order, which makes deadlock
// structurally impossible regardless of request order. Entries are never
// freed: accounts are never deleted, so the registry is bounded by the
// account population.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(identity string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[identity]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[identity] = m
	return m
}

// lockOrdered acquires the mutexes for the given identities in lexicographic
// order and returns a release function that unlocks in reverse order.
func (k *keyedLocks) lockOrdered(identities ...string) (unlock func()) {
	keys := make([]string, 0, len(identities))
	seen := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, id)
	}
	sort.Strings(keys)

	held := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
