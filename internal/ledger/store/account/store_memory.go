// Package account provides AccountStore implementations: an in-memory store
// for development and tests, and a PostgreSQL store for deployments.
package account

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/sentinel"
)

// InMemory implements the account store with a mutex-guarded map. Every
// mutation goes through CompareAndSet semantics so the concurrency behavior
// matches the PostgreSQL store exactly.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

// NewInMemory creates an empty in-memory account store.
func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[string]*models.Account)}
}

// Create atomically inserts a new account with the given starting balance.
func (s *InMemory) Create(_ context.Context, identity string, initialBalance decimal.Decimal) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[identity]; exists {
		return nil, sentinel.ErrAlreadyExists
	}
	now := time.Now()
	acc := &models.Account{
		Identity:  identity,
		Balance:   initialBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[identity] = acc
	return copyAccount(acc), nil
}

// Get returns a snapshot of the account.
func (s *InMemory) Get(_ context.Context, identity string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyAccount(acc), nil
}

// CompareAndSet updates the balance only if the stored version still equals
// expectedVersion, incrementing the version on success.
func (s *InMemory) CompareAndSet(_ context.Context, identity string, expectedVersion uint64, newBalance decimal.Decimal) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if acc.Version != expectedVersion {
		return nil, sentinel.ErrVersionConflict
	}
	acc.Balance = newBalance
	acc.Version++
	acc.UpdatedAt = time.Now()
	return copyAccount(acc), nil
}

// copyAccount keeps store internals from escaping to callers.
func copyAccount(acc *models.Account) *models.Account {
	cp := *acc
	return &cp
}
