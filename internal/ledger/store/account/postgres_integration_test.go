//go:build integration

package account_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"mintbank/internal/ledger/models"
	"mintbank/internal/ledger/store/account"
	"mintbank/pkg/platform/sentinel"
	"mintbank/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *account.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = account.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "accounts")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCreateGetRoundTrip() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, "alice", models.DefaultInitialBalance)
	s.Require().NoError(err)
	s.Equal(uint64(1), created.Version)

	found, err := s.store.Get(ctx, "alice")
	s.Require().NoError(err)
	s.True(found.Balance.Equal(models.DefaultInitialBalance))

	_, err = s.store.Get(ctx, "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentRegistration verifies that concurrent creation attempts for
// the same identity result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentRegistration() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, existsCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Create(ctx, "alice", models.DefaultInitialBalance)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyExists):
				existsCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), existsCount.Load())
}

func (s *PostgresStoreSuite) TestCompareAndSetVersionGate() {
	ctx := context.Background()

	acc, err := s.store.Create(ctx, "alice", models.DefaultInitialBalance)
	s.Require().NoError(err)

	updated, err := s.store.CompareAndSet(ctx, "alice", acc.Version, decimal.RequireFromString("100.00"))
	s.Require().NoError(err)
	s.Equal(acc.Version+1, updated.Version)

	// Stale version loses and mutates nothing.
	_, err = s.store.CompareAndSet(ctx, "alice", acc.Version, decimal.RequireFromString("1.00"))
	s.Require().ErrorIs(err, sentinel.ErrVersionConflict)

	found, err := s.store.Get(ctx, "alice")
	s.Require().NoError(err)
	s.True(found.Balance.Equal(decimal.RequireFromString("100.00")))

	// Missing identity reports not-found, not a conflict.
	_, err = s.store.CompareAndSet(ctx, "nobody", 1, decimal.Zero)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentCompareAndSet verifies single-winner semantics under racing
// updates to one identity.
func (s *PostgresStoreSuite) TestConcurrentCompareAndSet() {
	ctx := context.Background()

	acc, err := s.store.Create(ctx, "alice", models.DefaultInitialBalance)
	s.Require().NoError(err)

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.CompareAndSet(ctx, "alice", acc.Version, decimal.Zero); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one update should win the version race")
}
