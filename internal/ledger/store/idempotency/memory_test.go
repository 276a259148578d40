package idempotency

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/sentinel"
)

func testReceipt() *models.Receipt {
	return &models.Receipt{
		TransferID: uuid.New(),
		Kind:       models.KindPeerTransfer,
		Balances: map[string]decimal.Decimal{
			"alice": decimal.RequireFromString("150.00"),
			"bob":   decimal.RequireFromString("350.00"),
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	receipt := testReceipt()

	require.NoError(t, store.Put(ctx, "key-1", receipt))

	got, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, receipt.TransferID, got.TransferID)

	_, err = store.Get(ctx, "key-2")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFirstRecordWins(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	first := testReceipt()
	require.NoError(t, store.Put(ctx, "key-1", first))
	require.NoError(t, store.Put(ctx, "key-1", testReceipt()))

	got, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, first.TransferID, got.TransferID)
}

func TestTTLEviction(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewInMemory(WithTTL(time.Minute), WithClock(clock))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "key-1", testReceipt()))

	now = now.Add(30 * time.Second)
	_, err := store.Get(ctx, "key-1")
	require.NoError(t, err, "record inside the window stays replayable")

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "key-1")
	require.ErrorIs(t, err, sentinel.ErrNotFound, "record beyond the window ages out")
}

func TestEntryCapEvictsOldest(t *testing.T) {
	store := NewInMemory(WithMaxEntries(3))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("key-%d", i), testReceipt()))
	}

	_, err := store.Get(ctx, "key-0")
	require.ErrorIs(t, err, sentinel.ErrNotFound, "oldest record evicted at cap")

	for i := 1; i < 4; i++ {
		_, err := store.Get(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
	}
}
