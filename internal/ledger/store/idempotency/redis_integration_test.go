//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"mintbank/internal/ledger/models"
	"mintbank/internal/ledger/store/idempotency"
	"mintbank/pkg/platform/sentinel"
	"mintbank/pkg/testutil/containers"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	store := idempotency.NewRedis(rc.Client, time.Minute)
	ctx := context.Background()

	receipt := &models.Receipt{
		TransferID: uuid.New(),
		Kind:       models.KindTaxPayment,
		Balances: map[string]decimal.Decimal{
			"alice":    decimal.RequireFromString("150.00"),
			"Treasury": decimal.RequireFromString("50.00"),
		},
	}

	require.NoError(t, store.Put(ctx, "key-1", receipt))

	got, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, receipt.TransferID, got.TransferID)
	require.True(t, got.Balances["alice"].Equal(receipt.Balances["alice"]))

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	// First record wins when two writers race on the same key.
	require.NoError(t, store.Put(ctx, "key-1", &models.Receipt{TransferID: uuid.New()}))
	again, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, receipt.TransferID, again.TransferID)
}
