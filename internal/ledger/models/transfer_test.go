package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mintbank/pkg/domain-errors"
)

func TestNewPeerTransferValidation(t *testing.T) {
	ten := decimal.RequireFromString("10.00")

	tests := []struct {
		name        string
		source      string
		destination string
		amount      decimal.Decimal
		wantCode    dErrors.Code
	}{
		{name: "valid", source: "alice", destination: "bob", amount: ten},
		{name: "missing source", source: "", destination: "bob", amount: ten, wantCode: dErrors.CodeBadRequest},
		{name: "missing destination", source: "alice", destination: "", amount: ten, wantCode: dErrors.CodeBadRequest},
		{name: "self transfer", source: "alice", destination: "alice", amount: ten, wantCode: dErrors.CodeBadRequest},
		{name: "zero amount", source: "alice", destination: "bob", amount: decimal.Zero, wantCode: dErrors.CodeInvalidAmount},
		{name: "negative amount", source: "alice", destination: "bob", amount: ten.Neg(), wantCode: dErrors.CodeInvalidAmount},
		{name: "sub-cent amount", source: "alice", destination: "bob", amount: decimal.RequireFromString("100.005"), wantCode: dErrors.CodeInvalidAmount},
		{name: "trailing zeros beyond cents", source: "alice", destination: "bob", amount: decimal.RequireFromString("100.0500")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfer, err := NewPeerTransfer("", tt.source, tt.destination, tt.amount)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, KindPeerTransfer, transfer.Kind)
			assert.Equal(t, StatusPending, transfer.Status)
			assert.NotEmpty(t, transfer.IdempotencyKey, "a missing key must be generated")
		})
	}
}

func TestNewTaxPayment(t *testing.T) {
	amount := decimal.RequireFromString("25.00")

	transfer, err := NewTaxPayment("key-1", "alice", amount)
	require.NoError(t, err)
	assert.Equal(t, KindTaxPayment, transfer.Kind)
	assert.Equal(t, TreasuryIdentity, transfer.Destination)
	assert.Equal(t, "key-1", transfer.IdempotencyKey)

	_, err = NewTaxPayment("", TreasuryIdentity, amount)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestNewGrant(t *testing.T) {
	transfer, err := NewGrant("", "bob", decimal.RequireFromString("1000.00"))
	require.NoError(t, err)
	assert.Equal(t, KindGrant, transfer.Kind)
	assert.Empty(t, transfer.Source, "grants have no debit side")

	_, err = NewGrant("", "", decimal.RequireFromString("1.00"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRoleSetContains(t *testing.T) {
	set := NewRoleSet("FOUNDER", "member", "")

	assert.True(t, set.Contains("FOUNDER"))
	assert.True(t, set.Contains("member"))
	assert.False(t, set.Contains("founder"))
	assert.False(t, set.Contains(""))
}
