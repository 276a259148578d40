package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dErrors "mintbank/pkg/domain-errors"
)

// Kind identifies the shape of a transfer.
type Kind string

const (
	// KindPeerTransfer moves value between two user accounts.
	KindPeerTransfer Kind = "peer_transfer"
	// KindTaxPayment moves value from a user account to the Treasury.
	KindTaxPayment Kind = "tax_payment"
	// KindGrant is a privileged unbacked credit with no debit side.
	KindGrant Kind = "grant"
)

// Status is the lifecycle state of a transfer request. Committed and
// Rejected are terminal; every transfer is finalized before the call that
// accepted it returns.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusRejected  Status = "rejected"
)

// Transfer is an ephemeral request to move value. It is not persisted beyond
// the idempotency record written for committed transfers.
type Transfer struct {
	ID             uuid.UUID
	IdempotencyKey string
	Kind           Kind
	Source         string
	Destination    string
	Amount         decimal.Decimal
	Status         Status
}

// Receipt reports a committed transfer: the resulting balance of every
// account the transfer touched.
type Receipt struct {
	TransferID uuid.UUID                  `json:"transfer_id"`
	Kind       Kind                       `json:"kind"`
	Balances   map[string]decimal.Decimal `json:"balances"`
}

// NewPeerTransfer builds a validated peer transfer request.
func NewPeerTransfer(idempotencyKey, source, destination string, amount decimal.Decimal) (*Transfer, error) {
	if source == "" || destination == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "source and destination identities are required")
	}
	if source == destination {
		return nil, dErrors.New(dErrors.CodeBadRequest, "source and destination must differ")
	}
	return newTransfer(idempotencyKey, KindPeerTransfer, source, destination, amount)
}

// NewTaxPayment builds a validated payment from source to the Treasury.
func NewTaxPayment(idempotencyKey, source string, amount decimal.Decimal) (*Transfer, error) {
	if source == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "source identity is required")
	}
	if source == TreasuryIdentity {
		return nil, dErrors.New(dErrors.CodeBadRequest, "treasury cannot pay itself")
	}
	return newTransfer(idempotencyKey, KindTaxPayment, source, TreasuryIdentity, amount)
}

// NewGrant builds a validated grant request. Authorization is checked by the
// caller before the transfer reaches the engine.
func NewGrant(idempotencyKey, destination string, amount decimal.Decimal) (*Transfer, error) {
	if destination == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "destination identity is required")
	}
	return newTransfer(idempotencyKey, KindGrant, "", destination, amount)
}

func newTransfer(idempotencyKey string, kind Kind, source, destination string, amount decimal.Decimal) (*Transfer, error) {
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero")
	}
	// Balances are stored at cent precision; a finer-grained amount would
	// round differently on the debit and credit sides.
	if !amount.Equal(amount.Round(2)) {
		return nil, dErrors.New(dErrors.CodeInvalidAmount, "amount must have at most two decimal places")
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	return &Transfer{
		ID:             uuid.New(),
		IdempotencyKey: idempotencyKey,
		Kind:           kind,
		Source:         source,
		Destination:    destination,
		Amount:         amount,
		Status:         StatusPending,
	}, nil
}
