package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasuryIdentity is the reserved identity acting as the system sink for
// tax payments. It holds an ordinary account and must be registered before
// first use like any other identity.
const TreasuryIdentity = "Treasury"

// DefaultInitialBalance is the starting balance credited on registration.
var DefaultInitialBalance = decimal.RequireFromString("250.00")

// Account is one ledger participant's balance record. Version is a
// monotonically increasing counter used for optimistic concurrency: every
// successful balance update increments it, and compare-and-set callers must
// present the version they read.
//
// Invariant: Balance >= 0 at every observable point.
type Account struct {
	Identity  string
	Balance   decimal.Decimal
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}
