package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with monetary-supply significance
	// that auditors must be able to reconstruct: every grant expands the
	// money supply with no offsetting debit.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine ledger activity useful for
	// debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Action names what happened.
type Action string

const (
	EventAccountRegistered Action = "account_registered"
	EventTransferCommitted Action = "transfer_committed"
	EventTaxPaid           Action = "tax_paid"
	EventGrantMinted       Action = "grant_minted"
	EventGrantDenied       Action = "grant_denied"
)

// Event is emitted from domain logic to capture key ledger actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    Action

	// Actor is the caller identity that triggered the action; empty when
	// the action is system-initiated (e.g. treasury bootstrap).
	Actor string
	// Subject is the identity whose account was affected.
	Subject string
	// Amount is the decimal string of the value moved or minted.
	Amount string
	// TransferID correlates the event with a committed transfer.
	TransferID string
	// Reason records why an action was denied.
	Reason string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
