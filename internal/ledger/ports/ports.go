// Package ports defines shared interfaces for the ledger module. Interfaces
// live here when consumed by multiple packages to avoid duplication.
package ports

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/audit"
	"mintbank/pkg/requestcontext"
)

// AccountStore is the durable identity→balance mapping. All operations are
// linearizable per identity: two concurrent updates to the same identity
// never both succeed against the same base version.
type AccountStore interface {
	// Create atomically inserts a new account. Returns
	// sentinel.ErrAlreadyExists when the identity is taken.
	Create(ctx context.Context, identity string, initialBalance decimal.Decimal) (*models.Account, error)

	// Get returns the account or sentinel.ErrNotFound.
	Get(ctx context.Context, identity string) (*models.Account, error)

	// CompareAndSet updates the balance and increments the version only if
	// the stored version still equals expectedVersion; it returns the
	// updated account, or sentinel.ErrVersionConflict without mutating
	// anything. It never silently overwrites.
	CompareAndSet(ctx context.Context, identity string, expectedVersion uint64, newBalance decimal.Decimal) (*models.Account, error)
}

// IdempotencyStore retains receipts of committed transfers long enough to
// collapse plausible retries of the same logical request.
type IdempotencyStore interface {
	// Get returns the receipt recorded under key, or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) (*models.Receipt, error)

	// Put records a committed receipt under key.
	Put(ctx context.Context, key string, receipt *models.Receipt) error
}

// AuditPublisher emits audit events for security-relevant ledger operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an audit-worthy event to both the structured logger and the
// audit publisher when one is configured.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, attrs ...any) {
	args := append(attrs, "event", event.Action, "log_type", "audit")
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if logger != nil {
		logger.InfoContext(ctx, string(event.Action), args...)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
