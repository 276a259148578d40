// Package engine executes ledger transfers as all-or-nothing operations.
//
// Correctness model: per-identity keyed mutexes (acquired in a fixed total
// order) serialize the engine's own read-validate-write cycles, while the
// store's compare-and-set guards against writers outside this process, e.g.
// another replica sharing the same PostgreSQL database. A compare-and-set
// loss rolls the whole operation back and the cycle retries from a fresh
// read, up to a bounded number of attempts.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mintbank/internal/ledger/metrics"
	"mintbank/internal/ledger/models"
	"mintbank/internal/ledger/ports"
	dErrors "mintbank/pkg/domain-errors"
	"mintbank/pkg/platform/sentinel"
)

// DefaultMaxAttempts bounds the optimistic retry loop before the conflict
// surfaces to the caller.
const DefaultMaxAttempts = 5

// Engine validates and executes transfers against the account store with
// idempotent replay protection.
type Engine struct {
	accounts    ports.AccountStore
	idem        ports.IdempotencyStore
	locks       *keyedLocks
	maxAttempts int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Option configures the engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxAttempts overrides the retry bound.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// New constructs a transfer engine.
func New(accounts ports.AccountStore, idem ports.IdempotencyStore, opts ...Option) (*Engine, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if idem == nil {
		return nil, errors.New("idempotency store is required")
	}
	e := &Engine{
		accounts:    accounts,
		idem:        idem,
		locks:       newKeyedLocks(),
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
		tracer:      otel.Tracer("mintbank/ledger/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs a transfer to completion: either every mutation it implies is
// applied and a receipt returned, or nothing is mutated and a coded error
// explains the rejection. Replaying a committed transfer's idempotency key
// returns the prior receipt without touching balances.
func (e *Engine) Execute(ctx context.Context, transfer *models.Transfer) (*models.Receipt, error) {
	ctx, span := e.tracer.Start(ctx, "ledger.engine.execute",
		trace.WithAttributes(
			attribute.String("transfer.kind", string(transfer.Kind)),
			attribute.String("transfer.id", transfer.ID.String()),
		),
	)
	defer span.End()

	if !transfer.Amount.IsPositive() {
		return nil, e.reject(transfer, dErrors.New(dErrors.CodeInvalidAmount, "amount must be greater than zero"))
	}

	if receipt, err := e.idem.Get(ctx, transfer.IdempotencyKey); err == nil {
		transfer.Status = models.StatusCommitted
		return receipt, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, e.reject(transfer, dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency lookup failed"))
	}

	unlock := e.locks.lockOrdered(transfer.Source, transfer.Destination)
	defer unlock()

	// A duplicate of this request may have committed while we waited on the
	// locks; the pre-lock read cannot see that. Re-checking under the locks
	// makes the lookup-and-execute pair atomic for a given key.
	if receipt, err := e.idem.Get(ctx, transfer.IdempotencyKey); err == nil {
		transfer.Status = models.StatusCommitted
		return receipt, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, e.reject(transfer, dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency lookup failed"))
	}

	var receipt *models.Receipt
	var err error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 && e.metrics != nil {
			e.metrics.ConflictRetries.Inc()
		}
		// No mutation has been retained at this point, so honoring
		// cancellation between attempts is always safe.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, e.reject(transfer, dErrors.Wrap(ctxErr, dErrors.CodeUnavailable, "cancelled before commit"))
		}

		receipt, err = e.attempt(ctx, transfer)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrVersionConflict) {
			return nil, e.reject(transfer, err)
		}
	}
	if err != nil {
		return nil, e.reject(transfer, dErrors.Wrap(err, dErrors.CodeConcurrencyConflict, "transfer lost the version race repeatedly"))
	}

	transfer.Status = models.StatusCommitted
	if putErr := e.idem.Put(ctx, transfer.IdempotencyKey, receipt); putErr != nil {
		// The commit is already durable; a failed dedup write only weakens
		// retry protection for this one key.
		e.logger.WarnContext(ctx, "failed to record idempotency receipt",
			"transfer_id", transfer.ID,
			"error", putErr,
		)
	}
	return receipt, nil
}

// attempt runs one read-validate-write cycle. It returns a bare
// sentinel.ErrVersionConflict when the cycle should be retried, and a coded
// domain error for terminal rejections.
func (e *Engine) attempt(ctx context.Context, transfer *models.Transfer) (*models.Receipt, error) {
	if transfer.Kind == models.KindGrant {
		return e.attemptGrant(ctx, transfer)
	}
	return e.attemptPair(ctx, transfer)
}

func (e *Engine) attemptGrant(ctx context.Context, transfer *models.Transfer) (*models.Receipt, error) {
	dst, err := e.accounts.Get(ctx, transfer.Destination)
	if err != nil {
		return nil, mapGetError(err, "destination account not found")
	}
	updated, err := e.accounts.CompareAndSet(ctx, transfer.Destination, dst.Version, dst.Balance.Add(transfer.Amount))
	if err != nil {
		return nil, mapCASError(err)
	}
	return &models.Receipt{
		TransferID: transfer.ID,
		Kind:       transfer.Kind,
		Balances:   map[string]decimal.Decimal{updated.Identity: updated.Balance},
	}, nil
}

func (e *Engine) attemptPair(ctx context.Context, transfer *models.Transfer) (*models.Receipt, error) {
	src, err := e.accounts.Get(ctx, transfer.Source)
	if err != nil {
		return nil, mapGetError(err, "source account not found")
	}
	dst, err := e.accounts.Get(ctx, transfer.Destination)
	if err != nil {
		return nil, mapGetError(err, "destination account not found")
	}
	if src.Balance.LessThan(transfer.Amount) {
		return nil, dErrors.New(dErrors.CodeInsufficientFunds, "source balance is below the transfer amount")
	}

	debit := update{identity: src.Identity, version: src.Version, oldBalance: src.Balance, newBalance: src.Balance.Sub(transfer.Amount)}
	credit := update{identity: dst.Identity, version: dst.Version, oldBalance: dst.Balance, newBalance: dst.Balance.Add(transfer.Amount)}

	// Apply in lexicographic identity order, matching the lock order.
	first, second := debit, credit
	if second.identity < first.identity {
		first, second = second, first
	}

	firstApplied, err := e.accounts.CompareAndSet(ctx, first.identity, first.version, first.newBalance)
	if err != nil {
		return nil, mapCASError(err)
	}
	secondApplied, err := e.accounts.CompareAndSet(ctx, second.identity, second.version, second.newBalance)
	if err != nil {
		// Roll the first mutation back before retrying so no reader ever
		// observes a half-applied transfer.
		if _, rbErr := e.accounts.CompareAndSet(ctx, first.identity, firstApplied.Version, first.oldBalance); rbErr != nil {
			e.logger.ErrorContext(ctx, "rollback of half-applied transfer failed",
				"transfer_id", transfer.ID,
				"identity", first.identity,
				"error", rbErr,
			)
			return nil, dErrors.Wrap(rbErr, dErrors.CodeInternal, "rollback failed after partial application")
		}
		return nil, mapCASError(err)
	}

	return &models.Receipt{
		TransferID: transfer.ID,
		Kind:       transfer.Kind,
		Balances: map[string]decimal.Decimal{
			firstApplied.Identity:  firstApplied.Balance,
			secondApplied.Identity: secondApplied.Balance,
		},
	}, nil
}

// update captures one side of the dual mutation.
type update struct {
	identity   string
	version    uint64
	oldBalance decimal.Decimal
	newBalance decimal.Decimal
}

func (e *Engine) reject(transfer *models.Transfer, err error) error {
	transfer.Status = models.StatusRejected
	if e.metrics != nil {
		e.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
	}
	return err
}

// mapGetError translates store lookup failures, keeping sentinel causes
// reachable.
func mapGetError(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeAccountNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
}

// mapCASError passes version conflicts through bare so the retry loop can
// recognize them; anything else is a store outage.
func mapCASError(err error) error {
	if errors.Is(err, sentinel.ErrVersionConflict) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		// The account existed at read time; accounts are never deleted.
		return dErrors.Wrap(err, dErrors.CodeInternal, "account vanished between read and write")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
}
