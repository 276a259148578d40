// Package service exposes the ledger's public operation surface. External
// collaborators (the chat command layer, the HTTP adapter) call this facade
// and nothing below it.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/authz"
	"mintbank/internal/ledger/engine"
	"mintbank/internal/ledger/metrics"
	"mintbank/internal/ledger/models"
	"mintbank/internal/ledger/ports"
	dErrors "mintbank/pkg/domain-errors"
	"mintbank/pkg/platform/audit"
	"mintbank/pkg/platform/sentinel"
	"mintbank/pkg/requestcontext"
)

// Service orchestrates registrations, balance queries and transfers. It owns
// no business rules of its own beyond mapping operations to transfer kinds;
// validation lives in the models and execution in the engine.
type Service struct {
	accounts       ports.AccountStore
	engine         *engine.Engine
	gate           *authz.Gate
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
	initialBalance decimal.Decimal
}

// Option configures the service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithInitialBalance overrides the registration starting balance.
func WithInitialBalance(balance decimal.Decimal) Option {
	return func(s *Service) { s.initialBalance = balance }
}

// New constructs the ledger facade.
func New(accounts ports.AccountStore, eng *engine.Engine, gate *authz.Gate, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if eng == nil {
		return nil, errors.New("transfer engine is required")
	}
	if gate == nil {
		return nil, errors.New("authorization gate is required")
	}
	s := &Service{
		accounts:       accounts,
		engine:         eng,
		gate:           gate,
		logger:         slog.Default(),
		initialBalance: models.DefaultInitialBalance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterAccount creates an account for the identity with the starting
// balance. Registering a taken identity fails without touching the existing
// balance.
func (s *Service) RegisterAccount(ctx context.Context, identity string) (*models.Account, error) {
	if identity == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identity is required")
	}

	acc, err := s.accounts.Create(ctx, identity, s.initialBalance)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeAccountExists, "identity already holds an account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}

	if s.metrics != nil {
		s.metrics.AccountsCreated.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.EventAccountRegistered,
		Subject:  identity,
		Amount:   acc.Balance.String(),
	}, "identity", identity)

	return acc, nil
}

// EnsureTreasury registers the treasury sink with a zero balance if it does
// not exist yet. The treasury accumulates value only through payments, never
// through the registration credit.
func (s *Service) EnsureTreasury(ctx context.Context) error {
	acc, err := s.accounts.Create(ctx, models.TreasuryIdentity, decimal.Zero)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}

	if s.metrics != nil {
		s.metrics.AccountsCreated.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategoryOperations,
		Action:   audit.EventAccountRegistered,
		Subject:  models.TreasuryIdentity,
		Amount:   acc.Balance.String(),
	}, "identity", models.TreasuryIdentity)
	return nil
}

// QueryBalance returns the identity's account.
func (s *Service) QueryBalance(ctx context.Context, identity string) (*models.Account, error) {
	if identity == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identity is required")
	}
	acc, err := s.accounts.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeAccountNotFound, "identity holds no account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "account store unavailable")
	}
	return acc, nil
}

// Transfer moves amount from source to destination.
func (s *Service) Transfer(ctx context.Context, source, destination string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error) {
	transfer, err := models.NewPeerTransfer(idempotencyKey, source, destination, amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.execute(ctx, transfer)
	if err != nil {
		return nil, err
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category:   audit.CategoryOperations,
		Action:     audit.EventTransferCommitted,
		Actor:      source,
		Subject:    destination,
		Amount:     amount.String(),
		TransferID: receipt.TransferID.String(),
	}, "source", source, "destination", destination, "amount", amount)
	return receipt, nil
}

// PayTreasury moves amount from source to the Treasury account.
func (s *Service) PayTreasury(ctx context.Context, source string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error) {
	transfer, err := models.NewTaxPayment(idempotencyKey, source, amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.execute(ctx, transfer)
	if err != nil {
		return nil, err
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category:   audit.CategoryOperations,
		Action:     audit.EventTaxPaid,
		Actor:      source,
		Subject:    models.TreasuryIdentity,
		Amount:     amount.String(),
		TransferID: receipt.TransferID.String(),
	}, "source", source, "amount", amount)
	return receipt, nil
}

// Grant mints amount onto destination with no debit side. The caller's role
// set is checked strictly before any store access, so a denied caller cannot
// probe whether the destination exists.
func (s *Service) Grant(ctx context.Context, caller string, callerRoles models.RoleSet, destination string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error) {
	if err := s.gate.AuthorizeGrant(callerRoles); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRejected(string(dErrors.CodeUnauthorized))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
			Category: audit.CategoryCompliance,
			Action:   audit.EventGrantDenied,
			Actor:    caller,
			Subject:  destination,
			Amount:   amount.String(),
			Reason:   "caller lacks the minting role",
		}, "caller", caller)
		return nil, err
	}

	grant, err := models.NewGrant(idempotencyKey, destination, amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.execute(ctx, grant)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.GrantsMinted.Inc()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category:   audit.CategoryCompliance,
		Action:     audit.EventGrantMinted,
		Actor:      caller,
		Subject:    destination,
		Amount:     amount.String(),
		TransferID: receipt.TransferID.String(),
	}, "caller", caller, "destination", destination, "amount", amount)
	return receipt, nil
}

func (s *Service) execute(ctx context.Context, transfer *models.Transfer) (*models.Receipt, error) {
	receipt, err := s.engine.Execute(ctx, transfer)
	if err != nil {
		s.logger.InfoContext(ctx, "transfer rejected",
			"transfer_id", transfer.ID,
			"kind", transfer.Kind,
			"code", dErrors.CodeOf(err),
			"caller", requestcontext.CallerIdentity(ctx),
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementCommitted(string(transfer.Kind))
	}
	return receipt, nil
}
