// Package handler wires the ledger facade to HTTP. It is a thin adapter:
// identity and role resolution happen upstream, and all business rules live
// behind the service interface.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/httputil"
	"mintbank/pkg/requestcontext"
)

// Service defines the ledger operations the handler depends on.
type Service interface {
	RegisterAccount(ctx context.Context, identity string) (*models.Account, error)
	QueryBalance(ctx context.Context, identity string) (*models.Account, error)
	Transfer(ctx context.Context, source, destination string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error)
	PayTreasury(ctx context.Context, source string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error)
	Grant(ctx context.Context, caller string, callerRoles models.RoleSet, destination string, amount decimal.Decimal, idempotencyKey string) (*models.Receipt, error)
}

// Handler exposes ledger endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a ledger handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts ledger endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ledger/accounts", h.HandleRegister)
	r.Get("/ledger/accounts/{identity}/balance", h.HandleQueryBalance)
	r.Post("/ledger/transfers", h.HandleTransfer)
	r.Post("/ledger/treasury/payments", h.HandlePayTreasury)
	r.Post("/ledger/grants", h.HandleGrant)
}

// HandleRegister handles POST /ledger/accounts. The new account belongs to
// the caller.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := callerIdentity(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithCallerIdentity(ctx, identity)

	acc, err := h.service.RegisterAccount(ctx, identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account registered", "identity", identity)
	httputil.WriteJSON(w, http.StatusCreated, toAccountResponse(acc))
}

// HandleQueryBalance handles GET /ledger/accounts/{identity}/balance.
func (h *Handler) HandleQueryBalance(w http.ResponseWriter, r *http.Request) {
	acc, err := h.service.QueryBalance(r.Context(), chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(acc))
}

// HandleTransfer handles POST /ledger/transfers. The debit side is always
// the caller.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	source, err := callerIdentity(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithCallerIdentity(ctx, source)
	req, ok := httputil.DecodeJSON[transferRequest](w, r)
	if !ok {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.service.Transfer(ctx, source, req.Destination, amount, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "transfer committed",
		"transfer_id", receipt.TransferID,
		"source", source,
		"destination", req.Destination,
	)
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

// HandlePayTreasury handles POST /ledger/treasury/payments.
func (h *Handler) HandlePayTreasury(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	source, err := callerIdentity(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithCallerIdentity(ctx, source)
	req, ok := httputil.DecodeJSON[treasuryPaymentRequest](w, r)
	if !ok {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.service.PayTreasury(ctx, source, amount, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

// HandleGrant handles POST /ledger/grants. Authorization happens inside the
// facade, strictly before any account lookup.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := callerIdentity(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ctx = requestcontext.WithCallerIdentity(ctx, caller)
	req, ok := httputil.DecodeJSON[grantRequest](w, r)
	if !ok {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.service.Grant(ctx, caller, callerRoles(r), req.Destination, amount, r.Header.Get(headerIdempotencyKey))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "grant minted",
		"transfer_id", receipt.TransferID,
		"caller", caller,
		"destination", req.Destination,
	)
	httputil.WriteJSON(w, http.StatusOK, receipt)
}
