package handler

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/models"
	dErrors "mintbank/pkg/domain-errors"
	platformstrings "mintbank/pkg/platform/strings"
)

// Caller identity and roles are resolved by the upstream chat platform and
// arrive as trusted headers; this adapter performs no authentication.
const (
	headerCallerIdentity = "X-Caller-Identity"
	headerCallerRoles    = "X-Caller-Roles"
	headerIdempotencyKey = "X-Idempotency-Key"
)

type transferRequest struct {
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
}

type treasuryPaymentRequest struct {
	Amount string `json:"amount"`
}

type grantRequest struct {
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
}

type accountResponse struct {
	Identity string `json:"identity"`
	Balance  string `json:"balance"`
}

func callerIdentity(r *http.Request) (string, error) {
	identity := strings.TrimSpace(r.Header.Get(headerCallerIdentity))
	if identity == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "caller identity header is required")
	}
	return identity, nil
}

func callerRoles(r *http.Request) models.RoleSet {
	raw := r.Header.Get(headerCallerRoles)
	if raw == "" {
		return models.NewRoleSet()
	}
	parts := platformstrings.DedupeAndTrim(strings.Split(raw, ","))
	roles := make([]models.Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, models.Role(p))
	}
	return models.NewRoleSet(roles...)
}

// parseAmount reads the decimal string form; amounts never travel as
// floating point.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, dErrors.New(dErrors.CodeInvalidAmount, "amount must be a decimal string")
	}
	return amount, nil
}

func toAccountResponse(acc *models.Account) accountResponse {
	return accountResponse{
		Identity: acc.Identity,
		Balance:  acc.Balance.StringFixed(2),
	}
}
