// Package authz gates privileged ledger operations on the caller's resolved
// role set. It is a pure predicate: denial happens before any store access,
// so an unauthorized caller learns nothing about the target account.
package authz

import (
	"mintbank/internal/ledger/models"
	dErrors "mintbank/pkg/domain-errors"
)

// DefaultMintingRole is the role holding issuance rights unless the deployment
// overrides it.
const DefaultMintingRole models.Role = "FOUNDER"

// Gate authorizes privileged operations.
type Gate struct {
	mintingRole models.Role
}

// New builds a gate. An empty mintingRole falls back to the default.
func New(mintingRole models.Role) *Gate {
	if mintingRole == "" {
		mintingRole = DefaultMintingRole
	}
	return &Gate{mintingRole: mintingRole}
}

// AuthorizeGrant allows currency issuance iff the caller holds the minting
// role.
func (g *Gate) AuthorizeGrant(callerRoles models.RoleSet) error {
	if callerRoles.Contains(g.mintingRole) {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "caller lacks the minting role")
}
