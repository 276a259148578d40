package authz

import (
	"testing"

	"mintbank/internal/ledger/models"
	dErrors "mintbank/pkg/domain-errors"
)

func TestAuthorizeGrant(t *testing.T) {
	gate := New("")

	cases := []struct {
		name    string
		roles   models.RoleSet
		allowed bool
	}{
		{"minting role present", models.NewRoleSet("FOUNDER"), true},
		{"minting role among others", models.NewRoleSet("member", "FOUNDER", "moderator"), true},
		{"no roles", models.NewRoleSet(), false},
		{"unprivileged roles only", models.NewRoleSet("member", "moderator"), false},
		{"role names are case sensitive", models.NewRoleSet("founder"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := gate.AuthorizeGrant(tc.roles)
			if tc.allowed && err != nil {
				t.Fatalf("expected authorization, got %v", err)
			}
			if !tc.allowed && !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestCustomMintingRole(t *testing.T) {
	gate := New("TREASURER")

	if err := gate.AuthorizeGrant(models.NewRoleSet("TREASURER")); err != nil {
		t.Fatalf("expected custom role to authorize, got %v", err)
	}
	if err := gate.AuthorizeGrant(models.NewRoleSet("FOUNDER")); !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("default role must not authorize a custom gate, got %v", err)
	}
}
