package models

// Role names a capability the upstream chat platform resolved for the
// caller. The ledger never resolves roles itself; it only checks membership.
type Role string

// RoleSet is the caller's resolved role collection.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from resolved role names.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the set includes the given role.
func (s RoleSet) Contains(role Role) bool {
	_, ok := s[role]
	return ok
}
