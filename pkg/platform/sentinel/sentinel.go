package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no account under the requested identity
// - ErrAlreadyExists: identity already holds an account
// - ErrVersionConflict: compare-and-set lost the race (stored version moved)
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad amounts, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrUnavailable     = errors.New("unavailable")
)
