package identity

import (
	"errors"
	"fmt"
)

// ErrIdentityNotFound is returned by repositories when no row matches
// the lookup key.
var ErrIdentityNotFound = errors.New("identity not found")

// MissingRequiredClaimsError is returned when the verified claims lack
// a subject or an email. Reconciliation refuses to touch storage in
// that case.
type MissingRequiredClaimsError struct{}

func (e MissingRequiredClaimsError) Error() string {
	return "missing required claims: sub and email"
}

// DuplicateIdentityError is returned when an insert collides with an
// existing row on one of the unique keys. The reconciler treats it as
// "someone else created the row first" and re-reads.
type DuplicateIdentityError struct {
	Provider  string
	SubjectID string
}

func (e DuplicateIdentityError) Error() string {
	return fmt.Sprintf("identity already exists: %s/%s", e.Provider, e.SubjectID)
}
