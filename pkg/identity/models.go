package identity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a local user record provisioned from the identity
// provider. (Provider, SubjectID) identifies at most one row; Email is
// globally unique.
type Identity struct {
	ID           uuid.UUID
	Provider     string
	SubjectID    string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	SignInCount  int32
	LastSignInAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProviderClaims is the subset of verified token claims the reconciler
// consumes. Field names line up with keycloak.Claims so the two can be
// mapped mechanically.
type ProviderClaims struct {
	Subject           string
	Email             string
	PreferredUsername string
	GivenName         string
	FamilyName        string
}
