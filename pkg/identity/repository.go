package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateIdentityParams represents parameters for creating an identity
type CreateIdentityParams struct {
	Provider  string
	SubjectID string
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// UpdateProfileParams represents parameters for refreshing the mutable
// profile fields of an identity
type UpdateProfileParams struct {
	ID        uuid.UUID
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// IdentityRepository defines the interface for identity storage
type IdentityRepository interface {
	// GetBySubject retrieves an identity by its provider-issued key.
	// Returns ErrIdentityNotFound when no row matches.
	GetBySubject(ctx context.Context, provider, subjectID string) (Identity, error)

	// Create inserts a new identity. Returns DuplicateIdentityError
	// when (provider, subject_id) or email collides with an existing row.
	Create(ctx context.Context, params CreateIdentityParams) (Identity, error)

	// UpdateProfile overwrites the mutable profile fields.
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (Identity, error)

	// RecordSignIn sets last_sign_in_at and increments the sign-in counter.
	RecordSignIn(ctx context.Context, id uuid.UUID, at time.Time) (Identity, error)
}
