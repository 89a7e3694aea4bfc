package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemIdentityRepository is an in-memory implementation of
// IdentityRepository for testing and local development. It enforces the
// same uniqueness rules as the Postgres schema.
type InMemIdentityRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]Identity
}

// NewInMemIdentityRepository creates a new in-memory identity repository
func NewInMemIdentityRepository() *InMemIdentityRepository {
	return &InMemIdentityRepository{
		identities: make(map[uuid.UUID]Identity),
	}
}

func (r *InMemIdentityRepository) GetBySubject(ctx context.Context, provider, subjectID string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, identity := range r.identities {
		if identity.Provider == provider && identity.SubjectID == subjectID {
			return identity, nil
		}
	}
	return Identity{}, ErrIdentityNotFound
}

func (r *InMemIdentityRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.identities {
		if (existing.Provider == params.Provider && existing.SubjectID == params.SubjectID) ||
			existing.Email == params.Email {
			return Identity{}, DuplicateIdentityError{Provider: params.Provider, SubjectID: params.SubjectID}
		}
	}

	now := time.Now().UTC()
	identity := Identity{
		ID:        uuid.New(),
		Provider:  params.Provider,
		SubjectID: params.SubjectID,
		Email:     params.Email,
		Username:  params.Username,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.identities[identity.ID] = identity
	return identity, nil
}

func (r *InMemIdentityRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[params.ID]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}

	identity.Email = params.Email
	identity.Username = params.Username
	identity.FirstName = params.FirstName
	identity.LastName = params.LastName
	identity.UpdatedAt = time.Now().UTC()
	r.identities[params.ID] = identity
	return identity, nil
}

func (r *InMemIdentityRepository) RecordSignIn(ctx context.Context, id uuid.UUID, at time.Time) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}

	signInAt := at
	identity.LastSignInAt = &signInAt
	identity.SignInCount++
	identity.UpdatedAt = time.Now().UTC()
	r.identities[id] = identity
	return identity, nil
}
