package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderKeycloak is the provider tag under which reconciled
// identities are stored.
const ProviderKeycloak = "keycloak"

// IdentityService reconciles verified provider claims with local
// identity records.
type IdentityService struct {
	repo IdentityRepository
	now  func() time.Time
}

type Option func(*IdentityService)

// WithClock replaces the service's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *IdentityService) {
		s.now = now
	}
}

func NewIdentityService(repo IdentityRepository, opts ...Option) *IdentityService {
	service := &IdentityService{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Reconcile finds or creates the identity for the given claims and
// syncs its profile fields. Claims are the source of truth on every
// call: email, username and names are overwritten each time, and the
// sign-in bookkeeping is updated for new and existing identities alike.
func (s *IdentityService) Reconcile(ctx context.Context, claims ProviderClaims) (Identity, error) {
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, MissingRequiredClaimsError{}
	}

	username := claims.PreferredUsername
	if username == "" {
		username = emailLocalPart(claims.Email)
	}

	ident, err := s.findOrCreate(ctx, claims, username)
	if err != nil {
		return Identity{}, err
	}

	ident, err = s.repo.UpdateProfile(ctx, UpdateProfileParams{
		ID:        ident.ID,
		Email:     claims.Email,
		Username:  username,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to sync identity profile: %w", err)
	}

	ident, err = s.repo.RecordSignIn(ctx, ident.ID, s.now().UTC())
	if err != nil {
		return Identity{}, fmt.Errorf("failed to record sign-in: %w", err)
	}

	return ident, nil
}

func (s *IdentityService) findOrCreate(ctx context.Context, claims ProviderClaims, username string) (Identity, error) {
	ident, err := s.repo.GetBySubject(ctx, ProviderKeycloak, claims.Subject)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, ErrIdentityNotFound) {
		return Identity{}, fmt.Errorf("failed to look up identity: %w", err)
	}

	ident, err = s.repo.Create(ctx, CreateIdentityParams{
		Provider:  ProviderKeycloak,
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Username:  username,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	})
	if err == nil {
		return ident, nil
	}

	// A concurrent request for the same subject may have inserted the
	// row between our lookup and insert. The unique key makes the race
	// harmless: re-read the winner's row.
	var dup DuplicateIdentityError
	if errors.As(err, &dup) {
		ident, err = s.repo.GetBySubject(ctx, ProviderKeycloak, claims.Subject)
		if err != nil {
			return Identity{}, fmt.Errorf("failed to re-read identity after insert race: %w", err)
		}
		return ident, nil
	}

	return Identity{}, fmt.Errorf("failed to create identity: %w", err)
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
