package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint
// violations.
const uniqueViolation = "23505"

const identityColumns = `id, provider, subject_id, email, username, first_name, last_name,
	sign_in_count, last_sign_in_at, created_at, updated_at`

// PostgresIdentityRepository implements IdentityRepository using PostgreSQL
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIdentityRepository creates a new PostgreSQL-based identity repository
func NewPostgresIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		pool: pool,
	}
}

func scanIdentity(row pgx.Row) (Identity, error) {
	var identity Identity
	err := row.Scan(
		&identity.ID,
		&identity.Provider,
		&identity.SubjectID,
		&identity.Email,
		&identity.Username,
		&identity.FirstName,
		&identity.LastName,
		&identity.SignInCount,
		&identity.LastSignInAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	return identity, err
}

// GetBySubject retrieves an identity by (provider, subject_id)
func (r *PostgresIdentityRepository) GetBySubject(ctx context.Context, provider, subjectID string) (Identity, error) {
	query := `SELECT ` + identityColumns + `
		FROM users
		WHERE provider = $1 AND subject_id = $2`

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, provider, subjectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("failed to get identity: %w", err)
	}
	return identity, nil
}

// Create inserts a new identity row
func (r *PostgresIdentityRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	query := `INSERT INTO users (id, provider, subject_id, email, username, first_name, last_name, sign_in_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, now(), now())
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query,
		uuid.New(),
		params.Provider,
		params.SubjectID,
		params.Email,
		params.Username,
		params.FirstName,
		params.LastName,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Identity{}, DuplicateIdentityError{Provider: params.Provider, SubjectID: params.SubjectID}
		}
		return Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return identity, nil
}

// UpdateProfile overwrites the mutable profile fields
func (r *PostgresIdentityRepository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Identity, error) {
	query := `UPDATE users
		SET email = $2, username = $3, first_name = $4, last_name = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query,
		params.ID,
		params.Email,
		params.Username,
		params.FirstName,
		params.LastName,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("failed to update identity: %w", err)
	}
	return identity, nil
}

// RecordSignIn updates the sign-in bookkeeping fields
func (r *PostgresIdentityRepository) RecordSignIn(ctx context.Context, id uuid.UUID, at time.Time) (Identity, error) {
	query := `UPDATE users
		SET last_sign_in_at = $2, sign_in_count = sign_in_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("failed to record sign-in: %w", err)
	}
	return identity, nil
}
