package identity

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const usersSchema = `
CREATE TABLE users (
	id uuid PRIMARY KEY,
	provider text NOT NULL,
	subject_id text NOT NULL,
	email text NOT NULL,
	username text NOT NULL DEFAULT '',
	first_name text NOT NULL DEFAULT '',
	last_name text NOT NULL DEFAULT '',
	sign_in_count integer NOT NULL DEFAULT 0,
	last_sign_in_at timestamptz,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX users_provider_subject_idx ON users (provider, subject_id);
CREATE UNIQUE INDEX users_email_idx ON users (email);
`

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, usersSchema)
	require.NoError(t, err)

	return pool
}

func TestPostgresIdentityRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t)
	repo := NewPostgresIdentityRepository(pool)

	t.Run("GetBySubjectNotFound", func(t *testing.T) {
		_, err := repo.GetBySubject(ctx, ProviderKeycloak, "missing")
		assert.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		created, err := repo.Create(ctx, CreateIdentityParams{
			Provider:  ProviderKeycloak,
			SubjectID: "u1",
			Email:     "a@example.com",
			Username:  "alice",
			FirstName: "Alice",
			LastName:  "Archer",
		})
		require.NoError(t, err)
		assert.Equal(t, int32(0), created.SignInCount)
		assert.Nil(t, created.LastSignInAt)

		got, err := repo.GetBySubject(ctx, ProviderKeycloak, "u1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "a@example.com", got.Email)
	})

	t.Run("DuplicateSubject", func(t *testing.T) {
		_, err := repo.Create(ctx, CreateIdentityParams{
			Provider:  ProviderKeycloak,
			SubjectID: "u1",
			Email:     "other@example.com",
		})
		require.Error(t, err)

		var dup DuplicateIdentityError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := repo.Create(ctx, CreateIdentityParams{
			Provider:  ProviderKeycloak,
			SubjectID: "u-other",
			Email:     "a@example.com",
		})
		require.Error(t, err)

		var dup DuplicateIdentityError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		existing, err := repo.GetBySubject(ctx, ProviderKeycloak, "u1")
		require.NoError(t, err)

		updated, err := repo.UpdateProfile(ctx, UpdateProfileParams{
			ID:        existing.ID,
			Email:     "renamed@example.com",
			Username:  "renamed",
			FirstName: "Re",
			LastName:  "Named",
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed@example.com", updated.Email)
		assert.Equal(t, "renamed", updated.Username)
	})

	t.Run("RecordSignIn", func(t *testing.T) {
		existing, err := repo.GetBySubject(ctx, ProviderKeycloak, "u1")
		require.NoError(t, err)

		at := time.Now().UTC().Truncate(time.Microsecond)
		first, err := repo.RecordSignIn(ctx, existing.ID, at)
		require.NoError(t, err)
		assert.Equal(t, int32(1), first.SignInCount)
		require.NotNil(t, first.LastSignInAt)
		assert.WithinDuration(t, at, *first.LastSignInAt, time.Second)

		second, err := repo.RecordSignIn(ctx, existing.ID, at.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int32(2), second.SignInCount)
	})

	t.Run("ReconcileEndToEnd", func(t *testing.T) {
		service := NewIdentityService(repo)

		ident, err := service.Reconcile(ctx, ProviderClaims{
			Subject:           "e2e-sub",
			Email:             "e2e@example.com",
			PreferredUsername: "e2e",
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), ident.SignInCount)

		again, err := service.Reconcile(ctx, ProviderClaims{
			Subject: "e2e-sub",
			Email:   "e2e-new@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, ident.ID, again.ID)
		assert.Equal(t, "e2e-new@example.com", again.Email)
		assert.Equal(t, "e2e-new", again.Username)
		assert.Equal(t, int32(2), again.SignInCount)
	})
}
