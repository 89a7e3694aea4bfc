package articlesrequest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const articlesSchema = `
CREATE TABLE articles_requests (
	id uuid PRIMARY KEY,
	title text NOT NULL,
	description text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE articles_request_articles (
	id uuid PRIMARY KEY,
	articles_request_id uuid NOT NULL REFERENCES articles_requests (id) ON DELETE CASCADE,
	title text NOT NULL,
	content text NOT NULL,
	attachment_filename text NOT NULL DEFAULT '',
	attachment_content_type text NOT NULL DEFAULT '',
	attachment_size bigint NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
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

	_, err = pool.Exec(ctx, articlesSchema)
	require.NoError(t, err)

	return pool
}

func TestPostgresArticlesRequestRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t)
	repo := NewPostgresArticlesRequestRepository(pool)
	service := NewArticlesRequestService(repo)

	t.Run("CreateNestedAndGet", func(t *testing.T) {
		created, err := repo.CreateRequest(ctx, CreateRequestParams{
			Title:       "Annual report",
			Description: "Long form pieces",
			Articles: []CreateArticleParams{
				{Title: "Intro", Content: "Year in review"},
				{Title: "Finance", Content: "Numbers", AttachmentFilename: "fy.pdf", AttachmentContentType: "application/pdf", AttachmentSize: 4096},
			},
		})
		require.NoError(t, err)
		require.Len(t, created.Articles, 2)

		got, err := repo.GetRequest(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Annual report", got.Title)
		require.Len(t, got.Articles, 2)
		assert.Equal(t, "fy.pdf", got.Articles[1].AttachmentFilename)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		_, err := repo.GetRequest(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("ListIncludesArticles", func(t *testing.T) {
		requests, err := repo.ListRequests(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, requests)
		assert.Len(t, requests[0].Articles, 2)
	})

	t.Run("UpdateAtomicAndScopedToRequest", func(t *testing.T) {
		target, err := repo.CreateRequest(ctx, CreateRequestParams{
			Title:       "Target",
			Description: "Target desc",
			Articles:    []CreateArticleParams{{Title: "Mine", Content: "Body"}},
		})
		require.NoError(t, err)
		other, err := repo.CreateRequest(ctx, CreateRequestParams{
			Title:       "Other",
			Description: "Other desc",
			Articles:    []CreateArticleParams{{Title: "Stray", Content: "Body"}},
		})
		require.NoError(t, err)

		// Updating an article that belongs to another request fails
		// and rolls the whole update back.
		_, err = repo.UpdateRequest(ctx, UpdateRequestParams{
			ID:          target.ID,
			Title:       "Hijacked",
			Description: "Changed",
			CreateArticles: []CreateArticleParams{
				{Title: "Never created", Content: "Body"},
			},
			UpdateArticles: []UpdateArticleParams{
				{ID: other.Articles[0].ID, Title: "Taken", Content: "Nope"},
			},
		})
		assert.ErrorIs(t, err, ErrArticleNotFound)

		got, err := repo.GetRequest(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "Target", got.Title)
		assert.Equal(t, "Target desc", got.Description)
		require.Len(t, got.Articles, 1)
		assert.Equal(t, "Mine", got.Articles[0].Title)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		created, err := repo.CreateRequest(ctx, CreateRequestParams{
			Title:       "Doomed",
			Description: "Desc",
			Articles:    []CreateArticleParams{{Title: "A", Content: "B"}},
		})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteRequest(ctx, created.ID))
		_, err = repo.GetRequest(ctx, created.ID)
		assert.ErrorIs(t, err, ErrRequestNotFound)

		var count int
		err = pool.QueryRow(ctx,
			"SELECT count(*) FROM articles_request_articles WHERE articles_request_id = $1",
			created.ID).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("ServiceUpdateEndToEnd", func(t *testing.T) {
		created, err := service.Create(ctx, RequestInput{
			Title:       "Service backed",
			Description: "Desc",
			Articles:    []ArticleInput{{Title: "Original", Content: "Body"}},
		})
		require.NoError(t, err)
		articleID := created.Articles[0].ID

		updated, err := service.Update(ctx, created.ID, RequestInput{
			Title:       "Service backed",
			Description: "Desc",
			Articles: []ArticleInput{
				{ID: &articleID, Destroy: true},
				{Title: "Replacement", Content: "New body"},
			},
		})
		require.NoError(t, err)
		require.Len(t, updated.Articles, 1)
		assert.Equal(t, "Replacement", updated.Articles[0].Title)
	})
}
