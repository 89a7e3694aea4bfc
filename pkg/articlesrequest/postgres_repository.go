package articlesrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = "id, title, description, created_at, updated_at"

const articleColumns = "id, articles_request_id, title, content, attachment_filename, attachment_content_type, attachment_size, created_at, updated_at"

type PostgresArticlesRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresArticlesRequestRepository(pool *pgxpool.Pool) *PostgresArticlesRequestRepository {
	return &PostgresArticlesRequestRepository{pool: pool}
}

func scanRequest(row pgx.Row) (ArticlesRequest, error) {
	var r ArticlesRequest
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.ArticlesRequestID, &a.Title, &a.Content,
		&a.AttachmentFilename, &a.AttachmentContentType, &a.AttachmentSize,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresArticlesRequestRepository) ListRequests(ctx context.Context) ([]ArticlesRequest, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+requestColumns+" FROM articles_requests ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query articles requests: %w", err)
	}
	defer rows.Close()

	requests := []ArticlesRequest{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan articles request: %w", err)
		}
		req.Articles = []Article{}
		index[req.ID] = len(requests)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]uuid.UUID, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
	}
	articleRows, err := r.pool.Query(ctx,
		"SELECT "+articleColumns+" FROM articles_request_articles WHERE articles_request_id = ANY($1) ORDER BY created_at",
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer articleRows.Close()
	for articleRows.Next() {
		article, err := scanArticle(articleRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		i := index[article.ArticlesRequestID]
		requests[i].Articles = append(requests[i].Articles, article)
	}
	if err := articleRows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresArticlesRequestRepository) GetRequest(ctx context.Context, id uuid.UUID) (ArticlesRequest, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM articles_requests WHERE id = $1", id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ArticlesRequest{}, ErrRequestNotFound
		}
		return ArticlesRequest{}, fmt.Errorf("failed to get articles request: %w", err)
	}
	req.Articles, err = r.articlesForRequest(ctx, r.pool, id)
	if err != nil {
		return ArticlesRequest{}, err
	}
	return req, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresArticlesRequestRepository) articlesForRequest(ctx context.Context, q querier, requestID uuid.UUID) ([]Article, error) {
	rows, err := q.Query(ctx,
		"SELECT "+articleColumns+" FROM articles_request_articles WHERE articles_request_id = $1 ORDER BY created_at",
		requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()
	articles := []Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (r *PostgresArticlesRequestRepository) CreateRequest(ctx context.Context, params CreateRequestParams) (ArticlesRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ArticlesRequest{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`INSERT INTO articles_requests (id, title, description)
		 VALUES ($1, $2, $3)
		 RETURNING `+requestColumns,
		uuid.New(), params.Title, params.Description)
	req, err := scanRequest(row)
	if err != nil {
		return ArticlesRequest{}, fmt.Errorf("failed to create articles request: %w", err)
	}
	req.Articles = []Article{}
	for _, a := range params.Articles {
		row := tx.QueryRow(ctx,
			`INSERT INTO articles_request_articles
			 (id, articles_request_id, title, content, attachment_filename, attachment_content_type, attachment_size)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+articleColumns,
			uuid.New(), req.ID, a.Title, a.Content,
			a.AttachmentFilename, a.AttachmentContentType, a.AttachmentSize)
		article, err := scanArticle(row)
		if err != nil {
			return ArticlesRequest{}, fmt.Errorf("failed to create article: %w", err)
		}
		req.Articles = append(req.Articles, article)
	}
	if err := tx.Commit(ctx); err != nil {
		return ArticlesRequest{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return req, nil
}

func (r *PostgresArticlesRequestRepository) UpdateRequest(ctx context.Context, params UpdateRequestParams) (ArticlesRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ArticlesRequest{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE articles_requests SET title = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+requestColumns,
		params.ID, params.Title, params.Description)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ArticlesRequest{}, ErrRequestNotFound
		}
		return ArticlesRequest{}, fmt.Errorf("failed to update articles request: %w", err)
	}

	for _, articleID := range params.DeleteArticles {
		tag, err := tx.Exec(ctx,
			"DELETE FROM articles_request_articles WHERE id = $1 AND articles_request_id = $2",
			articleID, params.ID)
		if err != nil {
			return ArticlesRequest{}, fmt.Errorf("failed to delete article: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ArticlesRequest{}, ErrArticleNotFound
		}
	}
	for _, a := range params.UpdateArticles {
		tag, err := tx.Exec(ctx,
			`UPDATE articles_request_articles
			 SET title = $3, content = $4, attachment_filename = $5, attachment_content_type = $6, attachment_size = $7, updated_at = now()
			 WHERE id = $1 AND articles_request_id = $2`,
			a.ID, params.ID, a.Title, a.Content,
			a.AttachmentFilename, a.AttachmentContentType, a.AttachmentSize)
		if err != nil {
			return ArticlesRequest{}, fmt.Errorf("failed to update article: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ArticlesRequest{}, ErrArticleNotFound
		}
	}
	for _, a := range params.CreateArticles {
		_, err := tx.Exec(ctx,
			`INSERT INTO articles_request_articles
			 (id, articles_request_id, title, content, attachment_filename, attachment_content_type, attachment_size)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), params.ID, a.Title, a.Content,
			a.AttachmentFilename, a.AttachmentContentType, a.AttachmentSize)
		if err != nil {
			return ArticlesRequest{}, fmt.Errorf("failed to create article: %w", err)
		}
	}

	req.Articles, err = r.articlesForRequest(ctx, tx, params.ID)
	if err != nil {
		return ArticlesRequest{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ArticlesRequest{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return req, nil
}

func (r *PostgresArticlesRequestRepository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM articles_requests WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete articles request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

