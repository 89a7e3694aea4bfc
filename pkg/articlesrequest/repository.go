package articlesrequest

import (
	"context"

	"github.com/google/uuid"
)

type CreateRequestParams struct {
	Title       string
	Description string
	Articles    []CreateArticleParams
}

// UpdateRequestParams carries the field changes together with the
// nested article operations so the repository can apply everything as
// one unit.
type UpdateRequestParams struct {
	ID             uuid.UUID
	Title          string
	Description    string
	CreateArticles []CreateArticleParams
	UpdateArticles []UpdateArticleParams
	DeleteArticles []uuid.UUID
}

type CreateArticleParams struct {
	Title                 string
	Content               string
	AttachmentFilename    string
	AttachmentContentType string
	AttachmentSize        int64
}

type UpdateArticleParams struct {
	ID                    uuid.UUID
	Title                 string
	Content               string
	AttachmentFilename    string
	AttachmentContentType string
	AttachmentSize        int64
}

type ArticlesRequestRepository interface {
	// ListRequests returns all requests newest first, articles included.
	ListRequests(ctx context.Context) ([]ArticlesRequest, error)
	// GetRequest returns the request with its articles, or
	// ErrRequestNotFound.
	GetRequest(ctx context.Context, id uuid.UUID) (ArticlesRequest, error)
	// CreateRequest inserts a request and its initial articles in one
	// transaction.
	CreateRequest(ctx context.Context, params CreateRequestParams) (ArticlesRequest, error)
	// UpdateRequest applies the field changes and every nested article
	// operation atomically: either all of them commit or none do. An
	// article id that does not belong to the request fails the whole
	// update with ErrArticleNotFound.
	UpdateRequest(ctx context.Context, params UpdateRequestParams) (ArticlesRequest, error)
	// DeleteRequest removes the request and its articles.
	DeleteRequest(ctx context.Context, id uuid.UUID) error
}
