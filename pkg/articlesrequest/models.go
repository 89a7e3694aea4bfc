package articlesrequest

import (
	"time"

	"github.com/google/uuid"
)

// ArticlesRequest is a request for a set of articles to be written.
type ArticlesRequest struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Articles    []Article `json:"articles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Article is a single article belonging to a request. Attachment fields
// hold metadata only; file contents live outside this service.
type Article struct {
	ID                    uuid.UUID `json:"id"`
	ArticlesRequestID     uuid.UUID `json:"articles_request_id"`
	Title                 string    `json:"title"`
	Content               string    `json:"content"`
	AttachmentFilename    string    `json:"attachment_filename,omitempty"`
	AttachmentContentType string    `json:"attachment_content_type,omitempty"`
	AttachmentSize        int64     `json:"attachment_size,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ArticleInput is one nested article row in a create or update request.
// On update: an ID means "update that article", ID plus Destroy means
// "delete it", no ID means "create it". Rows with neither title nor
// content are ignored.
type ArticleInput struct {
	ID                    *uuid.UUID `json:"id,omitempty"`
	Title                 string     `json:"title"`
	Content               string     `json:"content"`
	Destroy               bool       `json:"_destroy,omitempty"`
	AttachmentFilename    string     `json:"attachment_filename,omitempty"`
	AttachmentContentType string     `json:"attachment_content_type,omitempty"`
	AttachmentSize        int64      `json:"attachment_size,omitempty"`
}

func (a ArticleInput) blank() bool {
	return a.Title == "" && a.Content == ""
}

// RequestInput is the request body for creating or updating an
// articles request.
type RequestInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Articles    []ArticleInput `json:"articles"`
}
