package articlesrequest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemArticlesRequestRepository keeps requests in memory. Used in
// tests and local development.
type InMemArticlesRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]ArticlesRequest
	articles map[uuid.UUID]Article
	seq      int
}

func NewInMemArticlesRequestRepository() *InMemArticlesRequestRepository {
	return &InMemArticlesRequestRepository{
		requests: map[uuid.UUID]ArticlesRequest{},
		articles: map[uuid.UUID]Article{},
	}
}

// tick returns a strictly increasing timestamp so ordering by
// created_at is deterministic even within one wall-clock instant.
func (r *InMemArticlesRequestRepository) tick() time.Time {
	r.seq++
	return time.Now().UTC().Add(time.Duration(r.seq) * time.Microsecond)
}

func (r *InMemArticlesRequestRepository) articlesFor(requestID uuid.UUID) []Article {
	articles := []Article{}
	for _, a := range r.articles {
		if a.ArticlesRequestID == requestID {
			articles = append(articles, a)
		}
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.Before(articles[j].CreatedAt)
	})
	return articles
}

func (r *InMemArticlesRequestRepository) ListRequests(_ context.Context) ([]ArticlesRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	requests := []ArticlesRequest{}
	for _, req := range r.requests {
		req.Articles = r.articlesFor(req.ID)
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (r *InMemArticlesRequestRepository) GetRequest(_ context.Context, id uuid.UUID) (ArticlesRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return ArticlesRequest{}, ErrRequestNotFound
	}
	req.Articles = r.articlesFor(id)
	return req, nil
}

func (r *InMemArticlesRequestRepository) CreateRequest(_ context.Context, params CreateRequestParams) (ArticlesRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.tick()
	req := ArticlesRequest{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.requests[req.ID] = req
	for _, a := range params.Articles {
		at := r.tick()
		article := Article{
			ID:                    uuid.New(),
			ArticlesRequestID:     req.ID,
			Title:                 a.Title,
			Content:               a.Content,
			AttachmentFilename:    a.AttachmentFilename,
			AttachmentContentType: a.AttachmentContentType,
			AttachmentSize:        a.AttachmentSize,
			CreatedAt:             at,
			UpdatedAt:             at,
		}
		r.articles[article.ID] = article
	}
	req.Articles = r.articlesFor(req.ID)
	return req, nil
}

func (r *InMemArticlesRequestRepository) UpdateRequest(_ context.Context, params UpdateRequestParams) (ArticlesRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[params.ID]
	if !ok {
		return ArticlesRequest{}, ErrRequestNotFound
	}
	// Check every nested operation before touching anything so a bad
	// article id leaves the request exactly as it was.
	for _, articleID := range params.DeleteArticles {
		if a, ok := r.articles[articleID]; !ok || a.ArticlesRequestID != params.ID {
			return ArticlesRequest{}, ErrArticleNotFound
		}
	}
	for _, a := range params.UpdateArticles {
		if existing, ok := r.articles[a.ID]; !ok || existing.ArticlesRequestID != params.ID {
			return ArticlesRequest{}, ErrArticleNotFound
		}
	}

	req.Title = params.Title
	req.Description = params.Description
	req.UpdatedAt = r.tick()
	r.requests[params.ID] = req

	for _, articleID := range params.DeleteArticles {
		delete(r.articles, articleID)
	}
	for _, a := range params.UpdateArticles {
		article := r.articles[a.ID]
		article.Title = a.Title
		article.Content = a.Content
		article.AttachmentFilename = a.AttachmentFilename
		article.AttachmentContentType = a.AttachmentContentType
		article.AttachmentSize = a.AttachmentSize
		article.UpdatedAt = r.tick()
		r.articles[a.ID] = article
	}
	for _, a := range params.CreateArticles {
		now := r.tick()
		article := Article{
			ID:                    uuid.New(),
			ArticlesRequestID:     params.ID,
			Title:                 a.Title,
			Content:               a.Content,
			AttachmentFilename:    a.AttachmentFilename,
			AttachmentContentType: a.AttachmentContentType,
			AttachmentSize:        a.AttachmentSize,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		r.articles[article.ID] = article
	}

	req.Articles = r.articlesFor(params.ID)
	return req, nil
}

func (r *InMemArticlesRequestRepository) DeleteRequest(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return ErrRequestNotFound
	}
	delete(r.requests, id)
	for articleID, a := range r.articles {
		if a.ArticlesRequestID == id {
			delete(r.articles, articleID)
		}
	}
	return nil
}

