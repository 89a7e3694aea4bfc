package articlesrequest

import (
	"context"

	"github.com/google/uuid"
)

type ArticlesRequestService struct {
	repo ArticlesRequestRepository
}

func NewArticlesRequestService(repo ArticlesRequestRepository) *ArticlesRequestService {
	return &ArticlesRequestService{repo: repo}
}

func validate(input RequestInput) error {
	details := []string{}
	if input.Title == "" {
		details = append(details, "title can't be blank")
	}
	if input.Description == "" {
		details = append(details, "description can't be blank")
	}
	for _, a := range input.Articles {
		if a.blank() || a.Destroy {
			continue
		}
		if a.Title == "" {
			details = append(details, "article title can't be blank")
		}
		if a.Content == "" {
			details = append(details, "article content can't be blank")
		}
	}
	if len(details) > 0 {
		return ValidationError{Details: details}
	}
	return nil
}

func (s *ArticlesRequestService) List(ctx context.Context) ([]ArticlesRequest, error) {
	return s.repo.ListRequests(ctx)
}

func (s *ArticlesRequestService) Get(ctx context.Context, id uuid.UUID) (ArticlesRequest, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *ArticlesRequestService) Create(ctx context.Context, input RequestInput) (ArticlesRequest, error) {
	if err := validate(input); err != nil {
		return ArticlesRequest{}, err
	}
	params := CreateRequestParams{
		Title:       input.Title,
		Description: input.Description,
	}
	for _, a := range input.Articles {
		if a.blank() || a.Destroy {
			continue
		}
		params.Articles = append(params.Articles, CreateArticleParams{
			Title:                 a.Title,
			Content:               a.Content,
			AttachmentFilename:    a.AttachmentFilename,
			AttachmentContentType: a.AttachmentContentType,
			AttachmentSize:        a.AttachmentSize,
		})
	}
	return s.repo.CreateRequest(ctx, params)
}

// Update applies the request fields and reconciles nested articles:
// rows with an id are updated, rows flagged _destroy are deleted, rows
// without an id are created, and blank rows are skipped. The whole
// update is applied atomically by the repository, so a bad article id
// leaves the request untouched.
func (s *ArticlesRequestService) Update(ctx context.Context, id uuid.UUID, input RequestInput) (ArticlesRequest, error) {
	if err := validate(input); err != nil {
		return ArticlesRequest{}, err
	}
	params := UpdateRequestParams{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
	}
	for _, a := range input.Articles {
		switch {
		case a.ID != nil && a.Destroy:
			params.DeleteArticles = append(params.DeleteArticles, *a.ID)
		case a.ID != nil:
			if a.blank() {
				continue
			}
			params.UpdateArticles = append(params.UpdateArticles, UpdateArticleParams{
				ID:                    *a.ID,
				Title:                 a.Title,
				Content:               a.Content,
				AttachmentFilename:    a.AttachmentFilename,
				AttachmentContentType: a.AttachmentContentType,
				AttachmentSize:        a.AttachmentSize,
			})
		default:
			if a.blank() || a.Destroy {
				continue
			}
			params.CreateArticles = append(params.CreateArticles, CreateArticleParams{
				Title:                 a.Title,
				Content:               a.Content,
				AttachmentFilename:    a.AttachmentFilename,
				AttachmentContentType: a.AttachmentContentType,
				AttachmentSize:        a.AttachmentSize,
			})
		}
	}
	return s.repo.UpdateRequest(ctx, params)
}

func (s *ArticlesRequestService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRequest(ctx, id)
}
