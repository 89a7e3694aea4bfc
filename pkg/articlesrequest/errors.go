package articlesrequest

import (
	"errors"
	"strings"
)

// ErrRequestNotFound is returned when no articles request exists for
// the given id.
var ErrRequestNotFound = errors.New("articles request not found")

// ErrArticleNotFound is returned when a nested article id does not
// belong to the request being updated.
var ErrArticleNotFound = errors.New("article not found")

// ValidationError reports one or more invalid fields on a request.
type ValidationError struct {
	Details []string
}

func (e ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, ", ")
}
