package profile

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/pressroom/articles-api/pkg/authn"
	"golang.org/x/exp/slog"
)

// UserResponse is the JSON shape returned by the me endpoint.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Handler serves the authenticated user's profile.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers the user profile routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.Me)
	})
}

// Me returns the current user's profile. The identity is the one
// reconciled by the authentication middleware for this request, so it
// already reflects the token's claims.
// (GET /api/v1/users/me)
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := authn.FromContext(r.Context())
	if !ok {
		slog.Error("Failed getting identity from context", "ok", ok)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "Unauthorized"})
		return
	}

	response := UserResponse{}
	copier.Copy(&response, ident)
	response.ID = ident.ID.String()

	render.JSON(w, r, response)
}
