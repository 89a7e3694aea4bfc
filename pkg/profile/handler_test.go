package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pressroom/articles-api/pkg/authn"
	"github.com/pressroom/articles-api/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeReturnsProfile(t *testing.T) {
	ident := identity.Identity{
		ID:        uuid.New(),
		Provider:  identity.ProviderKeycloak,
		SubjectID: "u1",
		Email:     "a@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Archer",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	r := chi.NewRouter()
	NewHandler().RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(authn.NewContext(req.Context(), &ident))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ident.ID.String(), body.ID)
	assert.Equal(t, "a@example.com", body.Email)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "Alice", body.FirstName)
	assert.Equal(t, "Archer", body.LastName)
	assert.Equal(t, "keycloak", body.Provider)
}

func TestMeWithoutIdentity(t *testing.T) {
	r := chi.NewRouter()
	NewHandler().RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
