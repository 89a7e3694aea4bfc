package authn

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"github.com/pressroom/articles-api/pkg/identity"
	"github.com/pressroom/articles-api/pkg/keycloak"
	"golang.org/x/exp/slog"
)

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "authn context value " + k.name
}

var identityKey = &contextKey{"Identity"}

const bearerPrefix = "Bearer "

// TokenVerifier verifies a raw bearer token. Satisfied by
// *keycloak.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (keycloak.Claims, error)
}

// Reconciler turns verified claims into a local identity. Satisfied by
// *identity.IdentityService.
type Reconciler interface {
	Reconcile(ctx context.Context, claims identity.ProviderClaims) (identity.Identity, error)
}

// Middleware authenticates API requests from bearer tokens.
type Middleware struct {
	verifier   TokenVerifier
	identities Reconciler
}

func NewMiddleware(verifier TokenVerifier, identities Reconciler) *Middleware {
	return &Middleware{
		verifier:   verifier,
		identities: identities,
	}
}

// Authenticate extracts and verifies the bearer token and attaches the
// reconciled identity to the request context. Requests without an
// Authorization header are rejected outright; requests whose header is
// not a bearer credential pass through unauthenticated so that
// cookie-based authentication can handle them.
//
// Decode-class verification failures surface their detail to the
// client. Every other failure is logged server-side and collapsed to a
// generic message.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, r, "Missing Authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if keycloak.IsDecodeError(err) {
				unauthorized(w, r, "Invalid or expired token: "+err.Error())
				return
			}
			slog.Error("Failed authenticating API request", "err", err)
			unauthorized(w, r, "Authentication failed")
			return
		}

		providerClaims := identity.ProviderClaims{}
		copier.Copy(&providerClaims, &claims)

		ident, err := m.identities.Reconcile(r.Context(), providerClaims)
		if err != nil {
			slog.Error("Failed reconciling identity", "sub", claims.Subject, "err", err)
			unauthorized(w, r, "Authentication failed")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, &ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects requests that reached this point without an
// authenticated identity. Must be used after Authenticate.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			unauthorized(w, r, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the identity attached by Authenticate.
func FromContext(ctx context.Context) (*identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*identity.Identity)
	return ident, ok
}

// NewContext attaches an identity to ctx. Exposed for handler tests.
func NewContext(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": message})
}
