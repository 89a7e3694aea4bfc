package keycloak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity information carried by a verified token.
// Subject and Email are the only claims the rest of the system depends
// on; their presence is enforced downstream, not here.
type Claims struct {
	Subject           string
	Email             string
	PreferredUsername string
	GivenName         string
	FamilyName        string
	Issuer            string
	IssuedAt          time.Time
	ExpiresAt         time.Time
}

// wireClaims is the on-the-wire shape following OIDC claim names.
type wireClaims struct {
	jwt.RegisteredClaims
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
}

// KeySource provides the provider's current signing key set. Satisfied
// by *JWKSCache; tests substitute a static source.
type KeySource interface {
	Keys(ctx context.Context) (*jose.JSONWebKeySet, error)
}

// Verifier checks bearer tokens against the realm's published keys.
type Verifier struct {
	keys   KeySource
	issuer string
	parser *jwt.Parser
}

func NewVerifier(keys KeySource, cfg Config) *Verifier {
	return &Verifier{
		keys:   keys,
		issuer: cfg.IssuerURL(),
		parser: jwt.NewParser(
			jwt.WithIssuer(cfg.IssuerURL()),
			jwt.WithIssuedAt(),
		),
	}
}

// Verify decodes and verifies a raw token string. Failures are reported
// as the typed errors in this package; anything other than
// JWKSFetchError means the token was rejected.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (Claims, error) {
	wire := wireClaims{}
	_, err := v.parser.ParseWithClaims(tokenStr, &wire, func(token *jwt.Token) (interface{}, error) {
		// Only RS256 is accepted. Enforced here rather than via
		// WithValidMethods so the failure keeps its own error kind.
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, AlgorithmMismatchError{Alg: token.Method.Alg()}
		}

		set, err := v.keys.Keys(ctx)
		if err != nil {
			return nil, err
		}

		kid, _ := token.Header["kid"].(string)
		matches := set.Key(kid)
		if len(matches) == 0 {
			return nil, fmt.Errorf("no signing key found for kid %q", kid)
		}

		return matches[0].Key, nil
	})
	if err != nil {
		return Claims{}, v.classify(err)
	}

	claims := Claims{
		Subject:           wire.Subject,
		Email:             wire.Email,
		PreferredUsername: wire.PreferredUsername,
		GivenName:         wire.GivenName,
		FamilyName:        wire.FamilyName,
		Issuer:            wire.Issuer,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}

	return claims, nil
}

// classify maps golang-jwt parse failures onto this package's error
// taxonomy. Everything not recognized is signature-invalid class, which
// covers expired and not-yet-valid tokens as well.
func (v *Verifier) classify(err error) error {
	var (
		fetchErr JWKSFetchError
		algErr   AlgorithmMismatchError
	)

	switch {
	case errors.As(err, &fetchErr):
		return fetchErr
	case errors.As(err, &algErr):
		return algErr
	case errors.Is(err, jwt.ErrTokenMalformed):
		return MalformedTokenError{Err: err}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return IssuerMismatchError{Expected: v.issuer, Err: err}
	default:
		return SignatureInvalidError{Err: err}
	}
}
