// Package keycloak verifies bearer tokens issued by a Keycloak realm.
//
// It covers the two halves of stateless API authentication against an
// external identity provider:
//
//   - JWKSCache fetches the realm's published signing keys from the
//     well-known JWKS endpoint and caches them for a fixed window, so
//     that token verification does not hit the network on every request.
//   - Verifier decodes a JWT, checks its RS256 signature against the
//     cached key set, validates the issuer and standard time claims, and
//     returns the identity claims carried by the token.
//
// Failures are reported as typed errors (MalformedTokenError,
// SignatureInvalidError, AlgorithmMismatchError, IssuerMismatchError,
// JWKSFetchError) so that the HTTP boundary can decide which details are
// safe to surface to the client. IsDecodeError distinguishes token
// problems from infrastructure problems.
//
// Basic usage:
//
//	cfg := keycloak.Config{Site: "https://id.example.com", Realm: "pressroom"}
//	cache := keycloak.NewJWKSCache(cfg)
//	verifier := keycloak.NewVerifier(cache, cfg)
//
//	claims, err := verifier.Verify(ctx, rawToken)
package keycloak
