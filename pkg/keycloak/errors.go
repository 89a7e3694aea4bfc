package keycloak

import (
	"errors"
	"fmt"
)

// MalformedTokenError is returned when the token is not a well-formed
// three-segment JWT.
type MalformedTokenError struct {
	Err error
}

func (e MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed token: %v", e.Err)
}

func (e MalformedTokenError) Unwrap() error { return e.Err }

// SignatureInvalidError is returned when the signature does not verify
// against any published key, or when a time claim check fails. Expired
// tokens fall in this class.
type SignatureInvalidError struct {
	Err error
}

func (e SignatureInvalidError) Error() string {
	return fmt.Sprintf("token verification failed: %v", e.Err)
}

func (e SignatureInvalidError) Unwrap() error { return e.Err }

// AlgorithmMismatchError is returned when the token's alg header is not
// RS256.
type AlgorithmMismatchError struct {
	Alg string
}

func (e AlgorithmMismatchError) Error() string {
	return fmt.Sprintf("unexpected signing algorithm: %s", e.Alg)
}

// IssuerMismatchError is returned when the iss claim does not match the
// configured realm issuer.
type IssuerMismatchError struct {
	Expected string
	Err      error
}

func (e IssuerMismatchError) Error() string {
	return fmt.Sprintf("token issuer does not match %s", e.Expected)
}

func (e IssuerMismatchError) Unwrap() error { return e.Err }

// JWKSFetchError is returned when the signing key set could not be
// obtained from the provider. This is an infrastructure failure, not a
// statement about the token.
type JWKSFetchError struct {
	Err error
}

func (e JWKSFetchError) Error() string {
	return fmt.Sprintf("failed to fetch signing keys: %v", e.Err)
}

func (e JWKSFetchError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err describes a problem with the token
// itself rather than with the verification infrastructure. Decode-class
// details are safe to show to the caller, since the token has already
// been rejected.
func IsDecodeError(err error) bool {
	var (
		malformed MalformedTokenError
		signature SignatureInvalidError
		algorithm AlgorithmMismatchError
		issuer    IssuerMismatchError
	)
	return errors.As(err, &malformed) ||
		errors.As(err, &signature) ||
		errors.As(err, &algorithm) ||
		errors.As(err, &issuer)
}
