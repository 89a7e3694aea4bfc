package keycloak

import (
	"fmt"
	"strings"
)

// Config holds the Keycloak connection settings. ClientID and
// ClientSecret are only needed by the browser login flow; token
// verification uses Site and Realm.
type Config struct {
	Site         string
	Realm        string
	ClientID     string
	ClientSecret string
}

// IssuerURL returns the realm issuer URL that tokens must carry in
// their iss claim.
func (c Config) IssuerURL() string {
	return fmt.Sprintf("%s/realms/%s", strings.TrimRight(c.Site, "/"), c.Realm)
}

// JWKSURL returns the realm's well-known endpoint publishing the
// current signing keys.
func (c Config) JWKSURL() string {
	return c.IssuerURL() + "/protocol/openid-connect/certs"
}

// Validate checks the fields needed for token verification.
func (c Config) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("keycloak site is required")
	}
	if c.Realm == "" {
		return fmt.Errorf("keycloak realm is required")
	}
	return nil
}
