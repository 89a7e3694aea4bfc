package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3"
)

// jwksCacheDuration is how long a fetched key set stays fresh. Keycloak
// rotates keys rarely; an hour keeps verification off the network
// without holding on to retired keys for long.
const jwksCacheDuration = time.Hour

const defaultFetchTimeout = 10 * time.Second

// JWKSCache caches the realm's signing key set. The set is replaced
// wholesale on each successful fetch; a failed refresh leaves the
// previous state untouched and surfaces the error to the caller.
type JWKSCache struct {
	jwksURL    string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	cached    *jose.JSONWebKeySet
	expiresAt time.Time
}

type CacheOption func(*JWKSCache)

// WithHTTPClient replaces the HTTP client used for JWKS fetches.
func WithHTTPClient(client *http.Client) CacheOption {
	return func(c *JWKSCache) {
		c.httpClient = client
	}
}

// WithClock replaces the cache's time source. Used by tests to step
// across the freshness window.
func WithClock(now func() time.Time) CacheOption {
	return func(c *JWKSCache) {
		c.now = now
	}
}

func NewJWKSCache(cfg Config, opts ...CacheOption) *JWKSCache {
	cache := &JWKSCache{
		jwksURL:    cfg.JWKSURL(),
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Keys returns the current signing key set, fetching it from the
// provider when the cache is empty or past its freshness window. The
// fetch happens outside the lock so verifications that can be served
// from the cache never block behind a slow refresh; concurrent callers
// past the window may each fetch, which is wasteful but harmless since
// the replacement is atomic.
func (c *JWKSCache) Keys(ctx context.Context) (*jose.JSONWebKeySet, error) {
	c.mu.Lock()
	if c.cached != nil && c.now().Before(c.expiresAt) {
		set := c.cached
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	slog.Info("Fetching JWKS", "url", c.jwksURL)
	set, err := c.fetch(ctx)
	if err != nil {
		slog.Error("Failed fetching JWKS", "url", c.jwksURL, "err", err)
		return nil, JWKSFetchError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have refreshed while we were fetching; keep
	// whichever set is already fresh.
	if c.cached == nil || !c.now().Before(c.expiresAt) {
		c.cached = set
		c.expiresAt = c.now().Add(jwksCacheDuration)
	}
	return c.cached, nil
}

func (c *JWKSCache) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jwks endpoint returned %s", resp.Status)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse jwks response: %w", err)
	}

	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("jwks endpoint returned no keys")
	}

	return &set, nil
}
