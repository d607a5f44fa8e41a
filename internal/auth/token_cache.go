// Package auth acquires and caches bearer tokens for the upstream weather APIs.
// Tokens are scoped per audience and obtained via an OAuth client-credentials
// exchange. A token is reused until shortly before it expires, so repeated
// fetches for the same audience hit the network only once an hour.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrAuthentication is returned when the token exchange is rejected.
// Go uses sentinel errors (predefined error values) instead of exception types.
// Callers check with errors.Is(err, ErrAuthentication).
var ErrAuthentication = errors.New("token exchange failed")

// tokenLifetime is how long an acquired token is trusted before refresh.
// The upstream grants ~60 minutes; we refresh 5 minutes early so a token
// returned from the cache is never about to expire mid-request.
const tokenLifetime = 55 * time.Minute

// Credentials identifies the client to the authorization endpoint.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenSource is the interface provider clients consume. The cache implements
// it; tests substitute a stub.
type TokenSource interface {
	Token(ctx context.Context, audience string) (string, error)
}

// entry is one cached token. A token is valid only while expiresAt is
// strictly in the future.
type entry struct {
	mu        sync.Mutex // serializes exchanges for this audience
	token     string
	expiresAt time.Time
}

// TokenCache caches one bearer token per audience. Safe for concurrent use:
// the outer mutex guards the audience map, the per-entry mutex serializes the
// exchange so concurrent callers for the same audience trigger a single
// network round trip.
type TokenCache struct {
	authURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *zap.Logger

	// now is swappable for expiry tests.
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewTokenCache creates a cache that exchanges credentials at authURL.
func NewTokenCache(authURL string, creds Credentials, logger *zap.Logger) *TokenCache {
	return &TokenCache{
		authURL: authURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Token returns a bearer token for the audience, reusing the cached one while
// it is still valid. A cache miss or an expired token blocks the caller on a
// synchronous exchange; a failed exchange is surfaced and nothing is cached.
func (c *TokenCache) Token(ctx context.Context, audience string) (string, error) {
	if audience == "" {
		return "", fmt.Errorf("%w: empty audience", ErrAuthentication)
	}

	c.mu.Lock()
	e, ok := c.entries[audience]
	if !ok {
		e = &entry{}
		c.entries[audience] = e
	}
	c.mu.Unlock()

	// Per-audience lock: the first caller performs the exchange, the rest
	// wait and then see the fresh token.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.token != "" && e.expiresAt.After(c.now()) {
		return e.token, nil
	}

	token, err := c.exchange(ctx, audience)
	if err != nil {
		return "", err
	}

	e.token = token
	e.expiresAt = c.now().Add(tokenLifetime)

	c.logger.Debug("acquired upstream token",
		zap.String("audience", audience),
		zap.Time("expires_at", e.expiresAt),
	)
	return token, nil
}

// exchange performs the OAuth client-credentials POST.
func (c *TokenCache) exchange(ctx context.Context, audience string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.creds.ClientID,
		"client_secret": c.creds.ClientSecret,
		"audience":      audience,
	})
	if err != nil {
		return "", fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log, but never surface it to
		// callers — auth error bodies can carry provider internals.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Warn("token exchange rejected",
			zap.String("audience", audience),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return "", fmt.Errorf("%w: HTTP %d", ErrAuthentication, resp.StatusCode)
	}

	// Response shape: {"data": {"access_token": "..."}}
	var decoded struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAuthentication, err)
	}
	if decoded.Data.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access_token", ErrAuthentication)
	}

	return decoded.Data.AccessToken, nil
}
