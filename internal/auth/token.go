// Package auth exchanges the account secret key for short-lived access
// tokens and keeps them in the client cache.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// Static errors for err113 compliance.
var (
	ErrNoSecretKey = errors.New("no secret key configured")
)

// Token is an access token with its expiry.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	ExpiresAt   time.Time
}

// Valid reports a non-empty token that does not expire within the buffer.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TTL returns how long the token may be cached.
func (t *Token) TTL() time.Duration {
	ttl := constants.DefaultTokenTTL
	if t.ExpiresIn > 0 {
		ttl = time.Duration(t.ExpiresIn) * time.Second
	}

	if ttl > constants.TokenExpirationBuffer {
		ttl -= constants.TokenExpirationBuffer
	}

	return ttl
}

// Config configures a TokenManager.
type Config struct {
	PublicKey string
	SecretKey string
	// URL is the access token endpoint.
	URL       string
	Transport openagenda.Transport
	Cache     *openagenda.CacheManager
	Logger    openagenda.Logger
	Metrics   *openagenda.Metrics
}

// TokenManager fetches access tokens on demand. Concurrent callers share a
// single in-flight request.
type TokenManager struct {
	config *Config
	mutex  sync.Mutex
	now    func() time.Time
}

// NewTokenManager creates a token manager.
func NewTokenManager(config *Config) *TokenManager {
	if config.Logger == nil {
		config.Logger = openagenda.NoopLogger{}
	}

	if config.Cache == nil {
		config.Cache = openagenda.NewCacheManager(nil, config.Metrics)
	}

	return &TokenManager{config: config, now: time.Now}
}

// CacheKey returns the cache key of the token.
func (m *TokenManager) CacheKey() string {
	return constants.TokenCacheKeyPrefix + m.config.PublicKey
}

// GetToken returns the cached token or requests a new one. A refused
// request yields "" without error; a transport failure is a
// *openagenda.TransportError.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	key := m.CacheKey()

	token := m.config.Cache.GetString(ctx, key, "")
	if token != "" {
		return token, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Another caller may have stored it while we waited.
	token = m.config.Cache.GetString(ctx, key, "")
	if token != "" {
		return token, nil
	}

	if m.config.SecretKey == "" {
		return "", &openagenda.ConfigurationError{Option: "secretKey", Err: ErrNoSecretKey}
	}

	fetched, err := m.request(ctx)
	if err != nil {
		return "", err
	}

	if !fetched.Valid() {
		return "", nil
	}

	err = m.config.Cache.Set(ctx, key, []byte(fetched.AccessToken), fetched.TTL())
	if err != nil {
		m.config.Logger.Warn("failed to cache access token", map[string]interface{}{"error": err.Error()})
	}

	return fetched.AccessToken, nil
}

// Forget drops the cached token.
func (m *TokenManager) Forget(ctx context.Context) error {
	return m.config.Cache.Delete(ctx, m.CacheKey())
}

func (m *TokenManager) request(ctx context.Context) (*Token, error) {
	payload := &openagenda.Payload{Data: map[string]interface{}{
		"grant_type": "authorization_code",
		"code":       m.config.SecretKey,
	}}

	start := m.now()

	response, err := m.config.Transport.Post(ctx, m.config.URL, payload, nil)
	if err != nil {
		m.config.Metrics.TokenRequested(false)

		return nil, &openagenda.TransportError{Message: err.Error(), Err: err}
	}

	if !response.Success() {
		m.config.Metrics.TokenRequested(false)
		m.config.Logger.Warn("access token request refused", map[string]interface{}{
			"status": response.StatusCode,
		})

		return &Token{}, nil
	}

	var token Token

	err = json.Unmarshal(response.Body, &token)
	if err != nil || token.AccessToken == "" {
		m.config.Metrics.TokenRequested(false)
		m.config.Logger.Warn("access token response without token", map[string]interface{}{
			"status": response.StatusCode,
		})

		return &Token{}, nil
	}

	token.ExpiresAt = start.Add(token.TTL() + constants.TokenExpirationBuffer)
	m.config.Metrics.TokenRequested(true)

	m.config.Logger.Debug("access token obtained", map[string]interface{}{
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})

	return &token, nil
}

// String hides the token value.
func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}

	return fmt.Sprintf("Token{expires_at: %s}", t.ExpiresAt.Format(time.RFC3339))
}
