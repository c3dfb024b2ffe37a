// Package client implements openagenda.Client on top of a Transport: it
// attaches credentials, parses every response and maps endpoint results to
// entities.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Erwane/openagenda-api-sub000/internal/auth"
	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/endpoint"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

var (
	_ openagenda.Client  = (*Client)(nil)
	_ endpoint.Requester = (*Client)(nil)
)

// Client implements the openagenda.Client interface.
type Client struct {
	transport   openagenda.Transport
	publicKey   string
	baseURL     string
	defaultLang string
	cache       *openagenda.CacheManager
	tokens      *auth.TokenManager
	logger      openagenda.Logger
	metrics     *openagenda.Metrics
	nonce       func() string
}

// New creates a client from a validated configuration. cache may be nil, in
// which case config.Cache is used, then an in-memory cache.
func New(config *openagenda.Config) (*Client, error) {
	if config == nil {
		return nil, &openagenda.ConfigurationError{Option: "config", Err: openagenda.ErrInvalidInput}
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	store := config.Cache
	if store == nil {
		store = openagenda.NewMemoryCache(constants.DefaultCacheSize)
	}

	cache := openagenda.NewCacheManager(store, config.Metrics)

	client := &Client{
		transport:   config.Transport,
		publicKey:   config.PublicKey,
		baseURL:     config.BaseURL,
		defaultLang: config.DefaultLang,
		cache:       cache,
		logger:      config.Logger,
		metrics:     config.Metrics,
		nonce:       func() string { return ulid.Make().String() },
	}

	client.tokens = auth.NewTokenManager(&auth.Config{
		PublicKey: config.PublicKey,
		SecretKey: config.SecretKey,
		URL:       endpoint.NewAuth(config.BaseURL).URL(),
		Transport: config.Transport,
		Cache:     cache,
		Logger:    config.Logger,
		Metrics:   config.Metrics,
	})

	return client, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultLang returns the language plain strings are wrapped with.
func (c *Client) DefaultLang() string {
	return c.defaultLang
}

// CacheStats returns the token cache statistics.
func (c *Client) CacheStats() openagenda.CacheStats {
	return c.cache.GetStats()
}

// AccessToken returns a write token, "" when the API refused the secret key.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.tokens.GetToken(ctx)
}

// Head performs a HEAD with the public key credential.
func (c *Client) Head(ctx context.Context, rawURL string) (map[string]interface{}, error) {
	return c.read(ctx, "HEAD", rawURL, c.transport.Head)
}

// Get performs a GET with the public key credential.
func (c *Client) Get(ctx context.Context, rawURL string) (map[string]interface{}, error) {
	return c.read(ctx, "GET", rawURL, c.transport.Get)
}

// Post performs an authenticated POST.
func (c *Client) Post(ctx context.Context, rawURL string, payload *openagenda.Payload) (map[string]interface{}, error) {
	return c.write(ctx, "POST", rawURL, payload, c.transport.Post)
}

// Patch performs an authenticated PATCH.
func (c *Client) Patch(ctx context.Context, rawURL string, payload *openagenda.Payload) (map[string]interface{}, error) {
	return c.write(ctx, "PATCH", rawURL, payload, c.transport.Patch)
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, rawURL string, payload *openagenda.Payload) (map[string]interface{}, error) {
	return c.write(ctx, "DELETE", rawURL, payload, c.transport.Delete)
}

type readFunc func(ctx context.Context, url string, headers map[string]string) (*openagenda.Response, error)

type writeFunc func(ctx context.Context, url string, payload *openagenda.Payload, headers map[string]string) (*openagenda.Response, error)

func (c *Client) read(ctx context.Context, method, rawURL string, do readFunc) (map[string]interface{}, error) {
	target, err := c.withKey(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := do(ctx, target, nil)

	return c.parse(method, rawURL, start, response, err)
}

func (c *Client) write(ctx context.Context, method, rawURL string, payload *openagenda.Payload, do writeFunc) (map[string]interface{}, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		constants.HeaderAccessToken: token,
		constants.HeaderNonce:       c.nonce(),
	}

	start := time.Now()
	response, err := do(ctx, rawURL, payload, headers)

	return c.parse(method, rawURL, start, response, err)
}

// withKey adds the public key as the "key" query parameter.
func (c *Client) withKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, openagenda.ErrInvalidInput)
	}

	query := parsed.Query()
	query.Set(constants.QueryKey, c.publicKey)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// parse decodes the body and annotates it with _status and _success. An
// empty body is an empty map; a JSON array lands under "data".
func (c *Client) parse(method, rawURL string, start time.Time, response *openagenda.Response, err error) (map[string]interface{}, error) {
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		c.logger.Error("request failed", map[string]interface{}{
			"method": method,
			"url":    rawURL,
			"error":  err.Error(),
		})

		return nil, &openagenda.TransportError{Message: err.Error(), Err: err}
	}

	c.metrics.ObserveRequest(method, response.StatusCode, time.Since(start))

	body := map[string]interface{}{}

	if len(response.Body) > 0 {
		var decoded interface{}

		decodeErr := json.Unmarshal(response.Body, &decoded)

		switch typed := decoded.(type) {
		case map[string]interface{}:
			body = typed
		case []interface{}:
			body["data"] = typed
		default:
			if decodeErr != nil {
				c.logger.Warn("response body is not JSON", map[string]interface{}{
					"method": method,
					"url":    rawURL,
					"status": response.StatusCode,
				})
			}
		}
	}

	body[constants.StatusKey] = response.StatusCode
	body[constants.SuccessKey] = response.Success()

	return body, nil
}

func (c *Client) entityOptions() []openagenda.Option {
	return []openagenda.Option{openagenda.WithLang(c.defaultLang)}
}
