package oaclient

import (
	"context"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/client"
	oahttp "github.com/Erwane/openagenda-api-sub000/internal/http"
	"github.com/Erwane/openagenda-api-sub000/pkg/openagenda"
)

// OpenAgenda is the client returned by New.
type OpenAgenda struct {
	*client.Client

	closer func()
}

var _ openagenda.Client = (*OpenAgenda)(nil)

// New creates an OpenAgenda client. The transport defaults to the HTTP
// transport and the token cache to CacheConfig, then to memory.
func New(ctx context.Context, config *openagenda.Config) (*OpenAgenda, error) {
	if config == nil {
		return nil, &openagenda.ConfigurationError{Option: "config", Err: openagenda.ErrInvalidInput}
	}

	// Defaults below are filled on a copy; the caller's config is left as given.
	copied := *config
	config = &copied

	if config.Transport == nil {
		opts := []oahttp.Option{oahttp.WithDebug(config.Debug)}

		if config.Logger != nil {
			opts = append(opts, oahttp.WithLogger(config.Logger))
		}

		if config.UserAgent != "" {
			opts = append(opts, oahttp.WithUserAgent(config.UserAgent))
		}

		if config.HTTPTimeout > 0 {
			opts = append(opts, oahttp.WithTimeout(config.HTTPTimeout))
		}

		config.Transport = oahttp.NewClient(opts...)
	}

	// Reject bad options before dialing a cache backend.
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	var closer func()

	if config.Cache == nil && config.CacheConfig != nil {
		cache, err := openagenda.NewCacheFromConfig(ctx, config.CacheConfig)
		if err != nil {
			return nil, &openagenda.ConfigurationError{Option: "cache", Err: err}
		}

		if closable, ok := cache.(interface{ Close() }); ok {
			closer = closable.Close
		}

		config.Cache = cache
	}

	inner, err := client.New(config)
	if err != nil {
		if closer != nil {
			closer()
		}

		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return &OpenAgenda{Client: inner, closer: closer}, nil
}

// NewWithKeys creates a client from account keys. secretKey may be empty
// for read-only use.
func NewWithKeys(ctx context.Context, publicKey, secretKey string) (*OpenAgenda, error) {
	return New(ctx, &openagenda.Config{
		PublicKey: publicKey,
		SecretKey: secretKey,
	})
}

// Close releases the cache connection opened by New, if any.
func (o *OpenAgenda) Close() {
	if o.closer != nil {
		o.closer()
		o.closer = nil
	}
}
