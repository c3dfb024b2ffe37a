package openagenda

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
)

// CacheType names an access token store.
type CacheType string

// Token store backends. An empty type means memory.
const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeNATS   CacheType = "nats"
	CacheTypeNone   CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("nats cache requires a NATS configuration")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache layer")
)

// CacheConfig picks where access tokens are kept between requests. Only the
// section matching Type is read.
type CacheConfig struct {
	Type   CacheType
	Memory *MemoryCacheConfig
	NATS   *NATSKVConfig
}

// MemoryCacheConfig bounds the in-process store.
type MemoryCacheConfig struct {
	// MaxSize caps the number of tokens held; one per public key in practice.
	MaxSize int
}

// DefaultCacheConfig keeps tokens in memory.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:   CacheTypeMemory,
		Memory: &MemoryCacheConfig{MaxSize: constants.DefaultCacheSize},
	}
}

// NewCacheFromConfig builds the token store described by config. A NATS
// store connects immediately, so ctx bounds the dial, and is fronted by a
// memory layer sized by config.Memory.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case "", CacheTypeMemory:
		return NewMemoryCacheFromConfig(config.Memory), nil
	case CacheTypeNone:
		return NewNoOpCache(), nil
	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		backend, err := NewNATSKVCache(ctx, config.NATS)
		if err != nil {
			return nil, fmt.Errorf("opening token bucket: %w", err)
		}

		return NewNATSCacheChain(config.Memory, backend), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCacheType, config.Type)
}

// NewMemoryCacheFromConfig falls back to the default size when config is
// missing or not positive.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) *MemoryCache {
	size := constants.DefaultCacheSize
	if config != nil && config.MaxSize > 0 {
		size = config.MaxSize
	}

	return NewMemoryCache(size)
}

// NoOpCache never stores anything, so every write call requests a fresh
// access token.
type NoOpCache struct{}

// NewNoOpCache returns a store that forgets everything.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get reports ErrCacheDisabled.
func (*NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

func (*NoOpCache) Set(context.Context, string, *CacheEntry) error { return nil }

func (*NoOpCache) Delete(context.Context, string) error { return nil }

func (*NoOpCache) Clear(context.Context) error { return nil }

func (*NoOpCache) Has(context.Context, string) bool { return false }

// CacheChain stacks token stores, typically memory in front of NATS so a
// process reuses its token without a round trip while sibling processes
// still share it. Reads stop at the first layer holding the key and backfill
// the layers above; writes reach every layer.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain stacks layers, fastest first.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// NewNATSCacheChain puts an in-process store in front of backend.
func NewNATSCacheChain(memory *MemoryCacheConfig, backend *NATSKVCache) *CacheChain {
	return NewCacheChain(NewMemoryCacheFromConfig(memory), backend)
}

// Close releases every layer holding a connection.
func (c *CacheChain) Close() {
	for _, layer := range c.layers {
		if closer, ok := layer.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// Get returns the entry from the first layer holding key.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for depth, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, above := range c.layers[:depth] {
			_ = above.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set writes entry to every layer and joins their failures.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.all(func(layer Cache) error { return layer.Set(ctx, key, entry) })
}

// Delete drops key from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.all(func(layer Cache) error { return layer.Delete(ctx, key) })
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.all(func(layer Cache) error { return layer.Clear(ctx) })
}

// Has reports whether any layer holds key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, layer := range c.layers {
		if layer.Has(ctx, key) {
			return true
		}
	}

	return false
}

func (c *CacheChain) all(apply func(Cache) error) error {
	var errs []error

	for _, layer := range c.layers {
		if err := apply(layer); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
