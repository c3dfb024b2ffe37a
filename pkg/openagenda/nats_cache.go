package openagenda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ErrNATSBucketRequired is returned when no bucket name is configured.
var ErrNATSBucketRequired = errors.New("NATS KV bucket is required")

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server; nats.DefaultURL when empty. Ignored when Conn
	// is set.
	URL string
	// Conn reuses an existing connection, left open by Close.
	Conn *nats.Conn
	// Bucket is created when missing.
	Bucket string
	// TTL bounds every key of a created bucket. Entries carry their own
	// expiry regardless.
	TTL time.Duration
}

// KeyValueStore is the subset of nats.KeyValue the cache uses.
type KeyValueStore interface {
	Get(key string) (nats.KeyValueEntry, error)
	Put(key string, value []byte) (uint64, error)
	Delete(key string, opts ...nats.DeleteOpt) error
	Keys(opts ...nats.WatchOpt) ([]string, error)
}

// NATSKVCache stores entries in a JetStream key-value bucket so several
// processes share one access token.
type NATSKVCache struct {
	kv    KeyValueStore
	conn  *nats.Conn
	owned bool
	now   func() time.Time
}

// NewNATSKVCache connects to NATS and binds to the configured bucket,
// creating it when missing.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	if config.Bucket == "" {
		return nil, ErrNATSBucketRequired
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	conn := config.Conn
	owned := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("openagenda-token-cache"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		owned = true
	}

	js, err := conn.JetStream()
	if err != nil {
		closeOwned(conn, owned)

		return nil, fmt.Errorf("opening JetStream: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      config.Bucket,
			Description: "OpenAgenda access tokens",
			TTL:         config.TTL,
		})
	}

	if err != nil {
		closeOwned(conn, owned)

		return nil, fmt.Errorf("binding KV bucket %s: %w", config.Bucket, err)
	}

	return &NATSKVCache{kv: kv, conn: conn, owned: owned, now: time.Now}, nil
}

// NewNATSKVCacheFromStore wraps an already bound key-value store.
func NewNATSKVCacheFromStore(kv KeyValueStore) *NATSKVCache {
	return &NATSKVCache{kv: kv, now: time.Now}
}

func closeOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// Close releases the connection when the cache opened it.
func (c *NATSKVCache) Close() {
	if c.conn != nil {
		closeOwned(c.conn, c.owned)
	}
}

// Get returns the entry under key.
func (c *NATSKVCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	stored, err := c.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from KV: %w", key, err)
	}

	entry := &CacheEntry{}

	err = json.Unmarshal(stored.Value(), entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cached %s: %w", key, err)
	}

	if entry.Expired(c.now()) {
		_ = c.kv.Delete(key)

		return nil, ErrCacheEntryExpired
	}

	return entry, nil
}

// Set stores entry under key.
func (c *NATSKVCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(key, data)
	if err != nil {
		return fmt.Errorf("writing %s to KV: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from KV: %w", key, err)
	}

	return nil
}

// Clear removes every key of the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing KV keys: %w", err)
	}

	for _, key := range keys {
		err = c.Delete(ctx, key)
		if err != nil {
			return err
		}
	}

	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}
