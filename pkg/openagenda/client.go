package openagenda

import (
	"context"
	"time"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

// Params are endpoint parameters: path identifiers, query filters and, for
// writes, the entity fields.
type Params map[string]interface{}

// List is one page of a collection.
type List[T any] struct {
	Items []T
	Total int
	// After is the cursor of the next page, nil on the last page.
	After interface{}
}

// AgendaClient reads agendas.
type AgendaClient interface {
	Agendas(ctx context.Context, params Params) (*List[*Agenda], error)
	Agenda(ctx context.Context, params Params) (*Agenda, error)
	AgendaBySlug(ctx context.Context, slug string) (*Agenda, error)
}

// LocationClient manages the locations of an agenda.
type LocationClient interface {
	Locations(ctx context.Context, params Params) (*List[*Location], error)
	Location(ctx context.Context, params Params) (*Location, error)
	LocationExists(ctx context.Context, params Params) (bool, error)
	CreateLocation(ctx context.Context, location *Location) (*Location, error)
	UpdateLocation(ctx context.Context, location *Location) (*Location, error)
	DeleteLocation(ctx context.Context, location *Location) (*Location, error)
}

// EventClient manages the events of an agenda.
type EventClient interface {
	Events(ctx context.Context, params Params) (*List[*Event], error)
	Event(ctx context.Context, params Params) (*Event, error)
	EventExists(ctx context.Context, params Params) (bool, error)
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, event *Event) (*Event, error)
}

// Client is the OpenAgenda API surface.
type Client interface {
	AgendaClient
	LocationClient
	EventClient

	// AccessToken returns a write token, "" when authentication failed.
	AccessToken(ctx context.Context) (string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger discards everything.
type NoopLogger struct{}

// Debug discards the message.
func (NoopLogger) Debug(string, map[string]interface{}) {}

// Info discards the message.
func (NoopLogger) Info(string, map[string]interface{}) {}

// Warn discards the message.
func (NoopLogger) Warn(string, map[string]interface{}) {}

// Error discards the message.
func (NoopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building an OpenAgenda client.
//
// # Credentials
//
// PublicKey authenticates reads and is always required. SecretKey is only
// needed for writes: it is exchanged for an access token cached under
// "openagenda-token-<PublicKey>" until the API-declared expiry.
//
// # Transport and cache
//
// Transport defaults to the retry-free HTTP transport in internal/http when
// built through pkg/oaclient. Cache takes precedence over CacheConfig; when
// both are nil an in-memory cache is used.
type Config struct {
	// Required fields
	// PublicKey: the account public key sent as the "key" query parameter.
	PublicKey string

	// Optional configurations
	// SecretKey: the account secret key used to request access tokens.
	SecretKey string
	// BaseURL: API root, constants.DefaultBaseURL when empty.
	BaseURL string
	// Transport: performs HTTP calls.
	Transport Transport
	// Cache: access token store.
	Cache Cache
	// CacheConfig: selects a backend when Cache is nil.
	CacheConfig *CacheConfig
	// DefaultLang: language plain strings are wrapped with in multilingual fields.
	DefaultLang string
	// Logger: optional structured logger used by the client and transport.
	Logger Logger
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout: per-request timeout of the default transport.
	HTTPTimeout time.Duration
	// Metrics: optional Prometheus collectors.
	Metrics *Metrics
}

// Validate checks the options and fills defaults. It requires a Transport,
// so facades must set their default before calling it.
func (c *Config) Validate() error {
	if c.PublicKey == "" {
		return &ConfigurationError{Option: "publicKey", Err: ErrPublicKeyRequired}
	}

	if c.Transport == nil {
		return &ConfigurationError{Option: "transport", Err: ErrTransportRequired}
	}

	if c.DefaultLang == "" {
		c.DefaultLang = constants.DefaultLang
	}

	if !validation.IsLanguage(c.DefaultLang) {
		return &ConfigurationError{Option: "defaultLang", Err: ErrInvalidDefaultLang}
	}

	if c.CacheConfig != nil && c.Cache == nil {
		switch c.CacheConfig.Type {
		case CacheTypeMemory, CacheTypeNATS, CacheTypeNone, "":
		default:
			return &ConfigurationError{Option: "cache", Err: ErrUnsupportedCacheType}
		}
	}

	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}

	if c.Logger == nil {
		c.Logger = NoopLogger{}
	}

	if c.UserAgent == "" {
		c.UserAgent = constants.DefaultUserAgent
	}

	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	return nil
}
