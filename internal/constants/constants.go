package constants

import "time"

// API endpoint defaults.
const (
	// DefaultBaseURL is the OpenAgenda v2 REST API root.
	DefaultBaseURL = "https://api.openagenda.com/v2"

	// DefaultLang is the fallback language for plain-string multilingual values.
	DefaultLang = "fr"

	// DefaultUserAgent is sent when the caller does not override it.
	DefaultUserAgent = "openagenda-go"

	// DefaultPhoneRegion is used when a location carries no country code.
	DefaultPhoneRegion = "FR"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Access token handling.
const (
	// TokenCacheKeyPrefix prefixes the cache key holding the access token.
	TokenCacheKeyPrefix = "openagenda-token-"

	// DefaultTokenTTL applies when the auth response omits expires_in.
	DefaultTokenTTL = 3600 * time.Second

	// TokenExpirationBuffer is subtracted from the declared TTL.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultCacheSize bounds the in-memory cache.
	DefaultCacheSize = 100
)

// Response metadata keys added to every parsed body.
const (
	// StatusKey holds the HTTP status code.
	StatusKey = "_status"

	// SuccessKey is true for 2xx responses.
	SuccessKey = "_success"
)

// Request header names understood by the API.
const (
	HeaderAccessToken = "access-token"
	HeaderNonce       = "nonce"
	QueryKey          = "key"
)

// Multilingual field limits, in runes.
const (
	EventTitleMax           = 140
	EventDescriptionMax     = 200
	EventLongDescriptionMax = 10000
	EventConditionsMax      = 255
	EventKeywordMax         = 255
	LocationAccessMax       = 1000
	LocationDescriptionMax  = 5000

	// TruncationSuffix is appended to cut text.
	TruncationSuffix = " ..."
)

// List limits.
const (
	// MaxPageSize is the largest page the API serves.
	MaxPageSize = 300

	// DefaultPageSize is used by the CLI when no limit is given.
	DefaultPageSize = 20
)

// Validation rule names used in ValidationError breakdowns.
const (
	RuleRequired = "_required"
	RuleType     = "type"
	RuleInList   = "inList"
	RuleRange    = "range"
	RuleFormat   = "format"
	RuleCustom   = "custom"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750
)
