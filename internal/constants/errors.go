package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoPublicKey       = errors.New("no public key configured, use --public-key or OPENAGENDA_PUBLIC_KEY")
	ErrNoSecretKey       = errors.New("no secret key configured, use --secret-key or OPENAGENDA_SECRET_KEY")
	ErrAgendaUIDRequired = errors.New("--agenda flag is required")
	ErrUIDRequired       = errors.New("a UID argument or --ext-id is required")
)

// CLI operation errors.
var (
	ErrAgendaNotFound   = errors.New("agenda not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoTokenReturned  = errors.New("no access token returned")
)
