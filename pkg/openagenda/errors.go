package openagenda

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Static errors for err113 compliance.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidLanguage    = errors.New("invalid language code")
	ErrValidation         = errors.New("validation failed")
	ErrTransport          = errors.New("transport error")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrPublicKeyRequired  = errors.New("public key is required")
	ErrTransportRequired  = errors.New("transport is required")
	ErrInvalidDefaultLang = errors.New("default language is not a valid ISO 639-1 code")
	ErrSecretKeyRequired  = errors.New("secret key is required for write operations")
	ErrNoDefaultClient    = errors.New("no default client registered")
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)

// ConfigurationError reports a missing or invalid constructor option. It is
// returned at construction time and never recovered from.
type ConfigurationError struct {
	Option string
	Err    error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Option, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValidationError aggregates every parameter or field violation found in a
// single pass, keyed by field then rule.
type ValidationError struct {
	Errors map[string]map[string]string `json:"errors"`
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make(map[string]map[string]string)}
}

// Add records a violation. A second message for the same field and rule
// replaces the first.
func (e *ValidationError) Add(field, rule, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string]map[string]string)
	}

	rules, ok := e.Errors[field]
	if !ok {
		rules = make(map[string]string)
		e.Errors[field] = rules
	}

	rules[rule] = message
}

// Merge copies all violations of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}

	for field, rules := range other.Errors {
		for rule, message := range rules {
			e.Add(field, rule, message)
		}
	}
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}

	_, ok := e.Errors[field]

	return ok
}

// Fields returns the names of the failing fields, sorted.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// OrNil returns e when it holds violations and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}

	return nil
}

// Error implements the error interface. The message is the JSON encoding of
// the breakdown, whose keys encoding/json emits in sorted order.
func (e *ValidationError) Error() string {
	data, err := json.Marshal(e.Errors)
	if err != nil {
		return ErrValidation.Error()
	}

	return fmt.Sprintf("%s: %s", ErrValidation, data)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError reports a non-2xx response or a failure raised by the
// transport itself. The upstream status code and message are preserved.
type TransportError struct {
	StatusCode int
	Message    string
	Body       map[string]interface{}
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("transport error (status %d): %v", e.StatusCode, e.Err)
	}

	return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying transport failure, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError builds a TransportError from a parsed response body,
// picking the API message when one is present.
func NewTransportError(status int, body map[string]interface{}) *TransportError {
	message := http.StatusText(status)

	for _, key := range []string{"message", "error_description", "error"} {
		if text, ok := body[key].(string); ok && text != "" {
			message = text

			break
		}
	}

	return &TransportError{StatusCode: status, Message: message, Body: body}
}

// DomainError reports an entity invariant violation raised synchronously at
// set time or export time.
type DomainError struct {
	Entity  string
	Field   string
	Rule    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	switch {
	case e.Entity != "" && e.Field != "":
		return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// Unwrap returns the sentinel classifying the violation.
func (e *DomainError) Unwrap() error {
	return e.Err
}

func newDomainError(entity, field, rule, message string) *DomainError {
	return &DomainError{Entity: entity, Field: field, Rule: rule, Message: message}
}

// IsNotFound checks if the error is a 404 transport error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 or 403 transport error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

// IsValidation checks if the error carries a ValidationError.
func IsValidation(err error) bool {
	validationErr := &ValidationError{}

	return errors.As(err, &validationErr)
}

func hasStatus(err error, status int) bool {
	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == status
	}

	return false
}
