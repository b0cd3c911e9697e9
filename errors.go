package marketplace

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ConfigError reports a missing or invalid process setting. It is fatal at
// startup and never produced per request.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s", e.Key)
	}
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// ErrMissingSigningKey is returned when JWT_SECRET is absent or empty
var ErrMissingSigningKey = &ConfigError{Key: "JWT_SECRET", Reason: "is not set"}

const (
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeEmailRegistered     = "EMAIL_REGISTERED"
	TextCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	TextCodeUnauthorized        = "UNAUTHORIZED"
	TextCodeRecordNotFound      = "RECORD_NOT_FOUND"
	TextCodeTemplateNotFound    = "TEMPLATE_NOT_FOUND"
	TextCodeTemplatePurchased   = "TEMPLATE_PURCHASED"
	TextCodeInvalidRequestInput = "INVALID_INPUT"
)

// ErrInvalidToken wraps every malformed, unsigned or expired token failure
var ErrInvalidToken = goerrors.New("invalid session token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken)

// ErrInvalidCredentials is the only login failure a caller ever sees
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials)

// ErrDuplicateRegistration is returned when the email is already taken
var ErrDuplicateRegistration = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailRegistered)

// ErrStoreUnavailable marks unexpected record store failures
var ErrStoreUnavailable = goerrors.New("record store unavailable", goerrors.CategoryExternal).
	WithTextCode(TextCodeStoreUnavailable)

// ErrUnauthorized is the single outcome of a rejected access check
var ErrUnauthorized = goerrors.New("unauthorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized)

// ErrRecordNotFound is returned by stores when no row matches
var ErrRecordNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeRecordNotFound)

// ErrTemplateNotFound is returned for unknown template ids
var ErrTemplateNotFound = goerrors.New("template not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTemplateNotFound)

// ErrAlreadyPurchased is returned when a user buys the same template twice
var ErrAlreadyPurchased = goerrors.New("template already purchased", goerrors.CategoryConflict).
	WithTextCode(TextCodeTemplatePurchased)

// ValidationError is a field targeted input error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsCategorized returns the go-errors view of a field error
func (e *ValidationError) AsCategorized() *goerrors.Error {
	return goerrors.NewValidation(e.Message, goerrors.FieldError{
		Field:   e.Field,
		Message: e.Message,
	}).WithTextCode(TextCodeInvalidRequestInput)
}

// IsRecordNotFound will check for store misses
func IsRecordNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsValidationError will check for field validation errors
func IsValidationError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	return goerrors.IsValidation(err)
}

// IsStoreUnavailable reports whether err came from a failing record store
func IsStoreUnavailable(err error) bool {
	var gerr *goerrors.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.TextCode == TextCodeStoreUnavailable
}

func storeUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if IsStoreUnavailable(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, ErrStoreUnavailable.Message).
		WithTextCode(TextCodeStoreUnavailable)
}
