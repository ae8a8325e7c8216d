package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a write collides with an existing record.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike,
	// so callers cannot distinguish the two cases.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when credentials match a deactivated account.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrTokenRevoked is returned when a refresh token is on the revocation list.
	ErrTokenRevoked = errors.New("application: token revoked")
	// ErrTokenExpired is returned when a presented token is past its expiry.
	ErrTokenExpired = errors.New("application: token expired")
	// ErrInvalidToken is returned when a presented token is unknown or of the wrong kind.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrPaymentExists is returned when a booking already carries a payment.
	ErrPaymentExists = errors.New("application: payment already exists for booking")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
