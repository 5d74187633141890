package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so a DomainError with a
// request-specific message still matches the package sentinel of its kind.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound              = "NOT_FOUND"
	CodeValidation            = "VALIDATION_ERROR"
	CodeUpstreamEmptyResponse = "UPSTREAM_EMPTY_RESPONSE"
	CodeUpstream              = "UPSTREAM_ERROR"
	CodeAssetMissing          = "ASSET_MISSING"
	CodeInternal              = "INTERNAL_ERROR"
)

// Common domain errors
var (
	ErrNotFound              = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation            = NewDomainError(CodeValidation, "Invalid input provided")
	ErrUpstreamEmptyResponse = NewDomainError(CodeUpstreamEmptyResponse, "Upstream returned no payload")
	ErrUpstream              = NewDomainError(CodeUpstream, "Upstream request failed")
	ErrAssetMissing          = NewDomainError(CodeAssetMissing, "Asset not found")
)

// NewValidationError creates a validation error with a caller-facing message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a not-found error with a caller-facing message
func NewNotFoundError(format string, args ...any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf(format, args...))
}

// NewUpstreamEmptyResponseError creates an error for a successful upstream call without payload
func NewUpstreamEmptyResponseError(message string) *DomainError {
	return NewDomainError(CodeUpstreamEmptyResponse, message)
}
