package dto

import (
	"net/http"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used for missing or empty required input
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAssetMissing is used when the stored PDF asset cannot be read
	ErrCodeAssetMissing = "ERR_ASSET_MISSING"
)

// Upstream error codes
const (
	// ErrCodeUpstreamEmptyResponse is used when billing answered without a payload
	ErrCodeUpstreamEmptyResponse = "ERR_UPSTREAM_EMPTY_RESPONSE"
	// ErrCodeUpstream is used when billing answered with an unexpected status
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeAssetMissing: http.StatusInternalServerError,

	ErrCodeUpstreamEmptyResponse: http.StatusBadGateway,
	ErrCodeUpstream:              http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeNotFound:              ErrCodeNotFound,
	shared.CodeValidation:            ErrCodeValidation,
	shared.CodeUpstreamEmptyResponse: ErrCodeUpstreamEmptyResponse,
	shared.CodeUpstream:              ErrCodeUpstream,
	shared.CodeAssetMissing:          ErrCodeAssetMissing,
	shared.CodeInternal:              ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}

// DomainCode converts an API error code back to its domain code.
// Input-shape codes collapse to validation. Unknown codes yield "".
func DomainCode(apiCode string) string {
	switch apiCode {
	case ErrCodeBadRequest, ErrCodeInvalidJSON, ErrCodePayloadTooLarge:
		return shared.CodeValidation
	}
	for domainCode, code := range DomainErrorCodeMapping {
		if code == apiCode {
			return domainCode
		}
	}
	return ""
}
