package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown     = "ERR_UNKNOWN"
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Pipeline error codes
const (
	ErrCodeInvalidState   = "ERR_INVALID_STATE"
	ErrCodeRunInProgress  = "ERR_RUN_IN_PROGRESS"
	ErrCodeRunFinalized   = "ERR_RUN_FINALIZED"
	ErrCodeUnknownSource  = "ERR_UNKNOWN_SOURCE"
	ErrCodePersistence    = "ERR_PERSISTENCE"
	ErrCodeQueueFull      = "ERR_QUEUE_FULL"
	ErrCodeScoringOffline = "ERR_SCORING_OFFLINE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:   http.StatusUnprocessableEntity,
	ErrCodeRunInProgress:  http.StatusConflict,
	ErrCodeRunFinalized:   http.StatusConflict,
	ErrCodeUnknownSource:  http.StatusBadRequest,
	ErrCodePersistence:    http.StatusServiceUnavailable,
	ErrCodeQueueFull:      http.StatusServiceUnavailable,
	ErrCodeScoringOffline: http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps domain error codes onto API codes
var domainCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"PERSISTENCE_ERROR":    ErrCodePersistence,
	"RUN_IN_PROGRESS":      ErrCodeRunInProgress,
	"RUN_FINALIZED":        ErrCodeRunFinalized,
	"UNKNOWN_SOURCE":       ErrCodeUnknownSource,
	"INVALID_SOURCE":       ErrCodeInvalidInput,
	"INVALID_NAME":         ErrCodeInvalidInput,
	"INVALID_ISLAND":       ErrCodeInvalidInput,
	"VALIDATION_REJECTED":  ErrCodeValidation,
	"MERGE_CONFLICT":       ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes already in API form, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
