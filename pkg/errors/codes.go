package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeMessagingError     ErrorCode = "COMMON_015"
	ErrCodeStorageError       ErrorCode = "COMMON_016"
)

// Sentinel codes that do not belong to a module.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Catalog Module Error Codes
const (
	ErrCodeCatalogNotFound      ErrorCode = "CAT_001"
	ErrCodeCatalogParseFailed   ErrorCode = "CAT_002"
	ErrCodeCatalogInvalid       ErrorCode = "CAT_003"
	ErrCodeCatalogFormatUnknown ErrorCode = "CAT_004"
	ErrCodeCatalogEmpty         ErrorCode = "CAT_005"
)

// Scoring Module Error Codes
const (
	ErrCodeInvalidFrequency ErrorCode = "SCORE_001"
	ErrCodeEngineNotReady   ErrorCode = "SCORE_002"
)

// Scan History Module Error Codes
const (
	ErrCodeScanNotFound      ErrorCode = "SCAN_001"
	ErrCodeScanAlreadyExists ErrorCode = "SCAN_002"
	ErrCodeScanForbidden     ErrorCode = "SCAN_003"
	ErrCodeScanTextEmpty     ErrorCode = "SCAN_004"
	ErrCodeScanImageFailed   ErrorCode = "SCAN_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeCatalogNotFound:      http.StatusNotFound,
	ErrCodeCatalogParseFailed:   http.StatusUnprocessableEntity,
	ErrCodeCatalogInvalid:       http.StatusUnprocessableEntity,
	ErrCodeCatalogFormatUnknown: http.StatusBadRequest,
	ErrCodeCatalogEmpty:         http.StatusUnprocessableEntity,

	ErrCodeInvalidFrequency: http.StatusBadRequest,
	ErrCodeEngineNotReady:   http.StatusServiceUnavailable,

	ErrCodeScanNotFound:      http.StatusNotFound,
	ErrCodeScanAlreadyExists: http.StatusConflict,
	ErrCodeScanForbidden:     http.StatusForbidden,
	ErrCodeScanTextEmpty:     http.StatusBadRequest,
	ErrCodeScanImageFailed:   http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeMessagingError:     "messaging error",
	ErrCodeStorageError:       "object storage error",

	ErrCodeCatalogNotFound:      "catalog not found",
	ErrCodeCatalogParseFailed:   "failed to parse catalog",
	ErrCodeCatalogInvalid:       "catalog failed validation",
	ErrCodeCatalogFormatUnknown: "unsupported catalog format",
	ErrCodeCatalogEmpty:         "catalog has no entries",

	ErrCodeInvalidFrequency: "unrecognized usage frequency",
	ErrCodeEngineNotReady:   "scoring engine not ready",

	ErrCodeScanNotFound:      "scan not found",
	ErrCodeScanAlreadyExists: "scan already exists",
	ErrCodeScanForbidden:     "scan belongs to another user",
	ErrCodeScanTextEmpty:     "scan text is empty",
	ErrCodeScanImageFailed:   "failed to archive scan image",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
