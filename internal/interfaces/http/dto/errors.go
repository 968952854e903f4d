package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request binding failures
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidInput covers domain validation (bad price, color, quantity, ...)
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeEmailTaken          = "ERR_EMAIL_TAKEN"
	ErrCodeOrderIDTaken        = "ERR_ORDER_ID_TAKEN"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
	ErrCodeEmptyCart          = "ERR_EMPTY_CART"
	ErrCodeProductUnavailable = "ERR_PRODUCT_UNAVAILABLE"
	ErrCodeLimitReached       = "ERR_LIMIT_REACHED"
)

// Payment error codes
const (
	ErrCodePaymentVerification = "ERR_PAYMENT_VERIFICATION_FAILED"
	ErrCodePaymentGateway      = "ERR_PAYMENT_GATEWAY"
	ErrCodePaymentUnavailable  = "ERR_PAYMENT_UNAVAILABLE"
	ErrCodePaymentUsed         = "ERR_PAYMENT_ALREADY_USED"
	ErrCodePaymentMismatch     = "ERR_PAYMENT_AMOUNT_MISMATCH"
	ErrCodeServiceUnavailable  = "ERR_SERVICE_UNAVAILABLE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeEmailTaken:          http.StatusConflict,
	ErrCodeOrderIDTaken:        http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,
	ErrCodeLimitReached:       http.StatusUnprocessableEntity,

	// Payment errors
	ErrCodePaymentVerification: http.StatusBadRequest,
	ErrCodePaymentGateway:      http.StatusBadGateway,
	ErrCodePaymentUnavailable:  http.StatusServiceUnavailable,
	ErrCodePaymentUsed:         http.StatusConflict,
	ErrCodePaymentMismatch:     http.StatusConflict,
	ErrCodeServiceUnavailable:  http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
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
	"NOT_FOUND":            ErrCodeNotFound,
	"ADDRESS_NOT_FOUND":    ErrCodeNotFound,
	"COLOR_NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"DUPLICATE_COLOR":      ErrCodeAlreadyExists,
	"EMAIL_TAKEN":          ErrCodeEmailTaken,
	"ORDER_ID_TAKEN":       ErrCodeOrderIDTaken,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_DEACTIVATED": ErrCodeAccountDeactivated,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":       ErrCodeTokenRevoked,

	"INVALID_STATE":          ErrCodeInvalidState,
	"ALREADY_ACTIVE":         ErrCodeInvalidState,
	"ALREADY_INACTIVE":       ErrCodeInvalidState,
	"CANNOT_DEACTIVATE_SELF": ErrCodeBusinessRule,
	"CANNOT_CHANGE_OWN_ROLE": ErrCodeBusinessRule,
	"LAST_SUPER_ADMIN":       ErrCodeBusinessRule,
	"EMPTY_CART":             ErrCodeEmptyCart,
	"EMPTY_ORDER":            ErrCodeEmptyCart,
	"PRODUCT_UNAVAILABLE":    ErrCodeProductUnavailable,
	"ADDRESS_LIMIT":          ErrCodeLimitReached,
	"QUANTITY_LIMIT":         ErrCodeLimitReached,
	"TOO_MANY_COLORS":        ErrCodeLimitReached,

	"PAYMENT_VERIFICATION_FAILED": ErrCodePaymentVerification,
	"PAYMENT_GATEWAY_ERROR":       ErrCodePaymentGateway,
	"PAYMENT_UNAVAILABLE":         ErrCodePaymentUnavailable,
	"PAYMENT_ALREADY_USED":        ErrCodePaymentUsed,
	"PAYMENT_AMOUNT_MISMATCH":     ErrCodePaymentMismatch,
	"INVOICE_UNAVAILABLE":         ErrCodeServiceUnavailable,
	"STORAGE_DISABLED":            ErrCodeServiceUnavailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

// DomainErrorStatus resolves the HTTP status for a domain error code.
// Unmapped INVALID_* and *_REQUIRED codes are input errors; anything
// else unmapped is a business rule violation.
func DomainErrorStatus(code string) (string, int) {
	apiCode := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[apiCode]; ok {
		return apiCode, status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasSuffix(code, "_REQUIRED") {
		return apiCode, http.StatusBadRequest
	}
	if strings.HasSuffix(code, "_ERROR") {
		return apiCode, http.StatusInternalServerError
	}
	return apiCode, http.StatusUnprocessableEntity
}
