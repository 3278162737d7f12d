package dto

import (
	"net/http"
	"strings"
)

// Generic error codes. Domain errors keep their own codes (EMPTY_CART,
// STOCK_UNDERFLOW, ...) and are looked up in ErrorCodeHTTPStatus directly.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
)

// Storefront domain error codes with a fixed HTTP status
const (
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeStockUnderflow     = "STOCK_UNDERFLOW"
	ErrCodeOutOfStock         = "OUT_OF_STOCK"
	ErrCodeStockLimitReached  = "STOCK_LIMIT_REACHED"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeIllegalTransition  = "ILLEGAL_STATUS_TRANSITION"
	ErrCodePaymentRequired    = "PAYMENT_METHOD_REQUIRED"
	ErrCodeProductInUse       = "PRODUCT_IN_USE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeUploadUnavailable  = "IMAGE_UPLOAD_UNAVAILABLE"
	ErrCodeInvoiceUnavailable = "INVOICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidStatus:   http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeEmailTaken:          http.StatusConflict,
	ErrCodeProductInUse:        http.StatusConflict,
	// Retryable: the stock moved between validation and decrement.
	ErrCodeStockUnderflow: http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:         http.StatusUnprocessableEntity,
	ErrCodeStockLimitReached:  http.StatusUnprocessableEntity,
	ErrCodeIllegalTransition:  http.StatusUnprocessableEntity,
	ErrCodePaymentRequired:    http.StatusUnprocessableEntity,
	ErrCodeUploadUnavailable:  http.StatusServiceUnavailable,
	ErrCodeInvoiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes not in
// the table fall back by prefix: INVALID_* is 400, ALREADY_* is 409, anything
// else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// LegacyErrorCodeMapping maps the generic shared.DomainError codes onto the
// ERR_ namespace
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a generic code to the ERR_ namespace; every
// other code is returned as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
