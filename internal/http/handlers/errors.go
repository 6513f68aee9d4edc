// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically, while messages stay human-readable.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeNotConnected     = "not_connected"
	ErrCodeSendFailed       = "send_failed"
	ErrCodeLoginFailed      = "login_failed"
	ErrCodeCheckoutFailed   = "checkout_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
