// Package services holds the business logic behind the HTTP layer: account
// auth, template and automation management, billing, and analytics. This file
// centralizes the service-level error values so handlers can translate them
// into HTTP status codes consistently.
package services

import "errors"

var (
	// ErrInvalidCredentials is returned when a login attempt supplies the
	// wrong password for an existing account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyEmail is returned when authentication input lacks an email.
	ErrEmptyEmail = errors.New("email is required")

	// ErrEmptyPassword is returned when authentication input lacks a password.
	ErrEmptyPassword = errors.New("password is required")

	// ErrTemplateNotFound indicates the requested template does not exist in
	// the caller's workspace.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrAutomationNotFound indicates the requested automation does not exist
	// in the caller's workspace.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrInvalidPlan is returned when checkout names a plan outside the
	// published price table.
	ErrInvalidPlan = errors.New("unknown plan")

	// ErrInvoiceNotFound indicates the webhook referenced an invoice that was
	// never issued.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrEmptyName is returned when a template or automation is created
	// without a name.
	ErrEmptyName = errors.New("name is required")
)
