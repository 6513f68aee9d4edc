package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/http/middleware"
	"github.com/islechat/go-wa-backend/internal/services"
	"github.com/islechat/go-wa-backend/internal/store"
)

// webhookSecretHeader carries the payment provider's shared secret.
const webhookSecretHeader = "x-payoneer-secret"

// Plans returns the published price table.
func (h *Handlers) Plans(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"plans": h.billingSvc.Plans(), "currency": "USD"})
}

// CheckoutRequest is the JSON payload for POST /api/billing/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// Checkout issues a pending invoice for the authenticated workspace.
func (h *Handlers) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "plan is required")
		return
	}
	inv, err := h.billingSvc.Checkout(c.Request.Context(), middleware.Workspace(c), req.Plan)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidPlan):
		fail(c, http.StatusBadRequest, ErrCodeCheckoutFailed, "unknown plan")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "checkout failed")
		return
	}
	ok(c, http.StatusCreated, inv)
}

// PaymentWebhookRequest is the JSON payload posted by the payment provider.
type PaymentWebhookRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
}

// PaymentWebhook confirms an invoice as paid and activates the subscription.
// The caller authenticates with the shared-secret header, not a bearer token.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invoice_id is required")
		return
	}
	inv, err := h.billingSvc.ConfirmPayment(c.Request.Context(), c.GetHeader(webhookSecretHeader), req.InvoiceID)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrBadWebhookSecret):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "bad webhook secret")
		return
	case errors.Is(err, services.ErrInvoiceNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "invoice not found")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "payment confirmation failed")
		return
	}
	ok(c, http.StatusOK, inv)
}

// Invoices lists issued invoices, newest first.
func (h *Handlers) Invoices(c *gin.Context) {
	list, err := h.billingSvc.Invoices(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list invoices")
		return
	}
	ok(c, http.StatusOK, gin.H{"invoices": list, "count": len(list)})
}

// Subscription returns the workspace's current subscription, or 404 when no
// plan was ever activated.
func (h *Handlers) Subscription(c *gin.Context) {
	sub, err := h.billingSvc.Subscription(c.Request.Context(), middleware.Workspace(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no active subscription")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load subscription")
		return
	}
	ok(c, http.StatusOK, sub)
}
