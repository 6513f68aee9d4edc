// Package services – BillingService
//
// Checkout issues a pending invoice against a fixed price table; the payment
// provider later confirms it through a shared-secret webhook, which marks the
// invoice paid and opens a 30-day subscription for the workspace.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// SubscriptionPeriod is how long a paid plan stays active per invoice.
const SubscriptionPeriod = 30 * 24 * time.Hour

// ErrBadWebhookSecret is returned when the webhook caller presents the wrong
// shared secret.
var ErrBadWebhookSecret = errors.New("webhook secret mismatch")

// planPrices is the published price table, USD.
var planPrices = map[string]float64{
	"starter":  29.99,
	"premium":  59.99,
	"business": 195.00,
}

// BillingService issues invoices and activates subscriptions.
type BillingService struct {
	Store         store.BillingStore
	WebhookSecret string

	// MaxList caps invoice list responses.
	MaxList int
}

// NewBillingService constructs a BillingService verifying webhooks with the
// given shared secret.
func NewBillingService(st store.BillingStore, webhookSecret string) *BillingService {
	return &BillingService{Store: st, WebhookSecret: webhookSecret, MaxList: 200}
}

// Plans returns the published price table.
func (s *BillingService) Plans() map[string]float64 {
	out := make(map[string]float64, len(planPrices))
	for k, v := range planPrices {
		out[k] = v
	}
	return out
}

// Checkout issues a pending invoice for the plan. The invoice id is unique
// and opaque to the caller.
func (s *BillingService) Checkout(ctx context.Context, workspace, plan string) (*domain.Invoice, error) {
	price, ok := planPrices[plan]
	if !ok {
		return nil, ErrInvalidPlan
	}
	inv := &domain.Invoice{
		InvoiceID: "inv_" + uuid.NewString(),
		Workspace: workspace,
		Plan:      plan,
		Amount:    price,
		Currency:  "USD",
		Status:    domain.InvoicePending,
	}
	if err := s.Store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ConfirmPayment handles the provider webhook: it checks the shared secret,
// marks the invoice paid, and starts the workspace subscription. Confirming
// an already-paid invoice is a no-op that returns the invoice unchanged.
func (s *BillingService) ConfirmPayment(ctx context.Context, secret, invoiceID string) (*domain.Invoice, error) {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.WebhookSecret)) != 1 {
		return nil, ErrBadWebhookSecret
	}

	inv, err := s.Store.GetInvoice(ctx, invoiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoicePaid {
		return inv, nil
	}

	inv, err = s.Store.MarkInvoicePaid(ctx, invoiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		Workspace: inv.Workspace,
		Plan:      inv.Plan,
		Status:    "active",
		StartedAt: now,
		ExpiresAt: now.Add(SubscriptionPeriod),
	}
	if err := s.Store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return inv, nil
}

// Invoices lists issued invoices, newest first.
func (s *BillingService) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.Store.ListInvoices(ctx, s.MaxList)
}

// Subscription returns the workspace's current subscription, or
// store.ErrNotFound when none was ever activated.
func (s *BillingService) Subscription(ctx context.Context, workspace string) (*domain.Subscription, error) {
	return s.Store.SubscriptionForWorkspace(ctx, workspace)
}
