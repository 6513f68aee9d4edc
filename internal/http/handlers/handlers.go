// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers depend on narrow service interfaces rather than concrete types so
// transport concerns stay separate from business logic and tests can swap in
// fakes.
package handlers

import (
	"context"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/services"
	"github.com/islechat/go-wa-backend/internal/session"
)

//
// Service contracts (context-aware)
//

// AuthService authenticates dashboard accounts.
type AuthService interface {
	// Login verifies or creates the account and returns a signed token.
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
}

// SessionService exposes the transport connection state.
type SessionService interface {
	// Status returns the connection snapshot without blocking.
	Status() session.Status
}

// MessageService serves the stored message log.
type MessageService interface {
	// GetMessages returns up to limit messages, newest first, optionally
	// filtered to one peer.
	GetMessages(ctx context.Context, limit int, peer string) ([]domain.Message, error)
}

// SendService dispatches operator-initiated messages.
type SendService interface {
	// Send delivers text to the peer and returns the stored message id.
	// idemKey, when non-empty, makes retries replay the original result.
	Send(ctx context.Context, userID, to, text, idemKey string) (int64, error)
}

// TemplateService manages reply templates.
type TemplateService interface {
	Create(ctx context.Context, name, category, content string) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	Get(ctx context.Context, id int64) (*domain.Template, error)
	Update(ctx context.Context, id int64, name, category, content *string) (*domain.Template, error)
	Delete(ctx context.Context, id int64) error
}

// AutomationService manages stored automation flows.
type AutomationService interface {
	Create(ctx context.Context, name, flowJSON string) (*domain.Automation, error)
	List(ctx context.Context) ([]domain.Automation, error)
	Get(ctx context.Context, id int64) (*domain.Automation, error)
	Update(ctx context.Context, id int64, name, flowJSON *string) (*domain.Automation, error)
	Delete(ctx context.Context, id int64) error
}

// BillingService issues invoices and tracks subscriptions.
type BillingService interface {
	Plans() map[string]float64
	Checkout(ctx context.Context, workspace, plan string) (*domain.Invoice, error)
	ConfirmPayment(ctx context.Context, secret, invoiceID string) (*domain.Invoice, error)
	Invoices(ctx context.Context) ([]domain.Invoice, error)
	Subscription(ctx context.Context, workspace string) (*domain.Subscription, error)
}

// AnalyticsService serves the dashboard overview.
type AnalyticsService interface {
	Overview(ctx context.Context) (*services.Overview, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for session state, messaging,
// templates, automations, billing, and analytics.
type Handlers struct {
	authSvc      AuthService
	sessionSvc   SessionService
	messageSvc   MessageService
	sendSvc      SendService
	templateSvc  TemplateService
	autoSvc      AutomationService
	billingSvc   BillingService
	analyticsSvc AnalyticsService
}

// New constructs a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	sessionSvc SessionService,
	messageSvc MessageService,
	sendSvc SendService,
	templateSvc TemplateService,
	autoSvc AutomationService,
	billingSvc BillingService,
	analyticsSvc AnalyticsService,
) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		sessionSvc:   sessionSvc,
		messageSvc:   messageSvc,
		sendSvc:      sendSvc,
		templateSvc:  templateSvc,
		autoSvc:      autoSvc,
		billingSvc:   billingSvc,
		analyticsSvc: analyticsSvc,
	}
}
