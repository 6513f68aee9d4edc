// Package store defines the backend-agnostic persistence contract used by the
// session manager, the reply pipeline, and the HTTP collaborators. Two
// interchangeable backends implement it: an embedded SQLite database (the
// default) and a managed Postgres service. Selection happens exactly once at
// process start; callers never branch on the backend.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/islechat/go-wa-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// ErrPersistence wraps backend unavailability or rejected writes. Callers
// check it with errors.Is; the underlying driver error stays attached for
// logging.
var ErrPersistence = errors.New("store: persistence failure")

// Totals is the aggregate message count split by direction.
type Totals struct {
	In  int64 `json:"in"`
	Out int64 `json:"out"`
}

// DayCount is one calendar-day bucket of message counts.
type DayCount struct {
	Date string `json:"date"` // YYYY-MM-DD
	In   int64  `json:"in"`
	Out  int64  `json:"out"`
}

// PeerCount ranks a peer address by total messages exchanged with it.
type PeerCount struct {
	Peer  string `json:"peer"`
	Count int64  `json:"count"`
}

// MessageStore owns the append-only message log.
type MessageStore interface {
	// SaveMessage appends a message and returns its assigned id. It never
	// overwrites; CreatedAt is server-assigned when zero.
	SaveMessage(ctx context.Context, m *domain.Message) (int64, error)

	// GetMessages returns up to limit messages, newest first. When peer is
	// non-empty, only messages whose sender or recipient equals it are
	// returned. Ties on CreatedAt are broken by insertion order (id).
	GetMessages(ctx context.Context, limit int, peer string) ([]domain.Message, error)
}

// ContactStore owns the contact table keyed by peer address.
type ContactStore interface {
	// UpsertContact inserts the address if absent and returns the contact id.
	// The stored name is first-write-wins: an existing name is never
	// overwritten by a later call.
	UpsertContact(ctx context.Context, address, name string) (int64, error)
}

// CredentialStore persists the opaque transport credential blob.
type CredentialStore interface {
	// LoadCredential returns the blob for the named session, or ErrNotFound.
	LoadCredential(ctx context.Context, session string) ([]byte, error)

	// StoreCredential durably replaces the blob for the named session. The
	// write is atomic: readers observe either the old or the new blob.
	StoreCredential(ctx context.Context, session string, blob []byte) error
}

// StatsStore provides the aggregate reads consumed by the analytics surface.
type StatsStore interface {
	Totals(ctx context.Context) (Totals, error)
	// CountsByDay buckets messages per calendar day over the trailing window.
	CountsByDay(ctx context.Context, days int) ([]DayCount, error)
	// TopPeers ranks the n busiest peers; ties go to the first-encountered peer.
	TopPeers(ctx context.Context, n int) ([]PeerCount, error)
}

// TemplateStore persists reply templates managed by the dashboard.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *domain.Template) error
	ListTemplates(ctx context.Context, limit int) ([]domain.Template, error)
	GetTemplate(ctx context.Context, id int64) (*domain.Template, error)
	// UpdateTemplate applies non-nil fields only; absent fields keep their value.
	UpdateTemplate(ctx context.Context, id int64, name, category, content *string) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id int64) error
}

// AutomationStore persists automation flow definitions. Flows are stored,
// never executed.
type AutomationStore interface {
	CreateAutomation(ctx context.Context, a *domain.Automation) error
	ListAutomations(ctx context.Context, limit int) ([]domain.Automation, error)
	GetAutomation(ctx context.Context, id int64) (*domain.Automation, error)
	UpdateAutomation(ctx context.Context, id int64, name, flowJSON *string) (*domain.Automation, error)
	DeleteAutomation(ctx context.Context, id int64) error
}

// BillingStore persists invoices and subscriptions.
type BillingStore interface {
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error)
	MarkInvoicePaid(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	SubscriptionForWorkspace(ctx context.Context, workspace string) (*domain.Subscription, error)
}

// UserStore persists accounts and their workspaces.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// EnsureWorkspace returns the user's workspace, creating one with the
	// given slug when none exists.
	EnsureWorkspace(ctx context.Context, userID int64, slug string) (*domain.Workspace, error)
}

// ReceiptStore records completed outbound sends per idempotency key.
type ReceiptStore interface {
	// GetSendReceipt returns a non-expired receipt or ErrNotFound.
	GetSendReceipt(ctx context.Context, userID, key string, now time.Time) (*domain.SendReceipt, error)
	PutSendReceipt(ctx context.Context, r *domain.SendReceipt) error
}

// Store is the full storage adapter contract. Both backends satisfy it with
// identical external behavior for identical inputs.
type Store interface {
	MessageStore
	ContactStore
	CredentialStore
	StatsStore
	TemplateStore
	AutomationStore
	BillingStore
	UserStore
	ReceiptStore

	Close() error
}
