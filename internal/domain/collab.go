package domain

import "time"

// Invoice statuses.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
)

// Template is a reusable reply snippet managed from the dashboard.
type Template struct {
	ID        int64     `json:"id"       gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"     gorm:"type:varchar(255);not null"`
	Category  string    `json:"category,omitempty" gorm:"type:varchar(64)"`
	Content   string    `json:"content"  gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Template) TableName() string { return "templates" }

// Automation is a saved flow definition. FlowJSON is opaque to the server:
// flows are persisted for the authoring UI but never executed here.
type Automation struct {
	ID        int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"      gorm:"type:varchar(255);not null"`
	FlowJSON  string    `json:"flow_json" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Automation) TableName() string { return "automations" }

// Invoice is a billing document for a workspace plan purchase.
type Invoice struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	InvoiceID string    `json:"invoice_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Workspace string    `json:"workspace"  gorm:"type:varchar(128);not null;index"`
	Plan      string    `json:"plan"       gorm:"type:varchar(32);not null"`
	Amount    float64   `json:"amount"     gorm:"not null"`
	Currency  string    `json:"currency"   gorm:"type:varchar(8);not null"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Subscription is an active plan period for a workspace. The newest row per
// workspace wins.
type Subscription struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Workspace string    `json:"workspace"  gorm:"type:varchar(128);not null;index"`
	Plan      string    `json:"plan"       gorm:"type:varchar(32);not null"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// User is a dashboard account. Password hashes are bcrypt and never leave
// the auth service.
type User struct {
	ID           int64     `json:"id"    gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-"     gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Workspace groups a user's account data under a URL-safe slug.
type Workspace struct {
	ID          int64     `json:"id"   gorm:"primaryKey;autoIncrement"`
	Slug        string    `json:"slug" gorm:"type:varchar(128);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	OwnerUserID int64     `json:"owner_user_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Workspace) TableName() string { return "workspaces" }

// SendReceipt records a completed outbound send keyed by (user, key) so an
// identical retry replays the original message id instead of dispatching
// again.
type SendReceipt struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	Key       string    `gorm:"type:varchar(200);primaryKey"`
	MessageID int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"index"`
}

func (SendReceipt) TableName() string { return "send_receipts" }
