// Package domain defines the persistence models for messages, contacts, and
// transport credentials. These types are mapped with GORM and form the core
// data layer of the auto-responder.
package domain

import "time"

// Message direction values. Every stored message is either inbound (sent by
// a peer to the business account) or outbound (sent by the server).
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message is a single conversation turn in the append-only message log.
// Rows are immutable once created: there is no UpdatedAt and no soft delete.
//
// Fields:
//   - ID: auto-incrementing numeric primary key; doubles as the insertion
//     order tie-break for equal timestamps.
//   - FromAddr / ToAddr: opaque peer addresses; one side always equals the
//     server's own identity, consistent with Direction.
//   - Direction: "in" or "out" (enforced by DB constraint).
//   - Text: message body.
//   - Meta: arbitrary metadata captured from the transport, serialized as
//     JSON text.
//   - CreatedAt: server-assigned, monotonically non-decreasing per insert.
type Message struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	FromAddr  string    `json:"from"       gorm:"type:varchar(128);not null;index:idx_msg_from"`
	ToAddr    string    `json:"to"         gorm:"type:varchar(128);not null;index:idx_msg_to"`
	Direction string    `json:"direction"  gorm:"type:varchar(8);not null;check:direction IN ('in','out')"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Meta      string    `json:"meta,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_msg_created"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Contact is a conversation counterparty, created on first sight of its
// address and never deleted by the pipeline. The display name is
// first-write-wins: a later upsert with a different name does not overwrite
// an existing one.
type Contact struct {
	ID        int64     `json:"id"      gorm:"primaryKey;autoIncrement"`
	Address   string    `json:"address" gorm:"type:varchar(128);uniqueIndex;not null"`
	Name      string    `json:"name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// Credential holds the opaque transport credential blob for a session, keyed
// by session name. The blob is replaced atomically on every credential update
// pushed by the transport and read back at startup; a corrupt or missing row
// simply forces a fresh pairing cycle.
type Credential struct {
	Session   string    `json:"session" gorm:"type:varchar(64);primaryKey"`
	Blob      []byte    `json:"-"       gorm:"type:blob"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Credential.
func (Credential) TableName() string { return "credentials" }
