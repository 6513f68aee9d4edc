// Package transport defines the opaque messaging-transport capability the
// session manager drives: dial a connection, receive typed lifecycle and
// message events in delivery order, and send text to a peer address. The
// wire protocol behind a Conn is deliberately out of scope.
package transport

import (
	"context"
	"errors"
)

// ErrDispatch marks a failed outbound send on a live connection. It is
// recoverable: the pipeline logs it and moves on without persisting the
// outbound record.
var ErrDispatch = errors.New("transport: dispatch failed")

// Inbound is one received message entry inside a batch. Entries with an
// empty Text carry no extractable body and are skipped by the pipeline.
type Inbound struct {
	From string // peer address of the sender
	Text string // extracted text body, may be empty
	Meta string // raw transport payload, JSON
}

// Event is a typed transport notification. Implementations deliver events on
// a single channel in the order they occurred.
type Event interface{ isEvent() }

// Connected signals the connection is paired and live.
type Connected struct {
	// SelfAddr is the transport's identity for this account, when known.
	SelfAddr string
}

// PairingRequired carries the out-of-band pairing code to surface while the
// session awaits linking.
type PairingRequired struct {
	Code string
}

// CredentialsUpdated carries a fresh opaque credential blob that must be
// persisted before further events are consumed.
type CredentialsUpdated struct {
	Blob []byte
}

// Disconnected signals the connection dropped. Err may be nil on an orderly
// close.
type Disconnected struct {
	Err error
}

// MessagesReceived delivers one inbound batch in delivery order.
type MessagesReceived struct {
	Batch []Inbound
}

func (Connected) isEvent()          {}
func (PairingRequired) isEvent()    {}
func (CredentialsUpdated) isEvent() {}
func (Disconnected) isEvent()       {}
func (MessagesReceived) isEvent()   {}

// Conn is a live transport connection.
type Conn interface {
	// Events returns the ordered event stream. The channel is closed when
	// the connection is finished.
	Events() <-chan Event

	// SendText dispatches text to the peer address. Failures wrap
	// ErrDispatch.
	SendText(ctx context.Context, to, text string) error

	// Close tears the connection down and releases resources.
	Close() error
}

// Dialer opens transport connections. creds is the previously persisted
// credential blob, or nil to force a fresh pairing cycle.
type Dialer interface {
	Dial(ctx context.Context, creds []byte) (Conn, error)
}
