// Package loopback provides an in-memory transport for local development and
// tests. It pairs instantly when dialed without credentials, emits a
// deterministic credential blob, and lets callers inject inbound batches.
package loopback

import (
	"context"
	"sync"

	"github.com/islechat/go-wa-backend/internal/transport"
)

// SelfAddr is the identity the loopback transport reports on connect.
const SelfAddr = "loopback:self"

// pairedBlob is the credential blob a fresh pairing produces.
var pairedBlob = []byte(`{"transport":"loopback","paired":true}`)

// Dialer implements transport.Dialer. The zero value is usable.
type Dialer struct {
	mu    sync.Mutex
	conns []*Conn
}

// Dial opens a loopback connection. Without credentials it walks the full
// pairing sequence (PairingRequired, CredentialsUpdated, Connected); with
// credentials it connects directly.
func (d *Dialer) Dial(ctx context.Context, creds []byte) (transport.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := &Conn{events: make(chan transport.Event, 64)}
	if len(creds) == 0 {
		c.events <- transport.PairingRequired{Code: "LOOP-0000"}
		c.events <- transport.CredentialsUpdated{Blob: pairedBlob}
	}
	c.events <- transport.Connected{SelfAddr: SelfAddr}

	d.mu.Lock()
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c, nil
}

// Last returns the most recently dialed connection, or nil.
func (d *Dialer) Last() *Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// DialCount reports how many connections were opened.
func (d *Dialer) DialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// Conn is a loopback connection. Sent messages are recorded and can be
// inspected with Sent().
type Conn struct {
	events chan transport.Event

	mu     sync.Mutex
	sent   []Sent
	closed bool

	// FailSends makes SendText return a dispatch error when true.
	FailSends bool
}

// Sent is one recorded outbound message.
type Sent struct {
	To   string
	Text string
}

// Events returns the ordered event stream.
func (c *Conn) Events() <-chan transport.Event { return c.events }

// SendText records the outbound message, or fails when FailSends is set.
func (c *Conn) SendText(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrDispatch
	}
	if c.FailSends {
		return transport.ErrDispatch
	}
	c.sent = append(c.sent, Sent{To: to, Text: text})
	return nil
}

// Close closes the event stream. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

// Deliver injects an inbound batch, as if the peer had sent it.
func (c *Conn) Deliver(batch ...transport.Inbound) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.events <- transport.MessagesReceived{Batch: batch}
}

// Drop emits a Disconnected event and closes the stream, simulating a
// transport-level connection loss.
func (c *Conn) Drop(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.events <- transport.Disconnected{Err: err}
	close(c.events)
	c.mu.Unlock()
}

// Sent returns a copy of all recorded outbound messages.
func (c *Conn) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}
