// Package session owns the single transport connection on behalf of the
// business account: its state machine, pairing-code exposure, credential
// persistence, and automatic reconnection. At most one live connection
// exists per process; the state machine, not a lock around the transport,
// enforces it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/islechat/go-wa-backend/internal/store"
	"github.com/islechat/go-wa-backend/internal/transport"
)

// ErrNotConnected is returned by Send while the session is not in the
// Connected state.
var ErrNotConnected = errors.New("session: transport not connected")

// State is the connection lifecycle state.
type State int

// Lifecycle states. Transitions per connection attempt are monotonic:
// Connecting may advance through AwaitingPairing to Connected; a transport
// drop resets to Connecting; shutdown lands on Disconnected.
const (
	StateDisconnected State = iota
	StateConnecting
	StateAwaitingPairing
	StateConnected
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingPairing:
		return "awaiting_pairing"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Status is the non-blocking snapshot polled by the HTTP layer.
type Status struct {
	Connected   bool   `json:"connected"`
	PairingCode string `json:"pairing_code,omitempty"`
}

// Backoff is the reconnect delay schedule: Min doubles per consecutive
// failure up to Max, and retries continue indefinitely. The previous
// behavior retried without any delay bound; the bounded schedule replaces it.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Next returns the delay for the given zero-based attempt number.
func (b Backoff) Next(attempt int) time.Duration {
	min := b.Min
	if min <= 0 {
		min = time.Second
	}
	max := b.Max
	if max <= 0 {
		max = time.Minute
	}
	d := min
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// BatchFunc receives one inbound batch in delivery order.
type BatchFunc func(ctx context.Context, batch []transport.Inbound)

// Manager runs the session state machine. Construct with New, wire the
// inbound sink with OnBatch, then call Start.
type Manager struct {
	dialer  transport.Dialer
	creds   store.CredentialStore
	name    string
	backoff Backoff
	log     zerolog.Logger

	onBatch BatchFunc

	mu          sync.Mutex
	state       State
	pairingCode string
	selfAddr    string
	conn        transport.Conn
	cancel      context.CancelFunc
	done        chan struct{}
}

// New constructs a Manager for the named session. name keys the persisted
// credential blob; selfAddr is the identity recorded on outbound messages
// until the transport reports its own.
func New(dialer transport.Dialer, creds store.CredentialStore, name, selfAddr string, backoff Backoff, log zerolog.Logger) *Manager {
	if name == "" {
		name = "default"
	}
	if selfAddr == "" {
		selfAddr = "server"
	}
	return &Manager{
		dialer:   dialer,
		creds:    creds,
		name:     name,
		selfAddr: selfAddr,
		backoff:  backoff,
		log:      log,
	}
}

// OnBatch registers the inbound batch sink. Must be called before Start.
func (m *Manager) OnBatch(fn BatchFunc) { m.onBatch = fn }

// Start brings the session up. It is idempotent: calling it while the
// session is Connecting or Connected is a no-op and never opens a second
// transport connection.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state = StateConnecting
	m.pairingCode = ""
	m.mu.Unlock()

	go m.run(runCtx)
}

// Status returns the current connection snapshot without blocking on any
// transport operation.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Connected: m.state == StateConnected}
	if m.state == StateAwaitingPairing {
		st.PairingCode = m.pairingCode
	}
	return st
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SelfAddr returns the transport identity of this account.
func (m *Manager) SelfAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selfAddr
}

// Connected reports whether the session is currently Connected.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

// Send dispatches text to the peer address over the live connection. It
// fails with ErrNotConnected unless the session state is Connected.
func (m *Manager) Send(ctx context.Context, to, text string) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}
	return conn.SendText(ctx, to, text)
}

// Shutdown stops the reconnect loop, closes the connection, and waits for
// the run loop to exit or the context to expire. Credentials stay persisted
// for the next process.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	cancel := m.cancel
	conn := m.conn
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	m.state = StateDisconnected
	m.pairingCode = ""
	m.conn = nil
	m.mu.Unlock()
}

// run is the connection loop: dial, drain events, and on drop redial with
// the persisted credentials after a backoff delay.
func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			m.setState(StateDisconnected, "")
			return
		}

		creds := m.loadCredentials(ctx)
		conn, err := m.dialer.Dial(ctx, creds)
		if err != nil {
			m.log.Warn().Err(err).Int("attempt", attempt).Msg("transport dial failed")
			if !m.sleep(ctx, m.backoff.Next(attempt)) {
				m.setState(StateDisconnected, "")
				return
			}
			attempt++
			continue
		}

		m.mu.Lock()
		m.conn = conn
		m.state = StateConnecting
		m.pairingCode = ""
		m.mu.Unlock()

		if m.consume(ctx, conn) {
			attempt = 0
		}
		_ = conn.Close()

		m.mu.Lock()
		m.conn = nil
		if ctx.Err() == nil {
			m.state = StateConnecting
			m.pairingCode = ""
		} else {
			m.state = StateDisconnected
		}
		m.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		m.log.Info().Msg("transport dropped, reconnecting")
		if !m.sleep(ctx, m.backoff.Next(attempt)) {
			m.setState(StateDisconnected, "")
			return
		}
		attempt++
	}
}

// consume drains the connection's event stream until it ends. It reports
// whether the connection reached the Connected state at least once, which
// resets the backoff schedule.
func (m *Manager) consume(ctx context.Context, conn transport.Conn) bool {
	wasConnected := false
	for {
		select {
		case <-ctx.Done():
			return wasConnected
		case ev, ok := <-conn.Events():
			if !ok {
				return wasConnected
			}
			switch ev := ev.(type) {
			case transport.PairingRequired:
				m.setState(StateAwaitingPairing, ev.Code)
				m.log.Info().Msg("pairing required, code available via status")
			case transport.CredentialsUpdated:
				// Persist before consuming further events so a crash after
				// pairing never forces a re-pair.
				if err := m.creds.StoreCredential(ctx, m.name, ev.Blob); err != nil {
					m.log.Error().Err(err).Msg("credential persist failed")
				}
			case transport.Connected:
				wasConnected = true
				m.mu.Lock()
				m.state = StateConnected
				m.pairingCode = ""
				if ev.SelfAddr != "" {
					m.selfAddr = ev.SelfAddr
				}
				m.mu.Unlock()
				m.log.Info().Str("self", ev.SelfAddr).Msg("transport connected")
			case transport.Disconnected:
				if ev.Err != nil {
					m.log.Warn().Err(ev.Err).Msg("transport disconnected")
				}
				return wasConnected
			case transport.MessagesReceived:
				if m.onBatch != nil {
					m.onBatch(ctx, ev.Batch)
				}
			}
		}
	}
}

// loadCredentials reads the persisted blob. Absent or unreadable credentials
// come back nil, which forces a fresh pairing cycle instead of failing.
func (m *Manager) loadCredentials(ctx context.Context) []byte {
	blob, err := m.creds.LoadCredential(ctx, m.name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn().Err(err).Msg("credential load failed, treating as absent")
		}
		return nil
	}
	return blob
}

func (m *Manager) setState(s State, code string) {
	m.mu.Lock()
	m.state = s
	m.pairingCode = code
	m.mu.Unlock()
}

// sleep waits for d or until ctx is cancelled, reporting whether the wait
// completed.
func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
