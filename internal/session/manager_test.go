package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/islechat/go-wa-backend/internal/store"
	"github.com/islechat/go-wa-backend/internal/transport"
	"github.com/islechat/go-wa-backend/internal/transport/loopback"
)

type memCreds struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	loadErr error
}

func newMemCreds() *memCreds {
	return &memCreds{blobs: make(map[string][]byte)}
}

func (m *memCreds) LoadCredential(_ context.Context, session string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.blobs[session]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (m *memCreds) StoreCredential(_ context.Context, session string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[session] = append([]byte(nil), blob...)
	return nil
}

func (m *memCreds) get(session string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blobs[session]
}

func testBackoff() Backoff {
	return Backoff{Min: time.Millisecond, Max: 5 * time.Millisecond}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStart_PairsAndConnects(t *testing.T) {
	d := &loopback.Dialer{}
	creds := newMemCreds()
	m := New(d, creds, "default", "", testBackoff(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())

	waitFor(t, m.Connected, "session never connected")

	st := m.Status()
	if !st.Connected || st.PairingCode != "" {
		t.Fatalf("unexpected status after connect: %+v", st)
	}
	if m.SelfAddr() != loopback.SelfAddr {
		t.Fatalf("expected self addr from transport, got %q", m.SelfAddr())
	}
}

func TestStart_PersistsCredentialsFromPairing(t *testing.T) {
	d := &loopback.Dialer{}
	creds := newMemCreds()
	m := New(d, creds, "default", "", testBackoff(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())

	waitFor(t, func() bool { return creds.get("default") != nil }, "credentials never persisted")
}

func TestStart_Idempotent(t *testing.T) {
	d := &loopback.Dialer{}
	m := New(d, newMemCreds(), "default", "", testBackoff(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())
	waitFor(t, m.Connected, "session never connected")

	m.Start(ctx)
	m.Start(ctx)

	if n := d.DialCount(); n != 1 {
		t.Fatalf("expected a single dial, got %d", n)
	}
}

func TestSend_BeforeStartFails(t *testing.T) {
	m := New(&loopback.Dialer{}, newMemCreds(), "default", "", testBackoff(), zerolog.Nop())

	err := m.Send(context.Background(), "peer", "hi")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestReconnect_AfterTransportDrop(t *testing.T) {
	d := &loopback.Dialer{}
	m := New(d, newMemCreds(), "default", "", testBackoff(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())
	waitFor(t, m.Connected, "session never connected")

	d.Last().Drop(errors.New("stream error"))

	waitFor(t, func() bool { return d.DialCount() >= 2 && m.Connected() }, "session never reconnected")
}

func TestLoadError_TreatedAsFreshPairing(t *testing.T) {
	d := &loopback.Dialer{}
	creds := newMemCreds()
	creds.loadErr = errors.New("blob corrupted")
	m := New(d, creds, "default", "", testBackoff(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())

	waitFor(t, m.Connected, "session never connected despite unreadable credentials")
}

func TestOnBatch_ForwardsInboundBatches(t *testing.T) {
	d := &loopback.Dialer{}
	m := New(d, newMemCreds(), "default", "", testBackoff(), zerolog.Nop())

	var mu sync.Mutex
	var got [][]transport.Inbound
	m.OnBatch(func(_ context.Context, batch []transport.Inbound) {
		mu.Lock()
		got = append(got, batch)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Shutdown(context.Background())
	waitFor(t, m.Connected, "session never connected")

	d.Last().Deliver(
		transport.Inbound{From: "alice", Text: "one"},
		transport.Inbound{From: "bob", Text: "two"},
	)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "batch never forwarded")

	mu.Lock()
	defer mu.Unlock()
	if len(got[0]) != 2 || got[0][0].From != "alice" || got[0][1].From != "bob" {
		t.Fatalf("batch order wrong: %+v", got[0])
	}
}

func TestShutdown_StopsSession(t *testing.T) {
	d := &loopback.Dialer{}
	m := New(d, newMemCreds(), "default", "", testBackoff(), zerolog.Nop())

	m.Start(context.Background())
	waitFor(t, m.Connected, "session never connected")

	m.Shutdown(context.Background())

	if m.State() != StateDisconnected {
		t.Fatalf("expected disconnected state, got %v", m.State())
	}
	if err := m.Send(context.Background(), "peer", "hi"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after shutdown, got %v", err)
	}
}

func TestBackoff_Schedule(t *testing.T) {
	b := Backoff{Min: time.Second, Max: time.Minute}

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		time.Minute,
		time.Minute,
	}
	for i, w := range want {
		if got := b.Next(i); got != w {
			t.Fatalf("attempt %d: expected %v, got %v", i, w, got)
		}
	}
}
