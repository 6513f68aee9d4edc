package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustSave(t *testing.T, s *Store, m *domain.Message) int64 {
	t.Helper()
	id, err := s.SaveMessage(context.Background(), m)
	if err != nil {
		t.Fatalf("save message: %v", err)
	}
	return id
}

func TestSaveMessage_AssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)

	m := &domain.Message{FromAddr: "peer1", ToAddr: "self", Direction: domain.DirectionIn, Text: "hi"}
	id := mustSave(t, s, m)
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := s.GetMessages(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("expected server-assigned CreatedAt")
	}
}

func TestGetMessages_NewestFirstAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		mustSave(t, s, &domain.Message{
			FromAddr:  "peer1",
			ToAddr:    "self",
			Direction: domain.DirectionIn,
			Text:      string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	got, err := s.GetMessages(ctx, 3, "")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].Text != "e" || got[2].Text != "c" {
		t.Fatalf("expected newest first, got %q..%q", got[0].Text, got[2].Text)
	}
}

func TestGetMessages_TieBreakByInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mustSave(t, s, &domain.Message{FromAddr: "p", ToAddr: "s", Direction: domain.DirectionIn, Text: "first", CreatedAt: ts})
	mustSave(t, s, &domain.Message{FromAddr: "p", ToAddr: "s", Direction: domain.DirectionIn, Text: "second", CreatedAt: ts})

	got, err := s.GetMessages(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if got[0].Text != "second" || got[1].Text != "first" {
		t.Fatalf("expected later insert first on equal timestamps, got %q, %q", got[0].Text, got[1].Text)
	}
}

func TestGetMessages_PeerFilterMatchesEitherSide(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSave(t, s, &domain.Message{FromAddr: "alice", ToAddr: "self", Direction: domain.DirectionIn, Text: "in"})
	mustSave(t, s, &domain.Message{FromAddr: "self", ToAddr: "alice", Direction: domain.DirectionOut, Text: "out"})
	mustSave(t, s, &domain.Message{FromAddr: "bob", ToAddr: "self", Direction: domain.DirectionIn, Text: "other"})

	got, err := s.GetMessages(ctx, 10, "alice")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 alice messages, got %d", len(got))
	}
	for _, m := range got {
		if m.FromAddr != "alice" && m.ToAddr != "alice" {
			t.Fatalf("unexpected message %+v", m)
		}
	}
}

func TestUpsertContact_FirstWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertContact(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := s.UpsertContact(ctx, "alice", "Someone Else")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same contact id, got %d and %d", id1, id2)
	}

	var c domain.Contact
	if err := s.DB().First(&c, "address = ?", "alice").Error; err != nil {
		t.Fatalf("load contact: %v", err)
	}
	if c.Name != "Alice" {
		t.Fatalf("expected first name to stick, got %q", c.Name)
	}
}

func TestCredentials_RoundTripAndOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadCredential(ctx, "default"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.StoreCredential(ctx, "default", []byte("v1")); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.StoreCredential(ctx, "default", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	blob, err := s.LoadCredential(ctx, "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(blob) != "v2" {
		t.Fatalf("expected latest blob, got %q", blob)
	}
}

func TestTotals_SplitsByDirection(t *testing.T) {
	s := newTestStore(t)

	mustSave(t, s, &domain.Message{FromAddr: "a", ToAddr: "s", Direction: domain.DirectionIn, Text: "1"})
	mustSave(t, s, &domain.Message{FromAddr: "b", ToAddr: "s", Direction: domain.DirectionIn, Text: "2"})
	mustSave(t, s, &domain.Message{FromAddr: "s", ToAddr: "a", Direction: domain.DirectionOut, Text: "3"})

	tot, err := s.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if tot.In != 2 || tot.Out != 1 {
		t.Fatalf("expected 2 in / 1 out, got %+v", tot)
	}
}

func TestCountsByDay_BucketsWithinWindow(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	mustSave(t, s, &domain.Message{FromAddr: "a", ToAddr: "s", Direction: domain.DirectionIn, Text: "today", CreatedAt: now})
	mustSave(t, s, &domain.Message{FromAddr: "s", ToAddr: "a", Direction: domain.DirectionOut, Text: "also today", CreatedAt: now})
	// Outside a 14 day window.
	mustSave(t, s, &domain.Message{FromAddr: "a", ToAddr: "s", Direction: domain.DirectionIn, Text: "old", CreatedAt: now.AddDate(0, 0, -30)})

	days, err := s.CountsByDay(context.Background(), 14)
	if err != nil {
		t.Fatalf("counts by day: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 bucket, got %d (%+v)", len(days), days)
	}
	if days[0].Date != now.Format("2006-01-02") {
		t.Fatalf("expected today's bucket, got %q", days[0].Date)
	}
	if days[0].In != 1 || days[0].Out != 1 {
		t.Fatalf("expected 1 in / 1 out, got %+v", days[0])
	}
}

func TestTopPeers_RanksByVolume(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		mustSave(t, s, &domain.Message{FromAddr: "busy", ToAddr: "s", Direction: domain.DirectionIn, Text: "x"})
	}
	mustSave(t, s, &domain.Message{FromAddr: "s", ToAddr: "busy", Direction: domain.DirectionOut, Text: "y"})
	mustSave(t, s, &domain.Message{FromAddr: "quiet", ToAddr: "s", Direction: domain.DirectionIn, Text: "z"})

	peers, err := s.TopPeers(context.Background(), 5)
	if err != nil {
		t.Fatalf("top peers: %v", err)
	}
	if len(peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(peers))
	}
	if peers[0].Peer != "busy" || peers[0].Count != 4 {
		t.Fatalf("expected busy with 4, got %+v", peers[0])
	}
	if peers[1].Peer != "quiet" || peers[1].Count != 1 {
		t.Fatalf("expected quiet with 1, got %+v", peers[1])
	}
}

func TestTemplates_CRUDAndPartialUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tpl := &domain.Template{Name: "greeting", Category: "sales", Content: "Hello!"}
	if err := s.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID == 0 {
		t.Fatal("expected assigned id")
	}

	newContent := "Hi there!"
	got, err := s.UpdateTemplate(ctx, tpl.ID, nil, nil, &newContent)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "greeting" || got.Content != "Hi there!" {
		t.Fatalf("partial update wrong: %+v", got)
	}

	if err := s.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTemplate(ctx, tpl.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDelete_MissingRowsReportNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.DeleteTemplate(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("template: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteAutomation(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("automation: expected ErrNotFound, got %v", err)
	}

	a := &domain.Automation{Name: "welcome", FlowJSON: "{}"}
	if err := s.CreateAutomation(ctx, a); err != nil {
		t.Fatalf("create automation: %v", err)
	}
	if err := s.DeleteAutomation(ctx, a.ID); err != nil {
		t.Fatalf("delete automation: %v", err)
	}
	if err := s.DeleteAutomation(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
}

func TestMarkInvoicePaid_UnknownInvoice(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.MarkInvoicePaid(context.Background(), "inv_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptionForWorkspace_NewestWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	older := &domain.Subscription{Workspace: "acme", Plan: "starter", Status: "active", StartedAt: now.AddDate(0, -1, 0)}
	newer := &domain.Subscription{Workspace: "acme", Plan: "premium", Status: "active", StartedAt: now}
	if err := s.CreateSubscription(ctx, older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := s.CreateSubscription(ctx, newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	got, err := s.SubscriptionForWorkspace(ctx, "acme")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Plan != "premium" {
		t.Fatalf("expected newest subscription, got %+v", got)
	}
}

func TestSendReceipt_ExpiryHonored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := &domain.SendReceipt{UserID: "1", Key: "k1", MessageID: 42, ExpiresAt: now.Add(time.Hour)}
	if err := s.PutSendReceipt(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetSendReceipt(ctx, "1", "k1", now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MessageID != 42 {
		t.Fatalf("expected message id 42, got %d", got.MessageID)
	}

	if _, err := s.GetSendReceipt(ctx, "1", "k1", now.Add(2*time.Hour)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestEnsureWorkspace_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{Email: "owner@example.com", PasswordHash: "x"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	ws1, err := s.EnsureWorkspace(ctx, u.ID, "owner")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	ws2, err := s.EnsureWorkspace(ctx, u.ID, "owner")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if ws1.ID != ws2.ID {
		t.Fatalf("expected same workspace, got %d and %d", ws1.ID, ws2.ID)
	}
}
