package services

import (
	"context"
	"testing"

	"github.com/islechat/go-wa-backend/internal/domain"
)

func TestOverview_EmptyStore(t *testing.T) {
	svc := NewAnalyticsService(newTestStore(t))

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Totals.In != 0 || ov.Totals.Out != 0 {
		t.Fatalf("expected zero totals, got %+v", ov.Totals)
	}
	if ov.ByDay == nil || ov.TopPeers == nil {
		t.Fatal("series must be empty slices, not nil")
	}
}

func TestOverview_AggregatesSeededTraffic(t *testing.T) {
	st := newTestStore(t)
	svc := NewAnalyticsService(st)
	ctx := context.Background()

	seed := []domain.Message{
		{FromAddr: "alice", ToAddr: "self", Direction: domain.DirectionIn, Text: "a"},
		{FromAddr: "alice", ToAddr: "self", Direction: domain.DirectionIn, Text: "b"},
		{FromAddr: "self", ToAddr: "alice", Direction: domain.DirectionOut, Text: "c"},
		{FromAddr: "bob", ToAddr: "self", Direction: domain.DirectionIn, Text: "d"},
	}
	for i := range seed {
		if _, err := st.SaveMessage(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Totals.In != 3 || ov.Totals.Out != 1 {
		t.Fatalf("unexpected totals: %+v", ov.Totals)
	}
	if len(ov.TopPeers) != 2 || ov.TopPeers[0].Peer != "alice" || ov.TopPeers[0].Count != 3 {
		t.Fatalf("unexpected peer ranking: %+v", ov.TopPeers)
	}
	if len(ov.ByDay) != 1 {
		t.Fatalf("expected one day bucket, got %+v", ov.ByDay)
	}
}
