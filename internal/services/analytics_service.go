// Package services – AnalyticsService
//
// The dashboard overview is assembled from three aggregate reads. All
// counting happens in the database; this layer only shapes the response.
package services

import (
	"context"

	"github.com/islechat/go-wa-backend/internal/store"
)

// Overview is the dashboard analytics payload.
type Overview struct {
	Totals   store.Totals      `json:"totals"`
	ByDay    []store.DayCount  `json:"by_day"`
	TopPeers []store.PeerCount `json:"top_peers"`
}

// AnalyticsService serves message-volume aggregates.
type AnalyticsService struct {
	Store store.StatsStore

	// WindowDays is the trailing window for the per-day series.
	WindowDays int
	// TopN is how many peers the ranking returns.
	TopN int
}

// NewAnalyticsService constructs an AnalyticsService with the dashboard's
// default window of 14 days and top 5 peers.
func NewAnalyticsService(st store.StatsStore) *AnalyticsService {
	return &AnalyticsService{Store: st, WindowDays: 14, TopN: 5}
}

// Overview gathers totals, the per-day series, and the peer ranking.
func (s *AnalyticsService) Overview(ctx context.Context) (*Overview, error) {
	totals, err := s.Store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	byDay, err := s.Store.CountsByDay(ctx, s.WindowDays)
	if err != nil {
		return nil, err
	}
	peers, err := s.Store.TopPeers(ctx, s.TopN)
	if err != nil {
		return nil, err
	}
	if byDay == nil {
		byDay = []store.DayCount{}
	}
	if peers == nil {
		peers = []store.PeerCount{}
	}
	return &Overview{Totals: totals, ByDay: byDay, TopPeers: peers}, nil
}
