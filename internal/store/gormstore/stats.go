package gormstore

import (
	"context"
	"time"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// Totals returns the overall message counts split by direction.
func (s *Store) Totals(ctx context.Context) (store.Totals, error) {
	var t store.Totals
	q := s.db.WithContext(ctx).Model(&domain.Message{})
	if err := q.Where("direction = ?", domain.DirectionIn).Count(&t.In).Error; err != nil {
		return store.Totals{}, wrap(err)
	}
	q = s.db.WithContext(ctx).Model(&domain.Message{})
	if err := q.Where("direction = ?", domain.DirectionOut).Count(&t.Out).Error; err != nil {
		return store.Totals{}, wrap(err)
	}
	return t, nil
}

// dayExpr is the dialect-specific SQL that truncates a timestamp to its
// YYYY-MM-DD day string. This is the only query the two backends phrase
// differently; results are identical.
func (s *Store) dayExpr() string {
	if s.dialect == "postgres" {
		return "to_char(created_at, 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', created_at)"
}

// CountsByDay buckets message counts per calendar day over the trailing
// window of the given number of days, oldest day first.
func (s *Store) CountsByDay(ctx context.Context, days int) ([]store.DayCount, error) {
	if days <= 0 {
		days = 14
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	day := s.dayExpr()
	rows := []store.DayCount{}
	err := s.db.WithContext(ctx).
		Model(&domain.Message{}).
		Select(day+" AS date, "+
			"SUM(CASE WHEN direction = 'in' THEN 1 ELSE 0 END) AS \"in\", "+
			"SUM(CASE WHEN direction = 'out' THEN 1 ELSE 0 END) AS \"out\"").
		Where("created_at >= ?", since).
		Group(day).
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// TopPeers ranks the n busiest peer addresses by message count. The peer of
// an inbound message is its sender, of an outbound its recipient. Ties go to
// the peer that appeared first in the log.
func (s *Store) TopPeers(ctx context.Context, n int) ([]store.PeerCount, error) {
	if n <= 0 {
		n = 5
	}
	rows := []store.PeerCount{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT peer, COUNT(*) AS count FROM (
			SELECT id, CASE WHEN direction = 'in' THEN from_addr ELSE to_addr END AS peer
			FROM messages
		) p
		GROUP BY peer
		ORDER BY count DESC, MIN(id) ASC
		LIMIT ?`, n).Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}
