package gormstore

import (
	"context"
	"time"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// SaveMessage appends a message to the log and returns its assigned id.
func (s *Store) SaveMessage(ctx context.Context, m *domain.Message) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return 0, wrap(err)
	}
	return m.ID, nil
}

// GetMessages returns up to limit messages, newest first. Ordering is
// CreatedAt descending with the numeric id as insertion-order tie-break.
func (s *Store) GetMessages(ctx context.Context, limit int, peer string) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 200
	}
	q := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if peer != "" {
		q = q.Where("from_addr = ? OR to_addr = ?", peer, peer)
	}
	var out []domain.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// UpsertContact inserts the address if absent. An existing row is returned
// untouched so the first-seen name always wins.
func (s *Store) UpsertContact(ctx context.Context, address, name string) (int64, error) {
	var existing domain.Contact
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if werr := wrap(err); werr != store.ErrNotFound {
		return 0, werr
	}

	c := domain.Contact{Address: address, Name: name, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		// Concurrent insert of the same address loses the unique-index race;
		// re-read the winner.
		var again domain.Contact
		if rerr := s.db.WithContext(ctx).Where("address = ?", address).First(&again).Error; rerr == nil {
			return again.ID, nil
		}
		return 0, wrap(err)
	}
	return c.ID, nil
}

// LoadCredential returns the stored blob for the named session.
func (s *Store) LoadCredential(ctx context.Context, session string) ([]byte, error) {
	var c domain.Credential
	if err := s.db.WithContext(ctx).Where("session = ?", session).First(&c).Error; err != nil {
		return nil, wrap(err)
	}
	return c.Blob, nil
}

// StoreCredential replaces the blob for the named session in one statement,
// so a crash leaves either the previous or the new blob, never a torn write.
func (s *Store) StoreCredential(ctx context.Context, session string, blob []byte) error {
	c := domain.Credential{Session: session, Blob: blob, UpdatedAt: time.Now().UTC()}
	return wrap(s.db.WithContext(ctx).Save(&c).Error)
}
