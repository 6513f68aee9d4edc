package gormstore

import (
	"context"
	"strings"
	"time"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

//
// Templates
//

func (s *Store) CreateTemplate(ctx context.Context, t *domain.Template) error {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return wrap(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) ListTemplates(ctx context.Context, limit int) ([]domain.Template, error) {
	if limit <= 0 {
		limit = 200
	}
	var out []domain.Template
	err := s.db.WithContext(ctx).
		Order("updated_at DESC, created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *Store) GetTemplate(ctx context.Context, id int64) (*domain.Template, error) {
	var t domain.Template
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

// UpdateTemplate applies only the provided fields; nil pointers keep the
// stored value.
func (s *Store) UpdateTemplate(ctx context.Context, id int64, name, category, content *string) (*domain.Template, error) {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		t.Name = *name
	}
	if category != nil {
		t.Category = *category
	}
	if content != nil {
		t.Content = *content
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&domain.Template{}, id)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

//
// Automations
//

func (s *Store) CreateAutomation(ctx context.Context, a *domain.Automation) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	return wrap(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) ListAutomations(ctx context.Context, limit int) ([]domain.Automation, error) {
	if limit <= 0 {
		limit = 200
	}
	var out []domain.Automation
	err := s.db.WithContext(ctx).
		Order("updated_at DESC, created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *Store) GetAutomation(ctx context.Context, id int64) (*domain.Automation, error) {
	var a domain.Automation
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &a, nil
}

func (s *Store) UpdateAutomation(ctx context.Context, id int64, name, flowJSON *string) (*domain.Automation, error) {
	a, err := s.GetAutomation(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		a.Name = *name
	}
	if flowJSON != nil {
		a.FlowJSON = *flowJSON
	}
	a.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

func (s *Store) DeleteAutomation(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&domain.Automation{}, id)
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

//
// Billing
//

func (s *Store) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	if inv.Status == "" {
		inv.Status = domain.InvoicePending
	}
	inv.CreatedAt = time.Now().UTC()
	return wrap(s.db.WithContext(ctx).Create(inv).Error)
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := s.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&inv).Error; err != nil {
		return nil, wrap(err)
	}
	return &inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Invoice
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *Store) MarkInvoicePaid(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	res := s.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("invoice_id = ?", invoiceID).
		Update("status", domain.InvoicePaid)
	if res.Error != nil {
		return nil, wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetInvoice(ctx, invoiceID)
}

func (s *Store) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	return wrap(s.db.WithContext(ctx).Create(sub).Error)
}

func (s *Store) SubscriptionForWorkspace(ctx context.Context, workspace string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := s.db.WithContext(ctx).
		Where("workspace = ?", workspace).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &sub, nil
}

//
// Users & workspaces
//

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	return wrap(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) EnsureWorkspace(ctx context.Context, userID int64, slug string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := s.db.WithContext(ctx).Where("owner_user_id = ?", userID).First(&ws).Error
	if err == nil {
		return &ws, nil
	}
	if werr := wrap(err); werr != store.ErrNotFound {
		return nil, werr
	}
	ws = domain.Workspace{Slug: slug, Name: slug, OwnerUserID: userID, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&ws).Error; err != nil {
		return nil, wrap(err)
	}
	return &ws, nil
}

//
// Send receipts (idempotent outbound sends)
//

func (s *Store) GetSendReceipt(ctx context.Context, userID, key string, now time.Time) (*domain.SendReceipt, error) {
	var r domain.SendReceipt
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now).
		First(&r).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &r, nil
}

func (s *Store) PutSendReceipt(ctx context.Context, r *domain.SendReceipt) error {
	return wrap(s.db.WithContext(ctx).Save(r).Error)
}
