// Package services – TemplateService
//
// Templates are short reusable reply snippets managed from the dashboard.
// The service trims and validates input; persistence and not-found mapping
// live in the store.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// TemplateService manages reply templates.
type TemplateService struct {
	Store store.TemplateStore

	// MaxList caps list responses.
	MaxList int
}

// NewTemplateService constructs a TemplateService with default limits.
func NewTemplateService(st store.TemplateStore) *TemplateService {
	return &TemplateService{Store: st, MaxList: 200}
}

// Create stores a new template. Name and content are required.
func (s *TemplateService) Create(ctx context.Context, name, category, content string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	t := &domain.Template{
		Name:     name,
		Category: strings.TrimSpace(category),
		Content:  content,
	}
	if err := s.Store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns templates, newest first.
func (s *TemplateService) List(ctx context.Context) ([]domain.Template, error) {
	return s.Store.ListTemplates(ctx, s.MaxList)
}

// Get fetches one template by id.
func (s *TemplateService) Get(ctx context.Context, id int64) (*domain.Template, error) {
	t, err := s.Store.GetTemplate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// Update applies the non-nil fields to the template and returns the result.
func (s *TemplateService) Update(ctx context.Context, id int64, name, category, content *string) (*domain.Template, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrEmptyName
		}
		name = &trimmed
	}
	t, err := s.Store.UpdateTemplate(ctx, id, name, category, content)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// Delete removes the template.
func (s *TemplateService) Delete(ctx context.Context, id int64) error {
	err := s.Store.DeleteTemplate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}
