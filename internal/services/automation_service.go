// Package services – AutomationService
//
// Automations are stored flow definitions authored in the dashboard builder.
// The flow body is validated as JSON and persisted verbatim; nothing in this
// server executes it.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// ErrInvalidFlow is returned when a flow body is not valid JSON.
var ErrInvalidFlow = errors.New("flow must be valid JSON")

// AutomationService manages saved automation flows.
type AutomationService struct {
	Store store.AutomationStore

	// MaxList caps list responses.
	MaxList int
}

// NewAutomationService constructs an AutomationService with default limits.
func NewAutomationService(st store.AutomationStore) *AutomationService {
	return &AutomationService{Store: st, MaxList: 200}
}

// Create stores a new automation. An empty flow defaults to an empty object.
func (s *AutomationService) Create(ctx context.Context, name, flowJSON string) (*domain.Automation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	flowJSON, err := normalizeFlow(flowJSON)
	if err != nil {
		return nil, err
	}
	a := &domain.Automation{Name: name, FlowJSON: flowJSON}
	if err := s.Store.CreateAutomation(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns automations, newest first.
func (s *AutomationService) List(ctx context.Context) ([]domain.Automation, error) {
	return s.Store.ListAutomations(ctx, s.MaxList)
}

// Get fetches one automation by id.
func (s *AutomationService) Get(ctx context.Context, id int64) (*domain.Automation, error) {
	a, err := s.Store.GetAutomation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAutomationNotFound
	}
	return a, err
}

// Update applies the non-nil fields and returns the updated automation.
func (s *AutomationService) Update(ctx context.Context, id int64, name, flowJSON *string) (*domain.Automation, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrEmptyName
		}
		name = &trimmed
	}
	if flowJSON != nil {
		normalized, err := normalizeFlow(*flowJSON)
		if err != nil {
			return nil, err
		}
		flowJSON = &normalized
	}
	a, err := s.Store.UpdateAutomation(ctx, id, name, flowJSON)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAutomationNotFound
	}
	return a, err
}

// Delete removes the automation.
func (s *AutomationService) Delete(ctx context.Context, id int64) error {
	err := s.Store.DeleteAutomation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAutomationNotFound
	}
	return err
}

func normalizeFlow(flow string) (string, error) {
	flow = strings.TrimSpace(flow)
	if flow == "" {
		return "{}", nil
	}
	if !json.Valid([]byte(flow)) {
		return "", ErrInvalidFlow
	}
	return flow, nil
}
