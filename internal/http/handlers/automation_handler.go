package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/services"
)

// AutomationRequest is the JSON payload for creating an automation. Flow is
// stored verbatim after JSON validation; nothing executes it server-side.
type AutomationRequest struct {
	Name string `json:"name" binding:"required"`
	Flow string `json:"flow"`
}

// AutomationUpdateRequest carries optional fields for a partial update.
type AutomationUpdateRequest struct {
	Name *string `json:"name"`
	Flow *string `json:"flow"`
}

// CreateAutomation stores a new automation flow.
func (h *Handlers) CreateAutomation(c *gin.Context) {
	var req AutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name is required")
		return
	}
	a, err := h.autoSvc.Create(c.Request.Context(), req.Name, req.Flow)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmptyName), errors.Is(err, services.ErrInvalidFlow):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create automation")
		return
	}
	ok(c, http.StatusCreated, a)
}

// ListAutomations returns stored automations, newest first.
func (h *Handlers) ListAutomations(c *gin.Context) {
	list, err := h.autoSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list automations")
		return
	}
	ok(c, http.StatusOK, gin.H{"automations": list, "count": len(list)})
}

// GetAutomation returns one automation by id.
func (h *Handlers) GetAutomation(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	a, err := h.autoSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAutomationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "automation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load automation")
		return
	}
	ok(c, http.StatusOK, a)
}

// UpdateAutomation applies a partial update and returns the result.
func (h *Handlers) UpdateAutomation(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	var req AutomationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}
	a, err := h.autoSvc.Update(c.Request.Context(), id, req.Name, req.Flow)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAutomationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "automation not found")
		return
	case errors.Is(err, services.ErrEmptyName), errors.Is(err, services.ErrInvalidFlow):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update automation")
		return
	}
	ok(c, http.StatusOK, a)
}

// DeleteAutomation removes an automation.
func (h *Handlers) DeleteAutomation(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	if err := h.autoSvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrAutomationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "automation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete automation")
		return
	}
	noContent(c)
}
