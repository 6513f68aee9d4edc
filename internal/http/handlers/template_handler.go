package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/services"
)

// TemplateRequest is the JSON payload for creating a template.
type TemplateRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Content  string `json:"content" binding:"required"`
}

// TemplateUpdateRequest carries optional fields; absent fields keep their
// stored value.
type TemplateUpdateRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Content  *string `json:"content"`
}

// CreateTemplate stores a new reply template.
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and content are required")
		return
	}
	t, err := h.templateSvc.Create(c.Request.Context(), req.Name, req.Category, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create template")
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTemplates returns stored templates, newest first.
func (h *Handlers) ListTemplates(c *gin.Context) {
	list, err := h.templateSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list templates")
		return
	}
	ok(c, http.StatusOK, gin.H{"templates": list, "count": len(list)})
}

// GetTemplate returns one template by id.
func (h *Handlers) GetTemplate(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	t, err := h.templateSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load template")
		return
	}
	ok(c, http.StatusOK, t)
}

// UpdateTemplate applies a partial update and returns the result.
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	var req TemplateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}
	t, err := h.templateSvc.Update(c.Request.Context(), id, req.Name, req.Category, req.Content)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrTemplateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		return
	case errors.Is(err, services.ErrEmptyName):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update template")
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTemplate removes a template.
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id, terr := pathID(c)
	if terr != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return
	}
	if err := h.templateSvc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete template")
		return
	}
	noContent(c)
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
