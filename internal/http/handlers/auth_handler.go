package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/services"
)

// LoginRequest is the JSON payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the email/password pair. Unknown emails register a new
// account and workspace; the response carries the bearer token either way.
// A new account answers 201, an existing one 200.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	res, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeLoginFailed, "invalid credentials")
		return
	case errors.Is(err, services.ErrEmptyEmail), errors.Is(err, services.ErrEmptyPassword):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	ok(c, status, res)
}
