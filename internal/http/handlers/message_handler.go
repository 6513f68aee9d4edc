package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/http/middleware"
	"github.com/islechat/go-wa-backend/internal/session"
	"github.com/islechat/go-wa-backend/internal/transport"
	"github.com/islechat/go-wa-backend/internal/utils"
)

// maxListLimit caps how many messages one request can pull.
const maxListLimit = 500

// ListMessages returns the stored message history, newest first.
// Query parameters: limit (default 200, capped) and peer (optional filter on
// sender or recipient address).
func (h *Handlers) ListMessages(c *gin.Context) {
	limit := utils.LimitParam(c.Query("limit"), 200, maxListLimit)
	peer := strings.TrimSpace(c.Query("peer"))

	msgs, err := h.messageSvc.GetMessages(c.Request.Context(), limit, peer)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load messages")
		return
	}
	ok(c, http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

// SendRequest is the JSON payload for POST /api/send.
type SendRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// SendMessage dispatches an operator-initiated message over the live
// connection. An Idempotency-Key header makes retries replay the original
// result instead of sending twice. 409 means the session is not connected.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "to and text are required")
		return
	}

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	id, err := h.sendSvc.Send(c.Request.Context(), middleware.UserID(c), req.To, req.Text, idemKey)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotConnected):
		fail(c, http.StatusConflict, ErrCodeNotConnected, "session is not connected")
		return
	case errors.Is(err, transport.ErrDispatch):
		fail(c, http.StatusBadGateway, ErrCodeSendFailed, "message could not be delivered")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "send failed")
		return
	}

	ok(c, http.StatusCreated, gin.H{"id": id, "to": req.To})
}
