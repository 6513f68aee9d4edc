package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionStatus reports the transport connection state. While the account is
// unpaired the payload carries the pairing code to show in the dashboard.
func (h *Handlers) SessionStatus(c *gin.Context) {
	ok(c, http.StatusOK, h.sessionSvc.Status())
}
