package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyticsOverview returns message totals, the per-day series for the
// trailing window, and the busiest peers.
func (h *Handlers) AnalyticsOverview(c *gin.Context) {
	ov, err := h.analyticsSvc.Overview(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load analytics")
		return
	}
	ok(c, http.StatusOK, ov)
}
