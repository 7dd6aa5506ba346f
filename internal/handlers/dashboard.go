package handlers

import (
	"net/http"

	"paylot-backend/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// Dashboard returns aggregate lead metrics. A missing store is not an error.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := dashboard.Compute(ctx, h.querier(), h.now())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute dashboard")
		writeError(c, http.StatusInternalServerError, dashboard.ErrAggregationFailed.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}
