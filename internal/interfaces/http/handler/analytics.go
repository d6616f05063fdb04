package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/application/analytics"
)

// SummaryProvider builds the dashboard summary
type SummaryProvider interface {
	Summary(ctx context.Context, filter analytics.SummaryFilter) (*analytics.SummaryResponse, error)
}

// AnalyticsHandler serves pipeline analytics
type AnalyticsHandler struct {
	BaseHandler
	analytics SummaryProvider
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics SummaryProvider) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @ID           getAnalyticsSummary
// @Summary      Pipeline summary
// @Description  Business counts by island and industry, prospect pipeline totals and recent collection runs
// @Tags         analytics
// @Produce      json
// @Param        recent_runs  query  int  false  "Recent runs to include"  default(5) maximum(50)
// @Success      200  {object}  APIResponse[analytics.SummaryResponse]
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var filter analytics.SummaryFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	summary, err := h.analytics.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
