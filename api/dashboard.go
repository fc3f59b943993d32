package api

import (
	"celengan/middleware"
	"celengan/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler summary and chart endpoints
type DashboardHandler struct {
	reports *service.ReportService
}

// NewDashboardHandler creates the dashboard handler
func NewDashboardHandler(reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// Summary monthly income, expense and total balance
// @Summary Monthly summary
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "year, defaults to the current one"
// @Param month query int false "month 1-12, defaults to the current one"
// @Success 200 {object} Response{data=service.Summary}
// @Failure 400 {object} Response
// @Router /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	year, month, ok := periodQuery(c, h.reports)
	if !ok {
		return
	}
	summary, err := h.reports.Summary(c.Request.Context(), middleware.GetCurrentUserID(c), year, month)
	if err != nil {
		respondError(c, err, "could not load summary")
		return
	}
	Success(c, summary)
}

// Charts expense pie for the current month and a six month bar series
// @Summary Dashboard charts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Charts}
// @Router /api/charts [get]
func (h *DashboardHandler) Charts(c *gin.Context) {
	charts, err := h.reports.Charts(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "could not load charts")
		return
	}
	Success(c, charts)
}
