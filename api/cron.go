package api

import (
	"celengan/service"

	"github.com/gin-gonic/gin"
)

// CronHandler endpoints for the external scheduler
type CronHandler struct {
	ledger *service.LedgerService
}

// NewCronHandler creates the cron handler
func NewCronHandler(ledger *service.LedgerService) *CronHandler {
	return &CronHandler{ledger: ledger}
}

// RunRecurring posts every recurring transaction that is due today
// @Summary Run recurring sweep
// @Description Materializes due recurring templates. Safe to call more than once a day.
// @Tags cron
// @Produce json
// @Param X-Cron-Secret header string true "shared cron secret"
// @Success 200 {object} Response{data=service.SweepResult}
// @Failure 401 {object} Response
// @Failure 503 {object} Response "CRON_DISABLED"
// @Router /api/cron/recurring [post]
func (h *CronHandler) RunRecurring(c *gin.Context) {
	result, err := h.ledger.AdvanceDueRecurring(c.Request.Context())
	if err != nil {
		respondError(c, err, "recurring sweep failed")
		return
	}
	Success(c, result)
}
