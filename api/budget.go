package api

import (
	"strconv"

	"celengan/middleware"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BudgetHandler monthly budget endpoints
type BudgetHandler struct {
	budgets *service.BudgetService
	reports *service.ReportService
}

// NewBudgetHandler creates the budget handler
func NewBudgetHandler(budgets *service.BudgetService, reports *service.ReportService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, reports: reports}
}

// BudgetRequest set a category budget for a month
type BudgetRequest struct {
	CategoryID string          `json:"category_id" binding:"required"`
	Year       int             `json:"year" binding:"required" example:"2024"`
	Month      int             `json:"month" binding:"required,min=1,max=12" example:"5"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number" example:"1500000"`
}

// List expense categories with budget and spending for a month
// @Summary List budgets
// @Description Every expense category with its budget for the month (0 when unset) and the amount spent
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param year query int false "year, defaults to the current one"
// @Param month query int false "month 1-12, defaults to the current one"
// @Success 200 {object} Response{data=[]service.BudgetLine}
// @Router /api/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	year, month, ok := periodQuery(c, h.reports)
	if !ok {
		return
	}
	lines, err := h.budgets.List(c.Request.Context(), middleware.GetCurrentUserID(c), year, month)
	if err != nil {
		respondError(c, err, "could not load budgets")
		return
	}
	Success(c, lines)
}

// Upsert creates or replaces a budget
// @Summary Set budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "budget"
// @Success 200 {object} Response{data=models.Budget}
// @Failure 400 {object} Response
// @Router /api/budgets [post]
func (h *BudgetHandler) Upsert(c *gin.Context) {
	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	budget, err := h.budgets.Upsert(c.Request.Context(), middleware.GetCurrentUserID(c), service.BudgetCommand{
		CategoryID: req.CategoryID,
		Year:       req.Year,
		Month:      req.Month,
		Amount:     req.Amount,
	})
	if err != nil {
		respondError(c, err, "could not save budget")
		return
	}
	SuccessWithMessage(c, "budget saved", budget)
}

// Delete a budget
// @Summary Delete budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "budget id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	if err := h.budgets.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "could not delete budget")
		return
	}
	SuccessWithMessage(c, "budget deleted", nil)
}

// periodQuery reads ?year=&month=, defaulting to the current month
func periodQuery(c *gin.Context, reports *service.ReportService) (int, int, bool) {
	year, month := reports.CurrentPeriod()
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalidDate(c, "year")
			return 0, 0, false
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalidDate(c, "month")
			return 0, 0, false
		}
		month = n
	}
	return year, month, true
}
