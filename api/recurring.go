package api

import (
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecurringHandler recurring template endpoints
type RecurringHandler struct {
	recurring *service.RecurringService
}

// NewRecurringHandler creates the recurring handler
func NewRecurringHandler(recurring *service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurring: recurring}
}

// CreateRecurringRequest new template
type CreateRecurringRequest struct {
	AccountID   string          `json:"account_id" binding:"required"`
	CategoryID  string          `json:"category_id" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"150000"`
	Description string          `json:"description" binding:"max=200" example:"Internet"`
	Frequency   string          `json:"frequency" binding:"required,oneof=DAILY WEEKLY MONTHLY" example:"MONTHLY"`
	StartDate   string          `json:"start_date" binding:"required" example:"2024-05-25"`
	EndDate     string          `json:"end_date" example:"2025-05-25"`
}

// List templates, soonest first
// @Summary List recurring transactions
// @Tags recurring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.RecurringTransaction}
// @Router /api/recurring [get]
func (h *RecurringHandler) List(c *gin.Context) {
	list, err := h.recurring.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "could not load recurring transactions")
		return
	}
	Success(c, list)
}

// Create a template; its first occurrence is the start date
// @Summary Create recurring transaction
// @Tags recurring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecurringRequest true "template"
// @Success 201 {object} Response{data=models.RecurringTransaction}
// @Failure 400 {object} Response
// @Router /api/recurring [post]
func (h *RecurringHandler) Create(c *gin.Context) {
	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		invalidDate(c, "start_date")
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		invalidDate(c, "end_date")
		return
	}

	r, err := h.recurring.Create(c.Request.Context(), middleware.GetCurrentUserID(c), service.CreateRecurringCommand{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		Frequency:   models.Frequency(req.Frequency),
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		respondError(c, err, "could not create recurring transaction")
		return
	}
	Created(c, "recurring transaction created", r)
}

// Delete a template
// @Summary Delete recurring transaction
// @Tags recurring
// @Produce json
// @Security BearerAuth
// @Param id path string true "template id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/recurring/{id} [delete]
func (h *RecurringHandler) Delete(c *gin.Context) {
	if err := h.recurring.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "could not delete recurring transaction")
		return
	}
	SuccessWithMessage(c, "recurring transaction deleted", nil)
}
