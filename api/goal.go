package api

import (
	"celengan/middleware"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GoalHandler savings goal endpoints
type GoalHandler struct {
	goals *service.GoalService
}

// NewGoalHandler creates the goal handler
func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GoalRequest create or update payload
type GoalRequest struct {
	Name         string          `json:"name" binding:"required,max=100" example:"Dana Darurat"`
	TargetAmount decimal.Decimal `json:"target_amount" swaggertype:"number" example:"10000000"`
	TargetDate   string          `json:"target_date" example:"2025-12-31"`
}

// AddFundsRequest transfer from an account into a goal
type AddFundsRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"number" example:"250000"`
}

func (r GoalRequest) command() (service.GoalCommand, error) {
	date, err := parseOptionalDate(r.TargetDate)
	if err != nil {
		return service.GoalCommand{}, err
	}
	return service.GoalCommand{Name: r.Name, TargetAmount: r.TargetAmount, TargetDate: date}, nil
}

// List goals with progress plus financial tips
// @Summary List goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.GoalOverview}
// @Router /api/goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	overview, err := h.goals.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "could not load goals")
		return
	}
	Success(c, overview)
}

// Create a goal
// @Summary Create goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalRequest true "goal"
// @Success 201 {object} Response{data=models.Goal}
// @Failure 400 {object} Response
// @Router /api/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cmd, err := req.command()
	if err != nil {
		invalidDate(c, "target_date")
		return
	}
	goal, err := h.goals.Create(c.Request.Context(), middleware.GetCurrentUserID(c), cmd)
	if err != nil {
		respondError(c, err, "could not create goal")
		return
	}
	Created(c, "goal created", goal)
}

// Update a goal's name, target amount or date
// @Summary Update goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "goal id"
// @Param request body GoalRequest true "goal"
// @Success 200 {object} Response{data=models.Goal}
// @Failure 404 {object} Response
// @Router /api/goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cmd, err := req.command()
	if err != nil {
		invalidDate(c, "target_date")
		return
	}
	goal, err := h.goals.Update(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err, "could not update goal")
		return
	}
	SuccessWithMessage(c, "goal updated", goal)
}

// Delete a goal
// @Summary Delete goal
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Param id path string true "goal id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	if err := h.goals.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "could not delete goal")
		return
	}
	SuccessWithMessage(c, "goal deleted", nil)
}

// AddFunds moves money from an account into the goal
// @Summary Add funds to goal
// @Description Debits the account and credits the goal atomically
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "goal id"
// @Param request body AddFundsRequest true "transfer"
// @Success 200 {object} Response{data=service.FundingResult}
// @Failure 400 {object} Response "INVALID_AMOUNT"
// @Failure 404 {object} Response "GOAL_NOT_FOUND or ACCOUNT_NOT_FOUND"
// @Failure 409 {object} Response "INSUFFICIENT_FUNDS"
// @Router /api/goals/{id}/add-funds [post]
func (h *GoalHandler) AddFunds(c *gin.Context) {
	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.goals.AddFunds(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), service.AddFundsCommand{
		AccountID: req.AccountID,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err, "could not add funds")
		return
	}
	SuccessWithMessage(c, "funds added", result)
}
