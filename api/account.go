package api

import (
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler account endpoints
type AccountHandler struct {
	accounts *service.AccountService
	ledger   *service.LedgerService
}

// NewAccountHandler creates the account handler
func NewAccountHandler(accounts *service.AccountService, ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger}
}

// CreateAccountRequest new account
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,max=100" example:"Rekening BCA"`
	Type           string          `json:"type" binding:"required" example:"BANK"`
	OpeningBalance decimal.Decimal `json:"opening_balance" swaggertype:"number" example:"1500000"`
}

// UpdateAccountRequest editable account fields; the balance is not one of them
type UpdateAccountRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Rekening BCA"`
	Type string `json:"type" binding:"required" example:"BANK"`
}

// List accounts of the current user
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Account}
// @Router /api/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	list, err := h.accounts.List(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "could not load accounts")
		return
	}
	Success(c, list)
}

// Get one account
// @Summary Get account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "account id"
// @Success 200 {object} Response{data=models.Account}
// @Failure 404 {object} Response
// @Router /api/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not load account")
		return
	}
	Success(c, account)
}

// Create an account with an opening balance
// @Summary Create account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "account"
// @Success 201 {object} Response{data=models.Account}
// @Failure 400 {object} Response
// @Router /api/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	account, err := h.accounts.Create(c.Request.Context(), middleware.GetCurrentUserID(c), service.CreateAccountCommand{
		Name:           req.Name,
		Type:           models.AccountType(req.Type),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respondError(c, err, "could not create account")
		return
	}
	Created(c, "account created", account)
}

// Update renames or retypes an account
// @Summary Update account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "account id"
// @Param request body UpdateAccountRequest true "account"
// @Success 200 {object} Response{data=models.Account}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	account, err := h.accounts.Update(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), service.UpdateAccountCommand{
		Name: req.Name,
		Type: models.AccountType(req.Type),
	})
	if err != nil {
		respondError(c, err, "could not update account")
		return
	}
	SuccessWithMessage(c, "account updated", account)
}

// Delete an account that has no ledger entries
// @Summary Delete account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "account id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response "account still has transactions"
// @Router /api/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "could not delete account")
		return
	}
	SuccessWithMessage(c, "account deleted", nil)
}

// Reconcile compares the stored balance with the ledger
// @Summary Reconcile account
// @Description Recomputes the balance from opening balance, transactions and goal contributions
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "account id"
// @Success 200 {object} Response{data=service.Reconciliation}
// @Failure 404 {object} Response
// @Router /api/accounts/{id}/reconcile [get]
func (h *AccountHandler) Reconcile(c *gin.Context) {
	rec, err := h.ledger.Reconcile(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not reconcile account")
		return
	}
	Success(c, rec)
}
