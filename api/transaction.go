package api

import (
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler ledger entry endpoints
type TransactionHandler struct {
	ledger *service.LedgerService
}

// NewTransactionHandler creates the transaction handler
func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// CreateTransactionRequest new ledger entry
type CreateTransactionRequest struct {
	AccountID       string          `json:"account_id" binding:"required" example:"3f1c..."`
	CategoryID      string          `json:"category_id" binding:"required" example:"9a2b..."`
	Type            string          `json:"type" binding:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"number" example:"50000"`
	Description     string          `json:"description" binding:"max=255" example:"Makan siang"`
	TransactionDate string          `json:"transaction_date" binding:"required" example:"2024-05-10"`
}

// UpdateTransactionRequest partial edit; omitted fields stay unchanged
type UpdateTransactionRequest struct {
	AccountID       *string          `json:"account_id"`
	CategoryID      *string          `json:"category_id"`
	Type            *string          `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Amount          *decimal.Decimal `json:"amount" swaggertype:"number"`
	Description     *string          `json:"description" binding:"omitempty,max=255"`
	TransactionDate *string          `json:"transaction_date" example:"2024-05-10"`
}

// TransactionListRequest list filters
type TransactionListRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" example:"10"`
	AccountID  string `form:"account_id"`
	CategoryID string `form:"category_id"`
	Type       string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	StartDate  string `form:"start_date" example:"2024-05-01"`
	EndDate    string `form:"end_date" example:"2024-05-31"`
}

// Create posts a transaction and updates the account balance
// @Summary Create transaction
// @Description Records the entry and applies it to the account balance in one database transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "transaction"
// @Success 201 {object} Response{data=models.Transaction}
// @Failure 400 {object} Response
// @Failure 404 {object} Response "account or category not found"
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	date, err := parseDate(req.TransactionDate)
	if err != nil {
		invalidDate(c, "transaction_date")
		return
	}

	entry, err := h.ledger.Post(c.Request.Context(), middleware.GetCurrentUserID(c), service.PostCommand{
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		Type:            models.TransactionType(req.Type),
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: date,
	})
	if err != nil {
		respondError(c, err, "could not create transaction")
		return
	}
	Created(c, "transaction created", entry)
}

// List pages through transactions, newest first
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Param account_id query string false "account filter"
// @Param category_id query string false "category filter"
// @Param type query string false "INCOME or EXPENSE"
// @Param start_date query string false "from (2024-05-01)"
// @Param end_date query string false "to (2024-05-31)"
// @Success 200 {object} Response{data=service.TransactionPage}
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	from, err := parseOptionalDate(req.StartDate)
	if err != nil {
		invalidDate(c, "start_date")
		return
	}
	to, err := parseOptionalDate(req.EndDate)
	if err != nil {
		invalidDate(c, "end_date")
		return
	}

	page, err := h.ledger.ListTransactions(c.Request.Context(), middleware.GetCurrentUserID(c), service.TransactionFilter{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Type:       models.TransactionType(req.Type),
		From:       from,
		To:         to,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		respondError(c, err, "could not load transactions")
		return
	}
	Success(c, page)
}

// Get one transaction
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "transaction id"
// @Success 200 {object} Response{data=models.Transaction}
// @Failure 404 {object} Response
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	entry, err := h.ledger.GetTransaction(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not load transaction")
		return
	}
	Success(c, entry)
}

// Update edits a transaction, moving its balance effect when needed
// @Summary Update transaction
// @Description Changing amount, type or account reverses the old effect and applies the new one atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "transaction id"
// @Param request body UpdateTransactionRequest true "fields to change"
// @Success 200 {object} Response{data=models.Transaction}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cmd := service.UpdateCommand{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Type != nil {
		typ := models.TransactionType(*req.Type)
		cmd.Type = &typ
	}
	if req.TransactionDate != nil {
		date, err := parseDate(*req.TransactionDate)
		if err != nil {
			invalidDate(c, "transaction_date")
			return
		}
		cmd.TransactionDate = &date
	}

	entry, err := h.ledger.UpdateTransaction(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), cmd)
	if err != nil {
		respondError(c, err, "could not update transaction")
		return
	}
	SuccessWithMessage(c, "transaction updated", entry)
}

// Delete reverses a transaction and removes it
// @Summary Delete transaction
// @Description Undoes the balance effect and deletes the entry; returns the updated account
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "transaction id"
// @Success 200 {object} Response{data=models.Account}
// @Failure 404 {object} Response
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	account, err := h.ledger.Reverse(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not delete transaction")
		return
	}
	SuccessWithMessage(c, "transaction deleted", account)
}
