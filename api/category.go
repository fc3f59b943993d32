package api

import (
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler category endpoints
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates the category handler
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest create or update payload
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Makanan & Minuman"`
	Type string `json:"type" binding:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
}

// List categories with usage counts
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param type query string false "INCOME or EXPENSE"
// @Success 200 {object} Response{data=[]service.CategoryView}
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context(), middleware.GetCurrentUserID(c), models.TransactionType(c.Query("type")))
	if err != nil {
		respondError(c, err, "could not load categories")
		return
	}
	Success(c, list)
}

// Get one category
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} Response
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.Get(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "could not load category")
		return
	}
	Success(c, category)
}

// Create a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "category"
// @Success 201 {object} Response{data=models.Category}
// @Failure 409 {object} Response "duplicate name"
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.categories.Create(c.Request.Context(), middleware.GetCurrentUserID(c), service.CategoryCommand{
		Name: req.Name,
		Type: models.TransactionType(req.Type),
	})
	if err != nil {
		respondError(c, err, "could not create category")
		return
	}
	Created(c, "category created", category)
}

// Update a category
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Param request body CategoryRequest true "category"
// @Success 200 {object} Response{data=models.Category}
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.categories.Update(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), service.CategoryCommand{
		Name: req.Name,
		Type: models.TransactionType(req.Type),
	})
	if err != nil {
		respondError(c, err, "could not update category")
		return
	}
	SuccessWithMessage(c, "category updated", category)
}

// Delete an unused category
// @Summary Delete category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "category id"
// @Success 200 {object} Response
// @Failure 409 {object} Response "category in use"
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err, "could not delete category")
		return
	}
	SuccessWithMessage(c, "category deleted", nil)
}
