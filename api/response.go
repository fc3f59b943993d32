package api

import (
	"errors"
	"log"
	"net/http"

	"celengan/service"

	"github.com/gin-gonic/gin"
)

// Response common response envelope
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"error_code,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 200 with data and a message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created 201 with data
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error error response with a stable code
func Error(c *gin.Context, status int, errorCode, message string) {
	c.JSON(status, Response{
		Code:      status,
		Message:   message,
		ErrorCode: errorCode,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, service.CodeInvalidInput, message)
}

// InternalError 500
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// bindError answers a request that failed DTO binding or validation
func bindError(c *gin.Context, err error) {
	BadRequest(c, SafeErrorMessage(err, "invalid request body"))
}

// statusOf maps a service error kind to its HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes a typed service error as-is; anything else is a
// storage failure and is logged and hidden behind fallback in release mode.
func respondError(c *gin.Context, err error, fallback string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		Error(c, statusOf(err), svcErr.Code, svcErr.Message)
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	InternalError(c, SafeErrorMessage(err, fallback))
}
