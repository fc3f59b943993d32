package api

import (
	"fmt"
	"net/http"
	"time"

	"celengan/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD calendar date
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// parseOptionalDate returns nil for an empty value
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func invalidDate(c *gin.Context, field string) {
	Error(c, http.StatusBadRequest, service.CodeInvalidDate, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
}
