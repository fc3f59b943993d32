package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"celengan/database"
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var ctxBG = context.Background()

var testNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

// setupMockDB gorm on top of sqlmock, for handlers whose SQL is worth pinning
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newBareRouter() *gin.Engine {
	return gin.New()
}

// setUserIDMiddleware stands in for JWTAuth
func setUserIDMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

// testApp a seeded user behind a router with no routes yet
type testApp struct {
	db         *gorm.DB
	router     *gin.Engine
	user       models.User
	ledger     *service.LedgerService
	reports    *service.ReportService
	accounts   map[string]models.Account
	categories map[string]models.Category
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := newTestDB(t)
	app := &testApp{
		db:         db,
		accounts:   map[string]models.Account{},
		categories: map[string]models.Category{},
	}

	app.user = models.User{Name: "Budi", Email: "budi@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&app.user).Error)
	accounts := models.DefaultAccounts(app.user.ID)
	require.NoError(t, db.Create(&accounts).Error)
	for _, a := range accounts {
		app.accounts[a.Name] = a
	}
	categories := models.DefaultCategories(app.user.ID)
	require.NoError(t, db.Create(&categories).Error)
	for _, c := range categories {
		app.categories[c.Name] = c
	}

	app.ledger = service.NewLedgerService(db, service.LedgerOptions{Now: func() time.Time { return testNow }})
	app.reports = service.NewReportService(db, time.UTC)
	app.router = gin.New()
	app.router.Use(setUserIDMiddleware(app.user.ID))
	return app
}

func (a *testApp) category(t *testing.T, typ models.TransactionType) models.Category {
	t.Helper()
	for _, c := range a.categories {
		if c.Type == typ {
			return c
		}
	}
	t.Fatalf("no %s category seeded", typ)
	return models.Category{}
}

func (a *testApp) balance(t *testing.T, accountID string) string {
	t.Helper()
	var account models.Account
	require.NoError(t, a.db.First(&account, "id = ?", accountID).Error)
	return account.Balance.StringFixed(2)
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func performJSONWithToken(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
