package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"celengan/config"
	"celengan/database"
	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code      int             `json:"code"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func setup(t *testing.T, cronSecret string) *client {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: "router-secret", CookieName: "celengan_session", ExpireTime: time.Hour},
		Cron:   config.CronConfig{Secret: cronSecret},
		App:    config.AppConfig{Location: time.UTC},
	}
	config.GlobalConfig = cfg
	t.Cleanup(func() { config.GlobalConfig = nil })
	middleware.InitJWT(cfg)

	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	ledger := service.NewLedgerService(db, service.LedgerOptions{Location: time.UTC})
	return &client{t: t, engine: SetupRouter(cfg, db, ledger)}
}

func TestRouter_EndToEnd(t *testing.T) {
	c := setup(t, "s3cret")

	w, _ := c.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.do(http.MethodGet, "/api/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Budi", "email": "budi@example.com", "password": "rahasia123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "budi@example.com", "password": "rahasia123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	c.token = login.Token

	_, env = c.do(http.MethodGet, "/api/accounts", nil, nil)
	var accounts []models.Account
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 3)
	account := accounts[0]

	_, env = c.do(http.MethodGet, "/api/categories?type=EXPENSE", nil, nil)
	var categories []service.CategoryView
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.NotEmpty(t, categories)

	today := time.Now().UTC().Format("2006-01-02")
	w, env = c.do(http.MethodPost, "/api/transactions", map[string]interface{}{
		"account_id": account.ID, "category_id": categories[0].ID, "type": "EXPENSE",
		"amount": 50000, "transaction_date": today,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry models.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &entry))

	w, _ = c.do(http.MethodDelete, "/api/accounts/"+account.ID, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = c.do(http.MethodDelete, "/api/transactions/"+entry.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after models.Account
	require.NoError(t, json.Unmarshal(env.Data, &after))
	assert.True(t, after.Balance.IsZero())

	w, _ = c.do(http.MethodPost, "/api/recurring", map[string]interface{}{
		"account_id": account.ID, "category_id": categories[0].ID, "type": "EXPENSE",
		"amount": 1000, "frequency": "DAILY", "start_date": today,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c.token = ""
	w, _ = c.do(http.MethodPost, "/api/cron/recurring", nil, map[string]string{"X-Cron-Secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = c.do(http.MethodPost, "/api/cron/recurring", nil, map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sweep service.SweepResult
	require.NoError(t, json.Unmarshal(env.Data, &sweep))
	assert.Equal(t, 1, sweep.Processed)
	assert.Equal(t, today, sweep.Date)

	c.token = login.Token
	_, env = c.do(http.MethodGet, fmt.Sprintf("/api/accounts/%s/reconcile", account.ID), nil, nil)
	var rec service.Reconciliation
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.True(t, rec.Consistent)
	assert.Equal(t, "-1000", rec.Balance.String())
}

func TestRouter_CronDisabledWithoutSecret(t *testing.T) {
	c := setup(t, "")
	w, env := c.do(http.MethodPost, "/api/cron/recurring", nil, map[string]string{"X-Cron-Secret": ""})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "CRON_DISABLED", env.ErrorCode)
}

func TestRouter_CORSPreflight(t *testing.T) {
	c := setup(t, "")
	w, _ := c.do(http.MethodOptions, "/api/accounts", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
