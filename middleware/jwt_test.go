package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"celengan/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initJWTTestConfig() {
	InitJWT(&config.Config{
		JWT: config.JWTConfig{Secret: "test-jwt-secret-key", CookieName: "celengan_session"},
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	initJWTTestConfig()

	token, err := GenerateToken("user-1", "budi@example.com", 24*time.Hour)
	require.NoError(t, err)
	assert.Greater(t, len(token), 20)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "budi@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	initJWTTestConfig()

	_, err := ParseToken("")
	assert.Error(t, err)
	_, err = ParseToken("not.a.valid.jwt")
	assert.Error(t, err)

	expired, err := GenerateToken("user-1", "budi@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	token, err := GenerateToken("user-1", "budi@example.com", time.Hour)
	require.NoError(t, err)
	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "another-secret"}})
	_, err = ParseToken(token)
	assert.Error(t, err, "signature from another secret")
}

func TestJWTAuth(t *testing.T) {
	initJWTTestConfig()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, "id:%s", GetCurrentUserID(c))
	})

	do := func(setup func(r *http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		setup(req)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(func(r *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = do(func(r *http.Request) { r.Header.Set("Authorization", "Basic xyz") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := GenerateToken("user-42", "x@example.com", time.Hour)
	require.NoError(t, err)

	w = do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "id:user-42", w.Body.String())

	w = do(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName(), Value: token}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "id:user-42", w.Body.String())

	w = do(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName(), Value: "garbage"}) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetCurrentUserID(c))

	c.Set(ContextUserID, "user-99")
	assert.Equal(t, "user-99", GetCurrentUserID(c))
}
