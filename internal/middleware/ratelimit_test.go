package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRejectsOverLimitRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, do().Code)
	require.Equal(t, http.StatusOK, do().Code)

	w := do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var env struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", env.Error.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(0, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
}
