package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(settings *Settings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(settings))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSHonorsAllowlist(t *testing.T) {
	settings := NewSettings([]string{"http://localhost:3000"}, Limits{})
	router := newCORSRouter(settings)

	w := doRequest(router, http.MethodGet, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = doRequest(router, http.MethodGet, "http://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(router, http.MethodOptions, "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSAllowlistHotReload(t *testing.T) {
	settings := NewSettings([]string{"http://localhost:3000"}, Limits{})
	router := newCORSRouter(settings)

	w := doRequest(router, http.MethodGet, "https://app.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// 重启前更新白名单，已注册的中间件读取新快照
	settings.Update([]string{"https://app.example.com"}, Limits{})

	w = doRequest(router, http.MethodGet, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(router, http.MethodGet, "http://localhost:3000")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterEnforcesLimit(t *testing.T) {
	settings := NewSettings(nil, Limits{MaxRequests: 2, Window: time.Minute})
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(settings))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := doRequest(router, http.MethodGet, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doRequest(router, http.MethodGet, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiterRebuildsAfterUpdate(t *testing.T) {
	settings := NewSettings(nil, Limits{MaxRequests: 1, Window: time.Minute})
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(settings))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(router, http.MethodGet, "").Code)

	// 放宽限额后，旧限流器按新代数重建
	settings.Update(nil, Limits{MaxRequests: 5, Window: time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "").Code)
	}
}

func TestSettingsDefaults(t *testing.T) {
	settings := NewSettings(nil, Limits{})
	snap := settings.load()
	assert.Equal(t, 1000, snap.limits.MaxRequests)
	assert.Equal(t, time.Minute, snap.limits.Window)
}
