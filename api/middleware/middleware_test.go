package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router
}

func do(router *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIPRateLimiter_Burst(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 3, time.Minute)
	defer limiter.StopCleanup()
	router := newEngine(limiter.Middleware())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/ping", nil).Code)
	}
	w := do(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestIPRateLimiter_PerClient(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 1, time.Minute)
	defer limiter.StopCleanup()

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	limiter := NewIPRateLimiter(0, 0, time.Minute)
	defer limiter.StopCleanup()
	router := newEngine(limiter.Middleware())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/ping", nil).Code)
	}
}

func TestIPRateLimiter_EvictStale(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, time.Minute)
	defer limiter.StopCleanup()

	limiter.allow("10.0.0.1")
	limiter.evictStale(time.Now())
	_, ok := limiter.limiterMap.Load("10.0.0.1")
	assert.True(t, ok)

	limiter.evictStale(time.Now().Add(2 * time.Minute))
	_, ok = limiter.limiterMap.Load("10.0.0.1")
	assert.False(t, ok)

	// 重复停止不会 panic
	limiter.StopCleanup()
}

func TestConcurrencyLimiter_RejectsWhenBusy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewConcurrencyLimiter(1)

	entered := make(chan struct{})
	release := make(chan struct{})
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})
	router.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		do(router, http.MethodGet, "/slow", nil)
	}()
	<-entered

	w := do(router, http.MethodGet, "/fast", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/fast", nil).Code)
}

func TestRequestID(t *testing.T) {
	router := newEngine(RequestID())

	t.Run("generates", func(t *testing.T) {
		w := do(router, http.MethodGet, "/ping", nil)
		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("passes through", func(t *testing.T) {
		w := do(router, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"edge-abc_123.4"}})
		assert.Equal(t, "edge-abc_123.4", w.Header().Get(RequestIDHeader))
	})

	invalid := []string{
		"has space",
		"line\nbreak",
		"<script>",
		strings.Repeat("a", maxRequestIDLength+1),
	}
	for _, id := range invalid {
		t.Run("replaces "+id, func(t *testing.T) {
			w := do(router, http.MethodGet, "/ping", http.Header{RequestIDHeader: {id}})
			got := w.Header().Get(RequestIDHeader)
			assert.NotEqual(t, id, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}

func TestRequestID_StoredInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestIDKey))
	})

	w := do(router, http.MethodGet, "/id", http.Header{RequestIDHeader: {"req-1"}})
	assert.Equal(t, "req-1", w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	w := do(newEngine(SecurityHeaders()), http.MethodGet, "/ping", nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
}

func TestPublicCache(t *testing.T) {
	router := newEngine(PublicCache(60))

	assert.Equal(t, "public, max-age=60", do(router, http.MethodGet, "/ping", nil).Header().Get("Cache-Control"))
	assert.Equal(t, "no-store", do(router, http.MethodPost, "/ping", nil).Header().Get("Cache-Control"))
}

func TestMetrics(t *testing.T) {
	ResetMetrics()
	defer ResetMetrics()
	router := newEngine(Metrics())

	do(router, http.MethodGet, "/ping", nil)
	do(router, http.MethodGet, "/ping", nil)
	do(router, http.MethodGet, "/boom", nil)

	m := GetMetrics()
	require.NotNil(t, m)
	assert.Equal(t, int64(3), m["request_count"])
	assert.Equal(t, int64(1), m["error_count"])
}
