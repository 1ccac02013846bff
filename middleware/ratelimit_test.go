package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(5, 1*time.Minute)

	assert.NotNil(t, rl)
	assert.Equal(t, 5, rl.rate)
	assert.Equal(t, 1*time.Minute, rl.window)
	assert.NotNil(t, rl.visitors)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Limit())
	router.POST("/apply", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	return router
}

func applyFrom(router *gin.Engine, addr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/apply", nil)
	req.RemoteAddr = addr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(NewRateLimiter(5, 1*time.Minute))

	for i := 0; i < 5; i++ {
		w := applyFrom(router, "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(NewRateLimiter(3, 1*time.Minute))

	for i := 0; i < 3; i++ {
		w := applyFrom(router, "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// 4th request should be rate limited
	w := applyFrom(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(NewRateLimiter(2, 1*time.Minute))

	for i := 0; i < 2; i++ {
		w := applyFrom(router, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// A second candidate behind a different IP gets its own budget
	for i := 0; i < 2; i++ {
		w := applyFrom(router, "192.168.1.2:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request from the first IP should be blocked
	w := applyFrom(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(NewRateLimiter(2, 100*time.Millisecond))

	for i := 0; i < 2; i++ {
		w := applyFrom(router, "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := applyFrom(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	time.Sleep(150 * time.Millisecond)

	// Budget comes back after the window passes
	w = applyFrom(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRateLimiters(t *testing.T) {
	limiters := CreateRateLimiters()

	assert.NotNil(t, limiters["submit"])
	assert.NotNil(t, limiters["upload"])
	assert.NotNil(t, limiters["general"])

	// Submissions are throttled hardest, uploads next, reads loosest
	assert.Equal(t, 10, limiters["submit"].rate)
	assert.Equal(t, 20, limiters["upload"].rate)
	assert.Equal(t, 60, limiters["general"].rate)

	for name, rl := range limiters {
		assert.Equal(t, 1*time.Minute, rl.window, "limiter %q window", name)
	}
}
