package middleware

import (
	"bitwise74/usercontent-api/internal/metrics"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Body.String(), 10)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", BodySizeLimiter(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Error(err)
			return
		}

		c.Status(http.StatusOK)
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way too large")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), bodyTooLarge)
	})

	t.Run("streamed too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("way too large")))
		req.ContentLength = -1

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), bodyTooLarge)
	})
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiterMiddleware(t.Context(), RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVisitorCleanup(t *testing.T) {
	v := &visitors{seen: map[string]*visitor{}, rps: 1, burst: 1}
	v.get("10.0.0.1")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	go func() {
		v.cleanup(ctx, time.Millisecond, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		return len(v.seen) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup kept running after its context was cancelled")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/metrics-probe/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/metrics-probe/:id", "418"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics-probe/42", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	after := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/metrics-probe/:id", "418"))
	assert.Equal(t, before+1, after)
}
