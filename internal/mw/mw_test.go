package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"daytrack-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func requestURIKey(c *gin.Context) (string, bool) {
	return c.Request.RequestURI, true
}

func TestCache(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/items/:id", Cache(cache.New(time.Minute, time.Minute), time.Minute, requestURIKey), func(c *gin.Context) {
		calls++
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Header("X-Calls", "counted")
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := get(r, "/items/1")
	second := get(r, "/items/1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "counted", second.Header().Get("X-Calls"))
	assert.Equal(t, 1, calls)

	get(r, "/items/missing")
	get(r, "/items/missing")
	assert.Equal(t, 3, calls, "errors are not cached")
}

func TestTimelineCache_Invalidate(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	tc := NewTimelineCache(time.Minute)

	calls := 0
	r := gin.New()
	r.GET("/timeline/:date", tc.Middleware(func(c *gin.Context) (string, bool) {
		if c.Param("date") == "today" {
			return "", false
		}
		return tc.Key(day), true
	}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	get(r, "/timeline/2026-10-18")
	get(r, "/timeline/2026-10-18")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, tc.ItemCount())

	// A slot from another day leaves the entry alone.
	tc.OnSlot(model.TimeSlot{StartTime: day.AddDate(0, 0, 1)})
	get(r, "/timeline/2026-10-18")
	assert.Equal(t, 1, calls)

	tc.OnSlot(model.TimeSlot{StartTime: day.Add(9 * time.Hour)})
	assert.Equal(t, 0, tc.ItemCount())
	get(r, "/timeline/2026-10-18")
	assert.Equal(t, 2, calls)

	get(r, "/timeline/today")
	get(r, "/timeline/today")
	assert.Equal(t, 4, calls, "bypassed keys are never cached")
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewIPRateLimiter(rate.Limit(1), 2)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	limited := get(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	assert.True(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.False(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.True(t, limiter.GetLimiter("10.0.0.2").Allow())
}

func TestIPRateLimiter_Prune(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.GetLimiter("10.0.0.1")
	assert.Equal(t, 0, limiter.Prune(time.Hour))
	assert.Equal(t, 1, limiter.Prune(-time.Second))
}

func TestIPRateLimiter_PruneEvery(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.GetLimiter("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		limiter.PruneEvery(ctx, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		return len(limiter.ips) == 0
	}, time.Second, 5*time.Millisecond, "idle clients are forgotten")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PruneEvery did not stop after cancel")
	}
}
