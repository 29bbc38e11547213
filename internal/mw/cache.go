package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"daytrack-backend/internal/model"
	"daytrack-backend/internal/parse"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// KeyFunc returns the cache key for a request, or false to bypass the cache.
type KeyFunc func(c *gin.Context) (string, bool)

// Cache is a middleware for in-memory caching of GET requests.
func Cache(store *cache.Cache, duration time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key, ok := keyFn(c)
		if !ok {
			c.Next()
			return
		}
		if resp, found := store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			response := cachedResponse{
				status: blw.Status(),
				// Make a copy of the header map.
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			store.Set(key, response, duration)
		}
	}
}

// TimelineCache holds rendered timeline days until a slot of that day
// changes or the TTL expires.
type TimelineCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewTimelineCache creates a TimelineCache cleaned up every 2*ttl.
func NewTimelineCache(ttl time.Duration) *TimelineCache {
	return &TimelineCache{store: cache.New(ttl, 2*ttl), ttl: ttl}
}

// Key returns the cache key of the calendar day containing day.
func (tc *TimelineCache) Key(day time.Time) string {
	return "timeline:" + day.Format(parse.DayLayout)
}

// Invalidate drops the cached rendering of day.
func (tc *TimelineCache) Invalidate(day time.Time) {
	tc.store.Delete(tc.Key(day))
}

// OnSlot invalidates the day a created or updated slot belongs to. Slot
// times must already be in the timeline's zone.
func (tc *TimelineCache) OnSlot(slot model.TimeSlot) {
	tc.Invalidate(slot.StartTime)
}

// Middleware caches responses under the key chosen by keyFn.
func (tc *TimelineCache) Middleware(keyFn KeyFunc) gin.HandlerFunc {
	return Cache(tc.store, tc.ttl, keyFn)
}

// ItemCount returns the number of cached days.
func (tc *TimelineCache) ItemCount() int {
	return tc.store.ItemCount()
}
