package api

import (
	"github.com/gin-gonic/gin"

	"daytrack-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. Every API route shares
// the per-IP limiter set in limiter.
func NewRouter(h *Handler, limiter *mw.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	// Initialize middleware
	rateLimiter := mw.RateLimiter(limiter)
	caching := h.cache.Middleware(h.timelineKey)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/timeline/{date}
		api.GET("/timeline/:date", caching, h.GetTimeline)

		api.GET("/slots", h.ListSlots)
		api.GET("/slots/last", h.GetLastSlot)
		api.POST("/slots", h.StartSlot)
		api.PUT("/slots/:start/category", h.CorrectSlot)

		api.PUT("/location", h.PutLocation)
		api.GET("/guesses/predict", h.Predict)
	}

	return r
}
