package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/mw"
	"daytrack-backend/internal/smartguess"
	"daytrack-backend/internal/timeline"
	"daytrack-backend/internal/tracker"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	timeline *timeline.Service
	engine   *smartguess.Engine
	tracker  *tracker.Tracker
	location *geo.LastKnown
	cache    *mw.TimelineCache
}

// NewHandler creates a new API handler. The timeline cache is subscribed
// to slot events so that changed days are rendered again.
func NewHandler(tl *timeline.Service, engine *smartguess.Engine, tr *tracker.Tracker, location *geo.LastKnown, cache *mw.TimelineCache) *Handler {
	tl.OnSlotCreated(cache.OnSlot)
	tl.OnSlotUpdated(cache.OnSlot)
	return &Handler{
		timeline: tl,
		engine:   engine,
		tracker:  tr,
		location: location,
		cache:    cache,
	}
}

// writeError maps timeline errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timeline.ErrInvalidOrdering):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, timeline.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "time slot not found"})
	default:
		log.Printf("api: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
