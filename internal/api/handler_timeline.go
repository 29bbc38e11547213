package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daytrack-backend/internal/aggregate"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/parse"
)

type timelineResponse struct {
	Date  string           `json:"date"`
	Items []aggregate.Item `json:"items"`
}

// GetTimeline handles GET /api/timeline/:date.
func (h *Handler) GetTimeline(c *gin.Context) {
	day, err := h.day(c.Param("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := aggregate.ForDay(c.Request.Context(), h.timeline, day)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []aggregate.Item{}
	}
	c.JSON(http.StatusOK, timelineResponse{Date: day.Format(parse.DayLayout), Items: items})
}

// timelineKey caches past days only; today's durations grow with the clock.
func (h *Handler) timelineKey(c *gin.Context) (string, bool) {
	day, err := h.day(c.Param("date"))
	if err != nil || h.timeline.IsToday(day) {
		return "", false
	}
	return h.cache.Key(day), true
}

// ListSlots handles GET /api/slots?from=&to=. Both bounds are days and
// inclusive; they default to today.
func (h *Handler) ListSlots(c *gin.Context) {
	from, err := h.day(c.DefaultQuery("from", "today"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to := from
	if raw := c.Query("to"); raw != "" {
		if to, err = h.day(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if to.Before(from) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	slots, err := h.timeline.QueryRange(c.Request.Context(), from, geo.StartOfNextDay(to))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GetLastSlot handles GET /api/slots/last.
func (h *Handler) GetLastSlot(c *gin.Context) {
	last, err := h.timeline.MostRecent(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if last == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no time slots yet"})
		return
	}
	c.JSON(http.StatusOK, last)
}

func (h *Handler) day(raw string) (time.Time, error) {
	return parse.Day(raw, h.timeline.Now(), h.timeline.Location())
}
