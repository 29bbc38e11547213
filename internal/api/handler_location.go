package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/parse"
)

type putLocationRequest struct {
	Latitude  *float64   `json:"latitude" binding:"required"`
	Longitude *float64   `json:"longitude" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
	// Arrived marks a detected change of place that starts a new slot.
	Arrived bool `json:"arrived"`
}

// PutLocation handles PUT /api/location.
func (h *Handler) PutLocation(c *gin.Context) {
	var req putLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	fix := geo.Fix{Coordinate: geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}}
	if !fix.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "coordinate out of range"})
		return
	}
	fix.Timestamp = h.timeline.Now()
	if req.Timestamp != nil {
		fix.Timestamp = *req.Timestamp
	}

	h.location.Update(fix)
	if !req.Arrived {
		c.Status(http.StatusNoContent)
		return
	}

	slot, err := h.tracker.StartFromLocation(c.Request.Context(), fix.Timestamp, fix)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

type predictResponse struct {
	Category *string `json:"category"`
	GuessID  *string `json:"guessId,omitempty"`
}

// Predict handles GET /api/guesses/predict?lat=&lng=.
func (h *Handler) Predict(c *gin.Context) {
	coord, err := parse.Coordinate(c.Query("lat"), c.Query("lng"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var resp predictResponse
	if g := h.engine.Guess(c.Request.Context(), geo.Fix{Coordinate: coord, Timestamp: h.timeline.Now()}); g != nil {
		category := string(g.Category)
		resp.Category = &category
		resp.GuessID = &g.ID
	}
	c.JSON(http.StatusOK, resp)
}
