package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daytrack-backend/internal/parse"
)

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// StartSlot handles POST /api/slots: the user starts an activity now.
func (h *Handler) StartSlot(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	category, err := parse.Category(req.Category)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.tracker.StartActivity(c.Request.Context(), category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// CorrectSlot handles PUT /api/slots/:start/category.
func (h *Handler) CorrectSlot(c *gin.Context) {
	start, err := parse.Instant(c.Param("start"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	category, err := parse.Category(req.Category)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	slots, err := h.timeline.QueryRange(ctx, start, start.Add(time.Nanosecond))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(slots) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "time slot not found"})
		return
	}

	corrected, err := h.tracker.Correct(ctx, slots[:1], category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, corrected[0])
}
