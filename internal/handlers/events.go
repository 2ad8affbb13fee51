package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"ticketon/internal/models"

	"github.com/gin-gonic/gin"
)

// Events handlers

// CreateEvent - POST /api/events (privileged)
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to create event", "error", err)
		respondError(c, err)
		return
	}

	if h.valkeyClient != nil {
		h.valkeyClient.InvalidateEventsList(c.Request.Context())
	}

	c.JSON(http.StatusCreated, response)
}

// ListEvents - GET /api/events
func (h *Handlers) ListEvents(c *gin.Context) {
	query := c.Query("query")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}

	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	// Plain list pages are cacheable; search results are not.
	shouldCache := query == ""

	if shouldCache && h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetEventsListRaw(c.Request.Context(), page, pageSize)
		if err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Events.List(c.Request.Context(), query, page, pageSize)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		respondError(c, err)
		return
	}

	if shouldCache && h.valkeyClient != nil {
		h.valkeyClient.SetEventsList(c.Request.Context(), page, pageSize, response)
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// UpdateEvent - PUT /api/events/:id (privileged)
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), id, &req)
	if err != nil {
		slog.Error("Failed to update event", "error", err, "event_id", id)
		respondError(c, err)
		return
	}

	if h.valkeyClient != nil {
		h.valkeyClient.InvalidateEventsList(c.Request.Context())
	}

	c.JSON(http.StatusOK, event)
}
