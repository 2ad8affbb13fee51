package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"ticketon/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), userID, &req)
	if err != nil {
		slog.Error("Failed to create booking", "error", err, "event_id", req.EventID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListMyBookings - GET /api/bookings/my-bookings
func (h *Handlers) ListMyBookings(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to list bookings", "error", err, "user_id", userID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, isAdmin, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.services.Bookings.GetByID(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking - PATCH /api/bookings/:id/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	userID, isAdmin, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.services.Bookings.Cancel(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		slog.Error("Failed to cancel booking", "error", err, "booking_id", id)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListAllBookings - GET /api/bookings (privileged)
func (h *Handlers) ListAllBookings(c *gin.Context) {
	bookings, err := h.services.Bookings.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list all bookings", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
