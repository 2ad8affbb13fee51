package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"ticketon/internal/models"
	"ticketon/internal/repository"
	"ticketon/internal/search"

	"github.com/nats-io/stan.go"
)

// Handlers react to booking lifecycle events. Their job is to keep the
// Elasticsearch events index in step with inventory changes committed by the
// booking workflow.
type Handlers struct {
	events *repository.EventRepository
	search *search.ElasticsearchClient
}

func NewHandlers(events *repository.EventRepository, searchClient *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		events: events,
		search: searchClient,
	}
}

// HandleBookingCreated re-indexes the event after inventory was decremented
func (h *Handlers) HandleBookingCreated(msg *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to decode booking created event", "error", err)
		return
	}

	slog.Info("Booking created",
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"tickets_count", event.TicketsCount)

	h.reindex(event.EventID)
}

// HandleBookingCancelled re-indexes the event after inventory was released
func (h *Handlers) HandleBookingCancelled(msg *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("Failed to decode booking cancelled event", "error", err)
		return
	}

	slog.Info("Booking cancelled",
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"tickets_released", event.TicketsReleased)

	h.reindex(event.EventID)
}

func (h *Handlers) reindex(eventID int64) {
	if h.search == nil {
		return
	}

	ctx := context.Background()
	event, err := h.events.GetByID(ctx, eventID)
	if err != nil || event == nil {
		slog.Error("Failed to load event for reindexing", "error", err, "event_id", eventID)
		return
	}

	if err := h.search.IndexEvent(ctx, event); err != nil {
		slog.Error("Failed to reindex event", "error", err, "event_id", eventID)
	}
}
