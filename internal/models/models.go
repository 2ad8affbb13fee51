package models

import "time"

// CreateEventRequest - payload for creating an event
type CreateEventRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   *string   `json:"description,omitempty"`
	Type          string    `json:"type,omitempty"`
	DatetimeStart time.Time `json:"datetime_start" binding:"required"`
	Price         int64     `json:"price" binding:"min=0"`
	TotalTickets  int64     `json:"total_tickets" binding:"min=0"`
}

// CreateEventResponse - response after creating an event
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// ListEventsResponseItem - element of the events list
type ListEventsResponseItem struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	DatetimeStart    time.Time `json:"datetime_start"`
	Price            int64     `json:"price"`
	AvailableTickets *int64    `json:"available_tickets"`
}

// ListEventsResponse - list of events
type ListEventsResponse []ListEventsResponseItem

// CreateBookingRequest - payload for creating a booking.
// TotalPrice is optional; when omitted it defaults to
// event price multiplied by the requested tickets count.
type CreateBookingRequest struct {
	EventID      int64  `json:"event_id" binding:"required"`
	TicketsCount int64  `json:"tickets_count" binding:"required,gt=0"`
	TotalPrice   *int64 `json:"total_price,omitempty" binding:"omitempty,min=0"`
}

// CreateBookingResponse - the created booking with its issued tickets
type CreateBookingResponse struct {
	Booking *Booking `json:"booking"`
	Tickets []Ticket `json:"tickets"`
}
