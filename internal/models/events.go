package models

import "time"

// NATS Event Types
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventTicketsIssued    = "tickets.issued"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID    int64     `json:"booking_id"`
	EventID      int64     `json:"event_id"`
	UserID       int64     `json:"user_id"`
	TicketsCount int64     `json:"tickets_count"`
	TotalPrice   int64     `json:"total_price"`
	Timestamp    time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID       int64     `json:"booking_id"`
	EventID         int64     `json:"event_id"`
	TicketsReleased int64     `json:"tickets_released"`
	Reason          string    `json:"reason"`
	Timestamp       time.Time `json:"timestamp"`
}

// TicketsIssuedEvent represents the issuance of tickets for a booking
type TicketsIssuedEvent struct {
	BookingID int64     `json:"booking_id"`
	EventID   int64     `json:"event_id"`
	Count     int64     `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}
