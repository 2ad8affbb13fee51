package models

import (
	"time"
)

// Booking and ticket statuses. Tickets mirror their parent booking.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusRefunded  = "REFUNDED"
)

// User represents a user in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLoggedIn time.Time `json:"last_logged_in" db:"last_logged_in"`
}

// UserSummary is the owner projection attached to bookings in privileged listings
type UserSummary struct {
	UserID    int64  `json:"user_id" db:"user_id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	Surname   string `json:"surname" db:"surname"`
}

// Event represents a bookable event. Price is in the smallest currency unit.
// AvailableTickets is nil when no capacity has been configured for the event;
// the booking workflow treats that the same as zero capacity.
type Event struct {
	ID               int64     `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Description      *string   `json:"description" db:"description"`
	Type             string    `json:"type" db:"type"`
	DatetimeStart    time.Time `json:"datetime_start" db:"datetime_start"`
	Price            int64     `json:"price" db:"price"`
	TotalTickets     int64     `json:"total_tickets" db:"total_tickets"`
	AvailableTickets *int64    `json:"available_tickets" db:"available_tickets"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents one user's reservation of N tickets for one event
type Booking struct {
	ID           int64        `json:"id" db:"id"`
	EventID      int64        `json:"event_id" db:"event_id"`
	UserID       int64        `json:"user_id" db:"user_id"`
	TicketsCount int64        `json:"tickets_count" db:"tickets_count"`
	TotalPrice   int64        `json:"total_price" db:"total_price"`
	Status       string       `json:"status" db:"status"`
	PaymentID    *string      `json:"payment_id,omitempty" db:"payment_id"`
	BookingTime  time.Time    `json:"booking_time" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
	Event        *Event       `json:"event,omitempty"`   // Not from DB, filled separately
	Tickets      []Ticket     `json:"tickets,omitempty"` // Not from DB, filled separately
	Owner        *UserSummary `json:"user,omitempty"`    // Privileged listings only
}

// Ticket is an individually redeemable unit belonging to exactly one booking
type Ticket struct {
	ID         int64     `json:"id" db:"id"`
	BookingID  int64     `json:"booking_id" db:"booking_id"`
	TicketCode string    `json:"ticket_code" db:"ticket_code"`
	Price      int64     `json:"price" db:"price"`
	IssuedDate time.Time `json:"issued_date" db:"issued_date"`
	Status     string    `json:"status" db:"status"`
	Booking    *Booking  `json:"booking,omitempty"` // Not from DB, filled separately
}
