package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"ticketon/internal/apperrors"
	"ticketon/internal/models"
)

// IssueTickets mints count ticket records splitting totalPrice evenly across
// them. Every ticket carries round(totalPrice/count), so the issued sum can
// differ from totalPrice by at most count-1 currency units of rounding
// remainder. Booking IDs are stamped when the tickets are persisted.
func IssueTickets(count, totalPrice int64) ([]models.Ticket, error) {
	if count <= 0 {
		return nil, fmt.Errorf("tickets count must be positive: %w", apperrors.ErrInvalidInput)
	}
	if totalPrice < 0 {
		return nil, fmt.Errorf("total price must not be negative: %w", apperrors.ErrInvalidInput)
	}

	perTicket := int64(math.Round(float64(totalPrice) / float64(count)))
	issuedDate := time.Now().UTC()

	tickets := make([]models.Ticket, count)
	for i := range tickets {
		code, err := generateTicketCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}
		tickets[i] = models.Ticket{
			TicketCode: code,
			Price:      perTicket,
			IssuedDate: issuedDate,
			Status:     models.StatusConfirmed,
		}
	}

	return tickets, nil
}

// generateTicketCode returns a human-shareable code like TKT-3F9A0C41B2D7.
// 6 random bytes make collisions negligible; the unique constraint on
// tickets.ticket_code catches the rest.
func generateTicketCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "TKT-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

type TicketService struct {
	tickets  TicketStore
	bookings BookingStore
	events   EventStore
}

func NewTicketService(tickets TicketStore, bookings BookingStore, events EventStore) *TicketService {
	return &TicketService{
		tickets:  tickets,
		bookings: bookings,
		events:   events,
	}
}

// Get returns a ticket with its booking and event attached. Only the booking
// owner or an admin may read it.
func (s *TicketService) Get(ctx context.Context, id, userID int64, isAdmin bool) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d: %w", id, apperrors.ErrNotFound)
	}

	booking, err := s.bookings.GetByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", ticket.BookingID, apperrors.ErrNotFound)
	}

	if booking.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("ticket %d: %w", id, apperrors.ErrForbidden)
	}

	event, err := s.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	booking.Event = event
	ticket.Booking = booking

	return ticket, nil
}
