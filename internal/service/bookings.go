package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketon/internal/apperrors"
	"ticketon/internal/external"
	"ticketon/internal/logger"
	"ticketon/internal/messaging"
	"ticketon/internal/models"
	"ticketon/internal/monitoring"

	"github.com/google/uuid"
)

// EventStore is the event inventory surface the workflow depends on
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, page, pageSize int) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
}

// BookingStore persists bookings; the two *With* methods are atomic sections
// that either fully apply or leave no trace.
type BookingStore interface {
	CreateWithTickets(ctx context.Context, booking *models.Booking, tickets []models.Ticket) error
	CancelWithRelease(ctx context.Context, bookingID int64) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	GetAll(ctx context.Context) ([]models.Booking, error)
}

type TicketStore interface {
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetByBookingID(ctx context.Context, bookingID int64) ([]models.Ticket, error)
}

type BookingService struct {
	events   EventStore
	bookings BookingStore
	tickets  TicketStore
	payments *external.PaymentClient
	nats     *messaging.NATSClient
}

func NewBookingService(events EventStore, bookings BookingStore, tickets TicketStore, payments *external.PaymentClient, nats *messaging.NATSClient) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		tickets:  tickets,
		payments: payments,
		nats:     nats,
	}
}

// Create runs the booking workflow: availability check, simulated charge,
// ticket issuance and the atomic reservation. A failed attempt leaves no
// booking, no tickets and no inventory change, so callers may retry freely.
func (s *BookingService) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if req.TicketsCount <= 0 {
		return nil, fmt.Errorf("tickets count must be positive: %w", apperrors.ErrInvalidInput)
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %d: %w", req.EventID, apperrors.ErrNotFound)
	}

	// Pre-check only; the authoritative guard is the conditional decrement
	// inside the atomic section.
	if event.AvailableTickets == nil || *event.AvailableTickets < req.TicketsCount {
		monitoring.InventoryRejections.Inc()
		return nil, fmt.Errorf("event %d: %w", req.EventID, apperrors.ErrInsufficientInventory)
	}

	totalPrice := event.Price * req.TicketsCount
	if req.TotalPrice != nil {
		totalPrice = *req.TotalPrice
	}

	booking := &models.Booking{
		EventID:      req.EventID,
		UserID:       userID,
		TicketsCount: req.TicketsCount,
		TotalPrice:   totalPrice,
		Status:       models.StatusConfirmed,
	}

	if s.payments != nil {
		payment, err := s.payments.Charge(ctx, totalPrice, uuid.New().String())
		if err != nil {
			return nil, fmt.Errorf("failed to charge payment: %w", err)
		}
		booking.PaymentID = &payment.PaymentID
	}

	tickets, err := IssueTickets(req.TicketsCount, totalPrice)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.CreateWithTickets(ctx, booking, tickets); err != nil {
		if errors.Is(err, apperrors.ErrInsufficientInventory) {
			monitoring.InventoryRejections.Inc()
		}
		return nil, err
	}
	booking.Tickets = tickets

	monitoring.BookingsCreated.Inc()
	monitoring.TicketsIssued.Add(float64(req.TicketsCount))

	s.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:    booking.ID,
		EventID:      booking.EventID,
		UserID:       booking.UserID,
		TicketsCount: booking.TicketsCount,
		TotalPrice:   booking.TotalPrice,
		Timestamp:    time.Now(),
	})
	s.publish(ctx, models.EventTicketsIssued, models.TicketsIssuedEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		Count:     booking.TicketsCount,
		Timestamp: time.Now(),
	})

	return &models.CreateBookingResponse{Booking: booking, Tickets: tickets}, nil
}

// Cancel reverses a booking: status flip, ticket cancellation and inventory
// release happen atomically, and only once. Repeated attempts fail with
// ErrConflict and do not re-credit inventory.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrNotFound)
	}

	if booking.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrForbidden)
	}

	if err := s.bookings.CancelWithRelease(ctx, bookingID); err != nil {
		return nil, err
	}

	if s.payments != nil && booking.PaymentID != nil {
		if _, err := s.payments.Refund(ctx, *booking.PaymentID, booking.TotalPrice); err != nil {
			logger.WithContext(ctx).Error("Failed to refund payment during cancellation",
				"error", err,
				"payment_id", *booking.PaymentID)
		}
	}

	monitoring.BookingsCancelled.Inc()

	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID:       booking.ID,
		EventID:         booking.EventID,
		TicketsReleased: booking.TicketsCount,
		Reason:          "User cancellation",
		Timestamp:       time.Now(),
	})

	return s.loadBooking(ctx, bookingID)
}

// GetByID returns one booking with event and tickets; owner or admin only
func (s *BookingService) GetByID(ctx context.Context, bookingID, userID int64, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrNotFound)
	}

	if booking.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrForbidden)
	}

	return s.attach(ctx, booking)
}

// ListByUser returns the caller's bookings with event and ticket data
func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	for i := range bookings {
		if _, err := s.attach(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

// ListAll returns every booking with its owner summary. Privileged callers only.
func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.bookings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	for i := range bookings {
		if _, err := s.attach(ctx, &bookings[i]); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

func (s *BookingService) loadBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrNotFound)
	}
	return s.attach(ctx, booking)
}

func (s *BookingService) attach(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	event, err := s.events.GetByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	booking.Event = event

	tickets, err := s.tickets.GetByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	booking.Tickets = tickets

	return booking, nil
}

func (s *BookingService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.nats.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
