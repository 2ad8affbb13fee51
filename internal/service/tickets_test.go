package service

import (
	"context"
	"strings"
	"testing"

	"ticketon/internal/apperrors"
	"ticketon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTickets(t *testing.T) {
	tickets, err := IssueTickets(2, 200)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	for _, ticket := range tickets {
		assert.Equal(t, int64(100), ticket.Price)
		assert.Equal(t, models.StatusConfirmed, ticket.Status)
		assert.False(t, ticket.IssuedDate.IsZero())
	}
}

func TestIssueTicketsRounding(t *testing.T) {
	cases := []struct {
		name       string
		count      int64
		totalPrice int64
		perTicket  int64
	}{
		{"even split", 4, 400, 100},
		{"rounds down", 3, 301, 100},
		{"rounds up", 3, 302, 101},
		{"repeating fraction", 3, 100, 33},
		{"single ticket", 1, 999, 999},
		{"free tickets", 5, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tickets, err := IssueTickets(tc.count, tc.totalPrice)
			require.NoError(t, err)
			require.Len(t, tickets, int(tc.count))

			var sum int64
			for _, ticket := range tickets {
				assert.Equal(t, tc.perTicket, ticket.Price)
				sum += ticket.Price
			}

			diff := tc.totalPrice - sum
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, tc.count-1, "rounding remainder exceeds tickets_count-1 units")
		})
	}
}

func TestIssueTicketsCodes(t *testing.T) {
	tickets, err := IssueTickets(200, 20000)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, ticket := range tickets {
		assert.True(t, strings.HasPrefix(ticket.TicketCode, "TKT-"), "code %q must carry the TKT- prefix", ticket.TicketCode)
		assert.Len(t, ticket.TicketCode, 16)
		assert.False(t, seen[ticket.TicketCode], "duplicate ticket code %q", ticket.TicketCode)
		seen[ticket.TicketCode] = true
	}
}

func TestIssueTicketsInvalidInput(t *testing.T) {
	_, err := IssueTickets(0, 100)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = IssueTickets(-1, 100)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = IssueTickets(2, -50)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestTicketGetOwnership(t *testing.T) {
	store := newMemStore()
	store.addEvent(1, 100, intPtr(5))
	bookingSvc := newTestBookingService(store)

	resp, err := bookingSvc.Create(context.Background(), 1, &models.CreateBookingRequest{
		EventID:      1,
		TicketsCount: 1,
	})
	require.NoError(t, err)
	ticketID := resp.Tickets[0].ID

	svc := NewTicketService(ticketStoreAdapter{store}, bookingStoreAdapter{store}, store)

	ticket, err := svc.Get(context.Background(), ticketID, 1, false)
	require.NoError(t, err)
	require.NotNil(t, ticket.Booking)
	require.NotNil(t, ticket.Booking.Event)
	assert.Equal(t, resp.Booking.ID, ticket.BookingID)

	_, err = svc.Get(context.Background(), ticketID, 2, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Get(context.Background(), ticketID, 2, true)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), 9999, 1, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
