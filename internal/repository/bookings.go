package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ticketon/internal/apperrors"
	"ticketon/internal/database"
	"ticketon/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithTickets is the atomic section of the booking workflow: it inserts
// the booking row, its tickets and decrements the event inventory in one
// transaction. The decrement is conditional on enough inventory remaining, so
// two concurrent bookings can never drive available_tickets negative; the
// loser's transaction is rolled back with ErrInsufficientInventory.
func (r *BookingRepository) CreateWithTickets(ctx context.Context, booking *models.Booking, tickets []models.Ticket) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		insertBooking := `
			INSERT INTO bookings (event_id, user_id, tickets_count, total_price, status, payment_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, insertBooking,
			booking.EventID,
			booking.UserID,
			booking.TicketsCount,
			booking.TotalPrice,
			booking.Status,
			booking.PaymentID,
		).Scan(&booking.ID, &booking.BookingTime, &booking.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		insertTicket := `
			INSERT INTO tickets (booking_id, ticket_code, price, issued_date, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`

		for i := range tickets {
			tickets[i].BookingID = booking.ID
			err := tx.QueryRowContext(ctx, insertTicket,
				tickets[i].BookingID,
				tickets[i].TicketCode,
				tickets[i].Price,
				tickets[i].IssuedDate,
				tickets[i].Status,
			).Scan(&tickets[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert ticket: %w", err)
			}
		}

		// Guarded decrement: only succeeds when enough tickets remain.
		reserve := `
			UPDATE events
			SET available_tickets = available_tickets - $1, updated_at = NOW()
			WHERE id = $2 AND available_tickets IS NOT NULL AND available_tickets >= $1`

		res, err := tx.ExecContext(ctx, reserve, booking.TicketsCount, booking.EventID)
		if err != nil {
			return fmt.Errorf("failed to reserve tickets: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.ErrInsufficientInventory
		}

		return nil
	})
}

// CancelWithRelease flips a booking to CANCELLED, cancels its tickets and
// releases the held inventory back to the event, all in one transaction. The
// status flip is conditional, so cancelling an already-cancelled booking fails
// with ErrConflict instead of re-crediting inventory a second time.
func (r *BookingRepository) CancelWithRelease(ctx context.Context, bookingID int64) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		cancel := `
			UPDATE bookings
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status IN ($3, $4)
			RETURNING event_id, tickets_count`

		var eventID, ticketsCount int64
		err := tx.QueryRowContext(ctx, cancel,
			models.StatusCancelled,
			bookingID,
			models.StatusConfirmed,
			models.StatusPending,
		).Scan(&eventID, &ticketsCount)
		if err == sql.ErrNoRows {
			return apperrors.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		cancelTickets := `UPDATE tickets SET status = $1 WHERE booking_id = $2`
		if _, err := tx.ExecContext(ctx, cancelTickets, models.StatusCancelled, bookingID); err != nil {
			return fmt.Errorf("failed to cancel tickets: %w", err)
		}

		release := `
			UPDATE events
			SET available_tickets = available_tickets + $1, updated_at = NOW()
			WHERE id = $2 AND available_tickets IS NOT NULL`
		if _, err := tx.ExecContext(ctx, release, ticketsCount, eventID); err != nil {
			return fmt.Errorf("failed to release tickets: %w", err)
		}

		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, event_id, user_id, tickets_count, total_price, status, payment_id, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.TicketsCount,
		&booking.TotalPrice,
		&booking.Status,
		&booking.PaymentID,
		&booking.BookingTime,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	query := `
		SELECT id, event_id, user_id, tickets_count, total_price, status, payment_id, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetAll returns every booking together with its owning-user summary.
// Privileged listings only.
func (r *BookingRepository) GetAll(ctx context.Context) ([]models.Booking, error) {
	query := `
		SELECT b.id, b.event_id, b.user_id, b.tickets_count, b.total_price, b.status, b.payment_id,
		       b.created_at, b.updated_at,
		       u.user_id, u.email, u.first_name, u.surname
		FROM bookings b
		JOIN users u ON u.user_id = b.user_id
		ORDER BY b.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		var owner models.UserSummary
		err := rows.Scan(
			&booking.ID,
			&booking.EventID,
			&booking.UserID,
			&booking.TicketsCount,
			&booking.TotalPrice,
			&booking.Status,
			&booking.PaymentID,
			&booking.BookingTime,
			&booking.UpdatedAt,
			&owner.UserID,
			&owner.Email,
			&owner.FirstName,
			&owner.Surname,
		)
		if err != nil {
			return nil, err
		}
		booking.Owner = &owner
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.EventID,
			&booking.UserID,
			&booking.TicketsCount,
			&booking.TotalPrice,
			&booking.Status,
			&booking.PaymentID,
			&booking.BookingTime,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
