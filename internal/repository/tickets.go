package repository

import (
	"context"
	"database/sql"

	"ticketon/internal/database"
	"ticketon/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := `
		SELECT id, booking_id, ticket_code, price, issued_date, status
		FROM tickets
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.BookingID,
		&ticket.TicketCode,
		&ticket.Price,
		&ticket.IssuedDate,
		&ticket.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return ticket, err
}

func (r *TicketRepository) GetByBookingID(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	query := `
		SELECT id, booking_id, ticket_code, price, issued_date, status
		FROM tickets
		WHERE booking_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ticket models.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.BookingID,
			&ticket.TicketCode,
			&ticket.Price,
			&ticket.IssuedDate,
			&ticket.Status,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}
