package repository

import (
	"context"
	"database/sql"

	"ticketon/internal/database"
	"ticketon/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, type, datetime_start, price, total_tickets, available_tickets)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Type,
		event.DatetimeStart,
		event.Price,
		event.TotalTickets,
		event.AvailableTickets,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	return err
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, title, description, type, datetime_start, price, total_tickets, available_tickets, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Type,
		&event.DatetimeStart,
		&event.Price,
		&event.TotalTickets,
		&event.AvailableTickets,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

func (r *EventRepository) List(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	var events []models.Event
	query := `
		SELECT id, title, description, type, datetime_start, price, total_tickets, available_tickets, created_at, updated_at
		FROM events
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	offset := 0
	if page > 0 && pageSize > 0 {
		offset = (page - 1) * pageSize
	}

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.Type,
			&event.DatetimeStart,
			&event.Price,
			&event.TotalTickets,
			&event.AvailableTickets,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, type = $3, datetime_start = $4,
		    price = $5, total_tickets = $6, available_tickets = $7, updated_at = NOW()
		WHERE id = $8`

	_, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Type,
		event.DatetimeStart,
		event.Price,
		event.TotalTickets,
		event.AvailableTickets,
		event.ID,
	)

	return err
}
