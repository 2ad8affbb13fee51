package repository

import (
	"ticketon/internal/database"
)

type Repositories struct {
	Events   *EventRepository
	Bookings *BookingRepository
	Tickets  *TicketRepository
	Users    *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:   NewEventRepository(db),
		Bookings: NewBookingRepository(db),
		Tickets:  NewTicketRepository(db),
		Users:    NewUserRepository(db),
	}
}
