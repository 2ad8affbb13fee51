package service

import (
	"ticketon/internal/external"
	"ticketon/internal/messaging"
	"ticketon/internal/repository"
	"ticketon/internal/search"
)

type Services struct {
	Events   *EventService
	Bookings *BookingService
	Tickets  *TicketService
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, searchClient *search.ElasticsearchClient, paymentClient *external.PaymentClient) *Services {
	eventService := NewEventService(repos.Events, searchClient)
	bookingService := NewBookingService(repos.Events, repos.Bookings, repos.Tickets, paymentClient, natsClient)
	ticketService := NewTicketService(repos.Tickets, repos.Bookings, repos.Events)

	return &Services{
		Events:   eventService,
		Bookings: bookingService,
		Tickets:  ticketService,
	}
}
