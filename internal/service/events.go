package service

import (
	"context"
	"fmt"

	"ticketon/internal/apperrors"
	"ticketon/internal/logger"
	"ticketon/internal/models"
	"ticketon/internal/search"
)

type EventService struct {
	events EventStore
	search *search.ElasticsearchClient
}

func NewEventService(events EventStore, searchClient *search.ElasticsearchClient) *EventService {
	return &EventService{
		events: events,
		search: searchClient,
	}
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.CreateEventResponse, error) {
	eventType := req.Type
	if eventType == "" {
		eventType = "GENERAL"
	}

	available := req.TotalTickets
	event := &models.Event{
		Title:            req.Title,
		Description:      req.Description,
		Type:             eventType,
		DatetimeStart:    req.DatetimeStart,
		Price:            req.Price,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: &available,
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.index(ctx, event)

	return &models.CreateEventResponse{ID: event.ID}, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
	}
	return event, nil
}

// List returns a page of events. Full-text queries go to Elasticsearch when it
// is configured; everything else is served from the database.
func (s *EventService) List(ctx context.Context, query string, page, pageSize int) (models.ListEventsResponse, error) {
	if query != "" && s.search != nil {
		items, err := s.search.SearchEvents(ctx, query, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}
		return items, nil
	}

	events, err := s.events.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make(models.ListEventsResponse, len(events))
	for i, event := range events {
		result[i] = models.ListEventsResponseItem{
			ID:               event.ID,
			Title:            event.Title,
			DatetimeStart:    event.DatetimeStart,
			Price:            event.Price,
			AvailableTickets: event.AvailableTickets,
		}
	}

	return result, nil
}

func (s *EventService) Update(ctx context.Context, id int64, req *models.CreateEventRequest) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %d: %w", id, apperrors.ErrNotFound)
	}

	event.Title = req.Title
	event.Description = req.Description
	if req.Type != "" {
		event.Type = req.Type
	}
	event.DatetimeStart = req.DatetimeStart
	event.Price = req.Price
	event.TotalTickets = req.TotalTickets

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.index(ctx, event)

	return event, nil
}

func (s *EventService) index(ctx context.Context, event *models.Event) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexEvent(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to index event",
			"error", err,
			"event_id", event.ID)
	}
}
