package consumers

import (
	"fmt"
	"log/slog"

	"ticketon/internal/config"
	"ticketon/internal/database"
	"ticketon/internal/messaging"
	"ticketon/internal/models"
	"ticketon/internal/repository"
	"ticketon/internal/search"

	"github.com/nats-io/stan.go"
)

const indexerQueue = "indexer"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	var searchClient *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		searchClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, consumer will only log events", "error", err)
			searchClient = nil
		}
	}

	repos := repository.NewRepositories(db)
	handlers := NewHandlers(repos.Events, searchClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		handlers: handlers,
	}, nil
}

// Start subscribes to the booking lifecycle subjects with a durable queue
// group, so multiple consumer replicas share the work.
func (s *ConsumerService) Start() error {
	subjects := map[string]stan.MsgHandler{
		models.EventBookingCreated:   s.handlers.HandleBookingCreated,
		models.EventBookingCancelled: s.handlers.HandleBookingCancelled,
	}

	for subject, handler := range subjects {
		sub, err := s.nats.SubscribeQueue(subject, indexerQueue, handler)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}

	slog.Info("Consumer service started", "subjects", len(subjects))
	return nil
}

func (s *ConsumerService) Stop() {
	for _, sub := range s.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Failed to close subscription", "error", err)
		}
	}

	if err := s.nats.Close(); err != nil {
		slog.Error("Failed to close NATS connection", "error", err)
	}

	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}
}
