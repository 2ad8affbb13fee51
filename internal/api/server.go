package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"ticketon/internal/cache"
	"ticketon/internal/config"
	"ticketon/internal/database"
	"ticketon/internal/external"
	"ticketon/internal/handlers"
	"ticketon/internal/logger"
	"ticketon/internal/messaging"
	"ticketon/internal/middleware"
	"ticketon/internal/monitoring"
	"ticketon/internal/repository"
	"ticketon/internal/search"
	"ticketon/internal/service"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API server with all its collaborators
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer connects every collaborator once at startup and wires the routes.
// Messaging, cache and search are optional: the API degrades gracefully when
// they are unreachable.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, continuing without messaging", "error", err)
		natsClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, continuing without cache", "error", err)
		valkeyClient = nil
	}

	var searchClient *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		searchClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, continuing without search", "error", err)
			searchClient = nil
		}
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, searchClient, paymentClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(monitoring.Middleware())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("", middleware.RequireAdmin(), h.CreateEvent)
			events.PUT("/:id", middleware.RequireAdmin(), h.UpdateEvent)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", middleware.RequireAdmin(), h.ListAllBookings)
			bookings.GET("/my-bookings", h.ListMyBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/:id/cancel", h.CancelBooking)
		}

		tickets := api.Group("/tickets")
		{
			tickets.GET("/:id", h.GetTicket)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", monitoring.Handler())
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "ticketon-api",
		"database": dbHealth,
	})
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes connections on shutdown
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
