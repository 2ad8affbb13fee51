package main

import (
	"os"
	"os/signal"
	"syscall"

	"ticketon/internal/config"
	"ticketon/internal/consumers"
	"ticketon/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	service, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := service.Start(); err != nil {
		logger.Fatal("Failed to start consumer service", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Get().Info("Shutting down consumer service...")
	service.Stop()
	logger.Get().Info("Consumer service stopped")
}
