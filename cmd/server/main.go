package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/appointment_desk/internal/app"
	"github.com/Freeeeeet/appointment_desk/internal/config"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	defer logger.Sync()

	logger.Info("Starting appointment desk",
		zap.String("environment", cfg.Environment),
		zap.String("address", cfg.HTTPServer.Address),
		zap.Bool("notifications", cfg.NotificationsEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		return
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		return
	}

	logger.Info("Application stopped")
}
