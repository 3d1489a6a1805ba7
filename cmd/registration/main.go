package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gartstein/eventreg/internal/registration/config"
	"github.com/gartstein/eventreg/internal/registration/controller"
	"github.com/gartstein/eventreg/internal/registration/db"
	"github.com/gartstein/eventreg/internal/registration/events"
	"github.com/gartstein/eventreg/internal/registration/handlers"
	"github.com/gartstein/eventreg/internal/registration/images"
	"go.uber.org/zap"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	configPath := filepath.Join("internal", "registration", "config", "config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := db.NewRepository(initDatabase(cfg))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}
	defer repo.Close()

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		log.Fatal("failed to initialize Kafka producer", err)
	}
	defer producer.Close()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	consumer := events.NewConsumer(cfg.KafkaBrokers, "registration-audit", cfg.Topic, logger)
	consumer.RegisterHandler(auditHandler(logger))
	consumer.Start(consumerCtx)
	defer consumer.Close()

	uploader := images.NewUploader(cfg.ImageHostURL, cfg.ImageHostKey, logger)

	companySvc := controller.NewCompanyService(repo, producer, uploader, logger)
	registrationSvc := controller.NewRegistrationService(repo, producer, uploader, logger)

	handler := handlers.NewHandler(companySvc, registrationSvc, cfg.JWTSecret, logger)
	server := handlers.NewServer(cfg.HTTPPort, logger)
	server.RegisterRoutes(handler)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// initDatabase initializes the database connection config.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// auditHandler logs every lifecycle event consumed from the topic.
func auditHandler(logger *zap.Logger) func(context.Context, events.Event) error {
	audit := logger.Named("audit")
	return func(_ context.Context, event events.Event) error {
		audit.Info("event",
			zap.String("type", string(event.Type)),
			zap.String("key", event.Key),
		)
		return nil
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then
// shuts down the server.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Server stopped properly")
}
