package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"

	"github.com/bareqalyusr/bnpl-service/internal/config"
	"github.com/bareqalyusr/bnpl-service/internal/handler"
	"github.com/bareqalyusr/bnpl-service/internal/integrations/keyrate"
	"github.com/bareqalyusr/bnpl-service/internal/repository"
	"github.com/bareqalyusr/bnpl-service/internal/scheduler"
	"github.com/bareqalyusr/bnpl-service/internal/service"
	"github.com/bareqalyusr/bnpl-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Money values render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	store := repository.NewStore(db)
	if err := store.Bootstrap(context.Background()); err != nil {
		logger.Fatalf("Failed to bootstrap database schema: %v", err)
	}

	// Initialize layers
	notifier := email.NewSender(cfg, logger)
	rates := keyrate.NewClient(cfg, logger)
	svc := service.NewService(store, logger, cfg, notifier, rates)
	h := handler.NewHandler(svc, logger)

	// Background jobs
	sched, err := scheduler.New(cfg, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to build scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.InitRoutes(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
