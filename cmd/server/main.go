package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "devicepool-backend/internal/api/http"
	"devicepool-backend/internal/config"
	"devicepool-backend/internal/jobs"
	"devicepool-backend/internal/logger"
	"devicepool-backend/internal/repository/postgres"
	"devicepool-backend/internal/scheduler"
	"devicepool-backend/internal/security"
	"devicepool-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Device Pool Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Bootstrap schema and seed the pool on first run
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		cancel()
		logger.Error("Failed to ensure schema", "error", err)
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	if err := postgres.SeedDevices(ctx, db); err != nil {
		cancel()
		logger.Error("Failed to seed devices", "error", err)
		log.Fatalf("Failed to seed devices: %v", err)
	}
	cancel()

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.Email.Enabled {
		emailSvc = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.Recipients)
		logger.Info("Email notices enabled", "recipients", len(cfg.Email.Recipients))
	} else {
		logger.Info("Email notices disabled")
	}

	// Initialize Services
	systemSvc := service.NewSystemService(
		store.SystemConfigRepository,
		emailSvc,
		time.Duration(cfg.Broadcast.HeartbeatSeconds)*time.Second,
		cfg.Broadcast.SubscriberBuffer,
	)
	defer systemSvc.Close()

	deviceSvc := service.NewDeviceService(store.DeviceRepository, store.RentalRepository, systemSvc)
	rentalSvc := service.NewRentalService(store.RentalRepository)
	authSvc, err := service.NewAuthService(tokenManager, cfg.Admin.Username, cfg.Admin.Password, cfg.QA.ReturnPassword)
	if err != nil {
		logger.Error("Failed to initialize auth service", "error", err)
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		System: systemSvc,
		Rental: rentalSvc,
	}, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Set up HTTP server
	router := httpapi.NewRouter(deviceSvc, rentalSvc, systemSvc, authSvc, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
