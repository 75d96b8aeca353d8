package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assessment-service/internal/config"
	httpapi "assessment-service/internal/http"
	"assessment-service/internal/logging"
	"assessment-service/internal/notify"
	"assessment-service/internal/repository/postgres"
	"assessment-service/internal/server"
	"assessment-service/internal/service"
	"assessment-service/internal/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	logger := logging.NewLogger(cfg.Env)
	logger.Info("starting service", "env", cfg.Env)

	// Init DB
	db, err := postgres.NewDB(cfg.DB)

	if err != nil {
		logger.Error("failed to connect to db", "err", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close db", "err", err)
		}
	}()

	// Run migrations
	if err := storage.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// Repositories
	assessmentRepo := postgres.NewAssessmentRepository(db)
	cycleRepo := postgres.NewCycleRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	competencyRepo := postgres.NewCompetencyRepository(db)

	// Notification hook
	notifier := notify.NewLogSender(logger)

	// Services
	assessmentSvc := service.NewAssessmentService(assessmentRepo, cycleRepo, auditRepo, employeeRepo, notifier)
	cycleSvc := service.NewCycleService(cycleRepo, assessmentRepo)
	batchSvc := service.NewBatchService(assessmentSvc, assessmentRepo, employeeRepo, competencyRepo)

	// HTTP router
	router := httpapi.NewRouter(assessmentSvc, cycleSvc, batchSvc, logger)

	// HTTP server
	httpServer := server.NewHTTPServer(cfg.HTTP, router, logger)

	// Graceful shutdown
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error("http server error", "err", err)
		}
	}()

	logger.Info("server started", "addr", cfg.HTTP.Addr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)

	} else {
		logger.Info("server stopped gracefully")
	}
}
