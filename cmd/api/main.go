package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application Layer
	appService "medreminder/internal/application/service"

	// Domain Layer
	"medreminder/internal/domain/recurrence"
	"medreminder/internal/domain/repository"

	// Infrastructure Layer
	"medreminder/internal/infrastructure/catalog"
	"medreminder/internal/infrastructure/database/memory"
	redisStore "medreminder/internal/infrastructure/database/redis"
	"medreminder/internal/infrastructure/database/sqlite"
	lineClient "medreminder/internal/infrastructure/line"
	"medreminder/internal/infrastructure/notify"
	"medreminder/internal/infrastructure/scheduler"

	// Interfaces Layer
	"medreminder/internal/interfaces/api/handler"
	"medreminder/internal/interfaces/api/router"

	// Packages
	"medreminder/internal/pkg/config"
	appLogger "medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// storeCloser releases whatever backs the selected ReminderStore.
type storeCloser func() error

func openStore(cfg *config.Config, log appLogger.Logger) (repository.ReminderStore, storeCloser, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info(fmt.Sprintf("Successfully connected to redis: %s", cfg.RedisAddr))
		return redisStore.NewReminderStore(client, "medreminder"), client.Close, nil
	case config.StoreMemory:
		log.Warn("Using in-memory store, reminders will not survive a restart")
		return memory.NewReminderStore(), func() error { return nil }, nil
	default:
		db, err := sqlite.NewDB(cfg.DBURL, log)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewReminderStore(db), func() error { return sqlite.CloseDB(db) }, nil
	}
}

func openNotifier(cfg *config.Config, log appLogger.Logger) (appService.Notifier, error) {
	if !cfg.LineEnabled() {
		log.Warn("LINE credentials not set, notifications will only be logged")
		return notify.NewLogNotifier(log), nil
	}
	client, err := lineClient.NewClient(cfg.ChannelSecret, cfg.ChannelAccessToken, cfg.NotifyUserID, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func gracefulShutdown(apiServer *http.Server, schedulerService appService.SchedulerService, closeStore storeCloser, log appLogger.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	// Stop the scheduler first
	log.Info("Stopping scheduler...")
	schedulerService.Stop()
	log.Info("Scheduler stopped.")

	log.Info("Closing reminder store...")
	if err := closeStore(); err != nil {
		log.Error("Error closing reminder store", err)
	} else {
		log.Info("Reminder store closed.")
	}

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}

	log.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// --- Initialization ---
	appLog := appLogger.New()
	appLog.Info("Logger initialized.")

	cfg, err := config.Load()
	if err != nil {
		appLog.Error("Invalid configuration", err)
		os.Exit(1)
	}
	appLog.Info(fmt.Sprintf("Reminders are scheduled in timezone %s", cfg.Timezone))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New("medreminder", registry)

	// --- Infrastructure ---
	store, closeStore, err := openStore(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to open reminder store", err)
		os.Exit(1)
	}
	appLog.Info(fmt.Sprintf("Reminder store initialized (%s).", cfg.StoreDriver))

	notifier, err := openNotifier(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to create notifier", err)
		os.Exit(1)
	}
	cronScheduler := scheduler.NewScheduler(appLog)

	medCatalog, err := catalog.Load()
	if err != nil {
		appLog.Error("Failed to load medication catalog", err)
		os.Exit(1)
	}

	// --- Application Services ---
	model := recurrence.New(cfg.Location)
	schedulerSvc := appService.NewSchedulerService(cronScheduler, notifier, appMetrics, appLog)
	reminderSvc := appService.NewReminderService(store, schedulerSvc, model, appLog, appService.WithMetrics(appMetrics))
	appLog.Info("Application services initialized.")

	// --- Initialize Schedules ---
	if err := reminderSvc.RestoreSchedules(context.Background()); err != nil {
		// Log the error but continue starting the server
		appLog.Error("Failed to restore schedules on startup", err)
	}

	// --- Router ---
	echoRouter := router.NewRouter(&router.Config{
		ReminderHandler: handler.NewReminderHandler(reminderSvc, model, medCatalog, appLog),
		Logger:          appLog,
		Gatherer:        registry,
	})

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      echoRouter,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, schedulerSvc, closeStore, appLog, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for graceful shutdown signal
	<-done
	appLog.Info("Graceful shutdown complete.")
}
