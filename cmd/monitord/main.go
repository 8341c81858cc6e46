package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "monitord/internal/api/http"
	"monitord/internal/config"
	"monitord/internal/dispatch"
	"monitord/internal/engine"
	"monitord/internal/lib/logger/slogpretty"
	"monitord/internal/notify"
	"monitord/internal/probes"
	"monitord/internal/scheduler"
	"monitord/internal/status"

	"github.com/joho/godotenv"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := setupLogger(cfg.Env)

	descriptors := cfg.Descriptors()

	log.Info("starting application",
		"env", cfg.Env,
		"services", len(descriptors),
	)

	sender, err := notify.NewWebhookSender(cfg.Notifier.Webhooks, cfg.NotifierTimeout())
	if err != nil {
		log.Error("failed to initialize webhook sender", "error", err)
		os.Exit(1)
	}

	var audit dispatch.AuditSink
	if cfg.Kafka.Enabled {
		log.Info("initializing alert audit sink", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		sink := notify.NewAuditSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer sink.Close()
		audit = sink
	}

	store := status.NewStore(descriptors)
	eng := engine.New(store, descriptors, log)

	dispatcher := dispatch.New(sender, audit, descriptors, dispatch.Config{
		SharedChannel: cfg.Notifier.SharedChannel,
		MaxAttempts:   cfg.Notifier.MaxAttempts,
		BaseBackoff:   cfg.NotifierBackoff(),
	}, log)

	probeClient := probes.NewClient(time.Duration(cfg.Monitoring.ProbeTimeout) * time.Second)

	sched, err := scheduler.New(descriptors, eng, store, dispatcher, probeClient, log)
	if err != nil {
		log.Error("failed to initialize scheduler", "error", err)
		os.Exit(1)
	}

	monitorController := apihttp.NewMonitorController(sched)
	router := apihttp.NewRouter(monitorController)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)

	httpServer := &nethttp.Server{
		Addr:    ":" + cfg.Server.HealthPort,
		Handler: router,
	}

	go func() {
		log.Info("starting status server", "port", cfg.Server.HealthPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("application started and ready",
		"health_port", cfg.Server.HealthPort,
	)

	<-quit
	log.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}

	sched.Stop()
	dispatcher.Wait()
	log.Info("stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
