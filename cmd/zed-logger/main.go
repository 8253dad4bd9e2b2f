// Package main provides the entry point for the live race-event logger.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/zedalytics/internal/config"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/feed"
	"github.com/yourusername/zedalytics/internal/health"
	"github.com/yourusername/zedalytics/internal/logger"
	"github.com/yourusername/zedalytics/internal/metrics"
	"github.com/yourusername/zedalytics/internal/repository"
	"github.com/yourusername/zedalytics/internal/service"
)

// feedStatus tracks the current client across reconnects so the health
// server always reports the live connection. The reconnect loop swaps
// the client while the health server reads it, so access is
// mutex-guarded.
type feedStatus struct {
	mu     sync.RWMutex
	client *feed.Client
}

func (f *feedStatus) set(client *feed.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = client
}

func (f *feedStatus) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.client != nil && f.client.IsConnected()
}

func main() {
	var (
		cfg    *config.Config
		err    error
		appLog *logrus.Logger
		db     *database.DB
	)

	// Load configuration
	cfg, err = config.LoadWithDefaults(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog = logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Zedalytics race logger starting")

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		appLog.WithField("signal", sig).Info("Shutdown signal received")
		cancel()
	}()

	// Initialize database connection and verify the schema is in place
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	appLog.Info("Database connection established")

	// Initialize repositories
	repos := repository.Repositories{
		Horse:  repository.NewPostgresHorseRepository(db),
		Stable: repository.NewPostgresStableRepository(db),
		Race:   repository.NewPostgresRaceRepository(db),
	}

	// Start metrics server
	metrics.InitRegistry()
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metricsMux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	// Start health check server
	status := &feedStatus{}
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		DB:          db,
		Feed:        status,
	})
	if err := healthSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthSrv.SetReady(true)

	// The dedupe cache survives reconnects so a redelivered race after a
	// connection drop is still recognized.
	seen := service.NewSeenCache(cfg.SeenTTL())
	normalizer := service.NewNormalizer(appLog)

	feedCfg := feed.Config{
		Endpoint:         cfg.Feed.Endpoint,
		Token:            cfg.Feed.BearerToken,
		HandshakeTimeout: cfg.FeedHandshakeTimeout(),
		ReadTimeout:      cfg.FeedReadTimeout(),
	}

	backoff := time.Duration(cfg.Ingest.ReconnectBackoffSeconds) * time.Second
	maxBackoff := time.Duration(cfg.Ingest.ReconnectMaxBackoffSeconds) * time.Second
	delay := backoff

	// Outer connection loop. The pipeline returns only on connection
	// failure or shutdown; everything message-level is handled inside.
	for ctx.Err() == nil {
		client := feed.NewClient(feedCfg, appLog)

		if err := client.Connect(ctx); err != nil {
			appLog.WithError(err).WithField("retry_in", delay).Error("Feed connection failed")
			metrics.RecordFeedReconnect()
			if !sleepCtx(ctx, delay) {
				break
			}
			delay = nextBackoff(delay, maxBackoff)
			continue
		}

		if _, err := client.Subscribe(ctx, feed.RaceEventOperationName, feed.RaceEventSubscription, feed.RaceEventVariables()); err != nil {
			appLog.WithError(err).Error("Subscription failed")
			client.Close()
			metrics.RecordFeedReconnect()
			if !sleepCtx(ctx, delay) {
				break
			}
			delay = nextBackoff(delay, maxBackoff)
			continue
		}

		status.set(client)
		metrics.UpdateFeedConnected(true)
		delay = backoff

		// Unblock the read loop when shutdown is requested.
		stop := context.AfterFunc(ctx, func() { client.Close() })

		pipeline := service.NewPipeline(client, normalizer, seen, repos, appLog)
		runErr := pipeline.Run(ctx)

		stop()
		client.Close()
		status.set(nil)
		metrics.UpdateFeedConnected(false)

		appLog.WithField("totals", pipeline.Stats().Summary()).Info("Ingestion run ended")

		if ctx.Err() != nil {
			break
		}

		appLog.WithError(runErr).WithField("retry_in", delay).Warn("Feed connection lost, reconnecting")
		metrics.RecordFeedReconnect()
		if !sleepCtx(ctx, delay) {
			break
		}
		delay = nextBackoff(delay, maxBackoff)
	}

	healthSrv.SetReady(false)
	appLog.Info("Zedalytics race logger shut down successfully")
}

// sleepCtx waits for d or until ctx is canceled. It reports whether the
// full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
