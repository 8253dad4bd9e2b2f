package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	appconfig "github.com/yourusername/zedalytics/internal/config"
	"github.com/yourusername/zedalytics/internal/database"
	"github.com/yourusername/zedalytics/internal/datasource"
	applogger "github.com/yourusername/zedalytics/internal/logger"
	"github.com/yourusername/zedalytics/internal/metrics"
	"github.com/yourusername/zedalytics/internal/repository"
	"github.com/yourusername/zedalytics/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *appconfig.Config
	db         *database.DB
	loader     *datasource.BackfillLoader
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(watchCmd)
}

var rootCmd = &cobra.Command{
	Use:   "zed-backfill",
	Short: "Load historical race results into the database",
	Long:  `Downloads race-data CSV chunks from the configured GitHub repository and persists them through the same idempotent sink the live logger uses.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run an immediate sync, then keep syncing on the configured schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduled(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = appconfig.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := appconfig.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}

	return appconfig.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos := repository.Repositories{
		Horse:  repository.NewPostgresHorseRepository(db),
		Stable: repository.NewPostgresStableRepository(db),
		Race:   repository.NewPostgresRaceRepository(db),
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      time.Duration(cfg.Backfill.RequestTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.Backfill.MaxRetries,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.Backfill.RateLimit,
	}, appLog)

	github := datasource.NewGitHubClient(httpClient, cfg.Backfill.RepoOwner, cfg.Backfill.RepoName, appLog)
	loader = datasource.NewBackfillLoader(github, repos, appLog)

	metrics.InitRegistry()
	return nil
}

func runOnce(ctx context.Context) error {
	result, err := loader.Sync(ctx)
	if err != nil {
		return fmt.Errorf("backfill sync failed: %w", err)
	}

	appLog.WithFields(logrus.Fields{
		"files":   result.Files,
		"rows":    result.Rows,
		"races":   result.RacesWritten,
		"skipped": result.RowsSkipped,
	}).Info("Backfill complete")

	return nil
}

func runScheduled(ctx context.Context) error {
	if err := runOnce(ctx); err != nil {
		appLog.WithError(err).Error("Initial sync failed, continuing with schedule")
	}

	sched := scheduler.NewScheduler(loader, appLog)
	if err := sched.ScheduleSync(cfg.Backfill.SyncSchedule); err != nil {
		return err
	}

	sched.Start()
	appLog.WithField("schedule", cfg.Backfill.SyncSchedule).Info("Backfill watcher running")

	<-ctx.Done()

	appLog.Info("Stopping backfill watcher")
	sched.Stop()
	return nil
}
