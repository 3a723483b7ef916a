// Package main provides the entry point for the edge pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/datasource"
	"github.com/wheels195/cfb-market-edge-sub000/internal/health"
	applogger "github.com/wheels195/cfb-market-edge-sub000/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub000/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub000/internal/pipeline"
	"github.com/wheels195/cfb-market-edge-sub000/internal/repository"
	"github.com/wheels195/cfb-market-edge-sub000/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	season     int
	week       int
	schedule   bool

	logger   *logrus.Logger
	cfg      *config.Config
	modelCfg *config.ModelConfig
	db       *database.DB
	runner   *pipeline.Runner
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&season, "season", 0, "Season year to process")
	rootCmd.Flags().IntVar(&week, "week", 0, "Week number to process")
	rootCmd.Flags().BoolVar(&schedule, "schedule", false, "Run on the configured cron schedule instead of once")
}

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the market edge pipeline for a slate",
	Long: `Syncs games and odds, refreshes model projections, materializes edges
against sportsbook lines, and records bet decisions for one slate.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	modelCfg, err = config.ModelConfigFor(config.ModelVersion(cfg.Model.Version))
	if err != nil {
		return err
	}

	return nil
}

func run() error {
	logger = applogger.NewLogger(cfg.App.LogLevel)
	logger.WithFields(logrus.Fields{
		"environment":   cfg.App.Environment,
		"model_version": cfg.Model.Version,
		"config_hash":   modelCfg.Hash(),
		"version":       Version,
	}).Info("Edge pipeline starting")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	feeds, httpClient := datasource.NewFeeds(cfg, logger)
	defer httpClient.Close()

	repos := pipeline.Repositories{
		Games:       repository.NewPostgresGameRepository(db),
		Odds:        repository.NewPostgresOddsRepository(db),
		Ratings:     repository.NewPostgresRatingRepository(db),
		MarketData:  repository.NewPostgresMarketDataRepository(db),
		Projections: repository.NewPostgresProjectionRepository(db),
		Edges:       repository.NewPostgresEdgeRepository(db),
		Bets:        repository.NewPostgresBetRepository(db),
		Locks:       repository.NewPostgresLockRepository(db),
	}

	runner = pipeline.NewRunner(cfg, modelCfg, feeds, repos, logger)

	if cfg.Metrics.Enabled {
		startMetricsServer()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      logger,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	healthServer.SetReady(true)

	if schedule {
		return runScheduled(ctx, healthServer)
	}
	return runOnce(ctx, healthServer)
}

func runOnce(ctx context.Context, healthServer *health.Server) error {
	if season == 0 || week == 0 {
		return fmt.Errorf("--season and --week are required for a single run")
	}

	result, err := runner.Run(ctx, season, week)
	finishedAt := time.Now().UTC()
	if err != nil {
		healthServer.RecordRun(finishedAt, false, err.Error())
		return err
	}
	healthServer.RecordRun(finishedAt, true, "")

	fmt.Printf("Slate %d week %d: %d games, %d edges, %d approved bets\n",
		result.Season, result.Week, result.Games, result.Edges, len(result.Approved))
	for _, slip := range result.Approved {
		label := string(slip.Side)
		if slip.Team != "" {
			label = slip.Team
		}
		fmt.Printf("  %s %s %s %.1f (edge %.2f, confidence %s)\n",
			slip.GameKey, slip.MarketType, label, slip.LineAtBet, slip.EffectiveEdge, slip.Confidence)
	}
	for _, stepErr := range result.StepErrors {
		fmt.Printf("  step error: %v\n", stepErr)
	}
	return nil
}

func runScheduled(ctx context.Context, healthServer *health.Server) error {
	if cfg.Pipeline.ScheduleCron == "" {
		return fmt.Errorf("pipeline.schedule_cron must be set for --schedule")
	}
	if season == 0 || week == 0 {
		return fmt.Errorf("--season and --week are required; the scheduler re-reads them each run")
	}

	slateFn := func(now time.Time) (int, int) { return season, week }
	runTimeout := 4 * cfg.StepTimeout()

	sched := scheduler.NewScheduler(runner, slateFn, runTimeout, logger)
	if err := sched.SchedulePipeline(cfg.Pipeline.ScheduleCron); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	logger.WithField("next_run", sched.GetNextRun()).Info("Scheduler running, waiting for signal")

	<-ctx.Done()
	healthServer.SetReady(false)
	return sched.Stop()
}

func startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)

	go func() {
		logger.WithField("addr", addr).Info("Metrics server starting")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server error")
		}
	}()
}
