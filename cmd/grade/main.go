// Package main provides the entry point for bet grading and monitoring.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	applogger "github.com/wheels195/cfb-market-edge-sub000/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub000/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
	"github.com/wheels195/cfb-market-edge-sub000/internal/monitor"
	"github.com/wheels195/cfb-market-edge-sub000/internal/repository"
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
	exportPath string

	logger *logrus.Logger
	cfg    *config.Config
	db     *database.DB

	gameRepo repository.GameRepository
	oddsRepo repository.OddsRepository
	betRepo  repository.BetRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	reportCmd.Flags().IntVar(&season, "season", 0, "Season to report on")
	exportCmd.Flags().IntVar(&season, "season", 0, "Season to export")
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "feedback.ndjson", "Output file for training feedback")
}

var rootCmd = &cobra.Command{
	Use:     "grade",
	Short:   "Grade pending bets and monitor outcomes",
	Long:    `Settles pending bets against final scores, captures closing lines for CLV, and reports performance with threshold alerts.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Grade all pending bets with final scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return gradePending(cmd.Context())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the performance report and evaluate alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export graded bets as training feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportFeedback(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(runCmd, reportCmd, exportCmd)

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

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	gameRepo = repository.NewPostgresGameRepository(db)
	oddsRepo = repository.NewPostgresOddsRepository(db)
	betRepo = repository.NewPostgresBetRepository(db)
	return nil
}

// gradePending settles every pending bet whose game has a final score. Bets
// on games still in progress are left alone for the next run.
func gradePending(ctx context.Context) error {
	pending, err := betRepo.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending bets: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending bets to grade")
		return nil
	}

	audit := applogger.NewAuditLogger(logger)
	gameCache := make(map[string]map[int64]*models.Game)
	graded := 0

	for _, bet := range pending {
		weekKey := fmt.Sprintf("%d-%d", bet.Season, bet.Week)
		games, ok := gameCache[weekKey]
		if !ok {
			weekGames, err := gameRepo.GetCompletedByWeek(ctx, bet.Season, bet.Week)
			if err != nil {
				return fmt.Errorf("failed to load completed games: %w", err)
			}
			games = make(map[int64]*models.Game, len(weekGames))
			for _, g := range weekGames {
				games[g.ID] = g
			}
			gameCache[weekKey] = games
		}

		game, ok := games[bet.EventID]
		if !ok {
			continue // not final yet
		}

		closing, err := oddsRepo.GetClosingLine(ctx, bet.EventID, bet.Sportsbook, bet.MarketType, game.Kickoff)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			logger.WithError(err).WithField("bet_id", bet.ID).Warn("Closing line lookup failed")
		}

		if err := monitor.GradeBet(bet, game, closing); err != nil {
			logger.WithError(err).WithField("bet_id", bet.ID).Error("Failed to grade bet")
			continue
		}
		if err := betRepo.Update(ctx, bet); err != nil {
			return fmt.Errorf("failed to persist graded bet %s: %w", bet.ID, err)
		}

		metrics.RecordGradedBet(string(*bet.Result))
		audit.LogGrading(bet)
		graded++
	}

	fmt.Printf("Graded %d of %d pending bets\n", graded, len(pending))
	return nil
}

func printReport(ctx context.Context) error {
	if season == 0 {
		return fmt.Errorf("--season is required")
	}

	bets, err := betRepo.GetGraded(ctx, season)
	if err != nil {
		return fmt.Errorf("failed to load graded bets: %w", err)
	}

	report := monitor.NewAggregator(logger).Aggregate(bets)
	metrics.AverageCLV.Set(report.AverageCLV)

	fmt.Printf("Season %d performance: %d bets across %d weeks\n", season, report.TotalBets, report.DistinctWeeks)
	fmt.Printf("  Average CLV: %+.2f points (%d bets with closing lines)\n", report.AverageCLV, report.CLVSample)
	fmt.Printf("  Edge persistence: %.1f%%\n", report.Persistence*100)
	for _, band := range []monitor.PercentileBand{monitor.BandTop5, monitor.BandTop10, monitor.BandTop20, monitor.BandAll} {
		stats, ok := report.ByPercentile[band]
		if !ok {
			continue
		}
		fmt.Printf("  %-5s: %3d bets, win rate %.1f%%, ROI %+.1f%%\n",
			band, stats.Bets, stats.WinRate*100, stats.ROI*100)
	}
	for _, rng := range []string{"early", "late"} {
		if stats, ok := report.ByWeekRange[rng]; ok {
			fmt.Printf("  %-5s: %3d bets, win rate %.1f%%, ROI %+.1f%%\n",
				rng, stats.Bets, stats.WinRate*100, stats.ROI*100)
		}
	}

	evaluator := monitor.NewAlertEvaluator(cfg.Monitoring, logger)
	if !evaluator.HasMinimumSample(report) {
		fmt.Printf("Sample below minimum (%d bets / %d weeks), alerts suppressed\n",
			cfg.Monitoring.MinSampleBets, cfg.Monitoring.MinSampleWeeks)
		return nil
	}

	audit := applogger.NewAuditLogger(logger)
	alerts := evaluator.Evaluate(report)
	for _, alert := range alerts {
		metrics.RecordAlert(string(alert.Category))
		audit.LogAlert(&alert)
		fmt.Printf("ALERT [%s/%s]: %s\n", alert.Type, alert.Category, alert.Message)
	}
	if len(alerts) == 0 {
		fmt.Println("All monitoring metrics within thresholds")
	}
	return nil
}

func exportFeedback(ctx context.Context) error {
	if season == 0 {
		return fmt.Errorf("--season is required")
	}

	bets, err := betRepo.GetGraded(ctx, season)
	if err != nil {
		return fmt.Errorf("failed to load graded bets: %w", err)
	}

	f, err := os.Create(exportPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	exported, err := monitor.NewFeedbackExporter(f, logger).Export(bets)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d feedback rows to %s\n", exported, exportPath)
	return nil
}
