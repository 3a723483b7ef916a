// Package main provides the entry point for rebuilding team ratings.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	applogger "github.com/wheels195/cfb-market-edge-sub000/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
	"github.com/wheels195/cfb-market-edge-sub000/internal/ratings"
	"github.com/wheels195/cfb-market-edge-sub000/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	season      int
	throughWeek int

	logger *logrus.Logger
	cfg    *config.Config
	db     *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&season, "season", 0, "Season to replay")
	rootCmd.Flags().IntVar(&throughWeek, "through-week", 0, "Replay only games before this week (0 = full season)")
}

var rootCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Replay a season through the rating engine",
	Long: `Rebuilds team power ratings and pace from completed game results,
persisting a per-week snapshot trail for reproducible projections.`,
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
			if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}
		return config.Validate(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaySeason(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func replaySeason(ctx context.Context) error {
	if season == 0 {
		return fmt.Errorf("--season is required")
	}

	logger = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	gameRepo := repository.NewPostgresGameRepository(db)
	ratingRepo := repository.NewPostgresRatingRepository(db)

	seasonGames, err := gameRepo.GetSeason(ctx, season)
	if err != nil {
		return fmt.Errorf("failed to load season games: %w", err)
	}

	maxWeek := 0
	completed := make([]models.Game, 0, len(seasonGames))
	for _, g := range seasonGames {
		if !g.IsCompleted() {
			continue
		}
		if throughWeek > 0 && g.Week >= throughWeek {
			continue
		}
		completed = append(completed, *g)
		if g.Week > maxWeek {
			maxWeek = g.Week
		}
	}
	if len(completed) == 0 {
		return fmt.Errorf("no completed games found for season %d", season)
	}

	engine := ratings.NewEngine(cfg.Model.HomeFieldAdvantage)

	// Persist one snapshot per week boundary so projections for any past
	// slate can be reproduced from the trail.
	now := time.Now().UTC()
	state := ratings.NewState(season)
	byWeek := make(map[int][]models.Game)
	for _, g := range completed {
		byWeek[g.Week] = append(byWeek[g.Week], g)
	}

	total := 0
	for week := 0; week <= maxWeek; week++ {
		games, ok := byWeek[week]
		if !ok {
			continue
		}
		state = engine.Replay(season, gamesThrough(byWeek, week))
		snaps := state.Snapshot(week+1, now)
		if err := ratingRepo.UpsertSnapshots(ctx, snaps); err != nil {
			return fmt.Errorf("failed to persist week %d snapshots: %w", week, err)
		}
		total += len(games)
		logger.WithFields(logrus.Fields{
			"season": season,
			"week":   week,
			"games":  len(games),
			"teams":  len(snaps),
		}).Info("Week replayed")
	}

	fmt.Printf("Replayed %d completed games for season %d through week %d\n", total, season, maxWeek)
	return nil
}

// gamesThrough flattens all games up to and including the given week.
func gamesThrough(byWeek map[int][]models.Game, week int) []models.Game {
	var out []models.Game
	for w := 0; w <= week; w++ {
		out = append(out, byWeek[w]...)
	}
	return out
}
