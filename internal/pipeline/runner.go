// Package pipeline orchestrates one end-to-end slate run: sync game data,
// poll odds, refresh projections, then materialize edges and gate them into
// bet decisions. Steps run strictly in sequence; a step failure is recorded
// and the run degrades rather than aborts, with one exception, the
// projection coverage gate, which hard-stops materialization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/datasource"
	"github.com/wheels195/cfb-market-edge-sub000/internal/edge"
	"github.com/wheels195/cfb-market-edge-sub000/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub000/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
	"github.com/wheels195/cfb-market-edge-sub000/internal/projection"
	"github.com/wheels195/cfb-market-edge-sub000/internal/ratings"
	"github.com/wheels195/cfb-market-edge-sub000/internal/repository"
)

// Step names, used in logs, metrics labels, and step error records.
const (
	StepSyncGames      = "sync_games"
	StepPollOdds       = "poll_odds"
	StepRefreshRatings = "refresh_projections"
	StepMaterialize    = "materialize_edges"
)

// StepError records a non-fatal step failure from a run.
type StepError struct {
	Step string
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// RunResult summarizes one completed slate run.
type RunResult struct {
	Season      int
	Week        int
	Games       int
	TicksStored int
	Projections int
	Coverage    float64
	Edges       int
	Approved    []models.BetSlip
	StepErrors  []StepError
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Repositories bundles the persistence interfaces the runner needs.
type Repositories struct {
	Games       repository.GameRepository
	Odds        repository.OddsRepository
	Ratings     repository.RatingRepository
	MarketData  repository.MarketDataRepository
	Projections repository.ProjectionRepository
	Edges       repository.EdgeRepository
	Bets        repository.BetRepository
	Locks       repository.LockRepository
}

// Runner executes slate pipeline runs.
type Runner struct {
	cfg      *config.Config
	modelCfg *config.ModelConfig
	feeds    *datasource.Feeds
	engine   *ratings.Engine
	composer *projection.Composer
	repos    Repositories
	audit    *logger.AuditLogger
	logger   *logrus.Logger
}

// NewRunner creates a runner bound to one frozen model config.
func NewRunner(cfg *config.Config, modelCfg *config.ModelConfig, feeds *datasource.Feeds, repos Repositories, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		modelCfg: modelCfg,
		feeds:    feeds,
		engine:   ratings.NewEngine(cfg.Model.HomeFieldAdvantage),
		composer: projection.NewComposer(modelCfg, log),
		repos:    repos,
		audit:    logger.NewAuditLogger(log),
		logger:   log,
	}
}

// Run executes one full pipeline pass for a slate. Only one run per slate
// may be in flight at a time; a second caller gets ErrSlateLocked.
func (r *Runner) Run(ctx context.Context, season, week int) (*RunResult, error) {
	lockCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Pipeline.SlateLockTimeoutSeconds)*time.Second)
	lock, err := r.repos.Locks.AcquireSlateLock(lockCtx, season, week)
	cancel()
	if err != nil {
		if errors.Is(err, models.ErrSlateLocked) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to acquire slate lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			r.logger.WithError(err).Warn("Failed to release slate lock")
		}
	}()

	result := &RunResult{Season: season, Week: week, StartedAt: time.Now().UTC()}
	log := r.logger.WithFields(logrus.Fields{"season": season, "week": week})
	log.Info("Pipeline run started")

	r.runStep(ctx, result, StepSyncGames, func(ctx context.Context) error {
		return r.syncGames(ctx, season, week, result)
	})

	r.runStep(ctx, result, StepPollOdds, func(ctx context.Context) error {
		return r.pollOdds(ctx, season, week, result)
	})

	r.runStep(ctx, result, StepRefreshRatings, func(ctx context.Context) error {
		return r.refreshProjections(ctx, season, week, result)
	})

	// Coverage gate. Materializing edges against a partially projected
	// slate would silently skew the percentile ranking, so this failure
	// is fatal rather than recorded.
	games, err := r.repos.Games.GetByWeek(ctx, season, week)
	if err != nil {
		metrics.RecordPipelineRun("error")
		return result, fmt.Errorf("failed to load slate games: %w", err)
	}
	projections, err := r.repos.Projections.GetByWeek(ctx, season, week)
	if err != nil {
		metrics.RecordPipelineRun("error")
		return result, fmt.Errorf("failed to load projections: %w", err)
	}

	result.Games = len(games)
	result.Projections = len(projections)
	metrics.SlateGames.Set(float64(len(games)))

	if len(games) > 0 {
		result.Coverage = float64(len(projections)) / float64(len(games))
	}
	metrics.ProjectionCoverage.Set(result.Coverage)

	if len(games) == 0 || result.Coverage < r.cfg.Pipeline.MinProjectionCoverage {
		metrics.RecordPipelineRun("insufficient_coverage")
		log.WithFields(logrus.Fields{
			"coverage": result.Coverage,
			"required": r.cfg.Pipeline.MinProjectionCoverage,
		}).Error("Projection coverage below threshold")
		return result, fmt.Errorf("coverage %.3f below %.3f: %w",
			result.Coverage, r.cfg.Pipeline.MinProjectionCoverage, models.ErrInsufficientCoverage)
	}

	r.runStep(ctx, result, StepMaterialize, func(ctx context.Context) error {
		return r.materializeEdges(ctx, games, projections, result)
	})

	result.FinishedAt = time.Now().UTC()
	metrics.LastRunTimestamp.Set(float64(result.FinishedAt.Unix()))
	if len(result.StepErrors) == 0 {
		metrics.RecordPipelineRun("success")
	} else {
		metrics.RecordPipelineRun("degraded")
	}

	log.WithFields(logrus.Fields{
		"games":       result.Games,
		"projections": result.Projections,
		"edges":       result.Edges,
		"approved":    len(result.Approved),
		"step_errors": len(result.StepErrors),
		"duration":    result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Pipeline run finished")

	return result, nil
}

// runStep executes one step under its own timeout, records failures, and
// lets the run continue.
func (r *Runner) runStep(ctx context.Context, result *RunResult, name string, fn func(context.Context) error) {
	stepCtx, cancel := context.WithTimeout(ctx, r.cfg.StepTimeout())
	defer cancel()

	start := time.Now()
	err := fn(stepCtx)
	metrics.RecordStepDuration(name, time.Since(start).Seconds())

	if err != nil {
		metrics.RecordStepFailure(name)
		result.StepErrors = append(result.StepErrors, StepError{Step: name, Err: err})
		r.logger.WithFields(logrus.Fields{
			"step":  name,
			"error": err,
		}).Error("Pipeline step failed")
	}
}

// syncGames pulls the slate schedule, scores, and weather from the feeds.
// A weather failure degrades to "no weather data" rather than failing the
// step; the decision gate handles the absence.
func (r *Runner) syncGames(ctx context.Context, season, week int, result *RunResult) error {
	games, err := r.feeds.Games.FetchGames(ctx, season, week)
	if err != nil {
		metrics.RecordFeedError(r.feeds.Games.Name())
		return fmt.Errorf("games feed: %w", err)
	}
	if err := r.repos.Games.Upsert(ctx, games); err != nil {
		return fmt.Errorf("failed to upsert games: %w", err)
	}

	weather, err := r.feeds.Weather.FetchWeather(ctx, games)
	if err != nil {
		metrics.RecordFeedError(r.feeds.Weather.Name())
		r.logger.WithError(err).Warn("Weather feed failed, continuing without forecasts")
		return nil
	}
	if err := r.repos.MarketData.UpsertWeather(ctx, weather); err != nil {
		return fmt.Errorf("failed to upsert weather: %w", err)
	}
	return nil
}

// pollOdds captures a fresh tick per game/book/market.
func (r *Runner) pollOdds(ctx context.Context, season, week int, result *RunResult) error {
	ticks, err := r.feeds.Lines.FetchLines(ctx, season, week)
	if err != nil {
		metrics.RecordFeedError(r.feeds.Lines.Name())
		return fmt.Errorf("lines feed: %w", err)
	}
	if err := r.repos.Odds.InsertTicks(ctx, ticks); err != nil {
		return fmt.Errorf("failed to insert ticks: %w", err)
	}
	result.TicksStored = len(ticks)
	return nil
}

// refreshProjections replays the season's completed games through the
// rating engine, projects base lines for the slate, applies the shared
// adjustment factors, and persists the result.
func (r *Runner) refreshProjections(ctx context.Context, season, week int, result *RunResult) error {
	seasonGames, err := r.repos.Games.GetSeason(ctx, season)
	if err != nil {
		return fmt.Errorf("failed to load season games: %w", err)
	}

	completed := make([]models.Game, 0, len(seasonGames))
	for _, g := range seasonGames {
		if g.IsCompleted() && g.Week < week {
			completed = append(completed, *g)
		}
	}
	state := r.engine.Replay(season, completed)

	if err := r.repos.Ratings.UpsertSnapshots(ctx, state.Snapshot(week, time.Now().UTC())); err != nil {
		return fmt.Errorf("failed to persist rating snapshots: %w", err)
	}

	slate := make([]*models.Game, 0)
	for _, g := range seasonGames {
		if g.Week == week {
			slate = append(slate, g)
		}
	}

	projections := make([]models.ModelProjection, 0, len(slate))
	for _, game := range slate {
		base := r.engine.Project(state, *game)

		factors := projection.SharedFactors(r.sharedFactorInput(ctx, game, seasonGames))

		proj := base
		if base.SpreadHome != nil {
			spread, _ := r.composer.Compose(models.MarketTypeSpread, *base.SpreadHome, factors)
			proj.SpreadHome = &spread
		}
		if base.TotalPoints != nil {
			total, _ := r.composer.Compose(models.MarketTypeTotal, *base.TotalPoints, factors)
			proj.TotalPoints = &total
		}
		proj.ModelVersion = string(r.modelCfg.Version)
		proj.ConfigHash = r.modelCfg.Hash()
		projections = append(projections, proj)
	}

	if err := r.repos.Projections.Upsert(ctx, projections); err != nil {
		return fmt.Errorf("failed to upsert projections: %w", err)
	}
	return nil
}

// sharedFactorInput gathers the book-independent provider inputs for one
// game. Every lookup failure degrades to an absent factor.
func (r *Runner) sharedFactorInput(ctx context.Context, game *models.Game, seasonGames []*models.Game) projection.SharedFactorInput {
	in := projection.SharedFactorInput{}

	if weather, err := r.repos.MarketData.GetWeather(ctx, game.HomeTeam, game.AwayTeam); err == nil {
		in.Weather = weather
	} else if !errors.Is(err, models.ErrNotFound) {
		r.logger.WithError(err).WithField("event_id", game.ID).Warn("Weather lookup failed")
	}

	homeInjuries, homeErr := r.repos.MarketData.GetInjuries(ctx, game.HomeTeam)
	awayInjuries, awayErr := r.repos.MarketData.GetInjuries(ctx, game.AwayTeam)
	if homeErr == nil && awayErr == nil {
		in.Injuries = &projection.InjuryInput{HomeInjuries: homeInjuries, AwayInjuries: awayInjuries}
	}

	in.Situational = &projection.SituationalInput{
		Game:         *game,
		HomeRestDays: restDays(seasonGames, game.HomeTeam, game.Kickoff),
		AwayRestDays: restDays(seasonGames, game.AwayTeam, game.Kickoff),
		IsRivalry:    projection.IsRivalryGame(game.HomeTeam, game.AwayTeam),
	}

	homeCont, homeContErr := r.repos.MarketData.GetRosterContinuity(ctx, game.HomeTeam, game.Season)
	awayCont, awayContErr := r.repos.MarketData.GetRosterContinuity(ctx, game.AwayTeam, game.Season)
	if homeContErr == nil && awayContErr == nil {
		in.Roster = &projection.PlayerFactorInput{Home: homeCont, Away: awayCont, Week: game.Week}
	}

	return in
}

// restDays computes days since a team's previous game, defaulting to a
// standard week when no earlier game exists.
func restDays(seasonGames []*models.Game, team string, kickoff time.Time) int {
	var last time.Time
	for _, g := range seasonGames {
		if g.Kickoff.Before(kickoff) && (g.HomeTeam == team || g.AwayTeam == team) {
			if g.Kickoff.After(last) {
				last = g.Kickoff
			}
		}
	}
	if last.IsZero() {
		return 7
	}
	return int(kickoff.Sub(last).Hours() / 24)
}

// slateEdge pairs an edge with the context the decision gate needs.
type slateEdge struct {
	result     *models.EdgeResult
	game       *models.Game
	line       *models.MarketLine
	breakdown  models.ComponentBreakdown
	hasWeather bool
	homeQB     models.QBStatusKind
	awayQB     models.QBStatusKind
}

// materializeEdges builds every edge for the slate, ranks them as one
// population, runs the decision gate, and persists records and approved
// bets. Ranking waits until every edge exists; percentile is a property of
// the whole slate.
func (r *Runner) materializeEdges(ctx context.Context, games []*models.Game, projections []*models.ModelProjection, result *RunResult) error {
	projByEvent := make(map[int64]*models.ModelProjection, len(projections))
	for _, p := range projections {
		projByEvent[p.EventID] = p
	}
	gameByEvent := make(map[int64]*models.Game, len(games))
	eventIDs := make([]int64, 0, len(games))
	for _, g := range games {
		gameByEvent[g.ID] = g
		eventIDs = append(eventIDs, g.ID)
	}

	lines, err := r.repos.Odds.GetMarketLines(ctx, eventIDs)
	if err != nil {
		return fmt.Errorf("failed to load market lines: %w", err)
	}

	thresholds := projection.MovementThresholds{
		SignificantPoints:    r.modelCfg.Movement.SignificantPoints,
		HighConfidencePoints: r.modelCfg.Movement.HighConfidencePoints,
		SteamWindow:          r.modelCfg.Movement.SteamWindow,
		Damping:              r.modelCfg.Movement.Damping,
	}

	uncertaintyByEvent := make(map[int64]float64, len(games))
	slate := make([]*slateEdge, 0, len(lines))

	for _, line := range lines {
		game, ok := gameByEvent[line.EventID]
		if !ok {
			continue
		}
		proj, ok := projByEvent[line.EventID]
		if !ok {
			continue
		}
		modelLine, ok := proj.LineFor(line.MarketType)
		if !ok {
			continue
		}

		homeQB, awayQB := r.qbStatuses(ctx, game)

		uncertainty, cached := uncertaintyByEvent[line.EventID]
		if !cached {
			uncertainty = r.gameUncertainty(ctx, game, homeQB, awayQB)
			uncertaintyByEvent[line.EventID] = uncertainty
		}

		// The movement factor is the one book-dependent adjustment, so
		// it lands here rather than in the stored projection.
		finalLine := modelLine
		var applied []models.AdjustmentFactor
		signal := projection.DetectMovement(line, game.Kickoff, thresholds)
		if factor, ok := signal.Factor(thresholds.Damping); ok {
			finalLine, _ = r.composer.Compose(line.MarketType, modelLine, []models.AdjustmentFactor{factor})
			applied = append(applied, factor)
		}

		res := edge.BuildEdge(line.EventID, line.Sportsbook, line.MarketType, line.CurrentLine, finalLine, uncertainty, r.modelCfg)

		weather, werr := r.repos.MarketData.GetWeather(ctx, game.HomeTeam, game.AwayTeam)
		hasWeather := werr == nil && weather != nil

		slate = append(slate, &slateEdge{
			result: &res,
			game:   game,
			line:   line,
			breakdown: models.ComponentBreakdown{
				BaseLine:    modelLine,
				Adjustments: applied,
				FinalLine:   finalLine,
			},
			hasWeather: hasWeather,
			homeQB:     homeQB,
			awayQB:     awayQB,
		})
	}

	// Join barrier: every edge exists before any percentile is assigned.
	ranked := make([]*models.EdgeResult, len(slate))
	for i, se := range slate {
		ranked[i] = se.result
	}
	edge.RankSlate(ranked)

	records := make([]*models.EdgeRecord, 0, len(slate))
	for _, se := range slate {
		decision := edge.DecideBet(edge.DecisionInput{
			Edge:           *se.result,
			HomeQB:         se.homeQB,
			AwayQB:         se.awayQB,
			HasMarketData:  true,
			HasWeatherData: se.hasWeather,
			Week:           se.game.Week,
		}, r.modelCfg)

		metrics.RecordEdge(string(se.result.MarketType), se.result.EffectiveEdge)

		record := &models.EdgeRecord{
			EdgeResult: *se.result,
			Qualifies:  decision.ShouldBet,
			Reason:     decision.Reason,
			Warnings:   decision.Warnings,
			Breakdown:  se.breakdown,
		}
		records = append(records, record)

		if decision.ShouldBet {
			slip := r.approve(ctx, se, decision)
			result.Approved = append(result.Approved, *slip)
		} else {
			metrics.RecordRejection(string(decision.Rule))
			r.audit.LogBetRejection(se.result.EventID, se.result.Sportsbook, se.result.MarketType, decision.Reason)
		}
	}

	if err := r.repos.Edges.Upsert(ctx, records); err != nil {
		return fmt.Errorf("failed to upsert edges: %w", err)
	}
	result.Edges = len(records)
	return nil
}

// approve turns a qualifying edge into a persisted bet record and slip.
func (r *Runner) approve(ctx context.Context, se *slateEdge, decision models.BetDecision) *models.BetSlip {
	slip := &models.BetSlip{
		GameKey:       se.game.Key(),
		Side:          se.result.Side,
		MarketType:    se.result.MarketType,
		LineAtBet:     se.line.CurrentLine,
		EffectiveEdge: se.result.EffectiveEdge,
		Uncertainty:   se.result.Uncertainty,
		Percentile:    se.result.Percentile,
		Confidence:    decision.Confidence,
		Warnings:      decision.Warnings,
	}
	switch se.result.Side {
	case models.BetSideHome:
		slip.Team = se.game.HomeTeam
	case models.BetSideAway:
		slip.Team = se.game.AwayTeam
	}

	bet := &models.BetRecord{
		ID:            uuid.New(),
		EventID:       se.result.EventID,
		GameKey:       se.game.Key(),
		Season:        se.game.Season,
		Week:          se.game.Week,
		Sportsbook:    se.result.Sportsbook,
		MarketType:    se.result.MarketType,
		Side:          se.result.Side,
		LineAtBet:     se.line.CurrentLine,
		PriceAmerican: se.line.CurrentPrice,
		EffectiveEdge: se.result.EffectiveEdge,
		Uncertainty:   se.result.Uncertainty,
		Percentile:    se.result.Percentile,
		Confidence:    decision.Confidence,
		Warnings:      decision.Warnings,
		ConfigHash:    se.result.ConfigHash,
		PlacedAt:      time.Now().UTC(),
	}

	if err := r.repos.Bets.Create(ctx, bet); err != nil {
		r.logger.WithError(err).WithField("event_id", bet.EventID).Error("Failed to persist bet record")
	} else {
		metrics.RecordApproval()
		r.audit.LogBetApproval(slip, bet.ConfigHash)
	}

	return slip
}

// qbStatuses loads both teams' pre-kickoff QB designations. Records stamped
// at or after kickoff are leakage and read as unknown.
func (r *Runner) qbStatuses(ctx context.Context, game *models.Game) (models.QBStatusKind, models.QBStatusKind) {
	home := models.QBUnknown
	away := models.QBUnknown

	if st, err := r.repos.MarketData.GetQBStatus(ctx, game.HomeTeam, game.Season, game.Week); err == nil && st.ValidFor(game.Kickoff) {
		home = st.Status
	}
	if st, err := r.repos.MarketData.GetQBStatus(ctx, game.AwayTeam, game.Season, game.Week); err == nil && st.ValidFor(game.Kickoff) {
		away = st.Status
	}
	return home, away
}

// gameUncertainty assembles the uncertainty inputs for one game.
func (r *Runner) gameUncertainty(ctx context.Context, game *models.Game, homeQB, awayQB models.QBStatusKind) float64 {
	in := edge.UncertaintyInput{
		Week:   game.Week,
		HomeQB: homeQB,
		AwayQB: awayQB,
	}
	if cont, err := r.repos.MarketData.GetRosterContinuity(ctx, game.HomeTeam, game.Season); err == nil {
		in.HomeContinuity = cont
		in.HomeNewCoach = cont.NewHeadCoach
	}
	if cont, err := r.repos.MarketData.GetRosterContinuity(ctx, game.AwayTeam, game.Season); err == nil {
		in.AwayContinuity = cont
		in.AwayNewCoach = cont.NewHeadCoach
	}
	return edge.ComputeUncertainty(in, r.modelCfg.Uncertainty)
}
