package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/datasource"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
	"github.com/wheels195/cfb-market-edge-sub000/internal/repository"
)

// --- repository mocks ---

type mockGameRepo struct{ mock.Mock }

func (m *mockGameRepo) Upsert(ctx context.Context, games []models.Game) error {
	return m.Called(ctx, games).Error(0)
}

func (m *mockGameRepo) GetByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGameRepo) GetCompletedByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGameRepo) GetSeason(ctx context.Context, season int) ([]*models.Game, error) {
	args := m.Called(ctx, season)
	if v := args.Get(0); v != nil {
		return v.([]*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOddsRepo struct{ mock.Mock }

func (m *mockOddsRepo) InsertTicks(ctx context.Context, ticks []models.OddsTick) error {
	return m.Called(ctx, ticks).Error(0)
}

func (m *mockOddsRepo) GetTicks(ctx context.Context, eventID int64, sportsbook string, market models.MarketType) ([]models.OddsTick, error) {
	args := m.Called(ctx, eventID, sportsbook, market)
	if v := args.Get(0); v != nil {
		return v.([]models.OddsTick), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOddsRepo) GetMarketLines(ctx context.Context, eventIDs []int64) ([]*models.MarketLine, error) {
	args := m.Called(ctx, eventIDs)
	if v := args.Get(0); v != nil {
		return v.([]*models.MarketLine), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOddsRepo) GetClosingLine(ctx context.Context, eventID int64, sportsbook string, market models.MarketType, kickoff time.Time) (*float64, error) {
	args := m.Called(ctx, eventID, sportsbook, market, kickoff)
	if v := args.Get(0); v != nil {
		return v.(*float64), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRatingRepo struct{ mock.Mock }

func (m *mockRatingRepo) UpsertSnapshots(ctx context.Context, snaps []models.TeamRatingSnapshot) error {
	return m.Called(ctx, snaps).Error(0)
}

func (m *mockRatingRepo) GetSnapshots(ctx context.Context, season, week int) ([]models.TeamRatingSnapshot, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]models.TeamRatingSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMarketDataRepo struct{ mock.Mock }

func (m *mockMarketDataRepo) UpsertWeather(ctx context.Context, records []models.WeatherRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *mockMarketDataRepo) GetWeather(ctx context.Context, homeTeam, awayTeam string) (*models.WeatherRecord, error) {
	args := m.Called(ctx, homeTeam, awayTeam)
	if v := args.Get(0); v != nil {
		return v.(*models.WeatherRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarketDataRepo) UpsertInjuries(ctx context.Context, records []models.InjuryRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *mockMarketDataRepo) GetInjuries(ctx context.Context, team string) ([]models.InjuryRecord, error) {
	args := m.Called(ctx, team)
	if v := args.Get(0); v != nil {
		return v.([]models.InjuryRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarketDataRepo) UpsertQBStatus(ctx context.Context, status models.QBStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *mockMarketDataRepo) GetQBStatus(ctx context.Context, team string, season, week int) (*models.QBStatus, error) {
	args := m.Called(ctx, team, season, week)
	if v := args.Get(0); v != nil {
		return v.(*models.QBStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMarketDataRepo) GetRosterContinuity(ctx context.Context, team string, season int) (*models.RosterContinuity, error) {
	args := m.Called(ctx, team, season)
	if v := args.Get(0); v != nil {
		return v.(*models.RosterContinuity), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProjectionRepo struct{ mock.Mock }

func (m *mockProjectionRepo) Upsert(ctx context.Context, projections []models.ModelProjection) error {
	return m.Called(ctx, projections).Error(0)
}

func (m *mockProjectionRepo) GetByWeek(ctx context.Context, season, week int) ([]*models.ModelProjection, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]*models.ModelProjection), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEdgeRepo struct{ mock.Mock }

func (m *mockEdgeRepo) Upsert(ctx context.Context, edges []*models.EdgeRecord) error {
	return m.Called(ctx, edges).Error(0)
}

func (m *mockEdgeRepo) GetByWeek(ctx context.Context, season, week int) ([]*models.EdgeRecord, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]*models.EdgeRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBetRepo struct{ mock.Mock }

func (m *mockBetRepo) Create(ctx context.Context, bet *models.BetRecord) error {
	return m.Called(ctx, bet).Error(0)
}

func (m *mockBetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.BetRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBetRepo) GetPending(ctx context.Context) ([]*models.BetRecord, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.BetRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBetRepo) GetGraded(ctx context.Context, season int) ([]*models.BetRecord, error) {
	args := m.Called(ctx, season)
	if v := args.Get(0); v != nil {
		return v.([]*models.BetRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBetRepo) Update(ctx context.Context, bet *models.BetRecord) error {
	return m.Called(ctx, bet).Error(0)
}

type mockSlateLock struct{ mock.Mock }

func (m *mockSlateLock) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockLockRepo struct{ mock.Mock }

func (m *mockLockRepo) AcquireSlateLock(ctx context.Context, season, week int) (repository.SlateLock, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.(repository.SlateLock), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- feed mocks ---

type mockGameFeed struct{ mock.Mock }

func (m *mockGameFeed) FetchGames(ctx context.Context, season, week int) ([]models.Game, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGameFeed) Name() string { return "mock_games" }

type mockLineFeed struct{ mock.Mock }

func (m *mockLineFeed) FetchLines(ctx context.Context, season, week int) ([]models.OddsTick, error) {
	args := m.Called(ctx, season, week)
	if v := args.Get(0); v != nil {
		return v.([]models.OddsTick), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLineFeed) Name() string { return "mock_lines" }

type mockWeatherFeed struct{ mock.Mock }

func (m *mockWeatherFeed) FetchWeather(ctx context.Context, games []models.Game) ([]models.WeatherRecord, error) {
	args := m.Called(ctx, games)
	if v := args.Get(0); v != nil {
		return v.([]models.WeatherRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWeatherFeed) Name() string { return "mock_weather" }

// --- fixtures ---

type runnerFixture struct {
	runner     *Runner
	games      *mockGameRepo
	odds       *mockOddsRepo
	ratings    *mockRatingRepo
	marketData *mockMarketDataRepo
	projs      *mockProjectionRepo
	edges      *mockEdgeRepo
	bets       *mockBetRepo
	locks      *mockLockRepo
	gameFeed   *mockGameFeed
	lineFeed   *mockLineFeed
	weather    *mockWeatherFeed
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	cfg := &config.Config{
		Model: config.ModelSettings{Version: string(config.ModelVersionV2), HomeFieldAdvantage: 2.5},
		Pipeline: config.PipelineConfig{
			StepTimeoutSeconds:      30,
			SlateLockTimeoutSeconds: 10,
			MinProjectionCoverage:   0.95,
		},
	}
	modelCfg, err := config.ModelConfigFor(config.ModelVersionV2)
	require.NoError(t, err)

	f := &runnerFixture{
		games:      &mockGameRepo{},
		odds:       &mockOddsRepo{},
		ratings:    &mockRatingRepo{},
		marketData: &mockMarketDataRepo{},
		projs:      &mockProjectionRepo{},
		edges:      &mockEdgeRepo{},
		bets:       &mockBetRepo{},
		locks:      &mockLockRepo{},
		gameFeed:   &mockGameFeed{},
		lineFeed:   &mockLineFeed{},
		weather:    &mockWeatherFeed{},
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	feeds := &datasource.Feeds{Games: f.gameFeed, Lines: f.lineFeed, Weather: f.weather}
	repos := Repositories{
		Games:       f.games,
		Odds:        f.odds,
		Ratings:     f.ratings,
		MarketData:  f.marketData,
		Projections: f.projs,
		Edges:       f.edges,
		Bets:        f.bets,
		Locks:       f.locks,
	}
	f.runner = NewRunner(cfg, modelCfg, feeds, repos, log)
	return f
}

func slateWeek8(n int) []*models.Game {
	kickoff := time.Date(2024, 10, 19, 23, 30, 0, 0, time.UTC)
	games := make([]*models.Game, 0, n)
	for i := 1; i <= n; i++ {
		games = append(games, &models.Game{
			ID:       int64(i),
			Season:   2024,
			Week:     8,
			HomeTeam: fmt.Sprintf("Home %d", i),
			AwayTeam: fmt.Sprintf("Away %d", i),
			Kickoff:  kickoff,
		})
	}
	return games
}

// --- tests ---

func TestRunSlateLocked(t *testing.T) {
	f := newRunnerFixture(t)
	f.locks.On("AcquireSlateLock", mock.Anything, 2024, 8).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "lock acquisition must carry the configured timeout")
	}).Return(nil, models.ErrSlateLocked)

	_, err := f.runner.Run(context.Background(), 2024, 8)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSlateLocked))
	f.gameFeed.AssertNotCalled(t, "FetchGames", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunLockAcquireError(t *testing.T) {
	f := newRunnerFixture(t)
	f.locks.On("AcquireSlateLock", mock.Anything, 2024, 8).Return(nil, errors.New("connection refused"))

	_, err := f.runner.Run(context.Background(), 2024, 8)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "slate lock")
}

func TestRunInsufficientCoverage(t *testing.T) {
	f := newRunnerFixture(t)
	lock := &mockSlateLock{}
	lock.On("Release", mock.Anything).Return(nil)
	f.locks.On("AcquireSlateLock", mock.Anything, 2024, 8).Return(lock, nil)

	feedDown := errors.New("feed unavailable")
	f.gameFeed.On("FetchGames", mock.Anything, 2024, 8).Return(nil, feedDown)
	f.lineFeed.On("FetchLines", mock.Anything, 2024, 8).Return(nil, feedDown)
	f.games.On("GetSeason", mock.Anything, 2024).Return(nil, feedDown)

	// Two slate games but only one projection survives.
	games := slateWeek8(2)
	spread := -3.0
	f.games.On("GetByWeek", mock.Anything, 2024, 8).Return(games, nil)
	f.projs.On("GetByWeek", mock.Anything, 2024, 8).Return([]*models.ModelProjection{
		{EventID: 1, Season: 2024, Week: 8, SpreadHome: &spread},
	}, nil)

	result, err := f.runner.Run(context.Background(), 2024, 8)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientCoverage))
	require.NotNil(t, result)
	assert.InDelta(t, 0.5, result.Coverage, 1e-9)
	assert.Len(t, result.StepErrors, 3, "feed and replay failures are recorded, not fatal")
	f.edges.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	// Release happens on the handle acquire returned, even on a failed run.
	lock.AssertNumberOfCalls(t, "Release", 1)
}

func TestRunApprovesTopRankedEdge(t *testing.T) {
	f := newRunnerFixture(t)
	lock := &mockSlateLock{}
	lock.On("Release", mock.Anything).Return(nil)
	f.locks.On("AcquireSlateLock", mock.Anything, 2024, 8).Return(lock, nil)

	// A slate needs at least 20 edges for its strongest one to land inside
	// the top-five-percent gate.
	slatePtr := slateWeek8(20)
	slate := make([]models.Game, len(slatePtr))
	for i, g := range slatePtr {
		slate[i] = *g
	}

	f.gameFeed.On("FetchGames", mock.Anything, 2024, 8).Return(slate, nil)
	f.games.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.weather.On("FetchWeather", mock.Anything, mock.Anything).Return(nil, nil)
	f.marketData.On("UpsertWeather", mock.Anything, mock.Anything).Return(nil)

	f.lineFeed.On("FetchLines", mock.Anything, 2024, 8).Return([]models.OddsTick{}, nil)
	f.odds.On("InsertTicks", mock.Anything, mock.Anything).Return(nil)

	f.games.On("GetSeason", mock.Anything, 2024).Return(slatePtr, nil)
	f.ratings.On("UpsertSnapshots", mock.Anything, mock.Anything).Return(nil)
	f.projs.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	// Every per-game data lookup degrades to absence.
	f.marketData.On("GetWeather", mock.Anything, mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	f.marketData.On("GetInjuries", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	f.marketData.On("GetQBStatus", mock.Anything, mock.Anything, 2024, 8).Return(nil, models.ErrNotFound)
	f.marketData.On("GetRosterContinuity", mock.Anything, mock.Anything, 2024).Return(nil, models.ErrNotFound)

	f.games.On("GetByWeek", mock.Anything, 2024, 8).Return(slatePtr, nil)

	// Game 1 carries a large model-vs-market gap; the rest sit on the line.
	projections := make([]*models.ModelProjection, 0, len(slatePtr))
	lines := make([]*models.MarketLine, 0, len(slatePtr))
	for _, g := range slatePtr {
		model := -3.0
		if g.ID == 1 {
			model = -10.0
		}
		spread := model
		projections = append(projections, &models.ModelProjection{
			EventID: g.ID, Season: 2024, Week: 8, SpreadHome: &spread,
		})
		market := -3.0
		lines = append(lines, &models.MarketLine{
			EventID:      g.ID,
			Sportsbook:   "draftkings",
			MarketType:   models.MarketTypeSpread,
			OpenLine:     market,
			CurrentLine:  market,
			CurrentPrice: -110,
			OpenedAt:     g.Kickoff.Add(-72 * time.Hour),
			CapturedAt:   g.Kickoff.Add(-6 * time.Hour),
		})
	}
	f.projs.On("GetByWeek", mock.Anything, 2024, 8).Return(projections, nil)
	f.odds.On("GetMarketLines", mock.Anything, mock.Anything).Return(lines, nil)

	f.edges.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	var created []*models.BetRecord
	f.bets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*models.BetRecord))
	}).Return(nil)

	result, err := f.runner.Run(context.Background(), 2024, 8)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.StepErrors)
	assert.Equal(t, 20, result.Games)
	assert.Equal(t, 20, result.Edges)

	// Market -3 against a -10 model line is a capped +6 raw edge on the
	// home side; with unknown QBs in week 8 the uncertainty is 0.25, so
	// the effective edge is 4.5 and it ranks first at percentile 0.05.
	require.Len(t, result.Approved, 1)
	slip := result.Approved[0]
	assert.Equal(t, models.BetSideHome, slip.Side)
	assert.Equal(t, "Home 1", slip.Team)
	assert.InDelta(t, -3.0, slip.LineAtBet, 1e-9)
	assert.InDelta(t, 4.5, slip.EffectiveEdge, 1e-9)
	assert.InDelta(t, 0.05, slip.Percentile, 1e-9)
	assert.Equal(t, models.ConfidenceHigh, slip.Confidence)

	require.Len(t, created, 1)
	assert.Equal(t, int64(1), created[0].EventID)
	assert.Equal(t, -110, created[0].PriceAmerican)
	assert.NotEmpty(t, created[0].ConfigHash)
	lock.AssertNumberOfCalls(t, "Release", 1)
}

func TestGameUncertaintyIncludesCoachChange(t *testing.T) {
	f := newRunnerFixture(t)
	game := slateWeek8(1)[0]

	f.marketData.On("GetRosterContinuity", mock.Anything, game.HomeTeam, 2024).
		Return(&models.RosterContinuity{Team: game.HomeTeam, Season: 2024, ReturningProduction: 1.0, NewHeadCoach: true}, nil)
	f.marketData.On("GetRosterContinuity", mock.Anything, game.AwayTeam, 2024).
		Return(&models.RosterContinuity{Team: game.AwayTeam, Season: 2024, ReturningProduction: 1.0}, nil)

	u := f.runner.gameUncertainty(context.Background(), game, models.QBConfirmed, models.QBConfirmed)

	// Week 8 contributes 0.05 and the home coaching change another 0.05.
	assert.InDelta(t, 0.10, u, 1e-9)
}
