package monitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

func intPtr(v int) *int { return &v }

func finalGame(id int64, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID:        id,
		Season:    2024,
		Week:      8,
		HomeTeam:  "Georgia",
		AwayTeam:  "Texas",
		Kickoff:   time.Date(2024, 10, 19, 23, 30, 0, 0, time.UTC),
		HomeScore: intPtr(homeScore),
		AwayScore: intPtr(awayScore),
	}
}

func pendingBet(market models.MarketType, side models.BetSide, line float64, price int) *models.BetRecord {
	return &models.BetRecord{
		ID:            uuid.New(),
		EventID:       42,
		Season:        2024,
		Week:          8,
		Sportsbook:    "draftkings",
		MarketType:    market,
		Side:          side,
		LineAtBet:     line,
		PriceAmerican: price,
	}
}

func TestGradeBetSpreadOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		side      models.BetSide
		line      float64
		homeScore int
		awayScore int
		want      models.BetResult
	}{
		{"home favorite covers", models.BetSideHome, -7.0, 31, 17, models.BetResultWin},
		{"home favorite fails to cover", models.BetSideHome, -7.0, 24, 21, models.BetResultLoss},
		{"push on exact margin", models.BetSideHome, -7.0, 28, 21, models.BetResultPush},
		{"away side covers", models.BetSideAway, -7.0, 24, 21, models.BetResultWin},
		{"home dog wins outright", models.BetSideHome, 3.5, 20, 17, models.BetResultWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := pendingBet(models.MarketTypeSpread, tt.side, tt.line, -110)
			game := finalGame(42, tt.homeScore, tt.awayScore)

			require.NoError(t, GradeBet(bet, game, nil))
			require.NotNil(t, bet.Result)
			assert.Equal(t, tt.want, *bet.Result)
			assert.Equal(t, tt.homeScore, *bet.HomeScore)
			assert.Equal(t, tt.awayScore, *bet.AwayScore)
		})
	}
}

func TestGradeBetTotalOutcomes(t *testing.T) {
	tests := []struct {
		name string
		side models.BetSide
		line float64
		want models.BetResult
	}{
		{"over hits", models.BetSideOver, 48.5, models.BetResultWin},
		{"under misses", models.BetSideUnder, 48.5, models.BetResultLoss},
		{"push on exact total", models.BetSideOver, 51.0, models.BetResultPush},
	}

	// 31 + 20 = 51 total points.
	game := finalGame(42, 31, 20)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := pendingBet(models.MarketTypeTotal, tt.side, tt.line, -110)
			require.NoError(t, GradeBet(bet, game, nil))
			assert.Equal(t, tt.want, *bet.Result)
		})
	}
}

func TestGradeBetProfitLoss(t *testing.T) {
	tests := []struct {
		name  string
		price int
		side  models.BetSide
		line  float64
		want  float64
	}{
		{"standard juice win", -110, models.BetSideHome, -7.0, 0.9091},
		{"plus money win", 150, models.BetSideHome, -7.0, 1.5},
		{"missing price treated as even", 0, models.BetSideHome, -7.0, 1.0},
		{"loss is one unit", -110, models.BetSideAway, -7.0, -1.0},
		{"push returns stake", -110, models.BetSideHome, -14.0, 0.0},
	}

	game := finalGame(42, 31, 17) // margin 14

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet := pendingBet(models.MarketTypeSpread, tt.side, tt.line, tt.price)
			require.NoError(t, GradeBet(bet, game, nil))
			require.NotNil(t, bet.ProfitLoss)
			assert.InDelta(t, tt.want, *bet.ProfitLoss, 1e-4)
		})
	}
}

func TestGradeBetCapturesClosingLine(t *testing.T) {
	bet := pendingBet(models.MarketTypeSpread, models.BetSideHome, -7.0, -110)
	closing := -8.5

	require.NoError(t, GradeBet(bet, finalGame(42, 31, 17), &closing))
	require.True(t, bet.HasClosingLine())
	assert.InDelta(t, closing, *bet.ClosingLine, 1e-9)

	clv, ok := CLV(bet)
	require.True(t, ok)
	assert.InDelta(t, 1.5, clv, 1e-9)
}

func TestGradeBetRejectsDoubleGrading(t *testing.T) {
	bet := pendingBet(models.MarketTypeSpread, models.BetSideHome, -7.0, -110)
	game := finalGame(42, 31, 17)

	require.NoError(t, GradeBet(bet, game, nil))
	err := GradeBet(bet, game, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already graded")
}

func TestGradeBetRejectsIncompleteGame(t *testing.T) {
	bet := pendingBet(models.MarketTypeSpread, models.BetSideHome, -7.0, -110)
	game := &models.Game{ID: 42, Season: 2024, Week: 8}

	err := GradeBet(bet, game, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final score")
	assert.Nil(t, bet.Result)
}

func TestGradeBetRejectsMismatchedGame(t *testing.T) {
	bet := pendingBet(models.MarketTypeSpread, models.BetSideHome, -7.0, -110)
	err := GradeBet(bet, finalGame(99, 31, 17), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}
