package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// decisionEdge builds an edge that passes every rule unless the test
// overrides something.
func decisionEdge(market models.MarketType, raw, uncertainty, percentile float64) models.EdgeResult {
	return models.EdgeResult{
		EventID:       101,
		Sportsbook:    "draftkings",
		MarketType:    market,
		RawEdge:       raw,
		Uncertainty:   uncertainty,
		EffectiveEdge: raw * (1 - uncertainty),
		Percentile:    percentile,
	}
}

func TestDecideBetMissingMarketData(t *testing.T) {
	cfg := testModelConfig(t)

	decision := DecideBet(DecisionInput{
		Edge:          decisionEdge(models.MarketTypeSpread, 5.0, 0.10, 0.03),
		HomeQB:        models.QBConfirmed,
		AwayQB:        models.QBConfirmed,
		HasMarketData: false,
		Week:          7,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleMissingMarketData, decision.Rule)
	assert.Contains(t, decision.Reason, "missing critical market data")
	assert.Equal(t, models.ConfidenceSkip, decision.Confidence)
}

func TestDecideBetEdgeFloor(t *testing.T) {
	cfg := testModelConfig(t)

	// Raw 3.5 discounted by 0.20 gives 2.8, under the 3.0 spread floor.
	edge := decisionEdge(models.MarketTypeSpread, -3.5, 0.20, 0.03)
	require.InDelta(t, -2.8, edge.EffectiveEdge, 1e-9)

	decision := DecideBet(DecisionInput{
		Edge:          edge,
		HomeQB:        models.QBConfirmed,
		AwayQB:        models.QBConfirmed,
		HasMarketData: true,
		Week:          7,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleEdgeFloor, decision.Rule)
	assert.Contains(t, decision.Reason, "below spread floor")
}

func TestDecideBetTotalRequiresWeather(t *testing.T) {
	cfg := testModelConfig(t)

	// The edge is enormous and top-ranked; the weather rule still rejects.
	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeTotal, 7.0, 0.05, 0.01),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBConfirmed,
		HasMarketData:  true,
		HasWeatherData: false,
		Week:           9,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleMissingWeather, decision.Rule)
	assert.Contains(t, decision.Reason, "weather")
}

func TestDecideBetEarlySeasonUnknownQB(t *testing.T) {
	cfg := testModelConfig(t)

	// Big raw edge, high uncertainty, unknown QB, week 3: treated as a
	// data problem rather than a signal.
	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 6.0, 0.42, 0.02),
		HomeQB:         models.QBUnknown,
		AwayQB:         models.QBConfirmed,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           3,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleEarlySeasonQB, decision.Rule)
	assert.Contains(t, decision.Reason, "unknown QB")
}

func TestDecideBetPercentileCutoff(t *testing.T) {
	cfg := testModelConfig(t)

	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 5.0, 0.10, 0.07),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBConfirmed,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           7,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RulePercentile, decision.Rule)
	assert.Contains(t, decision.Reason, "percentile")
}

func TestDecideBetRegimeUncertaintyCap(t *testing.T) {
	cfg := testModelConfig(t)

	// Capped raw of 6.0 at uncertainty 0.50 clears the floor, but the
	// early regime caps uncertainty at 0.45.
	edge := decisionEdge(models.MarketTypeSpread, 6.0, 0.50, 0.03)
	require.InDelta(t, 3.0, edge.EffectiveEdge, 1e-9)

	decision := DecideBet(DecisionInput{
		Edge:           edge,
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBConfirmed,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           3,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleUncertaintyCap, decision.Rule)
	assert.Contains(t, decision.Reason, "uncertainty")
	assert.Contains(t, decision.Reason, "early_season")
}

func TestDecideBetEarlyRegimeRequiresKnownQB(t *testing.T) {
	cfg := testModelConfig(t)

	// Moderate uncertainty keeps rules 4 and 6 quiet; rule 7 still
	// refuses an unknown QB in the early regime.
	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 4.5, 0.30, 0.03),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBUnknown,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           4,
	}, cfg)

	assert.False(t, decision.ShouldBet)
	assert.Equal(t, models.RuleQBStatusRequired, decision.Rule)
	assert.Contains(t, decision.Reason, "requires known QB")
}

func TestDecideBetLateRegimeToleratesUnknownQB(t *testing.T) {
	cfg := testModelConfig(t)

	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 4.5, 0.25, 0.03),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBUnknown,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           8,
	}, cfg)

	assert.True(t, decision.ShouldBet)
}

func TestDecideBetApprovalWithWarnings(t *testing.T) {
	cfg := testModelConfig(t)

	// Week 6, away QB questionable, uncertainty 0.30: approved at medium
	// confidence on the strength of exactly one warning.
	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 5.0, 0.30, 0.04),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBQuestionable,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           6,
	}, cfg)

	require.True(t, decision.ShouldBet)
	require.Len(t, decision.Warnings, 1)
	assert.Contains(t, decision.Warnings[0], "away QB questionable")
	assert.Equal(t, models.ConfidenceMedium, decision.Confidence)
}

func TestDecideBetCleanApprovalHighConfidence(t *testing.T) {
	cfg := testModelConfig(t)

	decision := DecideBet(DecisionInput{
		Edge:           decisionEdge(models.MarketTypeSpread, 4.0, 0.10, 0.03),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBConfirmed,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           9,
	}, cfg)

	require.True(t, decision.ShouldBet)
	assert.Empty(t, decision.Rule)
	assert.Empty(t, decision.Warnings)
	assert.Equal(t, models.ConfidenceHigh, decision.Confidence)
}

func TestDecideBetDeterministic(t *testing.T) {
	cfg := testModelConfig(t)

	in := DecisionInput{
		Edge:           decisionEdge(models.MarketTypeTotal, 4.0, 0.15, 0.04),
		HomeQB:         models.QBConfirmed,
		AwayQB:         models.QBQuestionable,
		HasMarketData:  true,
		HasWeatherData: true,
		Week:           6,
	}

	first := DecideBet(in, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DecideBet(in, cfg))
	}
}
