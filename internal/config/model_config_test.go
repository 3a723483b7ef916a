package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

func TestModelConfigForKnownVersion(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ModelVersionV2, cfg.Version)
}

func TestModelConfigForUnknownVersion(t *testing.T) {
	_, err := ModelConfigFor("cfb-v99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnknownModelVersion))
}

func TestHashIsStable(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	first := cfg.Hash()
	second := cfg.Hash()

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestHashChangesWithContents(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	modified := *cfg
	modified.HighEdgeThreshold = 5.0

	assert.NotEqual(t, cfg.Hash(), modified.Hash())
}

func TestRegimeForWeek(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	tests := []struct {
		week int
		want RegimeName
	}{
		{0, RegimeEarlySeason},
		{4, RegimeEarlySeason},
		{5, RegimeLateSeason},
		{14, RegimeLateSeason},
	}

	for _, tt := range tests {
		regime := cfg.RegimeForWeek(tt.week)
		assert.Equal(t, tt.want, regime.Name, "week %d", tt.week)
	}

	early := cfg.RegimeForWeek(2)
	assert.True(t, early.RequireQBStatus)
	late := cfg.RegimeForWeek(9)
	assert.False(t, late.RequireQBStatus)
	assert.Greater(t, late.UncertaintyCap, early.UncertaintyCap)
}

func TestWeightsForMarket(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	spread := cfg.WeightsFor(models.MarketTypeSpread)
	total := cfg.WeightsFor(models.MarketTypeTotal)

	assert.Greater(t, total[models.FactorWeather], spread[models.FactorWeather])
	assert.Greater(t, spread[models.FactorInjury], total[models.FactorInjury])
}

func TestEdgeCapsAndFloors(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	assert.Equal(t, 6.0, cfg.EdgeCapFor(models.MarketTypeSpread))
	assert.Equal(t, 8.0, cfg.EdgeCapFor(models.MarketTypeTotal))
	assert.Equal(t, 3.0, cfg.EdgeFloorFor(models.MarketTypeSpread))
	assert.Equal(t, 2.5, cfg.EdgeFloorFor(models.MarketTypeTotal))
}

func TestCalibrationBucketsAreContiguous(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	for _, buckets := range [][]models.CalibrationBucket{cfg.SpreadBuckets, cfg.TotalBuckets} {
		require.NotEmpty(t, buckets)
		for i := 1; i < len(buckets); i++ {
			assert.Equal(t, buckets[i-1].MaxEdge, buckets[i].MinEdge)
		}
	}
}

func TestUncertaintyCapBelowOne(t *testing.T) {
	cfg, err := ModelConfigFor(ModelVersionV2)
	require.NoError(t, err)

	assert.Less(t, cfg.Uncertainty.Cap, 1.0)
}
