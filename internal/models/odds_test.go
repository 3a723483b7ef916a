package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarketLineCondensesUnsortedTicks(t *testing.T) {
	base := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	ticks := []OddsTick{
		{EventID: 42, Sportsbook: "draftkings", MarketType: MarketTypeSpread, Line: -7.5, PriceAmerican: -110, CapturedAt: base.Add(24 * time.Hour)},
		{EventID: 42, Sportsbook: "draftkings", MarketType: MarketTypeSpread, Line: -6.5, PriceAmerican: -105, CapturedAt: base},
		{EventID: 42, Sportsbook: "draftkings", MarketType: MarketTypeSpread, Line: -8.0, PriceAmerican: -115, CapturedAt: base.Add(48 * time.Hour)},
	}

	line := NewMarketLine(ticks)
	require.NotNil(t, line)

	assert.Equal(t, int64(42), line.EventID)
	assert.InDelta(t, -6.5, line.OpenLine, 1e-9)
	assert.Equal(t, -105, line.OpenPrice)
	assert.InDelta(t, -8.0, line.CurrentLine, 1e-9)
	assert.Equal(t, -115, line.CurrentPrice)
	assert.Equal(t, base, line.OpenedAt)
	assert.Equal(t, base.Add(48*time.Hour), line.CapturedAt)
	assert.InDelta(t, -1.5, line.Movement(), 1e-9)
}

func TestNewMarketLineSingleTick(t *testing.T) {
	now := time.Now().UTC()
	line := NewMarketLine([]OddsTick{
		{EventID: 7, Sportsbook: "circa", MarketType: MarketTypeTotal, Line: 54.5, CapturedAt: now},
	})

	require.NotNil(t, line)
	assert.Equal(t, line.OpenLine, line.CurrentLine)
	assert.Zero(t, line.Movement())
}

func TestNewMarketLineEmpty(t *testing.T) {
	assert.Nil(t, NewMarketLine(nil))
	assert.Nil(t, NewMarketLine([]OddsTick{}))
}
