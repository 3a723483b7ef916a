package models

import (
	"time"
)

// MarketType represents the type of market (spread or total)
type MarketType string

const (
	MarketTypeSpread MarketType = "spread"
	MarketTypeTotal  MarketType = "total"
)

// BetSide represents the recommended side of a market
type BetSide string

const (
	BetSideHome  BetSide = "home"
	BetSideAway  BetSide = "away"
	BetSideOver  BetSide = "over"
	BetSideUnder BetSide = "under"
)

// OddsTick is a single captured sportsbook quote for one game/market.
// Ticks accumulate per game/book ordered by capture time; only the earliest
// and latest matter to the engine.
type OddsTick struct {
	EventID       int64      `db:"event_id" json:"event_id" validate:"required"`
	Sportsbook    string     `db:"sportsbook" json:"sportsbook" validate:"required"`
	MarketType    MarketType `db:"market_type" json:"market_type" validate:"required,oneof=spread total"`
	Line          float64    `db:"line" json:"line"` // spread points (home) or total points
	PriceAmerican int        `db:"price_american" json:"price_american"`
	CapturedAt    time.Time  `db:"captured_at" json:"captured_at" validate:"required"`
}

// MarketLine is the condensed view of a game/book/market: the opening tick
// and the most recent tick.
type MarketLine struct {
	EventID      int64      `json:"event_id"`
	Sportsbook   string     `json:"sportsbook"`
	MarketType   MarketType `json:"market_type"`
	OpenLine     float64    `json:"open_line"`
	CurrentLine  float64    `json:"current_line"`
	OpenPrice    int        `json:"open_price"`
	CurrentPrice int        `json:"current_price"`
	OpenedAt     time.Time  `json:"opened_at"`
	CapturedAt   time.Time  `json:"captured_at"`
}

// NewMarketLine condenses time-ordered ticks into a MarketLine. The slice
// does not need to be sorted; the earliest and latest capture times win.
func NewMarketLine(ticks []OddsTick) *MarketLine {
	if len(ticks) == 0 {
		return nil
	}

	open := ticks[0]
	current := ticks[0]
	for _, t := range ticks[1:] {
		if t.CapturedAt.Before(open.CapturedAt) {
			open = t
		}
		if t.CapturedAt.After(current.CapturedAt) {
			current = t
		}
	}

	return &MarketLine{
		EventID:      current.EventID,
		Sportsbook:   current.Sportsbook,
		MarketType:   current.MarketType,
		OpenLine:     open.Line,
		CurrentLine:  current.Line,
		OpenPrice:    open.PriceAmerican,
		CurrentPrice: current.PriceAmerican,
		OpenedAt:     open.CapturedAt,
		CapturedAt:   current.CapturedAt,
	}
}

// Movement returns current line minus opening line.
func (m *MarketLine) Movement() float64 {
	return m.CurrentLine - m.OpenLine
}
