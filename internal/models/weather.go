package models

import (
	"time"
)

// WeatherRecord is the forecast for one game's venue. Indoor games carry a
// record with IsIndoor set rather than no record, so "no weather data" and
// "weather irrelevant" stay distinguishable.
type WeatherRecord struct {
	HomeTeam    string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam    string    `db:"away_team" json:"away_team" validate:"required"`
	Temperature float64   `db:"temperature" json:"temperature"` // Fahrenheit
	WindSpeed   float64   `db:"wind_speed" json:"wind_speed"`   // mph
	IsIndoor    bool      `db:"is_indoor" json:"is_indoor"`
	CapturedAt  time.Time `db:"captured_at" json:"captured_at"`
}

// InjuryStatus is a player's availability designation.
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "out"
	InjuryDoubtful     InjuryStatus = "doubtful"
	InjuryQuestionable InjuryStatus = "questionable"
	InjuryProbable     InjuryStatus = "probable"
)

// InjuryRecord is one player's pre-game injury designation.
type InjuryRecord struct {
	Team       string       `db:"team" json:"team" validate:"required"`
	Player     string       `db:"player" json:"player" validate:"required"`
	Position   string       `db:"position" json:"position"`
	Status     InjuryStatus `db:"status" json:"status" validate:"required,oneof=out doubtful questionable probable"`
	CapturedAt time.Time    `db:"captured_at" json:"captured_at"`
}

// RosterContinuity summarizes how much of last season's production a team
// returns, feeding the player-factor provider.
type RosterContinuity struct {
	Team                string  `db:"team" json:"team" validate:"required"`
	Season              int     `db:"season" json:"season" validate:"required"`
	ReturningProduction float64 `db:"returning_production" json:"returning_production" validate:"gte=0,lte=1"`
	TransfersIn         int     `db:"transfers_in" json:"transfers_in"`
	TransfersOut        int     `db:"transfers_out" json:"transfers_out"`
	NewHeadCoach        bool    `db:"new_head_coach" json:"new_head_coach"`
}
