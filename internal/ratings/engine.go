// Package ratings implements the base power-rating model that seeds every
// projection. The engine is a pure value: updates and season resets return a
// new state rather than mutating in place, so any season can be replayed and
// parallel experiments never share hidden state.
package ratings

import (
	"math"
	"sort"
	"time"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

const (
	// baseRating is the league-average power rating in points.
	baseRating = 0.0

	// basePace is the league-average points a team contributes to a game total.
	basePace = 27.5

	// ratingK controls how fast ratings chase observed margins.
	ratingK = 0.20

	// paceK controls how fast pace chases observed totals.
	paceK = 0.15

	// maxMarginSignal caps the margin fed into an update so blowouts do not
	// swamp the rating.
	maxMarginSignal = 28.0

	// seasonCarryover is how much of a team's rating survives a season reset.
	seasonCarryover = 0.60
)

// TeamState is one team's rating inputs at a point in time.
type TeamState struct {
	Rating      float64
	Pace        float64
	GamesPlayed int
}

// State is the full rating state for a season. It is treated as immutable:
// Update and SeasonReset return fresh copies.
type State struct {
	Season int
	Teams  map[string]TeamState
}

// NewState creates an empty rating state for a season.
func NewState(season int) State {
	return State{Season: season, Teams: make(map[string]TeamState)}
}

// clone deep-copies a state so transitions stay pure.
func (s State) clone() State {
	teams := make(map[string]TeamState, len(s.Teams))
	for name, ts := range s.Teams {
		teams[name] = ts
	}
	return State{Season: s.Season, Teams: teams}
}

// team returns a team's state, defaulting new teams to league average.
func (s State) team(name string) TeamState {
	if ts, ok := s.Teams[name]; ok {
		return ts
	}
	return TeamState{Rating: baseRating, Pace: basePace}
}

// Engine derives projections from rating state. It carries only frozen
// configuration, never mutable state.
type Engine struct {
	homeFieldAdvantage float64
}

// NewEngine creates a rating engine with the configured home-field advantage.
func NewEngine(homeFieldAdvantage float64) *Engine {
	return &Engine{homeFieldAdvantage: homeFieldAdvantage}
}

// Update folds one completed game into the state and returns the new state.
// Games without final scores leave the state unchanged.
func (e *Engine) Update(state State, game models.Game) State {
	if !game.IsCompleted() {
		return state
	}

	next := state.clone()
	home := next.team(game.HomeTeam)
	away := next.team(game.AwayTeam)

	hfa := e.homeFieldAdvantage
	if game.NeutralSite {
		hfa = 0
	}

	expectedMargin := home.Rating - away.Rating + hfa
	actualMargin := clamp(game.Margin(), -maxMarginSignal, maxMarginSignal)
	surprise := actualMargin - expectedMargin

	home.Rating += ratingK * surprise
	away.Rating -= ratingK * surprise

	expectedTotal := home.Pace + away.Pace
	totalSurprise := game.TotalPoints() - expectedTotal
	home.Pace += paceK * totalSurprise / 2
	away.Pace += paceK * totalSurprise / 2

	home.GamesPlayed++
	away.GamesPlayed++

	next.Teams[game.HomeTeam] = home
	next.Teams[game.AwayTeam] = away
	return next
}

// SeasonReset decays every rating toward league average and zeroes game
// counts, returning the state for the new season.
func (e *Engine) SeasonReset(state State, newSeason int) State {
	next := NewState(newSeason)
	for name, ts := range state.Teams {
		next.Teams[name] = TeamState{
			Rating: baseRating + (ts.Rating-baseRating)*seasonCarryover,
			Pace:   basePace + (ts.Pace-basePace)*seasonCarryover,
		}
	}
	return next
}

// Replay folds a season of games (ordered by kickoff) into a fresh state.
func (e *Engine) Replay(season int, games []models.Game) State {
	ordered := make([]models.Game, len(games))
	copy(ordered, games)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Kickoff.Equal(ordered[j].Kickoff) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Kickoff.Before(ordered[j].Kickoff)
	})

	state := NewState(season)
	for _, g := range ordered {
		state = e.Update(state, g)
	}
	return state
}

// Project produces the base model lines for a game from the current state.
// Negative spread means the home team is favored.
func (e *Engine) Project(state State, game models.Game) models.ModelProjection {
	home := state.team(game.HomeTeam)
	away := state.team(game.AwayTeam)

	hfa := e.homeFieldAdvantage
	if game.NeutralSite {
		hfa = 0
	}

	spread := -(home.Rating - away.Rating + hfa)
	total := home.Pace + away.Pace

	return models.ModelProjection{
		EventID:     game.ID,
		Season:      game.Season,
		Week:        game.Week,
		SpreadHome:  &spread,
		TotalPoints: &total,
		GeneratedAt: time.Now().UTC(),
	}
}

// Snapshot exports the state as persistable per-team snapshots.
func (s State) Snapshot(week int, capturedAt time.Time) []models.TeamRatingSnapshot {
	snaps := make([]models.TeamRatingSnapshot, 0, len(s.Teams))
	for name, ts := range s.Teams {
		snaps = append(snaps, models.TeamRatingSnapshot{
			Team:        name,
			Season:      s.Season,
			Week:        week,
			Rating:      ts.Rating,
			Pace:        ts.Pace,
			GamesPlayed: ts.GamesPlayed,
			CapturedAt:  capturedAt,
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Team < snaps[j].Team })
	return snaps
}

// FromSnapshots rebuilds a state from persisted snapshots.
func FromSnapshots(season int, snaps []models.TeamRatingSnapshot) State {
	state := NewState(season)
	for _, snap := range snaps {
		state.Teams[snap.Team] = TeamState{
			Rating:      snap.Rating,
			Pace:        snap.Pace,
			GamesPlayed: snap.GamesPlayed,
		}
	}
	return state
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
