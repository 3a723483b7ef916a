// Package edge implements the uncertainty and calibration engine and the
// betting decision gate: it turns a market line and a composed model line
// into an explainable, calibrated, approve-or-reject verdict.
package edge

import (
	"math"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// UncertaintyInput carries the independent sources of model uncertainty for
// one game. Missing roster data simply contributes nothing.
type UncertaintyInput struct {
	Week           int
	HomeQB         models.QBStatusKind
	AwayQB         models.QBStatusKind
	HomeContinuity *models.RosterContinuity
	AwayContinuity *models.RosterContinuity
	HomeNewCoach   bool
	AwayNewCoach   bool
}

// ComputeUncertainty sums the week, roster, QB, and coach components and
// clamps the result to [0, cap]. The cap stays below 1, so discounting an
// edge by uncertainty can shrink it but never flip its sign.
func ComputeUncertainty(in UncertaintyInput, table config.UncertaintyTable) float64 {
	u := weekComponent(in.Week, table) +
		rosterComponent(in.HomeContinuity, in.AwayContinuity, table) +
		qbComponent(in.HomeQB, in.AwayQB, table) +
		coachComponent(in.HomeNewCoach, in.AwayNewCoach, table)

	return math.Max(0, math.Min(table.Cap, u))
}

// weekComponent decreases monotonically with week number across three tiers.
func weekComponent(week int, table config.UncertaintyTable) float64 {
	switch {
	case week <= 1:
		return table.WeekVeryEarly
	case week <= models.EarlySeasonMaxWeek:
		return table.WeekEarly
	default:
		return table.WeekLate
	}
}

// rosterComponent scales with the worse of the two teams' roster turnover.
func rosterComponent(home, away *models.RosterContinuity, table config.UncertaintyTable) float64 {
	turnover := 0.0
	if home != nil {
		turnover = 1 - home.ReturningProduction
	}
	if away != nil {
		if t := 1 - away.ReturningProduction; t > turnover {
			turnover = t
		}
	}
	return turnover * table.RosterTurnoverMax
}

// qbComponent takes the worse of the two teams' QB situations. An unknown
// or out QB never hard-blocks a bet by itself; it only raises uncertainty,
// which may then fail the regime's uncertainty cap downstream.
func qbComponent(home, away models.QBStatusKind, table config.UncertaintyTable) float64 {
	return math.Max(qbValue(home, table), qbValue(away, table))
}

func qbValue(status models.QBStatusKind, table config.UncertaintyTable) float64 {
	switch status {
	case models.QBQuestionable:
		return table.QBQuestionable
	case models.QBOut:
		return table.QBOut
	case models.QBUnknown:
		return table.QBUnknown
	default:
		return 0
	}
}

func coachComponent(homeNew, awayNew bool, table config.UncertaintyTable) float64 {
	if homeNew || awayNew {
		return table.NewCoach
	}
	return 0
}
