package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

func TestWeatherFactorAbsent(t *testing.T) {
	_, ok := WeatherFactor(nil)
	assert.False(t, ok, "no forecast means no factor")

	_, ok = WeatherFactor(&models.WeatherRecord{IsIndoor: true, WindSpeed: 40, Temperature: -10})
	assert.False(t, ok, "indoor games ignore conditions")

	_, ok = WeatherFactor(&models.WeatherRecord{WindSpeed: 8, Temperature: 65})
	assert.False(t, ok, "calm conditions produce no factor")
}

func TestWeatherFactorWind(t *testing.T) {
	f, ok := WeatherFactor(&models.WeatherRecord{WindSpeed: 18, Temperature: 60})
	require.True(t, ok)
	assert.Equal(t, models.FactorWeather, f.Kind)
	assert.InDelta(t, (18-12)*0.35, f.Points, 1e-9)
	assert.Equal(t, models.ConfidenceMedium, f.Confidence)

	high, ok := WeatherFactor(&models.WeatherRecord{WindSpeed: 25, Temperature: 60})
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceHigh, high.Confidence)
}

func TestWeatherFactorColdAndCap(t *testing.T) {
	cold, ok := WeatherFactor(&models.WeatherRecord{WindSpeed: 5, Temperature: 10})
	require.True(t, ok)
	assert.InDelta(t, 1.5, cold.Points, 1e-9)

	// 40 mph wind alone would be 9.8 points; the provider caps at 7.
	extreme, ok := WeatherFactor(&models.WeatherRecord{WindSpeed: 40, Temperature: 5})
	require.True(t, ok)
	assert.InDelta(t, 7.0, extreme.Points, 1e-9)
}

func TestInjuryFactorNetsBothReports(t *testing.T) {
	in := InjuryInput{
		HomeInjuries: []models.InjuryRecord{
			{Team: "Georgia", Player: "A", Position: "RB", Status: models.InjuryOut},
		},
		AwayInjuries: []models.InjuryRecord{
			{Team: "Clemson", Player: "B", Position: "QB", Status: models.InjuryOut},
		},
	}

	f, ok := InjuryFactor(in)
	require.True(t, ok)
	assert.Equal(t, models.FactorInjury, f.Kind)
	// Away loses a QB (7.0), home loses an RB (1.5): net 5.5 toward home.
	assert.InDelta(t, 5.5, f.Points, 1e-9)
}

func TestInjuryFactorStatusScaling(t *testing.T) {
	in := InjuryInput{
		AwayInjuries: []models.InjuryRecord{
			{Team: "Clemson", Player: "B", Position: "QB", Status: models.InjuryQuestionable},
		},
	}

	f, ok := InjuryFactor(in)
	require.True(t, ok)
	assert.InDelta(t, 7.0*0.30, f.Points, 1e-9)
}

func TestInjuryFactorEmptyReports(t *testing.T) {
	_, ok := InjuryFactor(InjuryInput{})
	assert.False(t, ok)
}

func TestSituationalFactorRestDifferential(t *testing.T) {
	in := SituationalInput{
		Game: models.Game{
			HomeConference: "SEC",
			AwayConference: "SEC",
		},
		HomeRestDays: 14, // off a bye
		AwayRestDays: 7,
	}

	f, ok := SituationalFactor(in)
	require.True(t, ok)
	// 7 extra days at 0.15/day clamps at 1.05 (under the 1.5 cap).
	assert.InDelta(t, 7*0.15, f.Points, 1e-9)
	assert.Equal(t, models.ConfidenceLow, f.Confidence)
}

func TestSituationalFactorConferenceMismatch(t *testing.T) {
	in := SituationalInput{
		Game: models.Game{
			HomeConference: "Sun Belt",
			AwayConference: "SEC",
		},
		HomeRestDays: 7,
		AwayRestDays: 7,
	}

	f, ok := SituationalFactor(in)
	require.True(t, ok)
	assert.InDelta(t, -1.5, f.Points, 1e-9, "power-conference visitor takes value from home")
}

func TestSituationalFactorRivalryDampensTowardPickem(t *testing.T) {
	in := SituationalInput{
		Game: models.Game{
			HomeConference: "SEC",
			AwayConference: "Sun Belt",
		},
		HomeRestDays: 7,
		AwayRestDays: 7,
		IsRivalry:    true,
	}

	f, ok := SituationalFactor(in)
	require.True(t, ok)
	assert.InDelta(t, 1.5-1.0, f.Points, 1e-9)
}

func TestIsRivalryGame(t *testing.T) {
	assert.True(t, IsRivalryGame("Michigan", "Ohio State"))
	assert.True(t, IsRivalryGame("ohio state", "MICHIGAN"), "home/away order and case are irrelevant")
	assert.False(t, IsRivalryGame("Michigan", "Alabama"))
	assert.False(t, IsRivalryGame("", ""))
}

func TestSituationalFactorNeutralInputs(t *testing.T) {
	in := SituationalInput{
		Game:         models.Game{HomeConference: "SEC", AwayConference: "ACC"},
		HomeRestDays: 7,
		AwayRestDays: 7,
	}
	_, ok := SituationalFactor(in)
	assert.False(t, ok, "both power conferences and equal rest cancel out")
}

func TestPlayerFactorContinuityGap(t *testing.T) {
	in := PlayerFactorInput{
		Home: &models.RosterContinuity{ReturningProduction: 0.85},
		Away: &models.RosterContinuity{ReturningProduction: 0.45},
		Week: 2,
	}

	f, ok := PlayerFactor(in)
	require.True(t, ok)
	assert.Equal(t, models.FactorPlayerFactor, f.Kind)
	assert.InDelta(t, 0.40*6.0, f.Points, 1e-9)
	assert.Equal(t, models.ConfidenceMedium, f.Confidence)
}

func TestPlayerFactorConfidenceDecaysLateSeason(t *testing.T) {
	in := PlayerFactorInput{
		Home: &models.RosterContinuity{ReturningProduction: 0.85},
		Away: &models.RosterContinuity{ReturningProduction: 0.45},
		Week: 9,
	}

	f, ok := PlayerFactor(in)
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceLow, f.Confidence)
}

func TestPlayerFactorTrivialGapOrMissingData(t *testing.T) {
	_, ok := PlayerFactor(PlayerFactorInput{
		Home: &models.RosterContinuity{ReturningProduction: 0.80},
		Away: &models.RosterContinuity{ReturningProduction: 0.75},
		Week: 2,
	})
	assert.False(t, ok, "gap under the floor produces no factor")

	_, ok = PlayerFactor(PlayerFactorInput{
		Home: &models.RosterContinuity{ReturningProduction: 0.80},
		Week: 2,
	})
	assert.False(t, ok, "missing one team's data produces no factor")
}

func TestSharedFactorsSkipsAbsentInputs(t *testing.T) {
	factors := SharedFactors(SharedFactorInput{})
	assert.Empty(t, factors)

	factors = SharedFactors(SharedFactorInput{
		Weather: &models.WeatherRecord{WindSpeed: 20, Temperature: 60},
		Roster: &PlayerFactorInput{
			Home: &models.RosterContinuity{ReturningProduction: 0.85},
			Away: &models.RosterContinuity{ReturningProduction: 0.45},
			Week: 2,
		},
	})
	require.Len(t, factors, 2)
	assert.Equal(t, models.FactorWeather, factors[0].Kind)
	assert.Equal(t, models.FactorPlayerFactor, factors[1].Kind)
}
