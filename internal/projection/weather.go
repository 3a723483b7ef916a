// Package projection implements the adjustment providers and the composer
// that blends them with the base rating projection into a final model line.
//
// Every provider is a pure function from validated domain inputs to an
// optional AdjustmentFactor. Absence of input data means no factor, never an
// error. Factor magnitudes follow the composer convention: the composed line
// is base minus the weighted sum of magnitudes, so a positive magnitude
// lowers the line (favors the home side on spreads, the under on totals).
package projection

import (
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

const (
	windThreshold      = 12.0 // mph, above this passing games degrade
	windHighConfidence = 20.0
	windPointsPerMPH   = 0.35
	coldThreshold      = 25.0 // degrees F
	coldPoints         = 1.5
	maxWeatherPoints   = 7.0
)

// WeatherFactor derives a totals-oriented adjustment from a game forecast.
// Indoor games and missing forecasts produce no factor.
func WeatherFactor(w *models.WeatherRecord) (models.AdjustmentFactor, bool) {
	if w == nil || w.IsIndoor {
		return models.AdjustmentFactor{}, false
	}

	points := 0.0
	detail := ""

	if w.WindSpeed > windThreshold {
		points += (w.WindSpeed - windThreshold) * windPointsPerMPH
		detail = fmt.Sprintf("wind %.0f mph", w.WindSpeed)
	}
	if w.Temperature < coldThreshold {
		points += coldPoints
		if detail != "" {
			detail += ", "
		}
		detail += fmt.Sprintf("temperature %.0fF", w.Temperature)
	}

	if points == 0 {
		return models.AdjustmentFactor{}, false
	}
	if points > maxWeatherPoints {
		points = maxWeatherPoints
	}

	confidence := models.ConfidenceMedium
	if w.WindSpeed >= windHighConfidence {
		confidence = models.ConfidenceHigh
	}

	return models.AdjustmentFactor{
		Kind:       models.FactorWeather,
		Points:     points,
		Confidence: confidence,
		Detail:     detail,
	}, true
}
