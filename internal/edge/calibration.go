package edge

import (
	"math"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// Fixed conservative defaults for edges outside the curated bucket range.
// Lookups never fail: an uncovered edge resolves to one of these.
var (
	// belowRangeCalibration covers edges smaller than the lowest bucket;
	// too small to act on.
	belowRangeCalibration = models.Calibration{
		WinProbability: 0.500,
		ExpectedValue:  -0.045,
		Tier:           models.ConfidenceLow,
	}

	// aboveRangeCalibration covers edges larger than the highest bucket.
	// A disagreement with the market that large is evidence of a model bug,
	// not an exceptionally good bet, so it calibrates to skip.
	aboveRangeCalibration = models.Calibration{
		WinProbability: 0.500,
		ExpectedValue:  -0.045,
		Tier:           models.ConfidenceSkip,
		LikelyError:    true,
	}
)

// CapRawEdge clamps a raw edge's magnitude, preserving sign. Applied before
// calibration so implausibly large disagreements are not treated as
// high-confidence signals.
func CapRawEdge(raw, cap float64) float64 {
	if cap <= 0 || math.Abs(raw) <= cap {
		return raw
	}
	if raw < 0 {
		return -cap
	}
	return cap
}

// LookupCalibration scans the buckets in ascending order and returns the
// first whose half-open interval [min, max) contains |edge|. Edges below
// every bucket resolve to the low default; edges above every bucket resolve
// to the likely-model-error default. Buckets must be sorted and disjoint.
func LookupCalibration(absEdge float64, buckets []models.CalibrationBucket) models.Calibration {
	if len(buckets) == 0 {
		return belowRangeCalibration
	}

	for _, b := range buckets {
		if b.Contains(absEdge) {
			return models.Calibration{
				WinProbability: b.WinProbability,
				ExpectedValue:  b.ExpectedValue,
				Tier:           b.Tier,
			}
		}
	}

	if absEdge < buckets[0].MinEdge {
		return belowRangeCalibration
	}
	return aboveRangeCalibration
}
