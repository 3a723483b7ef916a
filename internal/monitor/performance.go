package monitor

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PercentileBand groups bets by edge-strength rank within their slates.
type PercentileBand string

const (
	BandTop5  PercentileBand = "top5"
	BandTop10 PercentileBand = "top10"
	BandTop20 PercentileBand = "top20"
	BandAll   PercentileBand = "all"
)

var bandCutoffs = []struct {
	Band   PercentileBand
	Cutoff float64
}{
	{BandTop5, 0.05},
	{BandTop10, 0.10},
	{BandTop20, 0.20},
	{BandAll, 1.00},
}

// BandStats summarizes graded outcomes for one percentile band or week range.
type BandStats struct {
	Bets    int     `json:"bets"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	WinRate float64 `json:"win_rate"` // pushes excluded from the denominator
	ROI     float64 `json:"roi"`      // flat-stake profit per unit risked
}

// PerformanceReport is the monitoring aggregate over a set of graded bets.
type PerformanceReport struct {
	TotalBets     int                            `json:"total_bets"`
	DistinctWeeks int                            `json:"distinct_weeks"`
	AverageCLV    float64                        `json:"average_clv"`
	CLVSample     int                            `json:"clv_sample"`
	Persistence   float64                        `json:"persistence"` // share of bets whose edge survived to close
	ByPercentile  map[PercentileBand]BandStats   `json:"by_percentile"`
	ByWeekRange   map[string]BandStats           `json:"by_week_range"` // "early" (weeks 0-4) and "late" (5+)
}

// Aggregator computes performance reports from graded bet records.
type Aggregator struct {
	logger *logrus.Logger
}

// NewAggregator creates a performance aggregator.
func NewAggregator(logger *logrus.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate builds a report from graded bets; ungraded records are skipped.
func (a *Aggregator) Aggregate(bets []*models.BetRecord) *PerformanceReport {
	report := &PerformanceReport{
		ByPercentile: make(map[PercentileBand]BandStats),
		ByWeekRange:  make(map[string]BandStats),
	}

	var (
		clvSum      float64
		clvCount    int
		persisted   int
		persistObs  int
		weeksSeen   = make(map[int]bool)
		graded      []*models.BetRecord
	)

	for _, bet := range bets {
		if !bet.IsGraded() {
			continue
		}
		graded = append(graded, bet)
		weeksSeen[bet.Week] = true

		if clv, ok := CLV(bet); ok {
			clvSum += clv
			clvCount++
		}
		if ok, observed := EdgePersisted(bet); observed {
			persistObs++
			if ok {
				persisted++
			}
		}
	}

	report.TotalBets = len(graded)
	report.DistinctWeeks = len(weeksSeen)
	if clvCount > 0 {
		report.AverageCLV = clvSum / float64(clvCount)
		report.CLVSample = clvCount
	}
	if persistObs > 0 {
		report.Persistence = float64(persisted) / float64(persistObs)
	}

	for _, bc := range bandCutoffs {
		var band []*models.BetRecord
		for _, bet := range graded {
			if bet.Percentile <= bc.Cutoff {
				band = append(band, bet)
			}
		}
		report.ByPercentile[bc.Band] = computeStats(band)
	}

	var early, late []*models.BetRecord
	for _, bet := range graded {
		if bet.Week <= models.EarlySeasonMaxWeek {
			early = append(early, bet)
		} else {
			late = append(late, bet)
		}
	}
	report.ByWeekRange["early"] = computeStats(early)
	report.ByWeekRange["late"] = computeStats(late)

	a.logger.WithFields(logrus.Fields{
		"total_bets":     report.TotalBets,
		"distinct_weeks": report.DistinctWeeks,
		"average_clv":    report.AverageCLV,
		"persistence":    report.Persistence,
	}).Info("Performance report computed")

	return report
}

func computeStats(bets []*models.BetRecord) BandStats {
	stats := BandStats{Bets: len(bets)}
	if len(bets) == 0 {
		return stats
	}

	profit := decimal.Zero
	staked := decimal.Zero
	one := decimal.NewFromInt(1)

	for _, bet := range bets {
		switch *bet.Result {
		case models.BetResultWin:
			stats.Wins++
		case models.BetResultLoss:
			stats.Losses++
		case models.BetResultPush:
			stats.Pushes++
		}
		if bet.ProfitLoss != nil {
			profit = profit.Add(decimal.NewFromFloat(*bet.ProfitLoss))
		}
		staked = staked.Add(one)
	}

	decided := stats.Wins + stats.Losses
	if decided > 0 {
		stats.WinRate = float64(stats.Wins) / float64(decided)
	}
	if !staked.IsZero() {
		roi, _ := profit.Div(staked).Round(4).Float64()
		stats.ROI = roi
	}
	return stats
}
