package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

func testMonitoringConfig() config.MonitoringConfig {
	return config.MonitoringConfig{
		MinSampleBets:  30,
		MinSampleWeeks: 4,
		MinCLVPoints:   0.0,
		MinWinRate:     0.50,
		MinROI:         -0.05,
		MinPersistence: 0.45,
	}
}

func healthyReport() *PerformanceReport {
	return &PerformanceReport{
		TotalBets:     40,
		DistinctWeeks: 6,
		AverageCLV:    0.8,
		CLVSample:     35,
		Persistence:   0.60,
		ByPercentile: map[PercentileBand]BandStats{
			BandAll: {Bets: 40, Wins: 22, Losses: 16, Pushes: 2, WinRate: 22.0 / 38.0, ROI: 0.03},
		},
		ByWeekRange: map[string]BandStats{},
	}
}

func TestHasMinimumSampleRequiresBetsAndWeeks(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	tests := []struct {
		name  string
		bets  int
		weeks int
		want  bool
	}{
		{"both cleared", 30, 4, true},
		{"bets short", 29, 6, false},
		{"weeks short", 50, 3, false},
		{"both short", 10, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &PerformanceReport{TotalBets: tt.bets, DistinctWeeks: tt.weeks}
			assert.Equal(t, tt.want, eval.HasMinimumSample(report))
		})
	}
}

func TestEvaluateSilentBelowSample(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	report.TotalBets = 5
	report.AverageCLV = -3.0
	report.Persistence = 0.0

	assert.Nil(t, eval.Evaluate(report))
}

func TestEvaluateHealthyReportNoAlerts(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())
	assert.Empty(t, eval.Evaluate(healthyReport()))
}

func TestEvaluateCLVAlert(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	report.AverageCLV = -0.5

	alerts := eval.Evaluate(report)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCategoryCLV, alerts[0].Category)
	assert.Equal(t, "critical", alerts[0].Type)
	assert.Equal(t, "average_clv", alerts[0].Metric)
	assert.InDelta(t, -0.5, alerts[0].Value, 1e-9)
}

func TestEvaluateCLVIgnoredWithoutSample(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	report.AverageCLV = -2.0
	report.CLVSample = 0

	assert.Empty(t, eval.Evaluate(report))
}

func TestEvaluateWinRateAlert(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	all := report.ByPercentile[BandAll]
	all.WinRate = 0.42
	report.ByPercentile[BandAll] = all

	alerts := eval.Evaluate(report)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCategoryWinRate, alerts[0].Category)
	assert.Equal(t, "warning", alerts[0].Type)
}

func TestEvaluateROIAlert(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	all := report.ByPercentile[BandAll]
	all.ROI = -0.12
	report.ByPercentile[BandAll] = all

	alerts := eval.Evaluate(report)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCategoryROI, alerts[0].Category)
	assert.Equal(t, "critical", alerts[0].Type)
	assert.InDelta(t, -0.05, alerts[0].Threshold, 1e-9)
}

func TestEvaluatePersistenceAlert(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	report.Persistence = 0.30

	alerts := eval.Evaluate(report)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertCategoryPersistence, alerts[0].Category)
	assert.Equal(t, "warning", alerts[0].Type)
}

func TestEvaluateMultipleAlerts(t *testing.T) {
	eval := NewAlertEvaluator(testMonitoringConfig(), testLogger())

	report := healthyReport()
	report.AverageCLV = -1.0
	report.Persistence = 0.10
	all := report.ByPercentile[BandAll]
	all.WinRate = 0.40
	all.ROI = -0.20
	report.ByPercentile[BandAll] = all

	alerts := eval.Evaluate(report)
	require.Len(t, alerts, 4)

	categories := make(map[models.AlertCategory]bool)
	for _, a := range alerts {
		categories[a.Category] = true
	}
	assert.True(t, categories[models.AlertCategoryCLV])
	assert.True(t, categories[models.AlertCategoryWinRate])
	assert.True(t, categories[models.AlertCategoryROI])
	assert.True(t, categories[models.AlertCategoryPersistence])
}
