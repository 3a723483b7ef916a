package monitor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// AlertEvaluator compares a performance report against the fixed threshold
// table and raises alerts. It stays silent until the minimum sample has
// accumulated, so a cold start or a bad weekend does not page anyone.
type AlertEvaluator struct {
	cfg    config.MonitoringConfig
	logger *logrus.Logger
}

// NewAlertEvaluator creates an alert evaluator.
func NewAlertEvaluator(cfg config.MonitoringConfig, logger *logrus.Logger) *AlertEvaluator {
	return &AlertEvaluator{cfg: cfg, logger: logger}
}

// HasMinimumSample requires both the bet count and the distinct-week count
// to clear their minimums: 30 bets or 4 weeks, whichever comes later.
func (e *AlertEvaluator) HasMinimumSample(report *PerformanceReport) bool {
	return report.TotalBets >= e.cfg.MinSampleBets &&
		report.DistinctWeeks >= e.cfg.MinSampleWeeks
}

// Evaluate returns every alert the report triggers. Below the minimum
// sample it returns nothing, regardless of how bad the numbers look.
func (e *AlertEvaluator) Evaluate(report *PerformanceReport) []models.MonitoringAlert {
	if !e.HasMinimumSample(report) {
		e.logger.WithFields(logrus.Fields{
			"total_bets":     report.TotalBets,
			"distinct_weeks": report.DistinctWeeks,
			"min_bets":       e.cfg.MinSampleBets,
			"min_weeks":      e.cfg.MinSampleWeeks,
		}).Debug("Below minimum sample, skipping alert evaluation")
		return nil
	}

	now := time.Now().UTC()
	var alerts []models.MonitoringAlert

	if report.CLVSample > 0 && report.AverageCLV < e.cfg.MinCLVPoints {
		alerts = append(alerts, models.MonitoringAlert{
			Type:      "critical",
			Category:  models.AlertCategoryCLV,
			Message:   fmt.Sprintf("average CLV %.2f pts below threshold %.2f", report.AverageCLV, e.cfg.MinCLVPoints),
			Metric:    "average_clv",
			Value:     report.AverageCLV,
			Threshold: e.cfg.MinCLVPoints,
			RaisedAt:  now,
		})
	}

	all := report.ByPercentile[BandAll]
	if all.WinRate < e.cfg.MinWinRate {
		alerts = append(alerts, models.MonitoringAlert{
			Type:      "warning",
			Category:  models.AlertCategoryWinRate,
			Message:   fmt.Sprintf("overall win rate %.1f%% below threshold %.1f%%", all.WinRate*100, e.cfg.MinWinRate*100),
			Metric:    "win_rate_all",
			Value:     all.WinRate,
			Threshold: e.cfg.MinWinRate,
			RaisedAt:  now,
		})
	}

	if all.ROI < e.cfg.MinROI {
		alerts = append(alerts, models.MonitoringAlert{
			Type:      "critical",
			Category:  models.AlertCategoryROI,
			Message:   fmt.Sprintf("overall ROI %.1f%% below threshold %.1f%%", all.ROI*100, e.cfg.MinROI*100),
			Metric:    "roi_all",
			Value:     all.ROI,
			Threshold: e.cfg.MinROI,
			RaisedAt:  now,
		})
	}

	if report.Persistence < e.cfg.MinPersistence {
		alerts = append(alerts, models.MonitoringAlert{
			Type:      "warning",
			Category:  models.AlertCategoryPersistence,
			Message:   fmt.Sprintf("edge persistence %.1f%% below threshold %.1f%%", report.Persistence*100, e.cfg.MinPersistence*100),
			Metric:    "edge_persistence",
			Value:     report.Persistence,
			Threshold: e.cfg.MinPersistence,
			RaisedAt:  now,
		})
	}

	for _, alert := range alerts {
		e.logger.WithFields(logrus.Fields{
			"category":  alert.Category,
			"metric":    alert.Metric,
			"value":     alert.Value,
			"threshold": alert.Threshold,
		}).Warn(alert.Message)
	}

	return alerts
}
