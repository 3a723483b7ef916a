// Package scheduler drives recurring slate pipeline runs on a cron
// schedule. All schedules evaluate in UTC, matching the kickoff times in
// the data.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/pipeline"
)

// SlateFunc resolves which slate a scheduled run should process. It is
// evaluated at fire time so a long-lived scheduler follows the season.
type SlateFunc func(now time.Time) (season, week int)

// Scheduler manages scheduled pipeline runs
type Scheduler struct {
	cron       *cron.Cron
	runner     *pipeline.Runner
	slateFn    SlateFunc
	runTimeout time.Duration
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(runner *pipeline.Runner, slateFn SlateFunc, runTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		runner:     runner,
		slateFn:    slateFn,
		runTimeout: runTimeout,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// SchedulePipeline schedules recurring pipeline runs
func (s *Scheduler) SchedulePipeline(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		season, week := s.slateFn(time.Now().UTC())
		log := s.logger.WithFields(logrus.Fields{"season": season, "week": week})
		log.Info("Starting scheduled pipeline run")

		result, err := s.runner.Run(ctx, season, week)
		if err != nil {
			log.WithError(err).Error("Scheduled pipeline run failed")
			return
		}
		log.WithFields(logrus.Fields{
			"edges":    result.Edges,
			"approved": len(result.Approved),
		}).Info("Scheduled pipeline run completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled pipeline job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
