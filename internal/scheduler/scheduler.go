package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/service"
)

// Ranker runs one ranking pass. *service.RankingService satisfies it.
type Ranker interface {
	Rank(ctx context.Context, opts service.RankOptions) (*service.Ranking, error)
}

// JobConfig describes the recurring ranking job. AsOf is taken from the
// clock at each tick.
type JobConfig struct {
	LookaheadMonths int
	ExcludePast     bool
	Limit           int
	OutputPath      string
	Timeout         time.Duration
}

// RunStatus describes the most recent ranking run.
type RunStatus struct {
	RunID       string           `json:"run_id,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Results     int              `json:"results"`
	Stats       service.RunStats `json:"stats"`
	Error       string           `json:"error,omitempty"`
}

// Scheduler runs ranking passes on a cron schedule and keeps the latest result.
type Scheduler struct {
	cron            *cron.Cron
	ranker          Ranker
	logger          *logrus.Logger
	now             func() time.Time
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	job             JobConfig
	last            *RunStatus
	latest          *service.Ranking
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Schedules are evaluated in UTC.
func NewScheduler(ranker Ranker, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ranker:          ranker,
		logger:          logger,
		now:             time.Now,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRanking registers the ranking job under cronExpression.
func (s *Scheduler) ScheduleRanking(cronExpression string, job JobConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if job.Timeout <= 0 {
		job.Timeout = time.Hour
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
		defer cancel()
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.job = job
	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled ranking job")

	return nil
}

// RunNow executes the ranking job once and records its status. The export
// file, when configured, is only replaced by a successful run.
func (s *Scheduler) RunNow(ctx context.Context) RunStatus {
	s.mu.RLock()
	job := s.job
	s.mu.RUnlock()

	status := RunStatus{StartedAt: s.now().UTC()}
	ranking, err := s.ranker.Rank(ctx, service.RankOptions{
		AsOf:            status.StartedAt,
		LookaheadMonths: job.LookaheadMonths,
		ExcludePast:     job.ExcludePast,
		Limit:           job.Limit,
	})
	if err == nil && job.OutputPath != "" {
		err = service.ExportRanking(job.OutputPath, ranking)
	}
	status.CompletedAt = s.now().UTC()

	if err != nil {
		status.Error = err.Error()
		s.logger.WithError(err).Error("Scheduled ranking run failed")
	} else {
		status.RunID = ranking.RunID
		status.Results = len(ranking.Results)
		status.Stats = ranking.Stats
		s.logger.WithFields(logrus.Fields{
			"run_id": ranking.RunID,
			"stats":  ranking.Stats.String(),
		}).Info("Scheduled ranking run completed")
	}

	s.mu.Lock()
	s.last = &status
	if err == nil {
		s.latest = ranking
	}
	s.mu.Unlock()

	return status
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

// Stop stops the scheduler, waiting up to the graceful timeout for a running
// job to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns the status of the most recent run, if any.
func (s *Scheduler) LastRun() (RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunStatus{}, false
	}
	return *s.last, true
}

// Latest returns the most recent successful ranking, if any.
func (s *Scheduler) Latest() *service.Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
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
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
