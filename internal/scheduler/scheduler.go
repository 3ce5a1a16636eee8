// Package scheduler runs the engine's recurring jobs on cron schedules.
package scheduler

import (
	"match-engine/internal/common/logger"

	"github.com/robfig/cron/v3"
)

// Job is one schedulable unit of work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger
}

// New creates a scheduler with seconds-resolution cron expressions.
func New(log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: log.WithFields(map[string]interface{}{"component": "scheduler"}),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", nil)
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped", nil)
}

// AddJob registers a job on a cron schedule, e.g. "0 0 3 * * *" for 03:00
// daily. Job failures are logged, never fatal.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug("running job", map[string]interface{}{"job": job.Name()})
		if err := job.Run(); err != nil {
			s.logger.Error("job failed", map[string]interface{}{
				"job":   job.Name(),
				"error": err,
			})
			return
		}
		s.logger.Debug("job completed", map[string]interface{}{"job": job.Name()})
	})
	if err != nil {
		return err
	}

	s.logger.Info("job registered", map[string]interface{}{
		"job":      job.Name(),
		"schedule": schedule,
	})
	return nil
}
