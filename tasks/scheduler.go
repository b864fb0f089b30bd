package tasks

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Enqueuer accepts tasks for asynchronous processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, params map[string]string) error
}

// Scheduler puts tasks on the queue on a cron schedule. It never runs task
// handlers itself.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	log   *logrus.Entry
}

func NewScheduler(queue Enqueuer, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:  cron.New(),
		queue: queue,
		log:   log.WithField("component", "scheduler"),
	}
}

// Every enqueues the named task each time spec fires, e.g. "@every 1h" or "0 * * * *".
func (s *Scheduler) Every(spec string, name string, params map[string]string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.queue.Enqueue(context.Background(), name, params); err != nil {
			s.log.WithError(err).WithField("task", name).Error("could not enqueue scheduled task")
			return
		}
		s.log.WithField("task", name).Debug("scheduled task enqueued")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %v: %w", spec, name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("entries", len(s.cron.Entries())).Info("scheduler started")
}

// Stop prevents new runs and waits, bounded by ctx, for running jobs to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
