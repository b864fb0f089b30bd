// Package tasks runs deferred work outside of the request path: a work queue
// with at-least-once delivery, a cron scheduler feeding it, and the mailer
// used by the confirmation task.
package tasks

import (
	"conference-app/metrics"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Names of the tasks known to the service.
const (
	SEND_CONFIRMATION_EMAIL string = "send_confirmation_email"
	UPDATE_FEATURED_SPEAKER string = "update_featured_speaker"
	SET_ANNOUNCEMENT        string = "set_announcement"
)

var (
	ErrQueueStopped = errors.New("task queue is stopped")
	ErrUnknownTask  = errors.New("no handler registered for task")
	ErrQueueFull    = errors.New("task queue is full")
)

// Handler processes one task. It may be called more than once for the same
// task, so it must be idempotent.
type Handler func(ctx context.Context, params map[string]string) error

type Task struct {
	Name    string
	Params  map[string]string
	attempt int
}

type QueueConfig struct {
	Workers     int
	MaxAttempts int
	RetryDelay  time.Duration
	Buffer      int
}

// Queue is an in-process work queue. A failed task is retried after
// attempt*RetryDelay until MaxAttempts is reached, then dropped and logged.
type Queue struct {
	config   QueueConfig
	log      *logrus.Entry
	handlers map[string]Handler
	tasks    chan Task

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	workers sync.WaitGroup
	pending sync.WaitGroup
}

func NewQueue(config QueueConfig, log *logrus.Logger) *Queue {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Buffer < 1 {
		config.Buffer = 256
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Queue{
		config:   config,
		log:      log.WithField("component", "task-queue"),
		handlers: map[string]Handler{},
		tasks:    make(chan Task, config.Buffer),
	}
}

// Register binds a handler to a task name. Registering after Start is not supported.
func (q *Queue) Register(name string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = handler
}

// Enqueue accepts a task for asynchronous processing. It never waits for
// room in the buffer: a full queue returns ErrQueueFull.
func (q *Queue) Enqueue(ctx context.Context, name string, params map[string]string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}
	if _, ok := q.handlers[name]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownTask, name)
	}

	q.pending.Add(1)
	select {
	case q.tasks <- Task{Name: name, Params: copyParams(params)}:
		return nil
	default:
		q.pending.Done()
		return fmt.Errorf("%w: %v", ErrQueueFull, name)
	}
}

func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running || q.stopped {
		q.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.running = true
	q.mu.Unlock()

	for i := 0; i < q.config.Workers; i++ {
		q.workers.Add(1)
		go q.work(runCtx)
	}
	q.log.WithField("workers", q.config.Workers).Info("task queue started")
}

// Flush blocks until every accepted task has succeeded or used up its attempts.
func (q *Queue) Flush() {
	q.pending.Wait()
}

// Stop refuses new tasks, lets accepted ones finish and stops the workers.
// Waiting is bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	cancel := q.cancel
	if !q.running {
		q.dropBuffered()
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.pending.Wait()
		if cancel != nil {
			cancel()
		}
		q.workers.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return ctx.Err()
	}

	q.log.Info("task queue stopped")
	return nil
}

// dropBuffered discards tasks nobody will run because the workers never started.
func (q *Queue) dropBuffered() {
	for {
		select {
		case task := <-q.tasks:
			q.log.WithField("task", task.Name).Warn("queue stopped before start, dropping task")
			q.pending.Done()
		default:
			return
		}
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			q.run(ctx, task)
		}
	}
}

func (q *Queue) run(ctx context.Context, task Task) {
	task.attempt++

	q.mu.Lock()
	handler := q.handlers[task.Name]
	q.mu.Unlock()

	start := time.Now()
	err := handler(ctx, task.Params)
	metrics.RecordTask(task.Name, err, time.Since(start))

	if err == nil {
		q.pending.Done()
		return
	}

	entry := q.log.WithError(err).WithFields(logrus.Fields{
		"task":    task.Name,
		"attempt": task.attempt,
	})
	if task.attempt >= q.config.MaxAttempts || ctx.Err() != nil {
		entry.Error("task failed, giving up")
		q.pending.Done()
		return
	}

	entry.Warn("task failed, will retry")
	delay := time.Duration(task.attempt) * q.config.RetryDelay
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			select {
			case q.tasks <- task:
				return
			case <-ctx.Done():
			}
		case <-ctx.Done():
			q.log.WithField("task", task.Name).Warn("queue stopped before retry")
			q.pending.Done()
		}
	}()
}

func copyParams(params map[string]string) map[string]string {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return copied
}
