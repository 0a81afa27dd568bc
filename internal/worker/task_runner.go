package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/domain/repository"
	"github.com/polkiloo/codguard/internal/telemetry"
)

// Handler executes a claimed task.
type Handler func(ctx context.Context) error

// TaskRunner polls the task table and runs due tasks concurrently.
type TaskRunner struct {
	tasks        repository.TaskScheduler
	pollInterval time.Duration
	batchSize    int
	workers      int
	now          func() time.Time
	logger       *slog.Logger

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	jobs   chan model.ScheduledTask
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewTaskRunner constructs task runner worker pool.
func NewTaskRunner(tasks repository.TaskScheduler, pollInterval time.Duration, workers int, logger *slog.Logger) *TaskRunner {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	batchSize := workers * 2
	return &TaskRunner{
		tasks:        tasks,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		now:          time.Now,
		logger:       logger,
		handlers:     make(map[string]Handler),
	}
}

// Register binds handler to task name, replacing any previous one.
func (r *TaskRunner) Register(name string, handler Handler) {
	r.handlersMu.Lock()
	defer r.handlersMu.Unlock()
	r.handlers[name] = handler
}

func (r *TaskRunner) handler(name string) (Handler, bool) {
	r.handlersMu.RLock()
	defer r.handlersMu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Start launches background processing.
func (r *TaskRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.jobs = make(chan model.ScheduledTask, r.batchSize)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, r.jobs)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, r.jobs)
}

// Stop cancels polling and waits for running tasks to finish.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *TaskRunner) dispatch(ctx context.Context, jobs chan<- model.ScheduledTask) {
	defer r.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.claimAndDispatch(ctx, jobs)
		}
	}
}

func (r *TaskRunner) claimAndDispatch(ctx context.Context, jobs chan<- model.ScheduledTask) {
	due, err := r.tasks.ClaimDue(ctx, r.now(), r.batchSize)
	if err != nil {
		r.logger.Error("claim due tasks failed", slog.String("error", err.Error()))
		return
	}
	for _, task := range due {
		select {
		case <-ctx.Done():
			r.logger.Warn("claimed task dropped on shutdown", slog.String("task", task.Name))
			return
		case jobs <- task:
		}
	}
}

func (r *TaskRunner) worker(ctx context.Context, jobs <-chan model.ScheduledTask) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-jobs:
			if !ok {
				return
			}
			r.run(ctx, task)
		}
	}
}

// RunDue claims due tasks and runs them on the calling goroutine.
// It returns the number of claimed tasks.
func (r *TaskRunner) RunDue(ctx context.Context) (int, error) {
	due, err := r.tasks.ClaimDue(ctx, r.now(), r.batchSize)
	if err != nil {
		return 0, err
	}
	for _, task := range due {
		r.run(ctx, task)
	}
	return len(due), nil
}

func (r *TaskRunner) run(ctx context.Context, task model.ScheduledTask) {
	handler, ok := r.handler(task.Name)
	if !ok {
		r.logger.Warn("no handler for scheduled task", slog.String("task", task.Name))
		return
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "task "+task.Name)
	defer span.End()
	span.SetAttributes(
		attribute.String("task.name", task.Name),
		attribute.String("task.run_at", task.RunAt.Format(time.RFC3339)),
	)

	started := r.now()
	if err := handler(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("scheduled task failed", slog.String("task", task.Name), slog.String("error", err.Error()))
		return
	}
	r.logger.Info("scheduled task finished",
		slog.String("task", task.Name),
		slog.Duration("lag", started.Sub(task.RunAt)),
	)
}
