package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	testhelpers "github.com/polkiloo/codguard/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewTaskRunnerDefaults(t *testing.T) {
	runner := NewTaskRunner(testhelpers.NewTaskSchedulerStub(), 0, 0, testLogger())
	if runner.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", runner.workers)
	}
	if runner.pollInterval != time.Second {
		t.Fatalf("expected poll interval default to 1s, got %v", runner.pollInterval)
	}
	if runner.batchSize != 2 {
		t.Fatalf("expected batch size 2, got %d", runner.batchSize)
	}
}

func TestTaskRunnerRunsDueTasks(t *testing.T) {
	tasks := testhelpers.NewTaskSchedulerStub()
	ctx := context.Background()
	if _, err := tasks.ScheduleOnce(ctx, "flush", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	var calls int32
	runner := NewTaskRunner(tasks, 5*time.Millisecond, 1, testLogger())
	runner.Register("flush", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	runner.Start(ctx)
	deadline := time.After(time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for task execution")
		case <-time.After(5 * time.Millisecond):
		}
	}
	runner.Stop()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected single execution, got %d", got)
	}
	if tasks.Count() != 0 {
		t.Fatal("expected task to be consumed")
	}
}

func TestTaskRunnerSkipsFutureTasks(t *testing.T) {
	tasks := testhelpers.NewTaskSchedulerStub()
	ctx := context.Background()
	if _, err := tasks.ScheduleOnce(ctx, "flush", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	runner := NewTaskRunner(tasks, time.Second, 1, testLogger())
	runner.Register("flush", func(context.Context) error {
		t.Error("task ran before its time")
		return nil
	})

	n, err := runner.RunDue(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected nothing claimed, got %d err=%v", n, err)
	}
	if tasks.Count() != 1 {
		t.Fatal("future task must stay pending")
	}
}

func TestTaskRunnerHandlerFailureAndUnknownTask(t *testing.T) {
	tasks := testhelpers.NewTaskSchedulerStub()
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)
	for _, name := range []string{"flush", "unknown"} {
		if _, err := tasks.ScheduleOnce(ctx, name, past); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	var calls int
	runner := NewTaskRunner(tasks, time.Second, 1, testLogger())
	runner.Register("flush", func(context.Context) error {
		calls++
		return errors.New("upstream down")
	})

	n, err := runner.RunDue(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both tasks claimed, got %d", n)
	}
	if calls != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
	if tasks.Count() != 0 {
		t.Fatal("failed and unknown tasks are not re-queued")
	}
}

func TestTaskRunnerUsesClock(t *testing.T) {
	tasks := testhelpers.NewTaskSchedulerStub()
	ctx := context.Background()
	at := time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)
	if _, err := tasks.ScheduleOnce(ctx, "flush", at); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	runner := NewTaskRunner(tasks, time.Second, 1, testLogger())
	runner.now = func() time.Time { return at.Add(-time.Second) }
	var ran bool
	runner.Register("flush", func(context.Context) error { ran = true; return nil })

	if n, _ := runner.RunDue(ctx); n != 0 || ran {
		t.Fatal("task must not run before its scheduled time")
	}
	runner.now = func() time.Time { return at }
	if n, _ := runner.RunDue(ctx); n != 1 || !ran {
		t.Fatal("task must run once its time is reached")
	}
}

func TestTaskRunnerStopWithoutStart(t *testing.T) {
	runner := NewTaskRunner(testhelpers.NewTaskSchedulerStub(), time.Millisecond, 2, testLogger())
	runner.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)
	runner.Start(ctx)
	cancel()
	runner.Stop()
}
