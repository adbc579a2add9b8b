// Package queue implements the single-flight task queue that drives a
// platform's candidate sequence under its rate limits, with cooperative
// cancellation, per-item error recovery, and progress accounting.
package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kekst/socialnuke/pkg/platform"
)

// Queue holds an ordered list of tasks and runs at most one at a time.
// Tasks are owned by the queue; callers interact through Add, Cancel
// and Tasks only.
type Queue struct {
	mu       sync.Mutex
	tasks    []*Task
	log      *slog.Logger
	sleep    Sleeper
	onChange func()
}

// Option configures the queue.
type Option func(*Queue)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(q *Queue) {
		q.log = log
	}
}

// WithSleeper swaps the suspension primitive (tests).
func WithSleeper(s Sleeper) Option {
	return func(q *Queue) {
		q.sleep = s
	}
}

// WithOnChange registers a callback invoked after every observable
// queue mutation. The callback runs on the queue's goroutine and must
// not call back into the queue.
func WithOnChange(fn func()) Option {
	return func(q *Queue) {
		q.onChange = fn
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		log:   slog.Default(),
		sleep: clockSleeper{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Add appends a task to the queue.
func (q *Queue) Add(t *Task) {
	q.mu.Lock()
	t.State = StateQueued
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
	q.notify()
}

// Cancel cancels the task with the given id. A task still waiting its
// turn is removed outright; a running task stops at its next
// checkpoint and is removed on the following scheduling pass.
func (q *Queue) Cancel(id string) {
	q.mu.Lock()
	for i, t := range q.tasks {
		if t.ID != id {
			continue
		}
		if t.State == StateQueued {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
		} else {
			t.State = StateCancelled
		}
		break
	}
	q.mu.Unlock()
	q.notify()
}

// Tasks returns a snapshot of the queue, active task first.
func (q *Queue) Tasks() []Info {
	q.mu.Lock()
	defer q.mu.Unlock()
	infos := make([]Info, len(q.tasks))
	for i, t := range q.tasks {
		infos[i] = t.info()
	}
	return infos
}

// Run drains the queue: it executes head tasks one at a time until the
// queue is empty or ctx is cancelled. Task-fatal errors are absorbed
// here; the failed task is simply removed.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := q.takeHead()
		if t == nil {
			return nil
		}

		switch t.Kind {
		case KindPurge:
			q.runPurge(ctx, t)
		case KindDump:
			q.runDump(ctx, t)
		default:
			q.log.Warn("unknown task kind", "task", t.ID, "kind", t.Kind)
		}

		q.popFinished()
	}
}

// takeHead transitions the head task to preparing if it is still
// queued. Returns nil when there is nothing runnable.
func (q *Queue) takeHead() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Clear out heads left behind by cancellation or completion.
	for len(q.tasks) > 0 && q.tasks[0].State != StateQueued {
		q.tasks = q.tasks[1:]
	}
	if len(q.tasks) == 0 {
		return nil
	}

	t := q.tasks[0]
	t.State = StatePreparing
	return t
}

// popFinished removes leading tasks that are no longer queued.
func (q *Queue) popFinished() {
	q.mu.Lock()
	for len(q.tasks) > 0 && q.tasks[0].State != StateQueued {
		q.tasks = q.tasks[1:]
	}
	q.mu.Unlock()
	q.notify()
}

// runPurge consumes the task's candidate sequence, deleting each item.
// Cancellation is polled at the top of every iteration and after every
// suspension, so at most one in-flight call finishes after a cancel.
func (q *Queue) runPurge(ctx context.Context, t *Task) {
	q.runTask(ctx, t, func(ctx context.Context, item platform.Item) bool {
		return q.deleteItem(ctx, t, item)
	})
}

// runDump consumes the sequence without deleting, pushing snapshots
// into the task's sink. A failed write skips the item, like a
// per-item fatal delete.
func (q *Queue) runDump(ctx context.Context, t *Task) {
	if t.Sink == nil {
		q.log.Error("dump task without sink", "task", t.ID)
		return
	}
	q.runTask(ctx, t, func(ctx context.Context, item platform.Item) bool {
		if err := t.Sink.Write(ctx, item.Snapshot()); err != nil {
			q.log.Warn("skipping item, sink write failed", "task", t.ID, "item", item.ID(), "error", err)
		}
		return true
	})
}

// runTask is the shared runner loop. handle processes one item and
// reports whether the task should continue.
func (q *Queue) runTask(ctx context.Context, t *Task, handle func(context.Context, platform.Item) bool) {
	q.mu.Lock()
	t.Current = 0
	t.State = StateProgress
	q.mu.Unlock()
	q.notify()

	q.log.Info("task started", "task", t.ID, "kind", t.Kind, "description", t.Description)

	for {
		if q.isCancelled(t) {
			q.log.Info("task cancelled", "task", t.ID)
			return
		}

		step := t.Source.Next(ctx)
		switch step.Kind {
		case platform.StepWait:
			if err := q.sleep.Sleep(ctx, step.Wait); err != nil {
				return
			}

		case platform.StepDone:
			q.log.Info("task finished", "task", t.ID, "processed", q.current(t))
			return

		case platform.StepFail:
			q.log.Warn("task aborted", "task", t.ID, "error", step.Err)
			return

		case platform.StepItem:
			if !handle(ctx, step.Item) {
				return
			}
			q.bump(t)
			q.notify()
			if err := q.sleep.Sleep(ctx, t.Delay); err != nil {
				return
			}
		}
	}
}

// deleteItem deletes one candidate, backing off as long as the server
// asks. A per-item fatal outcome is logged and skipped; it never
// aborts the task. Returns false only when the task should stop.
func (q *Queue) deleteItem(ctx context.Context, t *Task, item platform.Item) bool {
	for {
		if q.isCancelled(t) {
			return false
		}

		outcome := item.Delete(ctx)
		switch outcome.Kind {
		case platform.OutcomeOK:
			return true
		case platform.OutcomeRetry:
			if err := q.sleep.Sleep(ctx, outcome.RetryAfter); err != nil {
				return false
			}
		case platform.OutcomeFatal:
			q.log.Warn("skipping item, delete refused", "task", t.ID, "item", item.ID(), "error", outcome.Err)
			return true
		}
	}
}

func (q *Queue) isCancelled(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return t.State == StateCancelled
}

func (q *Queue) current(t *Task) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return t.Current
}

// bump advances progress by one, never past a known total.
func (q *Queue) bump(t *Task) {
	q.mu.Lock()
	if !t.HasTotal || t.Current < t.Total {
		t.Current++
	}
	q.mu.Unlock()
}

func (q *Queue) notify() {
	if q.onChange != nil {
		q.onChange()
	}
}
