package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kekst/socialnuke/pkg/platform"
)

// Kind is the task kind.
type Kind string

const (
	// KindPurge deletes every candidate the source yields.
	KindPurge Kind = "purge"
	// KindDump writes every candidate to a sink without deleting.
	KindDump Kind = "dump"
)

// State is the task lifecycle state. Completed tasks have no state of
// their own; they are removed from the queue.
type State string

const (
	StateQueued    State = "queued"
	StatePreparing State = "preparing"
	StateProgress  State = "progress"
	StateCancelled State = "cancelled"
)

// Sink receives dump records. Implementations live outside the queue;
// the queue only pushes snapshots into it.
type Sink interface {
	Write(ctx context.Context, snap platform.Snapshot) error
}

// Task is one unit of queued work. After construction only State,
// Current and Total change, and only the queue mutates them.
type Task struct {
	ID          string
	Kind        Kind
	Platform    string
	Owner       string
	Description string
	IconURL     string

	// Source yields the candidates; Delay is the courtesy pause
	// between consecutive candidates.
	Source platform.Sequence
	Delay  time.Duration

	// Sink is required for dump tasks.
	Sink Sink

	State    State
	Current  int
	Total    int
	HasTotal bool
}

// NewTask builds a queued task with a fresh id.
func NewTask(kind Kind, source platform.Sequence) *Task {
	return &Task{
		ID:     uuid.NewString(),
		Kind:   kind,
		Source: source,
		State:  StateQueued,
	}
}

// SetTotal records the estimated candidate count. The total is set at
// most once; later calls are ignored.
func (t *Task) SetTotal(total int) {
	if t.HasTotal {
		return
	}
	if total < 0 {
		total = 0
	}
	t.Total = total
	t.HasTotal = true
}

// Info is a read-only snapshot of a task for observers.
type Info struct {
	ID          string
	Kind        Kind
	Platform    string
	Owner       string
	Description string
	IconURL     string
	State       State
	Current     int
	Total       int
	HasTotal    bool
}

func (t *Task) info() Info {
	return Info{
		ID:          t.ID,
		Kind:        t.Kind,
		Platform:    t.Platform,
		Owner:       t.Owner,
		Description: t.Description,
		IconURL:     t.IconURL,
		State:       t.State,
		Current:     t.Current,
		Total:       t.Total,
		HasTotal:    t.HasTotal,
	}
}
