package platform

import (
	"context"
	"time"
)

// StepKind discriminates the result of a single pull from a Sequence.
type StepKind int

const (
	// StepItem carries the next candidate.
	StepItem StepKind = iota
	// StepWait instructs the caller to sleep and pull again; the
	// sequence will re-issue the same request unchanged.
	StepWait
	// StepDone means the sequence is exhausted.
	StepDone
	// StepFail means an unrecoverable error ended the sequence.
	StepFail
)

// Step is one pull result from a Sequence.
type Step struct {
	Kind StepKind
	Item Item          // set when Kind == StepItem
	Wait time.Duration // set when Kind == StepWait
	Err  error         // set when Kind == StepFail
}

// Sequence is a forward-only lazy sequence of deletion candidates for
// one target. Callers must consume it strictly in order: cursor
// advancement depends on the last yielded item having been observed.
type Sequence interface {
	Next(ctx context.Context) Step
}

// OutcomeKind discriminates the result of a single delete call.
type OutcomeKind int

const (
	// OutcomeOK means the item was deleted.
	OutcomeOK OutcomeKind = iota
	// OutcomeRetry means back off and retry the same item.
	OutcomeRetry
	// OutcomeFatal means the item can never be deleted; skip it.
	OutcomeFatal
)

// Outcome classifies a delete attempt.
type Outcome struct {
	Kind       OutcomeKind
	RetryAfter time.Duration // set when Kind == OutcomeRetry
	Err        error         // set when Kind == OutcomeFatal
}

// OK returns a successful outcome.
func OK() Outcome { return Outcome{Kind: OutcomeOK} }

// Retry returns a back-off outcome.
func Retry(after time.Duration) Outcome {
	return Outcome{Kind: OutcomeRetry, RetryAfter: after}
}

// Fatal returns a permanently-failed outcome.
func Fatal(err error) Outcome { return Outcome{Kind: OutcomeFatal, Err: err} }
