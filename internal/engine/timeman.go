package engine

import (
	"context"
	"time"
)

// TimeManager tracks the wall-clock budget of one move decision.
// A zero budget means no time limit. A cancelled context also stops the
// search regardless of the budget.
type TimeManager struct {
	budget    time.Duration
	startTime time.Time
	deadline  time.Time
	ctx       context.Context
}

// NewTimeManager creates a time manager with the given budget.
func NewTimeManager(budget time.Duration) *TimeManager {
	return &TimeManager{budget: budget}
}

// Start begins timing a new decision.
func (tm *TimeManager) Start() {
	tm.startTime = time.Now()
	tm.deadline = time.Time{}
	if tm.budget > 0 {
		tm.deadline = tm.startTime.Add(tm.budget)
	}
}

// Limited reports whether a time budget applies.
func (tm *TimeManager) Limited() bool {
	return tm.budget > 0
}

// Elapsed returns the time elapsed since the decision started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Remaining returns the time left before the deadline, or zero if unlimited.
func (tm *TimeManager) Remaining() time.Duration {
	if !tm.Limited() {
		return 0
	}
	return time.Until(tm.deadline)
}

// cancelled reports whether the context attached by withContext is done.
func (tm *TimeManager) cancelled() bool {
	return tm.ctx != nil && tm.ctx.Err() != nil
}

func (tm *TimeManager) withContext(ctx context.Context) *TimeManager {
	tm.ctx = ctx
	return tm
}

// ShouldStop returns true once the deadline has passed or the search was
// cancelled.
func (tm *TimeManager) ShouldStop() bool {
	if tm.cancelled() {
		return true
	}
	return tm.Limited() && !time.Now().Before(tm.deadline)
}

// CanStartIteration reports whether another iterative-deepening pass is
// worth starting: the previous pass took less time than what is left.
func (tm *TimeManager) CanStartIteration(lastIteration time.Duration) bool {
	if tm.cancelled() {
		return false
	}
	if !tm.Limited() {
		return true
	}
	remaining := tm.Remaining()
	return remaining > 0 && lastIteration < remaining
}
