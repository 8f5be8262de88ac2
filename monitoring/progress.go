package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts work items of one long-running task so the
// dashboard can show completion. All counter updates are safe to call
// from the simulation thread while the server reads.
type ProgressBar struct {
	sync.Mutex
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress marks more items as started but not finished.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	b.InProgress += amount
	b.Unlock()
}

// IncrementFinished marks items as finished directly.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	b.Finished += amount
	b.Unlock()
}

// MoveInProgressToFinished completes items that were in progress.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	b.InProgress -= amount
	b.Finished += amount
	b.Unlock()
}
