package analysis

import (
	"sync/atomic"

	"Prisme/internal/model"
	"Prisme/internal/store"
)

// Result pairs a report with the universe it was computed from.
type Result struct {
	Report   *model.Report
	Universe *store.Universe
}

// Latest holds the most recent Result for concurrent readers. The zero
// value is empty and ready to use; the owner creates it and hands it to
// the API and the scheduler.
type Latest struct {
	v atomic.Pointer[Result]
}

// Set publishes a new result. Readers holding the previous one keep it.
func (l *Latest) Set(report *model.Report, u *store.Universe) {
	l.v.Store(&Result{Report: report, Universe: u})
}

// Get returns the current result, or nil before the first Set.
func (l *Latest) Get() *Result {
	return l.v.Load()
}
