package jobs

import (
	"context"
)

// StoreReloader refreshes the in-memory domain stores from persistence.
type StoreReloader interface {
	Reload(ctx context.Context) error
}

// ReloadProcessor periodically reloads the domain stores. It backstops the
// change-notification listener: a missed or dropped notification is repaired
// on the next tick.
type ReloadProcessor struct {
	reloader StoreReloader
}

// NewReloadProcessor creates a new ReloadProcessor instance
func NewReloadProcessor(reloader StoreReloader) *ReloadProcessor {
	return &ReloadProcessor{reloader: reloader}
}

// ProcessJobs implements JobProcessor.
func (p *ReloadProcessor) ProcessJobs(ctx context.Context) error {
	return p.reloader.Reload(ctx)
}
