// Package realtime keeps the in-memory domain stores current with the
// database via Postgres LISTEN/NOTIFY. A trigger on the knowledge table
// raises a notification on every write; any notification triggers a full
// store reload.
package realtime

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const channelName = "knowledge_changed"

// Reloader refreshes the in-memory domain stores from persistence.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Listener holds a dedicated connection in LISTEN mode and reloads the
// stores whenever the knowledge table changes.
type Listener struct {
	pool     *pgxpool.Pool
	reloader Reloader
	doneChan chan struct{}
}

// NewListener creates a new Listener instance
func NewListener(pool *pgxpool.Pool, reloader Reloader) *Listener {
	return &Listener{
		pool:     pool,
		reloader: reloader,
		doneChan: make(chan struct{}),
	}
}

// Start blocks on notifications until the context is cancelled. The LISTEN
// connection is re-established with backoff after any failure; the ticker
// worker covers notifications lost during the gap.
func (l *Listener) Start(ctx context.Context) {
	defer close(l.doneChan)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			log.Printf("knowledge listener error, reconnecting: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+channelName); err != nil {
		return err
	}

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		if err := l.reloader.Reload(ctx); err != nil {
			log.Printf("store reload after notification failed: %v", err)
		}
	}
}

// Wait blocks until the listener has fully stopped.
func (l *Listener) Wait() {
	<-l.doneChan
}
