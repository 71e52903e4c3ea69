// internal/engine/scheduler.go
package engine

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RunScheduler ticks the current game on a fixed cadence until ctx is
// cancelled. Ticks are strictly sequential within this loop, and the DB-level
// game lock keeps a second process's scheduler from evaluating the same game
// concurrently. Client-originated triggers share in-flight evaluations via
// TriggerTick, so the scheduler never races them either.
func (e *Engine) RunScheduler(ctx context.Context) {
	ticker := e.Clock.NewTicker(e.TickInterval)
	defer ticker.Stop()

	log.WithField("interval", e.TickInterval).Info("progression scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Info("progression scheduler stopped")
			return
		case <-ticker.Chan():
			action, err := e.TriggerTick(ctx, uuid.Nil)
			if err != nil {
				// Transient store errors are retried on the next tick.
				log.WithError(err).Error("progression tick failed")
				continue
			}
			if action != ActionNone {
				log.WithField("action", action).Info("progression tick applied")
			}
		}
	}
}
