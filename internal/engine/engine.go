// internal/engine/engine.go
//
// The progression engine is the single authority over game phase
// transitions. It is evaluated against wall-clock time by a periodic
// scheduler and by client-originated triggers, all funneled through the same
// idempotent Tick. The answer submission gate (submit.go) performs the only
// other player-status writes, and never touches game phase except for the
// final-round short-circuit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// Action summarizes what a tick did, for observability.
type Action string

const (
	ActionNone     Action = "none"
	ActionFinished Action = "finished"
)

func startedRoundAction(n int) Action {
	return Action(fmt.Sprintf("started_round_%d", n))
}

func processedRoundAction(n int) Action {
	return Action(fmt.Sprintf("processed_round_%d", n))
}

// MaxWinners caps how many players can place in a game.
const MaxWinners = 3

// Default timings; overridable per engine instance.
const (
	DefaultRoundDuration = 15 * time.Second
	DefaultBreakDuration = 30 * time.Second
	DefaultTickInterval  = 2 * time.Second
)

// Engine evaluates one game at a time against the current clock and applies
// at most one phase transition per tick. All writes are idempotent on
// conflict, so duplicate or overlapping triggers cannot corrupt state.
type Engine struct {
	// Clock is swapped for a fake in tests.
	Clock         clockwork.Clock
	RoundDuration time.Duration
	BreakDuration time.Duration
	TickInterval  time.Duration

	store Store
	feed  Notifier
	sf    singleflight.Group
}

// New builds an engine with production defaults.
func New(store Store, feed Notifier) *Engine {
	if feed == nil {
		feed = NopNotifier{}
	}
	return &Engine{
		Clock:         clockwork.NewRealClock(),
		RoundDuration: DefaultRoundDuration,
		BreakDuration: DefaultBreakDuration,
		TickInterval:  DefaultTickInterval,
		store:         store,
		feed:          feed,
	}
}

// Tick evaluates the targeted game (or the current game when gameID is
// uuid.Nil) and fires at most one transition. A tick that finds the game
// locked by another evaluation reports ActionNone: the other tick is doing
// the same work.
func (e *Engine) Tick(ctx context.Context, gameID uuid.UUID) (Action, error) {
	g, err := e.loadGame(ctx, gameID)
	if err != nil {
		return ActionNone, err
	}
	if g == nil {
		return ActionNone, nil
	}

	action := ActionNone
	err = e.store.WithGameLock(ctx, g.ID, func(ctx context.Context) error {
		// Re-read under the lock: a concurrent trigger may have already
		// advanced the game past the state we first observed.
		cur, err := e.store.Game(ctx, g.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return nil
		}
		action, err = e.evaluate(ctx, cur)
		return err
	})
	if errors.Is(err, ErrGameLocked) {
		return ActionNone, nil
	}
	if err != nil {
		return ActionNone, err
	}
	return action, nil
}

// TriggerTick is the entry point for client-originated progression triggers.
// Concurrent callers for the same game collapse onto a single in-flight Tick
// and share its result, so a burst of browser timers costs one evaluation.
func (e *Engine) TriggerTick(ctx context.Context, gameID uuid.UUID) (Action, error) {
	v, err, _ := e.sf.Do(gameID.String(), func() (interface{}, error) {
		return e.Tick(ctx, gameID)
	})
	if err != nil {
		return ActionNone, err
	}
	return v.(Action), nil
}

func (e *Engine) loadGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	if gameID == uuid.Nil {
		return e.store.CurrentGame(ctx)
	}
	return e.store.Game(ctx, gameID)
}

// evaluate branches on phase. Exactly one branch fires per call.
func (e *Engine) evaluate(ctx context.Context, g *models.Game) (Action, error) {
	now := e.Clock.Now()

	switch g.Status {
	case models.GameWaiting, models.GameFinished:
		// waiting -> countdown is an admin action; finished is terminal.
		return ActionNone, nil

	case models.GameCountdown:
		end := g.CountdownEndsAt()
		if end == nil || now.Before(*end) {
			return ActionNone, nil
		}
		return e.startRound(ctx, g, 1)

	case models.GameBreak:
		if g.BreakEndsAt == nil || now.Before(*g.BreakEndsAt) {
			return ActionNone, nil
		}
		next := g.CurrentRound + 1
		if next > g.TotalRounds {
			// A break should never outlive the terminal round; recover by
			// finalizing instead of inventing a round past the config.
			log.WithFields(log.Fields{
				"game_id": g.ID,
				"round":   g.CurrentRound,
			}).Warn("break past terminal round, finalizing")
			return e.finalizePastBreak(ctx, g, now)
		}
		return e.startRound(ctx, g, next)

	case models.GameActive:
		if g.CurrentRound < 1 {
			return ActionNone, nil
		}
		round, err := e.store.Round(ctx, g.ID, g.CurrentRound)
		if err != nil {
			return ActionNone, err
		}
		if round == nil {
			log.WithFields(log.Fields{
				"game_id": g.ID,
				"round":   g.CurrentRound,
			}).Warn("active game has no row for its current round")
			return ActionNone, nil
		}
		if !round.Expired(now) {
			return ActionNone, nil
		}
		return e.closeRound(ctx, g, round)
	}

	return ActionNone, nil
}

// finalizePastBreak handles the inconsistent break-after-terminal-round
// state: apply the terminal round's elimination pass if the round exists,
// rank what remains, then finish. Only survivors with a correct terminal
// answer can place, same as the regular close pass.
func (e *Engine) finalizePastBreak(ctx context.Context, g *models.Game, now time.Time) (Action, error) {
	terminal, err := e.store.Round(ctx, g.ID, g.TotalRounds)
	if err != nil {
		return ActionNone, err
	}
	if terminal != nil {
		survivors, err := e.store.ActivePlayers(ctx, g.ID)
		if err != nil {
			return ActionNone, err
		}
		answers, err := e.store.AnswersForRound(ctx, terminal.ID)
		if err != nil {
			return ActionNone, err
		}

		correct := make(map[string]bool, len(answers))
		for _, a := range answers {
			if a.IsCorrect {
				correct[a.PlayerID.String()] = true
			}
		}

		contenders := survivors[:0]
		for i := range survivors {
			p := survivors[i]
			if correct[p.ID.String()] {
				contenders = append(contenders, p)
				continue
			}
			if err := e.store.EliminatePlayer(ctx, p.ID, now); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"game_id":   g.ID,
					"player_id": p.ID,
				}).Error("failed to eliminate player while finalizing")
				continue
			}
			p.Status = models.PlayerEliminated
			p.EliminatedAt = &now
			e.feed.PlayerUpdated(ctx, &p)
		}

		e.resolveWinners(ctx, g, contenders, answers, now)
	}
	return e.finishGame(ctx, g, now)
}

// finishGame finalizes the game row and publishes the phase change.
func (e *Engine) finishGame(ctx context.Context, g *models.Game, now time.Time) (Action, error) {
	if err := e.store.FinishGame(ctx, g.ID, now); err != nil {
		return ActionNone, fmt.Errorf("finish game %s: %w", g.ID, err)
	}
	done := *g
	done.Status = models.GameFinished
	done.EndedAt = &now
	e.feed.GameUpdated(ctx, &done)
	log.WithField("game_id", g.ID).Info("game finished")
	return ActionFinished, nil
}
