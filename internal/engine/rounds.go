// internal/engine/rounds.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// startRound opens the given round number: inserts the round row with a
// fixed-duration answer window and flips the game to active. A duplicate
// insert means another trigger already opened it; the game update is applied
// regardless so a half-landed start from a crashed tick heals itself.
func (e *Engine) startRound(ctx context.Context, g *models.Game, roundNumber int) (Action, error) {
	now := e.Clock.Now()
	round := &models.Round{
		ID:          uuid.New(),
		GameID:      g.ID,
		RoundNumber: roundNumber,
		CorrectDoor: g.RoundConfig.Door(roundNumber),
		StartsAt:    now,
		EndsAt:      now.Add(e.RoundDuration),
		CreatedAt:   now,
	}

	err := e.store.CreateRound(ctx, round)
	switch {
	case errors.Is(err, ErrRoundExists):
		log.WithFields(log.Fields{
			"game_id": g.ID,
			"round":   roundNumber,
		}).Debug("round already created, treating as started")
	case err != nil:
		return ActionNone, fmt.Errorf("create round %d for game %s: %w", roundNumber, g.ID, err)
	default:
		e.feed.RoundStarted(ctx, round)
	}

	if err := e.store.SetGameActive(ctx, g.ID, roundNumber); err != nil {
		return ActionNone, fmt.Errorf("activate game %s for round %d: %w", g.ID, roundNumber, err)
	}

	active := *g
	active.Status = models.GameActive
	active.CurrentRound = roundNumber
	active.BreakEndsAt = nil
	e.feed.GameUpdated(ctx, &active)

	log.WithFields(log.Fields{
		"game_id": g.ID,
		"round":   roundNumber,
		"ends_at": round.EndsAt,
	}).Info("round started")
	return startedRoundAction(roundNumber), nil
}
