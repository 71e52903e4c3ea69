// internal/engine/submit.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// SubmitResult is what the gate reveals to the caller. The correct door is
// never part of it, directly or via errors.
type SubmitResult struct {
	IsCorrect        bool `json:"is_correct"`
	AlreadySubmitted bool `json:"already_submitted"`
}

// Submit validates and records one player's answer for a round. Correctness
// is evaluated only here, inside the trusted boundary. At most one answer
// per (round, player) exists; a duplicate call returns the first answer's
// result with AlreadySubmitted set and mutates nothing.
//
// Side effects: a wrong answer eliminates the player immediately instead of
// waiting for the close pass. A correct answer on the terminal round claims
// the next winner rank on the spot; the third rank ends the game early,
// eliminating everyone still undecided.
func (e *Engine) Submit(ctx context.Context, roundID, playerID uuid.UUID, selectedDoor int) (SubmitResult, error) {
	if selectedDoor < 1 || selectedDoor > 3 {
		return SubmitResult{}, ErrInvalidDoor
	}

	round, err := e.store.RoundByID(ctx, roundID)
	if err != nil {
		return SubmitResult{}, err
	}
	if round == nil {
		return SubmitResult{}, ErrRoundNotFound
	}
	game, err := e.store.Game(ctx, round.GameID)
	if err != nil {
		return SubmitResult{}, err
	}
	if game == nil {
		return SubmitResult{}, ErrRoundNotFound
	}
	player, err := e.store.Player(ctx, playerID)
	if err != nil {
		return SubmitResult{}, err
	}
	if player == nil || player.GameID != round.GameID {
		return SubmitResult{}, ErrPlayerNotFound
	}

	// The duplicate reply is unconditional. The first submission may already
	// have settled the player's status (wrong answer eliminates, a terminal
	// correct answer ranks), so this lookup has to run before the status
	// gate or retries would flip from a result to an error.
	if first, err := e.store.Answer(ctx, round.ID, player.ID); err != nil {
		return SubmitResult{}, err
	} else if first != nil {
		return SubmitResult{IsCorrect: first.IsCorrect, AlreadySubmitted: true}, nil
	}

	if player.Status != models.PlayerActive {
		return SubmitResult{}, ErrPlayerNotActive
	}

	now := e.Clock.Now()
	if now.Before(round.StartsAt) {
		return SubmitResult{}, ErrRoundNotOpen
	}
	if round.Expired(now) {
		// Grace window: a submission racing the close pass is honored as
		// long as the engine still shows this round as the live one.
		if game.Status != models.GameActive || game.CurrentRound != round.RoundNumber {
			return SubmitResult{}, ErrRoundNotOpen
		}
	}

	isCorrect := selectedDoor == round.CorrectDoor
	answer := &models.Answer{
		ID:           uuid.New(),
		RoundID:      round.ID,
		PlayerID:     player.ID,
		SelectedDoor: selectedDoor,
		IsCorrect:    isCorrect,
		SubmittedAt:  now,
	}

	err = e.store.CreateAnswer(ctx, answer)
	if errors.Is(err, ErrAnswerExists) {
		first, lookupErr := e.store.Answer(ctx, round.ID, player.ID)
		if lookupErr != nil {
			return SubmitResult{}, lookupErr
		}
		if first == nil {
			return SubmitResult{AlreadySubmitted: true}, nil
		}
		return SubmitResult{IsCorrect: first.IsCorrect, AlreadySubmitted: true}, nil
	}
	if err != nil {
		return SubmitResult{}, fmt.Errorf("record answer: %w", err)
	}

	if !isCorrect {
		if err := e.eliminateNow(ctx, player, now); err != nil {
			log.WithError(err).WithField("player_id", player.ID).
				Error("failed to eliminate player on wrong answer, close pass will reconcile")
		}
		return SubmitResult{IsCorrect: false}, nil
	}

	if round.RoundNumber >= game.TotalRounds {
		return e.placeTerminalWinner(ctx, game, player, now)
	}
	// Non-terminal correct answer: survival is confirmed at round close.
	return SubmitResult{IsCorrect: true}, nil
}

func (e *Engine) eliminateNow(ctx context.Context, player *models.Player, now time.Time) error {
	if err := e.store.EliminatePlayer(ctx, player.ID, now); err != nil {
		return err
	}
	out := *player
	out.Status = models.PlayerEliminated
	out.EliminatedAt = &now
	e.feed.PlayerUpdated(ctx, &out)
	return nil
}

// placeTerminalWinner claims the next winner rank for a correct final-round
// answer. The rank assignment is atomic in the store, so two racing correct
// answers cannot both take rank three.
func (e *Engine) placeTerminalWinner(ctx context.Context, game *models.Game, player *models.Player, now time.Time) (SubmitResult, error) {
	rank, err := e.store.PromoteWinner(ctx, game.ID, player.ID)
	switch {
	case errors.Is(err, ErrWinnersFull):
		// Correct, but too late to place.
		if elimErr := e.eliminateNow(ctx, player, now); elimErr != nil {
			log.WithError(elimErr).WithField("player_id", player.ID).
				Error("failed to eliminate late correct answer")
		}
		return SubmitResult{IsCorrect: true}, nil
	case err != nil:
		return SubmitResult{}, fmt.Errorf("promote winner: %w", err)
	}

	won := *player
	won.Status = models.PlayerWinner
	won.WinnerRank = &rank
	e.feed.PlayerUpdated(ctx, &won)
	log.WithFields(log.Fields{
		"game_id":   game.ID,
		"player_id": player.ID,
		"rank":      rank,
	}).Info("winner placed at submission")

	if rank >= MaxWinners {
		// Third rank claimed mid-round: the rest of the field is out and the
		// game ends now, bypassing the round timer.
		remaining, err := e.store.ActivePlayers(ctx, game.ID)
		if err != nil {
			return SubmitResult{IsCorrect: true}, fmt.Errorf("load remaining players: %w", err)
		}
		for i := range remaining {
			if err := e.eliminateNow(ctx, &remaining[i], now); err != nil {
				log.WithError(err).WithField("player_id", remaining[i].ID).
					Error("failed to eliminate player on early finish")
			}
		}
		if _, err := e.finishGame(ctx, game, now); err != nil {
			return SubmitResult{IsCorrect: true}, err
		}
	}
	return SubmitResult{IsCorrect: true}, nil
}
