// internal/engine/elimination.go
package engine

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// closeRound scores an expired round: every active player without a correct
// answer is eliminated, then the next phase is chosen from the recomputed
// survivor set. Per-player elimination failures are logged and skipped; the
// pass is safely re-runnable against the same closed round, so a later tick
// reconciles any row that slipped through.
func (e *Engine) closeRound(ctx context.Context, g *models.Game, round *models.Round) (Action, error) {
	now := e.Clock.Now()

	players, err := e.store.ActivePlayers(ctx, g.ID)
	if err != nil {
		return ActionNone, fmt.Errorf("load active players for game %s: %w", g.ID, err)
	}
	answers, err := e.store.AnswersForRound(ctx, round.ID)
	if err != nil {
		return ActionNone, fmt.Errorf("load answers for round %d: %w", round.RoundNumber, err)
	}

	correct := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.IsCorrect {
			correct[a.PlayerID.String()] = true
		}
	}

	for i := range players {
		p := players[i]
		if correct[p.ID.String()] {
			continue
		}
		if err := e.store.EliminatePlayer(ctx, p.ID, now); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"game_id":   g.ID,
				"player_id": p.ID,
				"round":     round.RoundNumber,
			}).Error("failed to eliminate player, will retry next tick")
			continue
		}
		p.Status = models.PlayerEliminated
		p.EliminatedAt = &now
		e.feed.PlayerUpdated(ctx, &p)
	}

	survivors, err := e.store.ActivePlayers(ctx, g.ID)
	if err != nil {
		return ActionNone, fmt.Errorf("recompute active players for game %s: %w", g.ID, err)
	}

	log.WithFields(log.Fields{
		"game_id":   g.ID,
		"round":     round.RoundNumber,
		"answers":   len(answers),
		"survivors": len(survivors),
	}).Info("round closed")

	// Termination is driven by player exhaustion or round-count exhaustion,
	// never by population size alone.
	if len(survivors) == 0 {
		return e.finishGame(ctx, g, now)
	}
	if round.RoundNumber >= g.TotalRounds {
		e.resolveWinners(ctx, g, survivors, answers, now)
		return e.finishGame(ctx, g, now)
	}

	breakEnds := now.Add(e.BreakDuration)
	if err := e.store.SetGameBreak(ctx, g.ID, breakEnds); err != nil {
		return ActionNone, fmt.Errorf("open break for game %s: %w", g.ID, err)
	}
	onBreak := *g
	onBreak.Status = models.GameBreak
	onBreak.BreakEndsAt = &breakEnds
	e.feed.GameUpdated(ctx, &onBreak)
	return processedRoundAction(round.RoundNumber), nil
}
