// internal/engine/winners.go
package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// resolveWinners ranks the terminal-round survivors by answer submission
// order, earliest first. Ranks already assigned by the submission gate's
// final-round short-circuit are fixed; only unranked survivors are placed,
// never more than MaxWinners in total. Survivors left over once the ranks
// are full are eliminated so the finished game has no dangling actives.
func (e *Engine) resolveWinners(ctx context.Context, g *models.Game, survivors []models.Player, answers []models.Answer, now time.Time) {
	if len(survivors) == 0 {
		return
	}

	submittedAt := make(map[string]time.Time, len(answers))
	for _, a := range answers {
		submittedAt[a.PlayerID.String()] = a.SubmittedAt
	}

	ordered := make([]models.Player, len(survivors))
	copy(ordered, survivors)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, iOK := submittedAt[ordered[i].ID.String()]
		tj, jOK := submittedAt[ordered[j].ID.String()]
		if iOK != jOK {
			// A survivor without a recorded answer sorts last.
			return iOK
		}
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	for i := range ordered {
		p := ordered[i]
		rank, err := e.store.PromoteWinner(ctx, g.ID, p.ID)
		switch {
		case errors.Is(err, ErrWinnersFull):
			if elimErr := e.store.EliminatePlayer(ctx, p.ID, now); elimErr != nil {
				log.WithError(elimErr).WithFields(log.Fields{
					"game_id":   g.ID,
					"player_id": p.ID,
				}).Error("failed to eliminate unplaced survivor")
				continue
			}
			p.Status = models.PlayerEliminated
			p.EliminatedAt = &now
			e.feed.PlayerUpdated(ctx, &p)
		case errors.Is(err, ErrPlayerNotActive):
			// Already ranked by the submission gate, or eliminated by a
			// concurrent pass. Either way the row is settled.
		case err != nil:
			log.WithError(err).WithFields(log.Fields{
				"game_id":   g.ID,
				"player_id": p.ID,
			}).Error("failed to promote winner")
		default:
			p.Status = models.PlayerWinner
			p.WinnerRank = &rank
			e.feed.PlayerUpdated(ctx, &p)
			log.WithFields(log.Fields{
				"game_id":   g.ID,
				"player_id": p.ID,
				"rank":      rank,
			}).Info("winner placed")
		}
	}
}
