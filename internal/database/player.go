// internal/database/player.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

const playerColumns = `id, game_id, wallet_address, status, joined_at, eliminated_at, winner_rank`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.WalletAddress,
		&p.Status,
		&p.JoinedAt,
		&p.EliminatedAt,
		&p.WinnerRank,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlayers(rows pgx.Rows) ([]models.Player, error) {
	defer rows.Close()
	var out []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// JoinGame inserts a player row for (game, wallet). A duplicate wallet for
// the same game returns the existing row with alreadyJoined set, not an
// error and not a second entry.
func JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*models.Player, bool, error) {
	insert := `
		INSERT INTO players (id, game_id, wallet_address, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (game_id, wallet_address) DO NOTHING
	`
	id := uuid.New()
	tag, err := DB.Exec(ctx, insert, id, gameID, walletAddress)
	if err != nil {
		return nil, false, err
	}
	alreadyJoined := tag.RowsAffected() == 0

	q := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND wallet_address = $2`
	p, err := scanPlayer(DB.QueryRow(ctx, q, gameID, walletAddress))
	if err != nil {
		return nil, false, err
	}
	return p, alreadyJoined, nil
}

// GetPlayer fetches one player by id, nil when absent.
func GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(DB.QueryRow(ctx, q, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetActivePlayers lists players still in the running for a game.
func GetActivePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND status = 'active' ORDER BY joined_at`
	rows, err := DB.Query(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	return scanPlayers(rows)
}

// GetWinners lists a game's winners ordered by rank.
func GetWinners(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	q := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND status = 'winner' ORDER BY winner_rank`
	rows, err := DB.Query(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	return scanPlayers(rows)
}

// CountPlayers returns the total and still-active player counts for a game.
func CountPlayers(ctx context.Context, gameID uuid.UUID) (models.PlayerCounts, error) {
	var c models.PlayerCounts
	q := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active')
		FROM players WHERE game_id = $1
	`
	if err := DB.QueryRow(ctx, q, gameID).Scan(&c.Total, &c.Active); err != nil {
		return models.PlayerCounts{}, err
	}
	return c, nil
}

// EliminatePlayer flips an active player to eliminated. The status guard
// makes it a no-op for rows already settled, so status never reverts.
func EliminatePlayer(ctx context.Context, playerID uuid.UUID, at time.Time) error {
	q := `
		UPDATE players
		SET status = 'eliminated', eliminated_at = $2
		WHERE id = $1 AND status = 'active'
	`
	_, err := DB.Exec(ctx, q, playerID, at)
	return err
}

// PromoteWinner assigns the next free winner rank to an active player. The
// partial unique index on (game_id, winner_rank) is the arbiter when two
// submissions race for the same rank: the loser retries against the next
// slot until the three ranks are gone.
func PromoteWinner(ctx context.Context, gameID, playerID uuid.UUID) (int, error) {
	q := `
		UPDATE players p
		SET status = 'winner', winner_rank = next.rank
		FROM (
			SELECT COALESCE(MAX(winner_rank), 0) + 1 AS rank
			FROM players
			WHERE game_id = $1 AND status = 'winner'
		) next
		WHERE p.id = $2 AND p.game_id = $1 AND p.status = 'active' AND next.rank <= 3
		RETURNING p.winner_rank
	`
	for attempt := 0; attempt < 4; attempt++ {
		var rank int
		err := DB.QueryRow(ctx, q, gameID, playerID).Scan(&rank)
		if err == nil {
			return rank, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			p, lookupErr := GetPlayer(ctx, playerID)
			if lookupErr != nil {
				return 0, lookupErr
			}
			if p == nil || p.Status != models.PlayerActive {
				return 0, engine.ErrPlayerNotActive
			}
			return 0, engine.ErrWinnersFull
		}
		if isUniqueViolation(err) {
			log.WithFields(log.Fields{
				"game_id":   gameID,
				"player_id": playerID,
			}).Debug("winner rank contention, retrying")
			continue
		}
		return 0, err
	}

	// Retries only burn on rank contention, so exhausting them does not by
	// itself mean the ranks are gone. Only report ErrWinnersFull when they
	// verifiably are; otherwise surface the contention, since callers
	// eliminate players on ErrWinnersFull.
	winners, err := GetWinners(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if len(winners) >= engine.MaxWinners {
		return 0, engine.ErrWinnersFull
	}
	return 0, fmt.Errorf("winner rank contention for player %s in game %s", playerID, gameID)
}
