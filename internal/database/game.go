// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

const gameColumns = `
	id, status, current_round, total_rounds,
	started_at, countdown_minutes, break_ends_at, ended_at,
	round_config, created_at, updated_at
`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	var configRaw []byte
	err := row.Scan(
		&g.ID,
		&g.Status,
		&g.CurrentRound,
		&g.TotalRounds,
		&g.StartedAt,
		&g.CountdownMinutes,
		&g.BreakEndsAt,
		&g.EndedAt,
		&configRaw,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(configRaw) > 0 {
		if err := json.Unmarshal(configRaw, &g.RoundConfig); err != nil {
			return nil, fmt.Errorf("decode round config: %w", err)
		}
	}
	return &g, nil
}

// InsertGame creates a game in the waiting phase with its hidden round
// configuration.
func InsertGame(ctx context.Context, game *models.Game) error {
	configRaw, err := json.Marshal(game.RoundConfig)
	if err != nil {
		return fmt.Errorf("encode round config: %w", err)
	}
	q := `
		INSERT INTO games (id, status, current_round, total_rounds, countdown_minutes, round_config)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			game.ID,
			game.Status,
			game.CurrentRound,
			game.TotalRounds,
			game.CountdownMinutes,
			configRaw,
		)
		return err
	})
}

// GetCurrentGame returns the most recently created game, or nil when the
// table is empty. The latest game is the only one player-facing queries see.
func GetCurrentGame(ctx context.Context) (*models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC LIMIT 1`
	g, err := scanGame(DB.QueryRow(ctx, q))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// GetGame fetches one game by id, nil when absent.
func GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(DB.QueryRow(ctx, q, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// StartCountdown arms a waiting game: records the countdown anchor and
// length alongside the final round configuration. Guarded so a game past
// waiting cannot be re-armed.
func StartCountdown(ctx context.Context, gameID uuid.UUID, startedAt time.Time, countdownMinutes int, config models.RoundConfig) error {
	configRaw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode round config: %w", err)
	}
	q := `
		UPDATE games
		SET status = 'countdown', started_at = $2, countdown_minutes = $3,
		    round_config = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'waiting'
	`
	tag, err := DB.Exec(ctx, q, gameID, startedAt, countdownMinutes, configRaw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s is not waiting", gameID)
	}
	return nil
}

// SetGameActive flips the game to active on the given round. A no-op once
// the game is finished, so a stale tick cannot resurrect it.
func SetGameActive(ctx context.Context, gameID uuid.UUID, roundNumber int) error {
	q := `
		UPDATE games
		SET status = 'active', current_round = $2, break_ends_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'finished'
	`
	_, err := DB.Exec(ctx, q, gameID, roundNumber)
	return err
}

// SetGameBreak opens the between-rounds break window.
func SetGameBreak(ctx context.Context, gameID uuid.UUID, breakEndsAt time.Time) error {
	q := `
		UPDATE games
		SET status = 'break', break_ends_at = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'finished'
	`
	_, err := DB.Exec(ctx, q, gameID, breakEndsAt)
	return err
}

// FinishGame finalizes the game. Idempotent: a second call leaves the first
// ended_at in place.
func FinishGame(ctx context.Context, gameID uuid.UUID, endedAt time.Time) error {
	q := `
		UPDATE games
		SET status = 'finished', ended_at = $2, break_ends_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'finished'
	`
	_, err := DB.Exec(ctx, q, gameID, endedAt)
	return err
}
