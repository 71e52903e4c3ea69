// internal/database/round.go
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

const roundColumns = `id, game_id, round_number, correct_door, starts_at, ends_at, created_at`

// isUniqueViolation reports a postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanRound(row pgx.Row) (*models.Round, error) {
	var r models.Round
	err := row.Scan(
		&r.ID,
		&r.GameID,
		&r.RoundNumber,
		&r.CorrectDoor,
		&r.StartsAt,
		&r.EndsAt,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertRound creates a round row. The unique index on (game_id,
// round_number) rejects a duplicate trigger; callers get ErrRoundExists and
// treat the round as already started.
func InsertRound(ctx context.Context, round *models.Round) error {
	q := `
		INSERT INTO rounds (id, game_id, round_number, correct_door, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := DB.Exec(ctx, q,
		round.ID,
		round.GameID,
		round.RoundNumber,
		round.CorrectDoor,
		round.StartsAt,
		round.EndsAt,
	)
	if isUniqueViolation(err) {
		return engine.ErrRoundExists
	}
	return err
}

// GetRound fetches a round by (game, number), nil when absent.
func GetRound(ctx context.Context, gameID uuid.UUID, roundNumber int) (*models.Round, error) {
	q := `SELECT ` + roundColumns + ` FROM rounds WHERE game_id = $1 AND round_number = $2`
	r, err := scanRound(DB.QueryRow(ctx, q, gameID, roundNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// GetRoundByID fetches a round by id, nil when absent.
func GetRoundByID(ctx context.Context, roundID uuid.UUID) (*models.Round, error) {
	q := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	r, err := scanRound(DB.QueryRow(ctx, q, roundID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}
