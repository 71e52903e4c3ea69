// internal/database/answer.go
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

const answerColumns = `id, round_id, player_id, selected_door, is_correct, submitted_at`

func scanAnswer(row pgx.Row) (*models.Answer, error) {
	var a models.Answer
	err := row.Scan(
		&a.ID,
		&a.RoundID,
		&a.PlayerID,
		&a.SelectedDoor,
		&a.IsCorrect,
		&a.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertAnswer records one player's answer for a round. The unique index on
// (round_id, player_id) is the double-submit guard; a duplicate maps to
// ErrAnswerExists and the first row stands untouched.
func InsertAnswer(ctx context.Context, answer *models.Answer) error {
	q := `
		INSERT INTO answers (id, round_id, player_id, selected_door, is_correct, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := DB.Exec(ctx, q,
		answer.ID,
		answer.RoundID,
		answer.PlayerID,
		answer.SelectedDoor,
		answer.IsCorrect,
		answer.SubmittedAt,
	)
	if isUniqueViolation(err) {
		return engine.ErrAnswerExists
	}
	return err
}

// GetAnswer fetches the (round, player) answer, nil when the pair has not
// answered.
func GetAnswer(ctx context.Context, roundID, playerID uuid.UUID) (*models.Answer, error) {
	q := `SELECT ` + answerColumns + ` FROM answers WHERE round_id = $1 AND player_id = $2`
	a, err := scanAnswer(DB.QueryRow(ctx, q, roundID, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetAnswersForRound lists a round's answers in submission order.
func GetAnswersForRound(ctx context.Context, roundID uuid.UUID) ([]models.Answer, error) {
	q := `SELECT ` + answerColumns + ` FROM answers WHERE round_id = $1 ORDER BY submitted_at`
	rows, err := DB.Query(ctx, q, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
