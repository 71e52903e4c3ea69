package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer is created exactly once per (round, player) and never updated.
// IsCorrect is computed server-side at submission time.
type Answer struct {
	ID           uuid.UUID `json:"id"`
	RoundID      uuid.UUID `json:"round_id"`
	PlayerID     uuid.UUID `json:"player_id"`
	SelectedDoor int       `json:"selected_door"`
	IsCorrect    bool      `json:"is_correct"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
