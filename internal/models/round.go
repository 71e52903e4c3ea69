// internal/models/round.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Round is one timed decision period. (GameID, RoundNumber) is unique; a row
// for round N is only created after round N-1 closed (or N=1 after countdown).
type Round struct {
	ID          uuid.UUID `json:"id"`
	GameID      uuid.UUID `json:"game_id"`
	RoundNumber int       `json:"round_number"`
	CorrectDoor int       `json:"-"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the round's answer window has passed.
func (r *Round) Expired(now time.Time) bool {
	return now.After(r.EndsAt)
}

// RoundSafeView is the round row with the correct door omitted. All reads
// that can reach a player go through this shape.
type RoundSafeView struct {
	ID          uuid.UUID `json:"id"`
	GameID      uuid.UUID `json:"game_id"`
	RoundNumber int       `json:"round_number"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// SafeView hides the correct door.
func (r *Round) SafeView() RoundSafeView {
	return RoundSafeView{
		ID:          r.ID,
		GameID:      r.GameID,
		RoundNumber: r.RoundNumber,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
	}
}
