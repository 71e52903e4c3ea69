// internal/models/game.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameStatus is the phase of a game. Transitions only follow
// waiting -> countdown -> active -> (break -> active)* -> finished,
// with finished reachable from active at any round.
type GameStatus string

const (
	GameWaiting   GameStatus = "waiting"
	GameCountdown GameStatus = "countdown"
	GameActive    GameStatus = "active"
	GameBreak     GameStatus = "break"
	GameFinished  GameStatus = "finished"
)

// DefaultTotalRounds is the configured round count for a standard game.
const DefaultTotalRounds = 5

// RoundConfig maps "round_N" to the correct door index (1..3) for that round.
// It is set when the admin arms the game and is never exposed to players.
type RoundConfig map[string]int

// Door returns the correct door for roundNumber, defaulting to 1 when the
// entry is missing or out of range.
func (rc RoundConfig) Door(roundNumber int) int {
	door, ok := rc[fmt.Sprintf("round_%d", roundNumber)]
	if !ok || door < 1 || door > 3 {
		return 1
	}
	return door
}

// Validate checks that every round 1..totalRounds has a door in 1..3.
func (rc RoundConfig) Validate(totalRounds int) error {
	for n := 1; n <= totalRounds; n++ {
		key := fmt.Sprintf("round_%d", n)
		door, ok := rc[key]
		if !ok {
			return fmt.Errorf("round config missing %s", key)
		}
		if door < 1 || door > 3 {
			return fmt.Errorf("round config %s: door %d out of range", key, door)
		}
	}
	return nil
}

// Game is one row in the games table. The progression engine is the sole
// writer of Status, CurrentRound and BreakEndsAt once the countdown starts.
type Game struct {
	ID               uuid.UUID   `json:"id"`
	Status           GameStatus  `json:"status"`
	CurrentRound     int         `json:"current_round"`
	TotalRounds      int         `json:"total_rounds"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	CountdownMinutes int         `json:"countdown_minutes"`
	BreakEndsAt      *time.Time  `json:"break_ends_at,omitempty"`
	EndedAt          *time.Time  `json:"ended_at,omitempty"`
	RoundConfig      RoundConfig `json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// CountdownEndsAt returns the instant round 1 is due, or nil while the game
// has not been armed.
func (g *Game) CountdownEndsAt() *time.Time {
	if g.StartedAt == nil {
		return nil
	}
	t := g.StartedAt.Add(time.Duration(g.CountdownMinutes) * time.Minute)
	return &t
}

// GamePublicView is the game row without the hidden round configuration.
type GamePublicView struct {
	ID           uuid.UUID  `json:"id"`
	Status       GameStatus `json:"status"`
	CurrentRound int        `json:"current_round"`
	TotalRounds  int        `json:"total_rounds"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CountdownMin int        `json:"countdown_minutes"`
	BreakEndsAt  *time.Time `json:"break_ends_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PublicView strips the round configuration for player-facing reads.
func (g *Game) PublicView() GamePublicView {
	return GamePublicView{
		ID:           g.ID,
		Status:       g.Status,
		CurrentRound: g.CurrentRound,
		TotalRounds:  g.TotalRounds,
		StartedAt:    g.StartedAt,
		CountdownMin: g.CountdownMinutes,
		BreakEndsAt:  g.BreakEndsAt,
		EndedAt:      g.EndedAt,
		CreatedAt:    g.CreatedAt,
	}
}
