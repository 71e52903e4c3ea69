package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStatus never reverts to active once a player is eliminated or ranked.
type PlayerStatus string

const (
	PlayerActive     PlayerStatus = "active"
	PlayerEliminated PlayerStatus = "eliminated"
	PlayerWinner     PlayerStatus = "winner"
)

// Player is one row per (game, wallet). WalletAddress is unique within a game.
type Player struct {
	ID            uuid.UUID    `json:"id"`
	GameID        uuid.UUID    `json:"game_id"`
	WalletAddress string       `json:"wallet_address"`
	Status        PlayerStatus `json:"status"`
	JoinedAt      time.Time    `json:"joined_at"`
	EliminatedAt  *time.Time   `json:"eliminated_at,omitempty"`
	WinnerRank    *int         `json:"winner_rank,omitempty"`
}

// PlayerCounts is the live counter pair shown on the game view.
type PlayerCounts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}
