package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout records an off-chain settlement made to a winner. Amount is kept as
// a string to avoid float rounding on token amounts.
type Payout struct {
	ID              uuid.UUID `json:"id"`
	WinnerWallet    string    `json:"winner_wallet"`
	Amount          string    `json:"amount"`
	TransactionHash string    `json:"transaction_hash"`
	CreatedAt       time.Time `json:"created_at"`
}
