package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an operator account allowed to arm and finalize games.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
