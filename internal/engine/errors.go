package engine

import "errors"

// Sentinel errors shared between the engine and its store implementations.
// Conflict errors (ErrRoundExists, ErrAnswerExists, ErrWinnersFull,
// ErrGameLocked) mark target-state-already-reached conditions: callers treat
// them as no-ops, not failures.
var (
	ErrRoundExists  = errors.New("round already exists for this number")
	ErrAnswerExists = errors.New("answer already exists for this round and player")
	ErrWinnersFull  = errors.New("winner slots already filled")
	ErrGameLocked   = errors.New("game is locked by another tick")

	ErrInvalidDoor     = errors.New("selected door must be 1, 2 or 3")
	ErrRoundNotFound   = errors.New("round not found")
	ErrRoundNotOpen    = errors.New("round is not open for answers")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerNotActive = errors.New("player is not active")
)
