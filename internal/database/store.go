// internal/database/store.go
package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// Store adapts this package to engine.Store. It carries no state of its own;
// all access goes through the shared pool.
type Store struct{}

// NewStore returns the postgres-backed engine store.
func NewStore() *Store { return &Store{} }

var _ engine.Store = (*Store)(nil)

func (*Store) CurrentGame(ctx context.Context) (*models.Game, error) {
	return GetCurrentGame(ctx)
}

func (*Store) Game(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return GetGame(ctx, gameID)
}

func (*Store) SetGameActive(ctx context.Context, gameID uuid.UUID, roundNumber int) error {
	return SetGameActive(ctx, gameID, roundNumber)
}

func (*Store) SetGameBreak(ctx context.Context, gameID uuid.UUID, breakEndsAt time.Time) error {
	return SetGameBreak(ctx, gameID, breakEndsAt)
}

func (*Store) FinishGame(ctx context.Context, gameID uuid.UUID, endedAt time.Time) error {
	return FinishGame(ctx, gameID, endedAt)
}

func (*Store) CreateRound(ctx context.Context, round *models.Round) error {
	return InsertRound(ctx, round)
}

func (*Store) Round(ctx context.Context, gameID uuid.UUID, roundNumber int) (*models.Round, error) {
	return GetRound(ctx, gameID, roundNumber)
}

func (*Store) RoundByID(ctx context.Context, roundID uuid.UUID) (*models.Round, error) {
	return GetRoundByID(ctx, roundID)
}

func (*Store) Player(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	return GetPlayer(ctx, playerID)
}

func (*Store) ActivePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	return GetActivePlayers(ctx, gameID)
}

func (*Store) Winners(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	return GetWinners(ctx, gameID)
}

func (*Store) EliminatePlayer(ctx context.Context, playerID uuid.UUID, at time.Time) error {
	return EliminatePlayer(ctx, playerID, at)
}

func (*Store) PromoteWinner(ctx context.Context, gameID, playerID uuid.UUID) (int, error) {
	return PromoteWinner(ctx, gameID, playerID)
}

func (*Store) CreateAnswer(ctx context.Context, answer *models.Answer) error {
	return InsertAnswer(ctx, answer)
}

func (*Store) Answer(ctx context.Context, roundID, playerID uuid.UUID) (*models.Answer, error) {
	return GetAnswer(ctx, roundID, playerID)
}

func (*Store) AnswersForRound(ctx context.Context, roundID uuid.UUID) ([]models.Answer, error) {
	return GetAnswersForRound(ctx, roundID)
}

// WithGameLock holds a per-game postgres advisory lock for the duration of
// fn, keyed on the game id. A tick from any process that finds the lock held
// backs off with ErrGameLocked; the holder is already doing the same
// evaluation. The lock lives on a dedicated pooled connection so fn is free
// to run its queries on the shared pool.
func (*Store) WithGameLock(ctx context.Context, gameID uuid.UUID, fn func(context.Context) error) error {
	conn, err := DB.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	const lockQ = `SELECT pg_try_advisory_lock(hashtextextended($1::text, 0))`
	var acquired bool
	if err := conn.QueryRow(ctx, lockQ, gameID.String()).Scan(&acquired); err != nil {
		return err
	}
	if !acquired {
		return engine.ErrGameLocked
	}
	defer func() {
		const unlockQ = `SELECT pg_advisory_unlock(hashtextextended($1::text, 0))`
		// Unlock even when ctx is already cancelled; the session would
		// otherwise hold the lock until the connection dies.
		if _, err := conn.Exec(context.WithoutCancel(ctx), unlockQ, gameID.String()); err != nil {
			log.WithError(err).WithField("game_id", gameID).Error("failed to release game lock")
		}
	}()

	return fn(ctx)
}
