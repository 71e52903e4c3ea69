// internal/engine/store.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// Store is the persistence contract the engine runs against. Every mutation
// is a narrow single-row update; every uniquely-identified insert reports a
// duplicate with the matching sentinel instead of writing twice. The postgres
// implementation lives in internal/database.
type Store interface {
	// CurrentGame returns the most recently created game, or (nil, nil) when
	// no game exists.
	CurrentGame(ctx context.Context) (*models.Game, error)
	Game(ctx context.Context, gameID uuid.UUID) (*models.Game, error)

	// SetGameActive moves the game to active on the given round. No-op if the
	// game is already finished.
	SetGameActive(ctx context.Context, gameID uuid.UUID, roundNumber int) error
	SetGameBreak(ctx context.Context, gameID uuid.UUID, breakEndsAt time.Time) error
	FinishGame(ctx context.Context, gameID uuid.UUID, endedAt time.Time) error

	// CreateRound inserts the round row, returning ErrRoundExists when a row
	// for (game, round_number) is already present.
	CreateRound(ctx context.Context, round *models.Round) error
	// Round returns (nil, nil) when no row exists for that number.
	Round(ctx context.Context, gameID uuid.UUID, roundNumber int) (*models.Round, error)
	RoundByID(ctx context.Context, roundID uuid.UUID) (*models.Round, error)

	Player(ctx context.Context, playerID uuid.UUID) (*models.Player, error)
	ActivePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)
	// Winners returns the game's winners ordered by ascending rank.
	Winners(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)
	// EliminatePlayer flips an active player to eliminated; a no-op for
	// players already eliminated or ranked.
	EliminatePlayer(ctx context.Context, playerID uuid.UUID, at time.Time) error
	// PromoteWinner atomically assigns the next free winner rank (1..3) to an
	// active player. Returns ErrWinnersFull when all three ranks are taken
	// and ErrPlayerNotActive when the player cannot be promoted.
	PromoteWinner(ctx context.Context, gameID, playerID uuid.UUID) (int, error)

	// CreateAnswer inserts the answer row, returning ErrAnswerExists when the
	// (round, player) pair already answered.
	CreateAnswer(ctx context.Context, answer *models.Answer) error
	// Answer returns (nil, nil) when the pair has not answered.
	Answer(ctx context.Context, roundID, playerID uuid.UUID) (*models.Answer, error)
	AnswersForRound(ctx context.Context, roundID uuid.UUID) ([]models.Answer, error)

	// WithGameLock runs fn while holding an exclusive per-game lock, so only
	// one tick evaluates a game at a time across all processes. Returns
	// ErrGameLocked without calling fn when the lock is held elsewhere.
	WithGameLock(ctx context.Context, gameID uuid.UUID, fn func(context.Context) error) error
}

// Notifier receives every state change the engine applies. Delivery is
// at-least-once and best-effort; implementations must not block the tick.
type Notifier interface {
	GameUpdated(ctx context.Context, game *models.Game)
	RoundStarted(ctx context.Context, round *models.Round)
	PlayerUpdated(ctx context.Context, player *models.Player)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) GameUpdated(context.Context, *models.Game)     {}
func (NopNotifier) RoundStarted(context.Context, *models.Round)   {}
func (NopNotifier) PlayerUpdated(context.Context, *models.Player) {}
