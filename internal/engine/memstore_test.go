// internal/engine/memstore_test.go
package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// memStore is an in-memory Store with the same conflict semantics as the
// postgres implementation: unique-key inserts report duplicates via the
// sentinel errors, and winner ranks are capped at MaxWinners.
type memStore struct {
	mu      sync.Mutex
	games   map[uuid.UUID]*models.Game
	current uuid.UUID
	rounds  map[uuid.UUID]*models.Round
	players map[uuid.UUID]*models.Player
	answers map[uuid.UUID]*models.Answer

	// held simulates another process owning the game lock.
	held map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		games:   make(map[uuid.UUID]*models.Game),
		rounds:  make(map[uuid.UUID]*models.Round),
		players: make(map[uuid.UUID]*models.Player),
		answers: make(map[uuid.UUID]*models.Answer),
		held:    make(map[uuid.UUID]bool),
	}
}

func (s *memStore) addGame(g models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = &g
	s.current = g.ID
}

func (s *memStore) addPlayer(p models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = &p
}

func (s *memStore) addRound(r models.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[r.ID] = &r
}

func (s *memStore) addAnswer(a models.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[a.ID] = &a
}

func (s *memStore) game(id uuid.UUID) models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.games[id]
}

func (s *memStore) player(id uuid.UUID) models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.players[id]
}

func (s *memStore) CurrentGame(_ context.Context) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[s.current]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (s *memStore) Game(_ context.Context, gameID uuid.UUID) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (s *memStore) SetGameActive(_ context.Context, gameID uuid.UUID, roundNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.Status == models.GameFinished {
		return nil
	}
	g.Status = models.GameActive
	g.CurrentRound = roundNumber
	g.BreakEndsAt = nil
	return nil
}

func (s *memStore) SetGameBreak(_ context.Context, gameID uuid.UUID, breakEndsAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.Status == models.GameFinished {
		return nil
	}
	g.Status = models.GameBreak
	g.BreakEndsAt = &breakEndsAt
	return nil
}

func (s *memStore) FinishGame(_ context.Context, gameID uuid.UUID, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.Status == models.GameFinished {
		return nil
	}
	g.Status = models.GameFinished
	g.EndedAt = &endedAt
	g.BreakEndsAt = nil
	return nil
}

func (s *memStore) CreateRound(_ context.Context, round *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if r.GameID == round.GameID && r.RoundNumber == round.RoundNumber {
			return ErrRoundExists
		}
	}
	cp := *round
	s.rounds[round.ID] = &cp
	return nil
}

func (s *memStore) Round(_ context.Context, gameID uuid.UUID, roundNumber int) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if r.GameID == gameID && r.RoundNumber == roundNumber {
			out := *r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memStore) RoundByID(_ context.Context, roundID uuid.UUID) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundID]
	if !ok {
		return nil, nil
	}
	out := *r
	return &out, nil
}

func (s *memStore) Player(_ context.Context, playerID uuid.UUID) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (s *memStore) ActivePlayers(_ context.Context, gameID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Player
	for _, p := range s.players {
		if p.GameID == gameID && p.Status == models.PlayerActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) Winners(_ context.Context, gameID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Player
	for rank := 1; rank <= MaxWinners; rank++ {
		for _, p := range s.players {
			if p.GameID == gameID && p.Status == models.PlayerWinner && p.WinnerRank != nil && *p.WinnerRank == rank {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

func (s *memStore) EliminatePlayer(_ context.Context, playerID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.Status != models.PlayerActive {
		return nil
	}
	p.Status = models.PlayerEliminated
	p.EliminatedAt = &at
	return nil
}

func (s *memStore) PromoteWinner(_ context.Context, gameID, playerID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.GameID != gameID || p.Status != models.PlayerActive {
		return 0, ErrPlayerNotActive
	}
	taken := 0
	for _, other := range s.players {
		if other.GameID == gameID && other.Status == models.PlayerWinner {
			taken++
		}
	}
	if taken >= MaxWinners {
		return 0, ErrWinnersFull
	}
	rank := taken + 1
	p.Status = models.PlayerWinner
	p.WinnerRank = &rank
	return rank, nil
}

func (s *memStore) CreateAnswer(_ context.Context, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a.RoundID == answer.RoundID && a.PlayerID == answer.PlayerID {
			return ErrAnswerExists
		}
	}
	cp := *answer
	s.answers[answer.ID] = &cp
	return nil
}

func (s *memStore) Answer(_ context.Context, roundID, playerID uuid.UUID) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a.RoundID == roundID && a.PlayerID == playerID {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memStore) AnswersForRound(_ context.Context, roundID uuid.UUID) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for _, a := range s.answers {
		if a.RoundID == roundID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memStore) WithGameLock(ctx context.Context, gameID uuid.UUID, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.held[gameID] {
		s.mu.Unlock()
		return ErrGameLocked
	}
	s.held[gameID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.held[gameID] = false
		s.mu.Unlock()
	}()
	return fn(ctx)
}

// recordingFeed collects published events instead of sending them to redis.
type recordingFeed struct {
	mu           sync.Mutex
	gameEvents   []models.Game
	roundEvents  []models.Round
	playerEvents map[uuid.UUID][]models.Player
}

func newRecordingFeed() *recordingFeed {
	return &recordingFeed{playerEvents: make(map[uuid.UUID][]models.Player)}
}

func (f *recordingFeed) GameUpdated(_ context.Context, g *models.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameEvents = append(f.gameEvents, *g)
}

func (f *recordingFeed) RoundStarted(_ context.Context, r *models.Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roundEvents = append(f.roundEvents, *r)
}

func (f *recordingFeed) PlayerUpdated(_ context.Context, p *models.Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playerEvents[p.ID] = append(f.playerEvents[p.ID], *p)
}

func (f *recordingFeed) lastGameEvent() *models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.gameEvents) == 0 {
		return nil
	}
	out := f.gameEvents[len(f.gameEvents)-1]
	return &out
}

func (f *recordingFeed) lastPlayerEvent(playerID uuid.UUID) *models.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	out := events[len(events)-1]
	return &out
}

// setupEngine wires an engine to the in-memory store, the recording feed and
// a fake clock.
func setupEngine(t *testing.T) (*Engine, *memStore, *recordingFeed, *clockwork.FakeClock) {
	t.Helper()
	store := newMemStore()
	fd := newRecordingFeed()
	e := New(store, fd)
	clock := clockwork.NewFakeClock()
	e.Clock = clock
	return e, store, fd, clock
}
