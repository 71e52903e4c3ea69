// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

func newCountdownGame(clock interface{ Now() time.Time }, totalRounds int) models.Game {
	started := clock.Now()
	return models.Game{
		ID:               uuid.New(),
		Status:           models.GameCountdown,
		TotalRounds:      totalRounds,
		StartedAt:        &started,
		CountdownMinutes: 1,
		RoundConfig: models.RoundConfig{
			"round_1": 2, "round_2": 1, "round_3": 3, "round_4": 2, "round_5": 1,
		},
	}
}

func newActivePlayer(gameID uuid.UUID, wallet string) models.Player {
	return models.Player{
		ID:            uuid.New(),
		GameID:        gameID,
		WalletAddress: wallet,
		Status:        models.PlayerActive,
	}
}

func TestCountdownStartsRoundOne(t *testing.T) {
	e, store, fd, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)

	// Countdown still running: nothing moves.
	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)

	clock.Advance(61 * time.Second)

	action, err = e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, Action("started_round_1"), action)

	cur := store.game(g.ID)
	assert.Equal(t, models.GameActive, cur.Status)
	assert.Equal(t, 1, cur.CurrentRound)

	round, err := store.Round(context.Background(), g.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, 2, round.CorrectDoor, "door must come from the round config")
	assert.Equal(t, clock.Now().Add(e.RoundDuration), round.EndsAt)

	require.Len(t, fd.roundEvents, 1)
	last := fd.lastGameEvent()
	require.NotNil(t, last)
	assert.Equal(t, models.GameActive, last.Status)

	// Same tick again while the round is still open: no transition.
	action, err = e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
}

func TestTickHealsHalfStartedRound(t *testing.T) {
	e, store, _, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)
	clock.Advance(2 * time.Minute)

	// A previous tick crashed after inserting the round row but before
	// flipping the game. The round row already exists.
	store.addRound(models.Round{
		ID:          uuid.New(),
		GameID:      g.ID,
		RoundNumber: 1,
		CorrectDoor: 2,
		StartsAt:    clock.Now(),
		EndsAt:      clock.Now().Add(e.RoundDuration),
	})

	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, Action("started_round_1"), action)

	cur := store.game(g.ID)
	assert.Equal(t, models.GameActive, cur.Status)
	assert.Equal(t, 1, cur.CurrentRound)

	// Still exactly one row for round 1.
	count := 0
	for _, r := range store.rounds {
		if r.GameID == g.ID && r.RoundNumber == 1 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRoundCloseEliminatesWrongAndSilent(t *testing.T) {
	e, store, fd, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)

	correct := newActivePlayer(g.ID, "0xaaa")
	wrong := newActivePlayer(g.ID, "0xbbb")
	silent := newActivePlayer(g.ID, "0xccc")
	store.addPlayer(correct)
	store.addPlayer(wrong)
	store.addPlayer(silent)

	clock.Advance(61 * time.Second)
	_, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)

	round, err := store.Round(context.Background(), g.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, round)

	store.addAnswer(models.Answer{
		ID: uuid.New(), RoundID: round.ID, PlayerID: correct.ID,
		SelectedDoor: 2, IsCorrect: true, SubmittedAt: clock.Now(),
	})
	store.addAnswer(models.Answer{
		ID: uuid.New(), RoundID: round.ID, PlayerID: wrong.ID,
		SelectedDoor: 1, IsCorrect: false, SubmittedAt: clock.Now(),
	})

	clock.Advance(e.RoundDuration + time.Second)

	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, Action("processed_round_1"), action)

	assert.Equal(t, models.PlayerActive, store.player(correct.ID).Status)
	assert.Equal(t, models.PlayerEliminated, store.player(wrong.ID).Status)
	assert.Equal(t, models.PlayerEliminated, store.player(silent.ID).Status)

	cur := store.game(g.ID)
	assert.Equal(t, models.GameBreak, cur.Status)
	require.NotNil(t, cur.BreakEndsAt)
	assert.Equal(t, clock.Now().Add(e.BreakDuration), *cur.BreakEndsAt)

	ev := fd.lastPlayerEvent(wrong.ID)
	require.NotNil(t, ev)
	assert.Equal(t, models.PlayerEliminated, ev.Status)

	// Break still running: nothing moves.
	action, err = e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)

	// Break over: round 2 opens with its own configured door.
	clock.Advance(e.BreakDuration + time.Second)
	action, err = e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, Action("started_round_2"), action)

	round2, err := store.Round(context.Background(), g.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, round2)
	assert.Equal(t, 1, round2.CorrectDoor)
}

func TestAllEliminatedFinishesGame(t *testing.T) {
	e, store, fd, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)

	p := newActivePlayer(g.ID, "0xaaa")
	store.addPlayer(p)

	clock.Advance(61 * time.Second)
	_, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)

	// Nobody answers round 1.
	clock.Advance(e.RoundDuration + time.Second)
	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, action)

	cur := store.game(g.ID)
	assert.Equal(t, models.GameFinished, cur.Status)
	require.NotNil(t, cur.EndedAt)
	assert.Equal(t, models.PlayerEliminated, store.player(p.ID).Status)

	last := fd.lastGameEvent()
	require.NotNil(t, last)
	assert.Equal(t, models.GameFinished, last.Status)

	// Finished is terminal.
	clock.Advance(time.Hour)
	action, err = e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
}

func TestTerminalRoundRanksBySubmissionOrder(t *testing.T) {
	e, store, _, clock := setupEngine(t)
	g := newCountdownGame(clock, 1)
	g.Status = models.GameActive
	g.CurrentRound = 1
	store.addGame(g)

	round := models.Round{
		ID:          uuid.New(),
		GameID:      g.ID,
		RoundNumber: 1,
		CorrectDoor: 2,
		StartsAt:    clock.Now(),
		EndsAt:      clock.Now().Add(e.RoundDuration),
	}
	store.addRound(round)

	players := make([]models.Player, 4)
	for i := range players {
		players[i] = newActivePlayer(g.ID, uuid.NewString())
		store.addPlayer(players[i])
		store.addAnswer(models.Answer{
			ID: uuid.New(), RoundID: round.ID, PlayerID: players[i].ID,
			SelectedDoor: 2, IsCorrect: true,
			SubmittedAt: clock.Now().Add(time.Duration(i) * time.Second),
		})
	}

	clock.Advance(e.RoundDuration + time.Second)
	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, action)

	winners, err := store.Winners(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, winners, MaxWinners)
	for i, w := range winners {
		assert.Equal(t, players[i].ID, w.ID, "rank %d must go to the %d-th fastest answer", i+1, i+1)
		require.NotNil(t, w.WinnerRank)
		assert.Equal(t, i+1, *w.WinnerRank)
	}

	// The fourth correct survivor does not fit the cap.
	assert.Equal(t, models.PlayerEliminated, store.player(players[3].ID).Status)
	assert.Equal(t, models.GameFinished, store.game(g.ID).Status)
}

func TestBreakPastTerminalRoundFinalizes(t *testing.T) {
	e, store, _, clock := setupEngine(t)
	g := newCountdownGame(clock, 2)
	g.Status = models.GameBreak
	g.CurrentRound = 2
	breakEnds := clock.Now().Add(-time.Second)
	g.BreakEndsAt = &breakEnds
	store.addGame(g)

	round := models.Round{
		ID:          uuid.New(),
		GameID:      g.ID,
		RoundNumber: 2,
		CorrectDoor: 1,
		StartsAt:    clock.Now().Add(-time.Minute),
		EndsAt:      clock.Now().Add(-30 * time.Second),
	}
	store.addRound(round)

	p := newActivePlayer(g.ID, "0xaaa")
	store.addPlayer(p)
	store.addAnswer(models.Answer{
		ID: uuid.New(), RoundID: round.ID, PlayerID: p.ID,
		SelectedDoor: 1, IsCorrect: true, SubmittedAt: round.StartsAt,
	})

	// Survivors without a correct terminal answer cannot place; the
	// recovery path applies the same elimination rule as a normal close.
	silent := newActivePlayer(g.ID, "0xbbb")
	store.addPlayer(silent)
	wrong := newActivePlayer(g.ID, "0xccc")
	store.addPlayer(wrong)
	store.addAnswer(models.Answer{
		ID: uuid.New(), RoundID: round.ID, PlayerID: wrong.ID,
		SelectedDoor: 3, IsCorrect: false, SubmittedAt: round.StartsAt,
	})

	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionFinished, action)

	got := store.player(p.ID)
	assert.Equal(t, models.PlayerWinner, got.Status)
	require.NotNil(t, got.WinnerRank)
	assert.Equal(t, 1, *got.WinnerRank)

	assert.Equal(t, models.PlayerEliminated, store.player(silent.ID).Status)
	assert.Equal(t, models.PlayerEliminated, store.player(wrong.ID).Status)

	winners, err := store.Winners(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, winners, 1)
	assert.Equal(t, models.GameFinished, store.game(g.ID).Status)
}

func TestLockedGameSkipsTick(t *testing.T) {
	e, store, _, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)
	clock.Advance(2 * time.Minute)

	store.mu.Lock()
	store.held[g.ID] = true
	store.mu.Unlock()

	action, err := e.Tick(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, models.GameCountdown, store.game(g.ID).Status)
}

func TestTickWithoutGame(t *testing.T) {
	e, _, _, _ := setupEngine(t)
	action, err := e.Tick(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
}

func TestSchedulerAdvancesCurrentGame(t *testing.T) {
	e, store, _, clock := setupEngine(t)
	g := newCountdownGame(clock, 5)
	store.addGame(g)
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.RunScheduler(ctx)

	// Wait for the scheduler's ticker, then fire one interval.
	clock.BlockUntil(1)
	clock.Advance(e.TickInterval)

	require.Eventually(t, func() bool {
		return store.game(g.ID).Status == models.GameActive
	}, 2*time.Second, 10*time.Millisecond, "scheduler should open round 1")
}
