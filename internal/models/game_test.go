// internal/models/game_test.go
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundConfigDoor(t *testing.T) {
	rc := RoundConfig{"round_1": 3, "round_2": 0, "round_3": 7}

	assert.Equal(t, 3, rc.Door(1))
	assert.Equal(t, 1, rc.Door(2), "out-of-range entry falls back to door 1")
	assert.Equal(t, 1, rc.Door(3), "out-of-range entry falls back to door 1")
	assert.Equal(t, 1, rc.Door(4), "missing entry falls back to door 1")
}

func TestRoundConfigValidate(t *testing.T) {
	rc := RoundConfig{"round_1": 1, "round_2": 2, "round_3": 3}
	require.NoError(t, rc.Validate(3))

	assert.Error(t, rc.Validate(4), "round_4 is missing")

	rc["round_2"] = 4
	assert.Error(t, rc.Validate(3), "door 4 is out of range")
}

func TestGameJSONHidesRoundConfig(t *testing.T) {
	started := time.Now()
	g := Game{
		ID:               uuid.New(),
		Status:           GameCountdown,
		TotalRounds:      DefaultTotalRounds,
		StartedAt:        &started,
		CountdownMinutes: 10,
		RoundConfig:      RoundConfig{"round_1": 2},
	}

	raw, err := json.Marshal(&g)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "round_1")
	assert.NotContains(t, string(raw), "round_config")

	raw, err = json.Marshal(g.PublicView())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "round_1")
}

func TestCountdownEndsAt(t *testing.T) {
	g := Game{CountdownMinutes: 10}
	assert.Nil(t, g.CountdownEndsAt(), "unarmed game has no countdown deadline")

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g.StartedAt = &started
	end := g.CountdownEndsAt()
	require.NotNil(t, end)
	assert.Equal(t, started.Add(10*time.Minute), *end)
}
