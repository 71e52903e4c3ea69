// internal/feed/feed.go
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// SettlementQueueName is the Redis list the treasury worker drains.
var SettlementQueueName = "neon_settlements"

// Event is one change-feed entry. Delivery is at-least-once; consumers must
// tolerate duplicates.
type Event struct {
	GameID uuid.UUID   `json:"game_id"`
	Entity string      `json:"entity"` // "game" | "round" | "player"
	Data   interface{} `json:"data"`
	At     int64       `json:"at"`
}

// ConnectRedis initializes the global Redis client with environment
// variables REDIS_ADDR (default "localhost:6379") and REDIS_DB (default 0).
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// ChannelFor returns the pub/sub channel carrying a game's change feed.
func ChannelFor(gameID uuid.UUID) string {
	return "neon:feed:" + gameID.String()
}

// Feed publishes engine state changes to the per-game pub/sub channel. It
// satisfies engine.Notifier. Publish failures are logged, never surfaced:
// the feed is observability, not state.
type Feed struct{}

// New returns a publisher over the global Redis client.
func New() *Feed { return &Feed{} }

func (f *Feed) publish(ctx context.Context, gameID uuid.UUID, entity string, data interface{}) {
	ev := Event{
		GameID: gameID,
		Entity: entity,
		Data:   data,
		At:     time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).WithField("entity", entity).Error("failed to marshal feed event")
		return
	}
	if err := Rdb.Publish(ctx, ChannelFor(gameID), raw).Err(); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"game_id": gameID,
			"entity":  entity,
		}).Error("failed to publish feed event")
	}
}

// GameUpdated publishes the game's public view after a phase change.
func (f *Feed) GameUpdated(ctx context.Context, game *models.Game) {
	f.publish(ctx, game.ID, "game", game.PublicView())
}

// RoundStarted publishes the safe view of a new round. The correct door
// never leaves the service boundary.
func (f *Feed) RoundStarted(ctx context.Context, round *models.Round) {
	f.publish(ctx, round.GameID, "round", round.SafeView())
}

// PlayerUpdated publishes a player status change.
func (f *Feed) PlayerUpdated(ctx context.Context, player *models.Player) {
	f.publish(ctx, player.GameID, "player", player)
}

// PublishSettlement pushes a payout record onto the settlement queue for the
// treasury worker. Unlike feed events this is a durable handoff, so the
// error goes back to the caller.
func PublishSettlement(ctx context.Context, payout *models.Payout) error {
	raw, err := json.Marshal(payout)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement: %w", err)
	}
	queue := getEnv("SETTLEMENT_QUEUE_NAME", SettlementQueueName)
	if err := Rdb.RPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
