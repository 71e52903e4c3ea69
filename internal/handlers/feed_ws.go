// internal/handlers/feed_ws.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/feed"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/middleware"
)

// FeedWSHandler streams live game events to spectators and players. The
// client subscribes to one game's channel: /feed/ws/{game_id}, or /feed/ws/
// for the current game. The socket is one-way; inbound frames are drained
// only to detect disconnects.
func FeedWSHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		gameID, err := feedGameID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"feed"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "feed" {
			c.Close(BadSubprotocolError, "client must speak the feed subprotocol")
			return
		}

		if gameID == uuid.Nil {
			g, err := database.GetCurrentGame(r.Context())
			if err != nil || g == nil {
				c.Close(InvalidGameIDError, "no game to subscribe to")
				return
			}
			gameID = g.ID
		}

		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub := feed.Rdb.Subscribe(ctx, feed.ChannelFor(gameID))
		defer sub.Close()
		if _, err := sub.Receive(ctx); err != nil {
			logger.Warnf("feed subscribe failed for game %s: %v", gameID, err)
			c.Close(FeedUnavailable, "feed unavailable")
			return
		}

		// Drain inbound frames so we notice the client going away.
		go func() {
			defer cancel()
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()

		var closeErr error
		ch := sub.Channel()
	relay:
		for {
			select {
			case <-ctx.Done():
				break relay
			case msg, ok := <-ch:
				if !ok {
					break relay
				}
				if err := c.Write(ctx, websocket.MessageText, []byte(msg.Payload)); err != nil {
					closeErr = err
					break relay
				}
			}
		}

		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, closeErr)
		c.Close(websocket.StatusNormalClosure, "feed closed")
	}
}

// feedGameID parses an optional game id from the ?game_id= query or the
// /feed/ws/ path suffix.
func feedGameID(r *http.Request) (uuid.UUID, error) {
	if q := r.URL.Query().Get("game_id"); q != "" {
		return uuid.Parse(q)
	}
	suffix := strings.Trim(strings.TrimPrefix(r.URL.Path, "/feed/ws"), "/")
	if suffix == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(suffix)
}
