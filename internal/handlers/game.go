// internal/handlers/game.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// PingHandler is a trivial liveness endpoint.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

type gameStateResponse struct {
	Game    models.GamePublicView `json:"game"`
	Players models.PlayerCounts   `json:"players"`
}

// GameStateHandler returns the public view of the most recent game plus
// player counts. The round configuration never leaves the server.
func GameStateHandler(w http.ResponseWriter, r *http.Request) {
	g, err := database.GetCurrentGame(r.Context())
	if err != nil {
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}
	if g == nil {
		http.Error(w, "no game", http.StatusNotFound)
		return
	}

	counts, err := database.CountPlayers(r.Context(), g.ID)
	if err != nil {
		http.Error(w, "failed to count players", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, gameStateResponse{
		Game:    g.PublicView(),
		Players: counts,
	})
}

// CurrentRoundHandler returns the safe view of the round currently accepting
// answers. 404 when the game is not in an active round.
func CurrentRoundHandler(w http.ResponseWriter, r *http.Request) {
	g, err := database.GetCurrentGame(r.Context())
	if err != nil {
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}
	if g == nil || g.Status != models.GameActive {
		http.Error(w, "no active round", http.StatusNotFound)
		return
	}

	round, err := database.GetRound(r.Context(), g.ID, g.CurrentRound)
	if err != nil {
		http.Error(w, "failed to load round", http.StatusInternalServerError)
		return
	}
	if round == nil {
		http.Error(w, "no active round", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, round.SafeView())
}

// WinnersHandler lists the winners of the most recent game, ordered by rank.
func WinnersHandler(w http.ResponseWriter, r *http.Request) {
	g, err := database.GetCurrentGame(r.Context())
	if err != nil {
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}
	if g == nil {
		http.Error(w, "no game", http.StatusNotFound)
		return
	}

	winners, err := database.GetWinners(r.Context(), g.ID)
	if err != nil {
		http.Error(w, "failed to load winners", http.StatusInternalServerError)
		return
	}
	if winners == nil {
		winners = []models.Player{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"game_id": g.ID,
		"winners": winners,
	})
}

// PayoutsHandler lists recorded prize payouts, most recent first.
// Optional ?limit= caps the page size.
func PayoutsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	payouts, err := database.ListPayouts(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to load payouts", http.StatusInternalServerError)
		return
	}
	if payouts == nil {
		payouts = []models.Payout{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payouts": payouts})
}
