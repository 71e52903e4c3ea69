// internal/handlers/join.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

type joinRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type joinResponse struct {
	Player        *models.Player `json:"player"`
	AlreadyJoined bool           `json:"already_joined"`
}

// JoinGameHandler registers a wallet as a player in the current game.
// Joining is open only before the first round starts (waiting or countdown);
// a repeat join by the same wallet returns the existing player.
func JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	wallet := strings.TrimSpace(req.WalletAddress)
	if wallet == "" || len(wallet) > 128 {
		http.Error(w, "invalid wallet_address", http.StatusBadRequest)
		return
	}

	g, err := database.GetCurrentGame(r.Context())
	if err != nil {
		http.Error(w, "failed to load game", http.StatusInternalServerError)
		return
	}
	if g == nil {
		http.Error(w, "no game", http.StatusNotFound)
		return
	}
	if g.Status != models.GameWaiting && g.Status != models.GameCountdown {
		http.Error(w, "game is no longer accepting players", http.StatusConflict)
		return
	}

	player, alreadyJoined, err := database.JoinGame(r.Context(), g.ID, wallet)
	if err != nil {
		http.Error(w, "failed to join game", http.StatusInternalServerError)
		return
	}

	status := http.StatusCreated
	if alreadyJoined {
		status = http.StatusOK
	}
	writeJSON(w, status, joinResponse{Player: player, AlreadyJoined: alreadyJoined})
}
