// internal/handlers/answer.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
)

type answerRequest struct {
	RoundID      string `json:"round_id"`
	PlayerID     string `json:"player_id"`
	SelectedDoor int    `json:"selected_door"`
}

type answerResponse struct {
	IsCorrect        bool `json:"is_correct"`
	AlreadySubmitted bool `json:"already_submitted"`
}

// SubmitAnswerHandler records a player's door pick for a round. The pick is
// graded server-side; a wrong pick eliminates the player immediately, and a
// repeat pick returns the result of the first one.
func SubmitAnswerHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		roundID, err := uuid.Parse(req.RoundID)
		if err != nil {
			http.Error(w, "invalid round_id", http.StatusBadRequest)
			return
		}
		playerID, err := uuid.Parse(req.PlayerID)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}

		result, err := e.Submit(r.Context(), roundID, playerID, req.SelectedDoor)
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrInvalidDoor):
				http.Error(w, "selected_door must be 1, 2 or 3", http.StatusBadRequest)
			case errors.Is(err, engine.ErrRoundNotFound):
				http.Error(w, "round not found", http.StatusNotFound)
			case errors.Is(err, engine.ErrPlayerNotFound):
				http.Error(w, "player not found", http.StatusNotFound)
			case errors.Is(err, engine.ErrPlayerNotActive):
				http.Error(w, "player is not active", http.StatusConflict)
			case errors.Is(err, engine.ErrRoundNotOpen):
				http.Error(w, "round is not accepting answers", http.StatusConflict)
			default:
				logrus.Errorf("submit answer: %v", err)
				http.Error(w, "failed to submit answer", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, answerResponse{
			IsCorrect:        result.IsCorrect,
			AlreadySubmitted: result.AlreadySubmitted,
		})
	}
}

// TickHandler lets clients nudge the progression engine, e.g. right after a
// round deadline passes. Concurrent nudges collapse into one evaluation.
func TickHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
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

		action, err := e.TriggerTick(r.Context(), g.ID)
		if err != nil {
			logrus.Errorf("tick: %v", err)
			http.Error(w, "tick failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"action": action})
	}
}
