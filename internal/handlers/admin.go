// internal/handlers/admin.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/auth"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/feed"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/models"
)

// RequireAdmin wraps a handler so only authenticated operators reach it.
// The token comes from the Authorization header or the auth_token cookie.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerOrCookieToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		adminIDStr, err := auth.AuthenticateJWT(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		adminID, err := uuid.Parse(adminIDStr)
		if err != nil {
			http.Error(w, "invalid admin id in token", http.StatusForbidden)
			return
		}
		exists, err := database.AdminExists(r.Context(), adminID)
		if err != nil {
			http.Error(w, "failed to verify admin", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "unknown admin", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

type adminCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAdminHandler creates an operator account.
func RegisterAdminHandler(w http.ResponseWriter, r *http.Request) {
	var req adminCredentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "email required and password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password, auth.Params)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	admin := models.Admin{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := database.CreateAdmin(r.Context(), &admin); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "error creating admin", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, admin)
}

type loginResponse struct {
	Token string `json:"token"`
}

// AdminLoginHandler verifies operator credentials and issues a JWT, both in
// the response body and as an auth_token cookie.
func AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req adminCredentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	admin, err := database.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "failed to load admin", http.StatusInternalServerError)
		return
	}
	if admin == nil {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	token, err := auth.CreateJWT(admin.ID.String())
	if err != nil {
		http.Error(w, "failed to create token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenExpireSeconds(),
	})

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type createGameRequest struct {
	TotalRounds int `json:"total_rounds"`
}

// CreateGameHandler opens a new game in the waiting phase. The round
// configuration is supplied later, when the countdown is armed.
func CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
	}
	if req.TotalRounds == 0 {
		req.TotalRounds = models.DefaultTotalRounds
	}
	if req.TotalRounds < 1 || req.TotalRounds > 20 {
		http.Error(w, "total_rounds out of range", http.StatusBadRequest)
		return
	}

	game := models.Game{
		ID:          uuid.New(),
		Status:      models.GameWaiting,
		TotalRounds: req.TotalRounds,
	}
	if err := database.InsertGame(r.Context(), &game); err != nil {
		logrus.Errorf("create game: %v", err)
		http.Error(w, "failed to create game", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, game.PublicView())
}

type startCountdownRequest struct {
	GameID           string             `json:"game_id"`
	CountdownMinutes int                `json:"countdown_minutes"`
	RoundConfig      models.RoundConfig `json:"round_config"`
}

// StartCountdownHandler arms a waiting game: fixes the hidden per-round
// correct doors and starts the countdown clock.
func StartCountdownHandler(f *feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startCountdownRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			http.Error(w, "invalid game_id", http.StatusBadRequest)
			return
		}
		if req.CountdownMinutes < 1 {
			http.Error(w, "countdown_minutes must be positive", http.StatusBadRequest)
			return
		}

		g, err := database.GetGame(r.Context(), gameID)
		if err != nil {
			http.Error(w, "failed to load game", http.StatusInternalServerError)
			return
		}
		if g == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err := req.RoundConfig.Validate(g.TotalRounds); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := database.StartCountdown(r.Context(), gameID, time.Now(), req.CountdownMinutes, req.RoundConfig); err != nil {
			http.Error(w, "failed to start countdown", http.StatusConflict)
			return
		}

		g, err = database.GetGame(r.Context(), gameID)
		if err != nil || g == nil {
			http.Error(w, "failed to reload game", http.StatusInternalServerError)
			return
		}
		f.GameUpdated(r.Context(), g)

		writeJSON(w, http.StatusOK, g.PublicView())
	}
}

type finishGameRequest struct {
	GameID string `json:"game_id"`
}

// ForceFinishHandler finalizes a game immediately, regardless of where the
// round clock stands. Any transition that was already due is applied first,
// so winners from a completed terminal round keep their placements.
func ForceFinishHandler(e *engine.Engine, f *feed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finishGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			http.Error(w, "invalid game_id", http.StatusBadRequest)
			return
		}

		g, err := database.GetGame(r.Context(), gameID)
		if err != nil {
			http.Error(w, "failed to load game", http.StatusInternalServerError)
			return
		}
		if g == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		if _, err := e.TriggerTick(r.Context(), gameID); err != nil {
			logrus.Warnf("pre-finish tick for game %s: %v", gameID, err)
		}

		if err := database.FinishGame(r.Context(), gameID, time.Now()); err != nil {
			logrus.Errorf("force finish game %s: %v", gameID, err)
			http.Error(w, "failed to finish game", http.StatusInternalServerError)
			return
		}

		g, err = database.GetGame(r.Context(), gameID)
		if err != nil || g == nil {
			http.Error(w, "failed to reload game", http.StatusInternalServerError)
			return
		}
		f.GameUpdated(r.Context(), g)

		writeJSON(w, http.StatusOK, g.PublicView())
	}
}

type recordPayoutRequest struct {
	WinnerWallet    string `json:"winner_wallet"`
	Amount          string `json:"amount"`
	TransactionHash string `json:"transaction_hash"`
}

// RecordPayoutHandler records a settlement to a winner and hands it to the
// settlement queue for downstream reconciliation.
func RecordPayoutHandler(w http.ResponseWriter, r *http.Request) {
	var req recordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.WinnerWallet == "" || req.Amount == "" {
		http.Error(w, "winner_wallet and amount are required", http.StatusBadRequest)
		return
	}

	payout := models.Payout{
		ID:              uuid.New(),
		WinnerWallet:    req.WinnerWallet,
		Amount:          req.Amount,
		TransactionHash: req.TransactionHash,
	}
	if err := database.InsertPayout(r.Context(), &payout); err != nil {
		logrus.Errorf("record payout: %v", err)
		http.Error(w, "failed to record payout", http.StatusInternalServerError)
		return
	}

	if err := feed.PublishSettlement(r.Context(), &payout); err != nil {
		// Recorded in the database; the queue push can be replayed.
		logrus.Warnf("settlement queue push failed for payout %s: %v", payout.ID, err)
	}

	writeJSON(w, http.StatusCreated, payout)
}
