// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/auth"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/database"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/engine"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/feed"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/handlers"
	"github.com/bullrunbsc/neon-breakout-challenge-18404-28223/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()
	defer database.DB.Close()

	if err := feed.ConnectRedis(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	e := engine.New(database.NewStore(), feed.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go e.RunScheduler(ctx)

	mux := http.NewServeMux()
	withLog := middleware.LogMiddleware(logger)

	mux.HandleFunc("/", handlers.PingHandler)

	// player endpoints
	mux.Handle("/join", withLog(http.HandlerFunc(handlers.JoinGameHandler)))
	mux.Handle("/answer", withLog(handlers.SubmitAnswerHandler(e)))
	mux.Handle("/tick", withLog(handlers.TickHandler(e)))

	// public views
	mux.Handle("/game", withLog(http.HandlerFunc(handlers.GameStateHandler)))
	mux.Handle("/game/round", withLog(http.HandlerFunc(handlers.CurrentRoundHandler)))
	mux.Handle("/game/winners", withLog(http.HandlerFunc(handlers.WinnersHandler)))
	mux.Handle("/payouts", withLog(http.HandlerFunc(handlers.PayoutsHandler)))

	// live feed
	mux.Handle("/feed/ws", withLog(handlers.FeedWSHandler(logger)))
	mux.Handle("/feed/ws/", withLog(handlers.FeedWSHandler(logger)))

	// operator endpoints
	mux.Handle("/admin/register", withLog(http.HandlerFunc(handlers.RegisterAdminHandler)))
	mux.Handle("/admin/login", withLog(http.HandlerFunc(handlers.AdminLoginHandler)))
	mux.Handle("/admin/game", withLog(handlers.RequireAdmin(handlers.CreateGameHandler)))
	mux.Handle("/admin/game/countdown", withLog(handlers.RequireAdmin(handlers.StartCountdownHandler(feed.New()))))
	mux.Handle("/admin/game/finish", withLog(handlers.RequireAdmin(handlers.ForceFinishHandler(e, feed.New()))))
	mux.Handle("/admin/payout", withLog(handlers.RequireAdmin(handlers.RecordPayoutHandler)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case <-ctx.Done():
		logger.Info("terminating")
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
