// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/quizbuzz/quizbuzz/internal/config"
	"github.com/quizbuzz/quizbuzz/internal/handlers"
	"github.com/quizbuzz/quizbuzz/internal/middleware"
	"github.com/quizbuzz/quizbuzz/internal/room"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	store := room.NewStore(clockwork.NewRealClock(), logger)
	srv := handlers.NewServer(store, logger, cfg.OriginPatterns)

	mux := http.NewServeMux()

	// room websocket: all inbound session events arrive here
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.WSHandler(),
	)))

	// results query endpoint
	mux.Handle("/rooms/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.ResultsHandler(),
	)))

	// The reference client is a static page; allow it from anywhere.
	handler := cors.AllowAll().Handler(mux)

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
