// Package main provides the game room server binary: a websocket endpoint
// hosting concurrent turn-based game rooms, plus optional static file
// serving for the frontend.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/config"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/words"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/server"
	"github.com/cory-johannsen/parlor/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	wordSource, err := words.NewListSource(cfg.Game.Words, words.NewCryptoSource())
	if err != nil {
		logger.Fatal("building word source", zap.Error(err))
	}
	logger.Info("word source ready", zap.Int("words", wordSource.Len()))

	hub := ws.NewHub(logger)
	registry := room.NewRegistry(hub, wordSource, cfg.Game.RoomIDLength, logger)
	wsHandler := ws.NewHandler(hub, registry, cfg.Transport, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
		logger.Info("serving static files", zap.String("dir", cfg.Server.StaticDir))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", server.NewWebService(cfg.Server.Addr(), mux, cfg.Server.ShutdownTimeout, logger))

	logger.Info("server initialized",
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
