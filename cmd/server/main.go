package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/fishkagame/fishka-backend/internal/config"
	"github.com/fishkagame/fishka-backend/internal/crocodile"
	"github.com/fishkagame/fishka-backend/internal/game"
	"github.com/fishkagame/fishka-backend/internal/gateway"
	"github.com/fishkagame/fishka-backend/internal/room"
	"github.com/fishkagame/fishka-backend/internal/server"
	"github.com/fishkagame/fishka-backend/internal/session"
	"github.com/fishkagame/fishka-backend/internal/store"
	"github.com/fishkagame/fishka-backend/internal/tapeworm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ttls := store.TTLConfig{
		Room:    cfg.RoomTTL,
		Game:    cfg.GameTTL,
		Session: cfg.SessionTTL,
	}
	var st store.Store
	if cfg.RedisAddr != "" {
		rs := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttls)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rs.Close()
		st = rs
		logger.Info("using redis store", "addr", cfg.RedisAddr)
	} else {
		st = store.NewMemory(ttls)
		logger.Info("using in-memory store")
	}

	words := crocodile.DefaultWords
	if cfg.WordListPath != "" {
		words, err = crocodile.LoadCSVWords(cfg.WordListPath)
		if err != nil {
			logger.Error("load word list", "error", err)
			os.Exit(1)
		}
	}

	games := game.NewRegistry(
		tapeworm.New(),
		crocodile.New(crocodile.NewStaticWords(words, time.Now().UnixNano())),
	)

	sessions := session.NewManager([]byte(cfg.JWTSecret), cfg.SessionTTL, st)

	rooms := room.NewRegistry(games, st, room.Options{
		HeartbeatTimeout: cfg.HeartbeatTimeout,
		ReconnectWindow:  cfg.ReconnectWindow,
		PauseTimeout:     cfg.PauseTimeout,
		IdleTimeout:      cfg.IdleTimeout,
	}, logger)

	gw := gateway.New(rooms, sessions, gateway.Options{
		RateLimit:     rate.Limit(cfg.RateLimit),
		RateBurst:     cfg.RateBurst,
		OrphanTimeout: cfg.OrphanTimeout,
	}, logger)

	srv := server.New(cfg.Port, rooms, gw, logger)

	go func() {
		logger.Info("listening", "port", cfg.Port, "games", games.IDs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	rooms.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
