// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis is optional; without an address the server keeps all snapshots
	// and sessions in process memory.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RoomTTL    time.Duration `env:"ROOM_TTL" envDefault:"6h"`
	GameTTL    time.Duration `env:"GAME_TTL" envDefault:"6h"`

	HeartbeatTimeout time.Duration `env:"HEARTBEAT_TIMEOUT" envDefault:"30s"`
	ReconnectWindow  time.Duration `env:"RECONNECT_WINDOW" envDefault:"60s"`
	PauseTimeout     time.Duration `env:"PAUSE_TIMEOUT" envDefault:"120s"`
	IdleTimeout      time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	OrphanTimeout    time.Duration `env:"ORPHAN_TIMEOUT" envDefault:"10m"`

	// RateLimit is messages per second per connection, RateBurst the bucket
	// size.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"RATE_BURST" envDefault:"40"`

	// WordListPath points at a CSV word list for the drawing game; empty
	// falls back to the built-in list.
	WordListPath string `env:"WORD_LIST"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	return cfg, nil
}
