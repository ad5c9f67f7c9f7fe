// Package server wires the HTTP surface: health, the public room listing
// and the websocket endpoint.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fishkagame/fishka-backend/internal/gateway"
	"github.com/fishkagame/fishka-backend/internal/room"
)

type Server struct {
	port   int
	rooms  *room.Registry
	gw     *gateway.Gateway
	logger *slog.Logger
}

func New(port int, rooms *room.Registry, gw *gateway.Gateway, logger *slog.Logger) *http.Server {
	s := &Server{
		port:   port,
		rooms:  rooms,
		gw:     gw,
		logger: logger.With("component", "http"),
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
