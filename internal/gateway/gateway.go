// Package gateway terminates websocket connections, owns player identity
// (connect/reconnect via session tokens) and routes decoded intents into
// room actors.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/fishkagame/fishka-backend/internal/room"
	"github.com/fishkagame/fishka-backend/internal/session"
)

// Options are the connection-layer knobs.
type Options struct {
	RateLimit     rate.Limit
	RateBurst     int
	OrphanTimeout time.Duration
}

// Gateway accepts websocket connections and runs one Client per socket.
type Gateway struct {
	rooms    *room.Registry
	sessions *session.Manager
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// orphans delays session teardown for players who disconnect outside a
	// room, leaving a reconnect grace window.
	orphans *room.TimerSet
}

func New(rooms *room.Registry, sessions *session.Manager, opts Options, logger *slog.Logger) *Gateway {
	return &Gateway{
		rooms:    rooms,
		sessions: sessions,
		opts:     opts,
		logger:   logger.With("component", "gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		orphans: room.NewTimerSet(),
	}
}

// HandleWebSocket upgrades the request and services the connection until it
// drops. One goroutine reads, one writes.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := newClient(g, conn)
	go c.writePump()
	c.readPump()
}

// keepSession cancels any pending orphan cleanup for a player who came back.
func (g *Gateway) keepSession(playerID string) {
	g.orphans.Cancel("orphan:" + playerID)
}

// scheduleOrphanCleanup drops the session record of a player who
// disconnected without a room, once the grace window passes.
func (g *Gateway) scheduleOrphanCleanup(playerID string) {
	id := playerID
	g.orphans.Schedule("orphan:"+id, g.opts.OrphanTimeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := g.sessions.Drop(ctx, id); err != nil {
			g.logger.Warn("drop orphan session", "player", id, "error", err)
		}
	})
}
