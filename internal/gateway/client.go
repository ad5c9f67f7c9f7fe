package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/fishkagame/fishka-backend/internal/protocol"
	"github.com/fishkagame/fishka-backend/internal/room"
	"github.com/fishkagame/fishka-backend/internal/session"
)

const (
	maxMessageBytes = 64 << 10
	sendQueueSize   = 64
	writeWait       = 10 * time.Second
	storeCallWait   = 3 * time.Second
)

// Client is one websocket connection. It implements room.Sink; the room
// actor hands it events, writePump ships them out.
type Client struct {
	gw      *Gateway
	conn    *websocket.Conn
	limiter *rate.Limiter
	logger  *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// identity is set once by the connect handshake and read-only after.
	playerID   string
	name       string
	avatarSeed int

	mu sync.Mutex
	rm *room.Session
}

func newClient(g *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		gw:      g,
		conn:    conn,
		limiter: rate.NewLimiter(g.opts.RateLimit, g.opts.RateBurst),
		logger:  g.logger,
		send:    make(chan []byte, sendQueueSize),
		done:    make(chan struct{}),
	}
}

// Send queues an event for delivery. It never blocks; a client that cannot
// drain its queue loses events and will resync from a snapshot on
// reconnect.
func (c *Client) Send(ev protocol.Event) {
	data, err := protocol.Encode(ev)
	if err != nil {
		c.logger.Error("encode event", "event", string(ev.EventType()), "error", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("send queue full, dropping event",
			"player", c.playerID, "event", string(ev.EventType()))
	}
}

// Detach severs the room binding. The connection stays up; the player can
// join or create another room.
func (c *Client) Detach() {
	c.mu.Lock()
	c.rm = nil
	c.mu.Unlock()
}

func (c *Client) room() *room.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rm
}

func (c *Client) bind(s *room.Session) {
	c.mu.Lock()
	c.rm = s
	c.mu.Unlock()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) writePump() {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer c.teardown()
	c.conn.SetReadLimit(maxMessageBytes)

	if !c.handshake() {
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			c.Send(protocol.NewError(protocol.ErrRateLimited, "slow down"))
			continue
		}
		intent := protocol.Decode(raw)
		if intent == nil {
			c.Send(protocol.NewError(protocol.ErrInvalidMessage, "could not parse message"))
			continue
		}
		c.dispatch(intent)
	}
}

// handshake consumes the first message, which must be connect, and settles
// the player's identity. Returns false when the connection should drop.
func (c *Client) handshake() bool {
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return false
	}
	connect, ok := protocol.Decode(raw).(*protocol.Connect)
	if !ok {
		c.Send(protocol.NewError(protocol.ErrInvalidMessage, "first message must be connect"))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeCallWait)
	defer cancel()

	if connect.SessionToken != "" {
		rec, err := c.gw.sessions.Verify(ctx, connect.SessionToken)
		if err != nil {
			c.Send(protocol.NewError(protocol.ErrSessionExpired, "session expired, reconnect without a token"))
			return false
		}
		c.playerID = rec.PlayerID
		c.name = rec.Name
		c.avatarSeed = rec.AvatarSeed
		c.gw.keepSession(c.playerID)

		roomCode := ""
		if rec.RoomCode != "" {
			if s := c.gw.rooms.Lookup(rec.RoomCode); s != nil && s.Reconnect(c.playerID, c) {
				c.bind(s)
				roomCode = rec.RoomCode
			} else {
				// Room is gone; unbind so the next token verify is clean.
				_ = c.gw.sessions.BindRoom(ctx, rec, "")
			}
		}
		c.Send(&protocol.Connected{
			PlayerID:     c.playerID,
			SessionToken: connect.SessionToken,
			RoomCode:     roomCode,
		})
		c.logger.Info("player reconnected", "player", c.playerID, "room", roomCode)
		return true
	}

	c.playerID = uuid.NewString()
	c.name = connect.PlayerName
	c.avatarSeed = connect.AvatarSeed
	token, err := c.gw.sessions.Issue(ctx, session.Record{
		PlayerID:   c.playerID,
		Name:       c.name,
		AvatarSeed: c.avatarSeed,
	})
	if err != nil {
		c.logger.Error("issue session", "error", err)
		c.Send(protocol.NewError(protocol.ErrInvalidMessage, "could not establish a session"))
		return false
	}
	c.Send(&protocol.Connected{PlayerID: c.playerID, SessionToken: token})
	c.logger.Info("player connected", "player", c.playerID, "name", c.name)
	return true
}

func (c *Client) dispatch(intent protocol.ClientIntent) {
	switch in := intent.(type) {
	case *protocol.Connect:
		c.Send(protocol.NewError(protocol.ErrInvalidMessage, "already connected"))

	case *protocol.CreateRoom:
		c.createRoom(in.Settings)

	case *protocol.JoinRoom:
		c.joinRoom(in.RoomCode)

	case *protocol.LeaveRoom:
		if s := c.room(); s != nil {
			s.Handle(c.playerID, intent)
		}
		c.rebindSession("")

	case *protocol.Heartbeat:
		if s := c.room(); s != nil {
			s.Handle(c.playerID, intent)
		}
		go c.touchSession()

	default:
		s := c.room()
		if s == nil {
			c.Send(protocol.NewError(protocol.ErrInvalidAction, "not in a room"))
			return
		}
		s.Handle(c.playerID, intent)
	}
}

func (c *Client) createRoom(settings *protocol.RoomSettings) {
	if c.room() != nil {
		c.Send(protocol.NewError(protocol.ErrInvalidAction, "already in a room"))
		return
	}
	s, err := c.gw.rooms.Create(settings)
	if err != nil {
		c.sendRoomError(err, protocol.ErrJoinFailed)
		return
	}
	c.enterRoom(s, true)
}

func (c *Client) joinRoom(code string) {
	if c.room() != nil {
		c.Send(protocol.NewError(protocol.ErrInvalidAction, "already in a room"))
		return
	}
	s := c.gw.rooms.Lookup(code)
	if s == nil {
		c.Send(protocol.NewError(protocol.ErrRoomNotFound, "no room with code "+code))
		return
	}
	// A seat may already exist for this identity, e.g. a page reload where
	// the client rejoins by code instead of relying on the token binding.
	if s.Reconnect(c.playerID, c) {
		c.bind(s)
		c.rebindSession(s.Code())
		return
	}
	c.enterRoom(s, false)
}

func (c *Client) enterRoom(s *room.Session, asCreator bool) {
	p := &room.Player{
		ID:         c.playerID,
		Name:       c.name,
		AvatarSeed: c.avatarSeed,
	}
	p.SetSink(c)
	if err := s.Join(p, asCreator); err != nil {
		c.sendRoomError(err, protocol.ErrJoinFailed)
		return
	}
	c.bind(s)
	c.rebindSession(s.Code())
}

func (c *Client) sendRoomError(err error, fallback protocol.ErrorCode) {
	if re, ok := err.(*room.RoomError); ok {
		c.Send(protocol.NewError(re.Code, re.Message))
		return
	}
	c.Send(protocol.NewError(fallback, err.Error()))
}

func (c *Client) rebindSession(roomCode string) {
	rec := session.Record{PlayerID: c.playerID, Name: c.name, AvatarSeed: c.avatarSeed}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeCallWait)
		defer cancel()
		if err := c.gw.sessions.BindRoom(ctx, rec, roomCode); err != nil {
			c.logger.Warn("bind session room", "player", rec.PlayerID, "error", err)
		}
	}()
}

func (c *Client) touchSession() {
	ctx, cancel := context.WithTimeout(context.Background(), storeCallWait)
	defer cancel()
	if err := c.gw.sessions.Touch(ctx, c.playerID); err != nil && err != session.ErrExpired {
		c.logger.Warn("refresh session", "player", c.playerID, "error", err)
	}
}

// teardown runs when the read loop exits for any reason.
func (c *Client) teardown() {
	c.close()
	if c.playerID == "" {
		return
	}
	if s := c.room(); s != nil {
		s.Disconnect(c.playerID)
	} else {
		c.gw.scheduleOrphanCleanup(c.playerID)
	}
}
