package room

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"github.com/fishkagame/fishka-backend/internal/game"
	"github.com/fishkagame/fishka-backend/internal/protocol"
	"github.com/fishkagame/fishka-backend/internal/store"
)

const (
	codeLength      = 4
	codeGenAttempts = 32
)

// ErrNoFreeCode is returned when code generation keeps colliding, which in
// practice means the instance is holding an absurd number of rooms.
var ErrNoFreeCode = errors.New("room: could not allocate a free room code")

// Registry owns the live set of rooms on this instance and hands out codes.
type Registry struct {
	games  *game.Registry
	st     store.Store
	opts   Options
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*Session
}

func NewRegistry(games *game.Registry, st store.Store, opts Options, logger *slog.Logger) *Registry {
	return &Registry{
		games:  games,
		st:     st,
		opts:   opts,
		logger: logger,
		rooms:  make(map[string]*Session),
	}
}

// Create allocates a code, spins up the room actor and returns it. Settings
// are merged over the defaults; the caller has already validated them.
func (r *Registry) Create(settings *protocol.RoomSettings) (*Session, error) {
	merged := MergeSettings(DefaultSettings(), settings)
	if r.games.Lookup(merged.GameID) == nil {
		return nil, roomErr(protocol.ErrGameNotFound, "unknown game: "+merged.GameID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	code, err := r.freeCodeLocked()
	if err != nil {
		return nil, err
	}
	s := newSession(code, merged, r.games, r.st, r.opts, r.logger, r.remove)
	r.rooms[code] = s
	r.logger.Info("room created", "room", code, "game", merged.GameID)
	return s, nil
}

func (r *Registry) freeCodeLocked() (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	alphabet := big.NewInt(int64(len(protocol.CodeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		buf[i] = protocol.CodeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// Lookup returns the live room for a code, or nil.
func (r *Registry) Lookup(code string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[code]
}

// JoinableRooms lists public lobbies with open seats, for the REST listing.
func (r *Registry) JoinableRooms() []protocol.RoomInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]protocol.RoomInfo, 0, len(sessions))
	for _, s := range sessions {
		if info, ok := s.Joinable(); ok {
			out = append(out, info)
		}
	}
	return out
}

// Count reports how many rooms are live.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Shutdown tears down every live room.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()
	for _, s := range sessions {
		s.post(func() { s.teardown("shutdown") })
	}
}

func (r *Registry) remove(code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
}
