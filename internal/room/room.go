// Package room owns the live room state: roster, settings, status, the
// active game engine and its timers. Each room is an actor; its state is
// touched only by its own run goroutine, fed through a mailbox.
package room

import (
	"time"

	"github.com/fishkagame/fishka-backend/internal/protocol"
)

// SpectatorTeam is the reserved team id marking non-playing members.
const SpectatorTeam = "spectators"

// Sink delivers events to one player's connection. Send must not block;
// Detach tells the transport side its room binding is gone.
type Sink interface {
	Send(ev protocol.Event)
	Detach()
}

// Player is one roster seat. Identity (ID) is stable across reconnects;
// sink is nil while the player is disconnected.
type Player struct {
	ID          string
	Name        string
	AvatarSeed  int
	IsHost      bool
	IsConnected bool
	IsSpectator bool
	TeamID      string
	JoinedAt    time.Time

	sink Sink
}

// SetSink attaches the player's delivery channel. The room takes over sink
// management once the player is seated.
func (p *Player) SetSink(s Sink) { p.sink = s }

func (p *Player) Info() protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:          p.ID,
		Name:        p.Name,
		AvatarSeed:  p.AvatarSeed,
		IsHost:      p.IsHost,
		IsConnected: p.IsConnected,
		IsSpectator: p.IsSpectator,
		TeamID:      p.TeamID,
	}
}

// DefaultSettings is what a createRoom without settings gets.
func DefaultSettings() protocol.RoomSettings {
	return protocol.RoomSettings{
		GameID:     "tapeworm",
		MaxPlayers: 8,
	}
}

// MergeSettings overlays non-zero fields of override onto base.
func MergeSettings(base protocol.RoomSettings, override *protocol.RoomSettings) protocol.RoomSettings {
	if override == nil {
		return base
	}
	out := base
	if override.GameID != "" {
		out.GameID = override.GameID
	}
	if override.MaxPlayers != 0 {
		out.MaxPlayers = override.MaxPlayers
	}
	out.IsPrivate = override.IsPrivate
	if len(override.GameConfig) > 0 {
		out.GameConfig = override.GameConfig
	}
	return out
}

// Options are the room-layer timing knobs.
type Options struct {
	HeartbeatTimeout time.Duration
	ReconnectWindow  time.Duration
	PauseTimeout     time.Duration
	IdleTimeout      time.Duration
}

// RoomError is a recoverable room-level failure carrying its wire code.
type RoomError struct {
	Code    protocol.ErrorCode
	Message string
}

func (e *RoomError) Error() string { return e.Message }

func roomErr(code protocol.ErrorCode, message string) *RoomError {
	return &RoomError{Code: code, Message: message}
}
