package protocol

import (
	"encoding/json"
	"unicode/utf8"
)

// CodeAlphabet is the set of characters room codes are drawn from. It
// avoids 0/O and 1/I so codes survive being read aloud or handwritten.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	MaxPlayerNameLen = 20
	MaxRoomCodeLen   = 10
	MaxStrokePoints  = 512
)

// ErrorCode identifies a recoverable failure reported to the client.
type ErrorCode string

const (
	ErrInvalidMessage   ErrorCode = "INVALID_MESSAGE"
	ErrRoomNotFound     ErrorCode = "ROOM_NOT_FOUND"
	ErrRoomFull         ErrorCode = "ROOM_FULL"
	ErrRoomInProgress   ErrorCode = "ROOM_IN_PROGRESS"
	ErrNotHost          ErrorCode = "NOT_HOST"
	ErrNotEnoughPlayers ErrorCode = "NOT_ENOUGH_PLAYERS"
	ErrPlayerBanned     ErrorCode = "PLAYER_BANNED"
	ErrPlayerNameTaken  ErrorCode = "PLAYER_NAME_TAKEN"
	ErrJoinFailed       ErrorCode = "JOIN_FAILED"
	ErrInvalidAction    ErrorCode = "INVALID_ACTION"
	ErrNotYourTurn      ErrorCode = "NOT_YOUR_TURN"
	ErrGameNotStarted   ErrorCode = "GAME_NOT_STARTED"
	ErrGameNotFound     ErrorCode = "GAME_NOT_FOUND"
	ErrSessionExpired   ErrorCode = "SESSION_EXPIRED"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"
)

// RoomStatus is the lifecycle stage of a room.
type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// RoomSettings is the wire shape of a room's configuration. GameConfig is
// opaque to the room layer and handed to the selected game plugin as-is.
type RoomSettings struct {
	GameID     string          `json:"gameId"`
	MaxPlayers int             `json:"maxPlayers"`
	IsPrivate  bool            `json:"isPrivate"`
	GameConfig json.RawMessage `json:"gameConfig,omitempty"`
}

// PlayerInfo is the public projection of a player sent to clients.
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarSeed  int    `json:"avatarSeed"`
	IsHost      bool   `json:"isHost"`
	IsConnected bool   `json:"isConnected"`
	IsSpectator bool   `json:"isSpectator"`
	TeamID      string `json:"teamId,omitempty"`
}

// RoomInfo is the public projection of a room sent to clients.
type RoomInfo struct {
	Code      string       `json:"code"`
	Status    RoomStatus   `json:"status"`
	HostID    string       `json:"hostId"`
	Players   []PlayerInfo `json:"players"`
	Settings  RoomSettings `json:"settings"`
	CreatedAt int64        `json:"createdAt"`
}

// PauseInfo describes a game frozen by a mid-game disconnect.
type PauseInfo struct {
	DisconnectedPlayerID   string `json:"disconnectedPlayerId"`
	DisconnectedPlayerName string `json:"disconnectedPlayerName"`
	PausedAt               int64  `json:"pausedAt"`
	TimeoutAt              int64  `json:"timeoutAt"`
}

// Point is a single coordinate in a drawn stroke.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous drawn line.
type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

func validRoomCode(code string) bool {
	if len(code) < 1 || len(code) > MaxRoomCodeLen {
		return false
	}
	for _, r := range code {
		ok := false
		for _, a := range CodeAlphabet {
			if r == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func validPlayerName(name string) bool {
	// Rune count, not bytes: names are routinely non-ASCII.
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= MaxPlayerNameLen
}

func validSettings(s *RoomSettings) bool {
	if s == nil {
		return true
	}
	// MaxPlayers == 0 means "use the default"; anything else must allow
	// at least two players.
	if s.MaxPlayers != 0 && s.MaxPlayers < 2 {
		return false
	}
	return true
}
