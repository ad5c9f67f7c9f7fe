package protocol

import "encoding/json"

// EventType discriminates server→client messages.
type EventType string

const (
	EventConnected          EventType = "connected"
	EventRoomCreated        EventType = "roomCreated"
	EventRoomJoined         EventType = "roomJoined"
	EventRoomState          EventType = "roomState"
	EventPlayerJoined       EventType = "playerJoined"
	EventPlayerLeft         EventType = "playerLeft"
	EventPlayerReconnected  EventType = "playerReconnected"
	EventPlayerDisconnected EventType = "playerDisconnected"
	EventSettingsUpdated    EventType = "settingsUpdated"
	EventGameStarted        EventType = "gameStarted"
	EventGameState          EventType = "gameState"
	EventGameActionResult   EventType = "gameActionResult"
	EventGameOver           EventType = "gameOver"
	EventTimerSync          EventType = "timerSync"
	EventReturnedToLobby    EventType = "returnedToLobby"
	EventGamePaused         EventType = "gamePaused"
	EventGameResumed        EventType = "gameResumed"
	EventPlayerKicked       EventType = "playerKicked"
	EventDrawHistory        EventType = "drawHistory"
	EventStrokeAdded        EventType = "drawStroke"
	EventCanvasCleared      EventType = "drawClear"
	EventStrokeUndone       EventType = "drawUndo"
	EventError              EventType = "error"
)

// Event is one typed server→client message.
type Event interface {
	EventType() EventType
}

type Connected struct {
	Type         EventType `json:"type"`
	PlayerID     string    `json:"playerId"`
	SessionToken string    `json:"sessionToken"`
	RoomCode     string    `json:"roomCode,omitempty"`
}

type RoomCreated struct {
	Type EventType `json:"type"`
	Room RoomInfo  `json:"room"`
}

type RoomJoined struct {
	Type EventType `json:"type"`
	Room RoomInfo  `json:"room"`
}

type RoomState struct {
	Type EventType `json:"type"`
	Room RoomInfo  `json:"room"`
}

type PlayerJoined struct {
	Type   EventType  `json:"type"`
	Player PlayerInfo `json:"player"`
}

type PlayerLeft struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type PlayerReconnected struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type PlayerDisconnected struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type SettingsUpdated struct {
	Type     EventType    `json:"type"`
	Settings RoomSettings `json:"settings"`
}

type GameStarted struct {
	Type      EventType `json:"type"`
	GameState any       `json:"gameState"`
}

type GameState struct {
	Type      EventType `json:"type"`
	GameState any       `json:"gameState"`
}

type GameActionResult struct {
	Type    EventType `json:"type"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

type GameOver struct {
	Type       EventType `json:"type"`
	FinalState any       `json:"finalState"`
}

type TimerSync struct {
	Type   EventType `json:"type"`
	EndsAt int64     `json:"endsAt"`
}

type ReturnedToLobby struct {
	Type EventType `json:"type"`
	Room RoomInfo  `json:"room"`
}

type GamePaused struct {
	Type      EventType `json:"type"`
	PauseInfo PauseInfo `json:"pauseInfo"`
}

type GameResumed struct {
	Type EventType `json:"type"`
}

type PlayerKicked struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type DrawHistory struct {
	Type    EventType `json:"type"`
	Strokes []Stroke  `json:"strokes"`
}

// StrokeAdded relays one drawStroke message to the other clients in the
// room; NewStroke carries through so receivers segment lines the same way
// the sender did.
type StrokeAdded struct {
	Type      EventType `json:"type"`
	PlayerID  string    `json:"playerId"`
	Points    []Point   `json:"points"`
	NewStroke bool      `json:"newStroke,omitempty"`
}

type CanvasCleared struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type StrokeUndone struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId"`
}

type Error struct {
	Type    EventType `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Connected) EventType() EventType          { return EventConnected }
func (e *RoomCreated) EventType() EventType        { return EventRoomCreated }
func (e *RoomJoined) EventType() EventType         { return EventRoomJoined }
func (e *RoomState) EventType() EventType          { return EventRoomState }
func (e *PlayerJoined) EventType() EventType       { return EventPlayerJoined }
func (e *PlayerLeft) EventType() EventType         { return EventPlayerLeft }
func (e *PlayerReconnected) EventType() EventType  { return EventPlayerReconnected }
func (e *PlayerDisconnected) EventType() EventType { return EventPlayerDisconnected }
func (e *SettingsUpdated) EventType() EventType    { return EventSettingsUpdated }
func (e *GameStarted) EventType() EventType        { return EventGameStarted }
func (e *GameState) EventType() EventType          { return EventGameState }
func (e *GameActionResult) EventType() EventType   { return EventGameActionResult }
func (e *GameOver) EventType() EventType           { return EventGameOver }
func (e *TimerSync) EventType() EventType          { return EventTimerSync }
func (e *ReturnedToLobby) EventType() EventType    { return EventReturnedToLobby }
func (e *GamePaused) EventType() EventType         { return EventGamePaused }
func (e *GameResumed) EventType() EventType        { return EventGameResumed }
func (e *PlayerKicked) EventType() EventType       { return EventPlayerKicked }
func (e *DrawHistory) EventType() EventType        { return EventDrawHistory }
func (e *StrokeAdded) EventType() EventType        { return EventStrokeAdded }
func (e *CanvasCleared) EventType() EventType      { return EventCanvasCleared }
func (e *StrokeUndone) EventType() EventType       { return EventStrokeUndone }
func (e *Error) EventType() EventType              { return EventError }

// setType fills in the discriminant so constructors don't have to.
func setType(e Event) {
	switch ev := e.(type) {
	case *Connected:
		ev.Type = EventConnected
	case *RoomCreated:
		ev.Type = EventRoomCreated
	case *RoomJoined:
		ev.Type = EventRoomJoined
	case *RoomState:
		ev.Type = EventRoomState
	case *PlayerJoined:
		ev.Type = EventPlayerJoined
	case *PlayerLeft:
		ev.Type = EventPlayerLeft
	case *PlayerReconnected:
		ev.Type = EventPlayerReconnected
	case *PlayerDisconnected:
		ev.Type = EventPlayerDisconnected
	case *SettingsUpdated:
		ev.Type = EventSettingsUpdated
	case *GameStarted:
		ev.Type = EventGameStarted
	case *GameState:
		ev.Type = EventGameState
	case *GameActionResult:
		ev.Type = EventGameActionResult
	case *GameOver:
		ev.Type = EventGameOver
	case *TimerSync:
		ev.Type = EventTimerSync
	case *ReturnedToLobby:
		ev.Type = EventReturnedToLobby
	case *GamePaused:
		ev.Type = EventGamePaused
	case *GameResumed:
		ev.Type = EventGameResumed
	case *PlayerKicked:
		ev.Type = EventPlayerKicked
	case *DrawHistory:
		ev.Type = EventDrawHistory
	case *StrokeAdded:
		ev.Type = EventStrokeAdded
	case *CanvasCleared:
		ev.Type = EventCanvasCleared
	case *StrokeUndone:
		ev.Type = EventStrokeUndone
	case *Error:
		ev.Type = EventError
	}
}

// Encode serializes a server event with its type discriminant filled in.
func Encode(e Event) ([]byte, error) {
	setType(e)
	return json.Marshal(e)
}

// NewError builds the standard error event for a code with its default
// human-readable message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Type: EventError, Code: code, Message: message}
}
