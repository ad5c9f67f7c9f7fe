package protocol

import "encoding/json"

// IntentType discriminates client→server messages.
type IntentType string

const (
	IntentConnect        IntentType = "connect"
	IntentCreateRoom     IntentType = "createRoom"
	IntentJoinRoom       IntentType = "joinRoom"
	IntentLeaveRoom      IntentType = "leaveRoom"
	IntentUpdateSettings IntentType = "updateSettings"
	IntentStartGame      IntentType = "startGame"
	IntentGameAction     IntentType = "gameAction"
	IntentHeartbeat      IntentType = "heartbeat"
	IntentReturnToLobby  IntentType = "returnToLobby"
	IntentEndGame        IntentType = "endGame"
	IntentSwitchTeam     IntentType = "switchTeam"
	IntentKickPlayer     IntentType = "kickPlayer"
	IntentDrawStroke     IntentType = "drawStroke"
	IntentDrawClear      IntentType = "drawClear"
	IntentDrawUndo       IntentType = "drawUndo"
)

// ClientIntent is one validated, decoded inbound message. The set of
// implementations is closed; Decode is the only constructor that matters.
type ClientIntent interface {
	IntentType() IntentType
}

type Connect struct {
	Type         IntentType `json:"type"`
	PlayerName   string     `json:"playerName"`
	AvatarSeed   int        `json:"avatarSeed"`
	SessionToken string     `json:"sessionToken,omitempty"`
}

type CreateRoom struct {
	Type     IntentType    `json:"type"`
	Settings *RoomSettings `json:"settings,omitempty"`
}

type JoinRoom struct {
	Type     IntentType `json:"type"`
	RoomCode string     `json:"roomCode"`
}

type LeaveRoom struct {
	Type IntentType `json:"type"`
}

type UpdateSettings struct {
	Type     IntentType   `json:"type"`
	Settings RoomSettings `json:"settings"`
}

type StartGame struct {
	Type IntentType `json:"type"`
}

type GameAction struct {
	Type   IntentType      `json:"type"`
	Action json.RawMessage `json:"action"`
}

type Heartbeat struct {
	Type IntentType `json:"type"`
}

type ReturnToLobby struct {
	Type IntentType `json:"type"`
}

type EndGame struct {
	Type IntentType `json:"type"`
}

type SwitchTeam struct {
	Type   IntentType `json:"type"`
	TeamID string     `json:"teamId"`
}

type KickPlayer struct {
	Type           IntentType `json:"type"`
	TargetPlayerID string     `json:"targetPlayerId"`
}

type DrawStroke struct {
	Type      IntentType `json:"type"`
	Points    []Point    `json:"points"`
	NewStroke bool       `json:"newStroke,omitempty"`
}

type DrawClear struct {
	Type IntentType `json:"type"`
}

type DrawUndo struct {
	Type IntentType `json:"type"`
}

func (m *Connect) IntentType() IntentType        { return IntentConnect }
func (m *CreateRoom) IntentType() IntentType     { return IntentCreateRoom }
func (m *JoinRoom) IntentType() IntentType       { return IntentJoinRoom }
func (m *LeaveRoom) IntentType() IntentType      { return IntentLeaveRoom }
func (m *UpdateSettings) IntentType() IntentType { return IntentUpdateSettings }
func (m *StartGame) IntentType() IntentType      { return IntentStartGame }
func (m *GameAction) IntentType() IntentType     { return IntentGameAction }
func (m *Heartbeat) IntentType() IntentType      { return IntentHeartbeat }
func (m *ReturnToLobby) IntentType() IntentType  { return IntentReturnToLobby }
func (m *EndGame) IntentType() IntentType        { return IntentEndGame }
func (m *SwitchTeam) IntentType() IntentType     { return IntentSwitchTeam }
func (m *KickPlayer) IntentType() IntentType     { return IntentKickPlayer }
func (m *DrawStroke) IntentType() IntentType     { return IntentDrawStroke }
func (m *DrawClear) IntentType() IntentType      { return IntentDrawClear }
func (m *DrawUndo) IntentType() IntentType       { return IntentDrawUndo }

// Decode validates and decodes an untrusted inbound message. It returns
// nil for anything malformed: non-object input, missing or unknown type,
// or any per-field constraint violation. It never panics and never
// reports why a message was rejected; callers answer every nil the same
// way (INVALID_MESSAGE).
func Decode(raw []byte) ClientIntent {
	var env struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == nil {
		return nil
	}

	switch IntentType(*env.Type) {
	case IntentConnect:
		var m Connect
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if !validPlayerName(m.PlayerName) || m.AvatarSeed < 0 {
			return nil
		}
		m.Type = IntentConnect
		return &m

	case IntentCreateRoom:
		var m CreateRoom
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if !validSettings(m.Settings) {
			return nil
		}
		m.Type = IntentCreateRoom
		return &m

	case IntentJoinRoom:
		var m JoinRoom
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if !validRoomCode(m.RoomCode) {
			return nil
		}
		m.Type = IntentJoinRoom
		return &m

	case IntentLeaveRoom:
		return &LeaveRoom{Type: IntentLeaveRoom}

	case IntentUpdateSettings:
		var m UpdateSettings
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if m.Settings.MaxPlayers < 2 {
			return nil
		}
		m.Type = IntentUpdateSettings
		return &m

	case IntentStartGame:
		return &StartGame{Type: IntentStartGame}

	case IntentGameAction:
		var m GameAction
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if len(m.Action) == 0 {
			return nil
		}
		m.Type = IntentGameAction
		return &m

	case IntentHeartbeat:
		return &Heartbeat{Type: IntentHeartbeat}

	case IntentReturnToLobby:
		return &ReturnToLobby{Type: IntentReturnToLobby}

	case IntentEndGame:
		return &EndGame{Type: IntentEndGame}

	case IntentSwitchTeam:
		var m SwitchTeam
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if m.TeamID == "" {
			return nil
		}
		m.Type = IntentSwitchTeam
		return &m

	case IntentKickPlayer:
		var m KickPlayer
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if m.TargetPlayerID == "" {
			return nil
		}
		m.Type = IntentKickPlayer
		return &m

	case IntentDrawStroke:
		var m DrawStroke
		if json.Unmarshal(raw, &m) != nil {
			return nil
		}
		if len(m.Points) == 0 || len(m.Points) > MaxStrokePoints {
			return nil
		}
		m.Type = IntentDrawStroke
		return &m

	case IntentDrawClear:
		return &DrawClear{Type: IntentDrawClear}

	case IntentDrawUndo:
		return &DrawUndo{Type: IntentDrawUndo}
	}

	return nil
}

// EncodeIntent serializes a client intent; the dual of Decode, used by
// clients and round-trip tests.
func EncodeIntent(m ClientIntent) ([]byte, error) {
	return json.Marshal(m)
}
