// Package game defines the contract every game engine implements and the
// registry rooms use to select one. Engines are pure state machines: the
// room layer owns scheduling, broadcasting and persistence.
package game

import (
	"encoding/json"
	"time"
)

// PlayerInfo is the roster slice an engine sees at game start.
type PlayerInfo struct {
	ID          string
	Name        string
	IsSpectator bool
	TeamID      string
}

// State is an engine-owned game state. The room layer treats it as opaque
// and only ever hands it back to the engine that produced it.
type State any

// Action is one game action, client- or server-originated. Payload is the
// raw JSON the engine decodes itself.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TimerConfig declares the next server action an engine wants scheduled.
// Re-arming with the same Key replaces the previous schedule.
type TimerConfig struct {
	Key      string
	Duration time.Duration
	Action   Action
}

// Plugin is the capability set of a game engine.
//
// ValidateAction is a side-effect-free pre-check returning a player-facing
// message, or "" when the action may proceed. Reduce applies an action and
// returns the new state, or nil when the action is illegal in this state;
// both outcomes are expected and neither panics. Reduce must be
// all-or-nothing: a nil return leaves the prior state untouched.
//
// PlayerView and SpectatorView are information-hiding projections; a
// player's view never contains another player's hand or the undrawn deck
// order.
type Plugin interface {
	ID() string
	MinPlayers() int

	CreateInitialState(players []PlayerInfo, config json.RawMessage) (State, error)
	ValidateAction(s State, a Action, playerID string) string
	Reduce(s State, a Action, playerID string) State

	PlayerView(s State, playerID string) any
	SpectatorView(s State) any

	// ServerActions returns actions the engine should apply to itself
	// given the current state, independent of client input.
	ServerActions(s State) []Action
	IsGameOver(s State) bool

	// TimerConfig returns the next scheduled server action, or nil when
	// no timer should run. Always answered, never absent.
	TimerConfig(s State) *TimerConfig

	// PauseOnDisconnect reports whether losing this player should freeze
	// the game.
	PauseOnDisconnect(s State, playerID string) bool
}
