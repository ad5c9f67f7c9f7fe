// Package crocodile implements the drawing/guessing game engine. One
// player draws a word, everyone else races to guess it; rounds rotate
// the drawer. Stroke data itself lives at the room layer, not here.
package crocodile

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fishkagame/fishka-backend/internal/game"
)

const (
	defaultMaxRounds     = 3
	defaultChoiceSeconds = 15
	defaultDrawSeconds   = 90
	defaultRevealSeconds = 8
	wordChoiceCount      = 3
	guesserBasePoints    = 100
	guesserMaxSpeedBonus = 50
	drawerPointsPerGuess = 40
)

type Phase string

const (
	PhaseChoosing Phase = "choosing"
	PhaseDrawing  Phase = "drawing"
	PhaseReveal   Phase = "reveal"
	PhaseGameOver Phase = "gameOver"
)

const (
	ActionChooseWord   = "chooseWord"
	ActionGuess        = "guess"
	ActionPhaseTimeout = "phaseTimeout" // server-originated
	ActionAdvanceRound = "advanceRound" // server-originated
)

// Config is the plugin's slice of room settings' gameConfig.
type Config struct {
	MaxRounds      int   `json:"maxRounds"`
	ChoiceSeconds  int   `json:"choiceSeconds"`
	DrawSeconds    int   `json:"drawSeconds"`
	RevealSeconds  int   `json:"revealSeconds"`
	Seed           int64 `json:"seed"`
}

// StatePlayer is one seated (non-spectator) player.
type StatePlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GuessRecord is one correct guess in the current round.
type GuessRecord struct {
	PlayerID string `json:"playerId"`
	TimeMs   int64  `json:"timeMs"`
}

// GameState is the authoritative crocodile state.
type GameState struct {
	Phase          Phase          `json:"phase"`
	Round          int            `json:"round"`
	MaxRounds      int            `json:"maxRounds"`
	TurnOrder      []string       `json:"turnOrder"`
	DrawerIndex    int            `json:"drawerIndex"`
	Word           string         `json:"word"`
	Choices        []string       `json:"choices,omitempty"`
	Scores         map[string]int `json:"scores"`
	Correct        []GuessRecord  `json:"correct"`
	Players        []StatePlayer  `json:"players"`
	PhaseDeadline  int64          `json:"phaseDeadline"` // unix ms
	WinnerID       string         `json:"winnerId,omitempty"`
	PhaseCount     int            `json:"phaseCount"` // timer key uniqueness
	ChoiceSeconds  int            `json:"choiceSeconds"`
	DrawSeconds    int            `json:"drawSeconds"`
	RevealSeconds  int            `json:"revealSeconds"`
}

func (s *GameState) DrawerID() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.DrawerIndex]
}

func (s *GameState) hasGuessed(playerID string) bool {
	for _, g := range s.Correct {
		if g.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (s *GameState) clone() *GameState {
	out := *s
	out.TurnOrder = append([]string{}, s.TurnOrder...)
	out.Choices = append([]string{}, s.Choices...)
	out.Correct = append([]GuessRecord{}, s.Correct...)
	out.Players = append([]StatePlayer{}, s.Players...)
	out.Scores = make(map[string]int, len(s.Scores))
	for id, score := range s.Scores {
		out.Scores[id] = score
	}
	return &out
}

// Engine implements game.Plugin for the guessing game.
type Engine struct {
	words WordSource
	now   func() time.Time
}

func New(words WordSource) *Engine {
	return &Engine{words: words, now: time.Now}
}

func (e *Engine) ID() string      { return "crocodile" }
func (e *Engine) MinPlayers() int { return 2 }

func (e *Engine) CreateInitialState(players []game.PlayerInfo, rawConfig json.RawMessage) (game.State, error) {
	cfg := Config{
		MaxRounds:     defaultMaxRounds,
		ChoiceSeconds: defaultChoiceSeconds,
		DrawSeconds:   defaultDrawSeconds,
		RevealSeconds: defaultRevealSeconds,
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, fmt.Errorf("parse game config: %w", err)
		}
	}

	var active []game.PlayerInfo
	for _, p := range players {
		if !p.IsSpectator {
			active = append(active, p)
		}
	}
	if len(active) < e.MinPlayers() {
		return nil, fmt.Errorf("need at least %d players, got %d", e.MinPlayers(), len(active))
	}

	s := &GameState{
		Phase:         PhaseChoosing,
		Round:         1,
		MaxRounds:     cfg.MaxRounds,
		Scores:        make(map[string]int, len(active)),
		ChoiceSeconds: cfg.ChoiceSeconds,
		DrawSeconds:   cfg.DrawSeconds,
		RevealSeconds: cfg.RevealSeconds,
	}
	for _, p := range active {
		s.TurnOrder = append(s.TurnOrder, p.ID)
		s.Players = append(s.Players, StatePlayer{ID: p.ID, Name: p.Name})
		s.Scores[p.ID] = 0
	}
	if cfg.Seed != 0 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		rng.Shuffle(len(s.TurnOrder), func(i, j int) {
			s.TurnOrder[i], s.TurnOrder[j] = s.TurnOrder[j], s.TurnOrder[i]
		})
	}
	s.Choices = e.words.Choices(wordChoiceCount)
	s.PhaseDeadline = e.now().Add(time.Duration(cfg.ChoiceSeconds) * time.Second).UnixMilli()
	return s, nil
}

type wordPayload struct {
	Word string `json:"word"`
}

type guessPayload struct {
	Text string `json:"text"`
}

func (e *Engine) ValidateAction(state game.State, a game.Action, playerID string) string {
	s, ok := state.(*GameState)
	if !ok || s == nil {
		return "no game in progress"
	}
	if s.Phase == PhaseGameOver {
		return "the game is over"
	}

	switch a.Type {
	case ActionPhaseTimeout, ActionAdvanceRound:
		if playerID != "" {
			return "unknown action"
		}
		return ""

	case ActionChooseWord:
		var p wordPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseChoosing {
			return "no word to choose right now"
		}
		if playerID != s.DrawerID() {
			return "only the drawer picks the word"
		}
		for _, c := range s.Choices {
			if c == p.Word {
				return ""
			}
		}
		return "that word was not offered"

	case ActionGuess:
		var p guessPayload
		if json.Unmarshal(a.Payload, &p) != nil || strings.TrimSpace(p.Text) == "" {
			return "malformed action"
		}
		if s.Phase != PhaseDrawing {
			return "guessing is closed"
		}
		if playerID == s.DrawerID() {
			return "the drawer cannot guess"
		}
		if !seated(s, playerID) {
			return "spectators cannot guess"
		}
		if s.hasGuessed(playerID) {
			return "you already guessed it"
		}
		return ""
	}

	return "unknown action"
}

func seated(s *GameState, playerID string) bool {
	for _, id := range s.TurnOrder {
		if id == playerID {
			return true
		}
	}
	return false
}

func (e *Engine) Reduce(state game.State, a game.Action, playerID string) game.State {
	if msg := e.ValidateAction(state, a, playerID); msg != "" {
		return nil
	}
	s := state.(*GameState).clone()

	switch a.Type {
	case ActionChooseWord:
		var p wordPayload
		_ = json.Unmarshal(a.Payload, &p)
		e.beginDrawing(s, p.Word)

	case ActionGuess:
		var p guessPayload
		_ = json.Unmarshal(a.Payload, &p)
		guess := strings.ToLower(strings.TrimSpace(p.Text))
		if guess != strings.ToLower(strings.TrimSpace(s.Word)) {
			// A miss is a legal no-op.
			return s
		}
		remainingMs := s.PhaseDeadline - e.now().UnixMilli()
		bonus := int(remainingMs / 1000)
		if bonus > guesserMaxSpeedBonus {
			bonus = guesserMaxSpeedBonus
		}
		if bonus < 0 {
			bonus = 0
		}
		s.Scores[playerID] += guesserBasePoints + bonus
		s.Scores[s.DrawerID()] += drawerPointsPerGuess
		s.Correct = append(s.Correct, GuessRecord{PlayerID: playerID, TimeMs: e.now().UnixMilli()})

	case ActionPhaseTimeout:
		e.advancePhase(s)

	case ActionAdvanceRound:
		if s.Phase == PhaseDrawing {
			e.beginReveal(s)
		}
	}
	return s
}

func (e *Engine) beginDrawing(s *GameState, word string) {
	s.Word = word
	s.Choices = nil
	s.Correct = nil
	s.Phase = PhaseDrawing
	s.PhaseCount++
	s.PhaseDeadline = e.now().Add(time.Duration(s.DrawSeconds) * time.Second).UnixMilli()
}

func (e *Engine) beginReveal(s *GameState) {
	s.Phase = PhaseReveal
	s.PhaseCount++
	s.PhaseDeadline = e.now().Add(time.Duration(s.RevealSeconds) * time.Second).UnixMilli()
}

// advancePhase is the timer-driven transition: choosing auto-picks the
// first offered word, drawing falls into reveal, reveal rotates the
// drawer and may end the game.
func (e *Engine) advancePhase(s *GameState) {
	switch s.Phase {
	case PhaseChoosing:
		word := ""
		if len(s.Choices) > 0 {
			word = s.Choices[0]
		}
		e.beginDrawing(s, word)

	case PhaseDrawing:
		e.beginReveal(s)

	case PhaseReveal:
		s.DrawerIndex++
		if s.DrawerIndex >= len(s.TurnOrder) {
			s.DrawerIndex = 0
			s.Round++
		}
		if s.Round > s.MaxRounds {
			e.finish(s)
			return
		}
		s.Word = ""
		s.Correct = nil
		s.Phase = PhaseChoosing
		s.PhaseCount++
		s.Choices = e.words.Choices(wordChoiceCount)
		s.PhaseDeadline = e.now().Add(time.Duration(s.ChoiceSeconds) * time.Second).UnixMilli()
	}
}

func (e *Engine) finish(s *GameState) {
	s.Phase = PhaseGameOver
	winner, best := "", -1
	for _, id := range s.TurnOrder {
		if s.Scores[id] > best {
			winner, best = id, s.Scores[id]
		}
	}
	s.WinnerID = winner
}

// ServerActions closes a drawing phase early once every guesser has the
// word; the timer would get there eventually, this gets there now.
func (e *Engine) ServerActions(state game.State) []game.Action {
	s, ok := state.(*GameState)
	if !ok || s.Phase != PhaseDrawing {
		return nil
	}
	if len(s.Correct) >= len(s.TurnOrder)-1 {
		return []game.Action{{Type: ActionAdvanceRound}}
	}
	return nil
}

func (e *Engine) IsGameOver(state game.State) bool {
	s, ok := state.(*GameState)
	return ok && s.Phase == PhaseGameOver
}

func (e *Engine) TimerConfig(state game.State) *game.TimerConfig {
	s, ok := state.(*GameState)
	if !ok || s.Phase == PhaseGameOver {
		return nil
	}
	remaining := time.Duration(s.PhaseDeadline-e.now().UnixMilli()) * time.Millisecond
	if remaining < 0 {
		remaining = 0
	}
	return &game.TimerConfig{
		Key:      fmt.Sprintf("phase-%d", s.PhaseCount),
		Duration: remaining,
		Action:   game.Action{Type: ActionPhaseTimeout},
	}
}

// PauseOnDisconnect freezes the game only when the current drawer drops;
// a missing guesser shouldn't hold up the round.
func (e *Engine) PauseOnDisconnect(state game.State, playerID string) bool {
	s, ok := state.(*GameState)
	if !ok || s.Phase == PhaseGameOver {
		return false
	}
	return playerID == s.DrawerID()
}
