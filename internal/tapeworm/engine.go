// Package tapeworm implements the tile-laying board game engine. Players
// grow colored chains out of their head tiles, trigger card properties
// through multi-step sub-protocols, and win by emptying their hand.
package tapeworm

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/fishkagame/fishka-backend/internal/game"
)

const (
	defaultTurnSeconds = 90
	defaultHandSize    = 5
	defaultHandLimit   = 8
	peekDepth          = 3
)

// Config is the plugin's slice of room settings' gameConfig.
type Config struct {
	TurnSeconds int   `json:"turnSeconds"`
	HandSize    int   `json:"handSize"`
	HandLimit   int   `json:"handLimit"`
	Seed        int64 `json:"seed"` // 0 = time-seeded
}

// Engine implements game.Plugin for Tapeworm.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) ID() string      { return "tapeworm" }
func (e *Engine) MinPlayers() int { return 2 }

func (e *Engine) CreateInitialState(players []game.PlayerInfo, rawConfig json.RawMessage) (game.State, error) {
	cfg := Config{TurnSeconds: defaultTurnSeconds, HandSize: defaultHandSize, HandLimit: defaultHandLimit}
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
	if len(active) > len(chainColors) {
		return nil, fmt.Errorf("at most %d players can play, got %d", len(chainColors), len(active))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	deck := buildDeck()
	shuffle(deck, rng)

	s := &GameState{
		Phase:       PhasePlaying,
		Board:       make(Board),
		Deck:        deck,
		Hands:       make(map[string][]Card, len(active)),
		TurnOrder:   make([]string, 0, len(active)),
		Players:     make([]StatePlayer, 0, len(active)),
		TotalCards:  len(deck),
		TurnSeconds: cfg.TurnSeconds,
		HandLimit:   cfg.HandLimit,
	}

	for i, p := range active {
		color := chainColors[i]
		s.TurnOrder = append(s.TurnOrder, p.ID)
		s.Players = append(s.Players, StatePlayer{ID: p.ID, Name: p.Name, Color: color})
		s.Board[headPositions[i]] = &Placed{Card: headCard(color), OwnerID: p.ID}

		hand := make([]Card, 0, cfg.HandSize)
		for j := 0; j < cfg.HandSize && len(s.Deck) > 0; j++ {
			hand = append(hand, s.Deck[0])
			s.Deck = s.Deck[1:]
		}
		s.Hands[p.ID] = hand
	}
	return s, nil
}

// ValidateAction is the side-effect-free pre-check. A server-originated
// action arrives with an empty playerID.
func (e *Engine) ValidateAction(state game.State, a game.Action, playerID string) string {
	s, ok := state.(*GameState)
	if !ok || s == nil {
		return "no game in progress"
	}
	if s.Phase == PhaseGameOver {
		return "the game is over"
	}

	if a.Type == ActionTurnTimeout {
		if playerID != "" {
			return "unknown action"
		}
		return ""
	}
	if playerID != s.CurrentPlayerID() {
		return "not your turn"
	}

	switch a.Type {
	case ActionPlaceCard:
		var p placePayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		return e.checkPlace(s, p, playerID)

	case ActionDrawCard:
		if s.Phase != PhasePlaying {
			return "cannot draw right now"
		}
		if s.HasDrawn {
			return "already drew this turn"
		}
		if len(s.Deck) == 0 {
			return "the deck is empty"
		}
		return ""

	case ActionEndTurn:
		if s.Phase != PhasePlaying {
			return "resolve the current effect first"
		}
		if s.Pending != nil || s.PendingDiscard > 0 {
			return "resolve the current effect first"
		}
		if !s.HasDrawn && len(s.Deck) > 0 {
			return "draw a card before ending your turn"
		}
		return ""

	case ActionDiscardCard:
		var p cardPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseDiscarding && s.Phase != PhaseDigging {
			return "nothing to discard"
		}
		if findCard(s.hand(playerID), p.CardID) == nil {
			return "that card is not in your hand"
		}
		return ""

	case ActionSwapPickPlayer:
		var p targetPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseSwapping || s.Pending == nil || s.Pending.SwapStep != SwapPickPlayer {
			return "no swap in progress"
		}
		if p.TargetPlayerID == playerID || !s.seated(p.TargetPlayerID) {
			return "pick another player"
		}
		return ""

	case ActionSwapTakeCard:
		var p indexPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseSwapping || s.Pending == nil || s.Pending.SwapStep != SwapDecideExchange {
			return "no exchange to decide"
		}
		target := s.hand(s.Pending.SwapTargetPlayerID)
		if len(target) == 0 {
			return "they have no cards to take"
		}
		if p.Index < 0 || p.Index >= len(target) {
			return "no card at that position"
		}
		return ""

	case ActionSwapDecline:
		if s.Phase != PhaseSwapping || s.Pending == nil || s.Pending.SwapStep != SwapDecideExchange {
			return "no exchange to decide"
		}
		return ""

	case ActionSwapGiveCard:
		var p cardPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseSwapping || s.Pending == nil || s.Pending.SwapStep != SwapGiveCard {
			return "nothing to give"
		}
		if findCard(s.hand(playerID), p.CardID) == nil {
			return "that card is not in your hand"
		}
		return ""

	case ActionHatchTarget:
		var p targetPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhaseHatching || s.Pending == nil {
			return "no hatch in progress"
		}
		if p.TargetPlayerID == playerID || !s.seated(p.TargetPlayerID) {
			return "pick another player"
		}
		return ""

	case ActionPeekReturn:
		var p cardPayload
		if json.Unmarshal(a.Payload, &p) != nil {
			return "malformed action"
		}
		if s.Phase != PhasePeeking || s.Pending == nil {
			return "no peek in progress"
		}
		if findCard(s.Pending.PeekCards, p.CardID) == nil {
			return "that card was not revealed"
		}
		return ""

	case ActionCutEdge:
		var p cutPayload
		if json.Unmarshal(a.Payload, &p) != nil || p.Edge < 0 || p.Edge > 3 {
			return "malformed action"
		}
		if s.Phase != PhaseCutting || s.Pending == nil {
			return "no cut in progress"
		}
		color := s.Board.edgeCutColor(Pos{X: p.X, Y: p.Y}, p.Edge)
		if color == NoColor {
			return "there is no chain link at that edge"
		}
		if color != s.Pending.CutColor {
			return fmt.Sprintf("you must cut a %s edge", s.Pending.CutColor)
		}
		return ""

	case ActionPlayKnife:
		var p knifePayload
		if json.Unmarshal(a.Payload, &p) != nil || p.Edge < 0 || p.Edge > 3 {
			return "malformed action"
		}
		if s.Phase != PhasePlaying {
			return "cannot play a knife right now"
		}
		knife := findCard(s.hand(playerID), p.CardID)
		if knife == nil || knife.Kind != KindKnife {
			return "that is not a knife in your hand"
		}
		color := s.Board.edgeCutColor(Pos{X: p.X, Y: p.Y}, p.Edge)
		if color == NoColor {
			return "there is no chain link at that edge"
		}
		if knife.Color != Rainbow && knife.Color != color {
			return fmt.Sprintf("a %s knife cannot cut a %s edge", knife.Color, color)
		}
		return ""
	}

	return "unknown action"
}

func (e *Engine) checkPlace(s *GameState, p placePayload, playerID string) string {
	if s.Phase != PhasePlaying {
		return "cannot place a card right now"
	}
	if p.Rotation < 0 || p.Rotation > 3 {
		return "malformed action"
	}
	card := findCard(s.hand(playerID), p.CardID)
	if card == nil {
		return "that card is not in your hand"
	}
	if card.Kind != KindSegment {
		return "that card cannot be placed"
	}
	colors, ok := s.Board.connectionColors(Pos{X: p.X, Y: p.Y}, *card, p.Rotation)
	if !ok {
		return "the card does not fit there"
	}
	if s.ChainColor != NoColor {
		found := false
		for _, c := range colors {
			if c == s.ChainColor {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("you must keep extending the %s chain this turn", s.ChainColor)
		}
	}
	return ""
}

// Reduce applies an action and returns the new state, or nil when the
// action is illegal. The input state is never mutated.
func (e *Engine) Reduce(state game.State, a game.Action, playerID string) game.State {
	if msg := e.ValidateAction(state, a, playerID); msg != "" {
		return nil
	}
	s := state.(*GameState).clone()

	switch a.Type {
	case ActionPlaceCard:
		var p placePayload
		_ = json.Unmarshal(a.Payload, &p)
		e.applyPlace(s, p, playerID)

	case ActionDrawCard:
		s.Hands[playerID] = append(s.Hands[playerID], s.Deck[0])
		s.Deck = s.Deck[1:]
		s.HasDrawn = true

	case ActionEndTurn:
		if len(s.hand(playerID)) > s.HandLimit {
			s.Phase = PhaseDigging
			s.PendingDiscard = len(s.hand(playerID)) - s.HandLimit
		} else {
			e.advanceTurn(s)
		}

	case ActionDiscardCard:
		var p cardPayload
		_ = json.Unmarshal(a.Payload, &p)
		hand, removed := removeCard(s.hand(playerID), p.CardID)
		s.Hands[playerID] = hand
		s.Graveyard = append(s.Graveyard, *removed)
		if s.Phase == PhaseDigging {
			s.PendingDiscard--
			if s.PendingDiscard == 0 {
				s.Phase = PhasePlaying
				e.advanceTurn(s)
			}
		} else {
			e.completeActivation(s)
		}

	case ActionSwapPickPlayer:
		var p targetPayload
		_ = json.Unmarshal(a.Payload, &p)
		s.Pending.SwapTargetPlayerID = p.TargetPlayerID
		s.Pending.SwapStep = SwapDecideExchange

	case ActionSwapTakeCard:
		var p indexPayload
		_ = json.Unmarshal(a.Payload, &p)
		target := s.Pending.SwapTargetPlayerID
		taken := s.Hands[target][p.Index]
		s.Hands[target] = append(append([]Card{}, s.Hands[target][:p.Index]...), s.Hands[target][p.Index+1:]...)
		s.Hands[playerID] = append(s.Hands[playerID], taken)
		e.enterGiveStep(s, playerID)

	case ActionSwapDecline:
		e.enterGiveStep(s, playerID)

	case ActionSwapGiveCard:
		var p cardPayload
		_ = json.Unmarshal(a.Payload, &p)
		hand, removed := removeCard(s.hand(playerID), p.CardID)
		s.Hands[playerID] = hand
		target := s.Pending.SwapTargetPlayerID
		s.Hands[target] = append(s.Hands[target], *removed)
		e.completeActivation(s)

	case ActionHatchTarget:
		var p targetPayload
		_ = json.Unmarshal(a.Payload, &p)
		if len(s.Deck) > 0 {
			s.Hands[p.TargetPlayerID] = append(s.Hands[p.TargetPlayerID], s.Deck[0])
			s.Deck = s.Deck[1:]
		}
		e.completeActivation(s)

	case ActionPeekReturn:
		var p cardPayload
		_ = json.Unmarshal(a.Payload, &p)
		e.applyPeekReturn(s, p.CardID)
		e.completeActivation(s)

	case ActionCutEdge:
		var p cutPayload
		_ = json.Unmarshal(a.Payload, &p)
		removed, err := s.Board.cut(Pos{X: p.X, Y: p.Y}, p.Edge)
		if err != nil {
			return nil
		}
		s.Graveyard = append(s.Graveyard, removed...)
		e.completeActivation(s)

	case ActionPlayKnife:
		var p knifePayload
		_ = json.Unmarshal(a.Payload, &p)
		hand, knife := removeCard(s.hand(playerID), p.CardID)
		s.Hands[playerID] = hand
		s.Graveyard = append(s.Graveyard, *knife)
		removed, err := s.Board.cut(Pos{X: p.X, Y: p.Y}, p.Edge)
		if err != nil {
			return nil
		}
		s.Graveyard = append(s.Graveyard, removed...)
		s.CardsPlayedThisTurn++
		e.checkWin(s, playerID)

	case ActionTurnTimeout:
		e.applyTimeout(s)
	}

	return s
}

func (e *Engine) applyPlace(s *GameState, p placePayload, playerID string) {
	pos := Pos{X: p.X, Y: p.Y}
	hand, card := removeCard(s.hand(playerID), p.CardID)
	s.Hands[playerID] = hand

	colors, _ := s.Board.connectionColors(pos, *card, p.Rotation)
	s.Board[pos] = &Placed{Card: *card, Rotation: p.Rotation}
	s.LastPlacedPosition = &pos
	s.CardsPlayedThisTurn++
	if s.ChainColor == NoColor {
		s.ChainColor = colors[0]
	}

	if card.Trait == TraitNone {
		e.checkWin(s, playerID)
		return
	}

	activations := card.Multiplier
	switch card.Trait {
	case TraitDig:
		// Nothing to dig from an empty hand.
		if len(s.hand(playerID)) < activations {
			activations = len(s.hand(playerID))
		}
		if activations > 0 {
			s.Pending = &PendingProperty{Trait: TraitDig, RemainingActivations: activations, PlayerID: playerID}
			s.Phase = PhaseDiscarding
			return
		}
	case TraitSwap:
		s.Pending = &PendingProperty{Trait: TraitSwap, RemainingActivations: activations, PlayerID: playerID, SwapStep: SwapPickPlayer}
		s.Phase = PhaseSwapping
		return
	case TraitHatch:
		if len(s.Deck) > 0 {
			s.Pending = &PendingProperty{Trait: TraitHatch, RemainingActivations: activations, PlayerID: playerID}
			s.Phase = PhaseHatching
			return
		}
	case TraitPeek:
		if len(s.Deck) > 0 {
			s.Pending = &PendingProperty{Trait: TraitPeek, RemainingActivations: activations, PlayerID: playerID, PeekCards: peekTop(s)}
			s.Phase = PhasePeeking
			return
		}
	case TraitCut:
		s.Pending = &PendingProperty{Trait: TraitCut, RemainingActivations: activations, PlayerID: playerID, CutColor: colors[0]}
		s.Phase = PhaseCutting
		return
	}
	// Effect had no possible activation.
	e.checkWin(s, playerID)
}

// peekTop copies the deck top without moving cards; the conservation
// invariant never bends, even mid-peek.
func peekTop(s *GameState) []Card {
	n := peekDepth
	if n > len(s.Deck) {
		n = len(s.Deck)
	}
	return append([]Card{}, s.Deck[:n]...)
}

func (e *Engine) applyPeekReturn(s *GameState, cardID string) {
	revealed := s.Pending.PeekCards
	reordered := make([]Card, 0, len(revealed))
	for _, c := range revealed {
		if c.ID == cardID {
			reordered = append([]Card{c}, reordered...)
		} else {
			reordered = append(reordered, c)
		}
	}
	s.Deck = append(reordered, s.Deck[len(revealed):]...)
}

// enterGiveStep moves a swap activation to its give step, skipping it
// when the acting player has nothing left to give.
func (e *Engine) enterGiveStep(s *GameState, playerID string) {
	if len(s.hand(playerID)) == 0 {
		e.completeActivation(s)
		return
	}
	s.Pending.SwapStep = SwapGiveCard
}

// completeActivation consumes one activation of the pending property and
// returns to the playing phase when the frame is exhausted.
func (e *Engine) completeActivation(s *GameState) {
	pending := s.Pending
	pending.RemainingActivations--
	if pending.RemainingActivations > 0 {
		switch pending.Trait {
		case TraitSwap:
			pending.SwapStep = SwapPickPlayer
			pending.SwapTargetPlayerID = ""
		case TraitPeek:
			pending.PeekCards = peekTop(s)
		}
		return
	}
	actor := pending.PlayerID
	s.Pending = nil
	s.Phase = PhasePlaying
	e.checkWin(s, actor)
}

func (e *Engine) checkWin(s *GameState, playerID string) {
	if len(s.hand(playerID)) == 0 {
		s.WinnerID = playerID
		s.Phase = PhaseGameOver
	}
}

// advanceTurn rotates to the next player and resets per-turn state. With
// an exhausted deck, a full cycle of turns without a placement ends the
// game in favor of the smallest hand.
func (e *Engine) advanceTurn(s *GameState) {
	if s.CardsPlayedThisTurn == 0 && len(s.Deck) == 0 {
		s.PassStreak++
		if s.PassStreak >= len(s.TurnOrder) {
			e.endByExhaustion(s)
			return
		}
	} else {
		s.PassStreak = 0
	}
	s.CurrentPlayerIndex = (s.CurrentPlayerIndex + 1) % len(s.TurnOrder)
	s.HasDrawn = false
	s.CardsPlayedThisTurn = 0
	s.ChainColor = NoColor
	s.LastPlacedPosition = nil
	s.TurnCount++
}

func (e *Engine) endByExhaustion(s *GameState) {
	winner := s.TurnOrder[0]
	for _, id := range s.TurnOrder[1:] {
		if len(s.Hands[id]) < len(s.Hands[winner]) {
			winner = id
		}
	}
	s.WinnerID = winner
	s.Phase = PhaseGameOver
}

// applyTimeout force-finishes the current player's turn: pending effects
// are abandoned, the mandatory draw happens if possible, the hand limit
// is enforced from the front of the hand, and the turn passes.
func (e *Engine) applyTimeout(s *GameState) {
	cur := s.CurrentPlayerID()
	s.Pending = nil
	s.PendingDiscard = 0
	s.Phase = PhasePlaying

	if !s.HasDrawn && len(s.Deck) > 0 {
		s.Hands[cur] = append(s.Hands[cur], s.Deck[0])
		s.Deck = s.Deck[1:]
		s.HasDrawn = true
	}
	for len(s.Hands[cur]) > s.HandLimit {
		s.Graveyard = append(s.Graveyard, s.Hands[cur][0])
		s.Hands[cur] = s.Hands[cur][1:]
	}
	e.advanceTurn(s)
}

func (e *Engine) IsGameOver(state game.State) bool {
	s, ok := state.(*GameState)
	return ok && s.Phase == PhaseGameOver
}

func (e *Engine) ServerActions(state game.State) []game.Action {
	return nil
}

func (e *Engine) TimerConfig(state game.State) *game.TimerConfig {
	s, ok := state.(*GameState)
	if !ok || s.Phase == PhaseGameOver {
		return nil
	}
	return &game.TimerConfig{
		Key:      fmt.Sprintf("turn-%d", s.TurnCount),
		Duration: time.Duration(s.TurnSeconds) * time.Second,
		Action:   game.Action{Type: ActionTurnTimeout},
	}
}

func (e *Engine) PauseOnDisconnect(state game.State, playerID string) bool {
	s, ok := state.(*GameState)
	if !ok || s.Phase == PhaseGameOver {
		return false
	}
	return s.seated(playerID)
}
