package tapeworm

// Phase is the engine's turn/sub-protocol state.
type Phase string

const (
	PhasePlaying    Phase = "playing"
	PhaseDiscarding Phase = "discarding"
	PhaseDigging    Phase = "digging"
	PhaseSwapping   Phase = "swapping"
	PhaseHatching   Phase = "hatching"
	PhasePeeking    Phase = "peeking"
	PhaseCutting    Phase = "cutting"
	PhaseGameOver   Phase = "gameOver"
)

// SwapStep tracks progress through the three-step swap sub-protocol.
type SwapStep string

const (
	SwapPickPlayer     SwapStep = "pickPlayer"
	SwapDecideExchange SwapStep = "decideExchange"
	SwapGiveCard       SwapStep = "giveCard"
)

// PendingProperty is the single in-progress card-power effect. Only one
// frame may be active at a time; it is cleared when RemainingActivations
// reaches zero.
type PendingProperty struct {
	Trait                Trait    `json:"trait"`
	RemainingActivations int      `json:"remainingActivations"`
	PlayerID             string   `json:"playerId"`
	SwapStep             SwapStep `json:"swapStep,omitempty"`
	SwapTargetPlayerID   string   `json:"swapTargetPlayerId,omitempty"`
	CutColor             Color    `json:"cutColor,omitempty"`
	PeekCards            []Card   `json:"peekCards,omitempty"`
}

// StatePlayer is the engine's record of one seated player.
type StatePlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// GameState is the authoritative Tapeworm state. Cards only ever move
// between Deck, Hands, Board and Graveyard; the four together hold
// TotalCards for the whole game.
type GameState struct {
	Phase               Phase             `json:"phase"`
	Board               Board             `json:"board"`
	Deck                []Card            `json:"deck"`
	Hands               map[string][]Card `json:"hands"`
	Graveyard           []Card            `json:"graveyard"`
	TurnOrder           []string          `json:"turnOrder"`
	CurrentPlayerIndex  int               `json:"currentPlayerIndex"`
	HasDrawn            bool              `json:"hasDrawn"`
	ChainColor          Color             `json:"chainColor,omitempty"`
	LastPlacedPosition  *Pos              `json:"lastPlacedPosition,omitempty"`
	CardsPlayedThisTurn int               `json:"cardsPlayedThisTurn"`
	Players             []StatePlayer     `json:"players"`
	WinnerID            string            `json:"winnerId,omitempty"`
	PendingDiscard      int               `json:"pendingDiscard,omitempty"`
	Pending             *PendingProperty  `json:"pendingProperty,omitempty"`
	TurnCount           int               `json:"turnCount"`
	PassStreak          int               `json:"passStreak"`
	TotalCards          int               `json:"totalCards"`
	TurnSeconds         int               `json:"turnSeconds"`
	HandLimit           int               `json:"handLimit"`
}

// CurrentPlayerID returns turnOrder[currentPlayerIndex].
func (s *GameState) CurrentPlayerID() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentPlayerIndex]
}

func (s *GameState) hand(playerID string) []Card {
	return s.Hands[playerID]
}

func (s *GameState) seated(playerID string) bool {
	for _, id := range s.TurnOrder {
		if id == playerID {
			return true
		}
	}
	return false
}

// cardCount is the conservation check: every card is in exactly one of
// deck, a hand, the board (heads excluded, they never enter the deck) or
// the graveyard.
func (s *GameState) cardCount() int {
	n := len(s.Deck) + len(s.Graveyard)
	for _, hand := range s.Hands {
		n += len(hand)
	}
	for _, placed := range s.Board {
		if placed.Card.Kind != KindHead {
			n++
		}
	}
	return n
}

// clone deep-copies the state so Reduce can stay all-or-nothing.
func (s *GameState) clone() *GameState {
	out := *s
	out.Board = s.Board.clone()
	out.Deck = append([]Card{}, s.Deck...)
	out.Graveyard = append([]Card{}, s.Graveyard...)
	out.TurnOrder = append([]string{}, s.TurnOrder...)
	out.Players = append([]StatePlayer{}, s.Players...)
	out.Hands = make(map[string][]Card, len(s.Hands))
	for id, hand := range s.Hands {
		out.Hands[id] = append([]Card{}, hand...)
	}
	if s.LastPlacedPosition != nil {
		pos := *s.LastPlacedPosition
		out.LastPlacedPosition = &pos
	}
	if s.Pending != nil {
		pending := *s.Pending
		pending.PeekCards = append([]Card{}, s.Pending.PeekCards...)
		out.Pending = &pending
	}
	return &out
}
