package tapeworm

import "github.com/fishkagame/fishka-backend/internal/game"

// View is the projection sent to one player. Other hands appear only as
// counts and the deck only as its size; peeked cards are visible solely
// to the player resolving the peek.
type View struct {
	Phase               Phase            `json:"phase"`
	Board               Board            `json:"board"`
	DeckCount           int              `json:"deckCount"`
	GraveyardCount      int              `json:"graveyardCount"`
	Hand                []Card           `json:"hand,omitempty"`
	HandCounts          map[string]int   `json:"handCounts"`
	TurnOrder           []string         `json:"turnOrder"`
	CurrentPlayerIndex  int              `json:"currentPlayerIndex"`
	CurrentPlayerID     string           `json:"currentPlayerId"`
	HasDrawn            bool             `json:"hasDrawn"`
	ChainColor          Color            `json:"chainColor,omitempty"`
	LastPlacedPosition  *Pos             `json:"lastPlacedPosition,omitempty"`
	CardsPlayedThisTurn int              `json:"cardsPlayedThisTurn"`
	Players             []StatePlayer    `json:"players"`
	WinnerID            string           `json:"winnerId,omitempty"`
	PendingDiscard      int              `json:"pendingDiscard,omitempty"`
	Pending             *PendingProperty `json:"pendingProperty,omitempty"`
}

func (e *Engine) PlayerView(state game.State, playerID string) any {
	s, ok := state.(*GameState)
	if !ok {
		return nil
	}
	counts := make(map[string]int, len(s.Hands))
	for id, hand := range s.Hands {
		counts[id] = len(hand)
	}
	v := &View{
		Phase:               s.Phase,
		Board:               s.Board,
		DeckCount:           len(s.Deck),
		GraveyardCount:      len(s.Graveyard),
		Hand:                append([]Card{}, s.hand(playerID)...),
		HandCounts:          counts,
		TurnOrder:           s.TurnOrder,
		CurrentPlayerIndex:  s.CurrentPlayerIndex,
		CurrentPlayerID:     s.CurrentPlayerID(),
		HasDrawn:            s.HasDrawn,
		ChainColor:          s.ChainColor,
		LastPlacedPosition:  s.LastPlacedPosition,
		CardsPlayedThisTurn: s.CardsPlayedThisTurn,
		Players:             s.Players,
		WinnerID:            s.WinnerID,
		PendingDiscard:      s.PendingDiscard,
	}
	if s.Pending != nil {
		pending := *s.Pending
		if pending.PlayerID != playerID {
			pending.PeekCards = nil
		}
		v.Pending = &pending
	}
	return v
}

func (e *Engine) SpectatorView(state game.State) any {
	return e.PlayerView(state, "")
}
