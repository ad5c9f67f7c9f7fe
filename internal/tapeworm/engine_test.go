package tapeworm

import (
	"encoding/json"
	"testing"

	"github.com/fishkagame/fishka-backend/internal/game"
)

func action(t *testing.T, typ string, payload any) game.Action {
	t.Helper()
	if payload == nil {
		return game.Action{Type: typ}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return game.Action{Type: typ, Payload: raw}
}

// twoPlayerState builds a small deterministic position: red and blue heads,
// hand-picked hands, a three-card deck.
func twoPlayerState(t *testing.T) *GameState {
	t.Helper()
	s := &GameState{
		Phase: PhasePlaying,
		Board: Board{
			{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
			{X: 8, Y: 0}: {Card: headCard(Blue), OwnerID: "p2"},
		},
		Deck: []Card{
			segment("deck-1", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
			segment("deck-2", TraitNone, 0, [4]Color{Blue, NoColor, Blue, NoColor}),
			segment("deck-3", TraitNone, 0, [4]Color{Green, Green, NoColor, NoColor}),
		},
		Hands: map[string][]Card{
			"p1": {
				segment("p1-straight", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
				segment("p1-corner", TraitNone, 0, [4]Color{Red, Red, NoColor, NoColor}),
			},
			"p2": {
				segment("p2-straight", TraitNone, 0, [4]Color{Blue, NoColor, Blue, NoColor}),
			},
		},
		TurnOrder: []string{"p1", "p2"},
		Players: []StatePlayer{
			{ID: "p1", Name: "Ana", Color: Red},
			{ID: "p2", Name: "Борис", Color: Blue},
		},
		TurnSeconds: 90,
		HandLimit:   8,
	}
	s.TotalCards = s.cardCount()
	return s
}

func mustReduce(t *testing.T, e *Engine, s *GameState, a game.Action, playerID string) *GameState {
	t.Helper()
	next := e.Reduce(s, a, playerID)
	if next == nil {
		t.Fatalf("Reduce(%s by %q) rejected: %s", a.Type, playerID, e.ValidateAction(s, a, playerID))
	}
	ns := next.(*GameState)
	if got := ns.cardCount(); got != ns.TotalCards {
		t.Fatalf("after %s: %d cards accounted for, want %d", a.Type, got, ns.TotalCards)
	}
	return ns
}

func TestCreateInitialState(t *testing.T) {
	e := New()
	players := []game.PlayerInfo{
		{ID: "p1", Name: "Ana"},
		{ID: "p2", Name: "Bo"},
		{ID: "spec", Name: "Watcher", IsSpectator: true},
	}
	state, err := e.CreateInitialState(players, json.RawMessage(`{"seed":42}`))
	if err != nil {
		t.Fatalf("CreateInitialState: %v", err)
	}
	s := state.(*GameState)

	if len(s.TurnOrder) != 2 {
		t.Fatalf("turn order %v, spectators must not be seated", s.TurnOrder)
	}
	if len(s.Hands["p1"]) != defaultHandSize || len(s.Hands["p2"]) != defaultHandSize {
		t.Fatalf("hand sizes %d/%d, want %d each", len(s.Hands["p1"]), len(s.Hands["p2"]), defaultHandSize)
	}
	if len(s.Board) != 2 {
		t.Fatalf("board has %d tiles, want the two heads", len(s.Board))
	}
	if got := s.cardCount(); got != s.TotalCards {
		t.Fatalf("conservation broken at start: %d != %d", got, s.TotalCards)
	}

	// Same seed, same deal.
	again, err := e.CreateInitialState(players, json.RawMessage(`{"seed":42}`))
	if err != nil {
		t.Fatalf("CreateInitialState again: %v", err)
	}
	if a := again.(*GameState); a.Deck[0].ID != s.Deck[0].ID {
		t.Error("identical seeds produced different shuffles")
	}
}

func TestCreateInitialStateRejectsBadRosters(t *testing.T) {
	e := New()
	if _, err := e.CreateInitialState([]game.PlayerInfo{{ID: "p1"}}, nil); err == nil {
		t.Error("single player accepted")
	}
	five := make([]game.PlayerInfo, 5)
	for i := range five {
		five[i] = game.PlayerInfo{ID: string(rune('a' + i))}
	}
	if _, err := e.CreateInitialState(five, nil); err == nil {
		t.Error("five players accepted, color set caps at four")
	}
}

func TestPlaceCard(t *testing.T) {
	e := New()
	s := twoPlayerState(t)

	next := mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-straight", X: 0, Y: 1, Rotation: 0,
	}), "p1")

	if _, ok := next.Board[Pos{X: 0, Y: 1}]; !ok {
		t.Fatal("card not on the board")
	}
	if next.CardsPlayedThisTurn != 1 {
		t.Errorf("cardsPlayedThisTurn = %d, want 1", next.CardsPlayedThisTurn)
	}
	if next.ChainColor != Red {
		t.Errorf("chainColor = %q, want red", next.ChainColor)
	}
	if len(next.Hands["p1"]) != 1 {
		t.Errorf("hand size = %d, want 1", len(next.Hands["p1"]))
	}
	// The original state must be untouched.
	if len(s.Hands["p1"]) != 2 || len(s.Board) != 2 {
		t.Error("Reduce mutated its input state")
	}
}

func TestChainColorLocksTheTurn(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Hands["p1"] = append(s.Hands["p1"],
		segment("p1-blue", TraitNone, 0, [4]Color{Blue, NoColor, Blue, NoColor}))

	next := mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-straight", X: 0, Y: 1, Rotation: 0,
	}), "p1")

	// A second placement this turn must extend the red chain; connecting
	// the blue card to the blue head is now illegal.
	msg := e.ValidateAction(next, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-blue", X: 8, Y: 1, Rotation: 0,
	}), "p1")
	if msg == "" {
		t.Fatal("placement off the locked chain color was accepted")
	}
}

func TestTurnRules(t *testing.T) {
	e := New()
	s := twoPlayerState(t)

	if msg := e.ValidateAction(s, action(t, ActionDrawCard, nil), "p2"); msg == "" {
		t.Fatal("out-of-turn draw accepted")
	}
	if msg := e.ValidateAction(s, action(t, ActionEndTurn, nil), "p1"); msg == "" {
		t.Fatal("ending the turn without the mandatory draw was accepted")
	}

	s = mustReduce(t, e, s, action(t, ActionDrawCard, nil), "p1")
	if !s.HasDrawn || len(s.Hands["p1"]) != 3 {
		t.Fatalf("draw did not land: hasDrawn=%v hand=%d", s.HasDrawn, len(s.Hands["p1"]))
	}
	if msg := e.ValidateAction(s, action(t, ActionDrawCard, nil), "p1"); msg == "" {
		t.Fatal("second draw in one turn accepted")
	}

	s = mustReduce(t, e, s, action(t, ActionEndTurn, nil), "p1")
	if s.CurrentPlayerID() != "p2" {
		t.Errorf("current player = %q, want p2", s.CurrentPlayerID())
	}
	if s.HasDrawn || s.ChainColor != NoColor || s.CardsPlayedThisTurn != 0 {
		t.Error("per-turn state not reset on turn change")
	}
	if s.TurnCount != 1 {
		t.Errorf("turnCount = %d, want 1", s.TurnCount)
	}
}

func TestDigWinsByEmptyingHand(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Hands["p1"] = []Card{
		segment("p1-dig", TraitDig, 2, [4]Color{Red, Red, NoColor, NoColor}),
		segment("junk-1", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
		segment("junk-2", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
	}
	s.TotalCards = s.cardCount()

	// The dig corner connects to the head rotated twice (bottom+left).
	s = mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-dig", X: 1, Y: 0, Rotation: 2,
	}), "p1")
	if s.Phase != PhaseDiscarding || s.Pending == nil || s.Pending.RemainingActivations != 2 {
		t.Fatalf("dig did not open: phase=%s pending=%+v", s.Phase, s.Pending)
	}

	s = mustReduce(t, e, s, action(t, ActionDiscardCard, cardPayload{CardID: "junk-1"}), "p1")
	if s.Pending == nil || s.Pending.RemainingActivations != 1 {
		t.Fatalf("first discard did not consume an activation: %+v", s.Pending)
	}

	s = mustReduce(t, e, s, action(t, ActionDiscardCard, cardPayload{CardID: "junk-2"}), "p1")
	if s.Phase != PhaseGameOver || s.WinnerID != "p1" {
		t.Fatalf("emptying the hand should win: phase=%s winner=%q", s.Phase, s.WinnerID)
	}
	if len(s.Graveyard) != 2 {
		t.Errorf("graveyard has %d cards, want 2", len(s.Graveyard))
	}
}

func TestDigClampsToHandSize(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Hands["p1"] = []Card{
		segment("p1-dig", TraitDig, 2, [4]Color{Red, Red, NoColor, NoColor}),
		segment("only-one", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
	}
	s.TotalCards = s.cardCount()

	s = mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-dig", X: 1, Y: 0, Rotation: 2,
	}), "p1")
	if s.Pending == nil || s.Pending.RemainingActivations != 1 {
		t.Fatalf("dig ×2 over a one-card hand should clamp to 1: %+v", s.Pending)
	}
}

func TestSwapRoundTrip(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Hands["p1"] = []Card{
		segment("p1-swap", TraitSwap, 1, [4]Color{Red, Red, Red, NoColor}),
		segment("p1-give", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
	}
	s.TotalCards = s.cardCount()

	// The tee connects to the head rotated twice (right+bottom+left).
	s = mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-swap", X: 0, Y: 1, Rotation: 2,
	}), "p1")
	if s.Phase != PhaseSwapping || s.Pending.SwapStep != SwapPickPlayer {
		t.Fatalf("swap did not open: phase=%s pending=%+v", s.Phase, s.Pending)
	}

	s = mustReduce(t, e, s, action(t, ActionSwapPickPlayer, targetPayload{TargetPlayerID: "p2"}), "p1")
	if s.Pending.SwapStep != SwapDecideExchange {
		t.Fatalf("swap step = %s, want decideExchange", s.Pending.SwapStep)
	}

	s = mustReduce(t, e, s, action(t, ActionSwapTakeCard, indexPayload{Index: 0}), "p1")
	if len(s.Hands["p2"]) != 0 {
		t.Fatalf("target hand = %d cards, want 0 after take", len(s.Hands["p2"]))
	}
	if s.Pending.SwapStep != SwapGiveCard {
		t.Fatalf("swap step = %s, want giveCard", s.Pending.SwapStep)
	}

	s = mustReduce(t, e, s, action(t, ActionSwapGiveCard, cardPayload{CardID: "p1-give"}), "p1")
	if s.Pending != nil || s.Phase != PhasePlaying {
		t.Fatalf("swap frame should be closed: phase=%s pending=%+v", s.Phase, s.Pending)
	}
	if len(s.Hands["p2"]) != 1 || s.Hands["p2"][0].ID != "p1-give" {
		t.Fatalf("target hand after give = %+v", s.Hands["p2"])
	}
}

func TestPeekKeepsDeckIntact(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Hands["p1"] = []Card{
		segment("p1-peek", TraitPeek, 1, [4]Color{Red, Red, NoColor, NoColor}),
		segment("filler", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
	}
	s.TotalCards = s.cardCount()
	deckBefore := len(s.Deck)

	s = mustReduce(t, e, s, action(t, ActionPlaceCard, placePayload{
		CardID: "p1-peek", X: 1, Y: 0, Rotation: 2,
	}), "p1")
	if s.Phase != PhasePeeking || len(s.Pending.PeekCards) != 3 {
		t.Fatalf("peek did not reveal the top three: %+v", s.Pending)
	}
	if len(s.Deck) != deckBefore {
		t.Fatal("peek moved cards out of the deck")
	}

	s = mustReduce(t, e, s, action(t, ActionPeekReturn, cardPayload{CardID: "deck-3"}), "p1")
	if s.Deck[0].ID != "deck-3" {
		t.Fatalf("chosen card should be on top, deck starts with %q", s.Deck[0].ID)
	}
	if len(s.Deck) != deckBefore {
		t.Fatalf("deck size changed: %d != %d", len(s.Deck), deckBefore)
	}
}

func TestKnifeCut(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Board[Pos{X: 0, Y: 1}] = &Placed{Card: segment("victim", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor})}
	s.Hands["p1"] = []Card{
		{ID: "knife", Kind: KindKnife, Color: Rainbow},
		segment("keep", TraitNone, 0, [4]Color{Green, NoColor, Green, NoColor}),
	}
	s.TotalCards = s.cardCount()

	s = mustReduce(t, e, s, action(t, ActionPlayKnife, knifePayload{
		CardID: "knife", X: 0, Y: 1, Edge: EdgeBottom,
	}), "p1")

	if _, ok := s.Board[Pos{X: 0, Y: 1}]; ok {
		t.Fatal("severed card still on the board")
	}
	if len(s.Graveyard) != 2 {
		t.Fatalf("graveyard = %d cards, want knife and victim", len(s.Graveyard))
	}
}

func TestColorKnifeRefusesOtherChains(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Board[Pos{X: 0, Y: 1}] = &Placed{Card: segment("victim", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor})}
	s.Hands["p1"] = []Card{{ID: "blue-knife", Kind: KindKnife, Color: Blue}}

	msg := e.ValidateAction(s, action(t, ActionPlayKnife, knifePayload{
		CardID: "blue-knife", X: 0, Y: 1, Edge: EdgeBottom,
	}), "p1")
	if msg == "" {
		t.Fatal("a blue knife cut a red edge")
	}
}

func TestTimeoutAbandonsPendingAndAdvances(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Phase = PhaseSwapping
	s.Pending = &PendingProperty{Trait: TraitSwap, RemainingActivations: 1, PlayerID: "p1", SwapStep: SwapPickPlayer}

	s = mustReduce(t, e, s, action(t, ActionTurnTimeout, nil), "")

	if s.Pending != nil {
		t.Fatal("timeout did not abandon the pending effect")
	}
	if s.CurrentPlayerID() != "p2" {
		t.Errorf("current player = %q, want p2", s.CurrentPlayerID())
	}
	// The mandatory draw happened on the way out.
	if len(s.Hands["p1"]) != 3 {
		t.Errorf("p1 hand = %d cards, want 3 after the forced draw", len(s.Hands["p1"]))
	}
}

func TestTimeoutRejectedFromClients(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	if msg := e.ValidateAction(s, action(t, ActionTurnTimeout, nil), "p1"); msg == "" {
		t.Fatal("client-originated turnTimeout accepted")
	}
}

func TestExhaustionEndsGame(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Deck = nil
	s.TotalCards = s.cardCount()

	// With an empty deck the draw requirement is waived; both players pass.
	s = mustReduce(t, e, s, action(t, ActionEndTurn, nil), "p1")
	if s.Phase == PhaseGameOver {
		t.Fatal("game ended after a single pass")
	}
	s = mustReduce(t, e, s, action(t, ActionEndTurn, nil), "p2")
	if s.Phase != PhaseGameOver {
		t.Fatalf("full pass cycle with an empty deck should end the game, phase=%s", s.Phase)
	}
	// p2 holds one card, p1 holds two.
	if s.WinnerID != "p2" {
		t.Errorf("winner = %q, want the smaller hand (p2)", s.WinnerID)
	}
}

func TestHandLimitEnforcedAtEndTurn(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.HandLimit = 2
	s.HasDrawn = true
	s.Hands["p1"] = []Card{
		segment("a", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
		segment("b", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
		segment("c", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
		segment("d", TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor}),
	}
	s.TotalCards = s.cardCount()

	s = mustReduce(t, e, s, action(t, ActionEndTurn, nil), "p1")
	if s.Phase != PhaseDigging || s.PendingDiscard != 2 {
		t.Fatalf("over-limit hand should force discards: phase=%s pending=%d", s.Phase, s.PendingDiscard)
	}

	s = mustReduce(t, e, s, action(t, ActionDiscardCard, cardPayload{CardID: "a"}), "p1")
	s = mustReduce(t, e, s, action(t, ActionDiscardCard, cardPayload{CardID: "b"}), "p1")
	if s.Phase != PhasePlaying || s.CurrentPlayerID() != "p2" {
		t.Fatalf("turn should pass once the hand fits: phase=%s current=%s", s.Phase, s.CurrentPlayerID())
	}
}

func TestViewHidesOtherHands(t *testing.T) {
	e := New()
	s := twoPlayerState(t)

	v := e.PlayerView(s, "p1").(*View)
	if len(v.Hand) != 2 {
		t.Fatalf("own hand = %d cards, want 2", len(v.Hand))
	}
	if v.HandCounts["p2"] != 1 {
		t.Errorf("handCounts[p2] = %d, want 1", v.HandCounts["p2"])
	}
	if v.DeckCount != 3 {
		t.Errorf("deckCount = %d, want 3", v.DeckCount)
	}

	spec := e.SpectatorView(s).(*View)
	if len(spec.Hand) != 0 {
		t.Error("spectator view leaked a hand")
	}
}

func TestPeekCardsHiddenFromOthers(t *testing.T) {
	e := New()
	s := twoPlayerState(t)
	s.Phase = PhasePeeking
	s.Pending = &PendingProperty{
		Trait: TraitPeek, RemainingActivations: 1, PlayerID: "p1",
		PeekCards: peekTop(s),
	}

	mine := e.PlayerView(s, "p1").(*View)
	if mine.Pending == nil || len(mine.Pending.PeekCards) == 0 {
		t.Fatal("peeking player cannot see the revealed cards")
	}
	theirs := e.PlayerView(s, "p2").(*View)
	if theirs.Pending == nil {
		t.Fatal("other players should still see that a peek is in progress")
	}
	if len(theirs.Pending.PeekCards) != 0 {
		t.Fatal("revealed cards leaked to another player")
	}
}
