package tapeworm

// Action type strings accepted by the engine. turnTimeout is
// server-originated only; clients sending it are rejected.
const (
	ActionPlaceCard      = "placeCard"
	ActionDrawCard       = "drawCard"
	ActionEndTurn        = "endTurn"
	ActionDiscardCard    = "discardCard"
	ActionSwapPickPlayer = "swapPickPlayer"
	ActionSwapTakeCard   = "swapTakeCard"
	ActionSwapDecline    = "swapDecline"
	ActionSwapGiveCard   = "swapGiveCard"
	ActionHatchTarget    = "hatchTarget"
	ActionPeekReturn     = "peekReturn"
	ActionCutEdge        = "cutEdge"
	ActionPlayKnife      = "playKnifeAndCut"
	ActionTurnTimeout    = "turnTimeout"
)

type placePayload struct {
	CardID   string `json:"cardId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Rotation int    `json:"rotation"`
}

type cardPayload struct {
	CardID string `json:"cardId"`
}

type targetPayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type cutPayload struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Edge int `json:"edge"`
}

type knifePayload struct {
	CardID string `json:"cardId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Edge   int    `json:"edge"`
}
