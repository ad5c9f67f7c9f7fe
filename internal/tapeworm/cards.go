package tapeworm

import (
	"fmt"
	"math/rand"
)

// Color is a chain color. Rainbow appears only on wildcard knives.
type Color string

const (
	NoColor Color = ""
	Red     Color = "red"
	Blue    Color = "blue"
	Green   Color = "green"
	Purple  Color = "purple"
	Rainbow Color = "rainbow"
)

// chainColors doubles as the player-color assignment order, which caps a
// game at four active players.
var chainColors = []Color{Red, Blue, Green, Purple}

// Trait is a card property triggered when the card is placed.
type Trait string

const (
	TraitNone  Trait = ""
	TraitDig   Trait = "dig"
	TraitSwap  Trait = "swap"
	TraitHatch Trait = "hatch"
	TraitPeek  Trait = "peek"
	TraitCut   Trait = "cut"
)

// Kind separates placeable segments, player head tiles and knives.
type Kind string

const (
	KindSegment Kind = "segment"
	KindHead    Kind = "head"
	KindKnife   Kind = "knife"
)

// Board edge indices, clockwise from the top.
const (
	EdgeTop = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func oppositeEdge(e int) int { return (e + 2) % 4 }

// Card is a single game card. Connectors are indexed top, right, bottom,
// left in the card's unrotated orientation; NoColor marks a blank edge.
// Knife cards carry Color instead of connectors.
type Card struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Connectors [4]Color `json:"connectors,omitempty"`
	Color      Color    `json:"color,omitempty"`
	Trait      Trait    `json:"trait,omitempty"`
	Multiplier int      `json:"multiplier,omitempty"`
}

func segment(id string, trait Trait, mult int, connectors [4]Color) Card {
	return Card{ID: id, Kind: KindSegment, Connectors: connectors, Trait: trait, Multiplier: mult}
}

// buildDeck returns the fixed card set for a game. The composition is
// deterministic; only the shuffle order varies per game.
func buildDeck() []Card {
	var deck []Card
	for i, c := range chainColors {
		straight := [4]Color{c, NoColor, c, NoColor}
		corner := [4]Color{c, c, NoColor, NoColor}
		tee := [4]Color{c, c, c, NoColor}
		cross := [4]Color{c, c, c, c}

		for n := 1; n <= 3; n++ {
			deck = append(deck, segment(fmt.Sprintf("%s-straight-%d", c, n), TraitNone, 0, straight))
		}
		for n := 1; n <= 3; n++ {
			deck = append(deck, segment(fmt.Sprintf("%s-corner-%d", c, n), TraitNone, 0, corner))
		}
		for n := 1; n <= 2; n++ {
			deck = append(deck, segment(fmt.Sprintf("%s-tee-%d", c, n), TraitNone, 0, tee))
		}
		deck = append(deck, segment(fmt.Sprintf("%s-cross-1", c), TraitNone, 0, cross))

		// Property cards. The first two colors carry the doubled dig and
		// swap variants.
		digMult, swapMult := 1, 1
		if i < 2 {
			digMult, swapMult = 2, 2
		}
		deck = append(deck,
			segment(fmt.Sprintf("%s-dig", c), TraitDig, digMult, corner),
			segment(fmt.Sprintf("%s-swap", c), TraitSwap, swapMult, tee),
			segment(fmt.Sprintf("%s-hatch", c), TraitHatch, 1, straight),
			segment(fmt.Sprintf("%s-peek", c), TraitPeek, 1, corner),
			segment(fmt.Sprintf("%s-cut", c), TraitCut, 1, straight),
			Card{ID: fmt.Sprintf("knife-%s", c), Kind: KindKnife, Color: c},
		)
	}
	deck = append(deck,
		Card{ID: "knife-rainbow-1", Kind: KindKnife, Color: Rainbow},
		Card{ID: "knife-rainbow-2", Kind: KindKnife, Color: Rainbow},
	)
	return deck
}

func shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

func headCard(c Color) Card {
	return Card{
		ID:         fmt.Sprintf("head-%s", c),
		Kind:       KindHead,
		Connectors: [4]Color{c, c, c, c},
	}
}

// headPositions spaces the player heads far enough apart that chains have
// room to grow before meeting.
var headPositions = []Pos{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 0, Y: 8}, {X: 8, Y: 8}}

func removeCard(hand []Card, cardID string) ([]Card, *Card) {
	for i, c := range hand {
		if c.ID == cardID {
			removed := c
			out := append(append([]Card{}, hand[:i]...), hand[i+1:]...)
			return out, &removed
		}
	}
	return hand, nil
}

func findCard(hand []Card, cardID string) *Card {
	for i := range hand {
		if hand[i].ID == cardID {
			return &hand[i]
		}
	}
	return nil
}
