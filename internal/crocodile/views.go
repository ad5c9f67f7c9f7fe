package crocodile

import (
	"strings"

	"github.com/fishkagame/fishka-backend/internal/game"
)

// View is the projection sent to one player. Guessers see the word
// masked while drawing is live; the drawer (and everyone during reveal)
// sees it plain.
type View struct {
	Phase         Phase          `json:"phase"`
	Round         int            `json:"round"`
	MaxRounds     int            `json:"maxRounds"`
	TurnOrder     []string       `json:"turnOrder"`
	DrawerID      string         `json:"drawerId"`
	Word          string         `json:"word,omitempty"`
	MaskedWord    string         `json:"maskedWord,omitempty"`
	Choices       []string       `json:"choices,omitempty"`
	Scores        map[string]int `json:"scores"`
	Correct       []GuessRecord  `json:"correct"`
	Players       []StatePlayer  `json:"players"`
	PhaseDeadline int64          `json:"phaseDeadline"`
	WinnerID      string         `json:"winnerId,omitempty"`
}

// maskWord hides letters but keeps word shape (spaces survive).
func maskWord(word string) string {
	if word == "" {
		return ""
	}
	parts := make([]string, 0, len(word))
	for _, r := range word {
		if r == ' ' {
			parts = append(parts, " ")
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

func (e *Engine) PlayerView(state game.State, playerID string) any {
	s, ok := state.(*GameState)
	if !ok {
		return nil
	}
	v := &View{
		Phase:         s.Phase,
		Round:         s.Round,
		MaxRounds:     s.MaxRounds,
		TurnOrder:     s.TurnOrder,
		DrawerID:      s.DrawerID(),
		Scores:        s.Scores,
		Correct:       s.Correct,
		Players:       s.Players,
		PhaseDeadline: s.PhaseDeadline,
		WinnerID:      s.WinnerID,
	}
	drawerSide := playerID == s.DrawerID()
	if drawerSide && s.Phase == PhaseChoosing {
		v.Choices = s.Choices
	}
	// A guesser who already has the word sees it plain too.
	if drawerSide || s.Phase == PhaseReveal || s.Phase == PhaseGameOver || s.hasGuessed(playerID) {
		v.Word = s.Word
	} else {
		v.MaskedWord = maskWord(s.Word)
	}
	return v
}

func (e *Engine) SpectatorView(state game.State) any {
	return e.PlayerView(state, "")
}
