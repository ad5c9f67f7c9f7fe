package tapeworm

import (
	"encoding/json"
	"fmt"
)

// Pos is an integer board coordinate. Y grows upward.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// edgeOffsets maps an edge index to the neighbor it faces.
var edgeOffsets = [4]Pos{
	EdgeTop:    {X: 0, Y: 1},
	EdgeRight:  {X: 1, Y: 0},
	EdgeBottom: {X: 0, Y: -1},
	EdgeLeft:   {X: -1, Y: 0},
}

func (p Pos) neighbor(edge int) Pos {
	off := edgeOffsets[edge]
	return Pos{X: p.X + off.X, Y: p.Y + off.Y}
}

// Placed is a card on the board with its rotation (clockwise quarter
// turns) and any connectors severed by cuts.
type Placed struct {
	Card     Card    `json:"card"`
	Rotation int     `json:"rotation"`
	Severed  [4]bool `json:"severed,omitempty"`
	OwnerID  string  `json:"ownerId,omitempty"`
}

// ConnectorAt returns the effective connector color at a board edge,
// accounting for rotation and severed edges.
func (p *Placed) ConnectorAt(edge int) Color {
	if p.Severed[edge] {
		return NoColor
	}
	return p.Card.Connectors[((edge-p.Rotation)%4+4)%4]
}

// Board is the sparse card layout.
type Board map[Pos]*Placed

type boardCell struct {
	Pos    Pos    `json:"pos"`
	Placed Placed `json:"placed"`
}

// MarshalJSON serializes the board as a cell list; struct-keyed maps
// cannot be JSON object keys.
func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]boardCell, 0, len(b))
	for pos, placed := range b {
		cells = append(cells, boardCell{Pos: pos, Placed: *placed})
	}
	return json.Marshal(cells)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []boardCell
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	out := make(Board, len(cells))
	for _, cell := range cells {
		placed := cell.Placed
		out[cell.Pos] = &placed
	}
	*b = out
	return nil
}

func (b Board) clone() Board {
	out := make(Board, len(b))
	for pos, placed := range b {
		cp := *placed
		out[pos] = &cp
	}
	return out
}

// connectionColors returns, per edge, the color through which a card at
// pos with the given rotation would connect to an occupied neighbor.
// ok is false when any shared edge disagrees with its neighbor, or when
// the card would touch no chain at all.
func (b Board) connectionColors(pos Pos, card Card, rotation int) (colors []Color, ok bool) {
	if _, occupied := b[pos]; occupied {
		return nil, false
	}
	trial := &Placed{Card: card, Rotation: rotation}
	touched := false
	for edge := 0; edge < 4; edge++ {
		nb, occupied := b[pos.neighbor(edge)]
		if !occupied {
			continue
		}
		touched = true
		mine := trial.ConnectorAt(edge)
		theirs := nb.ConnectorAt(oppositeEdge(edge))
		if mine != theirs {
			return nil, false
		}
		if mine != NoColor {
			colors = append(colors, mine)
		}
	}
	if !touched || len(colors) == 0 {
		return nil, false
	}
	return colors, true
}

// connected reports whether the cards at a and b are chain-linked: they
// are adjacent and their facing connectors carry the same color.
func (b Board) connected(a, bp Pos) bool {
	pa, ok := b[a]
	if !ok {
		return false
	}
	for edge := 0; edge < 4; edge++ {
		if a.neighbor(edge) != bp {
			continue
		}
		pb, ok := b[bp]
		if !ok {
			return false
		}
		mine := pa.ConnectorAt(edge)
		return mine != NoColor && mine == pb.ConnectorAt(oppositeEdge(edge))
	}
	return false
}

// reachableFromHeads walks the chain graph from every head tile.
func (b Board) reachableFromHeads() map[Pos]bool {
	seen := make(map[Pos]bool)
	var queue []Pos
	for pos, placed := range b {
		if placed.Card.Kind == KindHead {
			seen[pos] = true
			queue = append(queue, pos)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for edge := 0; edge < 4; edge++ {
			next := cur.neighbor(edge)
			if seen[next] {
				continue
			}
			if b.connected(cur, next) {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// cut severs the connector at the given edge of pos, then removes every
// card no longer chain-connected to any head tile. The severed-away cards
// are returned; head tiles never leave the board.
func (b Board) cut(pos Pos, edge int) ([]Card, error) {
	placed, ok := b[pos]
	if !ok {
		return nil, fmt.Errorf("no card at (%d,%d)", pos.X, pos.Y)
	}
	if placed.ConnectorAt(edge) == NoColor {
		return nil, fmt.Errorf("edge %d at (%d,%d) has no connector", edge, pos.X, pos.Y)
	}
	placed.Severed[edge] = true

	alive := b.reachableFromHeads()
	var removed []Card
	for p, pl := range b {
		if alive[p] || pl.Card.Kind == KindHead {
			continue
		}
		removed = append(removed, pl.Card)
		delete(b, p)
	}
	return removed, nil
}

// edgeCutColor returns the color of an actual chain link at pos/edge, or
// NoColor when that edge is not linked to a neighbor.
func (b Board) edgeCutColor(pos Pos, edge int) Color {
	placed, ok := b[pos]
	if !ok {
		return NoColor
	}
	c := placed.ConnectorAt(edge)
	if c == NoColor {
		return NoColor
	}
	nb, ok := b[pos.neighbor(edge)]
	if !ok || nb.ConnectorAt(oppositeEdge(edge)) != c {
		return NoColor
	}
	return c
}
