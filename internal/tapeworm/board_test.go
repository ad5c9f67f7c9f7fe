package tapeworm

import "testing"

func redStraight(id string) Card {
	return segment(id, TraitNone, 0, [4]Color{Red, NoColor, Red, NoColor})
}

func redCorner(id string) Card {
	return segment(id, TraitNone, 0, [4]Color{Red, Red, NoColor, NoColor})
}

func TestConnectorAtRespectsRotation(t *testing.T) {
	p := &Placed{Card: redCorner("c"), Rotation: 2}
	// Unrotated the corner is top+right. Two clockwise quarter turns move
	// the connectors to bottom+left.
	if got := p.ConnectorAt(EdgeBottom); got != Red {
		t.Errorf("bottom connector = %q, want red", got)
	}
	if got := p.ConnectorAt(EdgeLeft); got != Red {
		t.Errorf("left connector = %q, want red", got)
	}
	if got := p.ConnectorAt(EdgeTop); got != NoColor {
		t.Errorf("top connector = %q, want blank", got)
	}
}

func TestConnectorAtSevered(t *testing.T) {
	p := &Placed{Card: redStraight("c")}
	p.Severed[EdgeTop] = true
	if got := p.ConnectorAt(EdgeTop); got != NoColor {
		t.Errorf("severed edge connector = %q, want blank", got)
	}
	if got := p.ConnectorAt(EdgeBottom); got != Red {
		t.Errorf("intact edge connector = %q, want red", got)
	}
}

func TestConnectionColors(t *testing.T) {
	board := Board{
		{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
	}

	tests := []struct {
		name     string
		pos      Pos
		card     Card
		rotation int
		wantOK   bool
	}{
		{"matching color above head", Pos{X: 0, Y: 1}, redStraight("a"), 0, true},
		{"wrong color", Pos{X: 0, Y: 1}, segment("b", TraitNone, 0, [4]Color{Blue, NoColor, Blue, NoColor}), 0, false},
		{"no adjacency", Pos{X: 5, Y: 5}, redStraight("c"), 0, false},
		{"occupied position", Pos{X: 0, Y: 0}, redStraight("d"), 0, false},
		{"rotated corner beside head", Pos{X: 1, Y: 0}, redCorner("e"), 2, true},
		{"corner facing blank edge at head", Pos{X: 1, Y: 0}, redCorner("f"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colors, ok := board.connectionColors(tt.pos, tt.card, tt.rotation)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (colors %v)", ok, tt.wantOK, colors)
			}
			if ok && len(colors) == 0 {
				t.Fatal("ok placement reported no connection colors")
			}
		})
	}
}

func TestBlankEdgesMustAgree(t *testing.T) {
	// A blank edge facing a colored edge is a mismatch, not a pass.
	board := Board{
		{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
		{X: 0, Y: 1}: {Card: redStraight("a")},
	}
	// Unrotated, the corner's bottom edge is blank while the straight's
	// top connector below it is red.
	card := redCorner("b")
	if _, ok := board.connectionColors(Pos{X: 0, Y: 2}, card, 0); ok {
		t.Fatal("blank-vs-colored shared edge was accepted")
	}
}

func TestCutRemovesUnreachableTail(t *testing.T) {
	board := Board{
		{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
		{X: 0, Y: 1}: {Card: redStraight("a")},
		{X: 0, Y: 2}: {Card: redStraight("b")},
	}
	removed, err := board.cut(Pos{X: 0, Y: 2}, EdgeBottom)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "b" {
		t.Fatalf("removed = %v, want just card b", removed)
	}
	if _, ok := board[Pos{X: 0, Y: 1}]; !ok {
		t.Fatal("card a should survive, it is still chained to the head")
	}
	if _, ok := board[Pos{X: 0, Y: 0}]; !ok {
		t.Fatal("head tiles never leave the board")
	}
}

func TestCutNeverRemovesHeads(t *testing.T) {
	board := Board{
		{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
		{X: 0, Y: 1}: {Card: redStraight("a")},
	}
	removed, err := board.cut(Pos{X: 0, Y: 1}, EdgeBottom)
	if err != nil {
		t.Fatalf("cut: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != "a" {
		t.Fatalf("removed = %v, want just card a", removed)
	}
	if len(board) != 1 {
		t.Fatalf("board has %d cards, want only the head", len(board))
	}
}

func TestEdgeCutColor(t *testing.T) {
	board := Board{
		{X: 0, Y: 0}: {Card: headCard(Red), OwnerID: "p1"},
		{X: 0, Y: 1}: {Card: redStraight("a")},
	}
	if got := board.edgeCutColor(Pos{X: 0, Y: 1}, EdgeBottom); got != Red {
		t.Errorf("link edge color = %q, want red", got)
	}
	if got := board.edgeCutColor(Pos{X: 0, Y: 1}, EdgeTop); got != NoColor {
		t.Errorf("open edge color = %q, want blank", got)
	}
	if got := board.edgeCutColor(Pos{X: 3, Y: 3}, EdgeTop); got != NoColor {
		t.Errorf("empty position edge color = %q, want blank", got)
	}
}

func TestBoardJSONRoundTrip(t *testing.T) {
	board := Board{
		{X: 0, Y: 0}:  {Card: headCard(Red), OwnerID: "p1"},
		{X: 0, Y: 1}:  {Card: redStraight("a"), Rotation: 1},
		{X: -2, Y: 3}: {Card: redCorner("b"), Severed: [4]bool{true, false, false, false}},
	}
	data, err := board.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Board
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != len(board) {
		t.Fatalf("round trip lost cells: %d != %d", len(back), len(board))
	}
	got := back[Pos{X: -2, Y: 3}]
	if got == nil || got.Card.ID != "b" || !got.Severed[EdgeTop] {
		t.Fatalf("cell at (-2,3) mangled: %+v", got)
	}
}
