package room

import (
	"strings"
	"testing"

	"github.com/fishkagame/fishka-backend/internal/protocol"
)

func TestCreateAssignsCode(t *testing.T) {
	r := testRegistry(t)
	s, err := r.Create(&protocol.RoomSettings{GameID: "counter"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	code := s.Code()
	if len(code) != 4 {
		t.Fatalf("code %q has length %d, want 4", code, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(protocol.CodeAlphabet, c) {
			t.Fatalf("code %q contains %q, outside the room alphabet", code, c)
		}
	}
	if r.Lookup(code) != s {
		t.Fatal("lookup by code did not return the new room")
	}
	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1", r.Count())
	}
}

func TestCreateDefaultsSettings(t *testing.T) {
	r := testRegistry(t)
	// counterGame is the only registered engine, so the tapeworm default
	// must be overridden for create to succeed.
	_, err := r.Create(&protocol.RoomSettings{GameID: "tapeworm"})
	re, ok := err.(*RoomError)
	if !ok || re.Code != protocol.ErrGameNotFound {
		t.Fatalf("create with unregistered game = %v, want GAME_NOT_FOUND", err)
	}

	s, err := r.Create(&protocol.RoomSettings{GameID: "counter"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sink := join(t, s, "p1", "Ana", true)
	info := sink.lastOf(protocol.EventRoomCreated).(*protocol.RoomCreated).Room
	if info.Settings.MaxPlayers != 8 {
		t.Fatalf("maxPlayers = %d, want the default 8", info.Settings.MaxPlayers)
	}
	if info.Settings.GameID != "counter" {
		t.Fatalf("gameId = %q, want counter", info.Settings.GameID)
	}
}

func TestCodesAreUnique(t *testing.T) {
	r := testRegistry(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		s, err := r.Create(&protocol.RoomSettings{GameID: "counter"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[s.Code()] {
			t.Fatalf("code %q issued twice", s.Code())
		}
		seen[s.Code()] = true
	}
}

func TestLookupUnknownCode(t *testing.T) {
	r := testRegistry(t)
	if r.Lookup("ZZZZ") != nil {
		t.Fatal("lookup of an unknown code returned a room")
	}
}

func TestJoinableRoomsFiltering(t *testing.T) {
	r := testRegistry(t)

	open, _ := r.Create(&protocol.RoomSettings{GameID: "counter", MaxPlayers: 4})
	join(t, open, "a1", "Ana", true)

	private, _ := r.Create(&protocol.RoomSettings{GameID: "counter", MaxPlayers: 4, IsPrivate: true})
	join(t, private, "b1", "Bo", true)

	full, _ := r.Create(&protocol.RoomSettings{GameID: "counter", MaxPlayers: 2})
	join(t, full, "c1", "Cy", true)
	join(t, full, "c2", "Dee", false)

	playing, _ := r.Create(&protocol.RoomSettings{GameID: "counter", MaxPlayers: 4})
	join(t, playing, "d1", "Eve", true)
	join(t, playing, "d2", "Fin", false)
	playing.Handle("d1", &protocol.StartGame{})
	barrier(playing)

	list := r.JoinableRooms()
	if len(list) != 1 {
		t.Fatalf("joinable rooms = %d, want only the open lobby", len(list))
	}
	if list[0].Code != open.Code() {
		t.Fatalf("joinable room code = %q, want %q", list[0].Code, open.Code())
	}
}
