package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testTTLs() TTLConfig {
	return TTLConfig{
		Room:    time.Hour,
		Game:    time.Hour,
		Session: 10 * time.Minute,
	}
}

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testTTLs())

	if _, err := m.Get(ctx, NamespaceRoom, "ABCD"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrNotFound", err)
	}

	if err := m.Set(ctx, NamespaceRoom, "ABCD", []byte(`{"code":"ABCD"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, NamespaceRoom, "ABCD")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"code":"ABCD"}` {
		t.Fatalf("Get = %q", got)
	}

	if err := m.Delete(ctx, NamespaceRoom, "ABCD"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, NamespaceRoom, "ABCD"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryNamespacesAreDisjoint(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testTTLs())

	if err := m.Set(ctx, NamespaceRoom, "ABCD", []byte("room")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, NamespaceGame, "ABCD", []byte("game")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	room, _ := m.Get(ctx, NamespaceRoom, "ABCD")
	gm, _ := m.Get(ctx, NamespaceGame, "ABCD")
	if string(room) != "room" || string(gm) != "game" {
		t.Fatalf("namespaces collided: room=%q game=%q", room, gm)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testTTLs())
	clock := time.UnixMilli(0)
	m.now = func() time.Time { return clock }

	if err := m.Set(ctx, NamespaceSession, "p1", []byte("rec")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clock = clock.Add(9 * time.Minute)
	if _, err := m.Get(ctx, NamespaceSession, "p1"); err != nil {
		t.Fatalf("entry expired early: %v", err)
	}

	// A Refresh inside the window re-arms the TTL from now.
	if err := m.Refresh(ctx, NamespaceSession, "p1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	clock = clock.Add(9 * time.Minute)
	if _, err := m.Get(ctx, NamespaceSession, "p1"); err != nil {
		t.Fatalf("refreshed entry expired early: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := m.Get(ctx, NamespaceSession, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get past TTL = %v, want ErrNotFound", err)
	}
	if err := m.Refresh(ctx, NamespaceSession, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Refresh past TTL = %v, want ErrNotFound", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testTTLs())

	value := []byte("original")
	if err := m.Set(ctx, NamespaceRoom, "k", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, err := m.Get(ctx, NamespaceRoom, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value aliased the caller's slice: %q", got)
	}
	got[0] = 'Y'
	again, _ := m.Get(ctx, NamespaceRoom, "k")
	if string(again) != "original" {
		t.Fatalf("returned value aliased the stored slice: %q", again)
	}
}
