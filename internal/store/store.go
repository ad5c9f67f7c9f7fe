// Package store is the persistence boundary: a keyed byte store with
// per-namespace TTL policies. The core never depends on a concrete
// technology, only on this contract.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or its TTL has lapsed.
var ErrNotFound = errors.New("store: not found")

// Namespace separates the three logical key spaces, each with its own
// eviction policy.
type Namespace string

const (
	NamespaceRoom    Namespace = "room"
	NamespaceGame    Namespace = "game"
	NamespaceSession Namespace = "session"
)

// TTLConfig is the per-namespace idle-eviction policy.
type TTLConfig struct {
	Room    time.Duration
	Game    time.Duration
	Session time.Duration
}

func (c TTLConfig) For(ns Namespace) time.Duration {
	switch ns {
	case NamespaceRoom:
		return c.Room
	case NamespaceGame:
		return c.Game
	case NamespaceSession:
		return c.Session
	}
	return 0
}

// Store is the get/set/delete contract. Set applies the namespace TTL;
// Refresh re-arms it without rewriting the value.
type Store interface {
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)
	Set(ctx context.Context, ns Namespace, key string, value []byte) error
	Delete(ctx context.Context, ns Namespace, key string) error
	Refresh(ctx context.Context, ns Namespace, key string) error
}
