// Package session binds transport connections to stable player
// identities. A session token is an HMAC-signed JWT carrying the player
// id; the matching store record carries mutable state (current room) and
// is the server-side expiry authority.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fishkagame/fishka-backend/internal/store"
)

// ErrExpired means the token (or its server-side record) is no longer
// valid; the client must connect as a new identity.
var ErrExpired = errors.New("session: expired")

// Record is the server-side session state for one player identity.
type Record struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	AvatarSeed int    `json:"avatarSeed"`
	RoomCode   string `json:"roomCode,omitempty"`
}

type claims struct {
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	store  store.Store
}

func NewManager(secret []byte, ttl time.Duration, st store.Store) *Manager {
	return &Manager{secret: secret, ttl: ttl, store: st}
}

// Issue creates a token for a fresh identity and persists its record.
func (m *Manager) Issue(ctx context.Context, rec Record) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		PlayerID: rec.PlayerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	if err := m.Save(ctx, rec); err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the token signature and expiry, then loads the live
// record; a token whose record has been evicted is expired regardless of
// what the JWT claims.
func (m *Manager) Verify(ctx context.Context, tokenString string) (Record, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || c.PlayerID == "" {
		return Record{}, ErrExpired
	}

	data, err := m.store.Get(ctx, store.NamespaceSession, c.PlayerID)
	if errors.Is(err, store.ErrNotFound) {
		return Record{}, ErrExpired
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, ErrExpired
	}
	return rec, nil
}

// Save persists the record under the session namespace TTL.
func (m *Manager) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := m.store.Set(ctx, store.NamespaceSession, rec.PlayerID, data); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

// BindRoom updates which room the identity currently occupies.
func (m *Manager) BindRoom(ctx context.Context, rec Record, roomCode string) error {
	rec.RoomCode = roomCode
	return m.Save(ctx, rec)
}

// Touch re-arms the record TTL; called on heartbeats.
func (m *Manager) Touch(ctx context.Context, playerID string) error {
	return m.store.Refresh(ctx, store.NamespaceSession, playerID)
}

// Drop removes the record, used for orphan cleanup.
func (m *Manager) Drop(ctx context.Context, playerID string) error {
	return m.store.Delete(ctx, store.NamespaceSession, playerID)
}
