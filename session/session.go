// Package session manages opaque session tokens: (session_id, display_name,
// room_code) triples that survive socket churn and are the key to
// reconnect. There is no password or credential of any kind —
// identity is bound only to a display name, per the Non-goal against
// cryptographic authentication.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
)

const tokenBytes = 32

// ErrAlreadyBound is returned by Bind if sessionID is already bound to a
// different (name, room) pair: a session_id binds to at most one
// (name, room) pair for its lifetime.
var ErrAlreadyBound = errors.New("session: already bound to a different name/room")

// Record is one session: an opaque token bound to a display name and the
// room it was created in.
type Record struct {
	ID       string
	Name     string
	RoomCode string
}

// Manager is the in-memory session table, adapted from the reference server's
// auth.Manager but with every password/credential field removed — there is
// nothing to hash or compare, only a token to mint and look up.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Record
}

// NewManager returns an empty session table.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]Record)}
}

// Create mints a fresh opaque token bound to (name, roomCode) and records
// it.
func (m *Manager) Create(name, roomCode string) Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := Record{ID: mustToken(), Name: name, RoomCode: roomCode}
	m.sessions[rec.ID] = rec
	return rec
}

// Bind associates an existing sessionID with (name, roomCode). A session
// that already names a different pair is rejected.
func (m *Manager) Bind(sessionID, name, roomCode string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[sessionID]; ok {
		if existing.Name != name || existing.RoomCode != roomCode {
			return Record{}, ErrAlreadyBound
		}
		return existing, nil
	}
	rec := Record{ID: sessionID, Name: name, RoomCode: roomCode}
	m.sessions[sessionID] = rec
	return rec, nil
}

// Lookup returns the session record for id, if any.
func (m *Manager) Lookup(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	return rec, ok
}

// Delete removes a session, e.g. when its room is torn down.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// DeleteByRoom removes every session bound to roomCode, used when a room is
// garbage-collected.
func (m *Manager) DeleteByRoom(roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.sessions {
		if rec.RoomCode == roomCode {
			delete(m.sessions, id)
		}
	}
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
