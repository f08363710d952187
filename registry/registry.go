// Package registry is the server-level registry: rooms ↔ sessions ↔ live
// sockets. It accepts top-level
// create/join/reconnect requests and dispatches everything else straight
// into the matching room's lane.
package registry

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"knockwhist/gameerr"
	"knockwhist/room"
	"knockwhist/session"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const roomCodeLength = 4

// idleRoomTTL is how long a room may sit with no connected human before the
// cleanup sweep reclaims it. Supplemented from the reference server's
// lobby.CleanupIdleTables, since a long-running server with no
// persistence would otherwise leak empty rooms forever.
const idleRoomTTL = 10 * time.Minute

// Registry owns every live room, the session table, and the socket
// bindings that let a room engine address a participant without ever
// holding a transport-layer reference itself.
type Registry struct {
	mu sync.Mutex

	rooms       map[string]*room.Room
	sessions    *session.Manager
	liveSockets map[string]Socket // sessionID -> socket
	lastActive  map[string]time.Time

	rng      *rand.Rand
	testMode bool
	done     chan struct{}
}

// Socket is whatever the transport layer needs to push a Message to one
// connected client. The registry and room engine only ever see this narrow
// interface, never the underlying websocket connection.
type Socket interface {
	Send(msg room.Message)
}

// New creates an empty registry and starts its idle-room cleanup sweep.
func New(testMode bool) *Registry {
	reg := &Registry{
		rooms:       make(map[string]*room.Room),
		sessions:    session.NewManager(),
		liveSockets: make(map[string]Socket),
		lastActive:  make(map[string]time.Time),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		testMode:    testMode,
		done:        make(chan struct{}),
	}
	go reg.cleanupLoop()
	return reg
}

// Stop ends the cleanup sweep and closes every live room's lane.
func (reg *Registry) Stop() {
	close(reg.done)
	reg.mu.Lock()
	for _, r := range reg.rooms {
		r.Close()
	}
	reg.mu.Unlock()
}

// Create handles the `create` message: a fresh room in WAITING, a Human for
// the requester, and a new session.
func (reg *Registry) Create(name string, sock Socket) (code string, sess session.Record, err error) {
	reg.mu.Lock()
	code = reg.newRoomCodeLocked()
	r := room.New(code, reg.roomRNG(), reg.sendTo, reg.testMode)
	reg.rooms[code] = r
	reg.lastActive[code] = time.Now()
	reg.mu.Unlock()

	sess = reg.sessions.Create(name, code)
	reg.bindSocket(sess.ID, sock)

	if err = r.SubmitEvent(room.Event{Type: room.EventJoin, SessionID: sess.ID, Name: name}); err != nil {
		return "", session.Record{}, err
	}
	return code, sess, nil
}

// Join handles the `join` message.
func (reg *Registry) Join(code, name string, sock Socket) (sess session.Record, err error) {
	r, ok := reg.lookupRoom(code)
	if !ok {
		return session.Record{}, gameerr.ErrRoomNotFound
	}

	sess = reg.sessions.Create(name, code)
	if err := r.SubmitEvent(room.Event{Type: room.EventJoin, SessionID: sess.ID, Name: name}); err != nil {
		reg.sessions.Delete(sess.ID)
		return session.Record{}, err
	}
	reg.bindSocket(sess.ID, sock)
	reg.touch(code)
	return sess, nil
}

// Reconnect handles the `reconnect` message: rebind sock to the session's
// room and deliver a fresh gameState to it alone.
func (reg *Registry) Reconnect(sessionID string, sock Socket) error {
	sess, ok := reg.sessions.Lookup(sessionID)
	if !ok {
		return gameerr.ErrInvalidSession
	}
	r, ok := reg.lookupRoom(sess.RoomCode)
	if !ok {
		return gameerr.ErrRoomNotFound
	}
	reg.bindSocket(sessionID, sock)
	reg.touch(sess.RoomCode)
	return r.SubmitEvent(room.Event{Type: room.EventReconnect, SessionID: sessionID})
}

// Dispatch resolves sessionID to its room and forwards e, filling in
// e.SessionID. Used for every subsequent per-session message (addAI,
// startGame, callTrumps, playCard, playAgain).
func (reg *Registry) Dispatch(sessionID string, e room.Event) error {
	sess, ok := reg.sessions.Lookup(sessionID)
	if !ok {
		return gameerr.ErrInvalidSession
	}
	r, ok := reg.lookupRoom(sess.RoomCode)
	if !ok {
		return gameerr.ErrRoomNotFound
	}
	e.SessionID = sessionID
	reg.touch(sess.RoomCode)
	return r.SubmitEvent(e)
}

// Disconnect unbinds sessionID's live socket without touching its
// Participant, so the registry stops trying to deliver to it.
func (reg *Registry) Disconnect(sessionID string) {
	reg.mu.Lock()
	delete(reg.liveSockets, sessionID)
	reg.mu.Unlock()
}

func (reg *Registry) bindSocket(sessionID string, sock Socket) {
	reg.mu.Lock()
	reg.liveSockets[sessionID] = sock
	reg.mu.Unlock()
}

func (reg *Registry) sendTo(sessionID string, msg room.Message) {
	reg.mu.Lock()
	sock := reg.liveSockets[sessionID]
	reg.mu.Unlock()
	if sock != nil {
		sock.Send(msg)
	}
}

func (reg *Registry) lookupRoom(code string) (*room.Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

func (reg *Registry) touch(code string) {
	reg.mu.Lock()
	reg.lastActive[code] = time.Now()
	reg.mu.Unlock()
}

func (reg *Registry) newRoomCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		for i := range buf {
			buf[i] = roomCodeAlphabet[reg.rng.Intn(len(roomCodeAlphabet))]
		}
		code := string(buf)
		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

func (reg *Registry) roomRNG() *rand.Rand {
	return rand.New(rand.NewSource(reg.rng.Int63()))
}

// cleanupLoop sweeps idle rooms, grounded on the reference server's
// lobby.CleanupIdleTables/cleanupLoop. A room is idle once it has no
// connected human socket and has gone untouched past idleRoomTTL,
// regardless of its state — there is no persistence layer, so a room nobody
// can reach is simply dead weight.
func (reg *Registry) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			reg.sweepIdleRooms()
		case <-reg.done:
			return
		}
	}
}

func (reg *Registry) sweepIdleRooms() {
	reg.mu.Lock()
	now := time.Now()
	var toClose []string
	for code, last := range reg.lastActive {
		if now.Sub(last) < idleRoomTTL {
			continue
		}
		if reg.roomHasLiveSocketLocked(code) {
			continue
		}
		toClose = append(toClose, code)
	}
	for _, code := range toClose {
		if r, ok := reg.rooms[code]; ok {
			r.Close()
		}
		delete(reg.rooms, code)
		delete(reg.lastActive, code)
	}
	reg.mu.Unlock()

	for _, code := range toClose {
		reg.sessions.DeleteByRoom(code)
		log.Printf("[Registry] reclaimed idle room %s", code)
	}
}

// roomHasLiveSocketLocked reports whether any session bound to code still
// has a live socket. Callers must hold reg.mu.
func (reg *Registry) roomHasLiveSocketLocked(code string) bool {
	for sessionID := range reg.liveSockets {
		sess, ok := reg.sessions.Lookup(sessionID)
		if ok && sess.RoomCode == code {
			return true
		}
	}
	return false
}
