package room

import "log"

// EventType discriminates the messages accepted on a room's lane, mirroring
// the reference server's table.Event/EventType actor-message pattern.
type EventType int

const (
	EventJoin EventType = iota
	EventAddAI
	EventStartGame
	EventCallTrumps
	EventPlayCard
	EventPlayAgain
	EventReconnect
	EventClose
)

// Event is a message posted to a room's single-goroutine lane. Response, if
// non-nil, receives exactly one error (nil on success) before the lane moves
// to the next event — this is how SubmitEvent turns the async lane into a
// synchronous call for the submitter.
type Event struct {
	Type      EventType
	SessionID string
	Name      string
	Suit      string
	Card      string
	Response  chan error
}

// run is the room's actor loop: a single goroutine serialises every
// mutation, so participants never observe half-applied state.
// Pacing sleeps happen inline on this goroutine (see clock.go), which is
// exactly what makes new messages "enqueue but not apply" while a room is
// suspended — they pile up in the buffered events channel until this
// goroutine comes back around to the select.
func (r *Room) run() {
	for {
		select {
		case e := <-r.events:
			err := r.handleEvent(e)
			if e.Response != nil {
				e.Response <- err
			}
		case <-r.done:
			log.Printf("[Room %s] lane stopped", r.Code)
			return
		}
	}
}

// SubmitEvent posts e to the room's lane and blocks for the result. It is
// how outside code (the registry, tests) changes a Room's state; the
// package's own tests also read Room fields directly between events.
func (r *Room) SubmitEvent(e Event) error {
	e.Response = make(chan error, 1)
	select {
	case r.events <- e:
	case <-r.done:
		return ErrRoomClosed
	}
	return <-e.Response
}

// Close stops the room's lane. Safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Room) handleEvent(e Event) error {
	switch e.Type {
	case EventJoin:
		return r.handleJoin(e.SessionID, e.Name)
	case EventAddAI:
		return r.handleAddAI(e.Name)
	case EventStartGame:
		return r.handleStartGame()
	case EventCallTrumps:
		return r.handleCallTrumps(e.SessionID, e.Suit)
	case EventPlayCard:
		return r.handlePlayCard(e.SessionID, e.Card)
	case EventPlayAgain:
		return r.handlePlayAgain()
	case EventReconnect:
		return r.handleReconnectEvent(e.SessionID)
	case EventClose:
		r.Close()
		return nil
	default:
		return nil
	}
}
