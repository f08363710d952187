package room

import "knockwhist/card"

// Sender delivers one message to the socket currently bound to sessionID,
// if any is live. The room engine never touches a socket directly — it only
// knows session IDs, exactly as the room protocol prescribes ("avoid storing the
// socket inside the Participant value; store it in live_sockets").
type Sender func(sessionID string, msg Message)

// Message is the server->client envelope. Every state-mutating event
// carries an updated State snapshot so clients stay purely view-stateless.
// Fields unused by a given Type are simply omitted on the wire.
type Message struct {
	Type      string    `json:"type"`
	Code      string    `json:"code,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Message   string    `json:"message,omitempty"`
	State     *Snapshot `json:"state,omitempty"`
}

// TrickPlayView is one (name, cardString) entry of a Snapshot's currentTrick.
type TrickPlayView struct {
	Name string `json:"name"`
	Card string `json:"card"`
}

// PlayerView is one entry of a Snapshot's players list.
type PlayerView struct {
	Name       string `json:"name"`
	TrickCount int    `json:"trickCount"`
	IsAI       bool   `json:"isAI"`
}

// Snapshot is the exact shape described by the room protocol: a view of room state
// that, sent to a specific player, additionally carries that player's own
// hand and spectator flag.
type Snapshot struct {
	Code          string          `json:"code"`
	CurrentRound  int             `json:"currentRound"`
	TrumpSuit     string          `json:"trumpSuit,omitempty"`
	CurrentTrick  []TrickPlayView `json:"currentTrick"`
	Players       []PlayerView    `json:"players"`
	Spectators    []string        `json:"spectators"`
	State         string          `json:"state"`
	CurrentPlayer *string         `json:"currentPlayer"`
	TrumpCaller   *string         `json:"trumpCaller"`
	Hand          []string        `json:"hand,omitempty"`
	IsSpectator   *bool           `json:"isSpectator,omitempty"`
}

// baseSnapshot builds the shared, recipient-independent part of the state
// view. Per-recipient fields (hand, isSpectator) are filled in by the
// caller.
func (r *Room) baseSnapshot() Snapshot {
	s := Snapshot{
		Code:         r.Code,
		CurrentRound: r.CurrentRound,
		Spectators:   make([]string, 0, len(r.Spectators)),
		Players:      make([]PlayerView, 0, len(r.Players)),
		CurrentTrick: make([]TrickPlayView, 0),
		State:        r.State,
	}
	if r.HasTrump {
		s.TrumpSuit = r.TrumpSuit.String()
	}
	for _, p := range r.Players {
		s.Players = append(s.Players, PlayerView{Name: p.Name, TrickCount: p.TricksWon, IsAI: p.IsAI()})
	}
	for _, p := range r.Spectators {
		s.Spectators = append(s.Spectators, p.Name)
	}
	if r.State == statePlaying && r.CurrentPlayer >= 0 && r.CurrentPlayer < len(r.Players) {
		name := r.Players[r.CurrentPlayer].Name
		s.CurrentPlayer = &name
	}
	if r.State == stateCallingTrumps && r.TrumpCaller >= 0 && r.TrumpCaller < len(r.Players) {
		name := r.Players[r.TrumpCaller].Name
		s.TrumpCaller = &name
	}
	if r.CurrentTrick != nil {
		for _, play := range r.CurrentTrick.Plays {
			if play.PlayerIndex < 0 || play.PlayerIndex >= len(r.Players) {
				continue
			}
			s.CurrentTrick = append(s.CurrentTrick, TrickPlayView{
				Name: r.Players[play.PlayerIndex].Name,
				Card: play.Card.String(),
			})
		}
	}
	return s
}

func handStrings(hand []card.Card) []string {
	out := make([]string, len(hand))
	for i, c := range hand {
		out[i] = c.String()
	}
	return out
}

// broadcastAll sends msg, with its State populated per-recipient, to every
// connected Human in the room (players and spectators). AI seats have no
// socket and are skipped.
func (r *Room) broadcastAll(msgType string) {
	base := r.baseSnapshot()
	for _, p := range r.Players {
		if p.Kind != KindHuman {
			continue
		}
		snap := base
		snap.Hand = handStrings(p.Hand)
		r.send(p.SessionID, Message{Type: msgType, State: &snap})
	}
	for _, p := range r.Spectators {
		snap := base
		isSpectator := true
		snap.IsSpectator = &isSpectator
		r.send(p.SessionID, Message{Type: msgType, State: &snap})
	}
}

// sendTo sends msgType with a fresh per-recipient snapshot to one
// participant only (used for reconnect replies and elimination notices).
func (r *Room) sendTo(p *Participant, msgType string, isSpectator bool) {
	if p.Kind != KindHuman {
		return
	}
	snap := r.baseSnapshot()
	snap.Hand = handStrings(p.Hand)
	if isSpectator {
		b := true
		snap.IsSpectator = &b
	}
	r.send(p.SessionID, Message{Type: msgType, State: &snap})
}
