// Package room implements the per-room game engine: the state machine that
// takes a table of participants from WAITING through rounds of trump
// selection and trick play to FINISHED, with AI seats driven transparently
// alongside human ones.
package room

import (
	"errors"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"knockwhist/card"
	"knockwhist/gameerr"
	"knockwhist/rules"
	"knockwhist/trick"
)

const (
	stateWaiting       = "WAITING"
	stateCallingTrumps = "CALLING_TRUMPS"
	statePlaying       = "PLAYING"
	stateFinished      = "FINISHED"
)

// MaxPlayers is the hard cap on a room's player roster.
const MaxPlayers = 21

// ErrRoomClosed is returned by SubmitEvent once a room's lane has stopped.
var ErrRoomClosed = errors.New("room: closed")

// noIndex marks a player-index field as undefined (between rounds, or
// before any round has been played).
const noIndex = -1

// Room is one game table: the state machine described in the room protocol,
// owned and mutated exclusively by its own goroutine (run, in events.go).
type Room struct {
	Code string

	State        string
	Players      []*Participant
	Spectators   []*Participant
	CurrentRound int
	TrumpSuit    card.Suit
	HasTrump     bool
	CurrentTrick *trick.Trick

	CurrentPlayer int
	TrickStarter  int
	TrumpCaller   int

	// HandID correlates every log line for one round of play; regenerated
	// at the start of each round, the way production servers stamp a fresh
	// buildHandID per hand.
	HandID string

	rng      *rand.Rand
	testMode bool
	send     Sender

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a room in WAITING, with an empty roster. rng must be seeded by
// the caller for deterministic tests; send delivers messages to live sockets via session ID.
func New(code string, rng *rand.Rand, send Sender, testMode bool) *Room {
	r := &Room{
		Code:          code,
		State:         stateWaiting,
		CurrentTrick:  trick.New(),
		CurrentPlayer: noIndex,
		TrickStarter:  noIndex,
		TrumpCaller:   noIndex,
		rng:           rng,
		testMode:      testMode,
		send:          send,
		events:        make(chan Event, 64),
		done:          make(chan struct{}),
	}
	go r.run()
	log.Printf("[Room %s] created", code)
	return r
}

// --- join / roster -------------------------------------------------------

func (r *Room) handleJoin(sessionID, name string) error {
	if r.State != stateWaiting {
		return gameerr.ErrRoomAlreadyStarted
	}
	if len(r.Players) >= MaxPlayers {
		return gameerr.ErrRoomFull
	}
	r.Players = append(r.Players, newHuman(name, sessionID))
	r.broadcastAll("playerJoined")
	return nil
}

func (r *Room) handleAddAI(name string) error {
	if r.State != stateWaiting {
		return gameerr.ErrRoomAlreadyStarted
	}
	if len(r.Players) >= MaxPlayers {
		return gameerr.ErrRoomFull
	}
	if name == "" {
		name = aiName(len(r.Players))
	}
	r.Players = append(r.Players, newAI(name))
	r.broadcastAll("playerJoined")
	return nil
}

func aiName(seatIndex int) string {
	names := []string{"Ava", "Bram", "Cleo", "Dash", "Eli", "Fern", "Gus", "Hana"}
	return "AI-" + names[seatIndex%len(names)]
}

func (r *Room) findBySession(sessionID string) (*Participant, int, bool) {
	for i, p := range r.Players {
		if p.Kind == KindHuman && p.SessionID == sessionID {
			return p, i, true
		}
	}
	for i, p := range r.Spectators {
		if p.SessionID == sessionID {
			return p, i, false
		}
	}
	return nil, -1, false
}

// --- start / deal ---------------------------------------------------------

func (r *Room) handleStartGame() error {
	if r.State != stateWaiting {
		return gameerr.ErrRoomAlreadyStarted
	}
	if len(r.Players) < 2 {
		return gameerr.ErrNotEnoughPlayers
	}
	r.CurrentRound = 7
	r.startTrumpSelection()
	r.driveAI()
	return nil
}

// startTrumpSelection implements a round's start: deal, sort hands, reset
// tricks, then either auto-pick trump/starter for round 7 or hand off to the
// designated trump_caller.
func (r *Room) startTrumpSelection() {
	r.HandID = uuid.NewString()
	r.dealCurrentRound()
	for _, p := range r.Players {
		p.TricksWon = 0
	}
	r.CurrentTrick = trick.New()
	log.Printf("[Room %s] hand=%s round=%d dealt to %d players", r.Code, r.HandID, r.CurrentRound, len(r.Players))

	if r.CurrentRound == 7 {
		r.TrumpSuit = card.Suits[r.rng.Intn(len(card.Suits))]
		r.HasTrump = true
		r.CurrentPlayer = r.rng.Intn(len(r.Players))
		r.TrickStarter = r.CurrentPlayer
		r.TrumpCaller = noIndex
		r.State = statePlaying
		r.broadcastAll("roundStart")
		return
	}

	r.HasTrump = false
	r.State = stateCallingTrumps
	r.broadcastAll("trumpSelection")
}

func (r *Room) dealCurrentRound() {
	deck := card.NewShuffledDeck(r.rng, r.CurrentRound, len(r.Players))
	pos := 0
	for _, p := range r.Players {
		p.Hand = append([]card.Card(nil), deck[pos:pos+r.CurrentRound]...)
		pos += r.CurrentRound
		card.SortForDisplay(p.Hand)
	}
}

// --- trump selection --------------------------------------------------

func (r *Room) handleCallTrumps(sessionID, suit string) error {
	p, idx, isPlayer := r.findBySession(sessionID)
	if p == nil || !isPlayer {
		return gameerr.ErrInvalidSession
	}
	ctx := rules.TrumpSelectionContext{
		Phase:             r.State,
		TrumpCallerIndex:  r.TrumpCaller,
		ActingPlayerIndex: idx,
	}
	chosen, err := rules.ValidateTrumpSelection(ctx, suit)
	if err != nil {
		return err
	}
	r.applyTrumpCall(chosen)
	r.driveAI()
	return nil
}

func (r *Room) applyTrumpCall(suit card.Suit) {
	r.TrumpSuit = suit
	r.HasTrump = true
	r.State = statePlaying
	r.broadcastAll("roundStart")
}

// --- playing a card --------------------------------------------------

func (r *Room) handlePlayCard(sessionID, cardStr string) error {
	p, idx, isPlayer := r.findBySession(sessionID)
	if p == nil || !isPlayer {
		return gameerr.ErrInvalidSession
	}
	c, err := card.Parse(cardStr)
	if err != nil {
		return gameerr.New(gameerr.ParseError, "Invalid card")
	}

	ctx := rules.PlayContext{
		Phase:              r.State,
		CurrentPlayerIndex: r.CurrentPlayer,
		ActingPlayerIndex:  idx,
		Hand:               p.Hand,
		Trick:              r.CurrentTrick,
	}
	handIdx, err := rules.ValidatePlay(ctx, c)
	if err != nil {
		return err
	}

	r.applyPlay(idx, handIdx, c)
	r.driveAI()
	return nil
}

// applyPlay mutates state for one legal play. It is
// shared by the human dispatch path and the AI-drive loop, since both play
// exactly the same way once a card has been chosen.
func (r *Room) applyPlay(playerIdx, handIdx int, c card.Card) {
	p := r.Players[playerIdx]
	p.Hand = append(p.Hand[:handIdx], p.Hand[handIdx+1:]...)
	_ = r.CurrentTrick.Add(playerIdx, c)
	r.CurrentPlayer = (r.CurrentPlayer + 1) % len(r.Players)
	r.broadcastAll("cardPlayed")

	if r.CurrentTrick.Complete(len(r.Players)) {
		r.completeTrick()
	}
}

// --- trick completion ---------------------------------------------------

func (r *Room) completeTrick() {
	r.broadcastAll("trickComplete")
	r.sleep(trickCompleteDelay)

	winnerPlayIdx := trick.Winner(r.CurrentTrick, r.TrumpSuit)
	winnerPlayerIdx := r.CurrentTrick.Plays[winnerPlayIdx].PlayerIndex
	r.Players[winnerPlayerIdx].TricksWon++
	r.CurrentPlayer = winnerPlayerIdx
	r.TrickStarter = winnerPlayerIdx
	r.CurrentTrick = trick.New()

	r.broadcastAll("trickWinner")
	r.sleep(nextTrickDelay)

	if anyHandNonEmpty(r.Players) {
		r.broadcastAll("nextTrick")
		return
	}
	r.endRound()
}

func anyHandNonEmpty(players []*Participant) bool {
	for _, p := range players {
		if len(p.Hand) > 0 {
			return true
		}
	}
	return false
}

// --- round end -----------------------------------------------------------

func (r *Room) endRound() {
	playedRound := r.CurrentRound

	survivors := make([]*Participant, 0, len(r.Players))
	eliminated := make([]*Participant, 0)
	for _, p := range r.Players {
		if p.TricksWon == 0 {
			eliminated = append(eliminated, p)
		} else {
			survivors = append(survivors, p)
		}
	}

	for _, p := range eliminated {
		r.sendTo(p, "eliminated", true)
	}
	r.Players = survivors
	r.Spectators = append(r.Spectators, eliminated...)

	if len(survivors) <= 1 || playedRound == 1 {
		r.State = stateFinished
		r.CurrentPlayer = noIndex
		r.TrickStarter = noIndex
		r.TrumpCaller = noIndex
		r.broadcastAll("gameOver")
		return
	}

	nextCaller := r.pickTrumpCaller(survivors)
	r.CurrentRound--
	r.HasTrump = false
	r.CurrentPlayer = nextCaller
	r.TrickStarter = nextCaller
	r.TrumpCaller = nextCaller
	r.broadcastAll("roundEnd")

	r.startTrumpSelection()
}

// pickTrumpCaller chooses, uniformly at random, among the survivors tied
// for the maximum tricks_won this round.
func (r *Room) pickTrumpCaller(survivors []*Participant) int {
	max := 0
	for _, p := range survivors {
		if p.TricksWon > max {
			max = p.TricksWon
		}
	}
	var tied []int
	for i, p := range survivors {
		if p.TricksWon == max {
			tied = append(tied, i)
		}
	}
	return tied[r.rng.Intn(len(tied))]
}

// --- reset / playAgain -----------------------------------------------------

func (r *Room) handlePlayAgain() error {
	if r.State != stateFinished {
		return gameerr.New(gameerr.WrongPhase, "Game has not ended")
	}
	r.Players = append(r.Players, r.Spectators...)
	r.Spectators = nil
	for _, p := range r.Players {
		p.resetForNewGame()
	}
	r.CurrentRound = 0
	r.HasTrump = false
	r.CurrentTrick = trick.New()
	r.CurrentPlayer = noIndex
	r.TrickStarter = noIndex
	r.TrumpCaller = noIndex
	r.State = stateWaiting
	r.broadcastAll("playAgainSuccess")
	return nil
}

// --- reconnect -------------------------------------------------------------

func (r *Room) handleReconnectEvent(sessionID string) error {
	p, _, isPlayer := r.findBySession(sessionID)
	if p == nil {
		return gameerr.ErrInvalidSession
	}
	r.sendTo(p, "gameState", !isPlayer)
	return nil
}
