// Package trick implements one trick of play: the ordered sequence of plays
// by each participant and winner determination under a trump suit.
package trick

import (
	"errors"

	"knockwhist/card"
)

// ErrAlreadyPlayed is returned by Add when participantIndex has already
// played in this trick.
var ErrAlreadyPlayed = errors.New("trick: participant already played this trick")

// Play is one (player, card) contribution to a trick. PlayerIndex refers to
// a position in the room's players slice at the moment the card was played.
type Play struct {
	PlayerIndex int
	Card        card.Card
}

// Trick is the ordered record of plays within a single hand of play.
type Trick struct {
	Plays []Play
}

// New returns an empty trick.
func New() *Trick {
	return &Trick{}
}

// LedSuit returns the suit of the first play, and false if the trick is
// empty.
func (t *Trick) LedSuit() (card.Suit, bool) {
	if len(t.Plays) == 0 {
		return 0, false
	}
	return t.Plays[0].Card.Suit, true
}

// HasPlayed reports whether participantIndex has already played in this
// trick.
func (t *Trick) HasPlayed(participantIndex int) bool {
	for _, p := range t.Plays {
		if p.PlayerIndex == participantIndex {
			return true
		}
	}
	return false
}

// Add appends a play to the trick. It rejects a participant playing twice in
// the same trick; all other legality (turn order, follow-suit, card
// ownership) is the rules package's job.
func (t *Trick) Add(participantIndex int, c card.Card) error {
	if t.HasPlayed(participantIndex) {
		return ErrAlreadyPlayed
	}
	t.Plays = append(t.Plays, Play{PlayerIndex: participantIndex, Card: c})
	return nil
}

// Complete reports whether the trick has received a play from every one of
// numPlayers active players.
func (t *Trick) Complete(numPlayers int) bool {
	return len(t.Plays) >= numPlayers
}

// key is the lexicographic comparison key used to rank plays within a trick:
// (trump_flag, led_flag, rank, -position). Bigger is better; a bool compares
// as 0/1 here via the trumped/led fields.
type key struct {
	trumped bool
	led     bool
	rank    int
	negPos  int
}

func (k key) less(other key) bool {
	if k.trumped != other.trumped {
		return !k.trumped // other is trumped, k is not -> k is less
	}
	if k.led != other.led {
		return !k.led
	}
	if k.rank != other.rank {
		return k.rank < other.rank
	}
	return k.negPos < other.negPos
}

// Winner returns the index into t.Plays of the winning play, selecting the
// play that maximises the lexicographic key (trump, led suit, rank,
// -position). Ties in every other field resolve to the earliest position
// because -position strictly decreases with position, so an earlier play's
// negPos is always larger. Winner panics if the trick is empty — callers
// must only call it on a non-empty trick.
func Winner(t *Trick, trump card.Suit) int {
	if len(t.Plays) == 0 {
		panic("trick: Winner called on empty trick")
	}
	ledSuit, _ := t.LedSuit()

	bestIdx := 0
	bestKey := keyFor(t.Plays[0], 0, trump, ledSuit)
	for i := 1; i < len(t.Plays); i++ {
		k := keyFor(t.Plays[i], i, trump, ledSuit)
		if bestKey.less(k) {
			bestKey = k
			bestIdx = i
		}
	}
	return bestIdx
}

func keyFor(p Play, position int, trump, ledSuit card.Suit) key {
	return key{
		trumped: p.Card.Suit == trump,
		led:     p.Card.Suit == ledSuit,
		rank:    p.Card.Rank,
		negPos:  -position,
	}
}

// Beats reports whether candidate would beat currentBest under trump/ledSuit
// precedence: trump beats non-trump; within the same suit, higher rank wins;
// a card of neither trump nor led suit never beats anything. This mirrors
// the comparison used by Winner but is exposed standalone for the AI policy
// which needs to evaluate a hypothetical play against the partial
// trick's current leader without constructing a whole Trick.
func Beats(candidate, currentBest card.Card, trump, ledSuit card.Suit) bool {
	candTrump := candidate.Suit == trump
	bestTrump := currentBest.Suit == trump
	if candTrump != bestTrump {
		return candTrump
	}
	if candTrump && bestTrump {
		return candidate.Rank > currentBest.Rank
	}
	// Neither is trump: only same-suit-as-led comparisons can win.
	candLed := candidate.Suit == ledSuit
	bestLed := currentBest.Suit == ledSuit
	if candLed != bestLed {
		return candLed
	}
	if candLed && bestLed {
		return candidate.Rank > currentBest.Rank
	}
	return false
}

// CurrentWinner returns the currently-winning play in a possibly-incomplete
// trick, for use by the AI policy while deciding a follow play.
func CurrentWinner(t *Trick, trump card.Suit) Play {
	ledSuit, _ := t.LedSuit()
	best := t.Plays[0]
	for _, p := range t.Plays[1:] {
		if Beats(p.Card, best.Card, trump, ledSuit) {
			best = p
		}
	}
	return best
}
