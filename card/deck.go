package card

import "math/rand"

// NewDeck builds the standard 52-card deck: every suit in Suits order,
// ranks 2..14 ascending within a suit.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for rank := 2; rank <= 14; rank++ {
			deck = append(deck, Card{Suit: s, Rank: rank})
		}
	}
	return deck
}

// NewShuffledDeck concatenates enough copies of the standard 52-card deck to
// deal roundSize cards to numPlayers players — ⌈(roundSize·numPlayers)/52⌉
// copies — and shuffles the result with rng. Duplicate cards across copies
// are legal and distinct entities: they are returned as a flat slice and
// tracked by slice position, never collapsed by (suit,rank) equality.
func NewShuffledDeck(rng *rand.Rand, roundSize, numPlayers int) []Card {
	needed := roundSize * numPlayers
	copies := (needed + 51) / 52
	if copies < 1 {
		copies = 1
	}

	deck := make([]Card, 0, copies*52)
	for i := 0; i < copies; i++ {
		deck = append(deck, NewDeck()...)
	}

	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
