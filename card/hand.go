package card

import "sort"

// SortForDisplay orders a hand the way the room engine presents it to a
// client after dealing: by suit in display order D,C,H,S, then ascending
// rank within a suit. This is a pure presentation concern — it never affects
// play legality or deck identity.
func SortForDisplay(hand []Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		oi, oj := displayOrder[hand[i].Suit], displayOrder[hand[j].Suit]
		if oi != oj {
			return oi < oj
		}
		return hand[i].Rank < hand[j].Rank
	})
}
