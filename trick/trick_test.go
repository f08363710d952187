package trick

import (
	"testing"

	"knockwhist/card"
)

func TestAddRejectsDuplicatePlayer(t *testing.T) {
	tr := New()
	if err := tr.Add(0, card.New(card.Spade, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Add(0, card.New(card.Heart, 5)); err != ErrAlreadyPlayed {
		t.Fatalf("expected ErrAlreadyPlayed, got %v", err)
	}
}

func TestLedSuitEmpty(t *testing.T) {
	tr := New()
	if _, ok := tr.LedSuit(); ok {
		t.Fatalf("expected no led suit on empty trick")
	}
}

// Trump beats led suit. Trump=♠. P1 leads K♥, P2 plays 2♠, P3 plays A♥.
// Winner = P2.
func TestWinnerTrumpBeatsLedSuit(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 0, card.New(card.Heart, 13))
	mustAdd(t, tr, 1, card.New(card.Spade, 2))
	mustAdd(t, tr, 2, card.New(card.Heart, 14))

	idx := Winner(tr, card.Spade)
	if idx != 1 {
		t.Fatalf("winner index = %d, want 1 (P2's low trump)", idx)
	}
}

// Duplicate card, earliest wins. Two-deck game, trump=♣.
// P1 leads A♥, P2 plays A♥. Winner = P1.
func TestWinnerTieBreaksToEarliestPosition(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 0, card.New(card.Heart, 14))
	mustAdd(t, tr, 1, card.New(card.Heart, 14))

	idx := Winner(tr, card.Club)
	if idx != 0 {
		t.Fatalf("winner index = %d, want 0 (earliest position on tie)", idx)
	}
}

func TestWinnerHighestOfLedSuitWhenNoTrumpPlayed(t *testing.T) {
	tr := New()
	mustAdd(t, tr, 0, card.New(card.Spade, 5))
	mustAdd(t, tr, 1, card.New(card.Spade, 12))
	mustAdd(t, tr, 2, card.New(card.Diamond, 14)) // off-suit, can't win

	idx := Winner(tr, card.Heart)
	if idx != 1 {
		t.Fatalf("winner index = %d, want 1 (highest led-suit card)", idx)
	}
}

func TestBeatsTrumpAlwaysBeatsNonTrump(t *testing.T) {
	if !Beats(card.New(card.Club, 2), card.New(card.Heart, 14), card.Club, card.Heart) {
		t.Fatalf("lowest trump should beat highest non-trump")
	}
}

func TestBeatsOffSuitNeverBeatsLedSuit(t *testing.T) {
	if Beats(card.New(card.Diamond, 14), card.New(card.Heart, 2), card.Club, card.Heart) {
		t.Fatalf("off-suit non-trump should never beat led suit")
	}
}

func mustAdd(t *testing.T, tr *Trick, idx int, c card.Card) {
	t.Helper()
	if err := tr.Add(idx, c); err != nil {
		t.Fatalf("Add(%d, %v) failed: %v", idx, c, err)
	}
}
