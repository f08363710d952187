package rules

import (
	"testing"

	"knockwhist/card"
	"knockwhist/gameerr"
	"knockwhist/trick"
)

func TestValidatePlayWrongPhase(t *testing.T) {
	ctx := PlayContext{Phase: "WAITING", Trick: trick.New()}
	_, err := ValidatePlay(ctx, card.New(card.Spade, 10))
	assertKind(t, err, gameerr.WrongPhase)
}

func TestValidatePlayWrongTurn(t *testing.T) {
	ctx := PlayContext{
		Phase:              PhasePlaying,
		CurrentPlayerIndex: 0,
		ActingPlayerIndex:  1,
		Trick:              trick.New(),
	}
	_, err := ValidatePlay(ctx, card.New(card.Spade, 10))
	assertKind(t, err, gameerr.WrongTurn)
}

func TestValidatePlayDuplicatePlay(t *testing.T) {
	tr := trick.New()
	_ = tr.Add(0, card.New(card.Heart, 5))
	ctx := PlayContext{
		Phase:              PhasePlaying,
		CurrentPlayerIndex: 0,
		ActingPlayerIndex:  0,
		Hand:               []card.Card{card.New(card.Spade, 10)},
		Trick:              tr,
	}
	_, err := ValidatePlay(ctx, card.New(card.Spade, 10))
	assertKind(t, err, gameerr.DuplicatePlay)
}

func TestValidatePlayNotInHand(t *testing.T) {
	ctx := PlayContext{
		Phase:              PhasePlaying,
		CurrentPlayerIndex: 0,
		ActingPlayerIndex:  0,
		Hand:               []card.Card{card.New(card.Heart, 5)},
		Trick:              trick.New(),
	}
	_, err := ValidatePlay(ctx, card.New(card.Spade, 10))
	assertKind(t, err, gameerr.NotInHand)
}

// Follow-suit enforcement. Player1 leads 10♠; Player2 has [Q♠, K♦] and
// tries K♦. Expect: error "Must follow suit".
func TestValidatePlayMustFollowSuit(t *testing.T) {
	tr := trick.New()
	_ = tr.Add(0, card.New(card.Spade, 10))
	ctx := PlayContext{
		Phase:              PhasePlaying,
		CurrentPlayerIndex: 1,
		ActingPlayerIndex:  1,
		Hand:               []card.Card{card.New(card.Spade, 12), card.New(card.Diamond, 13)},
		Trick:              tr,
	}
	_, err := ValidatePlay(ctx, card.New(card.Diamond, 13))
	assertKind(t, err, gameerr.MustFollowSuit)
}

func TestValidatePlayAllowsOffSuitWhenVoid(t *testing.T) {
	tr := trick.New()
	_ = tr.Add(0, card.New(card.Spade, 10))
	ctx := PlayContext{
		Phase:              PhasePlaying,
		CurrentPlayerIndex: 1,
		ActingPlayerIndex:  1,
		Hand:               []card.Card{card.New(card.Diamond, 13)},
		Trick:              tr,
	}
	idx, err := ValidatePlay(ctx, card.New(card.Diamond, 13))
	if err != nil {
		t.Fatalf("expected no error when void in led suit, got %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected hand index 0, got %d", idx)
	}
}

func TestValidateTrumpSelection(t *testing.T) {
	ctx := TrumpSelectionContext{Phase: PhaseCallingTrumps, TrumpCallerIndex: 2, ActingPlayerIndex: 2}
	suit, err := ValidateTrumpSelection(ctx, "♥")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suit != card.Heart {
		t.Fatalf("got suit %v, want Heart", suit)
	}
}

func TestValidateTrumpSelectionInvalidSuit(t *testing.T) {
	ctx := TrumpSelectionContext{Phase: PhaseCallingTrumps, TrumpCallerIndex: 0, ActingPlayerIndex: 0}
	_, err := ValidateTrumpSelection(ctx, "X")
	assertKind(t, err, gameerr.InvalidSuit)
}

func assertKind(t *testing.T, err error, want gameerr.Kind) {
	t.Helper()
	ge, ok := err.(*gameerr.Error)
	if !ok {
		t.Fatalf("error %v is not a *gameerr.Error", err)
	}
	if ge.Kind != want {
		t.Fatalf("error kind = %v, want %v", ge.Kind, want)
	}
}
