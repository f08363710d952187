// Package ai implements the AI participant's decision policy: pure
// functions of (hand, current trick, trump) that never mutate anything they
// are given.
package ai

import (
	"knockwhist/card"
	"knockwhist/rules"
	"knockwhist/trick"
)

// ChooseTrump scores each suit as 10*count(hand, suit) + sum(rank in suit)
// and returns the argmax, ties broken by suit iteration order (S,H,D,C).
func ChooseTrump(hand []card.Card) card.Suit {
	var scores [4]int
	var counts [4]int
	for _, c := range hand {
		scores[c.Suit] += c.Rank
		counts[c.Suit]++
	}

	best := card.Suits[0]
	bestScore := -1
	for _, s := range card.Suits {
		score := counts[s]*10 + scores[s]
		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return best
}

// ChooseCard picks the card to play given the current (possibly empty)
// trick and trump suit:
//
//  1. Leading: among non-trump cards, play the highest with rank >= 12 if
//     any exist; else the lowest non-trump; else (all trump) the lowest
//     trump.
//  2. Following: among playable cards that would beat the trick's current
//     winner, play the lowest such winner; otherwise play the lowest
//     playable card.
func ChooseCard(hand []card.Card, tr *trick.Trick, trump card.Suit) card.Card {
	if len(tr.Plays) == 0 {
		return leadCard(hand, trump)
	}
	return followCard(hand, tr, trump)
}

func leadCard(hand []card.Card, trump card.Suit) card.Card {
	var nonTrump []card.Card
	for _, c := range hand {
		if c.Suit != trump {
			nonTrump = append(nonTrump, c)
		}
	}

	var highCards []card.Card
	for _, c := range nonTrump {
		if c.Rank >= 12 {
			highCards = append(highCards, c)
		}
	}
	if len(highCards) > 0 {
		return maxByRank(highCards)
	}
	if len(nonTrump) > 0 {
		return minByRank(nonTrump)
	}
	return minByRank(hand)
}

func followCard(hand []card.Card, tr *trick.Trick, trump card.Suit) card.Card {
	playable := rules.PlayableCards(hand, tr)
	ledSuit, _ := tr.LedSuit()
	currentBest := trick.CurrentWinner(tr, trump).Card

	var winners []card.Card
	for _, c := range playable {
		if trick.Beats(c, currentBest, trump, ledSuit) {
			winners = append(winners, c)
		}
	}
	if len(winners) > 0 {
		return minByRank(winners)
	}
	return minByRank(playable)
}

func maxByRank(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > best.Rank {
			best = c
		}
	}
	return best
}

func minByRank(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}
