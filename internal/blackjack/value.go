package blackjack

import "github.com/lox/blackjackd/internal/deck"

// points returns the initial point value of a rank: aces count 11 until the
// hand total forces them down to 1.
func points(r deck.Rank) int {
	switch {
	case r == deck.Ace:
		return 11
	case r >= deck.Ten:
		return 10
	default:
		return int(r)
	}
}

// HandValue computes the best total for a hand and whether it is soft.
// Aces start at 11 and are demoted to 1 one at a time while the total is
// over 21. The hand is soft iff an ace still counts as 11 afterwards.
func HandValue(cards []deck.Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
		}
		total += points(c.Rank)
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// IsBlackjack reports whether a hand is a natural: exactly two cards totalling
// 21, one of which is an ace. The ace check is redundant with the total on a
// standard deck but kept as an explicit invariant guard.
func IsBlackjack(cards []deck.Card) bool {
	if len(cards) != 2 {
		return false
	}
	total, _ := HandValue(cards)
	return total == 21 && (cards[0].IsAce() || cards[1].IsAce())
}
