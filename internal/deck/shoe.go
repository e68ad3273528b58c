package deck

import rand "math/rand/v2"

// reshuffleThreshold is the shoe size below which the discard pile is shuffled
// back in before the next draw. Keeping a margin guarantees a full initial deal
// never runs the shoe dry mid-hand.
const reshuffleThreshold = 15

// Shoe holds the undealt cards for the current and upcoming rounds, plus the
// discard pile of cards from settled rounds. Cards move between the two piles
// but are never created or destroyed after construction: the multiset of
// shoe + discard + any cards currently dealt out always equals decks × 52.
type Shoe struct {
	cards   []Card
	discard []Card
	decks   int
	rng     *rand.Rand
}

// New builds a shuffled shoe from the given number of standard 52-card decks.
// The caller supplies the random source so shuffles are reproducible.
func New(decks int, rng *rand.Rand) *Shoe {
	s := &Shoe{
		cards: make([]Card, 0, decks*52),
		decks: decks,
		rng:   rng,
	}
	s.build()
	s.shuffle()
	return s
}

// Draw removes and returns the top card. If fewer than reshuffleThreshold
// cards remain it first shuffles the discard pile back in; if the shoe is
// still empty after that it rebuilds from fresh decks, so a draw never fails.
func (s *Shoe) Draw() Card {
	if len(s.cards) < reshuffleThreshold {
		s.cards = append(s.cards, s.discard...)
		s.discard = s.discard[:0]
		s.shuffle()
		if len(s.cards) == 0 {
			s.build()
			s.shuffle()
		}
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card
}

// Discard moves played cards onto the discard pile.
func (s *Shoe) Discard(cards ...Card) {
	s.discard = append(s.discard, cards...)
}

// Remaining returns the number of undealt cards in the shoe.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// DiscardCount returns the size of the discard pile.
func (s *Shoe) DiscardCount() int {
	return len(s.discard)
}

// Decks returns the number of decks the shoe was built from.
func (s *Shoe) Decks() int {
	return s.decks
}

// Rig rearranges the shoe so the given cards come out of the next draws in
// order. Each card is swapped into place from deeper in the shoe, so the
// shoe's contents are permuted, never changed. Used to set up deterministic
// deals in tests and replays; panics if a requested card is not available.
func (s *Shoe) Rig(next ...Card) {
	pos := len(s.cards) - 1
	for _, want := range next {
		found := false
		for i := pos; i >= 0; i-- {
			if s.cards[i] == want {
				s.cards[i], s.cards[pos] = s.cards[pos], s.cards[i]
				found = true
				break
			}
		}
		if !found {
			panic("deck: card not available to rig: " + want.String())
		}
		pos--
	}
}

func (s *Shoe) build() {
	for d := 0; d < s.decks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
}

// shuffle performs a Fisher-Yates shuffle of the undealt cards.
func (s *Shoe) shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}
