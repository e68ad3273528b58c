package blackjack

import "github.com/lox/blackjackd/internal/deck"

// HoleCard is the opaque placeholder shown in place of the dealer's second
// card while a round is active.
const HoleCard = "🂠"

// View is the externally visible snapshot of a session. While a round is
// active the dealer's hole card is masked; after settlement the final hands of
// the last round are shown in full, which is how the hole card is revealed.
type View struct {
	Credits       int      `json:"credits"`
	CurrentBet    int      `json:"current_bet"`
	PlayerHand    []string `json:"player_hand"`
	DealerHand    []string `json:"dealer_hand"`
	InRound       bool     `json:"in_round"`
	CanDouble     bool     `json:"can_double"`
	Config        Config   `json:"config"`
	LastResult    *Result  `json:"last_result,omitempty"`
	ShoeRemaining int      `json:"shoe_remaining"`
	DiscardCount  int      `json:"discard_count"`
}

// View projects the current visible state. It never mutates the session and
// may be called at any time.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var player, dealer []string
	switch {
	case s.inRound:
		if len(s.dealer) > 0 {
			dealer = deck.Strings(s.dealer[:1])
			if len(s.dealer) >= 2 {
				dealer = append(dealer, HoleCard)
			}
		}
		player = deck.Strings(s.player)
	case s.lastResult != nil && len(s.lastFinalDealer) > 0:
		dealer = deck.Strings(s.lastFinalDealer)
		player = deck.Strings(s.lastFinalPlayer)
	default:
		dealer = deck.Strings(s.dealer)
		player = deck.Strings(s.player)
	}

	var last *Result
	if s.lastResult != nil {
		r := *s.lastResult
		last = &r
	}

	return View{
		Credits:       s.credits,
		CurrentBet:    s.bet,
		PlayerHand:    player,
		DealerHand:    dealer,
		InRound:       s.inRound,
		CanDouble:     s.canDouble,
		Config:        s.cfg,
		LastResult:    last,
		ShoeRemaining: s.shoe.Remaining(),
		DiscardCount:  s.shoe.DiscardCount(),
	}
}
