package blackjack

import (
	"errors"
	"testing"

	rand "math/rand/v2"

	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/randutil"
)

func newTestSession(t *testing.T, cfg Config, rig ...deck.Card) *Session {
	t.Helper()
	sess, err := NewSession(cfg, WithRNG(randutil.New(1)))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if len(rig) > 0 {
		sess.shoe.Rig(rig...)
	}
	return sess
}

func card(r deck.Rank, s deck.Suit) deck.Card {
	return deck.NewCard(r, s)
}

// Initial deal order is player, dealer, player, dealer.
func rigDeal(p1, d1, p2, d2 deck.Card, extra ...deck.Card) []deck.Card {
	return append([]deck.Card{p1, d1, p2, d2}, extra...)
}

func TestPlaceBetPlayerBlackjack(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ace, deck.Spades), card(deck.Nine, deck.Hearts),
		card(deck.King, deck.Clubs), card(deck.Seven, deck.Diamonds),
	)...)

	res, err := sess.PlaceBet(10)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res == nil || res.Outcome != OutcomePlayerBlackjack {
		t.Fatalf("result = %+v, want player_blackjack", res)
	}
	if res.Payout != 15 {
		t.Errorf("payout = %d, want 15 (floor of 10*3/2)", res.Payout)
	}

	view := sess.View()
	if view.Credits != 65 {
		t.Errorf("credits = %d, want 65", view.Credits)
	}
	if view.InRound {
		t.Error("round should be settled")
	}
	if view.CurrentBet != 0 {
		t.Errorf("bet = %d, want 0", view.CurrentBet)
	}
}

func TestPlaceBetBlackjackPayoutFloors(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ace, deck.Spades), card(deck.Nine, deck.Hearts),
		card(deck.King, deck.Clubs), card(deck.Seven, deck.Diamonds),
	)...)

	res, err := sess.PlaceBet(5)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res.Payout != 7 {
		t.Errorf("payout = %d, want 7 (floor of 5*3/2)", res.Payout)
	}
}

func TestPlaceBetBlackjackCustomRatio(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.PayoutNum, cfg.PayoutDen = 6, 5
	sess := newTestSession(t, cfg, rigDeal(
		card(deck.Ace, deck.Spades), card(deck.Nine, deck.Hearts),
		card(deck.King, deck.Clubs), card(deck.Seven, deck.Diamonds),
	)...)

	res, err := sess.PlaceBet(10)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res.Payout != 12 {
		t.Errorf("payout = %d, want 12 (10*6/5)", res.Payout)
	}
}

func TestPlaceBetBothBlackjackPush(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ace, deck.Spades), card(deck.Ace, deck.Hearts),
		card(deck.Queen, deck.Clubs), card(deck.King, deck.Diamonds),
	)...)

	res, err := sess.PlaceBet(10)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res == nil || res.Outcome != OutcomePush {
		t.Fatalf("result = %+v, want push", res)
	}
	if res.Payout != 0 {
		t.Errorf("payout = %d, want 0", res.Payout)
	}
	if view := sess.View(); view.Credits != 50 {
		t.Errorf("credits = %d, want stake fully refunded (50)", view.Credits)
	}
}

func TestPlaceBetDealerBlackjack(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Nine, deck.Spades), card(deck.Ace, deck.Hearts),
		card(deck.Seven, deck.Clubs), card(deck.King, deck.Diamonds),
	)...)

	res, err := sess.PlaceBet(10)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if res == nil || res.Outcome != OutcomeDealerBlackjack {
		t.Fatalf("result = %+v, want dealer_blackjack", res)
	}
	if res.Payout != -10 {
		t.Errorf("payout = %d, want -10", res.Payout)
	}
	if view := sess.View(); view.Credits != 40 {
		t.Errorf("credits = %d, want 40", view.Credits)
	}
}

func TestPlaceBetValidation(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig())

	var validation ValidationError
	if _, err := sess.PlaceBet(0); !errors.As(err, &validation) {
		t.Errorf("PlaceBet(0) error = %v, want ValidationError", err)
	}
	if _, err := sess.PlaceBet(-5); !errors.As(err, &validation) {
		t.Errorf("PlaceBet(-5) error = %v, want ValidationError", err)
	}
	if _, err := sess.PlaceBet(51); !errors.As(err, &validation) {
		t.Errorf("PlaceBet(51) error = %v, want ValidationError", err)
	}

	// Rejected bets leave the session untouched.
	view := sess.View()
	if view.Credits != 50 || view.CurrentBet != 0 || view.InRound {
		t.Errorf("state mutated by rejected bets: %+v", view)
	}
}

func TestPlaceBetWhileRoundActive(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Nine, deck.Hearts),
		card(deck.Five, deck.Clubs), card(deck.Seven, deck.Diamonds),
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	var state StateError
	if _, err := sess.PlaceBet(5); !errors.As(err, &state) {
		t.Errorf("second PlaceBet error = %v, want StateError", err)
	}
	if view := sess.View(); view.CurrentBet != 10 || view.Credits != 40 {
		t.Errorf("state mutated by rejected bet: %+v", view)
	}
}

func TestHitUntilBust(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Five, deck.Hearts),
		card(deck.Nine, deck.Clubs), card(deck.Six, deck.Diamonds),
		card(deck.Five, deck.Spades), // hit -> 24
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.Hit()
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if res == nil || res.Outcome != OutcomePlayerBust {
		t.Fatalf("result = %+v, want player_bust", res)
	}
	if res.Payout != -10 {
		t.Errorf("payout = %d, want -10", res.Payout)
	}

	// Player bust settles before the dealer plays: the dealer keeps exactly
	// the two dealt cards even though 11 is far below 17.
	view := sess.View()
	if len(view.DealerHand) != 2 {
		t.Errorf("dealer hand = %v, dealer should never have played", view.DealerHand)
	}
	if view.Credits != 40 {
		t.Errorf("credits = %d, want 40", view.Credits)
	}
}

func TestHitKeepsRoundActive(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Five, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Six, deck.Clubs), card(deck.Seven, deck.Diamonds),
		card(deck.Four, deck.Spades), // hit -> 15
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.Hit()
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if res != nil {
		t.Fatalf("result = %+v, want round still active", res)
	}

	view := sess.View()
	if !view.InRound {
		t.Error("round should still be active")
	}
	if view.CanDouble {
		t.Error("can_double must be false after a hit")
	}
}

func TestStandDealerDrawsToSeventeen(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Nine, deck.Clubs), card(deck.Six, deck.Diamonds),
		card(deck.Five, deck.Spades), // dealer draws on 16 -> 21
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.Stand()
	if err != nil {
		t.Fatalf("Stand: %v", err)
	}
	if res == nil || res.Outcome != OutcomeDealerWin {
		t.Fatalf("result = %+v, want dealer_win", res)
	}
	if view := sess.View(); view.Credits != 40 {
		t.Errorf("credits = %d, want 40", view.Credits)
	}
}

func TestStandDealerBusts(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Nine, deck.Clubs), card(deck.Six, deck.Diamonds),
		card(deck.King, deck.Spades), // dealer draws on 16 -> 26
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.Stand()
	if err != nil {
		t.Fatalf("Stand: %v", err)
	}
	if res == nil || res.Outcome != OutcomeDealerBust {
		t.Fatalf("result = %+v, want dealer_bust", res)
	}
	if res.Payout != 10 {
		t.Errorf("payout = %d, want +10", res.Payout)
	}
	if view := sess.View(); view.Credits != 60 {
		t.Errorf("credits = %d, want 60", view.Credits)
	}
}

func TestStandPushOnEqualTotals(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Nine, deck.Clubs), card(deck.Nine, deck.Diamonds),
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.Stand()
	if err != nil {
		t.Fatalf("Stand: %v", err)
	}
	if res == nil || res.Outcome != OutcomePush {
		t.Fatalf("result = %+v, want push", res)
	}
	if view := sess.View(); view.Credits != 50 {
		t.Errorf("credits = %d, want stake refunded (50)", view.Credits)
	}
}

func TestDealerSoftSeventeen(t *testing.T) {
	t.Parallel()

	rig := rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Ace, deck.Hearts),
		card(deck.Eight, deck.Clubs), card(deck.Six, deck.Diamonds),
		card(deck.Four, deck.Spades), // only drawn when dealer hits soft 17
	)

	t.Run("stands by default", func(t *testing.T) {
		t.Parallel()
		sess := newTestSession(t, DefaultConfig(), rig...)
		if _, err := sess.PlaceBet(10); err != nil {
			t.Fatalf("PlaceBet: %v", err)
		}
		res, err := sess.Stand()
		if err != nil {
			t.Fatalf("Stand: %v", err)
		}
		// Dealer stands on soft 17, player's 18 wins.
		if res == nil || res.Outcome != OutcomePlayerWin {
			t.Fatalf("result = %+v, want player_win", res)
		}
		if view := sess.View(); len(view.DealerHand) != 2 {
			t.Errorf("dealer hand = %v, want 2 cards", view.DealerHand)
		}
	})

	t.Run("hits when configured", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.DealerHitsSoft17 = true
		sess := newTestSession(t, cfg, rig...)
		if _, err := sess.PlaceBet(10); err != nil {
			t.Fatalf("PlaceBet: %v", err)
		}
		res, err := sess.Stand()
		if err != nil {
			t.Fatalf("Stand: %v", err)
		}
		// Dealer hits A,6 and draws the 4 for 21.
		if res == nil || res.Outcome != OutcomeDealerWin {
			t.Fatalf("result = %+v, want dealer_win", res)
		}
		if view := sess.View(); len(view.DealerHand) != 3 {
			t.Errorf("dealer hand = %v, want 3 cards", view.DealerHand)
		}
	})
}

func TestDoubleDown(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Five, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Six, deck.Clubs), card(deck.Seven, deck.Diamonds),
		card(deck.Ten, deck.Spades), // double draw -> 21
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.DoubleDown()
	if err != nil {
		t.Fatalf("DoubleDown: %v", err)
	}
	if res == nil || res.Outcome != OutcomePlayerWin {
		t.Fatalf("result = %+v, want player_win", res)
	}
	if res.Payout != 20 {
		t.Errorf("payout = %d, want +20 (doubled bet)", res.Payout)
	}

	view := sess.View()
	if view.Credits != 70 {
		t.Errorf("credits = %d, want 70", view.Credits)
	}
	if view.CanDouble {
		t.Error("can_double must be false after settlement")
	}
	// Player took exactly one card.
	if len(view.PlayerHand) != 3 {
		t.Errorf("player hand = %v, want exactly 3 cards", view.PlayerHand)
	}
}

func TestDoubleDownBust(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Nine, deck.Spades), card(deck.Five, deck.Hearts),
		card(deck.Eight, deck.Clubs), card(deck.Six, deck.Diamonds),
		card(deck.Ten, deck.Spades), // double draw -> 27
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	res, err := sess.DoubleDown()
	if err != nil {
		t.Fatalf("DoubleDown: %v", err)
	}
	if res == nil || res.Outcome != OutcomePlayerBust {
		t.Fatalf("result = %+v, want player_bust", res)
	}
	if res.Payout != -20 {
		t.Errorf("payout = %d, want -20", res.Payout)
	}

	// Dealer's 11 never plays out after the player busts.
	if view := sess.View(); len(view.DealerHand) != 2 {
		t.Errorf("dealer hand = %v, dealer should never have played", view.DealerHand)
	}
}

func TestDoubleDownOnlyFirstAction(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Five, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Six, deck.Clubs), card(deck.Seven, deck.Diamonds),
		card(deck.Two, deck.Spades), // hit -> 13
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if _, err := sess.Hit(); err != nil {
		t.Fatalf("Hit: %v", err)
	}

	var state StateError
	if _, err := sess.DoubleDown(); !errors.As(err, &state) {
		t.Errorf("DoubleDown after hit error = %v, want StateError", err)
	}
}

func TestDoubleDownInsufficientCredits(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Five, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Six, deck.Clubs), card(deck.Seven, deck.Diamonds),
	)...)

	// Bet 40 of 50: the remaining 10 cannot cover a second stake of 40.
	if _, err := sess.PlaceBet(40); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	var validation ValidationError
	if _, err := sess.DoubleDown(); !errors.As(err, &validation) {
		t.Errorf("DoubleDown error = %v, want ValidationError", err)
	}

	// The rejected double leaves the round fully intact.
	view := sess.View()
	if view.CurrentBet != 40 || view.Credits != 10 || !view.InRound || !view.CanDouble {
		t.Errorf("state mutated by rejected double: %+v", view)
	}
}

func TestActionsOnIdleTable(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig())

	if _, err := sess.Hit(); !errors.Is(err, ErrNoRound) {
		t.Errorf("Hit error = %v, want ErrNoRound", err)
	}
	if _, err := sess.Stand(); !errors.Is(err, ErrNoRound) {
		t.Errorf("Stand error = %v, want ErrNoRound", err)
	}
	if _, err := sess.DoubleDown(); !errors.Is(err, ErrNoRound) {
		t.Errorf("DoubleDown error = %v, want ErrNoRound", err)
	}
}

func TestAddCredits(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig())

	if err := sess.AddCredits(25); err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if view := sess.View(); view.Credits != 75 {
		t.Errorf("credits = %d, want 75", view.Credits)
	}

	var validation ValidationError
	if err := sess.AddCredits(0); !errors.As(err, &validation) {
		t.Errorf("AddCredits(0) error = %v, want ValidationError", err)
	}
	if err := sess.AddCredits(-10); !errors.As(err, &validation) {
		t.Errorf("AddCredits(-10) error = %v, want ValidationError", err)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig(), rigDeal(
		card(deck.Ten, deck.Spades), card(deck.Ten, deck.Hearts),
		card(deck.Nine, deck.Clubs), card(deck.Nine, deck.Diamonds),
	)...)

	if _, err := sess.PlaceBet(10); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if _, err := sess.Stand(); err != nil {
		t.Fatalf("Stand: %v", err)
	}

	sess.Reset()

	view := sess.View()
	if view.Credits != 0 {
		t.Errorf("credits = %d, want 0", view.Credits)
	}
	if view.Config.StartingCredits != 50 {
		t.Errorf("config starting credits = %d, want retained 50", view.Config.StartingCredits)
	}
	if view.LastResult != nil {
		t.Errorf("last result = %+v, want cleared", view.LastResult)
	}
	if view.ShoeRemaining != 4*52 {
		t.Errorf("shoe = %d, want fresh %d", view.ShoeRemaining, 4*52)
	}
	if view.DiscardCount != 0 {
		t.Errorf("discard = %d, want 0", view.DiscardCount)
	}
}

func TestReconfigure(t *testing.T) {
	t.Parallel()

	sess := newTestSession(t, DefaultConfig())

	cfg := Config{StartingCredits: 100, NumDecks: 2, PayoutNum: 3, PayoutDen: 2}
	if err := sess.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}

	view := sess.View()
	if view.Credits != 100 {
		t.Errorf("credits = %d, want 100", view.Credits)
	}
	if view.ShoeRemaining != 2*52 {
		t.Errorf("shoe = %d, want %d", view.ShoeRemaining, 2*52)
	}

	for _, bad := range []Config{
		{StartingCredits: -1, NumDecks: 4, PayoutNum: 3, PayoutDen: 2},
		{StartingCredits: 50, NumDecks: 0, PayoutNum: 3, PayoutDen: 2},
		{StartingCredits: 50, NumDecks: 9, PayoutNum: 3, PayoutDen: 2},
		{StartingCredits: 50, NumDecks: 4, PayoutNum: 0, PayoutDen: 2},
		{StartingCredits: 50, NumDecks: 4, PayoutNum: 3, PayoutDen: 0},
	} {
		var validation ValidationError
		if err := sess.Reconfigure(bad); !errors.As(err, &validation) {
			t.Errorf("Reconfigure(%+v) error = %v, want ValidationError", bad, err)
		}
	}
}

func TestCardConservationAndCreditsAcrossRandomPlay(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.StartingCredits = 10000
	cfg.NumDecks = 2
	sess := newTestSession(t, cfg)
	total := cfg.NumDecks * 52

	check := func(step string) {
		t.Helper()
		sess.mu.Lock()
		got := sess.shoe.Remaining() + sess.shoe.DiscardCount() + len(sess.player) + len(sess.dealer)
		credits := sess.credits
		sess.mu.Unlock()
		if got != total {
			t.Fatalf("%s: %d cards accounted for, want %d", step, got, total)
		}
		if credits < 0 {
			t.Fatalf("%s: credits went negative: %d", step, credits)
		}
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 500; round++ {
		res, err := sess.PlaceBet(1 + rng.IntN(5))
		if err != nil {
			t.Fatalf("round %d: PlaceBet: %v", round, err)
		}
		check("after bet")

		for res == nil {
			switch rng.IntN(3) {
			case 0:
				res, err = sess.Hit()
			case 1:
				res, err = sess.Stand()
			case 2:
				res, err = sess.DoubleDown()
				var state StateError
				var validation ValidationError
				if errors.As(err, &state) || errors.As(err, &validation) {
					// Double was illegal here; stand instead.
					res, err = sess.Stand()
				}
			}
			if err != nil {
				t.Fatalf("round %d: %v", round, err)
			}
			check("after action")
		}
	}
}
