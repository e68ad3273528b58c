package main

import (
	"fmt"

	"github.com/lox/blackjackd/cmd/blackjackd/shared"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/randutil"
)

// SimulateCmd plays automated rounds with a fixed hit-below-17 policy and
// reports the aggregate results. Useful for eyeballing house edge and for
// shaking out shoe and settlement accounting over long sequences.
type SimulateCmd struct {
	Rounds    int    `kong:"default='1000',help='Number of rounds to play'"`
	Bet       int    `kong:"default='5',help='Bet per round'"`
	Credits   int    `kong:"default='1000',help='Starting credit balance'"`
	Decks     int    `kong:"default='4',help='Number of decks in the shoe (1-8)'"`
	HitSoft17 bool   `kong:"help='Dealer hits soft 17'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg := blackjack.DefaultConfig()
	cfg.StartingCredits = c.Credits
	cfg.NumDecks = c.Decks
	cfg.DealerHitsSoft17 = c.HitSoft17

	seed := randutil.Seed(c.Seed)
	sess, err := blackjack.NewSession(cfg, blackjack.WithRNG(randutil.New(seed)))
	if err != nil {
		return err
	}

	logger.Info().
		Int("rounds", c.Rounds).
		Int("bet", c.Bet).
		Int64("seed", seed).
		Msg("Starting simulation")

	totalCards := cfg.NumDecks * 52
	outcomes := make(map[blackjack.Outcome]int)
	net := 0

	for round := 0; round < c.Rounds; round++ {
		if sess.View().Credits < c.Bet {
			if err := sess.AddCredits(c.Credits); err != nil {
				return err
			}
			net -= c.Credits
		}

		res, err := sess.PlaceBet(c.Bet)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		// Fixed policy: hit until 17 or better.
		for res == nil {
			view := sess.View()
			total, _ := handTotal(view.PlayerHand)
			if total < 17 {
				res, err = sess.Hit()
			} else {
				res, err = sess.Stand()
			}
			if err != nil {
				return fmt.Errorf("round %d: %w", round, err)
			}
		}

		outcomes[res.Outcome]++

		// Between rounds every card must be back in the shoe or discard.
		view := sess.View()
		if view.ShoeRemaining+view.DiscardCount != totalCards {
			return fmt.Errorf("round %d: card conservation broken: shoe %d + discard %d != %d",
				round, view.ShoeRemaining, view.DiscardCount, totalCards)
		}
	}

	final := sess.View()
	net += final.Credits - c.Credits

	for outcome, count := range outcomes {
		logger.Info().
			Str("outcome", outcome.String()).
			Int("count", count).
			Msg("Outcome totals")
	}
	logger.Info().
		Int("net_credits", net).
		Int("final_credits", final.Credits).
		Msg("Simulation complete")
	return nil
}

// handTotal recomputes a hand total from wire card strings. The simulator
// only sees the projection, same as any other client.
func handTotal(cards []string) (int, bool) {
	total, aces := 0, 0
	for _, c := range cards {
		rank := c[:len(c)-len("♠")]
		switch rank {
		case "A":
			total += 11
			aces++
		case "K", "Q", "J", "10":
			total += 10
		default:
			total += int(rank[0] - '0')
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}
