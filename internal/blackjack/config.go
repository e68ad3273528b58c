package blackjack

import "fmt"

// Config holds the table rules for a session. It is immutable for the life of
// the session except via Reconfigure, which also resets the session.
type Config struct {
	StartingCredits  int  `json:"starting_credits"`
	NumDecks         int  `json:"num_decks"`
	PayoutNum        int  `json:"bj_pay_n"`
	PayoutDen        int  `json:"bj_pay_d"`
	DealerHitsSoft17 bool `json:"dealer_hits_soft_17"`
}

// DefaultConfig returns the house defaults: 50 starting credits, a four-deck
// shoe, 3:2 blackjack payout, dealer stands on soft 17.
func DefaultConfig() Config {
	return Config{
		StartingCredits:  50,
		NumDecks:         4,
		PayoutNum:        3,
		PayoutDen:        2,
		DealerHitsSoft17: false,
	}
}

// Validate checks the config against the table limits.
func (c Config) Validate() error {
	if c.StartingCredits < 0 {
		return ValidationError{Reason: fmt.Sprintf("starting credits must be >= 0, got %d", c.StartingCredits)}
	}
	if c.NumDecks < 1 || c.NumDecks > 8 {
		return ValidationError{Reason: fmt.Sprintf("num decks must be between 1 and 8, got %d", c.NumDecks)}
	}
	if c.PayoutNum < 1 {
		return ValidationError{Reason: fmt.Sprintf("payout numerator must be >= 1, got %d", c.PayoutNum)}
	}
	if c.PayoutDen < 1 {
		return ValidationError{Reason: fmt.Sprintf("payout denominator must be >= 1, got %d", c.PayoutDen)}
	}
	return nil
}
