package blackjack

import "fmt"

// Outcome is the closed set of ways a round can end.
type Outcome int

const (
	OutcomePlayerBlackjack Outcome = iota
	OutcomePlayerWin
	OutcomeDealerWin
	OutcomePush
	OutcomePlayerBust
	OutcomeDealerBust
	OutcomeDealerBlackjack
)

var outcomeNames = map[Outcome]string{
	OutcomePlayerBlackjack: "player_blackjack",
	OutcomePlayerWin:       "player_win",
	OutcomeDealerWin:       "dealer_win",
	OutcomePush:            "push",
	OutcomePlayerBust:      "player_bust",
	OutcomeDealerBust:      "dealer_bust",
	OutcomeDealerBlackjack: "dealer_blackjack",
}

// String returns the wire identifier for the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler so outcomes serialize as
// their wire identifiers in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result records how a round settled. Payout is the net credit change for the
// player, excluding the returned stake: +bet on a win, -bet on a loss, 0 on a
// push, and the blackjack profit on a natural.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Payout  int     `json:"payout"`
}

// payout maps a terminal outcome to the player's net credit delta for the
// given bet. Blackjack profit uses integer floor division of the configured
// ratio; every other outcome pays an integral multiple of the bet.
func payout(o Outcome, bet int, cfg Config) int {
	switch o {
	case OutcomePlayerBlackjack:
		return bet * cfg.PayoutNum / cfg.PayoutDen
	case OutcomePlayerWin, OutcomeDealerBust:
		return bet
	case OutcomeDealerWin, OutcomePlayerBust, OutcomeDealerBlackjack:
		return -bet
	case OutcomePush:
		return 0
	default:
		return 0
	}
}
