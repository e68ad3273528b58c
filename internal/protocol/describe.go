package protocol

import (
	"fmt"

	"github.com/lox/blackjackd/internal/blackjack"
)

// Describe renders the human-readable message for a completed operation. The
// engine reports outcomes as tagged results; the text lives out here at the
// boundary so every transport says the same thing.
func Describe(op string, res *blackjack.Result) string {
	if res != nil {
		switch op {
		case OpHit:
			return fmt.Sprintf("Bust! Round settled: %s (payout %d).", res.Outcome, res.Payout)
		case OpDoubleDown:
			return fmt.Sprintf("Round settled (double): %s (payout %d).", res.Outcome, res.Payout)
		default:
			return fmt.Sprintf("Round settled: %s (payout %d).", res.Outcome, res.Payout)
		}
	}

	switch op {
	case OpInitGame:
		return "New game started."
	case OpAddCredits:
		return "Credits added."
	case OpGetState:
		return "OK"
	case OpReset:
		return "Session reset."
	case OpPlaceBet:
		return "Bet placed and cards dealt."
	case OpHit:
		return "Card taken."
	case OpStand:
		return "Standing."
	case OpDoubleDown:
		return "Doubled down."
	default:
		return "OK"
	}
}

// NoRoundMessage is the informational reply for player actions issued while
// the table is idle.
const NoRoundMessage = "No active round."
