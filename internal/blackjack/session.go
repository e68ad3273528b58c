package blackjack

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjackd/internal/deck"
	"github.com/lox/blackjackd/internal/randutil"
)

// Session is a single blackjack table played by one player against the house.
// All operations are validated against the current round phase and either
// fully apply or leave the session untouched. A mutex serializes mutations so
// a session can sit behind a concurrent transport.
type Session struct {
	mu sync.Mutex

	cfg       Config
	credits   int
	bet       int
	shoe      *deck.Shoe
	player    []deck.Card
	dealer    []deck.Card // dealer[0] is the upcard, dealer[1] the hole card
	inRound   bool
	canDouble bool

	lastResult *Result

	// Final hands of the last settled round, kept so the dealer's hole card
	// can be revealed after settlement. Cleared when the next bet is placed.
	lastFinalPlayer []deck.Card
	lastFinalDealer []deck.Card

	rng    *rand.Rand
	logger *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithRNG sets the random source used for shoe shuffles, making deals
// reproducible.
func WithRNG(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithLogger sets the logger for round events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger.WithPrefix("blackjack") }
}

// NewSession creates a session with a fresh shoe and the configured starting
// credits.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = randutil.New(time.Now().UnixNano())
	}
	s.applyConfig(cfg)
	return s, nil
}

// applyConfig starts the session over: fresh shoe, empty discard, credits set
// from the config, all round and reveal state cleared.
func (s *Session) applyConfig(cfg Config) {
	s.cfg = cfg
	s.credits = cfg.StartingCredits
	s.bet = 0
	s.shoe = deck.New(cfg.NumDecks, s.rng)
	s.player = nil
	s.dealer = nil
	s.inRound = false
	s.canDouble = false
	s.lastResult = nil
	s.lastFinalPlayer = nil
	s.lastFinalDealer = nil
}

// Reconfigure starts a new game with the given config. Any round in progress
// is abandoned and the shoe is rebuilt.
func (s *Session) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfig(cfg)
	s.logger.Info("new game", "credits", s.credits, "decks", cfg.NumDecks)
	return nil
}

// Reset zeroes the credits and rebuilds the shoe, keeping the current config.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfig(s.cfg)
	s.credits = 0
	s.logger.Info("session reset")
}

// AddCredits adds to the player's balance.
func (s *Session) AddCredits(amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return ValidationError{Reason: fmt.Sprintf("amount must be positive, got %d", amount)}
	}
	s.credits += amount
	return nil
}

// PlaceBet deducts the stake, deals the initial hands in the order player,
// dealer, player, dealer, and runs the immediate blackjack check. If either
// party has a natural the round settles synchronously and the result is
// returned; otherwise the result is nil and the round stays active.
func (s *Session) PlaceBet(amount int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inRound {
		return nil, StateError{Reason: "a round is already in progress"}
	}
	if amount <= 0 {
		return nil, ValidationError{Reason: fmt.Sprintf("bet must be positive, got %d", amount)}
	}
	if amount > s.credits {
		return nil, ValidationError{Reason: fmt.Sprintf("insufficient credits (%d) for bet %d", s.credits, amount)}
	}

	s.credits -= amount
	s.bet = amount
	s.player = nil
	s.dealer = nil
	s.inRound = true
	s.canDouble = true

	// Clear the previous round's reveal.
	s.lastResult = nil
	s.lastFinalPlayer = nil
	s.lastFinalDealer = nil

	s.draw(&s.player)
	s.draw(&s.dealer)
	s.draw(&s.player)
	s.draw(&s.dealer)

	s.logger.Debug("bet placed", "bet", amount, "credits", s.credits)

	return s.resolveInitial(), nil
}

// Hit draws one card for the player. Busting settles the round immediately;
// otherwise the round stays active and the result is nil. Returns ErrNoRound
// when no round is active.
func (s *Session) Hit() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRound {
		return nil, ErrNoRound
	}
	s.draw(&s.player)
	s.canDouble = false
	if total, _ := HandValue(s.player); total > 21 {
		return s.resolve(), nil
	}
	return nil, nil
}

// Stand ends the player's turn: the dealer plays out their hand and the round
// settles. Returns ErrNoRound when no round is active.
func (s *Session) Stand() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRound {
		return nil, ErrNoRound
	}
	s.canDouble = false
	s.dealerPlay()
	return s.resolve(), nil
}

// DoubleDown doubles the bet in exchange for exactly one more card, then ends
// the player's turn. Only legal as the first action after the initial deal,
// and only if the player can cover the second stake.
func (s *Session) DoubleDown() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRound {
		return nil, ErrNoRound
	}
	if !s.canDouble {
		return nil, StateError{Reason: "double down is only allowed as the first action after the deal"}
	}
	if s.credits < s.bet {
		return nil, ValidationError{Reason: fmt.Sprintf("insufficient credits (%d) to double bet %d", s.credits, s.bet)}
	}

	s.credits -= s.bet
	s.bet *= 2
	s.canDouble = false

	s.draw(&s.player)
	if total, _ := HandValue(s.player); total > 21 {
		return s.resolve(), nil
	}
	s.dealerPlay()
	return s.resolve(), nil
}

// draw deals one card from the shoe into the given hand.
func (s *Session) draw(hand *[]deck.Card) {
	*hand = append(*hand, s.shoe.Draw())
}

// dealerPlay runs the house policy: hit below 17, stand on hard 17 or above,
// and hit soft 17 only when configured.
func (s *Session) dealerPlay() {
	for {
		total, soft := HandValue(s.dealer)
		if total < 17 {
			s.draw(&s.dealer)
			continue
		}
		if total == 17 && soft && s.cfg.DealerHitsSoft17 {
			s.draw(&s.dealer)
			continue
		}
		return
	}
}

// resolveInitial performs the blackjack check right after the deal. When
// either party holds a natural the round settles here; otherwise it returns
// nil and play continues.
func (s *Session) resolveInitial() *Result {
	playerBJ := IsBlackjack(s.player)
	dealerBJ := IsBlackjack(s.dealer)

	switch {
	case playerBJ && dealerBJ:
		return s.settle(OutcomePush)
	case playerBJ:
		return s.settle(OutcomePlayerBlackjack)
	case dealerBJ:
		return s.settle(OutcomeDealerBlackjack)
	default:
		return nil
	}
}

// resolve settles a round after the player has finished acting. A player bust
// is settled before the dealer's hand is ever considered; the dealer cannot
// bust a round the player already lost.
func (s *Session) resolve() *Result {
	playerTotal, _ := HandValue(s.player)
	dealerTotal, _ := HandValue(s.dealer)

	switch {
	case playerTotal > 21:
		return s.settle(OutcomePlayerBust)
	case dealerTotal > 21:
		return s.settle(OutcomeDealerBust)
	case playerTotal > dealerTotal:
		return s.settle(OutcomePlayerWin)
	case playerTotal < dealerTotal:
		return s.settle(OutcomeDealerWin)
	default:
		return s.settle(OutcomePush)
	}
}

// settle applies the payout and closes the round: credits are returned as
// stake + net payout (zero for losses), the final hands are captured for
// reveal, both hands move to the discard pile, and the table returns to idle.
func (s *Session) settle(outcome Outcome) *Result {
	result := Result{Outcome: outcome, Payout: payout(outcome, s.bet, s.cfg)}
	s.credits += s.bet + result.Payout

	s.lastFinalPlayer = slices.Clone(s.player)
	s.lastFinalDealer = slices.Clone(s.dealer)

	s.shoe.Discard(s.player...)
	s.shoe.Discard(s.dealer...)
	s.player = nil
	s.dealer = nil
	s.bet = 0
	s.inRound = false
	s.canDouble = false
	s.lastResult = &result

	s.logger.Debug("round settled",
		"outcome", outcome.String(),
		"payout", result.Payout,
		"credits", s.credits,
	)
	return &result
}
