package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/randutil"
	"github.com/lox/blackjackd/internal/tui"
)

// PlayCmd runs an interactive terminal session against the house.
type PlayCmd struct {
	Credits   int    `kong:"default='50',help='Starting credit balance'"`
	Decks     int    `kong:"default='4',help='Number of decks in the shoe (1-8)'"`
	HitSoft17 bool   `kong:"help='Dealer hits soft 17'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed for the shoe (optional)'"`
}

func (c *PlayCmd) Run() error {
	cfg := blackjack.DefaultConfig()
	cfg.StartingCredits = c.Credits
	cfg.NumDecks = c.Decks
	cfg.DealerHitsSoft17 = c.HitSoft17

	sess, err := blackjack.NewSession(cfg,
		blackjack.WithRNG(randutil.New(randutil.Seed(c.Seed))),
	)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(tui.New(sess)).Run()
	return err
}
