package main

import (
	"context"
	"errors"

	"github.com/lox/blackjackd/cmd/blackjackd/shared"
	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/mcpserver"
	"github.com/lox/blackjackd/internal/randutil"
)

// McpCmd serves a single shared session as MCP tools over stdio. Logs go to
// stderr; stdout belongs to the protocol.
type McpCmd struct {
	Debug bool   `kong:"help='Enable debug logging'"`
	Seed  *int64 `kong:"help='Deterministic RNG seed for the shoe (optional)'"`
}

func (c *McpCmd) Run() error {
	logger := shared.SetupStructuredLogger(c.Debug)

	seed := randutil.Seed(c.Seed)
	sess, err := blackjack.NewSession(blackjack.DefaultConfig(),
		blackjack.WithRNG(randutil.New(seed)),
	)
	if err != nil {
		return err
	}

	logger.Info().Int64("seed", seed).Msg("Serving blackjack over MCP stdio")

	ctx := shared.SetupSignalHandler(logger)
	if err := mcpserver.Serve(ctx, sess); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
