package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjackd/cmd/blackjackd/shared"
	"github.com/lox/blackjackd/internal/randutil"
	"github.com/lox/blackjackd/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs the websocket table server.
type ServeCmd struct {
	Addr   string `kong:"help='Listen address (overrides config)'"`
	Config string `kong:"help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for session shoes (optional)'"`
}

func (c *ServeCmd) Run() error {
	zlog := shared.SetupLogger(c.Debug)

	cfg := server.DefaultConfig()
	if c.Config != "" {
		loaded, err := server.LoadConfig(c.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	seed := randutil.Seed(c.Seed)
	zlog.Info().
		Str("address", cfg.Server.Address).
		Int64("seed", seed).
		Int("starting_credits", cfg.Table.StartingCredits).
		Int("num_decks", cfg.Table.NumDecks).
		Bool("dealer_hits_soft_17", cfg.Table.DealerHitsSoft17).
		Msg("Starting blackjackd server")

	level := log.InfoLevel
	if c.Debug || cfg.Server.LogLevel == "debug" {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	srv := server.NewServer(cfg, logger, seed)
	if err := srv.Start(); err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(zlog)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
