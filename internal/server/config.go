package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjackd/internal/blackjack"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  *TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	IdleTimeout string `hcl:"idle_timeout,optional"`
}

// TableConfig defines the table rules handed to each new session.
type TableConfig struct {
	StartingCredits  int  `hcl:"starting_credits,optional"`
	NumDecks         int  `hcl:"num_decks,optional"`
	PayoutNum        int  `hcl:"payout_numerator,optional"`
	PayoutDen        int  `hcl:"payout_denominator,optional"`
	DealerHitsSoft17 bool `hcl:"dealer_hits_soft_17,optional"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	rules := blackjack.DefaultConfig()
	return &Config{
		Server: ServerSettings{
			Address:     ":8089",
			LogLevel:    "info",
			IdleTimeout: "10m",
		},
		Table: &TableConfig{
			StartingCredits:  rules.StartingCredits,
			NumDecks:         rules.NumDecks,
			PayoutNum:        rules.PayoutNum,
			PayoutDen:        rules.PayoutDen,
			DealerHitsSoft17: rules.DealerHitsSoft17,
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults; missing values are filled in from the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaults.Server.Address
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = defaults.Server.LogLevel
	}
	if cfg.Server.IdleTimeout == "" {
		cfg.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if cfg.Table == nil {
		cfg.Table = defaults.Table
	} else {
		if cfg.Table.StartingCredits == 0 {
			cfg.Table.StartingCredits = defaults.Table.StartingCredits
		}
		if cfg.Table.NumDecks == 0 {
			cfg.Table.NumDecks = defaults.Table.NumDecks
		}
		if cfg.Table.PayoutNum == 0 {
			cfg.Table.PayoutNum = defaults.Table.PayoutNum
		}
		if cfg.Table.PayoutDen == 0 {
			cfg.Table.PayoutDen = defaults.Table.PayoutDen
		}
	}

	if err := cfg.Rules().Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}
	if _, err := cfg.ParsedIdleTimeout(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Rules converts the table block into the engine config.
func (c *Config) Rules() blackjack.Config {
	return blackjack.Config{
		StartingCredits:  c.Table.StartingCredits,
		NumDecks:         c.Table.NumDecks,
		PayoutNum:        c.Table.PayoutNum,
		PayoutDen:        c.Table.PayoutDen,
		DealerHitsSoft17: c.Table.DealerHitsSoft17,
	}
}

// ParsedIdleTimeout returns the idle-session timeout as a duration. Zero
// disables reaping.
func (c *Config) ParsedIdleTimeout() (time.Duration, error) {
	if c.Server.IdleTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid idle_timeout %q: %w", c.Server.IdleTimeout, err)
	}
	return d, nil
}
