// Package mcpserver exposes a blackjack session as MCP tools over stdio.
// Tool inputs and outputs are typed structs; the SDK derives their JSON
// schemas from the struct tags.
package mcpserver

import (
	"context"
	"errors"

	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/lox/blackjackd/internal/protocol"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InitGameInput configures a new game. Omitted fields fall back to the house
// defaults.
type InitGameInput struct {
	StartingCredits  *int  `json:"starting_credits,omitempty" jsonschema:"starting credit balance (default 50)"`
	NumDecks         *int  `json:"num_decks,omitempty" jsonschema:"number of decks in the shoe, 1-8 (default 4)"`
	PayoutNum        *int  `json:"bj_pay_n,omitempty" jsonschema:"blackjack payout numerator (default 3)"`
	PayoutDen        *int  `json:"bj_pay_d,omitempty" jsonschema:"blackjack payout denominator (default 2)"`
	DealerHitsSoft17 *bool `json:"dealer_hits_soft_17,omitempty" jsonschema:"dealer hits soft 17 (default false)"`
}

// AmountInput carries a credit amount.
type AmountInput struct {
	Amount int `json:"amount" jsonschema:"credit amount, must be positive"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// ActionResult is the output of every tool: the visible table state plus a
// human-readable message.
type ActionResult struct {
	State   blackjack.View `json:"state" jsonschema:"visible table state, dealer hole card masked while a round is active"`
	Message string         `json:"message" jsonschema:"human-readable outcome"`
}

// InitGameTool defines the MCP tool schema for starting a new game.
func InitGameTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "init_game",
		Description: "Starts a new blackjack game with the given table rules",
	}
}

// AddCreditsTool defines the MCP tool schema for adding credits.
func AddCreditsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_credits",
		Description: "Adds credits to the player's balance",
	}
}

// GetStateTool defines the MCP tool schema for reading the table state.
func GetStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_state",
		Description: "Returns the visible table state; the dealer hole card is hidden in-round and revealed after settlement",
	}
}

// ResetTool defines the MCP tool schema for resetting the session.
func ResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "reset",
		Description: "Resets the session: credits to zero, fresh shoe, same rules",
	}
}

// PlaceBetTool defines the MCP tool schema for placing a bet.
func PlaceBetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "place_bet",
		Description: "Places a bet and deals the initial hands; naturals settle immediately",
	}
}

// HitTool defines the MCP tool schema for taking a card.
func HitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "hit",
		Description: "Draws one card for the player; busting ends the round",
	}
}

// StandTool defines the MCP tool schema for standing.
func StandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stand",
		Description: "Ends the player's turn; the dealer plays and the round settles",
	}
}

// DoubleDownTool defines the MCP tool schema for doubling down.
func DoubleDownTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "double_down",
		Description: "Doubles the bet for exactly one more card, then the dealer plays",
	}
}

// InitGameHandler starts a new game over the session.
func InitGameHandler(sess *blackjack.Session) mcp.ToolHandlerFor[InitGameInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InitGameInput) (*mcp.CallToolResult, ActionResult, error) {
		cfg := blackjack.DefaultConfig()
		if input.StartingCredits != nil {
			cfg.StartingCredits = *input.StartingCredits
		}
		if input.NumDecks != nil {
			cfg.NumDecks = *input.NumDecks
		}
		if input.PayoutNum != nil {
			cfg.PayoutNum = *input.PayoutNum
		}
		if input.PayoutDen != nil {
			cfg.PayoutDen = *input.PayoutDen
		}
		if input.DealerHitsSoft17 != nil {
			cfg.DealerHitsSoft17 = *input.DealerHitsSoft17
		}

		if err := sess.Reconfigure(cfg); err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpInitGame, nil)}, nil
	}
}

// AddCreditsHandler adds credits to the balance.
func AddCreditsHandler(sess *blackjack.Session) mcp.ToolHandlerFor[AmountInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AmountInput) (*mcp.CallToolResult, ActionResult, error) {
		if err := sess.AddCredits(input.Amount); err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpAddCredits, nil)}, nil
	}
}

// GetStateHandler returns the visible state.
func GetStateHandler(sess *blackjack.Session) mcp.ToolHandlerFor[EmptyInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionResult, error) {
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpGetState, nil)}, nil
	}
}

// ResetHandler resets the session keeping the rules.
func ResetHandler(sess *blackjack.Session) mcp.ToolHandlerFor[EmptyInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionResult, error) {
		sess.Reset()
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpReset, nil)}, nil
	}
}

// PlaceBetHandler places a bet and deals.
func PlaceBetHandler(sess *blackjack.Session) mcp.ToolHandlerFor[AmountInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AmountInput) (*mcp.CallToolResult, ActionResult, error) {
		res, err := sess.PlaceBet(input.Amount)
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpPlaceBet, res)}, nil
	}
}

// HitHandler draws one card for the player. Hitting an idle table is an
// informational no-op, matching the table's behavior rather than an error.
func HitHandler(sess *blackjack.Session) mcp.ToolHandlerFor[EmptyInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionResult, error) {
		res, err := sess.Hit()
		if err != nil {
			if errors.Is(err, blackjack.ErrNoRound) {
				return nil, ActionResult{State: sess.View(), Message: protocol.NoRoundMessage}, nil
			}
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpHit, res)}, nil
	}
}

// StandHandler ends the player's turn.
func StandHandler(sess *blackjack.Session) mcp.ToolHandlerFor[EmptyInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionResult, error) {
		res, err := sess.Stand()
		if err != nil {
			if errors.Is(err, blackjack.ErrNoRound) {
				return nil, ActionResult{State: sess.View(), Message: protocol.NoRoundMessage}, nil
			}
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpStand, res)}, nil
	}
}

// DoubleDownHandler doubles the bet for one card.
func DoubleDownHandler(sess *blackjack.Session) mcp.ToolHandlerFor[EmptyInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionResult, error) {
		res, err := sess.DoubleDown()
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{State: sess.View(), Message: protocol.Describe(protocol.OpDoubleDown, res)}, nil
	}
}
