package mcpserver

import (
	"context"

	"github.com/lox/blackjackd/internal/blackjack"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "blackjackd"
	serverVersion = "0.1.0"
)

// New builds an MCP server exposing the session's operations as tools.
func New(sess *blackjack.Session) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, InitGameTool(), InitGameHandler(sess))
	mcp.AddTool(server, AddCreditsTool(), AddCreditsHandler(sess))
	mcp.AddTool(server, GetStateTool(), GetStateHandler(sess))
	mcp.AddTool(server, ResetTool(), ResetHandler(sess))
	mcp.AddTool(server, PlaceBetTool(), PlaceBetHandler(sess))
	mcp.AddTool(server, HitTool(), HitHandler(sess))
	mcp.AddTool(server, StandTool(), StandHandler(sess))
	mcp.AddTool(server, DoubleDownTool(), DoubleDownHandler(sess))

	return server
}

// Serve runs the MCP server on stdio until the context is cancelled or the
// client disconnects.
func Serve(ctx context.Context, sess *blackjack.Session) error {
	return New(sess).Run(ctx, &mcp.StdioTransport{})
}
