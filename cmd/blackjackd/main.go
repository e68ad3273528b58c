package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the websocket table server"`
	Mcp      McpCmd           `cmd:"" help:"Serve the table as MCP tools over stdio"`
	Play     PlayCmd          `cmd:"" help:"Play an interactive session in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Run automated rounds and report the results"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjackd"),
		kong.Description("Single-table blackjack round engine with websocket and MCP surfaces"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
