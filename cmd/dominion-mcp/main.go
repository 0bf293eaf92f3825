package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jeengbe/dominion/internal/config"
	dmcp "github.com/jeengbe/dominion/internal/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	serverURL := flag.String("server", cfg.ServerURL, "websocket URL of the game server")
	name := flag.String("name", "agent", "player name shown in lobbies")
	flag.Parse()

	ctrl := dmcp.NewController(*serverURL, *name)
	defer ctrl.Close()

	s := server.NewMCPServer("dominion", "1.0.0")
	ctrl.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
