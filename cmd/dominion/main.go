package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jeengbe/dominion/internal/config"
	dnet "github.com/jeengbe/dominion/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "play":
		err = runPlay(cfg, os.Args[2:])
	case "lobbies":
		err = runLobbies(cfg, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  dominion play [--server URL] [--name NAME]")
	fmt.Println("  dominion lobbies [--server URL] [--offset N]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play       Connect to a server and play from the terminal")
	fmt.Println("  lobbies    Print the lobbies waiting for players")
}

func runPlay(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	server := fs.String("server", cfg.ServerURL, "websocket URL of the game server")
	name := fs.String("name", os.Getenv("USER"), "player name")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := dnet.Dial(ctx, *server, *name)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("Connected to %s as %s\n", *server, *name)
	return client.RunREPL(ctx, os.Stdin, os.Stdout)
}

func runLobbies(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("lobbies", flag.ExitOnError)
	server := fs.String("server", cfg.ServerURL, "websocket URL of the game server")
	offset := fs.Int("offset", 0, "lobbies to skip")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dnet.Dial(ctx, *server, "")
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Send(ctx, dnet.TypeListLobbies, dnet.ListLobbiesRequest{Offset: *offset}); err != nil {
		return err
	}
	for {
		env, err := client.Read(ctx)
		if err != nil {
			return err
		}
		if env.Type != dnet.TypeListLobbies {
			continue
		}
		var data dnet.ListLobbiesData
		if err := env.Decode(&data); err != nil {
			return err
		}
		if len(data.Lobbies) == 0 {
			fmt.Println("No open lobbies.")
		}
		for _, l := range data.Lobbies {
			fmt.Printf("%s  %-20s %d players\n", l.LobbyID, l.Name, l.Players)
		}
		return nil
	}
}
