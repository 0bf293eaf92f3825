package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jeengbe/dominion/internal/config"
	"github.com/jeengbe/dominion/internal/game"
	dnet "github.com/jeengbe/dominion/internal/net"
	"github.com/jeengbe/dominion/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP address to listen on")
	flag.StringVar(&cfg.KingdomFile, "kingdoms", cfg.KingdomFile, "path to kingdoms YAML file")
	flag.StringVar(&cfg.Kingdom, "kingdom", cfg.Kingdom, "kingdom set every game is played with")
	flag.IntVar(&cfg.LobbySize, "players", cfg.LobbySize, "players per game")
	flag.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "turn limit per game")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed (0 = random)")
	logEvents := flag.Bool("log-events", false, "write game events to stdout")
	flag.Parse()

	if err := run(cfg, *logEvents); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logEvents bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	set, err := game.KingdomByName(cfg.KingdomFile, cfg.Kingdom)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	lobbyCfg := dnet.LobbyConfig{
		Size:          cfg.LobbySize,
		PageSize:      cfg.PageSize,
		Kingdom:       set,
		MaxViolations: cfg.MaxViolations,
		MaxTurns:      cfg.MaxTurns,
		Seed:          cfg.Seed,
	}
	if logEvents {
		lobbyCfg.EventLog = os.Stdout
	}
	gameServer := dnet.NewServer(lobbyCfg, dnet.NewMetrics(registry))
	defer gameServer.Close()

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewServer(gameServer, cfg.KingdomFile, registry),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("dominion server listening on %s (kingdom %q, %d players per game)", cfg.Addr, set.Name, cfg.LobbySize)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
