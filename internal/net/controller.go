package net

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/jeengbe/dominion/internal/game"
	"github.com/jeengbe/dominion/internal/log"
)

// ErrDisconnected is returned to the engine when a client goes away while a
// prompt is outstanding.
var ErrDisconnected = errors.New("client disconnected")

// NetworkController implements game.Client over a websocket connection.
// Responses are fed in by the connection's read loop through deliver.
type NetworkController struct {
	id      string
	name    string
	conn    *websocket.Conn
	metrics *Metrics

	mu      sync.Mutex
	pending chan game.Selection // non-nil while a prompt is outstanding
	lobby   *Lobby

	closed    chan struct{}
	closeOnce sync.Once
}

// NewNetworkController creates a controller with a fresh client id. An empty
// name is replaced by one derived from the id.
func NewNetworkController(conn *websocket.Conn, name string, metrics *Metrics) *NetworkController {
	id := uuid.NewString()
	if name == "" {
		name = "player-" + id[:8]
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &NetworkController{
		id:      id,
		name:    name,
		conn:    conn,
		metrics: metrics,
		closed:  make(chan struct{}),
	}
}

func (nc *NetworkController) ID() string   { return nc.id }
func (nc *NetworkController) Name() string { return nc.name }

func (nc *NetworkController) view() LobbyClient {
	return LobbyClient{ClientID: nc.id, Name: nc.name}
}

func (nc *NetworkController) currentLobby() *Lobby {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.lobby
}

func (nc *NetworkController) setLobby(l *Lobby) {
	nc.mu.Lock()
	nc.lobby = l
	nc.mu.Unlock()
}

// send writes one envelope. websocket.Conn allows concurrent writers.
func (nc *NetworkController) send(ctx context.Context, typ string, data any) error {
	env, err := NewEnvelope(typ, data)
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, nc.conn, env); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// deliver hands a response to the waiting prompt. It reports false when no
// prompt is outstanding.
func (nc *NetworkController) deliver(sel game.Selection) bool {
	nc.mu.Lock()
	ch := nc.pending
	nc.pending = nil
	nc.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- sel
	return true
}

func (nc *NetworkController) close() {
	nc.closeOnce.Do(func() { close(nc.closed) })
}

// PromptCards implements game.Client.
func (nc *NetworkController) PromptCards(ctx context.Context, prompt game.Prompt) (game.Selection, error) {
	ch := make(chan game.Selection, 1)
	nc.mu.Lock()
	if nc.pending != nil {
		nc.mu.Unlock()
		return game.Selection{}, fmt.Errorf("prompt %s: another prompt is outstanding", nc.name)
	}
	nc.pending = ch
	nc.mu.Unlock()
	defer func() {
		nc.mu.Lock()
		if nc.pending == ch {
			nc.pending = nil
		}
		nc.mu.Unlock()
	}()

	if err := nc.send(ctx, TypePromptCards, BuildPromptView(prompt)); err != nil {
		return game.Selection{}, err
	}
	nc.metrics.Prompts.Inc()

	select {
	case sel := <-ch:
		return sel, nil
	case <-nc.closed:
		return game.Selection{}, fmt.Errorf("prompt %s: %w", nc.name, ErrDisconnected)
	case <-ctx.Done():
		return game.Selection{}, ctx.Err()
	}
}

// ReportViolation implements game.Client.
func (nc *NetworkController) ReportViolation(ctx context.Context, err error) error {
	nc.metrics.Violations.Inc()
	return nc.send(ctx, TypeProtocolError, ProtocolErrorData{Message: err.Error()})
}

// Notify implements game.Client.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	return nc.send(ctx, TypeGameEvent, GameEventData{Event: BuildEventView(event)})
}
