package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"sync"

	"github.com/google/uuid"

	"github.com/jeengbe/dominion/internal/game"
	"github.com/jeengbe/dominion/internal/log"
)

const (
	DefaultLobbySize = 2
	DefaultPageSize  = 20
)

// LobbyConfig controls lobby sizes and the games lobbies start.
type LobbyConfig struct {
	Size          int // members needed to start a game
	PageSize      int // lobbies per LIST_LOBBIES page
	Kingdom       game.KingdomSet
	MaxViolations int
	MaxTurns      int
	Seed          int64     // 0 seeds every game randomly
	EventLog      io.Writer // game events are written here when set
}

// Lobby groups clients waiting for, or playing, one game.
type Lobby struct {
	ID      string
	Name    string
	members []*NetworkController
	started bool
	cancel  context.CancelFunc
}

func (l *Lobby) view() LobbyView {
	v := LobbyView{
		LobbyID:    l.ID,
		Visibility: VisibilityPublic,
		Name:       l.Name,
		Clients:    make([]LobbyClient, 0, len(l.members)),
	}
	for _, m := range l.members {
		v.Clients = append(v.Clients, m.view())
	}
	return v
}

// outgoing is a message queued while the manager lock is held and sent
// after it is released.
type outgoing struct {
	to   *NetworkController
	typ  string
	data any
}

// LobbyManager tracks lobbies, their subscribers and running games.
type LobbyManager struct {
	cfg     LobbyConfig
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	lobbies map[string]*Lobby
	order   []string
	subs    map[string]map[*NetworkController]bool
}

// NewLobbyManager creates a manager. Games it starts are cancelled by Close.
func NewLobbyManager(cfg LobbyConfig, metrics *Metrics) *LobbyManager {
	if cfg.Size < 2 {
		cfg.Size = DefaultLobbySize
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LobbyManager{
		cfg:     cfg,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		lobbies: make(map[string]*Lobby),
		subs:    make(map[string]map[*NetworkController]bool),
	}
}

// Close aborts every running game and waits for them to finish.
func (m *LobbyManager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *LobbyManager) flush(ctx context.Context, out []outgoing) {
	for _, o := range out {
		if err := o.to.send(ctx, o.typ, o.data); err != nil {
			stdlog.Printf("lobby: %v", err)
		}
	}
}

// List returns one page of lobbies still waiting for players, oldest first.
func (m *LobbyManager) List(offset int) []LobbySummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []LobbySummary{}
	skipped := 0
	for _, id := range m.order {
		l := m.lobbies[id]
		if l.started {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, LobbySummary{LobbyID: l.ID, Name: l.Name, Players: len(l.members)})
		if len(out) == m.cfg.PageSize {
			break
		}
	}
	return out
}

// Subscribe registers nc for LOBBY_UPDATE messages about the given lobbies.
func (m *LobbyManager) Subscribe(nc *NetworkController, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.lobbies[id]; !ok {
			return fmt.Errorf("unknown lobby %q", id)
		}
	}
	for _, id := range ids {
		if m.subs[id] == nil {
			m.subs[id] = make(map[*NetworkController]bool)
		}
		m.subs[id][nc] = true
	}
	return nil
}

// Unsubscribe removes nc from the given lobbies' subscribers. Unknown ids
// are ignored.
func (m *LobbyManager) Unsubscribe(nc *NetworkController, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.subs[id], nc)
	}
}

// Create opens a new lobby and puts its creator in it.
func (m *LobbyManager) Create(ctx context.Context, nc *NetworkController, name string) (*Lobby, error) {
	if name == "" {
		return nil, errors.New("lobby name must not be empty")
	}
	m.mu.Lock()
	if nc.currentLobby() != nil {
		m.mu.Unlock()
		return nil, errors.New("already in a lobby")
	}
	l := &Lobby{ID: uuid.NewString(), Name: name}
	m.lobbies[l.ID] = l
	m.order = append(m.order, l.ID)
	m.metrics.OpenLobbies.Inc()
	out, start := m.addMember(l, nc)
	m.mu.Unlock()

	m.flush(ctx, out)
	if start != nil {
		start()
	}
	return l, nil
}

// Join adds nc to an open lobby. The lobby's game starts once it is full.
func (m *LobbyManager) Join(ctx context.Context, nc *NetworkController, id string) error {
	m.mu.Lock()
	l, ok := m.lobbies[id]
	switch {
	case !ok:
		m.mu.Unlock()
		return fmt.Errorf("unknown lobby %q", id)
	case l.started:
		m.mu.Unlock()
		return fmt.Errorf("lobby %q already started", l.Name)
	case nc.currentLobby() != nil:
		m.mu.Unlock()
		return errors.New("already in a lobby")
	}
	out, start := m.addMember(l, nc)
	m.mu.Unlock()

	m.flush(ctx, out)
	if start != nil {
		start()
	}
	return nil
}

// addMember must be called with mu held. It returns the messages to send and,
// when the lobby just filled up, a function starting its game.
func (m *LobbyManager) addMember(l *Lobby, nc *NetworkController) ([]outgoing, func()) {
	l.members = append(l.members, nc)
	nc.setLobby(l)

	out := []outgoing{{nc, TypeLobbyDetails, LobbyDetailsData{Lobby: l.view()}}}
	for _, other := range l.members {
		if other != nc {
			out = append(out, outgoing{other, TypeLobbyClientAdd, LobbyClientAddData{Client: nc.view()}})
		}
	}
	out = append(out, m.updateSubscribers(l)...)

	if len(l.members) < m.cfg.Size {
		return out, nil
	}
	l.started = true
	m.metrics.OpenLobbies.Dec()
	ctx, cancel := context.WithCancel(m.ctx)
	l.cancel = cancel
	members := append([]*NetworkController(nil), l.members...)
	m.wg.Add(1)
	return out, func() { go m.runGame(ctx, l, members) }
}

func (m *LobbyManager) updateSubscribers(l *Lobby) []outgoing {
	players := len(l.members)
	var out []outgoing
	for sub := range m.subs[l.ID] {
		out = append(out, outgoing{sub, TypeLobbyUpdate, LobbyUpdateData{Lobby: LobbyPatch{LobbyID: l.ID, Players: &players}}})
	}
	return out
}

// Leave removes a disconnecting client from its lobby and every
// subscription. A running game the client belongs to is aborted.
func (m *LobbyManager) Leave(ctx context.Context, nc *NetworkController) {
	m.mu.Lock()
	for _, subs := range m.subs {
		delete(subs, nc)
	}
	l := nc.currentLobby()
	if l == nil {
		m.mu.Unlock()
		return
	}
	if l.started {
		m.mu.Unlock()
		l.cancel()
		return
	}

	for i, member := range l.members {
		if member == nc {
			l.members = append(l.members[:i], l.members[i+1:]...)
			break
		}
	}
	nc.setLobby(nil)

	var out []outgoing
	for _, other := range l.members {
		out = append(out, outgoing{other, TypeLobbyClientRemove, LobbyClientRemoveData{ClientID: nc.ID()}})
	}
	out = append(out, m.updateSubscribers(l)...)
	if len(l.members) == 0 {
		m.removeLobby(l)
		m.metrics.OpenLobbies.Dec()
	}
	m.mu.Unlock()

	m.flush(ctx, out)
}

// removeLobby must be called with mu held.
func (m *LobbyManager) removeLobby(l *Lobby) {
	delete(m.lobbies, l.ID)
	delete(m.subs, l.ID)
	for i, id := range m.order {
		if id == l.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *LobbyManager) runGame(ctx context.Context, l *Lobby, members []*NetworkController) {
	defer m.wg.Done()
	defer l.cancel()
	m.metrics.ActiveGames.Inc()
	defer m.metrics.ActiveGames.Dec()

	stdlog.Printf("lobby %s (%s): starting game with %d players", l.Name, l.ID, len(members))
	result, scores, err := m.playGame(ctx, members)
	outcome := "completed"
	if err != nil {
		outcome = "aborted"
		result = fmt.Sprintf("game aborted: %v", err)
		stdlog.Printf("lobby %s (%s): %v", l.Name, l.ID, err)
	}
	m.metrics.GamesFinished.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	m.removeLobby(l)
	for _, nc := range members {
		nc.setLobby(nil)
	}
	m.mu.Unlock()

	data := GameOverData{Result: result, Scores: scores}
	for _, nc := range members {
		if err := nc.send(context.Background(), TypeGameOver, data); err != nil {
			stdlog.Printf("lobby %s: %v", l.ID, err)
		}
	}
}

func (m *LobbyManager) playGame(ctx context.Context, members []*NetworkController) (string, []ScoreView, error) {
	var logger log.EventLogger = log.NewMemoryLogger()
	if m.cfg.EventLog != nil {
		logger = log.NewTextLogger(m.cfg.EventLog)
	}
	k := game.NewKingdom(game.Config{
		Logger:        logger,
		Seed:          m.cfg.Seed,
		MaxTurns:      m.cfg.MaxTurns,
		MaxViolations: m.cfg.MaxViolations,
	})
	if err := k.SetupGame(m.cfg.Kingdom, len(members)); err != nil {
		return "", nil, err
	}
	clients := make(map[*game.Player]*NetworkController, len(members))
	for _, nc := range members {
		p, err := k.NewPlayer(nc.Name(), nc)
		if err != nil {
			return "", nil, err
		}
		clients[p] = nc
	}

	if err := k.Run(ctx); err != nil {
		return "", nil, err
	}

	var scores []ScoreView
	for _, s := range k.Scores() {
		nc := clients[s.Player]
		scores = append(scores, ScoreView{ClientID: nc.ID(), Name: nc.Name(), Points: s.Points})
	}
	return k.Result(), scores, nil
}
