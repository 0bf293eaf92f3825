package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	dnet "github.com/jeengbe/dominion/internal/net"
)

// DecisionType identifies what the session is waiting on.
type DecisionType string

const (
	DecisionPromptCards  DecisionType = "prompt_cards"
	DecisionGameOver     DecisionType = "game_over"
	DecisionDisconnected DecisionType = "disconnected"
)

// PendingDecision is something the game server needs, or told, the seat.
type PendingDecision struct {
	Type     DecisionType
	Prompt   *dnet.PromptView
	GameOver *dnet.GameOverData
	Err      error
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []dnet.EventView    `json:"events"`
	Errors   []string            `json:"errors,omitempty"`
	Lobby    *dnet.LobbyView     `json:"lobby,omitempty"`
	Lobbies  []dnet.LobbySummary `json:"lobbies,omitempty"`
	Pending  *PendingView        `json:"pending,omitempty"`
	GameOver bool                `json:"game_over"`
	Result   string              `json:"result,omitempty"`
	Scores   []dnet.ScoreView    `json:"scores,omitempty"`
}

// PendingView is the pending prompt as presented in the tool response JSON.
type PendingView struct {
	Kind       string          `json:"kind"`
	Zone       string          `json:"zone"`
	Message    string          `json:"message,omitempty"`
	Min        int             `json:"min"`
	Max        int             `json:"max"`
	AllowStop  bool            `json:"allow_stop"`
	Candidates []CandidateView `json:"candidates"`
}

// CandidateView is one selectable entry, addressed by its 0-based index.
type CandidateView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Left  int    `json:"left,omitempty"`
}

func buildPendingView(pv *dnet.PromptView) *PendingView {
	v := &PendingView{
		Kind:      pv.Kind,
		Zone:      pv.Zone,
		Message:   pv.Message,
		Min:       pv.Min,
		Max:       pv.Max,
		AllowStop: pv.AllowStop,
	}
	for i, c := range pv.Candidates {
		v.Candidates = append(v.Candidates, CandidateView{Index: i, Name: c.Name, Cost: c.Cost, Left: c.Count})
	}
	return v
}

// reply answers a lobby request: a listing, the joined lobby or a rejection.
type reply struct {
	lobbies []dnet.LobbySummary
	lobby   *dnet.LobbyView
	err     error
}

// GameSession is one seat connected to a dominion server.
type GameSession struct {
	client *dnet.Client
	cancel context.CancelFunc

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	// reqMu serializes lobby requests so replies can be matched in order.
	reqMu   sync.Mutex
	replyCh chan reply

	mu       sync.Mutex
	awaiting bool
	events   []dnet.EventView
	errors   []string
	lobby    *dnet.LobbyView
	gameOver *dnet.GameOverData
	closed   bool
}

// NewGameSession connects to the server at serverURL as the named player.
func NewGameSession(ctx context.Context, serverURL, name string) (*GameSession, error) {
	client, err := dnet.Dial(ctx, serverURL, name)
	if err != nil {
		return nil, err
	}
	pumpCtx, cancel := context.WithCancel(context.Background())
	s := &GameSession{
		client:    client,
		cancel:    cancel,
		pendingCh: make(chan *PendingDecision, 1),
		replyCh:   make(chan reply, 1),
	}
	go s.pump(pumpCtx)
	return s, nil
}

// Close disconnects from the server.
func (s *GameSession) Close() {
	s.cancel()
	s.client.Close()
}

// pump routes server messages until the connection fails.
func (s *GameSession) pump(ctx context.Context) {
	for {
		env, err := s.client.Read(ctx)
		if err != nil {
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			s.answer(reply{err: err})
			s.post(&PendingDecision{Type: DecisionDisconnected, Err: err})
			return
		}
		if err := s.route(env); err != nil {
			log.Printf("mcp session: %v", err)
		}
	}
}

func (s *GameSession) route(env dnet.Envelope) error {
	switch env.Type {
	case dnet.TypeListLobbies:
		var data dnet.ListLobbiesData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.answer(reply{lobbies: data.Lobbies})

	case dnet.TypeLobbyDetails:
		var data dnet.LobbyDetailsData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.mu.Lock()
		s.lobby = &data.Lobby
		s.gameOver = nil
		s.mu.Unlock()
		s.answer(reply{lobby: &data.Lobby})

	case dnet.TypeLobbyClientAdd:
		var data dnet.LobbyClientAddData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.mu.Lock()
		if s.lobby != nil {
			s.lobby.Clients = append(s.lobby.Clients, data.Client)
		}
		s.mu.Unlock()

	case dnet.TypeLobbyClientRemove:
		var data dnet.LobbyClientRemoveData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.mu.Lock()
		if s.lobby != nil {
			clients := s.lobby.Clients[:0]
			for _, c := range s.lobby.Clients {
				if c.ClientID != data.ClientID {
					clients = append(clients, c)
				}
			}
			s.lobby.Clients = clients
		}
		s.mu.Unlock()

	case dnet.TypeGameEvent:
		var data dnet.GameEventData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.appendEvent(data.Event)

	case dnet.TypeProtocolError:
		var data dnet.ProtocolErrorData
		if err := env.Decode(&data); err != nil {
			return err
		}
		if !s.answer(reply{err: errors.New(data.Message)}) {
			s.mu.Lock()
			s.errors = append(s.errors, data.Message)
			s.mu.Unlock()
		}

	case dnet.TypePromptCards:
		var pv dnet.PromptView
		if err := env.Decode(&pv); err != nil {
			return err
		}
		s.post(&PendingDecision{Type: DecisionPromptCards, Prompt: &pv})

	case dnet.TypeGameOver:
		var data dnet.GameOverData
		if err := env.Decode(&data); err != nil {
			return err
		}
		s.mu.Lock()
		s.gameOver = &data
		s.lobby = nil
		s.mu.Unlock()
		s.post(&PendingDecision{Type: DecisionGameOver, GameOver: &data})
	}
	return nil
}

// post queues the next decision without blocking the pump. A queued prompt
// nobody picked up is stale and gets replaced; a queued game over or
// disconnect is kept.
func (s *GameSession) post(d *PendingDecision) {
	select {
	case s.pendingCh <- d:
		return
	default:
	}
	select {
	case queued := <-s.pendingCh:
		if queued.Type != DecisionPromptCards {
			d = queued
		}
	default:
	}
	select {
	case s.pendingCh <- d:
	default:
	}
}

// answer hands r to a waiting lobby request. It reports false when nobody
// is waiting.
func (s *GameSession) answer(r reply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.awaiting {
		return false
	}
	s.awaiting = false
	s.replyCh <- r
	return true
}

// request sends a lobby message and waits for the server's answer.
func (s *GameSession) request(ctx context.Context, typ string, data any) (reply, error) {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return reply{}, errors.New("disconnected from server")
	}
	s.awaiting = true
	s.mu.Unlock()

	if err := s.client.Send(ctx, typ, data); err != nil {
		s.mu.Lock()
		s.awaiting = false
		s.mu.Unlock()
		return reply{}, err
	}
	select {
	case r := <-s.replyCh:
		return r, r.err
	case <-ctx.Done():
		s.mu.Lock()
		if !s.awaiting {
			// the answer arrived anyway; drop it
			<-s.replyCh
		}
		s.awaiting = false
		s.mu.Unlock()
		return reply{}, ctx.Err()
	}
}

// ListLobbies fetches one page of open lobbies.
func (s *GameSession) ListLobbies(ctx context.Context, offset int) ([]dnet.LobbySummary, error) {
	r, err := s.request(ctx, dnet.TypeListLobbies, dnet.ListLobbiesRequest{Offset: offset})
	return r.lobbies, err
}

// CreateLobby opens a lobby with this seat as its first member.
func (s *GameSession) CreateLobby(ctx context.Context, name string) (*dnet.LobbyView, error) {
	r, err := s.request(ctx, dnet.TypeCreateLobby, dnet.CreateLobbyRequest{Name: name})
	return r.lobby, err
}

// JoinLobby joins an open lobby.
func (s *GameSession) JoinLobby(ctx context.Context, id string) (*dnet.LobbyView, error) {
	r, err := s.request(ctx, dnet.TypeJoinLobby, dnet.JoinLobbyRequest{LobbyID: id})
	return r.lobby, err
}

// Respond answers the current prompt with a line of 1-based candidate
// numbers, or "s" to stop.
func (s *GameSession) Respond(ctx context.Context, line string) error {
	pending := s.currentPending
	if pending == nil || pending.Type != DecisionPromptCards {
		return errors.New("no prompt is pending")
	}
	resp, err := dnet.ParseSelection(*pending.Prompt, line)
	if err != nil {
		return err
	}
	if err := s.client.Send(ctx, dnet.TypePromptCardsResponse, resp); err != nil {
		return err
	}
	s.currentPending = nil
	return nil
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev dnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drain returns the accumulated events and errors and clears both buffers.
func (s *GameSession) drain() ([]dnet.EventView, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, errs := s.events, s.errors
	s.events, s.errors = nil, nil
	if events == nil {
		events = []dnet.EventView{}
	}
	return events, errs
}

// waitForPending blocks until the next decision arrives from the server,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	if s.currentPending == nil {
		select {
		case pending := <-s.pendingCh:
			s.currentPending = pending
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	pending := s.currentPending
	if pending.Type == DecisionDisconnected {
		return nil, fmt.Errorf("disconnected from server: %w", pending.Err)
	}
	resp := s.snapshot()
	if pending.Type == DecisionGameOver {
		s.currentPending = nil
	}
	return resp, nil
}

// snapshot describes the session without waiting.
func (s *GameSession) snapshot() *ToolResponse {
	resp := &ToolResponse{}
	resp.Events, resp.Errors = s.drain()

	s.mu.Lock()
	if s.lobby != nil {
		lobby := *s.lobby
		resp.Lobby = &lobby
	}
	if s.gameOver != nil {
		resp.GameOver = true
		resp.Result = s.gameOver.Result
		resp.Scores = s.gameOver.Scores
	}
	s.mu.Unlock()

	if p := s.currentPending; p != nil && p.Type == DecisionPromptCards {
		resp.Pending = buildPendingView(p.Prompt)
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
