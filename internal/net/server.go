package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
)

// Server accepts websocket connections and routes their messages to the
// lobby manager and the games it runs.
type Server struct {
	Lobbies *LobbyManager
	Metrics *Metrics
}

// NewServer creates a server with its own lobby manager.
func NewServer(cfg LobbyConfig, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Server{Lobbies: NewLobbyManager(cfg, metrics), Metrics: metrics}
}

// Close aborts running games.
func (s *Server) Close() {
	s.Lobbies.Close()
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// The optional "name" query parameter sets the player's display name.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	nc := NewNetworkController(conn, r.URL.Query().Get("name"), s.Metrics)
	s.Metrics.Connections.Inc()
	defer s.Metrics.Connections.Dec()
	log.Printf("client %s (%s) connected", nc.Name(), nc.ID())

	ctx := r.Context()
	defer func() {
		nc.close()
		s.Lobbies.Leave(context.Background(), nc)
		log.Printf("client %s (%s) disconnected", nc.Name(), nc.ID())
	}()

	if err := s.readLoop(ctx, nc); err != nil && !isClosed(err) {
		log.Printf("client %s: %v", nc.ID(), err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func isClosed(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
		errors.Is(err, context.Canceled)
}

func (s *Server) readLoop(ctx context.Context, nc *NetworkController) error {
	for {
		_, data, err := nc.conn.Read(ctx)
		if err != nil {
			return err
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.protocolError(ctx, nc, fmt.Errorf("malformed message: %w", err))
			continue
		}
		s.Metrics.Messages.WithLabelValues(env.Type).Inc()
		if err := s.dispatch(ctx, nc, env); err != nil {
			s.protocolError(ctx, nc, err)
		}
	}
}

func (s *Server) protocolError(ctx context.Context, nc *NetworkController, err error) {
	if err := nc.send(ctx, TypeProtocolError, ProtocolErrorData{Message: err.Error()}); err != nil {
		log.Printf("client %s: %v", nc.ID(), err)
	}
}

// dispatch handles one client message. A returned error is reported to the
// client as PROTOCOL_ERROR and the connection stays open.
func (s *Server) dispatch(ctx context.Context, nc *NetworkController, env Envelope) error {
	switch env.Type {
	case TypeListLobbies:
		var req ListLobbiesRequest
		if len(env.Data) > 0 {
			if err := env.Decode(&req); err != nil {
				return err
			}
		}
		if req.Offset < 0 {
			return fmt.Errorf("%s: negative offset", env.Type)
		}
		return nc.send(ctx, TypeListLobbies, ListLobbiesData{Lobbies: s.Lobbies.List(req.Offset)})

	case TypeSubscribeLobbyUpdates:
		var req LobbyIDsRequest
		if err := env.Decode(&req); err != nil {
			return err
		}
		return s.Lobbies.Subscribe(nc, req.LobbyIDs)

	case TypeUnsubscribeLobbyUpdates:
		var req LobbyIDsRequest
		if err := env.Decode(&req); err != nil {
			return err
		}
		s.Lobbies.Unsubscribe(nc, req.LobbyIDs)
		return nil

	case TypeCreateLobby:
		var req CreateLobbyRequest
		if err := env.Decode(&req); err != nil {
			return err
		}
		_, err := s.Lobbies.Create(ctx, nc, req.Name)
		return err

	case TypeJoinLobby:
		var req JoinLobbyRequest
		if err := env.Decode(&req); err != nil {
			return err
		}
		return s.Lobbies.Join(ctx, nc, req.LobbyID)

	case TypePromptCardsResponse:
		var resp PromptCardsResponse
		if err := env.Decode(&resp); err != nil {
			return err
		}
		if !nc.deliver(resp.Selection()) {
			return errors.New("no prompt is pending")
		}
		return nil

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
}
