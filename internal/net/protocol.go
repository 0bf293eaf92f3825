package net

import (
	"encoding/json"
	"fmt"

	"github.com/jeengbe/dominion/internal/game"
	"github.com/jeengbe/dominion/internal/log"
)

// Message types for the JSON protocol over websocket. Every message is an
// Envelope whose data depends on the type.

// Client → Server
const (
	TypeListLobbies             = "LIST_LOBBIES"
	TypeSubscribeLobbyUpdates   = "SUBSCRIBE_LOBBY_UPDATES"
	TypeUnsubscribeLobbyUpdates = "UNSUBSCRIBE_LOBBY_UPDATES"
	TypeCreateLobby             = "CREATE_LOBBY"
	TypeJoinLobby               = "JOIN_LOBBY"
	TypePromptCardsResponse     = "PROMPT_CARDS_RESPONSE"
)

// Server → Client
const (
	// TypeListLobbies is used in both directions.
	TypeLobbyUpdate       = "LOBBY_UPDATE"
	TypeLobbyDetails      = "LOBBY_DETAILS"
	TypeLobbyClientAdd    = "LOBBY_CLIENT_ADD"
	TypeLobbyClientRemove = "LOBBY_CLIENT_REMOVE"
	TypeLobbyClientUpdate = "LOBBY_CLIENT_UPDATE"
	TypePromptCards       = "PROMPT_CARDS"
	TypeGameEvent         = "GAME_EVENT"
	TypeProtocolError     = "PROTOCOL_ERROR"
	TypeGameOver          = "GAME_OVER"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope of the given type.
func NewEnvelope(typ string, data any) (Envelope, error) {
	env := Envelope{Type: typ}
	if data == nil {
		return env, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", typ, err)
	}
	env.Data = raw
	return env, nil
}

// Decode unmarshals the envelope's data into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: missing data", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%s: %w", e.Type, err)
	}
	return nil
}

// --- Client → Server payloads ---

type ListLobbiesRequest struct {
	Offset int `json:"offset"`
}

type LobbyIDsRequest struct {
	LobbyIDs []string `json:"lobbyIds"`
}

type CreateLobbyRequest struct {
	Name string `json:"name"`
}

type JoinLobbyRequest struct {
	LobbyID string `json:"lobbyId"`
}

// PromptCardsResponse answers the pending PROMPT_CARDS. Exactly one of the
// two arrays is non-null; a single null element means "stop".
type PromptCardsResponse struct {
	PileIDs []*string `json:"pileIds"`
	CardIDs []*string `json:"cardIds"`
}

// Selection converts the response into the engine's raw selection.
func (r PromptCardsResponse) Selection() game.Selection {
	return game.Selection{PileIDs: r.PileIDs, CardIDs: r.CardIDs}
}

// ResponseFromSelection is the inverse of Selection, used by clients.
func ResponseFromSelection(sel game.Selection) PromptCardsResponse {
	return PromptCardsResponse{PileIDs: sel.PileIDs, CardIDs: sel.CardIDs}
}

// --- Server → Client payloads ---

// Lobby visibilities.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// LobbySummary is one row of a lobby listing.
type LobbySummary struct {
	LobbyID string `json:"lobbyId"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

type ListLobbiesData struct {
	Lobbies []LobbySummary `json:"lobbies"`
}

// LobbyPatch carries only the fields that changed.
type LobbyPatch struct {
	LobbyID string  `json:"lobbyId"`
	Name    *string `json:"name,omitempty"`
	Players *int    `json:"players,omitempty"`
}

type LobbyUpdateData struct {
	Lobby LobbyPatch `json:"lobby"`
}

type LobbyClient struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
}

// LobbyView is the full description of a lobby sent to its members.
type LobbyView struct {
	LobbyID    string        `json:"lobbyId"`
	Visibility string        `json:"visibility"`
	Name       string        `json:"name"`
	Clients    []LobbyClient `json:"clients"`
}

type LobbyDetailsData struct {
	Lobby LobbyView `json:"lobby"`
}

type LobbyClientAddData struct {
	Client LobbyClient `json:"client"`
}

type LobbyClientRemoveData struct {
	ClientID string `json:"clientId"`
}

type LobbyClientPatch struct {
	ClientID string  `json:"clientId"`
	Name     *string `json:"name,omitempty"`
}

type LobbyClientUpdateData struct {
	Client LobbyClientPatch `json:"client"`
}

// PromptView describes the pending decision so a client can render it.
type PromptView struct {
	Kind       string          `json:"kind"` // "batch" or "stream"
	Zone       string          `json:"zone"`
	Min        int             `json:"min"`
	Max        int             `json:"max"` // -1 = unbounded
	AllowStop  bool            `json:"allowStop,omitempty"`
	Message    string          `json:"message,omitempty"`
	Candidates []CandidateView `json:"candidates"`
}

// CandidateView is one selectable card or supply pile.
type CandidateView struct {
	ID    string `json:"id"`
	Card  string `json:"card"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Count int    `json:"count,omitempty"`
}

// BuildPromptView converts an engine prompt for the wire.
func BuildPromptView(p game.Prompt) PromptView {
	pv := PromptView{
		Kind:       p.Kind.String(),
		Zone:       p.Zone.String(),
		Min:        p.Min,
		Max:        p.Max,
		AllowStop:  p.AllowStop,
		Message:    p.Message,
		Candidates: make([]CandidateView, 0, len(p.Candidates)),
	}
	for _, c := range p.Candidates {
		pv.Candidates = append(pv.Candidates, CandidateView{
			ID:    c.ID,
			Card:  c.Card,
			Name:  c.Name,
			Cost:  c.Cost.Coins,
			Count: c.Count,
		})
	}
	return pv
}

// IsSupply reports whether answers to this prompt name supply piles.
func (pv PromptView) IsSupply() bool {
	return pv.Zone == game.ZoneSupply.String()
}

// EventView is a game event as sent to clients.
type EventView struct {
	Turn    int    `json:"turn"`
	Phase   string `json:"phase,omitempty"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Count   int    `json:"count,omitempty"`
	Details string `json:"details"`
}

// BuildEventView converts a logged event for the wire.
func BuildEventView(e log.GameEvent) EventView {
	return EventView{
		Turn:    e.Turn,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Count:   e.Count,
		Details: e.Details,
	}
}

type GameEventData struct {
	Event EventView `json:"event"`
}

type ProtocolErrorData struct {
	Message string `json:"message"`
}

type ScoreView struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}

type GameOverData struct {
	Result string      `json:"result"`
	Scores []ScoreView `json:"scores"`
}
