package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jeengbe/dominion/internal/game"
	dnet "github.com/jeengbe/dominion/internal/net"
)

func newCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call runs a tool handler and decodes its ToolResponse. Error results are
// returned as text.
func call(t *testing.T, ctx context.Context, h handler, name string, args map[string]any) (*ToolResponse, string) {
	t.Helper()
	result, err := h(ctx, newCallToolRequest(name, args))
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("%s: expected one content item, got %d", name, len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content, got %T", name, result.Content[0])
	}
	if result.IsError {
		return nil, text.Text
	}
	var resp ToolResponse
	if err := json.Unmarshal([]byte(text.Text), &resp); err != nil {
		t.Fatalf("%s: decode %q: %v", name, text.Text, err)
	}
	return &resp, ""
}

func startServer(t *testing.T, cfg dnet.LobbyConfig) string {
	t.Helper()
	srv := dnet.NewServer(cfg, nil)
	hs := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		hs.Close()
	})
	return "ws" + strings.TrimPrefix(hs.URL, "http")
}

// playPassively joins a lobby and stops at every prompt until the game ends.
func playPassively(ctx context.Context, url, lobbyID string) error {
	c, err := dnet.Dial(ctx, url, "bot")
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Send(ctx, dnet.TypeJoinLobby, dnet.JoinLobbyRequest{LobbyID: lobbyID}); err != nil {
		return err
	}
	for {
		env, err := c.Read(ctx)
		if err != nil {
			return err
		}
		switch env.Type {
		case dnet.TypePromptCards:
			var pv dnet.PromptView
			if err := env.Decode(&pv); err != nil {
				return err
			}
			resp, err := dnet.ParseSelection(pv, passiveLine(pv.Kind, pv.AllowStop, pv.Min, 1))
			if err != nil {
				return err
			}
			if err := c.Send(ctx, dnet.TypePromptCardsResponse, resp); err != nil {
				return err
			}
		case dnet.TypeGameOver:
			return nil
		}
	}
}

// passiveLine stops where allowed and otherwise picks the fewest candidates
// the prompt accepts, numbered from base.
func passiveLine(kind string, allowStop bool, minCards, base int) string {
	stream := kind == game.PromptStream.String()
	if stream && allowStop {
		return "s"
	}
	n := minCards
	if stream {
		n = 1
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = strconv.Itoa(i + base)
	}
	return strings.Join(parts, " ")
}

func TestToolsRequireConnection(t *testing.T) {
	c := NewController("ws://127.0.0.1:1/ws", "agent")
	ctx := context.Background()
	for name, h := range map[string]handler{
		"wait_for_prompt": c.handleWaitForPrompt,
		"select_cards":    c.handleSelectCards,
		"get_game_state":  c.handleGetGameState,
	} {
		if _, msg := call(t, ctx, h, name, nil); !strings.Contains(msg, "Not connected") {
			t.Errorf("%s: expected not connected error, got %q", name, msg)
		}
	}
	if _, msg := call(t, ctx, c.handleCreateLobby, "create_lobby", map[string]any{"name": ""}); !strings.Contains(msg, "must not be empty") {
		t.Errorf("create_lobby: unexpected %q", msg)
	}
	if _, msg := call(t, ctx, c.handleListLobbies, "list_lobbies", nil); !strings.Contains(msg, "Could not connect") {
		t.Errorf("list_lobbies: unexpected %q", msg)
	}
}

// TestAgentPlaysGame: an agent creates a lobby, a bot joins, and the agent
// answers prompts through the tools until the game ends.
func TestAgentPlaysGame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := startServer(t, dnet.LobbyConfig{Size: 2, MaxTurns: 4, Seed: 2})

	c := NewController(url, "agent")
	defer c.Close()

	resp, msg := call(t, ctx, c.handleCreateLobby, "create_lobby", map[string]any{"name": "agent table"})
	if resp == nil {
		t.Fatalf("create_lobby: %s", msg)
	}
	if resp.Lobby == nil || resp.Lobby.Name != "agent table" || len(resp.Lobby.Clients) != 1 {
		t.Fatalf("Unexpected lobby %+v", resp.Lobby)
	}
	if _, msg := call(t, ctx, c.handleSelectCards, "select_cards", map[string]any{"stop": true}); !strings.Contains(msg, "No pending prompt") {
		t.Errorf("select_cards before a prompt: %q", msg)
	}

	botErr := make(chan error, 1)
	go func() { botErr <- playPassively(ctx, url, resp.Lobby.LobbyID) }()

	resp, msg = call(t, ctx, c.handleWaitForPrompt, "wait_for_prompt", nil)
	if resp == nil {
		t.Fatalf("wait_for_prompt: %s", msg)
	}
	sawEvents := len(resp.Events) > 0
	for i := 0; !resp.GameOver; i++ {
		if i > 50 {
			t.Fatal("Game did not end")
		}
		if resp.Pending == nil {
			t.Fatalf("Expected a pending prompt, got %+v", resp)
		}
		if resp.Pending.Zone == game.ZoneSupply.String() && len(resp.Pending.Candidates) == 0 {
			t.Errorf("Supply prompt without candidates")
		}
		p := resp.Pending
		args := map[string]any{"stop": true}
		if line := passiveLine(p.Kind, p.AllowStop, p.Min, 0); line != "s" {
			args = map[string]any{"indices": line}
		}
		resp, msg = call(t, ctx, c.handleSelectCards, "select_cards", args)
		if resp == nil {
			t.Fatalf("select_cards: %s", msg)
		}
		sawEvents = sawEvents || len(resp.Events) > 0
	}

	if !sawEvents {
		t.Error("No game events were relayed")
	}
	if !strings.Contains(resp.Result, "turn limit") || len(resp.Scores) != 2 {
		t.Errorf("Unexpected result %q %+v", resp.Result, resp.Scores)
	}
	if err := <-botErr; err != nil {
		t.Errorf("bot: %v", err)
	}

	state, msg := call(t, ctx, c.handleGetGameState, "get_game_state", nil)
	if state == nil {
		t.Fatalf("get_game_state: %s", msg)
	}
	if !state.GameOver || state.Lobby != nil || state.Pending != nil {
		t.Errorf("Unexpected final state %+v", state)
	}
}

func TestJoinUnknownLobby(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := NewController(startServer(t, dnet.LobbyConfig{}), "agent")
	defer c.Close()

	if _, msg := call(t, ctx, c.handleJoinLobby, "join_lobby", map[string]any{"lobby_id": "nope"}); !strings.Contains(msg, "unknown lobby") {
		t.Errorf("Expected unknown lobby error, got %q", msg)
	}
	resp, msg := call(t, ctx, c.handleListLobbies, "list_lobbies", map[string]any{"offset": 0})
	if resp == nil {
		t.Fatalf("list_lobbies: %s", msg)
	}
	if len(resp.Lobbies) != 0 {
		t.Errorf("Expected no lobbies, got %+v", resp.Lobbies)
	}
}

func TestSelectionLine(t *testing.T) {
	tests := []struct {
		indices string
		stop    bool
		want    string
		wantErr string
	}{
		{"0 2", false, "1 3", ""},
		{"", false, "", ""},
		{"", true, "s", ""},
		{"1", true, "", "not both"},
		{"3", false, "", "out of range"},
		{"x", false, "", "must be an integer"},
	}
	for _, tc := range tests {
		got, err := selectionLine(tc.indices, tc.stop, 3)
		if tc.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("selectionLine(%q, %v): expected error %q, got %v", tc.indices, tc.stop, tc.wantErr, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("selectionLine(%q, %v) = %q, %v; want %q", tc.indices, tc.stop, got, err, tc.want)
		}
	}
}
