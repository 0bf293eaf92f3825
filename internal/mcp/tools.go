package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds all game tools to the MCP server.
func (c *Controller) RegisterTools(s *server.MCPServer) {
	s.AddTool(listLobbiesTool(), c.handleListLobbies)
	s.AddTool(createLobbyTool(), c.handleCreateLobby)
	s.AddTool(joinLobbyTool(), c.handleJoinLobby)
	s.AddTool(waitForPromptTool(), c.handleWaitForPrompt)
	s.AddTool(selectCardsTool(), c.handleSelectCards)
	s.AddTool(getGameStateTool(), c.handleGetGameState)
}

// --- Tool definitions ---

func listLobbiesTool() mcp.Tool {
	return mcp.NewTool("list_lobbies",
		mcp.WithDescription("List lobbies on the Dominion server that are waiting for players."),
		mcp.WithNumber("offset", mcp.Description("Number of lobbies to skip, for paging (default 0)")),
	)
}

func createLobbyTool() mcp.Tool {
	return mcp.NewTool("create_lobby",
		mcp.WithDescription("Create a lobby and join it. The game starts once the lobby is full; "+
			"human players join with `dominion play` in a separate terminal. Follow up with wait_for_prompt."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Lobby name shown to other players")),
	)
}

func joinLobbyTool() mcp.Tool {
	return mcp.NewTool("join_lobby",
		mcp.WithDescription("Join an open lobby by id. Follow up with wait_for_prompt."),
		mcp.WithString("lobby_id", mcp.Required(), mcp.Description("Lobby id from list_lobbies")),
	)
}

func waitForPromptTool() mcp.Tool {
	return mcp.NewTool("wait_for_prompt",
		mcp.WithDescription("Block until the game asks you to choose cards or ends. Returns the events since the last call "+
			"and the pending prompt."),
	)
}

func selectCardsTool() mcp.Tool {
	return mcp.NewTool("select_cards",
		mcp.WithDescription("Answer the pending prompt, then wait for the next one. A batch prompt takes between min and max "+
			"cards (max -1 means no limit); a stream prompt takes exactly one card, or stop when allow_stop is true. "+
			"Supply candidates may be picked more than once in a batch."),
		mcp.WithString("indices", mcp.Description("Space-separated 0-based candidate indices (e.g. '0 2 3'), or empty string for no selection")),
		mcp.WithBoolean("stop", mcp.Description("Stop a stream prompt instead of choosing a card")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current lobby, accumulated events, and pending prompt without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func (c *Controller) handleListLobbies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := request.GetInt("offset", 0)
	if offset < 0 {
		return mcp.NewToolResultError("offset must be >= 0"), nil
	}
	sess, err := c.connected(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Could not connect to %s: %v", c.serverURL, err), nil
	}
	lobbies, err := sess.ListLobbies(ctx, offset)
	if err != nil {
		return mcp.NewToolResultErrorf("Listing lobbies failed: %v", err), nil
	}
	resp := sess.snapshot()
	resp.Lobbies = lobbies
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (c *Controller) handleCreateLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name must not be empty"), nil
	}
	sess, err := c.connected(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Could not connect to %s: %v", c.serverURL, err), nil
	}
	if _, err := sess.CreateLobby(ctx, name); err != nil {
		return mcp.NewToolResultErrorf("Failed to create lobby: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.snapshot())), nil
}

func (c *Controller) handleJoinLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := request.GetString("lobby_id", "")
	if id == "" {
		return mcp.NewToolResultError("lobby_id must not be empty"), nil
	}
	sess, err := c.connected(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Could not connect to %s: %v", c.serverURL, err), nil
	}
	if _, err := sess.JoinLobby(ctx, id); err != nil {
		return mcp.NewToolResultErrorf("Failed to join lobby: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.snapshot())), nil
}

func (c *Controller) handleWaitForPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return mcp.NewToolResultError("Not connected. Use create_lobby or join_lobby first."), nil
	}
	resp, err := c.session.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (c *Controller) handleSelectCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return mcp.NewToolResultError("Not connected. Use create_lobby or join_lobby first."), nil
	}
	sess := c.session
	pending := sess.currentPending
	if pending == nil || pending.Type != DecisionPromptCards {
		return mcp.NewToolResultError("No pending prompt. Use wait_for_prompt first."), nil
	}

	line, err := selectionLine(request.GetString("indices", ""), request.GetBool("stop", false), len(pending.Prompt.Candidates))
	if err != nil {
		return mcp.NewToolResultErrorf("%v", err), nil
	}
	if err := sess.Respond(ctx, line); err != nil {
		return mcp.NewToolResultErrorf("Invalid selection: %v", err), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (c *Controller) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return mcp.NewToolResultError("Not connected. Use create_lobby or join_lobby first."), nil
	}
	return mcp.NewToolResultText(respondJSON(c.session.snapshot())), nil
}
