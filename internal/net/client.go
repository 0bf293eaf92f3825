package net

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/jeengbe/dominion/internal/game"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn *websocket.Conn
	out  io.Writer

	lobbies []LobbySummary // last listing, for "join <n>"
	prompt  *PromptView    // outstanding prompt, if any
}

// Dial connects to the server's websocket endpoint as the named player.
func Dial(ctx context.Context, serverURL, name string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if name != "" {
		q := u.Query()
		q.Set("name", name)
		u.RawQuery = q.Encode()
	}
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// Send writes one message to the server.
func (c *Client) Send(ctx context.Context, typ string, data any) error {
	env, err := NewEnvelope(typ, data)
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, c.conn, env); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// Read waits for the next message from the server.
func (c *Client) Read(ctx context.Context) (Envelope, error) {
	var env Envelope
	if err := wsjson.Read(ctx, c.conn, &env); err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	return env, nil
}

// RunREPL reads commands from in and renders server messages to out until
// the game ends or either side closes.
func (c *Client) RunREPL(ctx context.Context, in io.Reader, out io.Writer) error {
	c.out = out
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan Envelope)
	readErr := make(chan error, 1)
	go func() {
		for {
			env, err := c.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printHelp()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case env := <-msgs:
			done, err := c.handle(env)
			if err != nil {
				fmt.Fprintf(out, "bad message from server: %v\n", err)
			}
			if done {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.command(ctx, line); err != nil {
				fmt.Fprintln(out, err)
			}
		}
	}
}

func (c *Client) printHelp() {
	fmt.Fprintln(c.out, "Commands: list [offset] | create <name> | join <n or id> | help")
	fmt.Fprintln(c.out, "When prompted, answer with card numbers separated by spaces, or \"s\" to stop.")
}

// command handles one line of user input.
func (c *Client) command(ctx context.Context, line string) error {
	if c.prompt != nil {
		resp, err := ParseSelection(*c.prompt, line)
		if err != nil {
			return err
		}
		c.prompt = nil
		return c.Send(ctx, TypePromptCardsResponse, resp)
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "list", "ls":
		offset := 0
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("bad offset %q", fields[1])
			}
			offset = n
		}
		return c.Send(ctx, TypeListLobbies, ListLobbiesRequest{Offset: offset})
	case "create":
		if len(fields) < 2 {
			return fmt.Errorf("usage: create <name>")
		}
		return c.Send(ctx, TypeCreateLobby, CreateLobbyRequest{Name: strings.Join(fields[1:], " ")})
	case "join":
		if len(fields) != 2 {
			return fmt.Errorf("usage: join <n or id>")
		}
		id := fields[1]
		if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(c.lobbies) {
			id = c.lobbies[n-1].LobbyID
		}
		return c.Send(ctx, TypeJoinLobby, JoinLobbyRequest{LobbyID: id})
	case "help":
		c.printHelp()
		return nil
	}
	return fmt.Errorf("unknown command %q", fields[0])
}

// handle renders one server message. It reports true once the game is over.
func (c *Client) handle(env Envelope) (bool, error) {
	switch env.Type {
	case TypeListLobbies:
		var data ListLobbiesData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		c.lobbies = data.Lobbies
		if len(data.Lobbies) == 0 {
			fmt.Fprintln(c.out, "No open lobbies.")
		}
		for i, l := range data.Lobbies {
			fmt.Fprintf(c.out, "  %d) %s (%d players) %s\n", i+1, l.Name, l.Players, l.LobbyID)
		}

	case TypeLobbyUpdate:
		var data LobbyUpdateData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		if data.Lobby.Players != nil {
			fmt.Fprintf(c.out, "Lobby %s now has %d players\n", data.Lobby.LobbyID, *data.Lobby.Players)
		}

	case TypeLobbyDetails:
		var data LobbyDetailsData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		names := make([]string, 0, len(data.Lobby.Clients))
		for _, cl := range data.Lobby.Clients {
			names = append(names, cl.Name)
		}
		fmt.Fprintf(c.out, "Joined lobby %q: %s\n", data.Lobby.Name, strings.Join(names, ", "))

	case TypeLobbyClientAdd:
		var data LobbyClientAddData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "%s joined the lobby\n", data.Client.Name)

	case TypeLobbyClientRemove:
		var data LobbyClientRemoveData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "%s left the lobby\n", data.ClientID)

	case TypeGameEvent:
		var data GameEventData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		c.renderEvent(data.Event)

	case TypePromptCards:
		var pv PromptView
		if err := env.Decode(&pv); err != nil {
			return false, err
		}
		c.prompt = &pv
		c.renderPrompt(pv)

	case TypeProtocolError:
		var data ProtocolErrorData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "Rejected: %s\n", data.Message)

	case TypeGameOver:
		var data GameOverData
		if err := env.Decode(&data); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, "          GAME OVER")
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, data.Result)
		for _, s := range data.Scores {
			fmt.Fprintf(c.out, "  %-16s %3d VP\n", s.Name, s.Points)
		}
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		return true, nil
	}
	return false, nil
}

func (c *Client) renderEvent(ev EventView) {
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 10 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-3d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderPrompt(pv PromptView) {
	fmt.Fprintln(c.out)
	msg := pv.Message
	if msg == "" {
		msg = "Choose cards"
	}
	switch {
	case pv.Kind == game.PromptStream.String():
		fmt.Fprintf(c.out, "%s (one card", msg)
		if pv.AllowStop {
			fmt.Fprint(c.out, ", s to stop")
		}
		fmt.Fprintln(c.out, ")")
	case pv.Max == game.Unbounded:
		fmt.Fprintf(c.out, "%s (select at least %d)\n", msg, pv.Min)
	case pv.Min == pv.Max:
		fmt.Fprintf(c.out, "%s (select %d)\n", msg, pv.Min)
	default:
		fmt.Fprintf(c.out, "%s (select %d-%d)\n", msg, pv.Min, pv.Max)
	}
	for i, cv := range pv.Candidates {
		if pv.IsSupply() {
			fmt.Fprintf(c.out, "  %d) %-12s $%d  (%d left)\n", i+1, cv.Name, cv.Cost, cv.Count)
		} else {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, cv.Name)
		}
	}
	fmt.Fprint(c.out, "> ")
}

// ParseSelection turns a line of 1-based candidate numbers into a response
// for the given prompt. Supply prompts answer with pile ids, the others with
// card ids. For a stream prompt, "s", "stop" or an empty line stops when the
// prompt allows it.
func ParseSelection(pv PromptView, line string) (PromptCardsResponse, error) {
	fields := strings.Fields(strings.ToLower(line))

	pick := func(ids ...string) PromptCardsResponse {
		if pv.IsSupply() {
			return ResponseFromSelection(game.PickPiles(ids...))
		}
		return ResponseFromSelection(game.PickCards(ids...))
	}

	if pv.Kind == game.PromptStream.String() {
		if len(fields) == 0 || fields[0] == "s" || fields[0] == "stop" {
			if !pv.AllowStop {
				return PromptCardsResponse{}, fmt.Errorf("choose one card")
			}
			zone := game.ZoneHand
			if pv.IsSupply() {
				zone = game.ZoneSupply
			}
			return ResponseFromSelection(game.Stop(zone)), nil
		}
		if len(fields) != 1 {
			return PromptCardsResponse{}, fmt.Errorf("choose exactly one card")
		}
	}

	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(pv.Candidates) {
			return PromptCardsResponse{}, fmt.Errorf("each number must be between 1 and %d", len(pv.Candidates))
		}
		ids = append(ids, pv.Candidates[n-1].ID)
	}
	if pv.Kind != game.PromptStream.String() {
		if pv.Max == game.Unbounded && len(ids) < pv.Min {
			return PromptCardsResponse{}, fmt.Errorf("select at least %d cards", pv.Min)
		}
		if pv.Max != game.Unbounded && (len(ids) < pv.Min || len(ids) > pv.Max) {
			return PromptCardsResponse{}, fmt.Errorf("select between %d and %d cards", pv.Min, pv.Max)
		}
	}
	return pick(ids...), nil
}
