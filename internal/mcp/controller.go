package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Controller owns the seat a tool-driving agent plays through. Tool calls
// are handled one at a time.
type Controller struct {
	serverURL string
	name      string

	mu      sync.Mutex
	session *GameSession
}

// NewController creates a controller that connects to serverURL on first use.
func NewController(serverURL, name string) *Controller {
	return &Controller{serverURL: serverURL, name: name}
}

// Close disconnects the seat, if connected.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

// connected returns the session, dialing the server when there is none or
// the previous connection dropped.
func (c *Controller) connected(ctx context.Context) (*GameSession, error) {
	if c.session != nil {
		c.session.mu.Lock()
		closed := c.session.closed
		c.session.mu.Unlock()
		if !closed {
			return c.session, nil
		}
		c.session.Close()
		c.session = nil
	}
	sess, err := NewGameSession(ctx, c.serverURL, c.name)
	if err != nil {
		return nil, err
	}
	c.session = sess
	return sess, nil
}

// selectionLine converts 0-based candidate indices into the 1-based line
// the terminal client accepts.
func selectionLine(indices string, stop bool, candidates int) (string, error) {
	if stop {
		if strings.TrimSpace(indices) != "" {
			return "", fmt.Errorf("give either indices or stop, not both")
		}
		return "s", nil
	}
	var parts []string
	for _, p := range strings.Fields(indices) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid index '%s': must be an integer", p)
		}
		if idx < 0 || idx >= candidates {
			return "", fmt.Errorf("index %d out of range, must be 0-%d", idx, candidates-1)
		}
		parts = append(parts, strconv.Itoa(idx+1))
	}
	return strings.Join(parts, " "), nil
}
