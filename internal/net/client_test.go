package net

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jeengbe/dominion/internal/game"
)

func ids(ptrs []*string) []string {
	var out []string
	for _, p := range ptrs {
		if p == nil {
			out = append(out, "<stop>")
			continue
		}
		out = append(out, *p)
	}
	return out
}

func TestParseSelection(t *testing.T) {
	hand := PromptView{
		Kind: "batch", Zone: game.ZoneHand.String(), Min: 1, Max: 2,
		Candidates: []CandidateView{{ID: "c1", Name: "Copper"}, {ID: "c2", Name: "Estate"}, {ID: "c3", Name: "Estate"}},
	}
	supply := PromptView{
		Kind: "stream", Zone: game.ZoneSupply.String(), Max: 1, AllowStop: true,
		Candidates: []CandidateView{{ID: "silver", Name: "Silver"}, {ID: "gold", Name: "Gold"}},
	}
	forced := supply
	forced.AllowStop = false
	unbounded := hand
	unbounded.Min, unbounded.Max = 0, game.Unbounded

	tests := []struct {
		name     string
		pv       PromptView
		line     string
		wantPile []string
		wantCard []string
		wantErr  string
	}{
		{"batch cards", hand, "1 3", nil, []string{"c1", "c3"}, ""},
		{"batch too few", hand, "", nil, nil, "between 1 and 2"},
		{"batch too many", hand, "1 2 3", nil, nil, "between 1 and 2"},
		{"out of range", hand, "4", nil, nil, "between 1 and 3"},
		{"not a number", hand, "x", nil, nil, "between 1 and 3"},
		{"unbounded empty", unbounded, "", nil, []string{}, ""},
		{"unbounded all", unbounded, "1 2 3", nil, []string{"c1", "c2", "c3"}, ""},
		{"stream pile", supply, "2", []string{"gold"}, nil, ""},
		{"stream stop", supply, "s", []string{"<stop>"}, nil, ""},
		{"stream empty line stops", supply, "  ", []string{"<stop>"}, nil, ""},
		{"stream two", supply, "1 2", nil, nil, "exactly one"},
		{"stop not allowed", forced, "stop", nil, nil, "choose one card"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ParseSelection(tc.pv, tc.line)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection: %v", err)
			}
			if (resp.PileIDs != nil) != (tc.wantPile != nil) || (resp.CardIDs != nil) != (tc.wantCard != nil) {
				t.Fatalf("Wrong id kind: piles=%v cards=%v", resp.PileIDs, resp.CardIDs)
			}
			if got := strings.Join(ids(resp.PileIDs), ","); got != strings.Join(tc.wantPile, ",") {
				t.Errorf("piles: got %s, want %v", got, tc.wantPile)
			}
			if got := strings.Join(ids(resp.CardIDs), ","); got != strings.Join(tc.wantCard, ",") {
				t.Errorf("cards: got %s, want %v", got, tc.wantCard)
			}
		})
	}
}

// TestStopEncoding: a stop response carries a single null id on the wire.
func TestStopEncoding(t *testing.T) {
	resp := ResponseFromSelection(game.Stop(game.ZoneHand))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"pileIds":null,"cardIds":[null]}` {
		t.Errorf("Unexpected encoding %s", data)
	}

	var back PromptCardsResponse
	if err := json.Unmarshal([]byte(`{"pileIds":["silver"],"cardIds":null}`), &back); err != nil {
		t.Fatal(err)
	}
	sel := back.Selection()
	if sel.CardIDs != nil || len(sel.PileIDs) != 1 || *sel.PileIDs[0] != "silver" {
		t.Errorf("Unexpected selection %+v", sel)
	}
}

func TestClientHandleRendersMessages(t *testing.T) {
	var out bytes.Buffer
	c := &Client{out: &out}

	env, _ := NewEnvelope(TypePromptCards, PromptView{
		Kind: "stream", Zone: game.ZoneSupply.String(), AllowStop: true, Message: "Buy a card",
		Candidates: []CandidateView{{ID: "silver", Name: "Silver", Cost: 3, Count: 40}},
	})
	if done, err := c.handle(env); done || err != nil {
		t.Fatalf("handle prompt: %v %v", done, err)
	}
	if c.prompt == nil || !strings.Contains(out.String(), "Buy a card") || !strings.Contains(out.String(), "(40 left)") {
		t.Errorf("Prompt not rendered: %q", out.String())
	}

	env, _ = NewEnvelope(TypeGameOver, GameOverData{Result: "province pile empty", Scores: []ScoreView{{Name: "alice", Points: 12}}})
	if done, err := c.handle(env); !done || err != nil {
		t.Fatalf("handle game over: %v %v", done, err)
	}
	if !strings.Contains(out.String(), "GAME OVER") || !strings.Contains(out.String(), "alice") {
		t.Errorf("Game over not rendered: %q", out.String())
	}
}
