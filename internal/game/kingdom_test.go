package game

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jeengbe/dominion/internal/log"
)

func TestAddSupplyDuplicate(t *testing.T) {
	k, _ := newTestKingdom(t)
	addSupply(t, k, PileEntry{Card: "silver", Count: 1})
	if err := k.SetupSupply([]PileEntry{{Card: "silver", Count: 1}}); !IsStateError(err) {
		t.Fatalf("Expected StateError, got %v", err)
	}
	if err := k.SetupSupply([]PileEntry{{Card: "nope", Count: 1}}); !IsStateError(err) {
		t.Fatalf("Expected StateError for unknown card, got %v", err)
	}
	if ids := k.SupplyIDs(); !reflect.DeepEqual(ids, []string{"silver"}) {
		t.Errorf("Unexpected supply %v", ids)
	}
}

// TestRunNeedsTwoPlayers: a single player cannot start a game.
func TestRunNeedsTwoPlayers(t *testing.T) {
	k, _ := newTestKingdom(t)
	newTestPlayer(t, k, "P1")
	if err := k.Run(context.Background()); !IsStateError(err) {
		t.Fatalf("Expected StateError, got %v", err)
	}
}

// TestBigMoneyGame: two money players finish a game on the base supply.
func TestBigMoneyGame(t *testing.T) {
	logger := log.NewMemoryLogger()
	k := NewKingdom(Config{Logger: logger, Seed: 3})
	addSupply(t, k, BaseSupply(2)...)
	for _, name := range []string{"P1", "P2"} {
		if _, err := k.NewPlayer(name, bigMoneyClient{}); err != nil {
			t.Fatalf("NewPlayer: %v", err)
		}
	}

	if err := k.Run(context.Background()); err != nil {
		logEvents(t, logger)
		t.Fatalf("Run: %v", err)
	}

	if !k.IsOver() || k.Result() == "" {
		t.Fatal("Game should be over with a result")
	}
	if len(logger.EventsOfType(log.EventGameOver)) != 1 {
		t.Error("Expected exactly one game over event")
	}
	if len(logger.EventsOfType(log.EventScore)) != 2 {
		t.Error("Expected a score per player")
	}
	if len(k.Winners()) == 0 {
		t.Error("Expected a winner")
	}
	if _, err := k.NewPlayer("late", bigMoneyClient{}); !IsStateError(err) {
		t.Errorf("Joining a started game: expected StateError, got %v", err)
	}

	// every card is still somewhere
	total := k.Trash().Len()
	for _, id := range k.SupplyIDs() {
		pile, _ := k.Supply(id)
		total += pile.Len()
	}
	for _, p := range k.Players() {
		total += len(p.AllCards())
	}
	want := 20
	for _, e := range BaseSupply(2) {
		want += e.Count
	}
	if total != want {
		t.Errorf("Card count changed: %d != %d", total, want)
	}
}

// TestRunStopsAtTurnLimit: the turn limit ends the game.
func TestRunStopsAtTurnLimit(t *testing.T) {
	k := NewKingdom(Config{Seed: 1, MaxTurns: 4})
	addSupply(t, k, PileEntry{Card: "province", Count: 8})
	k.NewPlayer("P1", bigMoneyClient{})
	k.NewPlayer("P2", bigMoneyClient{})

	if err := k.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if k.Turn() != 4 || !strings.Contains(k.Result(), "turn limit") {
		t.Errorf("turn=%d result=%q", k.Turn(), k.Result())
	}
}

// TestEndConditions: an empty Province pile or three empty piles end the game.
func TestEndConditions(t *testing.T) {
	k, _ := newTestKingdom(t)
	addSupply(t, k, PileEntry{Card: "province", Count: 1}, PileEntry{Card: "silver", Count: 1})
	if _, over := k.endCondition(); over {
		t.Fatal("Game over too early")
	}
	province, _ := k.Supply("province")
	province.Clear()
	if _, over := k.endCondition(); !over {
		t.Error("Empty province pile should end the game")
	}

	k2, _ := newTestKingdom(t)
	for _, id := range []string{"a", "b"} {
		k2.AddSupply(id, NewPile(id, ZoneSupply))
	}
	if _, over := k2.endCondition(); over {
		t.Fatal("Two empty piles should not end the game")
	}
	k2.AddSupply("c", NewPile("c", ZoneSupply))
	if _, over := k2.endCondition(); !over {
		t.Error("Three empty piles should end the game")
	}
}

// TestRemovePlayer: later seats move up and the removed player is gone.
func TestRemovePlayer(t *testing.T) {
	k, _ := newTestKingdom(t)
	p1, _ := newTestPlayer(t, k, "P1")
	p2, _ := newTestPlayer(t, k, "P2")
	p3, _ := newTestPlayer(t, k, "P3")

	if err := k.RemovePlayer(p2); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if got := k.Players(); len(got) != 2 || got[0] != p1 || got[1] != p3 {
		t.Fatalf("Unexpected roster %v", got)
	}
	if p3.Seat() != 1 {
		t.Errorf("Expected P3 in seat 1, got %d", p3.Seat())
	}
	if err := k.RemovePlayer(p2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestOpponentsInTurnOrder: opponents start with the next seat.
func TestOpponentsInTurnOrder(t *testing.T) {
	k, _ := newTestKingdom(t)
	p1, _ := newTestPlayer(t, k, "P1")
	p2, _ := newTestPlayer(t, k, "P2")
	p3, _ := newTestPlayer(t, k, "P3")

	if got := k.Opponents(p2); !reflect.DeepEqual(got, []*Player{p3, p1}) {
		t.Errorf("Expected [P3 P1], got %v", got)
	}
	k.active = 2
	if got := k.turnOrder(); !reflect.DeepEqual(got, []*Player{p3, p1, p2}) {
		t.Errorf("Expected [P3 P1 P2], got %v", got)
	}
	if k.ActivePlayer() != p3 {
		t.Errorf("Expected P3 active, got %v", k.ActivePlayer())
	}
}

func TestScoresAndWinners(t *testing.T) {
	k, _ := newTestKingdom(t)
	p1, _ := newTestPlayer(t, k, "P1")
	p2, _ := newTestPlayer(t, k, "P2")
	p3, _ := newTestPlayer(t, k, "P3")
	giveToHand(p2, Province())
	giveToHand(p3, Province())

	scores := k.Scores()
	if scores[0].Player != p2 || scores[1].Player != p3 || scores[2].Player != p1 {
		t.Errorf("Unexpected order %v", scores)
	}
	if w := k.Winners(); !reflect.DeepEqual(w, []*Player{p2, p3}) {
		t.Errorf("Expected tie between P2 and P3, got %v", w)
	}
}

func TestParseKingdoms(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"valid", "kingdoms:\n  - name: a\n    piles:\n      - { card: village, count: 10 }\n", ""},
		{"duplicate name", "kingdoms:\n  - name: a\n  - name: a\n", "defined twice"},
		{"unknown card", "kingdoms:\n  - name: a\n    piles:\n      - { card: nope, count: 10 }\n", "unknown card"},
		{"zero count", "kingdoms:\n  - name: a\n    piles:\n      - { card: village, count: 0 }\n", "must be positive"},
		{"base card", "kingdoms:\n  - name: a\n    piles:\n      - { card: silver, count: 10 }\n", "base supply card"},
		{"card twice", "kingdoms:\n  - name: a\n    piles:\n      - { card: village, count: 10 }\n      - { card: village, count: 5 }\n", "listed twice"},
		{"bad yaml", "kingdoms: [", "parse kingdom YAML"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sets, err := ParseKingdoms([]byte(tc.yaml))
			if tc.wantErr == "" {
				if err != nil || len(sets) != 1 || sets[0].Piles[0].Card != "village" {
					t.Fatalf("Unexpected result %v, %v", sets, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestKingdomFile: the bundled kingdom file parses and sets up a full supply.
func TestKingdomFile(t *testing.T) {
	sets, err := ParseKingdomFile("../../kingdoms.yaml")
	if err != nil {
		t.Fatalf("ParseKingdomFile: %v", err)
	}
	if len(sets) == 0 {
		t.Fatal("No kingdoms")
	}
	set, err := KingdomByName("../../kingdoms.yaml", sets[0].Name)
	if err != nil {
		t.Fatalf("KingdomByName: %v", err)
	}
	if _, err := KingdomByName("../../kingdoms.yaml", "missing"); err == nil {
		t.Error("Expected error for missing kingdom")
	}

	k, _ := newTestKingdom(t)
	if err := k.SetupGame(set, 3); err != nil {
		t.Fatalf("SetupGame: %v", err)
	}
	if len(k.SupplyIDs()) != len(BaseSupply(3))+len(set.Piles) {
		t.Errorf("Expected %d piles, got %d", len(BaseSupply(3))+len(set.Piles), len(k.SupplyIDs()))
	}
	province, _ := k.Supply("province")
	curse, _ := k.Supply("curse")
	if province.Len() != 12 || curse.Len() != 20 {
		t.Errorf("3 players: province=%d curse=%d", province.Len(), curse.Len())
	}

	big, _ := newTestKingdom(t)
	if err := big.SetupGame(set, MaxPlayers+1); !IsStateError(err) {
		t.Errorf("%d players: expected StateError, got %v", MaxPlayers+1, err)
	}
	for _, e := range BaseSupply(MaxPlayers) {
		if e.Count <= 0 {
			t.Errorf("%d players: %s pile starts empty", MaxPlayers, e.Card)
		}
	}
}
