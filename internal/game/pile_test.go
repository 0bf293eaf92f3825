package game

import (
	"errors"
	"math/rand"
	"testing"
)

func testCards(k *Kingdom, n int) []*CardInstance {
	out := make([]*CardInstance, n)
	for i := range out {
		out[i] = k.NewCard(Copper())
	}
	return out
}

// TestPileRemoveNotFound: removing an absent card fails and leaves the pile unchanged.
func TestPileRemoveNotFound(t *testing.T) {
	k, _ := newTestKingdom(t)
	pile := NewPile("test", ZoneSupply)
	cards := testCards(k, 3)
	pile.Push(cards...)
	stranger := k.NewCard(Silver())

	err := pile.Remove(stranger)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if pile.Len() != 3 {
		t.Fatalf("Expected 3 cards, got %d", pile.Len())
	}
	for i, c := range pile.Cards() {
		if c != cards[i] {
			t.Errorf("Card %d changed: %s != %s", i, c, cards[i])
		}
	}
}

// TestPileStackOrder: the last pushed card is the top.
func TestPileStackOrder(t *testing.T) {
	k, _ := newTestKingdom(t)
	pile := NewPile("test", ZoneSupply)
	cards := testCards(k, 3)
	pile.Push(cards...)

	if pile.Top() != cards[2] {
		t.Fatalf("Expected top %s, got %s", cards[2], pile.Top())
	}
	if pile.At(1) != cards[1] || pile.At(3) != nil {
		t.Error("At should index from the top")
	}
	if got := pile.Pop(); got != cards[2] {
		t.Fatalf("Expected pop %s, got %s", cards[2], got)
	}
	if cards[2].Zone() != nil {
		t.Error("Popped card should have no zone")
	}
	pile.Clear()
	if !pile.IsEmpty() || pile.Pop() != nil || pile.Top() != nil {
		t.Error("Cleared pile should be empty")
	}
}

// TestPushMovesBetweenZones: a card is in exactly one zone and its owner follows the zone.
func TestPushMovesBetweenZones(t *testing.T) {
	k, _ := newTestKingdom(t)
	p1, _ := newTestPlayer(t, k, "P1")
	p2, _ := newTestPlayer(t, k, "P2")

	card := p1.hand.Cards()[0]
	if card.Owner() != p1 {
		t.Fatalf("Expected owner P1, got %v", card.Owner())
	}

	p2.discard.Push(card)
	if p1.hand.Contains(card) || p1.hand.Len() != 4 {
		t.Error("Card should have left P1's hand")
	}
	if card.Owner() != p2 {
		t.Errorf("Expected owner P2, got %v", card.Owner())
	}

	k.trash.Push(card)
	if p2.discard.Len() != 0 {
		t.Error("Card should have left P2's discard")
	}
	if card.Owner() != nil {
		t.Errorf("Trashed card should have no owner, got %v", card.Owner())
	}
}

// TestShuffleIsPermutation: shuffling keeps exactly the same cards.
func TestShuffleIsPermutation(t *testing.T) {
	k, _ := newTestKingdom(t)
	pile := NewPile("test", ZoneSupply)
	cards := testCards(k, 20)
	pile.Push(cards...)

	pile.Shuffle(rand.New(rand.NewSource(42)))

	seen := make(map[*CardInstance]bool)
	for _, c := range pile.Cards() {
		seen[c] = true
	}
	if len(seen) != 20 {
		t.Fatalf("Expected 20 distinct cards, got %d", len(seen))
	}
	for _, c := range cards {
		if !seen[c] {
			t.Errorf("%s missing after shuffle", c)
		}
	}
}

// TestDeckRefillsOncePerEmptiness: an empty deck refills from discard exactly once.
func TestDeckRefillsOncePerEmptiness(t *testing.T) {
	k, _ := newTestKingdom(t)
	p, _ := newTestPlayer(t, k, "P1")
	for _, c := range p.deck.Cards() {
		p.discard.Push(c)
	}
	if !p.deck.IsEmpty() || p.discard.Len() != 5 {
		t.Fatalf("Setup: deck=%d discard=%d", p.deck.Len(), p.discard.Len())
	}

	if p.deck.Top() == nil {
		t.Fatal("Top returned nothing while discard was non-empty")
	}
	if p.deck.Reshuffles != 1 || p.deck.Len() != 5 || !p.discard.IsEmpty() {
		t.Fatalf("After refill: reshuffles=%d deck=%d discard=%d", p.deck.Reshuffles, p.deck.Len(), p.discard.Len())
	}

	for i := 0; i < 5; i++ {
		if p.deck.Pop() == nil {
			t.Fatalf("Pop %d returned nothing", i)
		}
	}
	if p.deck.Reshuffles != 1 {
		t.Errorf("Expected no further reshuffle, got %d", p.deck.Reshuffles)
	}
	if p.deck.Pop() != nil {
		t.Error("Pop should return nothing when deck and discard are empty")
	}
	if p.deck.Reshuffles != 1 {
		t.Errorf("Reshuffle counted without cards: %d", p.deck.Reshuffles)
	}
}

// TestDrawConservation: drawing N moves exactly N cards whatever the deck/discard split.
func TestDrawConservation(t *testing.T) {
	for split := 0; split <= 10; split++ {
		for n := 0; n <= 10; n++ {
			k, _ := newTestKingdom(t)
			p, _ := newTestPlayer(t, k, "P1")
			for _, c := range p.hand.Cards() {
				p.discard.Push(c)
			}
			for _, c := range p.deck.Cards() {
				p.discard.Push(c)
			}
			for i := 0; i < split; i++ {
				p.deck.Push(p.discard.Top())
			}

			available := p.deck.Available()
			drawn := p.Draw(n)

			if len(drawn) != n {
				t.Fatalf("split=%d n=%d: drew %d", split, n, len(drawn))
			}
			if p.hand.Len() != n {
				t.Errorf("split=%d n=%d: hand=%d", split, n, p.hand.Len())
			}
			if p.deck.Available() != available-n {
				t.Errorf("split=%d n=%d: deck+discard=%d, want %d", split, n, p.deck.Available(), available-n)
			}
		}
	}
}
