package game

import "math/rand"

// Pile is an ordered stack of cards. The top of the pile is the last element.
type Pile struct {
	name  string
	kind  Zone
	owner *Player
	cards []*CardInstance
}

// NewPile creates an empty pile of the given zone kind with no owner.
func NewPile(name string, kind Zone) *Pile {
	return &Pile{name: name, kind: kind}
}

func newOwnedPile(name string, kind Zone, owner *Player) *Pile {
	return &Pile{name: name, kind: kind, owner: owner}
}

// Name returns the pile's identifier (a supply pile id, or a zone name).
func (p *Pile) Name() string { return p.name }

// Kind returns the zone kind of the pile.
func (p *Pile) Kind() Zone { return p.kind }

// Owner returns the player owning the pile, or nil for shared piles.
func (p *Pile) Owner() *Player { return p.owner }

// Len returns the number of cards in the pile.
func (p *Pile) Len() int { return len(p.cards) }

// IsEmpty reports whether the pile has no cards.
func (p *Pile) IsEmpty() bool { return len(p.cards) == 0 }

// Cards returns a copy of the pile's cards, bottom first.
func (p *Pile) Cards() []*CardInstance {
	out := make([]*CardInstance, len(p.cards))
	copy(out, p.cards)
	return out
}

// Push puts cards on top of the pile, detaching each from its previous zone.
func (p *Pile) Push(cards ...*CardInstance) {
	for _, c := range cards {
		if c.zone != nil && c.zone != p {
			c.zone.detach(c)
		} else if c.zone == p {
			continue
		}
		c.zone = p
		p.cards = append(p.cards, c)
	}
}

// Pop removes and returns the top card, or nil if the pile is empty.
func (p *Pile) Pop() *CardInstance {
	if len(p.cards) == 0 {
		return nil
	}
	c := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	c.zone = nil
	return c
}

// Top returns the top card without removing it, or nil if the pile is empty.
func (p *Pile) Top() *CardInstance {
	if len(p.cards) == 0 {
		return nil
	}
	return p.cards[len(p.cards)-1]
}

// At returns the card n positions below the top, or nil.
func (p *Pile) At(n int) *CardInstance {
	i := len(p.cards) - 1 - n
	if n < 0 || i < 0 {
		return nil
	}
	return p.cards[i]
}

// Remove takes a specific card out of the pile. It returns ErrNotFound and
// leaves the pile unchanged when the card is not in it.
func (p *Pile) Remove(card *CardInstance) error {
	if !p.detach(card) {
		return ErrNotFound
	}
	card.zone = nil
	return nil
}

func (p *Pile) detach(card *CardInstance) bool {
	for i, c := range p.cards {
		if c == card {
			p.cards = append(p.cards[:i], p.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the card is in the pile.
func (p *Pile) Contains(card *CardInstance) bool {
	return card != nil && card.zone == p
}

// Find returns the card with the given instance ID.
func (p *Pile) Find(id string) (*CardInstance, bool) {
	for _, c := range p.cards {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Shuffle randomizes the order of the pile with an unbiased Fisher–Yates shuffle.
func (p *Pile) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.cards), func(i, j int) {
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	})
}

// Clear empties the pile. Removed cards are left without a zone.
func (p *Pile) Clear() {
	for _, c := range p.cards {
		c.zone = nil
	}
	p.cards = nil
}

// Deck is a draw pile bound to a discard pile. Peeking or popping an empty
// deck first refills it from the shuffled discard pile.
type Deck struct {
	Pile
	discard *Pile
	rng     *rand.Rand

	// Reshuffles counts refills from the discard pile.
	Reshuffles int

	onReshuffle func()
}

func newDeck(owner *Player, discard *Pile, rng *rand.Rand) *Deck {
	return &Deck{
		Pile:    Pile{name: "deck", kind: ZoneDeck, owner: owner},
		discard: discard,
		rng:     rng,
	}
}

func (d *Deck) refill() {
	if !d.IsEmpty() || d.discard.IsEmpty() {
		return
	}
	d.discard.Shuffle(d.rng)
	moved := d.discard.cards
	d.discard.cards = nil
	for _, c := range moved {
		c.zone = &d.Pile
	}
	d.cards = append(moved, d.cards...)
	d.Reshuffles++
	if d.onReshuffle != nil {
		d.onReshuffle()
	}
}

// Pop draws the top card, refilling from discard when the deck is empty.
// It returns nil only when deck and discard are both empty.
func (d *Deck) Pop() *CardInstance {
	d.refill()
	return d.Pile.Pop()
}

// Top peeks at the top card, refilling from discard when the deck is empty.
func (d *Deck) Top() *CardInstance {
	d.refill()
	return d.Pile.Top()
}

// Available returns the number of cards drawable from deck and discard together.
func (d *Deck) Available() int {
	return d.Len() + d.discard.Len()
}
