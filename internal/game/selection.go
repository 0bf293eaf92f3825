package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeengbe/dominion/internal/log"
)

// Unbounded disables a Min or Max limit on a batch selection.
const Unbounded = -1

// Client is the external actor deciding for a player. Implementations must
// answer each PromptCards call before the next one is made.
type Client interface {
	// PromptCards sends a prompt and waits for the raw response.
	PromptCards(ctx context.Context, prompt Prompt) (Selection, error)

	// ReportViolation tells the client its last response was rejected.
	// The same prompt is issued again afterwards.
	ReportViolation(ctx context.Context, err error) error

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// Selector filters the cards a prompt may resolve to. nil accepts any card.
type Selector func(card *CardInstance) bool

func (s Selector) accepts(card *CardInstance) bool {
	return s == nil || s(card)
}

// AnyCard accepts every card.
func AnyCard(*CardInstance) bool { return true }

// OfType accepts cards carrying any of the given types.
func OfType(types ...CardType) Selector {
	return func(c *CardInstance) bool {
		for _, t := range types {
			if c.IsType(t) {
				return true
			}
		}
		return false
	}
}

// CostingUpTo accepts cards whose cost is at most max.
func CostingUpTo(max Price) Selector {
	return func(c *CardInstance) bool { return c.Card.Cost.LessOrEqual(max) }
}

// Source is where a prompt picks cards from: one of the player's zones, the
// supply, or a fixed list of cards.
type Source struct {
	Zone  Zone
	Cards []*CardInstance
}

func From(z Zone) Source { return Source{Zone: z} }

func FromCards(cards ...*CardInstance) Source {
	return Source{Zone: ZoneCards, Cards: cards}
}

// BatchRequest asks for several cards in a single round-trip.
type BatchRequest struct {
	From     Source
	Selector Selector
	Min      int
	Max      int
	Message  string
}

// StreamRequest asks for one card per round-trip until the client stops or
// nothing eligible remains.
type StreamRequest struct {
	From      Source
	Selector  Selector
	AllowStop bool
	Message   string
}

// Selection is a raw prompt response. Exactly one of PileIDs and CardIDs is
// non-nil. A nil element in a single-element stream response means stop.
type Selection struct {
	PileIDs []*string
	CardIDs []*string
}

// PickPiles builds a supply response.
func PickPiles(ids ...string) Selection {
	out := make([]*string, len(ids))
	for i := range ids {
		out[i] = &ids[i]
	}
	return Selection{PileIDs: out}
}

// PickCards builds a response naming card instances.
func PickCards(ids ...string) Selection {
	out := make([]*string, len(ids))
	for i := range ids {
		out[i] = &ids[i]
	}
	return Selection{CardIDs: out}
}

// Stop builds a stream "stop" response for the given zone.
func Stop(z Zone) Selection {
	if z == ZoneSupply {
		return Selection{PileIDs: []*string{nil}}
	}
	return Selection{CardIDs: []*string{nil}}
}

type PromptKind int

const (
	PromptBatch PromptKind = iota
	PromptStream
)

func (k PromptKind) String() string {
	if k == PromptStream {
		return "stream"
	}
	return "batch"
}

// Prompt is what a client is shown when a decision is needed.
type Prompt struct {
	Kind      PromptKind
	Player    string
	Zone      Zone
	Min       int
	Max       int
	AllowStop bool
	Message   string

	// Candidates lists the eligible choices: supply pile ids for the
	// supply, card instance ids otherwise.
	Candidates []Candidate
}

type Candidate struct {
	ID   string
	Card string // card kind id, e.g. "silver"
	Name string
	Cost Price
	// Count is the number of cards left in a supply pile.
	Count int
}

// --- Resolution ---

func (p *Player) sourceCards(src Source) []*CardInstance {
	switch src.Zone {
	case ZoneHand:
		return p.hand.Cards()
	case ZonePlay:
		return p.play.Cards()
	case ZoneDiscard:
		return p.discard.Cards()
	case ZoneDeck:
		return p.deck.Cards()
	case ZoneCards:
		return src.Cards
	}
	return nil
}

func (p *Player) findInSource(src Source, id string) (*CardInstance, bool) {
	for _, c := range p.sourceCards(src) {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// candidates lists what a prompt may currently resolve to.
func (p *Player) candidates(src Source, sel Selector) []Candidate {
	var out []Candidate
	if src.Zone == ZoneSupply {
		for _, id := range p.kingdom.SupplyIDs() {
			pile := p.kingdom.supply[id]
			top := pile.Top()
			if top == nil || !sel.accepts(top) {
				continue
			}
			out = append(out, Candidate{ID: id, Card: top.Card.ID, Name: top.Card.Name, Cost: top.Card.Cost, Count: pile.Len()})
		}
		return out
	}
	for _, c := range p.sourceCards(src) {
		if sel.accepts(c) {
			out = append(out, Candidate{ID: c.ID, Card: c.Card.ID, Name: c.Card.Name, Cost: c.Card.Cost})
		}
	}
	return out
}

// eligibleCount counts the cards a batch could resolve to, counting every
// card of an eligible supply pile.
func (p *Player) eligibleCount(src Source, sel Selector) int {
	n := 0
	if src.Zone == ZoneSupply {
		for _, pile := range p.kingdom.supply {
			for _, c := range pile.cards {
				if sel.accepts(c) {
					n++
				}
			}
		}
		return n
	}
	for _, c := range p.sourceCards(src) {
		if sel.accepts(c) {
			n++
		}
	}
	return n
}

func (p *Player) resolveBatch(req BatchRequest, min, max int, resp Selection) ([]*CardInstance, error) {
	var cards []*CardInstance

	if req.From.Zone == ZoneSupply {
		if resp.PileIDs == nil {
			return nil, violationf("expected pile ids for the supply")
		}
		if resp.CardIDs != nil {
			return nil, violationf("card ids sent where pile ids were expected")
		}
		dug := make(map[string]int)
		for _, id := range resp.PileIDs {
			if id == nil {
				return nil, violationf("stop is not allowed in a batch")
			}
			pile, ok := p.kingdom.supply[*id]
			if !ok {
				return nil, violationf("unknown pile %q", *id)
			}
			card := pile.At(dug[*id])
			if card == nil {
				return nil, violationf("not enough cards in pile %q", *id)
			}
			dug[*id]++
			cards = append(cards, card)
		}
	} else {
		if resp.PileIDs != nil {
			return nil, violationf("pile ids sent where card ids were expected")
		}
		if resp.CardIDs == nil {
			return nil, violationf("expected card ids")
		}
		seen := make(map[string]bool, len(resp.CardIDs))
		for _, id := range resp.CardIDs {
			if id == nil {
				return nil, violationf("stop is not allowed in a batch")
			}
			if seen[*id] {
				return nil, violationf("duplicate card id %q", *id)
			}
			seen[*id] = true
			card, ok := p.findInSource(req.From, *id)
			if !ok {
				return nil, violationf("card %q is not in %s", *id, req.From.Zone)
			}
			cards = append(cards, card)
		}
	}

	if min != Unbounded && len(cards) < min {
		return nil, violationf("selected %d cards, need at least %d", len(cards), min)
	}
	if max != Unbounded && len(cards) > max {
		return nil, violationf("selected %d cards, at most %d allowed", len(cards), max)
	}
	for _, c := range cards {
		if !req.Selector.accepts(c) {
			return nil, violationf("%s cannot be selected", c.ID)
		}
	}
	return cards, nil
}

// resolveStreamItem returns the selected card, or nil for stop.
func (p *Player) resolveStreamItem(req StreamRequest, resp Selection) (*CardInstance, error) {
	var ids []*string
	if req.From.Zone == ZoneSupply {
		if resp.PileIDs == nil || resp.CardIDs != nil {
			return nil, violationf("expected pile ids for the supply")
		}
		ids = resp.PileIDs
	} else {
		if resp.CardIDs == nil || resp.PileIDs != nil {
			return nil, violationf("expected card ids")
		}
		ids = resp.CardIDs
	}
	if len(ids) != 1 {
		return nil, violationf("expected exactly one id, got %d", len(ids))
	}
	if ids[0] == nil {
		if !req.AllowStop {
			return nil, violationf("stopping is not allowed here")
		}
		return nil, nil
	}
	id := *ids[0]

	var card *CardInstance
	if req.From.Zone == ZoneSupply {
		pile, ok := p.kingdom.supply[id]
		if !ok {
			return nil, violationf("unknown pile %q", id)
		}
		if card = pile.Top(); card == nil {
			return nil, violationf("pile %q is empty", id)
		}
	} else {
		c, ok := p.findInSource(req.From, id)
		if !ok {
			return nil, violationf("card %q is not in %s", id, req.From.Zone)
		}
		card = c
	}
	if !req.Selector.accepts(card) {
		return nil, violationf("%s cannot be selected", card.ID)
	}
	return card, nil
}

// ask issues a prompt and resolves the response. Protocol violations are
// reported to the client and the prompt is repeated, up to the kingdom's
// violation limit.
func ask[T any](ctx context.Context, p *Player, prompt Prompt, resolve func(Selection) (T, error)) (T, error) {
	var zero T
	strikes := 0
	for {
		resp, err := p.client.PromptCards(ctx, prompt)
		if err != nil {
			return zero, fmt.Errorf("prompt %s: %w", p.name, err)
		}
		v, err := resolve(resp)
		if err == nil {
			return v, nil
		}
		var pv *ProtocolViolation
		if !errors.As(err, &pv) {
			return zero, err
		}
		pv.Player = p.name
		strikes++
		p.kingdom.log(log.NewViolationEvent(p.kingdom.turn, p.phase.String(), p.seat, pv.Msg))
		if strikes >= p.kingdom.maxViolations {
			return zero, pv
		}
		if err := p.client.ReportViolation(ctx, pv); err != nil {
			return zero, fmt.Errorf("report violation to %s: %w", p.name, err)
		}
	}
}

// PromptBatch asks the player's client for a set of cards. Min is lowered to
// the number of eligible cards; nothing is sent when no card is eligible.
func (p *Player) PromptBatch(ctx context.Context, req BatchRequest) ([]*CardInstance, error) {
	if req.Min < 0 {
		req.Min = 0
	}
	if req.Max == 0 {
		return nil, nil
	}
	eligible := p.eligibleCount(req.From, req.Selector)
	if eligible == 0 {
		return nil, nil
	}
	min := req.Min
	if min > eligible {
		min = eligible
	}
	prompt := Prompt{
		Kind:       PromptBatch,
		Player:     p.name,
		Zone:       req.From.Zone,
		Min:        min,
		Max:        req.Max,
		Message:    req.Message,
		Candidates: p.candidates(req.From, req.Selector),
	}
	return ask(ctx, p, prompt, func(resp Selection) ([]*CardInstance, error) {
		return p.resolveBatch(req, min, req.Max, resp)
	})
}

// PromptOne asks for at most one card; it returns nil when none is chosen.
func (p *Player) PromptOne(ctx context.Context, from Source, sel Selector, required bool, msg string) (*CardInstance, error) {
	min := 0
	if required {
		min = 1
	}
	cards, err := p.PromptBatch(ctx, BatchRequest{From: from, Selector: sel, Min: min, Max: 1, Message: msg})
	if err != nil || len(cards) == 0 {
		return nil, err
	}
	return cards[0], nil
}

// Stream is a pull-based sequence of single card selections.
type Stream struct {
	player *Player
	req    StreamRequest
	done   bool
}

// PromptStream starts a stream of single-card prompts.
func (p *Player) PromptStream(req StreamRequest) *Stream {
	return &Stream{player: p, req: req}
}

// Next prompts for the next card. It returns ErrStop once the client stops
// or no eligible card is left; every later call returns ErrStop too.
func (s *Stream) Next(ctx context.Context) (*CardInstance, error) {
	if s.done {
		return nil, ErrStop
	}
	p := s.player
	cands := p.candidates(s.req.From, s.req.Selector)
	if len(cands) == 0 {
		s.done = true
		return nil, ErrStop
	}
	prompt := Prompt{
		Kind:       PromptStream,
		Player:     p.name,
		Zone:       s.req.From.Zone,
		Min:        1,
		Max:        1,
		AllowStop:  s.req.AllowStop,
		Message:    s.req.Message,
		Candidates: cands,
	}
	if s.req.AllowStop {
		prompt.Min = 0
	}
	card, err := ask(ctx, p, prompt, func(resp Selection) (*CardInstance, error) {
		return p.resolveStreamItem(s.req, resp)
	})
	if err != nil {
		s.done = true
		return nil, err
	}
	if card == nil {
		s.done = true
		return nil, ErrStop
	}
	return card, nil
}
