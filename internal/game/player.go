package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeengbe/dominion/internal/log"
)

const (
	InitialHandSize  = 5
	CleanUpDrawCount = 5
)

// Player is one seat in a kingdom: its zones, its pool and the client that
// makes its decisions.
type Player struct {
	name    string
	seat    int
	kingdom *Kingdom
	client  Client

	hand    *Pile
	play    *Pile
	discard *Pile
	deck    *Deck
	pool    *Pool
	phase   Phase
}

func (p *Player) Name() string       { return p.name }
func (p *Player) Seat() int          { return p.seat }
func (p *Player) Kingdom() *Kingdom  { return p.kingdom }
func (p *Player) Client() Client     { return p.client }
func (p *Player) Hand() *Pile        { return p.hand }
func (p *Player) PlayArea() *Pile    { return p.play }
func (p *Player) DiscardPile() *Pile { return p.discard }
func (p *Player) Deck() *Deck        { return p.deck }
func (p *Player) Pool() *Pool        { return p.pool }
func (p *Player) Phase() Phase       { return p.phase }

func (p *Player) String() string { return p.name }

func (p *Player) log(event log.GameEvent) {
	p.kingdom.log(event)
}

func (p *Player) setPhase(ph Phase) {
	p.phase = ph
	p.log(log.NewPhaseChangeEvent(p.kingdom.turn, ph.String(), p.seat))
}

func (p *Player) trigger(ctx context.Context, kind Trigger, tc TriggerContext) error {
	return p.kingdom.triggers.Trigger(ctx, kind, tc)
}

// AllCards returns every card the player owns across deck, discard, hand and play.
func (p *Player) AllCards() []*CardInstance {
	var all []*CardInstance
	all = append(all, p.deck.Cards()...)
	all = append(all, p.discard.Cards()...)
	all = append(all, p.hand.Cards()...)
	all = append(all, p.play.Cards()...)
	return all
}

// VictoryPoints sums the victory points of every card the player owns.
func (p *Player) VictoryPoints() int {
	total := 0
	for _, c := range p.AllCards() {
		total += c.VictoryPoints()
	}
	return total
}

// --- Turn state machine ---

// TakeTurn runs one full turn for the player.
func (p *Player) TakeTurn(ctx context.Context) error {
	p.pool.Reset()
	p.phase = PhaseStartOfTurn
	if err := p.trigger(ctx, TriggerStartOfTurn, newPlayerContext(p)); err != nil {
		return err
	}
	if err := p.actionPhase(ctx); err != nil {
		return fmt.Errorf("action phase: %w", err)
	}
	if err := p.treasurePhase(ctx); err != nil {
		return fmt.Errorf("buy phase: %w", err)
	}
	if err := p.purchasePhase(ctx); err != nil {
		return fmt.Errorf("buy phase: %w", err)
	}
	if err := p.cleanUpPhase(ctx); err != nil {
		return fmt.Errorf("clean-up phase: %w", err)
	}
	return nil
}

func (p *Player) actionPhase(ctx context.Context) error {
	p.setPhase(PhaseAction)
	if p.pool.Actions() <= 0 {
		return nil
	}
	stream := p.PromptStream(StreamRequest{
		From:      From(ZoneHand),
		Selector:  OfType(TypeAction),
		AllowStop: true,
		Message:   "Play an action card",
	})
	for {
		card, err := stream.Next(ctx)
		if errors.Is(err, ErrStop) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := p.PlayCard(ctx, card); err != nil {
			return err
		}
		p.pool.RemoveActions(1)
		if p.pool.Actions() <= 0 {
			return nil
		}
	}
}

func (p *Player) treasurePhase(ctx context.Context) error {
	p.setPhase(PhaseBuyTreasures)
	if err := p.trigger(ctx, TriggerStartOfBuyPhase, newPlayerContext(p)); err != nil {
		return err
	}
	stream := p.PromptStream(StreamRequest{
		From:      From(ZoneHand),
		Selector:  OfType(TypeTreasure),
		AllowStop: true,
		Message:   "Play a treasure",
	})
	for {
		card, err := stream.Next(ctx)
		if errors.Is(err, ErrStop) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := p.PlayCard(ctx, card); err != nil {
			return err
		}
	}
}

func (p *Player) purchasePhase(ctx context.Context) error {
	p.setPhase(PhaseBuyPurchases)
	if p.pool.Buys() > 0 {
		stream := p.PromptStream(StreamRequest{
			From: From(ZoneSupply),
			Selector: func(c *CardInstance) bool {
				return c.Card.Cost.CanBeBoughtWith(p.pool)
			},
			AllowStop: true,
			Message:   "Buy a card",
		})
		for {
			card, err := stream.Next(ctx)
			if errors.Is(err, ErrStop) {
				break
			}
			if err != nil {
				return err
			}
			if err := p.BuyCard(ctx, card); err != nil {
				return err
			}
			if p.pool.Buys() <= 0 {
				break
			}
		}
	}
	return p.trigger(ctx, TriggerEndOfBuyPhase, newPlayerContext(p))
}

func (p *Player) cleanUpPhase(ctx context.Context) error {
	p.setPhase(PhaseCleanUp)
	if err := p.trigger(ctx, TriggerStartOfCleanUp, newPlayerContext(p)); err != nil {
		return err
	}

	if err := p.discardFromPlay(ctx, true); err != nil {
		return err
	}

	discardable := 0
	for _, c := range p.hand.Cards() {
		if p.MayDiscard(c) {
			discardable++
		}
	}
	cards, err := p.PromptBatch(ctx, BatchRequest{
		From:     From(ZoneHand),
		Selector: p.MayDiscard,
		Min:      discardable,
		Max:      discardable,
		Message:  "Discard your hand",
	})
	if err != nil {
		return err
	}
	if err := p.DiscardFromHand(ctx, cards...); err != nil {
		return err
	}

	if err := p.discardFromPlay(ctx, false); err != nil {
		return err
	}

	if err := p.trigger(ctx, TriggerWhenWouldDraw, newDrawContext(p, CleanUpDrawCount, nil)); err != nil {
		return err
	}
	drawn := p.Draw(CleanUpDrawCount)
	if err := p.trigger(ctx, TriggerWhenDraw, newDrawContext(p, CleanUpDrawCount, drawn)); err != nil {
		return err
	}

	p.setPhase(PhaseEndOfTurn)
	return p.trigger(ctx, TriggerEndOfTurn, newPlayerContext(p))
}

func (p *Player) discardFromPlay(ctx context.Context, allowStop bool) error {
	stream := p.PromptStream(StreamRequest{
		From:      From(ZonePlay),
		Selector:  p.MayDiscard,
		AllowStop: allowStop,
		Message:   "Discard a card from play",
	})
	for {
		card, err := stream.Next(ctx)
		if errors.Is(err, ErrStop) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.DiscardCard(ctx, card); err != nil {
			return err
		}
	}
}

// --- Card movement ---

// PlayCard moves a card into play and resolves it. The returned context can
// be passed to ReplayCard to resolve the card's Play ability again.
func (p *Player) PlayCard(ctx context.Context, card *CardInstance) (*PlayContext, error) {
	ability := card.Card.Ability(TriggerPlay)
	if ability == nil {
		return nil, stateErrorf("play", "%s has no Play ability", card.Card.Name)
	}

	p.play.Push(card)
	p.log(log.NewPlayEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name))

	whenPlay := &WhenPlayContext{CardContext: *newCardContext(p, card)}
	if err := p.trigger(ctx, TriggerWhenPlay, whenPlay); err != nil {
		return nil, err
	}

	pc := &PlayContext{CardContext: *newCardContext(p, card), WhenPlay: whenPlay}
	if err := p.resolvePlay(ctx, pc, ability); err != nil {
		return nil, err
	}
	return pc, nil
}

// ReplayCard resolves the Play ability of an already played card once more.
// WhenPlay is not fired again.
func (p *Player) ReplayCard(ctx context.Context, pc *PlayContext) error {
	ability := pc.Card.Card.Ability(TriggerPlay)
	if ability == nil {
		return stateErrorf("replay", "%s has no Play ability", pc.Card.Card.Name)
	}
	return p.resolvePlay(ctx, pc, ability)
}

func (p *Player) resolvePlay(ctx context.Context, pc *PlayContext, ability Ability) error {
	rc := &ResolveContext{CardContext: pc.CardContext, Ability: ability}
	if err := p.trigger(ctx, TriggerWhenWouldResolve, rc); err != nil {
		return err
	}
	if err := ability.Resolve(ctx, pc.Card, pc); err != nil {
		return err
	}
	if err := p.trigger(ctx, TriggerPlay, pc); err != nil {
		return err
	}
	return p.trigger(ctx, TriggerAfterResolve, rc)
}

// BuyCard pays for a card and gains it to the discard pile.
func (p *Player) BuyCard(ctx context.Context, card *CardInstance) error {
	if p.pool.Buys() < 1 {
		return ruleErrorf("no buys left")
	}
	if !card.Card.Cost.CanBeBoughtWith(p.pool) {
		return ruleErrorf("%s costs %s, have %d coins", card.Card.Name, card.Card.Cost, p.pool.Coins())
	}

	cc := newCardContext(p, card)
	if err := p.trigger(ctx, TriggerWhenBuy, cc); err != nil {
		return err
	}
	if err := p.pool.ProcessBuy(card.Card.Cost); err != nil {
		return err
	}
	p.log(log.NewBuyEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name, card.Card.Cost.Coins))

	if ability := card.Card.Ability(TriggerBuy); ability != nil {
		if err := ability.Resolve(ctx, card, cc); err != nil {
			return err
		}
	}
	if err := p.trigger(ctx, TriggerBuy, cc); err != nil {
		return err
	}
	return p.GainCard(ctx, card, GainToDiscard)
}

// BuyEvent buys a card that is never gained; only its Buy ability resolves.
func (p *Player) BuyEvent(ctx context.Context, card *CardInstance) error {
	if p.pool.Buys() < 1 {
		return ruleErrorf("no buys left")
	}
	if !card.Card.Cost.CanBeBoughtWith(p.pool) {
		return ruleErrorf("%s costs %s, have %d coins", card.Card.Name, card.Card.Cost, p.pool.Coins())
	}
	ability := card.Card.Ability(TriggerBuy)
	if ability == nil {
		return stateErrorf("buy event", "%s has no Buy ability", card.Card.Name)
	}
	if err := p.pool.ProcessBuy(card.Card.Cost); err != nil {
		return err
	}
	p.log(log.NewBuyEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name, card.Card.Cost.Coins))
	cc := newCardContext(p, card)
	if err := ability.Resolve(ctx, card, cc); err != nil {
		return err
	}
	return p.trigger(ctx, TriggerBuy, cc)
}

// GainCard moves a card from wherever it is (usually a supply pile) into
// the player's deck, hand or discard pile.
func (p *Player) GainCard(ctx context.Context, card *CardInstance, target GainTarget) error {
	gc := &GainContext{CardContext: *newCardContext(p, card), Target: target}
	if err := p.trigger(ctx, TriggerWhenWouldGain, gc); err != nil {
		return err
	}

	switch target {
	case GainToDeck:
		p.deck.Push(card)
	case GainToHand:
		p.hand.Push(card)
	default:
		p.discard.Push(card)
	}
	p.log(log.NewGainEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name, target.String()))

	return p.trigger(ctx, TriggerWhenGain, &GainContext{CardContext: *newCardContext(p, card), Target: target})
}

// GainFromSupply gains the top card of a supply pile. It returns nil when
// the pile is empty.
func (p *Player) GainFromSupply(ctx context.Context, pileID string, target GainTarget) (*CardInstance, error) {
	pile, ok := p.kingdom.Supply(pileID)
	if !ok {
		return nil, stateErrorf("gain", "unknown supply pile %q", pileID)
	}
	card := pile.Top()
	if card == nil {
		return nil, nil
	}
	return card, p.GainCard(ctx, card, target)
}

// DiscardCard moves a card into the discard pile.
func (p *Player) DiscardCard(ctx context.Context, card *CardInstance) error {
	p.discard.Push(card)
	p.log(log.NewDiscardEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name))
	return p.trigger(ctx, TriggerWhenDiscard, newCardContext(p, card))
}

// TrashCard moves a card into the kingdom's trash.
func (p *Player) TrashCard(ctx context.Context, card *CardInstance) error {
	p.kingdom.trash.Push(card)
	p.log(log.NewTrashEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name))
	return p.trigger(ctx, TriggerWhenTrash, newCardContext(p, card))
}

// DiscardFromHand discards cards that must currently be in hand.
func (p *Player) DiscardFromHand(ctx context.Context, cards ...*CardInstance) error {
	for _, c := range cards {
		if !p.hand.Contains(c) {
			return fmt.Errorf("discard %s: %w", c.ID, ErrNotFound)
		}
		if err := p.DiscardCard(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// TrashFromHand trashes cards that must currently be in hand.
func (p *Player) TrashFromHand(ctx context.Context, cards ...*CardInstance) error {
	for _, c := range cards {
		if !p.hand.Contains(c) {
			return fmt.Errorf("trash %s: %w", c.ID, ErrNotFound)
		}
		if err := p.TrashCard(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// TopDeck puts a card onto the player's deck.
func (p *Player) TopDeck(card *CardInstance) {
	p.deck.Push(card)
	p.log(log.NewTopDeckEvent(p.kingdom.turn, p.phase.String(), p.seat, card.Card.Name))
}

// RevealCards shows cards to every player.
func (p *Player) RevealCards(cards ...*CardInstance) {
	if len(cards) == 0 {
		return
	}
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Card.Name
	}
	p.log(log.NewRevealEvent(p.kingdom.turn, p.phase.String(), p.seat, names))
}

// Draw moves up to n cards from the deck into the hand and returns them.
// Fewer are drawn only when deck and discard run out.
func (p *Player) Draw(n int) []*CardInstance {
	var drawn []*CardInstance
	for i := 0; i < n; i++ {
		c := p.deck.Pop()
		if c == nil {
			break
		}
		p.hand.Push(c)
		drawn = append(drawn, c)
	}
	if len(drawn) > 0 {
		p.log(log.NewDrawEvent(p.kingdom.turn, p.phase.String(), p.seat, len(drawn)))
	}
	return drawn
}

// RevealFromDeck takes the top card of the deck out for inspection. The
// caller must move it to a zone.
func (p *Player) RevealFromDeck() *CardInstance {
	c := p.deck.Pop()
	if c != nil {
		p.RevealCards(c)
	}
	return c
}

// MayDiscard reports whether a card may leave play or hand by discarding.
func (p *Player) MayDiscard(*CardInstance) bool { return true }

// MayTrash reports whether a card may be trashed.
func (p *Player) MayTrash(*CardInstance) bool { return true }
