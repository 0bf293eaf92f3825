package game

import (
	"context"
	"fmt"
)

// Trigger is a named game event abilities can react to.
type Trigger int

const (
	// TriggerPlay resolves only for the card being played. Handlers
	// subscribed with On or Once see every play after it resolves.
	TriggerPlay Trigger = iota
	// TriggerWhenPlay fires before a played card resolves.
	TriggerWhenPlay
	// TriggerBuy resolves only for the card being bought. Subscribed
	// handlers see every buy after it resolves.
	TriggerBuy
	TriggerWhenBuy
	TriggerStartOfTurn
	TriggerStartOfBuyPhase
	TriggerEndOfBuyPhase
	TriggerStartOfCleanUp
	TriggerWhenWouldDraw
	TriggerWhenDraw
	TriggerEndOfTurn
	TriggerWhenWouldResolve
	TriggerAfterResolve
	TriggerWhenWouldGain
	TriggerWhenGain
	TriggerWhenDiscard
	TriggerWhenTrash

	triggerCount
)

var triggerNames = [...]string{
	"Play", "WhenPlay", "Buy", "WhenBuy", "StartOfTurn", "StartOfBuyPhase",
	"EndOfBuyPhase", "StartOfCleanUp", "WhenWouldDraw", "WhenDraw", "EndOfTurn",
	"WhenWouldResolve", "AfterResolve", "WhenWouldGain", "WhenGain",
	"WhenDiscard", "WhenTrash",
}

func (t Trigger) String() string {
	if t < 0 || t >= triggerCount {
		return "Unknown"
	}
	return triggerNames[t]
}

// --- Trigger contexts ---

// TriggerContext is the payload passed to abilities and handlers. The set of
// implementations is closed; each trigger kind takes exactly one of them:
//
//	Play                                    *PlayContext
//	WhenPlay                                *WhenPlayContext
//	Buy, WhenBuy, WhenDiscard, WhenTrash    *CardContext
//	WhenWouldResolve, AfterResolve          *ResolveContext
//	WhenWouldGain, WhenGain                 *GainContext
//	WhenWouldDraw, WhenDraw                 *DrawContext
//	all turn events                         *PlayerContext
type TriggerContext interface {
	Kingdom() *Kingdom
	Player() *Player
	triggerContext()
}

type PlayerContext struct {
	kingdom *Kingdom
	player  *Player
}

func (c *PlayerContext) Kingdom() *Kingdom { return c.kingdom }
func (c *PlayerContext) Player() *Player   { return c.player }
func (c *PlayerContext) triggerContext()   {}

func newPlayerContext(p *Player) *PlayerContext {
	return &PlayerContext{kingdom: p.kingdom, player: p}
}

type CardContext struct {
	PlayerContext
	Card *CardInstance
}

func newCardContext(p *Player, card *CardInstance) *CardContext {
	return &CardContext{PlayerContext: PlayerContext{kingdom: p.kingdom, player: p}, Card: card}
}

// WhenPlayContext is created fresh for every played card. Reactions mark
// players unaffected here before the card's own effect runs.
type WhenPlayContext struct {
	CardContext
	unaffected map[*Player]bool
}

// AddUnaffected exempts a player from the played card's effect.
func (c *WhenPlayContext) AddUnaffected(p *Player) {
	if c.unaffected == nil {
		c.unaffected = make(map[*Player]bool)
	}
	c.unaffected[p] = true
}

// IsUnaffected reports whether a player was exempted from the played card.
func (c *WhenPlayContext) IsUnaffected(p *Player) bool {
	return c.unaffected[p]
}

type PlayContext struct {
	CardContext
	WhenPlay *WhenPlayContext
}

// IsUnaffected is shorthand for pc.WhenPlay.IsUnaffected.
func (c *PlayContext) IsUnaffected(p *Player) bool {
	return c.WhenPlay.IsUnaffected(p)
}

type ResolveContext struct {
	CardContext
	Ability Ability
}

type GainContext struct {
	CardContext
	Target GainTarget
}

// DrawContext describes a clean-up draw. Drawn is empty for WhenWouldDraw.
type DrawContext struct {
	PlayerContext
	Count int
	Drawn []*CardInstance
}

func newDrawContext(p *Player, count int, drawn []*CardInstance) *DrawContext {
	return &DrawContext{PlayerContext: PlayerContext{kingdom: p.kingdom, player: p}, Count: count, Drawn: drawn}
}

// contextFits reports whether tc has the shape bound to the trigger kind.
func contextFits(t Trigger, tc TriggerContext) bool {
	switch t {
	case TriggerPlay:
		_, ok := tc.(*PlayContext)
		return ok
	case TriggerWhenPlay:
		_, ok := tc.(*WhenPlayContext)
		return ok
	case TriggerBuy, TriggerWhenBuy, TriggerWhenDiscard, TriggerWhenTrash:
		_, ok := tc.(*CardContext)
		return ok
	case TriggerWhenWouldResolve, TriggerAfterResolve:
		_, ok := tc.(*ResolveContext)
		return ok
	case TriggerWhenWouldGain, TriggerWhenGain:
		_, ok := tc.(*GainContext)
		return ok
	case TriggerWhenWouldDraw, TriggerWhenDraw:
		_, ok := tc.(*DrawContext)
		return ok
	case TriggerStartOfTurn, TriggerStartOfBuyPhase, TriggerEndOfBuyPhase,
		TriggerStartOfCleanUp, TriggerEndOfTurn:
		_, ok := tc.(*PlayerContext)
		return ok
	}
	return false
}

// --- Abilities ---

// Ability is an effect attached to a card for one trigger kind.
type Ability interface {
	Resolve(ctx context.Context, card *CardInstance, tc TriggerContext) error
}

// CallbackAbility runs a closure.
type CallbackAbility struct {
	Fn func(ctx context.Context, card *CardInstance, tc TriggerContext) error
}

func (a *CallbackAbility) Resolve(ctx context.Context, card *CardInstance, tc TriggerContext) error {
	return a.Fn(ctx, card, tc)
}

// Callback builds a CallbackAbility for a single context shape. Resolving it
// with any other shape is a StateError.
func Callback[C TriggerContext](fn func(ctx context.Context, card *CardInstance, c C) error) *CallbackAbility {
	return &CallbackAbility{Fn: func(ctx context.Context, card *CardInstance, tc TriggerContext) error {
		c, ok := tc.(C)
		if !ok {
			return stateErrorf("resolve", "%s: unexpected context %T", card.Card.Name, tc)
		}
		return fn(ctx, card, c)
	}}
}

// OnPlay is the common Play ability of action cards.
func OnPlay(fn func(ctx context.Context, pc *PlayContext) error) *CallbackAbility {
	return Callback(func(ctx context.Context, _ *CardInstance, pc *PlayContext) error {
		return fn(ctx, pc)
	})
}

// TreasureAbility adds coins to the pool of the card's owner.
type TreasureAbility struct {
	Coins int
}

func (a *TreasureAbility) Resolve(_ context.Context, card *CardInstance, _ TriggerContext) error {
	owner := card.Owner()
	if owner == nil {
		return stateErrorf("resolve", "treasure %s has no owner", card.ID)
	}
	owner.Pool().AddCoins(a.Coins)
	return nil
}

func (a *TreasureAbility) String() string {
	return fmt.Sprintf("+$%d", a.Coins)
}
