package game

import "context"

// Handler is a dynamically subscribed reaction to a trigger.
type Handler func(ctx context.Context, tc TriggerContext) error

// Subscription identifies a handler registered with On or Once.
type Subscription struct {
	id   uint64
	kind Trigger
}

type subscriber struct {
	id      uint64
	fn      Handler
	once    bool
	removed bool
}

// Triggers is the kingdom's single trigger registry. Firing a trigger runs
// the dynamic subscribers first, in subscription order, then the declared
// abilities of cards in players' hands.
type Triggers struct {
	kingdom *Kingdom
	nextID  uint64
	subs    [triggerCount][]*subscriber
}

func newTriggers(k *Kingdom) *Triggers {
	return &Triggers{kingdom: k}
}

func (t *Triggers) add(kind Trigger, fn Handler, once bool) Subscription {
	t.nextID++
	t.subs[kind] = append(t.subs[kind], &subscriber{id: t.nextID, fn: fn, once: once})
	return Subscription{id: t.nextID, kind: kind}
}

// On subscribes fn to every future firing of kind until removed.
func (t *Triggers) On(kind Trigger, fn Handler) Subscription {
	return t.add(kind, fn, false)
}

// Once subscribes fn to the next firing of kind only.
func (t *Triggers) Once(kind Trigger, fn Handler) Subscription {
	return t.add(kind, fn, true)
}

// Remove unsubscribes a handler. Removing an unknown or already removed
// subscription does nothing.
func (t *Triggers) Remove(s Subscription) {
	if s.id == 0 || s.kind < 0 || s.kind >= triggerCount {
		return
	}
	list := t.subs[s.kind]
	for i, sub := range list {
		if sub.id == s.id {
			sub.removed = true
			t.subs[s.kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Subscribed reports whether s is still registered.
func (t *Triggers) Subscribed(s Subscription) bool {
	if s.kind < 0 || s.kind >= triggerCount {
		return false
	}
	for _, sub := range t.subs[s.kind] {
		if sub.id == s.id {
			return true
		}
	}
	return false
}

// Len returns the number of dynamic subscribers for kind.
func (t *Triggers) Len(kind Trigger) int {
	return len(t.subs[kind])
}

// Trigger fires kind. Handlers run one at a time; each one, including any
// prompts and nested triggers it causes, finishes before the next starts.
// Handlers subscribed during the firing wait for the next one. The first
// handler error stops the firing and is returned.
func (t *Triggers) Trigger(ctx context.Context, kind Trigger, tc TriggerContext) error {
	if !contextFits(kind, tc) {
		return stateErrorf("trigger", "%s fired with %T", kind, tc)
	}

	snapshot := append([]*subscriber(nil), t.subs[kind]...)
	for _, sub := range snapshot {
		if sub.removed {
			continue
		}
		if sub.once {
			t.Remove(Subscription{id: sub.id, kind: kind})
		}
		if err := sub.fn(ctx, tc); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	// Play and Buy abilities are resolved by the player for the card itself.
	if kind == TriggerPlay || kind == TriggerBuy {
		return nil
	}
	return t.resolveDeclared(ctx, kind, tc)
}

// resolveDeclared runs the abilities printed on cards in hand, visiting
// players in turn order from the active player.
func (t *Triggers) resolveDeclared(ctx context.Context, kind Trigger, tc TriggerContext) error {
	if t.kingdom == nil {
		return nil
	}
	for _, p := range t.kingdom.turnOrder() {
		for _, card := range p.hand.Cards() {
			ability := card.Card.Ability(kind)
			if ability == nil || !p.hand.Contains(card) {
				continue
			}
			if err := ability.Resolve(ctx, card, tc); err != nil {
				return err
			}
		}
	}
	return nil
}
