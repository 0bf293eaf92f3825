package game

import "context"

// --- Constructors ---

func treasureCard(id, name string, cost, coins int) *Card {
	return &Card{
		ID:    id,
		Name:  name,
		Cost:  Coins(cost),
		Types: []CardType{TypeTreasure},
		Abilities: map[Trigger]Ability{
			TriggerPlay: &TreasureAbility{Coins: coins},
		},
	}
}

func victoryCard(id, name string, cost, vp int) *Card {
	return &Card{
		ID:            id,
		Name:          name,
		Cost:          Coins(cost),
		Types:         []CardType{TypeVictory},
		VictoryPoints: func(*CardInstance) int { return vp },
	}
}

func actionCard(id, name string, cost int, play func(ctx context.Context, pc *PlayContext) error, extra ...CardType) *Card {
	return &Card{
		ID:    id,
		Name:  name,
		Cost:  Coins(cost),
		Types: append([]CardType{TypeAction}, extra...),
		Abilities: map[Trigger]Ability{
			TriggerPlay: OnPlay(play),
		},
	}
}

// plus applies the usual "+N" bonuses of an action card.
func plus(p *Player, cards, actions, buys, coins int) {
	if cards > 0 {
		p.Draw(cards)
	}
	p.pool.AddActions(actions)
	p.pool.AddBuys(buys)
	p.pool.AddCoins(coins)
}

// attackOpponents runs fn for every opponent not exempted from the played
// attack, one at a time in turn order.
func attackOpponents(ctx context.Context, pc *PlayContext, fn func(opp *Player) error) error {
	p := pc.Player()
	for _, opp := range p.kingdom.Opponents(p) {
		if pc.IsUnaffected(opp) {
			continue
		}
		if err := fn(opp); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// --- Treasures ---

func Copper() *Card { return treasureCard("copper", "Copper", 0, 1) }
func Silver() *Card { return treasureCard("silver", "Silver", 3, 2) }
func Gold() *Card   { return treasureCard("gold", "Gold", 6, 3) }

// --- Victory ---

func Estate() *Card   { return victoryCard("estate", "Estate", 2, 1) }
func Duchy() *Card    { return victoryCard("duchy", "Duchy", 5, 3) }
func Province() *Card { return victoryCard("province", "Province", 8, 6) }

func Curse() *Card {
	return &Card{
		ID:            "curse",
		Name:          "Curse",
		Cost:          Coins(0),
		Types:         []CardType{TypeCurse},
		VictoryPoints: func(*CardInstance) int { return -1 },
	}
}

// Gardens: worth 1 VP per 10 cards its owner has (round down).
func Gardens() *Card {
	c := victoryCard("gardens", "Gardens", 4, 0)
	c.VictoryPoints = func(ci *CardInstance) int {
		owner := ci.Owner()
		if owner == nil {
			return 0
		}
		return len(owner.AllCards()) / 10
	}
	return c
}

// --- Kingdom cards ---

// Cellar: +1 Action. Discard any number of cards, then draw that many.
func Cellar() *Card {
	return actionCard("cellar", "Cellar", 2, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		p.pool.AddActions(1)
		cards, err := p.PromptBatch(ctx, BatchRequest{
			From:    From(ZoneHand),
			Min:     0,
			Max:     Unbounded,
			Message: "Discard any number of cards, then draw that many",
		})
		if err != nil {
			return err
		}
		if err := p.DiscardFromHand(ctx, cards...); err != nil {
			return err
		}
		p.Draw(len(cards))
		return nil
	})
}

// Chapel: Trash up to 4 cards from your hand.
func Chapel() *Card {
	return actionCard("chapel", "Chapel", 2, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		cards, err := p.PromptBatch(ctx, BatchRequest{
			From:     From(ZoneHand),
			Selector: p.MayTrash,
			Min:      0,
			Max:      4,
			Message:  "Trash up to 4 cards",
		})
		if err != nil {
			return err
		}
		return p.TrashFromHand(ctx, cards...)
	})
}

// Harbinger: +1 Card, +1 Action. Look through your discard pile. You may put
// a card from it onto your deck.
func Harbinger() *Card {
	return actionCard("harbinger", "Harbinger", 3, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		plus(p, 1, 1, 0, 0)
		card, err := p.PromptOne(ctx, From(ZoneDiscard), nil, false, "You may put a card from your discard pile onto your deck")
		if err != nil || card == nil {
			return err
		}
		p.TopDeck(card)
		return nil
	})
}

// Market: +1 Card, +1 Action, +1 Buy, +$1.
func Market() *Card {
	return actionCard("market", "Market", 5, func(_ context.Context, pc *PlayContext) error {
		plus(pc.Player(), 1, 1, 1, 1)
		return nil
	})
}

// Merchant: +1 Card, +1 Action. The first time you play a Silver this
// turn, +$1.
func Merchant() *Card {
	return actionCard("merchant", "Merchant", 3, func(_ context.Context, pc *PlayContext) error {
		p := pc.Player()
		plus(p, 1, 1, 0, 0)

		triggers := p.kingdom.triggers
		var bonus Subscription
		bonus = triggers.On(TriggerWhenPlay, func(_ context.Context, tc TriggerContext) error {
			wp := tc.(*WhenPlayContext)
			if wp.Player() != p || wp.Card.Card.ID != "silver" {
				return nil
			}
			p.pool.AddCoins(1)
			triggers.Remove(bonus)
			return nil
		})
		triggers.Once(TriggerEndOfTurn, func(context.Context, TriggerContext) error {
			triggers.Remove(bonus)
			return nil
		})
		return nil
	})
}

// Militia: +$2. Each other player discards down to 3 cards in hand.
func Militia() *Card {
	return actionCard("militia", "Militia", 4, func(ctx context.Context, pc *PlayContext) error {
		pc.Player().pool.AddCoins(2)
		return attackOpponents(ctx, pc, func(opp *Player) error {
			if opp.hand.Len() <= 3 {
				return nil
			}
			stream := opp.PromptStream(StreamRequest{
				From:    From(ZoneHand),
				Message: "Discard down to 3 cards",
			})
			for opp.hand.Len() > 3 {
				card, err := stream.Next(ctx)
				if err != nil {
					return err
				}
				if err := opp.DiscardCard(ctx, card); err != nil {
					return err
				}
			}
			return nil
		})
	}, TypeAttack)
}

// Moat: +2 Cards. When another player plays an Attack card, you may first
// reveal this from your hand, to be unaffected by it.
func Moat() *Card {
	c := actionCard("moat", "Moat", 2, func(_ context.Context, pc *PlayContext) error {
		pc.Player().Draw(2)
		return nil
	}, TypeReaction)
	c.Abilities[TriggerWhenPlay] = Callback(func(ctx context.Context, moat *CardInstance, wp *WhenPlayContext) error {
		if !wp.Card.IsType(TypeAttack) {
			return nil
		}
		owner := moat.Owner()
		if owner == nil {
			return stateErrorf("moat", "%s has no owner", moat.ID)
		}
		if owner == wp.Player() || wp.IsUnaffected(owner) {
			return nil
		}
		revealed, err := owner.PromptOne(ctx, FromCards(moat), nil, false, "Reveal Moat to be unaffected by "+wp.Card.Card.Name+"?")
		if err != nil || revealed == nil {
			return err
		}
		owner.RevealCards(revealed)
		wp.AddUnaffected(owner)
		return nil
	})
	return c
}

// Moneylender: You may trash a Copper from your hand for +$3.
func Moneylender() *Card {
	return actionCard("moneylender", "Moneylender", 4, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		copper, err := p.PromptOne(ctx, From(ZoneHand), func(c *CardInstance) bool {
			return c.Card.ID == "copper" && p.MayTrash(c)
		}, false, "You may trash a Copper for +$3")
		if err != nil || copper == nil {
			return err
		}
		if err := p.TrashFromHand(ctx, copper); err != nil {
			return err
		}
		p.pool.AddCoins(3)
		return nil
	})
}

// Poacher: +1 Card, +1 Action, +$1. Discard a card per empty Supply pile.
func Poacher() *Card {
	return actionCard("poacher", "Poacher", 4, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		plus(p, 1, 1, 0, 1)
		empty := p.kingdom.EmptyPiles()
		if empty == 0 {
			return nil
		}
		cards, err := p.PromptBatch(ctx, BatchRequest{
			From:     From(ZoneHand),
			Selector: p.MayDiscard,
			Min:      empty,
			Max:      empty,
			Message:  "Discard a card per empty Supply pile",
		})
		if err != nil {
			return err
		}
		return p.DiscardFromHand(ctx, cards...)
	})
}

// Remodel: Trash a card from your hand. Gain a card costing up to $2 more
// than it.
func Remodel() *Card {
	return actionCard("remodel", "Remodel", 4, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		trashed, err := p.PromptOne(ctx, From(ZoneHand), p.MayTrash, true, "Trash a card")
		if err != nil || trashed == nil {
			return err
		}
		if err := p.TrashFromHand(ctx, trashed); err != nil {
			return err
		}
		return gainCosting(ctx, p, trashed.Card.Cost.Plus(2), GainToDiscard)
	})
}

// Throne Room: You may play an Action card from your hand twice.
func ThroneRoom() *Card {
	return actionCard("throne_room", "Throne Room", 4, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		card, err := p.PromptOne(ctx, From(ZoneHand), OfType(TypeAction), false, "Choose an action to play twice")
		if err != nil || card == nil {
			return err
		}
		played, err := p.PlayCard(ctx, card)
		if err != nil {
			return err
		}
		return p.ReplayCard(ctx, played)
	})
}

// Vassal: +$2. Discard the top card of your deck. If it's an Action card,
// you may play it.
func Vassal() *Card {
	return actionCard("vassal", "Vassal", 3, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		p.pool.AddCoins(2)
		top := p.RevealFromDeck()
		if top == nil {
			return nil
		}
		if err := p.DiscardCard(ctx, top); err != nil {
			return err
		}
		if !top.IsType(TypeAction) {
			return nil
		}
		chosen, err := p.PromptOne(ctx, FromCards(top), nil, false, "Play "+top.Card.Name+"?")
		if err != nil || chosen == nil {
			return err
		}
		_, err = p.PlayCard(ctx, chosen)
		return err
	})
}

// Village: +1 Card, +2 Actions.
func Village() *Card {
	return actionCard("village", "Village", 3, func(_ context.Context, pc *PlayContext) error {
		plus(pc.Player(), 1, 2, 0, 0)
		return nil
	})
}

// Workshop: Gain a card costing up to $4.
func Workshop() *Card {
	return actionCard("workshop", "Workshop", 3, func(ctx context.Context, pc *PlayContext) error {
		return gainCosting(ctx, pc.Player(), Coins(4), GainToDiscard)
	})
}

// Bureaucrat: Gain a Silver onto your deck. Each other player reveals a
// Victory card from their hand and puts it onto their deck (or reveals a
// hand with no Victory cards).
func Bureaucrat() *Card {
	return actionCard("bureaucrat", "Bureaucrat", 4, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		if _, ok := p.kingdom.Supply("silver"); ok {
			if _, err := p.GainFromSupply(ctx, "silver", GainToDeck); err != nil {
				return err
			}
		}
		return attackOpponents(ctx, pc, func(opp *Player) error {
			card, err := opp.PromptOne(ctx, From(ZoneHand), OfType(TypeVictory), true, "Put a Victory card onto your deck")
			if err != nil {
				return err
			}
			if card == nil {
				opp.RevealCards(opp.hand.Cards()...)
				return nil
			}
			opp.RevealCards(card)
			opp.TopDeck(card)
			return nil
		})
	}, TypeAttack)
}

// Smithy: +3 Cards.
func Smithy() *Card {
	return actionCard("smithy", "Smithy", 4, func(_ context.Context, pc *PlayContext) error {
		pc.Player().Draw(3)
		return nil
	})
}

// Laboratory: +2 Cards, +1 Action.
func Laboratory() *Card {
	return actionCard("laboratory", "Laboratory", 5, func(_ context.Context, pc *PlayContext) error {
		plus(pc.Player(), 2, 1, 0, 0)
		return nil
	})
}

// Festival: +2 Actions, +1 Buy, +$2.
func Festival() *Card {
	return actionCard("festival", "Festival", 5, func(_ context.Context, pc *PlayContext) error {
		plus(pc.Player(), 0, 2, 1, 2)
		return nil
	})
}

// Witch: +2 Cards. Each other player gains a Curse.
func Witch() *Card {
	return actionCard("witch", "Witch", 5, func(ctx context.Context, pc *PlayContext) error {
		p := pc.Player()
		p.Draw(2)
		if _, ok := p.kingdom.Supply("curse"); !ok {
			return nil
		}
		return attackOpponents(ctx, pc, func(opp *Player) error {
			_, err := opp.GainFromSupply(ctx, "curse", GainToDiscard)
			return err
		})
	}, TypeAttack)
}

// gainCosting lets the player gain a supply card costing up to max.
func gainCosting(ctx context.Context, p *Player, max Price, target GainTarget) error {
	card, err := p.PromptOne(ctx, From(ZoneSupply), CostingUpTo(max), true, "Gain a card costing up to "+max.String())
	if err != nil || card == nil {
		return err
	}
	return p.GainCard(ctx, card, target)
}
