package game

import "fmt"

// Price is the cost of a card.
type Price struct {
	Coins int
}

// Coins is shorthand for a coin-only price.
func Coins(n int) Price { return Price{Coins: n} }

// CanBeBoughtWith reports whether the pool holds enough coins to pay the price.
// The number of buys left is not considered.
func (p Price) CanBeBoughtWith(pool *Pool) bool {
	return pool.Coins() >= p.Coins
}

// LessOrEqual reports whether p costs no more than other.
func (p Price) LessOrEqual(other Price) bool {
	return p.Coins <= other.Coins
}

// Plus returns the price raised by n coins.
func (p Price) Plus(n int) Price {
	return Price{Coins: p.Coins + n}
}

func (p Price) String() string {
	return fmt.Sprintf("$%d", p.Coins)
}

// Pool is a player's per-turn resource ledger.
type Pool struct {
	actions int
	buys    int
	coins   int
}

// NewPool returns a pool in its start-of-turn state.
func NewPool() *Pool {
	p := &Pool{}
	p.Reset()
	return p
}

// Reset sets the pool to one action, one buy and no coins.
func (p *Pool) Reset() {
	p.actions = 1
	p.buys = 1
	p.coins = 0
}

func (p *Pool) Actions() int { return p.actions }
func (p *Pool) Buys() int    { return p.buys }
func (p *Pool) Coins() int   { return p.coins }

func (p *Pool) SetActions(n int) { p.actions = n }
func (p *Pool) SetBuys(n int)    { p.buys = n }
func (p *Pool) SetCoins(n int)   { p.coins = n }

func (p *Pool) AddActions(n int) { p.actions += n }
func (p *Pool) AddBuys(n int)    { p.buys += n }
func (p *Pool) AddCoins(n int)   { p.coins += n }

func (p *Pool) RemoveActions(n int) { p.actions -= n }
func (p *Pool) RemoveBuys(n int)    { p.buys -= n }
func (p *Pool) RemoveCoins(n int)   { p.coins -= n }

// ProcessBuy pays for a purchase: one buy and the price in coins. It fails
// with a RuleError, leaving the pool untouched, when no buy is left or the
// price is not affordable.
func (p *Pool) ProcessBuy(cost Price) error {
	if p.buys < 1 {
		return ruleErrorf("no buys left")
	}
	if !cost.CanBeBoughtWith(p) {
		return ruleErrorf("cost %s exceeds %d coins", cost, p.coins)
	}
	p.buys--
	p.coins -= cost.Coins
	return nil
}

func (p *Pool) String() string {
	return fmt.Sprintf("actions=%d buys=%d coins=%d", p.actions, p.buys, p.coins)
}
