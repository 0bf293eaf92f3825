package game

import "testing"

// TestCanBeBoughtWith: affordability depends on coins only.
func TestCanBeBoughtWith(t *testing.T) {
	pool := NewPool()
	for buys := -1; buys <= 3; buys++ {
		for coins := 0; coins <= 6; coins++ {
			pool.SetBuys(buys)
			pool.SetCoins(coins)
			got := Coins(4).CanBeBoughtWith(pool)
			if got != (coins >= 4) {
				t.Errorf("buys=%d coins=%d: CanBeBoughtWith=%v", buys, coins, got)
			}
		}
	}
}

// TestProcessBuy: a purchase spends one buy and the price.
func TestProcessBuy(t *testing.T) {
	pool := NewPool()
	pool.AddCoins(5)
	pool.AddBuys(1)

	if err := pool.ProcessBuy(Coins(3)); err != nil {
		t.Fatalf("ProcessBuy: %v", err)
	}
	if pool.Buys() != 1 || pool.Coins() != 2 {
		t.Errorf("Expected buys=1 coins=2, got %s", pool)
	}
}

// TestProcessBuyRejectsWithoutMutation: unaffordable or buy-less purchases change nothing.
func TestProcessBuyRejectsWithoutMutation(t *testing.T) {
	pool := NewPool()
	pool.SetCoins(2)

	err := pool.ProcessBuy(Coins(3))
	if !IsRuleError(err) {
		t.Fatalf("Expected RuleError, got %v", err)
	}
	if pool.Buys() != 1 || pool.Coins() != 2 {
		t.Errorf("Pool changed: %s", pool)
	}

	pool.SetBuys(0)
	pool.SetCoins(10)
	if err := pool.ProcessBuy(Coins(0)); !IsRuleError(err) {
		t.Fatalf("Expected RuleError with no buys, got %v", err)
	}
	if pool.Coins() != 10 {
		t.Errorf("Coins changed: %d", pool.Coins())
	}
}

func TestPoolReset(t *testing.T) {
	pool := NewPool()
	pool.AddActions(3)
	pool.RemoveBuys(1)
	pool.AddCoins(7)
	pool.Reset()
	if pool.Actions() != 1 || pool.Buys() != 1 || pool.Coins() != 0 {
		t.Errorf("Expected (1,1,0), got %s", pool)
	}
}

func TestPriceHelpers(t *testing.T) {
	if !Coins(4).LessOrEqual(Coins(4)) || Coins(5).LessOrEqual(Coins(4)) {
		t.Error("LessOrEqual is wrong")
	}
	if Coins(3).Plus(2) != Coins(5) {
		t.Error("Plus is wrong")
	}
}
