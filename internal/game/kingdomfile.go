package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KingdomFile represents the top-level YAML structure.
type KingdomFile struct {
	Kingdoms []KingdomSet `yaml:"kingdoms"`
}

// KingdomSet is a named selection of kingdom card piles. Treasure, victory
// and curse piles are added by BaseSupply.
type KingdomSet struct {
	Name  string      `yaml:"name" json:"name"`
	Piles []PileEntry `yaml:"piles" json:"piles"`
}

// ParseKingdoms decodes and validates kingdom sets from YAML.
func ParseKingdoms(data []byte) ([]KingdomSet, error) {
	var kf KingdomFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse kingdom YAML: %w", err)
	}
	base := make(map[string]bool)
	for _, e := range BaseSupply(MaxPlayers) {
		base[e.Card] = true
	}
	seen := make(map[string]bool)
	for _, set := range kf.Kingdoms {
		if seen[set.Name] {
			return nil, fmt.Errorf("kingdom %q defined twice", set.Name)
		}
		seen[set.Name] = true
		cards := make(map[string]bool)
		for _, e := range set.Piles {
			if _, ok := CardRegistry[e.Card]; !ok {
				return nil, fmt.Errorf("kingdom %q: unknown card %q", set.Name, e.Card)
			}
			if base[e.Card] {
				return nil, fmt.Errorf("kingdom %q: %s is a base supply card", set.Name, e.Card)
			}
			if cards[e.Card] {
				return nil, fmt.Errorf("kingdom %q: %s listed twice", set.Name, e.Card)
			}
			cards[e.Card] = true
			if e.Count <= 0 {
				return nil, fmt.Errorf("kingdom %q: %s count must be positive", set.Name, e.Card)
			}
		}
	}
	return kf.Kingdoms, nil
}

// ParseKingdomFile reads a YAML kingdom file.
func ParseKingdomFile(path string) ([]KingdomSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKingdoms(data)
}

// KingdomByName returns the named set from the kingdom file.
func KingdomByName(path, name string) (KingdomSet, error) {
	sets, err := ParseKingdomFile(path)
	if err != nil {
		return KingdomSet{}, err
	}
	for _, s := range sets {
		if s.Name == name {
			return s, nil
		}
	}
	return KingdomSet{}, fmt.Errorf("kingdom %q not found (have %d kingdoms)", name, len(sets))
}

// MaxPlayers is the largest table the base supply is sized for.
const MaxPlayers = 6

// BaseSupply returns the treasure, victory and curse piles for a game with
// the given number of players.
func BaseSupply(players int) []PileEntry {
	victory := 8
	if players > 2 {
		victory = 12
	}
	curses := 10 * (players - 1)
	if curses < 10 {
		curses = 10
	}
	return []PileEntry{
		{Card: "copper", Count: 60 - 7*players},
		{Card: "silver", Count: 40},
		{Card: "gold", Count: 30},
		{Card: "estate", Count: victory},
		{Card: "duchy", Count: victory},
		{Card: "province", Count: victory},
		{Card: "curse", Count: curses},
	}
}

// SetupGame fills the supply with the base piles followed by the set's piles.
func (k *Kingdom) SetupGame(set KingdomSet, players int) error {
	if players < 1 || players > MaxPlayers {
		return stateErrorf("setup", "%d players, must be 1-%d", players, MaxPlayers)
	}
	if err := k.SetupSupply(BaseSupply(players)); err != nil {
		return err
	}
	return k.SetupSupply(set.Piles)
}
