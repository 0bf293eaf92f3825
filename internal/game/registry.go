package game

import (
	"fmt"
	"sort"
)

// CardRegistry maps card ids to their constructor functions.
var CardRegistry = map[string]func() *Card{
	"copper":   Copper,
	"silver":   Silver,
	"gold":     Gold,
	"estate":   Estate,
	"duchy":    Duchy,
	"province": Province,
	"curse":    Curse,
	"gardens":  Gardens,

	"bureaucrat":  Bureaucrat,
	"cellar":      Cellar,
	"chapel":      Chapel,
	"festival":    Festival,
	"harbinger":   Harbinger,
	"laboratory":  Laboratory,
	"market":      Market,
	"merchant":    Merchant,
	"militia":     Militia,
	"moat":        Moat,
	"moneylender": Moneylender,
	"poacher":     Poacher,
	"remodel":     Remodel,
	"smithy":      Smithy,
	"throne_room": ThroneRoom,
	"vassal":      Vassal,
	"village":     Village,
	"witch":       Witch,
	"workshop":    Workshop,
}

// FindCard returns a fresh definition of the card with the given id.
func FindCard(id string) (*Card, bool) {
	ctor, ok := CardRegistry[id]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// LookupCard returns a fresh definition of the card. It panics on unknown ids.
func LookupCard(id string) *Card {
	c, ok := FindCard(id)
	if !ok {
		panic(fmt.Sprintf("unknown card: %q", id))
	}
	return c
}

// CardIDs returns every registered card id, sorted.
func CardIDs() []string {
	ids := make([]string, 0, len(CardRegistry))
	for id := range CardRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
