package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseStartOfTurn
	PhaseAction
	PhaseBuyTreasures
	PhaseBuyPurchases
	PhaseCleanUp
	PhaseEndOfTurn
)

func (p Phase) String() string {
	switch p {
	case PhaseStartOfTurn:
		return "Start of Turn"
	case PhaseAction:
		return "Action Phase"
	case PhaseBuyTreasures:
		return "Buy Phase"
	case PhaseBuyPurchases:
		return "Buy Phase (B)"
	case PhaseCleanUp:
		return "Clean-up Phase"
	case PhaseEndOfTurn:
		return "End of Turn"
	default:
		return "None"
	}
}

type CardType int

const (
	TypeAction CardType = iota
	TypeTreasure
	TypeVictory
	TypeReaction
	TypeCurse
	TypeAttack
	TypeDuration
	TypeRuins
	TypeTraveller
	TypeReserve
	TypeNight
	TypeCastle
	TypeDoom
	TypeFate
	TypeGathering
	TypeHeirloom
	TypeKnight
	TypeLooter
	TypePrize
	TypeShelter
	TypeSpirit
	TypeZombie
)

var cardTypeNames = [...]string{
	"Action", "Treasure", "Victory", "Reaction", "Curse", "Attack", "Duration",
	"Ruins", "Traveller", "Reserve", "Night", "Castle", "Doom", "Fate",
	"Gathering", "Heirloom", "Knight", "Looter", "Prize", "Shelter", "Spirit",
	"Zombie",
}

func (t CardType) String() string {
	if t < 0 || int(t) >= len(cardTypeNames) {
		return "Unknown"
	}
	return cardTypeNames[t]
}

// Zone names a card container. ZoneCards is an explicit card list handed to a
// prompt rather than a real zone.
type Zone int

const (
	ZoneSupply Zone = iota
	ZoneHand
	ZonePlay
	ZoneDiscard
	ZoneDeck
	ZoneTrash
	ZoneCards
)

func (z Zone) String() string {
	switch z {
	case ZoneSupply:
		return "Supply"
	case ZoneHand:
		return "Hand"
	case ZonePlay:
		return "Play"
	case ZoneDiscard:
		return "Discard"
	case ZoneDeck:
		return "Deck"
	case ZoneTrash:
		return "Trash"
	case ZoneCards:
		return "Cards"
	default:
		return "Unknown"
	}
}

// GainTarget is where a gained card ends up.
type GainTarget int

const (
	GainToDiscard GainTarget = iota
	GainToDeck
	GainToHand
)

func (g GainTarget) String() string {
	switch g {
	case GainToDeck:
		return "Deck"
	case GainToHand:
		return "Hand"
	default:
		return "Discard"
	}
}

// --- Card definitions ---

// Card is the static definition of a card kind.
type Card struct {
	ID        string // registry key and supply pile id, e.g. "throne_room"
	Name      string
	Cost      Price
	Types     []CardType
	Abilities map[Trigger]Ability

	// VictoryPoints scores the card for its owner. nil means 0.
	VictoryPoints func(card *CardInstance) int
}

// IsType reports whether the card carries the given type tag.
func (c *Card) IsType(t CardType) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// Ability returns the card's ability for a trigger kind, or nil.
func (c *Card) Ability(t Trigger) Ability {
	if c.Abilities == nil {
		return nil
	}
	return c.Abilities[t]
}

// TypeLine returns the card's types joined for display, e.g. "Action - Attack".
func (c *Card) TypeLine() string {
	s := ""
	for i, t := range c.Types {
		if i > 0 {
			s += " - "
		}
		s += t.String()
	}
	return s
}

// CardInstance is a single physical card in a game.
type CardInstance struct {
	ID   string
	Card *Card

	zone *Pile
}

// Owner returns the player holding the card's current zone. Cards in the
// supply or trash have no owner.
func (ci *CardInstance) Owner() *Player {
	if ci.zone == nil {
		return nil
	}
	return ci.zone.owner
}

// Zone returns the pile currently holding the card, or nil.
func (ci *CardInstance) Zone() *Pile {
	return ci.zone
}

// IsType is a shorthand for ci.Card.IsType.
func (ci *CardInstance) IsType(t CardType) bool {
	return ci.Card.IsType(t)
}

// VictoryPoints scores the card for its current owner.
func (ci *CardInstance) VictoryPoints() int {
	if ci.Card.VictoryPoints == nil {
		return 0
	}
	return ci.Card.VictoryPoints(ci)
}

func (ci *CardInstance) String() string {
	return fmt.Sprintf("%s (%s)", ci.Card.Name, ci.ID)
}
