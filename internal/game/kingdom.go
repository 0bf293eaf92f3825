package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jeengbe/dominion/internal/log"
)

const (
	MinPlayers           = 2
	DefaultMaxTurns      = 200 // safety limit
	DefaultMaxViolations = 3
	EmptyPilesToEnd      = 3
)

// PileEntry is a card and how many copies of it to create.
type PileEntry struct {
	Card  string `yaml:"card" json:"card"`
	Count int    `yaml:"count" json:"count"`
}

// StartingDeck is the deck every player begins with.
var StartingDeck = []PileEntry{
	{Card: "estate", Count: 3},
	{Card: "copper", Count: 7},
}

// Config holds configuration for creating a new kingdom.
type Config struct {
	Logger        log.EventLogger
	Seed          int64 // RNG seed (0 for random)
	NoShuffle     bool  // skip shuffling starting decks (for deterministic tests)
	MaxTurns      int   // stop after this many turns (0 = DefaultMaxTurns)
	MaxViolations int   // consecutive bad responses to one prompt before aborting (0 = DefaultMaxViolations)
	StartingDeck  []PileEntry
}

// Kingdom is the shared state of one game: supply, trash, roster and the
// trigger registry.
type Kingdom struct {
	Logger log.EventLogger

	ctx           context.Context
	rng           *rand.Rand
	noShuffle     bool
	maxTurns      int
	maxViolations int
	startingDeck  []PileEntry

	supply      map[string]*Pile
	supplyOrder []string
	trash       *Pile
	players     []*Player
	triggers    *Triggers

	nextID  int
	active  int
	turn    int
	started bool
	over    bool
	result  string
}

// NewKingdom creates an empty kingdom.
func NewKingdom(cfg Config) *Kingdom {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}
	maxViolations := cfg.MaxViolations
	if maxViolations <= 0 {
		maxViolations = DefaultMaxViolations
	}
	startingDeck := cfg.StartingDeck
	if startingDeck == nil {
		startingDeck = StartingDeck
	}

	k := &Kingdom{
		Logger:        logger,
		ctx:           context.Background(),
		rng:           rand.New(rand.NewSource(seed)),
		noShuffle:     cfg.NoShuffle,
		maxTurns:      maxTurns,
		maxViolations: maxViolations,
		startingDeck:  startingDeck,
		supply:        make(map[string]*Pile),
		trash:         NewPile("trash", ZoneTrash),
	}
	k.triggers = newTriggers(k)
	return k
}

func (k *Kingdom) Triggers() *Triggers { return k.triggers }
func (k *Kingdom) Trash() *Pile        { return k.trash }
func (k *Kingdom) Turn() int           { return k.turn }
func (k *Kingdom) Rand() *rand.Rand    { return k.rng }
func (k *Kingdom) IsOver() bool        { return k.over }
func (k *Kingdom) Result() string      { return k.result }

func (k *Kingdom) log(event log.GameEvent) {
	k.Logger.Log(event)
	// Notify clients (ignore errors for notifications)
	for _, p := range k.players {
		_ = p.client.Notify(k.ctx, event)
	}
}

// NewCard creates a card instance with a fresh unique ID.
func (k *Kingdom) NewCard(def *Card) *CardInstance {
	k.nextID++
	return &CardInstance{ID: fmt.Sprintf("%s-%d", def.ID, k.nextID), Card: def}
}

// --- Supply ---

// AddSupply registers a supply pile under id. Ids are unique.
func (k *Kingdom) AddSupply(id string, pile *Pile) error {
	if _, ok := k.supply[id]; ok {
		return stateErrorf("add supply", "duplicate pile id %q", id)
	}
	k.supply[id] = pile
	k.supplyOrder = append(k.supplyOrder, id)
	return nil
}

// AddSupplyCards creates count copies of def and registers them as a pile
// named after the card.
func (k *Kingdom) AddSupplyCards(def *Card, count int) error {
	pile := NewPile(def.ID, ZoneSupply)
	for i := 0; i < count; i++ {
		pile.Push(k.NewCard(def))
	}
	return k.AddSupply(def.ID, pile)
}

// SetupSupply creates the supply piles listed in entries.
func (k *Kingdom) SetupSupply(entries []PileEntry) error {
	for _, e := range entries {
		def, ok := FindCard(e.Card)
		if !ok {
			return stateErrorf("setup supply", "unknown card %q", e.Card)
		}
		if err := k.AddSupplyCards(def, e.Count); err != nil {
			return err
		}
	}
	return nil
}

// Supply returns the supply pile with the given id.
func (k *Kingdom) Supply(id string) (*Pile, bool) {
	p, ok := k.supply[id]
	return p, ok
}

// SupplyIDs returns the supply pile ids in setup order.
func (k *Kingdom) SupplyIDs() []string {
	return append([]string(nil), k.supplyOrder...)
}

// EmptyPiles counts supply piles without cards.
func (k *Kingdom) EmptyPiles() int {
	n := 0
	for _, p := range k.supply {
		if p.IsEmpty() {
			n++
		}
	}
	return n
}

// --- Players ---

// NewPlayer seats a player with the starting deck, shuffled, and draws the
// opening hand.
func (k *Kingdom) NewPlayer(name string, client Client) (*Player, error) {
	if k.started {
		return nil, stateErrorf("new player", "game already started")
	}
	p := &Player{
		name:    name,
		seat:    len(k.players),
		kingdom: k,
		client:  client,
		pool:    NewPool(),
	}
	p.hand = newOwnedPile("hand", ZoneHand, p)
	p.play = newOwnedPile("play", ZonePlay, p)
	p.discard = newOwnedPile("discard", ZoneDiscard, p)
	p.deck = newDeck(p, p.discard, k.rng)
	p.deck.onReshuffle = func() {
		k.log(log.NewShuffleEvent(k.turn, p.phase.String(), p.seat))
	}

	for _, e := range k.startingDeck {
		def, ok := FindCard(e.Card)
		if !ok {
			return nil, stateErrorf("new player", "unknown starting card %q", e.Card)
		}
		for i := 0; i < e.Count; i++ {
			p.deck.Push(k.NewCard(def))
		}
	}
	if !k.noShuffle {
		p.deck.Shuffle(k.rng)
	}

	k.players = append(k.players, p)
	p.Draw(InitialHandSize)
	return p, nil
}

// RemovePlayer takes a player out of the roster. Later seats move up.
func (k *Kingdom) RemovePlayer(p *Player) error {
	for i, q := range k.players {
		if q != p {
			continue
		}
		k.players = append(k.players[:i], k.players[i+1:]...)
		for j := i; j < len(k.players); j++ {
			k.players[j].seat = j
		}
		if k.active > i || (k.active == i && k.active >= len(k.players)) {
			k.active--
		}
		if k.active < 0 {
			k.active = 0
		}
		return nil
	}
	return fmt.Errorf("remove player %s: %w", p.name, ErrNotFound)
}

// Players returns the roster in seat order.
func (k *Kingdom) Players() []*Player {
	return append([]*Player(nil), k.players...)
}

// ActivePlayer returns the player whose turn it is.
func (k *Kingdom) ActivePlayer() *Player {
	if len(k.players) == 0 {
		return nil
	}
	return k.players[k.active]
}

// turnOrder returns every player, starting with the active one.
func (k *Kingdom) turnOrder() []*Player {
	n := len(k.players)
	out := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, k.players[(k.active+i)%n])
	}
	return out
}

// Opponents returns the other players in turn order after p.
func (k *Kingdom) Opponents(p *Player) []*Player {
	n := len(k.players)
	out := make([]*Player, 0, n)
	for i := 1; i < n; i++ {
		out = append(out, k.players[(p.seat+i)%n])
	}
	return out
}

// --- Game loop ---

// Run plays turns until the game ends.
func (k *Kingdom) Run(ctx context.Context) error {
	if len(k.players) < MinPlayers {
		return stateErrorf("start game", "need at least %d players, have %d", MinPlayers, len(k.players))
	}
	if k.started {
		return stateErrorf("start game", "game already started")
	}
	k.started = true
	k.ctx = ctx

	for !k.over {
		if k.turn >= k.maxTurns {
			k.finish(fmt.Sprintf("turn limit reached (%d turns)", k.maxTurns))
			break
		}
		if err := k.runTurn(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kingdom) runTurn(ctx context.Context) error {
	k.turn++
	p := k.players[k.active]
	k.log(log.NewTurnEvent(k.turn, p.seat))

	if err := p.TakeTurn(ctx); err != nil {
		return fmt.Errorf("turn %d (%s): %w", k.turn, p.name, err)
	}

	if reason, over := k.endCondition(); over {
		k.finish(reason)
		return nil
	}
	k.active = (k.active + 1) % len(k.players)
	return nil
}

func (k *Kingdom) endCondition() (string, bool) {
	if p, ok := k.supply["province"]; ok && p.IsEmpty() {
		return "province pile empty", true
	}
	if n := k.EmptyPiles(); n >= EmptyPilesToEnd {
		return fmt.Sprintf("%d supply piles empty", n), true
	}
	return "", false
}

func (k *Kingdom) finish(reason string) {
	k.over = true
	k.result = reason
	k.log(log.NewGameOverEvent(k.turn, reason))
	for _, s := range k.Scores() {
		k.log(log.NewScoreEvent(k.turn, s.Player.seat, s.Points))
	}
}

// Score is a player's final victory point total.
type Score struct {
	Player *Player
	Points int
}

// Scores returns every player's points, highest first. Ties keep seat order.
func (k *Kingdom) Scores() []Score {
	scores := make([]Score, len(k.players))
	for i, p := range k.players {
		scores[i] = Score{Player: p, Points: p.VictoryPoints()}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Points > scores[j].Points })
	return scores
}

// Winners returns the players with the highest score.
func (k *Kingdom) Winners() []*Player {
	scores := k.Scores()
	if len(scores) == 0 {
		return nil
	}
	var out []*Player
	for _, s := range scores {
		if s.Points == scores[0].Points {
			out = append(out, s.Player)
		}
	}
	return out
}
