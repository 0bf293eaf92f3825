package game

import (
	"context"
	"testing"

	"github.com/jeengbe/dominion/internal/log"
)

// ScriptedClient is a Client that answers prompts from a predefined script.
// Used in tests to deterministically drive the game.
type ScriptedClient struct {
	t      *testing.T
	name   string
	script []scriptedResponse
	pos    int

	Prompts    []Prompt
	Violations []error
	Events     []log.GameEvent
}

type scriptedResponse struct {
	// Pick candidates by card kind id, e.g. "copper". Repeats pick further
	// copies (or dig deeper into a supply pile).
	Kinds []string
	Stop  bool
	Raw   *Selection
}

func NewScriptedClient(t *testing.T, name string) *ScriptedClient {
	return &ScriptedClient{t: t, name: name}
}

// AddPick answers the next prompt with candidates of the given kinds. With no
// kinds it selects nothing.
func (sc *ScriptedClient) AddPick(kinds ...string) *ScriptedClient {
	sc.script = append(sc.script, scriptedResponse{Kinds: kinds})
	return sc
}

// AddStop answers the next stream prompt with "stop".
func (sc *ScriptedClient) AddStop() *ScriptedClient {
	sc.script = append(sc.script, scriptedResponse{Stop: true})
	return sc
}

// AddRaw answers the next prompt with a literal response.
func (sc *ScriptedClient) AddRaw(sel Selection) *ScriptedClient {
	sc.script = append(sc.script, scriptedResponse{Raw: &sel})
	return sc
}

// Remaining returns the number of unused script entries.
func (sc *ScriptedClient) Remaining() int {
	return len(sc.script) - sc.pos
}

func (sc *ScriptedClient) PromptCards(ctx context.Context, prompt Prompt) (Selection, error) {
	sc.Prompts = append(sc.Prompts, prompt)

	if sc.pos >= len(sc.script) {
		// Default: stop where allowed, otherwise take the first Min candidates
		if prompt.AllowStop {
			return Stop(prompt.Zone), nil
		}
		n := prompt.Min
		if prompt.Kind == PromptStream {
			n = 1
		}
		if n > len(prompt.Candidates) {
			n = len(prompt.Candidates)
		}
		ids := make([]string, 0, n)
		for _, c := range prompt.Candidates[:n] {
			ids = append(ids, c.ID)
		}
		return pick(prompt.Zone, ids), nil
	}

	entry := sc.script[sc.pos]
	sc.pos++

	switch {
	case entry.Raw != nil:
		return *entry.Raw, nil
	case entry.Stop:
		return Stop(prompt.Zone), nil
	}

	used := make(map[string]bool)
	ids := make([]string, 0, len(entry.Kinds))
	for _, kind := range entry.Kinds {
		found := false
		for _, c := range prompt.Candidates {
			if c.Card != kind || (prompt.Zone != ZoneSupply && used[c.ID]) {
				continue
			}
			used[c.ID] = true
			ids = append(ids, c.ID)
			found = true
			break
		}
		if !found {
			sc.t.Fatalf("[%s] scripted pick %q not among candidates %v", sc.name, kind, candidateKinds(prompt))
		}
	}
	return pick(prompt.Zone, ids), nil
}

func (sc *ScriptedClient) ReportViolation(ctx context.Context, err error) error {
	sc.Violations = append(sc.Violations, err)
	return nil
}

func (sc *ScriptedClient) Notify(ctx context.Context, event log.GameEvent) error {
	sc.Events = append(sc.Events, event)
	return nil
}

func pick(z Zone, ids []string) Selection {
	if z == ZoneSupply {
		return PickPiles(ids...)
	}
	return PickCards(ids...)
}

func candidateKinds(p Prompt) []string {
	out := make([]string, len(p.Candidates))
	for i, c := range p.Candidates {
		out[i] = c.Card
	}
	return out
}

// bigMoneyClient plays every treasure and buys Province, Gold or Silver.
type bigMoneyClient struct{}

func (bigMoneyClient) PromptCards(ctx context.Context, prompt Prompt) (Selection, error) {
	switch {
	case prompt.Zone == ZoneSupply && prompt.Kind == PromptStream:
		for _, want := range []string{"province", "gold", "silver"} {
			for _, c := range prompt.Candidates {
				if c.Card == want {
					return PickPiles(c.ID), nil
				}
			}
		}
		return Stop(ZoneSupply), nil
	case prompt.Zone == ZoneHand && prompt.Kind == PromptStream && prompt.AllowStop:
		for _, c := range prompt.Candidates {
			if c.Card == "copper" || c.Card == "silver" || c.Card == "gold" {
				return PickCards(c.ID), nil
			}
		}
		return Stop(ZoneHand), nil
	case prompt.Kind == PromptStream && !prompt.AllowStop:
		return PickCards(prompt.Candidates[0].ID), nil
	case prompt.Kind == PromptStream:
		return Stop(prompt.Zone), nil
	}
	ids := make([]string, 0, prompt.Min)
	for _, c := range prompt.Candidates[:prompt.Min] {
		ids = append(ids, c.ID)
	}
	return pick(prompt.Zone, ids), nil
}

func (bigMoneyClient) ReportViolation(context.Context, error) error { return nil }
func (bigMoneyClient) Notify(context.Context, log.GameEvent) error  { return nil }

// --- Setup helpers ---

// newTestKingdom creates an unshuffled kingdom with a memory logger.
func newTestKingdom(t *testing.T) (*Kingdom, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	k := NewKingdom(Config{Logger: logger, Seed: 1, NoShuffle: true, MaxTurns: 100})
	return k, logger
}

func newTestPlayer(t *testing.T, k *Kingdom, name string) (*Player, *ScriptedClient) {
	t.Helper()
	sc := NewScriptedClient(t, name)
	p, err := k.NewPlayer(name, sc)
	if err != nil {
		t.Fatalf("NewPlayer(%s): %v", name, err)
	}
	return p, sc
}

func addSupply(t *testing.T, k *Kingdom, entries ...PileEntry) {
	t.Helper()
	if err := k.SetupSupply(entries); err != nil {
		t.Fatalf("SetupSupply: %v", err)
	}
}

// giveToHand creates cards of the given definitions directly in p's hand.
func giveToHand(p *Player, defs ...*Card) []*CardInstance {
	out := make([]*CardInstance, len(defs))
	for i, def := range defs {
		out[i] = p.kingdom.NewCard(def)
		p.hand.Push(out[i])
	}
	return out
}

// stackDeck puts cards on top of p's deck so that index 0 is drawn first.
func stackDeck(p *Player, defs ...*Card) []*CardInstance {
	out := make([]*CardInstance, len(defs))
	for i := len(defs) - 1; i >= 0; i-- {
		out[i] = p.kingdom.NewCard(defs[i])
		p.deck.Push(out[i])
	}
	return out
}

func countKind(cards []*CardInstance, kind string) int {
	n := 0
	for _, c := range cards {
		if c.Card.ID == kind {
			n++
		}
	}
	return n
}

// engineCard is +1 Card, +2 Actions, +1 Buy.
func engineCard() *Card {
	return actionCard("engine", "Engine", 5, func(_ context.Context, pc *PlayContext) error {
		plus(pc.Player(), 1, 2, 1, 0)
		return nil
	})
}

func logEvents(t *testing.T, logger *log.MemoryLogger) {
	t.Helper()
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
}
