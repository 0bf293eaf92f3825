package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewTurnEvent(1, 0))
	l.Log(NewDrawEvent(1, "Clean-up", 0, 1))
	l.Log(NewDrawEvent(1, "Clean-up", 1, 5))

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("Event %d has seq %d", i, e.Seq)
		}
	}
	draws := l.EventsOfType(EventDraw)
	if len(draws) != 2 || draws[0].Details != "P1 draws 1 card" || draws[1].Details != "P2 draws 5 cards" {
		t.Errorf("Unexpected draws %+v", draws)
	}
	if last := l.LastEvent(); last.Count != 5 {
		t.Errorf("Unexpected last event %+v", last)
	}

	// Events returns a copy
	events[0].Details = "changed"
	if l.Events()[0].Details == "changed" {
		t.Error("Events should not expose the logger's slice")
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewBuyEvent(3, "Buy", 1, "Silver", 3))
	l.Log(NewGameOverEvent(3, "province pile empty"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", buf.String())
	}
	if !strings.HasSuffix(lines[0], "| P2 buys Silver for $3") || !strings.HasPrefix(lines[0], "T3 ") {
		t.Errorf("Unexpected line %q", lines[0])
	}
	if len(l.Events()) != 2 || l.LastEvent().Type != EventGameOver {
		t.Error("TextLogger should also keep the events")
	}
	if got := FormatAll(l.Events()); got != buf.String() {
		t.Errorf("FormatAll differs from written output:\n%s\n%s", got, buf.String())
	}
}

func TestEventTypeString(t *testing.T) {
	if EventTopDeck.String() != "TopDeck" || EventType(99).String() != "Unknown" {
		t.Error("Unexpected event type names")
	}
}
