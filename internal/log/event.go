package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventDraw
	EventShuffle
	EventPlay
	EventBuy
	EventGain
	EventDiscard
	EventTrash
	EventReveal
	EventTopDeck
	EventViolation
	EventScore
	EventGameOver
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventShuffle:
		return "Shuffle"
	case EventPlay:
		return "Play"
	case EventBuy:
		return "Buy"
	case EventGain:
		return "Gain"
	case EventDiscard:
		return "Discard"
	case EventTrash:
		return "Trash"
	case EventReveal:
		return "Reveal"
	case EventTopDeck:
		return "TopDeck"
	case EventViolation:
		return "Violation"
	case EventScore:
		return "Score"
	case EventGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "Action Phase")
	Player  int       // acting player's seat (0-based), -1 for none
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Count   int       // number of cards or points, where meaningful
	Details string    // human-readable detail string
}
