package midi

// EventType identifies the kind of MIDI-equivalent event the engine emits
type EventType int

const (
	NoteOn EventType = iota
	NoteOff
	ControlChange
	Trigger // momentary note on + immediate off (drum hits)
)

func (t EventType) String() string {
	switch t {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ControlChange:
		return "control_change"
	case Trigger:
		return "trigger"
	}
	return "unknown"
}

// Event is one structured event handed to the dispatch boundary
type Event struct {
	Type       EventType
	Channel    uint8 // 1..16
	Note       uint8
	Velocity   uint8
	Controller uint8 // CC number (ControlChange only)
	Value      uint8 // CC value 0..127 (ControlChange only)
}

// Dispatcher is the external dispatch boundary. Delivery is fire-and-forget:
// a returned error is surfaced out-of-band and never retried by the engine.
type Dispatcher interface {
	Send(Event) error
}

// DispatcherFunc adapts a function to the Dispatcher interface
type DispatcherFunc func(Event) error

func (f DispatcherFunc) Send(e Event) error { return f(e) }

// Discard swallows all events (no MIDI port configured)
var Discard Dispatcher = DispatcherFunc(func(Event) error { return nil })
