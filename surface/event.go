package surface

// EventKind distinguishes input queue entries
type EventKind int

const (
	EventDial EventKind = iota
	EventButton
)

// InputEvent is one physical slot event. Producers (MIDI listener threads,
// the TUI keyboard fallback) post these onto the engine's queue; the frame
// loop drains them in arrival order.
type InputEvent struct {
	Kind    EventKind
	Slot    int     // dial 1..NumDials or button 1..NumButtons
	Raw     float64 // dial value 0..127
	Pressed bool    // button down (releases are dropped at the transport)
}
