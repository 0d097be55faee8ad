package midi

// DialEvent is sent when a physical encoder turns
type DialEvent struct {
	Slot  int // 1..8
	Value uint8
}

// ButtonEvent is sent when a physical button is pressed or released
type ButtonEvent struct {
	Slot    int // 1..10
	Pressed bool
}

// Surface is the interface for physical control surfaces. The engine
// consumes (slot, raw value) events and pushes ring feedback; no wire
// protocol detail crosses this boundary.
type Surface interface {
	ID() string

	// Input events from the hardware
	DialEvents() <-chan DialEvent
	ButtonEvents() <-chan ButtonEvent

	// Encoder ring LED feedback
	SetRing(slot int, value uint8) error

	// Lifecycle
	Close() error
}

// SlotMap translates between wire numbers and physical slots
type SlotMap struct {
	DialCC     []uint8 // CC number per dial slot, index 0 = slot 1
	RingCC     []uint8 // CC number for ring feedback per dial slot
	ButtonNote []uint8 // note number per button slot
}

// DialSlot returns the dial slot for a CC number (0 if unmapped)
func (m SlotMap) DialSlot(cc uint8) int {
	for i, n := range m.DialCC {
		if n == cc {
			return i + 1
		}
	}
	return 0
}

// ButtonSlot returns the button slot for a note number (0 if unmapped)
func (m SlotMap) ButtonSlot(note uint8) int {
	for i, n := range m.ButtonNote {
		if n == note {
			return i + 1
		}
	}
	return 0
}
