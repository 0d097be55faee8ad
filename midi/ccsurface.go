package midi

import (
	"fmt"

	"dialdeck/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// CCSurface drives a generic CC-based encoder box (Midi Fighter Twister,
// Faderfox, X-Touch Mini in CC mode): encoders arrive as control changes,
// buttons as notes, ring feedback goes back out as control changes.
type CCSurface struct {
	id       string
	inPort   drivers.In
	outPort  drivers.Out
	send     func(msg gomidi.Message) error
	stopFunc func()
	slots    SlotMap

	dialChan   chan DialEvent
	buttonChan chan ButtonEvent
}

// NewCCSurface opens a surface on the given ports with the given slot map
func NewCCSurface(id string, inPort drivers.In, outPort drivers.Out, slots SlotMap) (*CCSurface, error) {
	s := &CCSurface{
		id:         id,
		inPort:     inPort,
		outPort:    outPort,
		slots:      slots,
		dialChan:   make(chan DialEvent, 32),
		buttonChan: make(chan ButtonEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		s.send = send
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, cc, value uint8
			var note, velocity uint8

			if msg.GetControlChange(&channel, &cc, &value) {
				if slot := s.slots.DialSlot(cc); slot > 0 {
					select {
					case s.dialChan <- DialEvent{Slot: slot, Value: value}:
					default:
					}
				}
				return
			}

			if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
				if slot := s.slots.ButtonSlot(note); slot > 0 {
					select {
					case s.buttonChan <- ButtonEvent{Slot: slot, Pressed: true}:
					default:
					}
				}
				return
			}

			if msg.GetNoteOff(&channel, &note, &velocity) {
				if slot := s.slots.ButtonSlot(note); slot > 0 {
					select {
					case s.buttonChan <- ButtonEvent{Slot: slot, Pressed: false}:
					default:
					}
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		s.stopFunc = stop
	}

	debug.Log("surface", "opened %s", id)
	return s, nil
}

func (s *CCSurface) ID() string {
	return s.id
}

func (s *CCSurface) DialEvents() <-chan DialEvent {
	return s.dialChan
}

func (s *CCSurface) ButtonEvents() <-chan ButtonEvent {
	return s.buttonChan
}

// SetRing echoes a value back to an encoder's LED ring
func (s *CCSurface) SetRing(slot int, value uint8) error {
	if s.send == nil {
		return nil
	}
	idx := slot - 1
	if idx < 0 || idx >= len(s.slots.RingCC) {
		return nil
	}
	return s.send(gomidi.ControlChange(0, s.slots.RingCC[idx], value))
}

func (s *CCSurface) Close() error {
	// Zero the rings on the way out
	if s.send != nil {
		for slot := 1; slot <= len(s.slots.RingCC); slot++ {
			s.SetRing(slot, 0)
		}
	}
	if s.stopFunc != nil {
		s.stopFunc()
	}
	close(s.dialChan)
	close(s.buttonChan)
	return nil
}
