package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when surfaces connect/disconnect
type DeviceEvent struct {
	Type    DeviceEventType
	Surface Surface
	ID      string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of control surfaces
type DeviceManager struct {
	portName string // configured surface port (substring match)
	slots    SlotMap

	surfaces map[string]Surface
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager creates a manager that watches for the configured port
func NewDeviceManager(portName string, slots SlotMap) *DeviceManager {
	return &DeviceManager{
		portName: portName,
		slots:    slots,
		surfaces: make(map[string]Surface),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Current returns the first connected surface (or nil)
func (dm *DeviceManager) Current() Surface {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, s := range dm.surfaces {
		return s
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		// MIDI subsystem is hung - skip this scan
		return
	}

	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		if !dm.matches(inPort.String()) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.surfaces[id]
		dm.mu.RUnlock()

		if !exists {
			// Find matching output port for ring feedback
			var outPort drivers.Out
			for j, op := range outPorts {
				if strings.EqualFold(op.String(), id) {
					outPort = outPorts[j]
					break
				}
			}

			s, err := NewCCSurface(id, inPorts[i], outPort, dm.slots)
			if err != nil {
				continue
			}

			dm.mu.Lock()
			dm.surfaces[id] = s
			dm.mu.Unlock()

			dm.events <- DeviceEvent{
				Type:    DeviceConnected,
				Surface: s,
				ID:      id,
			}
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.surfaces {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		s := dm.surfaces[id]
		s.Close()
		delete(dm.surfaces, id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) matches(portName string) bool {
	if dm.portName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(dm.portName))
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, s := range dm.surfaces {
		s.Close()
	}
	dm.surfaces = make(map[string]Surface)
}
