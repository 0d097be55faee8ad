package surface

import (
	"sync"
	"time"

	"dialdeck/debug"
)

// Render/frame rate for the main loop
const FrameFPS = 30

// RingSink receives encoder ring LED feedback. The MIDI surface satisfies
// this; the engine never sees the wire protocol.
type RingSink interface {
	SetRing(slot int, value uint8) error
}

// DialState is the render view of one physical dial under the active
// module/bank
type DialState struct {
	Slot  int
	Bound bool
	Param ParamSpec
	Raw   float64
	Hint  LayoutHint
}

// ButtonState is the render view of one physical button
type ButtonState struct {
	Slot  int
	Spec  ButtonSpec
	State int // cyclic index
}

// Engine owns the control-binding state and runs the frame loop. Hardware
// and UI producers post slot events onto the input queue; the loop drains
// the queue once per tick in arrival order, then performs one render drain.
// All state lives behind one mutex so a dial can never resolve against a
// bank that is mid-switch.
type Engine struct {
	mu      sync.Mutex
	reg     *Registry
	banks   *Banks
	cache   *ValueCache
	dirty   *DirtyTracker
	presets *PresetStore

	// cyclic button state, owned here so preset save/load is uniform
	buttons map[string]map[string]int

	inputChan chan InputEvent
	stopChan  chan struct{}

	// encoder ring feedback, diffed like any other output surface
	rings     RingSink
	prevRings map[int]uint8

	// Notify the renderer that a frame was produced
	UpdateChan chan struct{}
}

// New creates an engine. fallback supplies tier-3 preset declarations for
// modules that cannot declare their own (usually from the config file).
func New(presetDir string, fallback map[string]PresetDecl) *Engine {
	e := &Engine{
		reg:        NewRegistry(),
		banks:      NewBanks(),
		cache:      NewValueCache(),
		dirty:      NewDirtyTracker(),
		buttons:    make(map[string]map[string]int),
		inputChan:  make(chan InputEvent, 64),
		stopChan:   make(chan struct{}),
		prevRings:  make(map[int]uint8),
		UpdateChan: make(chan struct{}, 1),
	}
	e.presets = NewPresetStore(presetDir, fallback, e)
	return e
}

// Register makes a module identity activatable
func (e *Engine) Register(id string, fn Constructor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reg.Register(id, fn)
}

// ModuleIDs returns all registered module identities
func (e *Engine) ModuleIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.IDs()
}

// Presets returns the preset store
func (e *Engine) Presets() *PresetStore {
	return e.presets
}

// SetRings installs (or removes, with nil) the ring LED sink and resyncs
func (e *Engine) SetRings(sink RingSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rings = sink
	e.prevRings = make(map[int]uint8) // diff resends everything
	e.ringSyncLocked()
}

// Post places a slot event on the input queue. Non-blocking: if the queue is
// full the event is dropped, same as the MIDI transport does for a stalled
// consumer.
func (e *Engine) Post(ev InputEvent) {
	select {
	case e.inputChan <- ev:
	default:
		debug.Log("engine", "input queue full, dropped slot=%d", ev.Slot)
	}
}

// Run drives the frame loop until Stop. Each tick drains the queue, then
// performs one render drain and notifies the renderer.
func (e *Engine) Run() {
	ticker := time.NewTicker(time.Second / FrameFPS)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			if _, ok := e.Step(); ok {
				e.notify()
			}
		}
	}
}

// Stop terminates the frame loop
func (e *Engine) Stop() {
	close(e.stopChan)
}

// Step drains queued input in arrival order, applies each event, then drains
// the dirty set into at most one frame. This is the queue-drain boundary:
// nothing else mutates module, bank, or cache state concurrently with it.
func (e *Engine) Step() (Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		select {
		case ev := <-e.inputChan:
			e.applyLocked(ev)
		default:
			if !e.dirty.HasWork() {
				return Frame{}, false
			}
			f := e.dirty.Drain()
			e.ringSyncLocked()
			return f, true
		}
	}
}

func (e *Engine) notify() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

func (e *Engine) applyLocked(ev InputEvent) {
	m := e.reg.Current()
	if m == nil {
		return
	}

	switch ev.Kind {
	case EventDial:
		e.applyDialLocked(m, ev)
	case EventButton:
		if ev.Pressed {
			e.applyButtonLocked(m, ev)
		}
	}
}

func (e *Engine) applyDialLocked(m Module, ev InputEvent) {
	// Cache first: the value must survive even if the slot is unbound
	// under the current bank.
	e.cache.Record(m.ID(), ev.Slot, ev.Raw)

	param, ok := e.banks.Resolve(m.ID(), ev.Slot)
	if !ok {
		// Slot not owned by the active bank: legal, silent no-op.
		debug.Log("engine", "slot %d unbound under %s/%s", ev.Slot, m.ID(), e.banks.ActiveName(m.ID()))
		return
	}

	spec, _ := e.paramSpecLocked(m, param)
	m.HandleParam(param, spec.FromRaw(ev.Raw))
	e.dirty.MarkWidget(WidgetRef{Module: m.ID(), Kind: WidgetDial, Slot: ev.Slot})
}

func (e *Engine) applyButtonLocked(m Module, ev InputEvent) {
	buttons := m.Buttons()
	idx := ev.Slot - 1
	if idx < 0 || idx >= len(buttons) {
		// Button slot with no descriptor: silent no-op, same as dials.
		return
	}
	spec := buttons[idx]

	switch spec.Kind {
	case ButtonNav:
		if err := e.switchBankLocked(m, spec.TargetBank); err != nil {
			debug.Log("engine", "nav button %s: %v", spec.ID, err)
		}
		return
	case ButtonCyclic:
		states := e.buttons[m.ID()]
		if states == nil {
			states = make(map[string]int)
			e.buttons[m.ID()] = states
		}
		states[spec.ID] = (states[spec.ID] + 1) % len(spec.Cycle)
		m.HandleButton(spec.ID, states[spec.ID])
	default:
		m.HandleButton(spec.ID, 0)
	}

	e.dirty.MarkWidget(WidgetRef{Module: m.ID(), Kind: WidgetButton, Slot: ev.Slot})
}

// ActivateModule swaps in the module for id. Same identity is a no-op; a
// failed construction leaves the previous module active and schedules no
// redraw.
func (e *Engine) ActivateModule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, changed, err := e.reg.Activate(id)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	e.banks.Ensure(m)
	e.dirty.ForceFull()
	return nil
}

// ActiveID returns the active module identity ("" if none)
func (e *Engine) ActiveID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.ActiveID()
}

// ActiveModule returns the active module (nil if none)
func (e *Engine) ActiveModule() Module {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Current()
}

// SwitchBank switches the active module's bank. Unknown names are reported
// and leave the active bank unchanged. The swap takes effect for the next
// queued event; an event already being applied resolved against the old
// mapping.
func (e *Engine) SwitchBank(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.reg.Current()
	if m == nil {
		return errNoActiveModule
	}
	return e.switchBankLocked(m, name)
}

func (e *Engine) switchBankLocked(m Module, name string) error {
	if err := e.banks.Switch(m.ID(), name); err != nil {
		return err
	}
	// Outgoing widgets must clear, incoming must appear with cached
	// values. One full pass covers both.
	e.dirty.ForceFull()
	debug.Log("engine", "bank %s/%s active", m.ID(), name)
	return nil
}

// ActiveBank returns the active module's bank name ("" if none)
func (e *Engine) ActiveBank() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banks.ActiveName(e.reg.ActiveID())
}

// BankNames returns the active module's banks in declaration order
func (e *Engine) BankNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.banks.Names(e.reg.ActiveID())
}

// Dials returns the render view of all physical dials under the active
// module/bank. Unbound slots render empty.
func (e *Engine) Dials() []DialState {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.reg.Current()
	out := make([]DialState, NumDials)
	for i := range out {
		out[i].Slot = i + 1
	}
	if m == nil {
		return out
	}
	spec, _ := e.banks.Active(m.ID())
	for i := range out {
		slot := i + 1
		param, ok := spec.Slots[slot]
		if !ok {
			continue
		}
		ps, _ := e.paramSpecLocked(m, param)
		out[i] = DialState{
			Slot:  slot,
			Bound: true,
			Param: ps,
			Raw:   e.cache.FetchOr(m.ID(), slot, ps.DefaultRaw()),
			Hint:  spec.Layout[slot],
		}
	}
	return out
}

// ButtonStates returns the render view of the active module's buttons
func (e *Engine) ButtonStates() []ButtonState {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.reg.Current()
	if m == nil {
		return nil
	}
	var out []ButtonState
	for i, spec := range m.Buttons() {
		out = append(out, ButtonState{
			Slot:  i + 1,
			Spec:  spec,
			State: e.buttons[m.ID()][spec.ID],
		})
	}
	return out
}

// VisibleWidgets enumerates every widget of the active module/bank, the set
// a forced-full pass redraws
func (e *Engine) VisibleWidgets() []WidgetRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibleWidgetsLocked()
}

func (e *Engine) visibleWidgetsLocked() []WidgetRef {
	m := e.reg.Current()
	if m == nil {
		return nil
	}
	var out []WidgetRef
	for _, slot := range e.banks.OwnedSlots(m.ID()) {
		out = append(out, WidgetRef{Module: m.ID(), Kind: WidgetDial, Slot: slot})
	}
	for i := range m.Buttons() {
		out = append(out, WidgetRef{Module: m.ID(), Kind: WidgetButton, Slot: i + 1})
	}
	if _, ok := m.(SubstateCapturer); ok {
		out = append(out, WidgetRef{Module: m.ID(), Kind: WidgetCustom, Name: "panel"})
	}
	return out
}

// SavePreset snapshots the active module's observable state under name
func (e *Engine) SavePreset(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.reg.Current()
	if m == nil {
		return errNoActiveModule
	}
	return e.presets.save(m, name)
}

// LoadPreset hydrates the active module from a named preset and forces a
// full redraw. Missing presets are reported without touching state.
func (e *Engine) LoadPreset(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.reg.Current()
	if m == nil {
		return errNoActiveModule
	}
	if err := e.presets.load(m, name); err != nil {
		return err
	}
	e.dirty.ForceFull()
	return nil
}

func (e *Engine) paramSpecLocked(m Module, name string) (ParamSpec, bool) {
	for _, p := range m.Params() {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// ringSyncLocked pushes owned dial values to the encoder rings, diffed so
// only changed rings generate traffic
func (e *Engine) ringSyncLocked() {
	if e.rings == nil {
		return
	}
	m := e.reg.Current()

	want := make(map[int]uint8, NumDials)
	for slot := 1; slot <= NumDials; slot++ {
		want[slot] = 0
	}
	if m != nil {
		spec, _ := e.banks.Active(m.ID())
		for slot, param := range spec.Slots {
			ps, _ := e.paramSpecLocked(m, param)
			want[slot] = uint8(e.cache.FetchOr(m.ID(), slot, ps.DefaultRaw()))
		}
	}

	sent := 0
	for slot, v := range want {
		if prev, ok := e.prevRings[slot]; !ok || prev != v {
			e.rings.SetRing(slot, v)
			sent++
		}
	}
	e.prevRings = want
	if sent > 0 {
		debug.Log("rings", "resync sent=%d", sent)
	}
}
