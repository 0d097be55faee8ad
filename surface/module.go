package surface

import "fmt"

// Physical control surface: 8 rotary encoders and 10 buttons, slots 1-based.
const (
	NumDials   = 8
	NumButtons = 10
)

// Raw values are MIDI-native 0..127. ParamSpec ranges are device units;
// conversion happens only at the module dispatch boundary.
const RawMax = 127.0

// ParamKind describes how a parameter's value behaves
type ParamKind int

const (
	ParamContinuous ParamKind = iota // smooth sweep (level, time, cutoff)
	ParamStepped                     // discrete positions (wave select)
	ParamToggle                      // on/off
)

// ParamSpec declares one logical parameter in a module's registry
type ParamSpec struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Kind    ParamKind
}

// FromRaw maps a raw 0..127 value into the parameter's unit range
func (p ParamSpec) FromRaw(raw float64) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > RawMax {
		raw = RawMax
	}
	return p.Min + (raw/RawMax)*(p.Max-p.Min)
}

// ToRaw maps a unit-range value back to raw 0..127
func (p ParamSpec) ToRaw(v float64) float64 {
	if p.Max == p.Min {
		return 0
	}
	raw := (v - p.Min) / (p.Max - p.Min) * RawMax
	if raw < 0 {
		raw = 0
	}
	if raw > RawMax {
		raw = RawMax
	}
	return raw
}

// DefaultRaw is the raw value corresponding to the declared default
func (p ParamSpec) DefaultRaw() float64 {
	return p.ToRaw(p.Default)
}

// ButtonKind describes a button's behavior
type ButtonKind int

const (
	ButtonMomentary ButtonKind = iota // stateless press (tap, bypass toggle handled by module)
	ButtonCyclic                      // advances through Cycle labels on each press
	ButtonNav                         // switches the active bank to TargetBank
)

// ButtonSpec declares one button in a module's descriptor list.
// Buttons bind to physical button slots in declaration order (slot 1 first).
type ButtonSpec struct {
	ID         string
	Label      string
	Kind       ButtonKind
	Cycle      []string // labels for cyclic states
	TargetBank string   // for ButtonNav
}

// SizeClass is a rendering hint for a slot's widget
type SizeClass int

const (
	SizeSmall SizeClass = iota
	SizeLarge
)

// LayoutHint positions a slot's widget on screen
type LayoutHint struct {
	Row  int
	Col  int
	Size SizeClass
}

// BankSpec is a named slot-to-parameter mapping within a module.
// Slots absent from the map are unbound while the bank is active.
type BankSpec struct {
	Name   string
	Slots  map[int]string // dial slot -> parameter name
	Layout map[int]LayoutHint
}

// Module is the capability contract a logical control unit exposes to the
// engine. Exactly one instance exists per ID for the process lifetime, so
// module-private state survives navigation away and back.
type Module interface {
	ID() string
	Title() string

	Params() []ParamSpec
	Buttons() []ButtonSpec
	Banks() []BankSpec

	// HandleParam receives (parameter name, value in unit range) for slots
	// resolved through the active bank.
	HandleParam(name string, value float64)
	// HandleButton receives (button id, cyclic state index; 0 for momentary).
	HandleButton(id string, state int)

	// Lifecycle hooks around activation swaps.
	Activate()
	Deactivate()
}

// SubstateCapturer is implemented by modules that own custom widget state
// (geometry, free-form data) that presets must carry.
type SubstateCapturer interface {
	CaptureSubstate() map[string]any
	RestoreSubstate(data map[string]any)
}

// PresetDeclarer is the explicit (highest-precedence) persistence declaration.
type PresetDeclarer interface {
	PresetDecl() PresetDecl
}

// PresetNotifier is invoked after preset hydration completes. Pushing restored
// values to outboard hardware is the module's job here; the store only
// restores in-memory state.
type PresetNotifier interface {
	OnPresetLoaded(values map[string]float64)
}

// validateModule checks a module's declared interface at registration time.
// A gap here must fail the activation, not surface later during a render pass.
func validateModule(m Module) error {
	if m.ID() == "" {
		return fmt.Errorf("module has empty id")
	}

	params := make(map[string]bool)
	for _, p := range m.Params() {
		if p.Name == "" {
			return fmt.Errorf("module %s: parameter with empty name", m.ID())
		}
		if params[p.Name] {
			return fmt.Errorf("module %s: duplicate parameter %q", m.ID(), p.Name)
		}
		if p.Max < p.Min {
			return fmt.Errorf("module %s: parameter %q has inverted range", m.ID(), p.Name)
		}
		params[p.Name] = true
	}

	banks := m.Banks()
	if len(banks) == 0 {
		return fmt.Errorf("module %s: no banks declared", m.ID())
	}
	seen := make(map[string]bool)
	for _, b := range banks {
		if b.Name == "" {
			return fmt.Errorf("module %s: bank with empty name", m.ID())
		}
		if seen[b.Name] {
			return fmt.Errorf("module %s: duplicate bank %q", m.ID(), b.Name)
		}
		seen[b.Name] = true
		for slot, param := range b.Slots {
			if slot < 1 || slot > NumDials {
				return fmt.Errorf("module %s: bank %q maps out-of-range slot %d", m.ID(), b.Name, slot)
			}
			if !params[param] {
				return fmt.Errorf("module %s: bank %q binds slot %d to undeclared parameter %q", m.ID(), b.Name, slot, param)
			}
		}
	}

	buttons := m.Buttons()
	if len(buttons) > NumButtons {
		return fmt.Errorf("module %s: %d buttons declared, surface has %d", m.ID(), len(buttons), NumButtons)
	}
	ids := make(map[string]bool)
	for _, b := range buttons {
		if b.ID == "" {
			return fmt.Errorf("module %s: button with empty id", m.ID())
		}
		if ids[b.ID] {
			return fmt.Errorf("module %s: duplicate button %q", m.ID(), b.ID)
		}
		ids[b.ID] = true
		if b.Kind == ButtonCyclic && len(b.Cycle) == 0 {
			return fmt.Errorf("module %s: cyclic button %q has no cycle labels", m.ID(), b.ID)
		}
		if b.Kind == ButtonNav {
			if !seen[b.TargetBank] {
				return fmt.Errorf("module %s: nav button %q targets unknown bank %q", m.ID(), b.ID, b.TargetBank)
			}
		}
	}

	return nil
}
