package modules

import (
	"dialdeck/debug"
	"dialdeck/midi"
	"dialdeck/surface"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// DelayModule fronts an outboard delay unit over MIDI CC. Twelve parameters
// across two banks, a tap panel as custom sub-state, and an explicit preset
// declaration so the incidental panel page is excluded from snapshots.
type DelayModule struct {
	out     *midi.Outbox
	port    string
	channel uint8

	params []surface.ParamSpec
	cc     map[string]uint8

	bypassed bool
	division int

	// tap panel state
	taps []float64
	page int
}

// CC numbers follow the unit's MIDI implementation chart
var delayCC = map[string]uint8{
	"time":     12,
	"feedback": 13,
	"mix":      14,
	"level":    15,
	"lowcut":   16,
	"highcut":  17,
	"spread":   18,
	"drive":    19,
	"rate":     20,
	"depth":    21,
	"wow":      22,
	"tone":     23,
	"bypass":   24,
	"division": 25,
}

func NewDelayModule(out *midi.Outbox, port string, channel uint8) *DelayModule {
	return &DelayModule{
		out:     out,
		port:    port,
		channel: channel,
		cc:      delayCC,
		params: []surface.ParamSpec{
			{Name: "time", Label: "Time", Min: 1, Max: 2000, Default: 380, Kind: surface.ParamContinuous},
			{Name: "feedback", Label: "Fdbk", Min: 0, Max: 100, Default: 35, Kind: surface.ParamContinuous},
			{Name: "mix", Label: "Mix", Min: 0, Max: 100, Default: 50, Kind: surface.ParamContinuous},
			{Name: "level", Label: "Level", Min: 0, Max: 100, Default: 80, Kind: surface.ParamContinuous},
			{Name: "lowcut", Label: "LoCut", Min: 20, Max: 1000, Default: 120, Kind: surface.ParamContinuous},
			{Name: "highcut", Label: "HiCut", Min: 1000, Max: 16000, Default: 8000, Kind: surface.ParamContinuous},
			{Name: "spread", Label: "Spread", Min: 0, Max: 100, Default: 0, Kind: surface.ParamContinuous},
			{Name: "drive", Label: "Drive", Min: 0, Max: 100, Default: 10, Kind: surface.ParamContinuous},
			{Name: "rate", Label: "Rate", Min: 0.1, Max: 10, Default: 0.8, Kind: surface.ParamContinuous},
			{Name: "depth", Label: "Depth", Min: 0, Max: 100, Default: 20, Kind: surface.ParamContinuous},
			{Name: "wow", Label: "Wow", Min: 0, Max: 100, Default: 0, Kind: surface.ParamContinuous},
			{Name: "tone", Label: "Tone", Min: 0, Max: 100, Default: 60, Kind: surface.ParamContinuous},
		},
		taps: []float64{0, 0.5},
	}
}

func (d *DelayModule) ID() string    { return "delay" }
func (d *DelayModule) Title() string { return "Tape Delay" }

func (d *DelayModule) Params() []surface.ParamSpec { return d.params }

func (d *DelayModule) Buttons() []surface.ButtonSpec {
	return []surface.ButtonSpec{
		{ID: "bypass", Label: "Bypass", Kind: surface.ButtonMomentary},
		{ID: "division", Label: "Div", Kind: surface.ButtonCyclic, Cycle: []string{"1/4", "1/8", "1/8.", "1/16"}},
		{ID: "bank-time", Label: "Time", Kind: surface.ButtonNav, TargetBank: "time"},
		{ID: "bank-mod", Label: "Mod", Kind: surface.ButtonNav, TargetBank: "mod"},
	}
}

func (d *DelayModule) Banks() []surface.BankSpec {
	return []surface.BankSpec{
		{
			Name: "time",
			Slots: map[int]string{
				1: "time", 2: "feedback", 3: "mix", 4: "level",
				5: "lowcut", 6: "highcut", 7: "spread", 8: "drive",
			},
			Layout: map[int]surface.LayoutHint{
				1: {Row: 0, Col: 0, Size: surface.SizeLarge},
				2: {Row: 0, Col: 1}, 3: {Row: 0, Col: 2}, 4: {Row: 0, Col: 3},
				5: {Row: 1, Col: 0}, 6: {Row: 1, Col: 1}, 7: {Row: 1, Col: 2}, 8: {Row: 1, Col: 3},
			},
		},
		{
			// Mod bank maps only four slots; 5-8 are unbound there.
			Name:  "mod",
			Slots: map[int]string{1: "rate", 2: "depth", 3: "wow", 4: "tone"},
			Layout: map[int]surface.LayoutHint{
				1: {Row: 0, Col: 0}, 2: {Row: 0, Col: 1}, 3: {Row: 0, Col: 2}, 4: {Row: 0, Col: 3},
			},
		},
	}
}

func (d *DelayModule) HandleParam(name string, value float64) {
	d.sendCC(name, d.rawFor(name, value))
}

func (d *DelayModule) HandleButton(id string, state int) {
	switch id {
	case "bypass":
		d.bypassed = !d.bypassed
		v := uint8(0)
		if d.bypassed {
			v = 127
		}
		d.sendCC("bypass", v)
	case "division":
		d.division = state
		d.sendCC("division", uint8(state*32))
	}
}

func (d *DelayModule) Activate()   { debug.Log("delay", "activated") }
func (d *DelayModule) Deactivate() {}

// Bypassed reports the current bypass toggle (for rendering)
func (d *DelayModule) Bypassed() bool { return d.bypassed }

// Taps returns the tap panel pattern (for rendering)
func (d *DelayModule) Taps() []float64 { return d.taps }

// SetTap writes one tap position, clamped to 0..1
func (d *DelayModule) SetTap(i int, pos float64) {
	if i < 0 || i >= len(d.taps) {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	d.taps[i] = pos
}

// PresetDecl excludes the panel page: only parameters and the tap pattern
// are observable state worth carrying.
func (d *DelayModule) PresetDecl() surface.PresetDecl {
	return surface.PresetDecl{
		Params: []string{
			"time", "feedback", "mix", "level", "lowcut", "highcut",
			"spread", "drive", "rate", "depth", "wow", "tone",
		},
		Substate: []string{"taps"},
	}
}

func (d *DelayModule) CaptureSubstate() map[string]any {
	taps := make([]float64, len(d.taps))
	copy(taps, d.taps)
	return map[string]any{
		"taps": taps,
		"page": d.page,
	}
}

func (d *DelayModule) RestoreSubstate(data map[string]any) {
	if raw, ok := data["taps"]; ok {
		// JSON round-trips slices as []any of float64
		switch v := raw.(type) {
		case []float64:
			d.taps = append([]float64(nil), v...)
		case []any:
			taps := make([]float64, 0, len(v))
			for _, x := range v {
				if f, ok := x.(float64); ok {
					taps = append(taps, f)
				}
			}
			d.taps = taps
		}
	}
	if pg, ok := data["page"].(float64); ok {
		d.page = int(pg)
	}
}

// OnPresetLoaded pushes the restored state to the hardware. Hydration never
// touches the wire on its own; this hook is the only resync path.
func (d *DelayModule) OnPresetLoaded(values map[string]float64) {
	for name, raw := range values {
		d.sendCC(name, uint8(raw))
	}
	debug.Log("delay", "preset resync, %d params", len(values))
}

func (d *DelayModule) rawFor(name string, value float64) uint8 {
	for _, p := range d.params {
		if p.Name == name {
			return uint8(p.ToRaw(value))
		}
	}
	return 0
}

func (d *DelayModule) sendCC(name string, value uint8) {
	cc, ok := d.cc[name]
	if !ok {
		return
	}
	d.out.Send(d.port, gomidi.ControlChange(d.channel-1, cc, value))
}
