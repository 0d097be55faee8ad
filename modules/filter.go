package modules

import (
	"dialdeck/midi"
	"dialdeck/surface"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// FilterModule fronts a synth filter page: one bank, eight dials, no custom
// sub-state. It declares nothing about persistence, so preset discovery
// derives everything from the registry.
type FilterModule struct {
	out     *midi.Outbox
	port    string
	channel uint8

	params []surface.ParamSpec
	cc     map[string]uint8

	bypassed bool
}

var filterCC = map[string]uint8{
	"cutoff":    74,
	"resonance": 71,
	"env":       72,
	"drive":     73,
	"keytrack":  75,
	"attack":    76,
	"decay":     77,
	"mix":       78,
	"bypass":    79,
	"slope":     80,
}

func NewFilterModule(out *midi.Outbox, port string, channel uint8) *FilterModule {
	return &FilterModule{
		out:     out,
		port:    port,
		channel: channel,
		cc:      filterCC,
		params: []surface.ParamSpec{
			{Name: "cutoff", Label: "Cutoff", Min: 20, Max: 20000, Default: 2000, Kind: surface.ParamContinuous},
			{Name: "resonance", Label: "Reso", Min: 0, Max: 100, Default: 10, Kind: surface.ParamContinuous},
			{Name: "env", Label: "Env", Min: -100, Max: 100, Default: 0, Kind: surface.ParamContinuous},
			{Name: "drive", Label: "Drive", Min: 0, Max: 100, Default: 0, Kind: surface.ParamContinuous},
			{Name: "keytrack", Label: "KeyTrk", Min: 0, Max: 100, Default: 0, Kind: surface.ParamContinuous},
			{Name: "attack", Label: "Atk", Min: 0, Max: 100, Default: 5, Kind: surface.ParamContinuous},
			{Name: "decay", Label: "Dec", Min: 0, Max: 100, Default: 40, Kind: surface.ParamContinuous},
			{Name: "mix", Label: "Mix", Min: 0, Max: 100, Default: 100, Kind: surface.ParamContinuous},
		},
	}
}

func (f *FilterModule) ID() string    { return "filter" }
func (f *FilterModule) Title() string { return "Filter" }

func (f *FilterModule) Params() []surface.ParamSpec { return f.params }

func (f *FilterModule) Buttons() []surface.ButtonSpec {
	return []surface.ButtonSpec{
		{ID: "bypass", Label: "Bypass", Kind: surface.ButtonMomentary},
		{ID: "slope", Label: "Slope", Kind: surface.ButtonCyclic, Cycle: []string{"12dB", "24dB"}},
	}
}

func (f *FilterModule) Banks() []surface.BankSpec {
	return []surface.BankSpec{
		{
			Name: "main",
			Slots: map[int]string{
				1: "cutoff", 2: "resonance", 3: "env", 4: "drive",
				5: "keytrack", 6: "attack", 7: "decay", 8: "mix",
			},
			Layout: map[int]surface.LayoutHint{
				1: {Row: 0, Col: 0, Size: surface.SizeLarge},
				2: {Row: 0, Col: 1}, 3: {Row: 0, Col: 2}, 4: {Row: 0, Col: 3},
				5: {Row: 1, Col: 0}, 6: {Row: 1, Col: 1}, 7: {Row: 1, Col: 2}, 8: {Row: 1, Col: 3},
			},
		},
	}
}

func (f *FilterModule) HandleParam(name string, value float64) {
	for _, p := range f.params {
		if p.Name == name {
			f.sendCC(name, uint8(p.ToRaw(value)))
			return
		}
	}
}

func (f *FilterModule) HandleButton(id string, state int) {
	switch id {
	case "bypass":
		f.bypassed = !f.bypassed
		v := uint8(0)
		if f.bypassed {
			v = 127
		}
		f.sendCC("bypass", v)
	case "slope":
		f.sendCC("slope", uint8(state*64))
	}
}

func (f *FilterModule) Activate()   {}
func (f *FilterModule) Deactivate() {}

// Bypassed reports the current bypass toggle (for rendering)
func (f *FilterModule) Bypassed() bool { return f.bypassed }

// OnPresetLoaded pushes restored values back to the synth
func (f *FilterModule) OnPresetLoaded(values map[string]float64) {
	for name, raw := range values {
		f.sendCC(name, uint8(raw))
	}
}

func (f *FilterModule) sendCC(name string, value uint8) {
	cc, ok := f.cc[name]
	if !ok {
		return
	}
	f.out.Send(f.port, gomidi.ControlChange(f.channel-1, cc, value))
}
