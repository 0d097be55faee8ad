package surface

import (
	"errors"
	"testing"
)

// testModule is a minimal in-memory module: two banks ("1" owns slots 1-4,
// "2" owns slots 5-8), one momentary and one cyclic button, and counters to
// observe dispatch and lifecycle.
type testModule struct {
	id string

	paramCalls  []paramCall
	buttonCalls []buttonCall
	activations int
	counter     int // module-private state, bumped by the "count" button
}

type paramCall struct {
	name  string
	value float64
}

type buttonCall struct {
	id    string
	state int
}

func newTestModule(id string) *testModule {
	return &testModule{id: id}
}

func (m *testModule) ID() string    { return m.id }
func (m *testModule) Title() string { return "Test " + m.id }

func (m *testModule) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "a", Label: "A", Min: 0, Max: 127, Default: 10},
		{Name: "b", Label: "B", Min: 0, Max: 127, Default: 20},
		{Name: "c", Label: "C", Min: 0, Max: 127, Default: 0},
		{Name: "d", Label: "D", Min: 0, Max: 127, Default: 0},
		{Name: "e", Label: "E", Min: 0, Max: 127, Default: 0},
		{Name: "f", Label: "F", Min: 0, Max: 127, Default: 0},
		{Name: "g", Label: "G", Min: 0, Max: 127, Default: 0},
		{Name: "h", Label: "H", Min: 0, Max: 127, Default: 0},
	}
}

func (m *testModule) Buttons() []ButtonSpec {
	return []ButtonSpec{
		{ID: "count", Label: "Count", Kind: ButtonMomentary},
		{ID: "mode", Label: "Mode", Kind: ButtonCyclic, Cycle: []string{"x", "y", "z"}},
		{ID: "to-2", Label: "Bank 2", Kind: ButtonNav, TargetBank: "2"},
	}
}

func (m *testModule) Banks() []BankSpec {
	return []BankSpec{
		{Name: "1", Slots: map[int]string{1: "a", 2: "b", 3: "c", 4: "d"}},
		{Name: "2", Slots: map[int]string{5: "e", 6: "f", 7: "g", 8: "h"}},
	}
}

func (m *testModule) HandleParam(name string, value float64) {
	m.paramCalls = append(m.paramCalls, paramCall{name, value})
}

func (m *testModule) HandleButton(id string, state int) {
	m.buttonCalls = append(m.buttonCalls, buttonCall{id, state})
	if id == "count" {
		m.counter++
	}
}

func (m *testModule) Activate()   { m.activations++ }
func (m *testModule) Deactivate() {}

// subModule adds capturable sub-state and the post-hydration hook
type subModule struct {
	*testModule
	substate map[string]any
	loaded   []map[string]float64
}

func newSubModule(id string) *subModule {
	return &subModule{
		testModule: newTestModule(id),
		substate:   map[string]any{"geometry": "2x4", "scratch": 1.0},
	}
}

func (m *subModule) CaptureSubstate() map[string]any {
	out := make(map[string]any, len(m.substate))
	for k, v := range m.substate {
		out[k] = v
	}
	return out
}

func (m *subModule) RestoreSubstate(data map[string]any) {
	m.substate = data
}

func (m *subModule) OnPresetLoaded(values map[string]float64) {
	m.loaded = append(m.loaded, values)
}

// declModule adds an explicit persistence declaration on top of subModule
type declModule struct {
	*subModule
	decl PresetDecl
}

func (m *declModule) PresetDecl() PresetDecl { return m.decl }

// legacyModule has an empty registry and only sub-state: the shape that
// needs the static fallback declaration
type legacyModule struct {
	id       string
	substate map[string]any
}

func (m *legacyModule) ID() string                  { return m.id }
func (m *legacyModule) Title() string               { return m.id }
func (m *legacyModule) Params() []ParamSpec         { return nil }
func (m *legacyModule) Buttons() []ButtonSpec       { return nil }
func (m *legacyModule) Banks() []BankSpec           { return []BankSpec{{Name: "main"}} }
func (m *legacyModule) HandleParam(string, float64) {}
func (m *legacyModule) HandleButton(string, int)    {}
func (m *legacyModule) Activate()                   {}
func (m *legacyModule) Deactivate()                 {}
func (m *legacyModule) CaptureSubstate() map[string]any {
	out := make(map[string]any, len(m.substate))
	for k, v := range m.substate {
		out[k] = v
	}
	return out
}
func (m *legacyModule) RestoreSubstate(data map[string]any) { m.substate = data }

// newTestEngine builds an engine with a temp preset dir and one registered
// testModule per id. The returned map accesses the singleton instances.
func newTestEngine(t *testing.T, ids ...string) (*Engine, map[string]*testModule) {
	t.Helper()

	eng := New(t.TempDir(), nil)
	mods := make(map[string]*testModule, len(ids))
	for _, id := range ids {
		id := id
		m := newTestModule(id)
		mods[id] = m
		eng.Register(id, func() (Module, error) { return m, nil })
	}
	return eng, mods
}

// activate flushes the forced-full frame an activation schedules so tests
// start from a clean dirty set
func activate(t *testing.T, eng *Engine, id string) {
	t.Helper()
	if err := eng.ActivateModule(id); err != nil {
		t.Fatalf("activate %s: %v", id, err)
	}
	eng.Step()
}

var errBoom = errors.New("boom")
