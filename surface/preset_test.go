package surface

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetSaveLoadRoundTrip(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 10})
	eng.Post(InputEvent{Kind: EventDial, Slot: 2, Raw: 20})
	eng.Step()
	require.NoError(t, eng.SavePreset("warm"))

	// Mutate, then restore.
	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 99})
	eng.Post(InputEvent{Kind: EventDial, Slot: 2, Raw: 1})
	eng.Step()

	require.NoError(t, eng.LoadPreset("warm"))
	dials := eng.Dials()
	assert.Equal(t, 10.0, dials[0].Raw)
	assert.Equal(t, 20.0, dials[1].Raw)

	// Exactly one forced-full frame from the load.
	f, ok := eng.Step()
	require.True(t, ok)
	assert.True(t, f.Full)
	_, ok = eng.Step()
	assert.False(t, ok)
}

func TestPresetLoadIdempotent(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 42})
	eng.Step()
	require.NoError(t, eng.SavePreset("p"))

	require.NoError(t, eng.LoadPreset("p"))
	eng.Step()
	first := eng.Dials()

	require.NoError(t, eng.LoadPreset("p"))
	eng.Step()
	assert.Equal(t, first, eng.Dials(), "loading twice equals loading once")
}

func TestPresetLoadMissing(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 33})
	eng.Step()

	err := eng.LoadPreset("ghost")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	assert.Equal(t, 33.0, eng.Dials()[0].Raw, "a missing preset touches nothing")
	_, ok := eng.Step()
	assert.False(t, ok, "and schedules no redraw")
}

func TestPresetToleratesShapeMismatch(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")
	store := eng.Presets()

	// A record with an unknown key, a missing declared parameter, and an
	// out-of-range cyclic state.
	rec := Preset{
		Values:  map[string]float64{"a": 50, "vintage-knob": 12},
		Buttons: map[string]int{"mode": 7, "gone": 3},
	}
	writePresetFile(t, store, "a", "old", rec)

	require.NoError(t, eng.LoadPreset("old"))
	dials := eng.Dials()
	assert.Equal(t, 50.0, dials[0].Raw)
	assert.Equal(t, 20.0, dials[1].Raw, "missing parameter falls back to its default")

	states := eng.ButtonStates()
	assert.Equal(t, 7%3, states[1].State, "cyclic state normalizes into range")
}

func TestPresetExplicitDeclaration(t *testing.T) {
	eng := New(t.TempDir(), nil)
	m := &declModule{
		subModule: newSubModule("d"),
		decl: PresetDecl{
			Params:   []string{"a", "b"},
			Substate: []string{"geometry"},
		},
	}
	eng.Register("d", func() (Module, error) { return m, nil })
	activate(t, eng, "d")

	eng.Post(InputEvent{Kind: EventDial, Slot: 3, Raw: 70}) // "c", undeclared
	eng.Step()
	require.NoError(t, eng.SavePreset("slim"))

	rec := readPresetFile(t, eng.Presets(), "d", "slim")
	assert.Contains(t, rec.Values, "a")
	assert.Contains(t, rec.Values, "b")
	assert.NotContains(t, rec.Values, "c", "the explicit declaration wins over derivation")
	assert.Contains(t, rec.Substate, "geometry")
	assert.NotContains(t, rec.Substate, "scratch", "undeclared sub-state keys are filtered")
}

func TestPresetAutoDerivation(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	require.NoError(t, eng.SavePreset("full"))

	rec := readPresetFile(t, eng.Presets(), "a", "full")
	assert.Len(t, rec.Values, 8, "every registry parameter persists")
	assert.Equal(t, 10.0, rec.Values["a"], "untouched parameters save their defaults")
}

func TestPresetFallbackDeclaration(t *testing.T) {
	fallback := map[string]PresetDecl{
		"legacy": {Substate: []string{"geometry"}},
	}
	eng := New(t.TempDir(), fallback)
	m := &legacyModule{id: "legacy", substate: map[string]any{
		"geometry": "4x2",
		"noise":    true,
	}}
	eng.Register("legacy", func() (Module, error) { return m, nil })
	activate(t, eng, "legacy")

	require.NoError(t, eng.SavePreset("cfg"))
	rec := readPresetFile(t, eng.Presets(), "legacy", "cfg")
	assert.Empty(t, rec.Values)
	assert.Equal(t, map[string]any{"geometry": "4x2"}, rec.Substate)

	m.substate = map[string]any{"geometry": "1x1"}
	require.NoError(t, eng.LoadPreset("cfg"))
	assert.Equal(t, map[string]any{"geometry": "4x2"}, m.substate)
}

func TestPresetSubstateRoundTrip(t *testing.T) {
	eng := New(t.TempDir(), nil)
	m := newSubModule("s")
	eng.Register("s", func() (Module, error) { return m, nil })
	activate(t, eng, "s")

	m.substate = map[string]any{"geometry": "2x4", "scratch": 3.5}
	require.NoError(t, eng.SavePreset("shape"))

	m.substate = map[string]any{"geometry": "gone"}
	require.NoError(t, eng.LoadPreset("shape"))

	// JSON round trip: numbers come back as float64, strings as strings.
	assert.Equal(t, "2x4", m.substate["geometry"])
	assert.Equal(t, 3.5, m.substate["scratch"])
}

func TestPresetLoadedHookReceivesAppliedValues(t *testing.T) {
	eng := New(t.TempDir(), nil)
	m := newSubModule("s")
	eng.Register("s", func() (Module, error) { return m, nil })
	activate(t, eng, "s")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 111})
	eng.Step()
	require.NoError(t, eng.SavePreset("push"))
	require.NoError(t, eng.LoadPreset("push"))

	require.Len(t, m.loaded, 1, "hydration fires the hook exactly once per load")
	vals := m.loaded[0]
	assert.Equal(t, 111.0, vals["a"])
	assert.Len(t, vals, 8, "the hook sees the full applied set, defaults included")
}

func TestPresetNamespacedByModule(t *testing.T) {
	eng, _ := newTestEngine(t, "x", "y")
	activate(t, eng, "x")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 5})
	eng.Step()
	require.NoError(t, eng.SavePreset("init"))

	activate(t, eng, "y")
	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 120})
	eng.Step()
	require.NoError(t, eng.SavePreset("init"))

	// Same name, different records.
	activate(t, eng, "x")
	require.NoError(t, eng.LoadPreset("init"))
	assert.Equal(t, 5.0, eng.Dials()[0].Raw)

	names, err := eng.Presets().List("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"init"}, names)
}

func TestPresetSaveOverwrites(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 1})
	eng.Step()
	require.NoError(t, eng.SavePreset("p"))

	eng.Post(InputEvent{Kind: EventDial, Slot: 1, Raw: 2})
	eng.Step()
	require.NoError(t, eng.SavePreset("p"))

	rec := readPresetFile(t, eng.Presets(), "a", "p")
	assert.Equal(t, 2.0, rec.Values["a"])
}

func TestPresetListDeleteRename(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")
	store := eng.Presets()

	names, err := store.List("a")
	require.NoError(t, err)
	assert.Empty(t, names, "no directory yet is an empty list, not an error")

	require.NoError(t, eng.SavePreset("bright"))
	require.NoError(t, eng.SavePreset("dark"))

	names, err = store.List("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"bright", "dark"}, names)

	require.NoError(t, store.Rename("a", "dark", "darker"))
	require.NoError(t, store.Delete("a", "bright"))

	names, err = store.List("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"darker"}, names)
}

func TestPresetEmptyName(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	assert.Error(t, eng.SavePreset("  "))
}

func TestPresetNameSanitized(t *testing.T) {
	eng, _ := newTestEngine(t, "a")
	activate(t, eng, "a")

	require.NoError(t, eng.SavePreset("my patch: v2?"))
	names, err := eng.Presets().List("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"my-patch-v2"}, names)
}

func TestPresetNoActiveModule(t *testing.T) {
	eng := New(t.TempDir(), nil)
	assert.Error(t, eng.SavePreset("p"))
	assert.Error(t, eng.LoadPreset("p"))
}

func writePresetFile(t *testing.T, s *PresetStore, moduleID, name string, rec Preset) {
	t.Helper()
	require.NoError(t, os.MkdirAll(s.ModuleDir(moduleID), 0755))
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.ModuleDir(moduleID), name+".json"), data, 0644))
}

func readPresetFile(t *testing.T, s *PresetStore, moduleID, name string) Preset {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.ModuleDir(moduleID), name+".json"))
	require.NoError(t, err)
	var rec Preset
	require.NoError(t, json.Unmarshal(data, &rec))
	return rec
}
