package surface

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dialdeck/debug"
)

var (
	ErrPresetNotFound = errors.New("preset not found")

	errNoActiveModule = errors.New("no active module")
)

// PresetDecl names exactly what to persist for a module: registry parameters,
// sub-state keys, and the physical slots whose cached values hydrate on load.
// Empty Slots means every slot any bank binds.
type PresetDecl struct {
	Params   []string `json:"params"`
	Substate []string `json:"substate,omitempty"`
	Slots    []int    `json:"slots,omitempty"`
}

// Preset is one named snapshot record. The on-disk layout is exactly these
// three maps; records are namespaced by module identity so names never
// collide across modules.
type Preset struct {
	Values   map[string]float64 `json:"values"`
	Buttons  map[string]int     `json:"buttons"`
	Substate map[string]any     `json:"substate,omitempty"`
}

// PresetStore persists module snapshots as JSON files under
// <dir>/<module>/<name>.json. What gets persisted resolves through three
// tiers: the module's own explicit declaration, derivation from its registry
// and descriptors, then a static fallback keyed by module identity (for
// pages that declare nothing).
type PresetStore struct {
	dir      string
	fallback map[string]PresetDecl
	eng      *Engine
}

func NewPresetStore(dir string, fallback map[string]PresetDecl, eng *Engine) *PresetStore {
	if fallback == nil {
		fallback = make(map[string]PresetDecl)
	}
	return &PresetStore{dir: dir, fallback: fallback, eng: eng}
}

// ModuleDir returns the preset directory for a module identity
func (s *PresetStore) ModuleDir(moduleID string) string {
	return filepath.Join(s.dir, moduleID)
}

func (s *PresetStore) path(moduleID, name string) string {
	return filepath.Join(s.ModuleDir(moduleID), sanitizeName(name)+".json")
}

// List returns a module's preset names, sorted
func (s *PresetStore) List(moduleID string) ([]string, error) {
	entries, err := os.ReadDir(s.ModuleDir(moduleID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a preset record
func (s *PresetStore) Delete(moduleID, name string) error {
	return os.Remove(s.path(moduleID, name))
}

// Rename renames a preset record, overwriting any existing target
func (s *PresetStore) Rename(moduleID, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("empty preset name")
	}
	return os.Rename(s.path(moduleID, oldName), s.path(moduleID, newName))
}

// declFor resolves the persistence declaration for a module. Each tier fully
// determines the one below is unused when it is satisfied.
func (s *PresetStore) declFor(m Module) PresetDecl {
	if pd, ok := m.(PresetDeclarer); ok {
		return pd.PresetDecl()
	}

	// Derive from the declared interface: every registry parameter plus,
	// for capturers, every captured sub-state key. No reflection over
	// arbitrary fields; the registry is the enumerable contract.
	var decl PresetDecl
	for _, p := range m.Params() {
		decl.Params = append(decl.Params, p.Name)
	}
	if decl.Params == nil {
		// Nothing derivable: static fallback for legacy pages.
		if fb, ok := s.fallback[m.ID()]; ok {
			return fb
		}
	}
	return decl
}

// save writes the module's live observable state under name, overwriting an
// existing preset of the same name. A module with no discoverable state
// persists an empty record. Called with the engine lock held.
func (s *PresetStore) save(m Module, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty preset name")
	}

	decl := s.declFor(m)
	p := Preset{
		Values:  make(map[string]float64),
		Buttons: make(map[string]int),
	}

	// Live values come from the value cache, not registry defaults.
	for _, param := range decl.Params {
		spec, ok := s.eng.paramSpecLocked(m, param)
		if !ok {
			continue
		}
		raw := spec.DefaultRaw()
		if slot, ok := s.eng.banks.SlotForParam(m.ID(), param); ok {
			raw = s.eng.cache.FetchOr(m.ID(), slot, raw)
		}
		p.Values[param] = raw
	}

	for _, b := range m.Buttons() {
		p.Buttons[b.ID] = s.eng.buttons[m.ID()][b.ID]
	}

	// Sub-state is requested from the module, never assumed.
	if sc, ok := m.(SubstateCapturer); ok {
		sub := sc.CaptureSubstate()
		if len(decl.Substate) > 0 {
			kept := make(map[string]any)
			for _, key := range decl.Substate {
				if v, ok := sub[key]; ok {
					kept[key] = v
				}
			}
			sub = kept
		}
		p.Substate = sub
	}

	dir := s.ModuleDir(m.ID())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(m.ID(), name), data, 0644); err != nil {
		return err
	}
	debug.Log("preset", "saved %s/%s (%d values)", m.ID(), name, len(p.Values))
	return nil
}

// load hydrates the module from a named preset: cache values for its slots,
// button states, sub-state, then the module's post-hydration hook. Shape
// mismatches are tolerated: unknown keys are discarded, missing ones default.
// The store never pushes to hardware; that is the hook's job. Called with
// the engine lock held.
func (s *PresetStore) load(m Module, name string) error {
	data, err := os.ReadFile(s.path(m.ID(), name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrPresetNotFound, m.ID(), name)
		}
		return err
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("preset %s/%s: %w", m.ID(), name, err)
	}

	decl := s.declFor(m)

	// Restore cache entries. Declared parameters missing from the record
	// default-fill; record keys outside the registry are ignored.
	applied := make(map[string]float64, len(decl.Params))
	for _, param := range decl.Params {
		spec, ok := s.eng.paramSpecLocked(m, param)
		if !ok {
			continue
		}
		raw, ok := p.Values[param]
		if !ok {
			raw = spec.DefaultRaw()
		}
		applied[param] = raw
		if slot, ok := s.eng.banks.SlotForParam(m.ID(), param); ok {
			if len(decl.Slots) == 0 || containsInt(decl.Slots, slot) {
				s.eng.cache.Record(m.ID(), slot, raw)
			}
		}
	}

	// Button states: unknown ids discarded, missing ids reset.
	states := make(map[string]int)
	for _, b := range m.Buttons() {
		st := p.Buttons[b.ID]
		if b.Kind == ButtonCyclic && len(b.Cycle) > 0 {
			st = ((st % len(b.Cycle)) + len(b.Cycle)) % len(b.Cycle)
		} else if b.Kind != ButtonCyclic {
			st = 0
		}
		states[b.ID] = st
	}
	s.eng.buttons[m.ID()] = states

	if sc, ok := m.(SubstateCapturer); ok {
		sub := p.Substate
		if len(decl.Substate) > 0 {
			kept := make(map[string]any)
			for _, key := range decl.Substate {
				if v, ok := sub[key]; ok {
					kept[key] = v
				}
			}
			sub = kept
		}
		if sub == nil {
			sub = make(map[string]any)
		}
		sc.RestoreSubstate(sub)
	}

	if n, ok := m.(PresetNotifier); ok {
		n.OnPresetLoaded(applied)
	}

	debug.Log("preset", "loaded %s/%s (%d values)", m.ID(), name, len(applied))
	return nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// sanitizeName removes characters that are problematic in filenames
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	for _, bad := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, bad, "")
	}
	return name
}
