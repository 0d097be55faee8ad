package surface

import (
	"fmt"
	"sort"
)

// bankState tracks which of a module's banks is active
type bankState struct {
	order  []string
	banks  map[string]BankSpec
	active string
}

// Banks is the bank manager and ownership resolver. All queries are scoped
// to one module; the engine only ever asks about the active one.
type Banks struct {
	perModule map[string]*bankState
}

func NewBanks() *Banks {
	return &Banks{perModule: make(map[string]*bankState)}
}

// Ensure indexes a module's declared banks on first activation. The first
// declared bank is the default. Later calls are no-ops so the active bank
// survives navigation away and back.
func (b *Banks) Ensure(m Module) {
	if _, ok := b.perModule[m.ID()]; ok {
		return
	}
	st := &bankState{banks: make(map[string]BankSpec)}
	for _, spec := range m.Banks() {
		st.order = append(st.order, spec.Name)
		st.banks[spec.Name] = spec
	}
	st.active = st.order[0]
	b.perModule[m.ID()] = st
}

// ActiveName returns the active bank name for a module ("" if unknown module)
func (b *Banks) ActiveName(moduleID string) string {
	st, ok := b.perModule[moduleID]
	if !ok {
		return ""
	}
	return st.active
}

// Active returns the active bank spec for a module
func (b *Banks) Active(moduleID string) (BankSpec, bool) {
	st, ok := b.perModule[moduleID]
	if !ok {
		return BankSpec{}, false
	}
	return st.banks[st.active], true
}

// Names returns a module's bank names in declaration order
func (b *Banks) Names(moduleID string) []string {
	st, ok := b.perModule[moduleID]
	if !ok {
		return nil
	}
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

// Switch atomically replaces the active bank. An unknown bank name is a
// reported no-op: the active bank is unchanged and the error surfaces to the
// caller, never up the frame loop.
func (b *Banks) Switch(moduleID, name string) error {
	st, ok := b.perModule[moduleID]
	if !ok {
		return fmt.Errorf("no banks for module %q", moduleID)
	}
	if _, ok := st.banks[name]; !ok {
		return fmt.Errorf("module %q has no bank %q", moduleID, name)
	}
	st.active = name
	return nil
}

// OwnedSlots returns the physical slots the active bank claims, sorted
func (b *Banks) OwnedSlots(moduleID string) []int {
	spec, ok := b.Active(moduleID)
	if !ok {
		return nil
	}
	slots := make([]int, 0, len(spec.Slots))
	for s := range spec.Slots {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	return slots
}

// Resolve returns the parameter bound to a slot under the active bank.
// A slot absent from the mapping is legal: ok is false and nothing else
// happens.
func (b *Banks) Resolve(moduleID string, slot int) (param string, ok bool) {
	spec, found := b.Active(moduleID)
	if !found {
		return "", false
	}
	param, ok = spec.Slots[slot]
	return param, ok
}

// SlotForParam is the inverse lookup, searching the active bank first and
// then the rest in declaration order. Used by preset save to find where a
// registry parameter's live value sits in the cache.
func (b *Banks) SlotForParam(moduleID, param string) (slot int, ok bool) {
	st, found := b.perModule[moduleID]
	if !found {
		return 0, false
	}
	if s, ok := slotIn(st.banks[st.active], param); ok {
		return s, true
	}
	for _, name := range st.order {
		if name == st.active {
			continue
		}
		if s, ok := slotIn(st.banks[name], param); ok {
			return s, true
		}
	}
	return 0, false
}

func slotIn(spec BankSpec, param string) (int, bool) {
	// Iterate sorted so the answer is stable when a param appears twice
	slots := make([]int, 0, len(spec.Slots))
	for s := range spec.Slots {
		slots = append(slots, s)
	}
	sort.Ints(slots)
	for _, s := range slots {
		if spec.Slots[s] == param {
			return s, true
		}
	}
	return 0, false
}
