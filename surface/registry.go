package surface

import (
	"fmt"
	"sort"

	"dialdeck/debug"
)

// Constructor builds a module instance. Construction is allowed to fail
// (missing outboard port, bad descriptor); the registry treats that as an
// aborted activation.
type Constructor func() (Module, error)

// Registry holds the singleton module instances and tracks which one is
// active. Instances are created lazily on first activation and never
// destroyed mid-run, so counters and flags survive repeated navigation.
type Registry struct {
	constructors map[string]Constructor
	instances    map[string]Module
	active       string
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		instances:    make(map[string]Module),
	}
}

// Register makes a module identity activatable. Re-registering an identity
// replaces the constructor but leaves any existing instance alone.
func (r *Registry) Register(id string, fn Constructor) {
	r.constructors[id] = fn
}

// IDs returns all registered identities, sorted
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Current returns the active module, or nil if none is active
func (r *Registry) Current() Module {
	if r.active == "" {
		return nil
	}
	return r.instances[r.active]
}

// ActiveID returns the active module identity ("" if none)
func (r *Registry) ActiveID() string {
	return r.active
}

// Instance returns the cached instance for an identity without activating it
func (r *Registry) Instance(id string) Module {
	return r.instances[id]
}

// Activate installs or reuses the singleton for id and makes it the sole
// receiver of slot events. Activating the already-active identity is a no-op.
// If construction or validation fails the previous module stays active and
// the returned changed flag is false.
func (r *Registry) Activate(id string) (m Module, changed bool, err error) {
	if id == r.active {
		return r.instances[id], false, nil
	}

	inst, ok := r.instances[id]
	if !ok {
		fn, ok := r.constructors[id]
		if !ok {
			return r.Current(), false, fmt.Errorf("unknown module %q", id)
		}
		inst, err = fn()
		if err != nil {
			return r.Current(), false, fmt.Errorf("construct module %q: %w", id, err)
		}
		if err := validateModule(inst); err != nil {
			return r.Current(), false, fmt.Errorf("validate module %q: %w", id, err)
		}
		r.instances[id] = inst
		debug.Log("registry", "constructed module %s", id)
	}

	if prev := r.Current(); prev != nil {
		prev.Deactivate()
	}
	r.active = id
	inst.Activate()
	debug.Log("registry", "active module -> %s", id)
	return inst, true, nil
}
