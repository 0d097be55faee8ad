package surface

type cacheKey struct {
	module string
	slot   int
}

// ValueCache stores the last raw value seen per (module, slot), decoupled
// from which module or bank is active. Switching away and back reproduces
// the same on-screen value without re-touching hardware. Entries live until
// process end or a preset load overwrites them.
type ValueCache struct {
	values map[cacheKey]float64
}

func NewValueCache() *ValueCache {
	return &ValueCache{values: make(map[cacheKey]float64)}
}

// Record stores the latest raw value, last-write-wins. A physical control
// produces monotonically-ordered events; only the most recent matters.
func (c *ValueCache) Record(moduleID string, slot int, raw float64) {
	c.values[cacheKey{moduleID, slot}] = raw
}

// Fetch returns the last recorded raw value for (module, slot)
func (c *ValueCache) Fetch(moduleID string, slot int) (float64, bool) {
	v, ok := c.values[cacheKey{moduleID, slot}]
	return v, ok
}

// FetchOr returns the last recorded value or def if none exists
func (c *ValueCache) FetchOr(moduleID string, slot int, def float64) float64 {
	if v, ok := c.Fetch(moduleID, slot); ok {
		return v
	}
	return def
}
