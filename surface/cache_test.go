package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheRecordFetch(t *testing.T) {
	c := NewValueCache()

	_, ok := c.Fetch("delay", 1)
	assert.False(t, ok, "empty cache should miss")

	c.Record("delay", 1, 90)
	v, ok := c.Fetch("delay", 1)
	assert.True(t, ok)
	assert.Equal(t, 90.0, v)
}

func TestCacheLastWriteWins(t *testing.T) {
	c := NewValueCache()

	c.Record("delay", 3, 10)
	c.Record("delay", 3, 64)
	c.Record("delay", 3, 127)

	v, _ := c.Fetch("delay", 3)
	assert.Equal(t, 127.0, v)
}

func TestCacheKeyedByModuleAndSlot(t *testing.T) {
	c := NewValueCache()

	c.Record("delay", 1, 40)
	c.Record("filter", 1, 80)
	c.Record("delay", 2, 120)

	v, _ := c.Fetch("delay", 1)
	assert.Equal(t, 40.0, v)
	v, _ = c.Fetch("filter", 1)
	assert.Equal(t, 80.0, v)
	v, _ = c.Fetch("delay", 2)
	assert.Equal(t, 120.0, v)
}

func TestCacheFetchOr(t *testing.T) {
	c := NewValueCache()

	assert.Equal(t, 55.0, c.FetchOr("delay", 5, 55), "miss returns the fallback")

	c.Record("delay", 5, 99)
	assert.Equal(t, 99.0, c.FetchOr("delay", 5, 55))
}
