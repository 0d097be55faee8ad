package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanksDefaultIsFirstDeclared(t *testing.T) {
	b := NewBanks()
	m := newTestModule("a")

	b.Ensure(m)
	assert.Equal(t, "1", b.ActiveName("a"))

	// Ensure is idempotent and never resets an existing selection.
	require.NoError(t, b.Switch("a", "2"))
	b.Ensure(m)
	assert.Equal(t, "2", b.ActiveName("a"))
}

func TestBanksSwitchUnknownIsRejected(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))

	err := b.Switch("a", "nope")
	assert.Error(t, err)
	assert.Equal(t, "1", b.ActiveName("a"), "failed switch leaves the bank unchanged")
}

func TestBanksResolve(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))

	param, ok := b.Resolve("a", 2)
	require.True(t, ok)
	assert.Equal(t, "b", param)

	_, ok = b.Resolve("a", 5)
	assert.False(t, ok, "slot 5 belongs to bank 2, not the active bank")

	require.NoError(t, b.Switch("a", "2"))
	param, ok = b.Resolve("a", 5)
	require.True(t, ok)
	assert.Equal(t, "e", param)
	_, ok = b.Resolve("a", 2)
	assert.False(t, ok)
}

func TestBanksOwnedSlotsSorted(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))

	assert.Equal(t, []int{1, 2, 3, 4}, b.OwnedSlots("a"))
}

func TestBanksSlotForParamPrefersActiveBank(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))

	slot, ok := b.SlotForParam("a", "a")
	require.True(t, ok)
	assert.Equal(t, 1, slot)

	// Parameter bound only in a non-active bank still resolves.
	slot, ok = b.SlotForParam("a", "f")
	require.True(t, ok)
	assert.Equal(t, 6, slot)

	_, ok = b.SlotForParam("a", "missing")
	assert.False(t, ok)
}

func TestBanksPerModuleSelection(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))
	b.Ensure(newTestModule("z"))

	require.NoError(t, b.Switch("a", "2"))
	assert.Equal(t, "2", b.ActiveName("a"))
	assert.Equal(t, "1", b.ActiveName("z"), "switching one module's bank leaves others alone")
}

func TestBanksNamesDeclarationOrder(t *testing.T) {
	b := NewBanks()
	b.Ensure(newTestModule("a"))

	assert.Equal(t, []string{"1", "2"}, b.Names("a"))
}
