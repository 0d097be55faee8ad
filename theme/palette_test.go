package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupEndpoints(t *testing.T) {
	p := Builtin()

	assert.Equal(t, p.Colors[0], p.Lookup(0))
	assert.Equal(t, p.Colors[0], p.Lookup(-1))
	assert.Equal(t, p.Colors[len(p.Colors)-1], p.Lookup(1))
	assert.Equal(t, p.Colors[len(p.Colors)-1], p.Lookup(2))
}

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {100, 200, 50}}}

	mid := p.Lookup(0.5)
	assert.Equal(t, RGB{50, 100, 25}, mid)
}

func TestIndexClamps(t *testing.T) {
	p := Builtin()

	assert.Equal(t, p.Colors[0], p.Index(-5))
	assert.Equal(t, p.Colors[3], p.Index(3))
	assert.Equal(t, p.Colors[len(p.Colors)-1], p.Index(999))
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	content := `GIMP Palette
Name: testpal
Columns: 4
# comment
10 20 30	first
40 50 60	second
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	assert.Equal(t, "testpal", p.Name)
	assert.Equal(t, []RGB{{10, 20, 30}, {40, 50, 60}}, p.Colors)
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n"), 0644))

	_, err := LoadGPL(path)
	assert.Error(t, err)
}
