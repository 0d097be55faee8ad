package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamSpecFromRaw(t *testing.T) {
	p := ParamSpec{Name: "time", Min: 20, Max: 1500, Default: 400}

	assert.Equal(t, 20.0, p.FromRaw(0))
	assert.Equal(t, 1500.0, p.FromRaw(127))
	assert.InDelta(t, 760.0, p.FromRaw(63.5), 0.001)

	// Out-of-range raw clamps.
	assert.Equal(t, 20.0, p.FromRaw(-5))
	assert.Equal(t, 1500.0, p.FromRaw(200))
}

func TestParamSpecToRaw(t *testing.T) {
	p := ParamSpec{Name: "time", Min: 20, Max: 1500, Default: 400}

	assert.Equal(t, 0.0, p.ToRaw(20))
	assert.Equal(t, 127.0, p.ToRaw(1500))
	assert.Equal(t, 0.0, p.ToRaw(-100))
	assert.Equal(t, 127.0, p.ToRaw(9999))

	flat := ParamSpec{Min: 5, Max: 5}
	assert.Equal(t, 0.0, flat.ToRaw(5), "degenerate range maps to 0")
}

func TestParamSpecDefaultRaw(t *testing.T) {
	p := ParamSpec{Min: 0, Max: 127, Default: 64}
	assert.Equal(t, 64.0, p.DefaultRaw())
}

func TestValidateModule(t *testing.T) {
	assert.NoError(t, validateModule(newTestModule("ok")))

	cases := []struct {
		name string
		mod  Module
	}{
		{"no banks", &shapedModule{id: "x"}},
		{"duplicate param", &shapedModule{
			id:     "x",
			params: []ParamSpec{{Name: "a"}, {Name: "a"}},
			banks:  []BankSpec{{Name: "main"}},
		}},
		{"inverted range", &shapedModule{
			id:     "x",
			params: []ParamSpec{{Name: "a", Min: 10, Max: 0}},
			banks:  []BankSpec{{Name: "main"}},
		}},
		{"undeclared binding", &shapedModule{
			id:    "x",
			banks: []BankSpec{{Name: "main", Slots: map[int]string{1: "ghost"}}},
		}},
		{"out-of-range slot", &shapedModule{
			id:     "x",
			params: []ParamSpec{{Name: "a"}},
			banks:  []BankSpec{{Name: "main", Slots: map[int]string{9: "a"}}},
		}},
		{"duplicate bank", &shapedModule{
			id:    "x",
			banks: []BankSpec{{Name: "main"}, {Name: "main"}},
		}},
		{"cyclic without labels", &shapedModule{
			id:      "x",
			banks:   []BankSpec{{Name: "main"}},
			buttons: []ButtonSpec{{ID: "b", Kind: ButtonCyclic}},
		}},
		{"nav to unknown bank", &shapedModule{
			id:      "x",
			banks:   []BankSpec{{Name: "main"}},
			buttons: []ButtonSpec{{ID: "b", Kind: ButtonNav, TargetBank: "ghost"}},
		}},
		{"duplicate button", &shapedModule{
			id:      "x",
			banks:   []BankSpec{{Name: "main"}},
			buttons: []ButtonSpec{{ID: "b"}, {ID: "b"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, validateModule(tc.mod))
		})
	}
}

// shapedModule lets validation tests declare arbitrary descriptor shapes
type shapedModule struct {
	id      string
	params  []ParamSpec
	buttons []ButtonSpec
	banks   []BankSpec
}

func (m *shapedModule) ID() string                  { return m.id }
func (m *shapedModule) Title() string               { return m.id }
func (m *shapedModule) Params() []ParamSpec         { return m.params }
func (m *shapedModule) Buttons() []ButtonSpec       { return m.buttons }
func (m *shapedModule) Banks() []BankSpec           { return m.banks }
func (m *shapedModule) HandleParam(string, float64) {}
func (m *shapedModule) HandleButton(string, int)    {}
func (m *shapedModule) Activate()                   {}
func (m *shapedModule) Deactivate()                 {}
