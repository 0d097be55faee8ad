package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Dial value bars
	BarFull  rune // ▮ filled segment
	BarEmpty rune // ▯ unfilled segment

	// Dial selection
	DialIdle     rune // ◌ unselected dial marker
	DialSelected rune // ● selected dial marker

	// Buttons
	ButtonOff rune // □ unlit
	ButtonOn  rune // ■ lit / cyclic state active

	// Bank tabs
	TabActive rune // ▸
	TabIdle   rune // ·
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '▮',
			BarEmpty: '▯',

			DialIdle:     '◌',
			DialSelected: '●',

			ButtonOff: '□',
			ButtonOn:  '■',

			TabActive: '▸',
			TabIdle:   '·',
		},
	}
}

// Default returns the theme with the builtin palette
func Default() *Theme {
	return New(Builtin())
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.25
	RoleFG      = 0.5
	RoleAccent  = 0.7
	RoleActive  = 0.8
	RoleWarning = 0.95
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Color returns lipgloss color for any normalized value 0-1, used to tint
// value bars by how far the dial is turned
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
