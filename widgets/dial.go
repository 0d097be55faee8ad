package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dialdeck/theme"
)

// Bar width for the standard dial widget
const dialBarWidth = 10

// RenderDial renders one dial as label, value bar and formatted value:
//
//	Fdbk   ▮▮▮▮▯▯▯▯▯▯  35
//
// norm is 0..1; selected draws the cursor marker.
func RenderDial(th *theme.Theme, label string, norm float64, display string, selected bool) string {
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}

	filled := int(norm*float64(dialBarWidth) + 0.5)
	var bar strings.Builder
	for i := 0; i < dialBarWidth; i++ {
		if i < filled {
			bar.WriteRune(th.Symbols.BarFull)
		} else {
			bar.WriteRune(th.Symbols.BarEmpty)
		}
	}

	marker := th.Symbols.DialIdle
	style := lipgloss.NewStyle().Foreground(th.Muted())
	if selected {
		marker = th.Symbols.DialSelected
		style = lipgloss.NewStyle().Foreground(th.Accent())
	}
	barStyle := lipgloss.NewStyle().Foreground(th.Color(0.3 + norm*0.7))

	return fmt.Sprintf("%s %s %s %s",
		style.Render(string(marker)),
		style.Render(fmt.Sprintf("%-7s", label)),
		barStyle.Render(bar.String()),
		style.Render(display))
}

// RenderEmptyDial renders an unbound slot
func RenderEmptyDial(th *theme.Theme, slot int) string {
	style := lipgloss.NewStyle().Foreground(th.Muted())
	return style.Render(fmt.Sprintf("%s %-7s %s", string(th.Symbols.DialIdle), fmt.Sprintf("dial %d", slot), strings.Repeat("·", dialBarWidth)))
}

// RenderButton renders one button cell: label plus lit state or cyclic label
func RenderButton(th *theme.Theme, label string, lit bool, stateLabel string) string {
	sym := th.Symbols.ButtonOff
	style := lipgloss.NewStyle().Foreground(th.Muted())
	if lit {
		sym = th.Symbols.ButtonOn
		style = lipgloss.NewStyle().Foreground(th.Active())
	}
	text := label
	if stateLabel != "" {
		text = fmt.Sprintf("%s:%s", label, stateLabel)
	}
	return style.Render(fmt.Sprintf("%s %s", string(sym), text))
}

// RenderBankTabs renders the bank strip with the active one marked
func RenderBankTabs(th *theme.Theme, names []string, active string) string {
	var parts []string
	activeStyle := lipgloss.NewStyle().Foreground(th.Accent())
	idleStyle := lipgloss.NewStyle().Foreground(th.Muted())
	for _, name := range names {
		if name == active {
			parts = append(parts, activeStyle.Render(fmt.Sprintf("%s%s", string(th.Symbols.TabActive), name)))
		} else {
			parts = append(parts, idleStyle.Render(fmt.Sprintf("%s%s", string(th.Symbols.TabIdle), name)))
		}
	}
	return strings.Join(parts, "  ")
}
