package tui

import (
	"fmt"
	"strings"

	"dialdeck/surface"
	"dialdeck/widgets"
)

// InputMode for text input inside the browser
type InputMode int

const (
	InputNone InputMode = iota
	InputSaveAs
	InputRename
)

// Browser is the preset overlay for the active module: list, load, save-as,
// rename and delete with confirmation.
type Browser struct {
	eng *surface.Engine

	moduleID string
	presets  []string
	idx      int

	inputMode   InputMode
	inputBuffer string

	confirmMode   bool
	confirmMsg    string
	confirmAction func()

	status string
}

func NewBrowser(eng *surface.Engine) *Browser {
	return &Browser{eng: eng}
}

// Open refreshes the list for the active module
func (b *Browser) Open() {
	b.moduleID = b.eng.ActiveID()
	b.status = ""
	b.Refresh()
}

// Refresh reloads the preset list
func (b *Browser) Refresh() {
	names, _ := b.eng.Presets().List(b.moduleID)
	b.presets = names
	if b.idx >= len(b.presets) {
		b.idx = max(0, len(b.presets)-1)
	}
}

// IsInputMode returns true if the browser is accepting text input
func (b *Browser) IsInputMode() bool {
	return b.inputMode != InputNone || b.confirmMode
}

// HandleKey processes one key while the browser is open. Returns false when
// the browser should close.
func (b *Browser) HandleKey(key string) bool {
	if b.confirmMode {
		switch key {
		case "y", "Y":
			if b.confirmAction != nil {
				b.confirmAction()
			}
			b.confirmMode = false
			b.confirmAction = nil
			b.Refresh()
		case "n", "N", "esc", "q":
			b.confirmMode = false
			b.confirmAction = nil
		}
		return true
	}

	if b.inputMode != InputNone {
		switch key {
		case "enter":
			b.commitInput()
		case "esc":
			b.inputMode = InputNone
			b.inputBuffer = ""
		case "backspace":
			if len(b.inputBuffer) > 0 {
				b.inputBuffer = b.inputBuffer[:len(b.inputBuffer)-1]
			}
		default:
			// Only accept printable characters, no path separators
			if len(key) == 1 && key[0] >= 32 && key[0] < 127 && key != "/" && key != "\\" {
				b.inputBuffer += key
			}
		}
		return true
	}

	switch key {
	case "esc", "q":
		return false
	case "j", "down":
		if b.idx < len(b.presets)-1 {
			b.idx++
		}
	case "k", "up":
		if b.idx > 0 {
			b.idx--
		}
	case "enter", " ":
		b.loadSelected()
	case "s":
		b.inputMode = InputSaveAs
		b.inputBuffer = ""
	case "r":
		if len(b.presets) > 0 {
			b.inputMode = InputRename
			b.inputBuffer = b.presets[b.idx]
		}
	case "d":
		b.deleteSelected()
	}
	return true
}

func (b *Browser) commitInput() {
	name := strings.TrimSpace(b.inputBuffer)

	switch b.inputMode {
	case InputSaveAs:
		if name != "" {
			if err := b.eng.SavePreset(name); err != nil {
				b.status = err.Error()
			} else {
				b.status = fmt.Sprintf("saved %q", name)
			}
		}
	case InputRename:
		if name != "" && len(b.presets) > 0 {
			if err := b.eng.Presets().Rename(b.moduleID, b.presets[b.idx], name); err != nil {
				b.status = err.Error()
			}
		}
	}

	b.inputMode = InputNone
	b.inputBuffer = ""
	b.Refresh()
}

func (b *Browser) loadSelected() {
	if len(b.presets) == 0 {
		return
	}
	name := b.presets[b.idx]
	if err := b.eng.LoadPreset(name); err != nil {
		b.status = err.Error()
		return
	}
	b.status = fmt.Sprintf("loaded %q", name)
}

func (b *Browser) deleteSelected() {
	if len(b.presets) == 0 {
		return
	}
	name := b.presets[b.idx]
	b.confirmMsg = fmt.Sprintf("Delete preset '%s'?", name)
	b.confirmAction = func() {
		b.eng.Presets().Delete(b.moduleID, name)
	}
	b.confirmMode = true
}

func (b *Browser) View() string {
	var out strings.Builder

	out.WriteString(fmt.Sprintf("PRESETS  %s\n\n", b.moduleID))

	if b.confirmMode {
		out.WriteString("─────────────────────────────────────\n")
		out.WriteString(fmt.Sprintf("\n%s\n\n", b.confirmMsg))
		out.WriteString("  [y] Yes    [n] No\n")
		out.WriteString("\n─────────────────────────────────────\n")
		return out.String()
	}

	if b.inputMode != InputNone {
		label := "Save preset as"
		if b.inputMode == InputRename {
			label = "Rename preset to"
		}
		out.WriteString("─────────────────────────────────────\n")
		out.WriteString(fmt.Sprintf("\n%s: %s_\n", label, b.inputBuffer))
		out.WriteString("\n[enter] confirm  [esc] cancel\n")
		out.WriteString("\n─────────────────────────────────────\n")
		return out.String()
	}

	if len(b.presets) == 0 {
		out.WriteString("  (no presets yet)\n")
	}
	for i, name := range b.presets {
		prefix := "  "
		if i == b.idx {
			prefix = "> "
		}
		out.WriteString(fmt.Sprintf("%s%s\n", prefix, name))
	}

	out.WriteString("\n")
	out.WriteString(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "j / k", Desc: "navigate"},
			{Key: "enter", Desc: "load selected"},
			{Key: "s", Desc: "save as"},
			{Key: "r", Desc: "rename"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "close"},
		}},
	}))

	if b.status != "" {
		out.WriteString("\n\n")
		out.WriteString(b.status)
	}

	return out.String()
}
