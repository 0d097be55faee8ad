package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dialdeck/midi"
	"dialdeck/surface"
	"dialdeck/theme"
	"dialdeck/widgets"
)

// Keyboard fallback: these keys press button slots 1..10 when no hardware
// surface is connected
const buttonKeys = "zxcvbnm,./"

// How far one keypress turns a dial, in raw 0..127 steps
const keyDialStep = 4

type Model struct {
	Engine    *surface.Engine
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	browser     *Browser
	browserOpen bool

	selDial  int // 0-based selected dial for keyboard control
	status   string
	quitting bool

	hw midi.Surface // connected surface (may be nil)
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(eng *surface.Engine, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Engine:    eng,
		DeviceMgr: deviceMgr,
		Theme:     th,
		browser:   NewBrowser(eng),
	}
}

func ListenForUpdates(eng *surface.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event := <-deviceMgr.Events()
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Engine),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.hw = event.Surface
			m.Engine.SetRings(event.Surface)

			// Pump hardware events into the engine's input queue
			go func(s midi.Surface) {
				for d := range s.DialEvents() {
					m.Engine.Post(surface.InputEvent{Kind: surface.EventDial, Slot: d.Slot, Raw: float64(d.Value)})
				}
			}(event.Surface)
			go func(s midi.Surface) {
				for b := range s.ButtonEvents() {
					m.Engine.Post(surface.InputEvent{Kind: surface.EventButton, Slot: b.Slot, Pressed: b.Pressed})
				}
			}(event.Surface)
		} else if event.Type == midi.DeviceDisconnected {
			if m.hw != nil && m.hw.ID() == event.ID {
				m.hw = nil
				m.Engine.SetRings(nil)
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	// Browser overlay swallows everything while open
	if m.browserOpen {
		if !m.browser.HandleKey(key) {
			m.browserOpen = false
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "p":
		m.browser.Open()
		m.browserOpen = true

	case "tab", "]":
		m.status = bankStep(m.Engine, 1)
	case "shift+tab", "[":
		m.status = bankStep(m.Engine, -1)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		ids := m.Engine.ModuleIDs()
		idx := int(key[0] - '1')
		if idx < len(ids) {
			if err := m.Engine.ActivateModule(ids[idx]); err != nil {
				m.status = err.Error()
			} else {
				m.status = ""
			}
		}

	case "j", "down":
		if m.selDial < surface.NumDials-1 {
			m.selDial++
		}
	case "k", "up":
		if m.selDial > 0 {
			m.selDial--
		}
	case "h", "left":
		m.nudgeDial(-keyDialStep)
	case "l", "right":
		m.nudgeDial(keyDialStep)

	default:
		// Button slot fallback keys
		if idx := strings.Index(buttonKeys, key); idx >= 0 && len(key) == 1 {
			m.Engine.Post(surface.InputEvent{Kind: surface.EventButton, Slot: idx + 1, Pressed: true})
		}
	}

	return m, nil
}

// nudgeDial posts a dial event for the selected slot, relative to its
// current cached value, through the same queue hardware uses
func (m *Model) nudgeDial(delta float64) {
	dials := m.Engine.Dials()
	if m.selDial < 0 || m.selDial >= len(dials) {
		return
	}
	raw := dials[m.selDial].Raw + delta
	if raw < 0 {
		raw = 0
	}
	if raw > surface.RawMax {
		raw = surface.RawMax
	}
	m.Engine.Post(surface.InputEvent{Kind: surface.EventDial, Slot: m.selDial + 1, Raw: raw})
}

func bankStep(eng *surface.Engine, dir int) string {
	names := eng.BankNames()
	if len(names) < 2 {
		return ""
	}
	active := eng.ActiveBank()
	for i, name := range names {
		if name == active {
			next := names[((i+dir)%len(names)+len(names))%len(names)]
			if err := eng.SwitchBank(next); err != nil {
				return err.Error()
			}
			return ""
		}
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	mod := m.Engine.ActiveModule()
	title := "(no module)"
	if mod != nil {
		title = mod.Title()
	}

	hwStatus := "kbd"
	if m.hw != nil {
		hwStatus = m.hw.ID()
	}

	header := headerStyle.Render(fmt.Sprintf("dialdeck  %s  [%s]", title, hwStatus))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	if m.browserOpen {
		out.WriteString(m.browser.View())
		return out.String()
	}

	// Bank tabs
	out.WriteString(widgets.RenderBankTabs(m.Theme, m.Engine.BankNames(), m.Engine.ActiveBank()))
	out.WriteString("\n\n")

	// Dials
	for i, d := range m.Engine.Dials() {
		if !d.Bound {
			out.WriteString(widgets.RenderEmptyDial(m.Theme, d.Slot))
			out.WriteString("\n")
			continue
		}
		norm := d.Raw / surface.RawMax
		display := fmt.Sprintf("%.0f", d.Param.FromRaw(d.Raw))
		out.WriteString(widgets.RenderDial(m.Theme, d.Param.Label, norm, display, i == m.selDial))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	// Buttons
	var cells []string
	for _, b := range m.Engine.ButtonStates() {
		stateLabel := ""
		lit := false
		if b.Spec.Kind == surface.ButtonCyclic && b.State < len(b.Spec.Cycle) {
			stateLabel = b.Spec.Cycle[b.State]
			lit = b.State > 0
		}
		cells = append(cells, widgets.RenderButton(m.Theme, b.Spec.Label, lit, stateLabel))
	}
	out.WriteString(strings.Join(cells, "   "))
	out.WriteString("\n\n")

	out.WriteString(dimStyle.Render("1-9:module  [/]:bank  j/k:dial  h/l:turn  z-/:buttons  p:presets  q:quit"))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}

	return out.String()
}
