package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dialdeck/config"
	"dialdeck/debug"
	"dialdeck/midi"
	"dialdeck/modules"
	"dialdeck/surface"
	"dialdeck/theme"
	"dialdeck/tui"
)

func main() {
	if os.Getenv("DIALDECK_DEBUG") != "" {
		debug.Enable()
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	presetDir, err := config.PresetsDir()
	if err != nil {
		fmt.Printf("preset dir: %v\n", err)
		os.Exit(1)
	}

	th := theme.Default()

	// Outbound device commands drain off the frame loop
	outbox := midi.NewOutbox(cfg.Output.PortName)
	go outbox.Run()
	defer outbox.Stop()

	eng := surface.New(presetDir, cfg.Presets)
	eng.Register("delay", func() (surface.Module, error) {
		return modules.NewDelayModule(outbox, cfg.Output.PortName, cfg.Output.Channel), nil
	})
	eng.Register("filter", func() (surface.Module, error) {
		return modules.NewFilterModule(outbox, cfg.Output.PortName, cfg.Output.Channel), nil
	})

	start := cfg.UI.LastModule
	if start == "" {
		start = "delay"
	}
	if err := eng.ActivateModule(start); err != nil {
		fmt.Printf("activate %s: %v\n", start, err)
		os.Exit(1)
	}

	go eng.Run()
	defer eng.Stop()

	// Hot-plug detection for the control surface
	deviceMgr := midi.NewDeviceManager(cfg.Surface.PortName, midi.SlotMap{
		DialCC:     cfg.Surface.DialCC,
		RingCC:     cfg.Surface.RingCC,
		ButtonNote: cfg.Surface.ButtonNote,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	m := tui.NewModel(eng, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Remember where we were for next launch
	cfg.UI.LastModule = eng.ActiveID()
	cfg.Save()
}
