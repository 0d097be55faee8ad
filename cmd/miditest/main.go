package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitorCC()
	case "rings":
		testRings()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI surface test scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  monitor  - Print incoming CC/note messages (first input port)")
	fmt.Println("  rings    - Sweep encoder ring LEDs on CC 16-23")
	fmt.Println("  poll     - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: midi.GetInPorts(), outs: midi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI subsystem is hung.")
	}
}

func monitorCC() {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		fmt.Println("No input ports")
		return
	}
	port := ins[0]
	fmt.Printf("Monitoring %s (Ctrl+C to exit)\n", port.String())

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		var channel, cc, value, note, velocity uint8
		switch {
		case msg.GetControlChange(&channel, &cc, &value):
			fmt.Printf("  CC ch=%d cc=%d value=%d\n", channel+1, cc, value)
		case msg.GetNoteOn(&channel, &note, &velocity):
			fmt.Printf("  NoteOn ch=%d note=%d vel=%d\n", channel+1, note, velocity)
		case msg.GetNoteOff(&channel, &note, &velocity):
			fmt.Printf("  NoteOff ch=%d note=%d\n", channel+1, note)
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	select {}
}

func testRings() {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		fmt.Println("No output ports")
		return
	}
	port := outs[0]
	fmt.Printf("Sweeping rings on %s\n", port.String())

	send, err := midi.SendTo(port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for v := 0; v <= 127; v += 8 {
		for cc := uint8(16); cc <= 23; cc++ {
			send(midi.ControlChange(0, cc, uint8(v)))
		}
		time.Sleep(50 * time.Millisecond)
	}

	// Clear
	for cc := uint8(16); cc <= 23; cc++ {
		send(midi.ControlChange(0, cc, 0))
	}

	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
