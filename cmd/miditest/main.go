package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "probe":
		probePort(os.Args[2:])
	case "panic":
		panicPort(os.Args[2:])
	case "poll":
		pollPorts()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  probe <port> [ch]   - Play a short test phrase on a port")
	fmt.Println("  panic <port>        - Send all-notes-off on every channel")
	fmt.Println("  poll                - Poll for port changes")
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
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
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
		fmt.Println("\nTIMEOUT! MIDI backend is hung.")
		fmt.Println("Fix: restart the system MIDI service")
	}
}

func findOut(name string) drivers.Out {
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p
		}
	}
	return nil
}

func probePort(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: miditest probe <port> [channel]")
		return
	}

	channel := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > 16 {
			fmt.Println("channel must be 1-16")
			return
		}
		channel = n
	}

	outPort := findOut(args[0])
	if outPort == nil {
		fmt.Printf("No output port matching %q\n", args[0])
		return
	}

	fmt.Printf("Using output: %s (channel %d)\n", outPort.String(), channel)

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	// Ascending C major arpeggio, quarter notes at 120 bpm
	notes := []uint8{60, 64, 67, 72}
	ch := uint8(channel - 1)

	for _, note := range notes {
		fmt.Printf("  note %d\n", note)
		if err := send(midi.NoteOn(ch, note, 100)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		time.Sleep(400 * time.Millisecond)
		send(midi.NoteOff(ch, note))
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("Done!")
}

func panicPort(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: miditest panic <port>")
		return
	}

	outPort := findOut(args[0])
	if outPort == nil {
		fmt.Printf("No output port matching %q\n", args[0])
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	fmt.Printf("Sending all-notes-off on %s...\n", outPort.String())
	for ch := uint8(0); ch < 16; ch++ {
		send(midi.ControlChange(ch, 123, 0)) // all notes off
		send(midi.ControlChange(ch, 120, 0)) // all sound off
	}

	fmt.Println("Done!")
}

func pollPorts() {
	fmt.Println("Polling for port changes every 2 seconds...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

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
			fmt.Printf("\n[%s] Port change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
