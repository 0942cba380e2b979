package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thomassresearch/orchestron-sub004/config"
	"github.com/thomassresearch/orchestron-sub004/debug"
	"github.com/thomassresearch/orchestron-sub004/midi"
	"github.com/thomassresearch/orchestron-sub004/sequencer"
	"github.com/thomassresearch/orchestron-sub004/theme"
	"github.com/thomassresearch/orchestron-sub004/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
	}

	palette := theme.Default()
	if cfg.UI.PaletteFile != "" {
		palette, err = theme.LoadGPL(cfg.UI.PaletteFile)
		if err != nil {
			fmt.Printf("palette: %v\n", err)
			os.Exit(1)
		}
	}
	th := theme.New(palette)

	out := midi.NewPortOut(cfg.Output.PortName)
	defer out.Close()

	// Watch for port hot-plug in the background
	watcher := midi.NewPortWatcher(out)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	store := sequencer.NewStore()
	engine, err := sequencer.NewEngine(store, out)
	if err != nil {
		fmt.Printf("engine: %v\n", err)
		os.Exit(1)
	}
	if cfg.Transport.BPM > 0 {
		if err := engine.SetBPM(cfg.Transport.BPM); err != nil {
			fmt.Printf("config: %v\n", err)
			os.Exit(1)
		}
	}

	// Default layout: one melodic, one drum, one controller track
	if _, err := engine.AddTrack("lead", sequencer.KindMelodic, 1, 16); err != nil {
		fmt.Printf("track: %v\n", err)
		os.Exit(1)
	}
	if _, err := engine.AddTrack("drums", sequencer.KindDrum, 10, 16); err != nil {
		fmt.Printf("track: %v\n", err)
		os.Exit(1)
	}
	if _, err := engine.AddTrack("mod", sequencer.KindControl, 1, 16); err != nil {
		fmt.Printf("track: %v\n", err)
		os.Exit(1)
	}

	engine.SessionStarted()

	m := tui.NewModel(engine, watcher, out, th)
	m.ShowHarmony = cfg.UI.ShowHarmony
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
