package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thomassresearch/orchestron-sub004/midi"
	"github.com/thomassresearch/orchestron-sub004/sequencer"
	"github.com/thomassresearch/orchestron-sub004/theme"
)

type Model struct {
	Engine  *sequencer.Engine
	Watcher *midi.PortWatcher
	Out     *midi.PortOut
	Theme   *theme.Theme

	ShowHarmony bool

	selected int // track row cursor
	lastErr  string
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

func NewModel(engine *sequencer.Engine, watcher *midi.PortWatcher, out *midi.PortOut, th *theme.Theme) Model {
	return Model{
		Engine:      engine,
		Watcher:     watcher,
		Out:         out,
		Theme:       th,
		ShowHarmony: true,
	}
}

func ListenForUpdates(engine *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(watcher *midi.PortWatcher) tea.Cmd {
	return func() tea.Msg {
		event := <-watcher.Events()
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Engine),
		ListenForPorts(m.Watcher),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		m.collectErrors()
		return m, ListenForUpdates(m.Engine)

	case PortEventMsg:
		if msg.Type == midi.PortDisconnected && msg.Name == m.Out.DefaultPort() {
			m.lastErr = fmt.Sprintf("output port %q disconnected", msg.Name)
		}
		return m, ListenForPorts(m.Watcher)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	status := m.Engine.Status()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit

	case "s":
		if status.SessionActive {
			m.Engine.SessionEnded()
		} else {
			m.Engine.SessionStarted()
		}

	case " ":
		if status.Playing {
			m.Engine.Stop()
		} else if err := m.Engine.Play(); err != nil {
			m.lastErr = err.Error()
		}

	case "j", "down":
		if m.selected < len(status.Tracks)-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "enter":
		if t, ok := m.selectedTrack(status); ok {
			var err error
			if t.Phase.IsRunning() {
				err = m.Engine.StopTrack(t.ID)
			} else {
				err = m.Engine.StartTrack(t.ID)
			}
			if err != nil {
				m.lastErr = err.Error()
			}
		}

	case "m":
		if t, ok := m.selectedTrack(status); ok {
			if err := m.Engine.SetMuted(t.ID, !t.Muted); err != nil {
				m.lastErr = err.Error()
			}
		}

	case "+", "=":
		if err := m.Engine.SetBPM(status.BPM + 5); err != nil {
			m.lastErr = err.Error()
		}

	case "-", "_":
		if err := m.Engine.SetBPM(status.BPM - 5); err != nil {
			m.lastErr = err.Error()
		}

	case "1", "2", "3", "4", "5", "6", "7", "8":
		if t, ok := m.selectedTrack(status); ok {
			pad := int(msg.String()[0] - '1')
			if err := m.Engine.SelectPad(t.ID, pad); err != nil {
				m.lastErr = err.Error()
			}
		}
	}
	return m, nil
}

func (m *Model) selectedTrack(status sequencer.Status) (sequencer.TrackStatus, bool) {
	if m.selected < 0 || m.selected >= len(status.Tracks) {
		return sequencer.TrackStatus{}, false
	}
	return status.Tracks[m.selected], true
}

func (m *Model) collectErrors() {
	for _, err := range m.Engine.DrainErrors() {
		m.lastErr = err.Error()
	}
}

func (m Model) View() string {
	if m.quitting {
		return "bye\n"
	}

	status := m.Engine.Status()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(th.Muted())
	activeStyle := lipgloss.NewStyle().Foreground(th.Active())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor())

	var out strings.Builder

	session := "session: off"
	if status.SessionActive {
		session = "session: on"
	}
	transport := "stopped"
	if status.Playing {
		transport = fmt.Sprintf("step %2d/%d  cycle %d", status.Step+1, status.StepsPerCycle, status.Cycle)
	}
	out.WriteString(headerStyle.Render("ORCHESTRON"))
	out.WriteString(fmt.Sprintf("  %d bpm  %s  %s\n", status.BPM, transport, session))

	port := m.Out.DefaultPort()
	if port == "" {
		out.WriteString(mutedStyle.Render("no output port configured") + "\n")
	} else if m.Watcher.Available(port) {
		out.WriteString(mutedStyle.Render("out: "+port) + "\n")
	} else {
		out.WriteString(warnStyle.Render("out: "+port+" (unavailable)") + "\n")
	}
	out.WriteString("\n")

	for i, t := range status.Tracks {
		cursor := "  "
		if i == m.selected {
			cursor = cursorStyle.Render("> ")
		}

		pads := make([]string, sequencer.NumPads)
		for p := range pads {
			ch := string(th.Symbols.StepEmpty)
			switch {
			case p == t.ActivePad:
				ch = string(th.Symbols.StepPlayhead)
			case p == t.QueuedPad:
				ch = string(th.Symbols.StepQueued)
			}
			pads[p] = ch
		}

		line := fmt.Sprintf("%s%-10s %-7s ch%-2d [%s] %s",
			cursor, t.Name, t.Kind, t.Channel, strings.Join(pads, " "), t.Phase)
		if t.Muted {
			line += "  (muted)"
		}
		if t.LoopHeld {
			line += "  " + string(th.Symbols.LoopHold) + " holding"
		}

		if t.Phase.IsRunning() {
			out.WriteString(activeStyle.Render(line))
		} else {
			out.WriteString(mutedStyle.Render(line))
		}
		out.WriteString("\n")

		if i == m.selected && len(t.Loop) > 0 {
			entries := make([]string, len(t.Loop))
			for j, entry := range t.Loop {
				sym := string(th.Symbols.LoopGroup)
				if entry.IsPad {
					sym = string(th.Symbols.LoopPad)
				}
				if entry.Playing {
					entries[j] = activeStyle.Render(sym)
				} else {
					entries[j] = mutedStyle.Render(sym)
				}
			}
			out.WriteString("    loop: " + strings.Join(entries, " ") + "\n")
		}
	}

	if m.ShowHarmony {
		out.WriteString("\n")
		out.WriteString(m.harmonyLine())
		out.WriteString("\n")
	}

	if m.lastErr != "" {
		out.WriteString(warnStyle.Render("! "+m.lastErr) + "\n")
	}

	out.WriteString(mutedStyle.Render(
		"space play/stop  enter track start/stop  1-8 pad  m mute  +/- tempo  s session  q quit"))
	out.WriteString("\n")

	return out.String()
}

// harmonyLine renders the twelve pitch classes with in-scale highlighting
func (m Model) harmonyLine() string {
	th := m.Theme
	result := m.Engine.Harmony()

	inStyle := lipgloss.NewStyle().Foreground(th.Success())
	outStyle := lipgloss.NewStyle().Foreground(th.Muted())

	var parts []string
	for pc := 0; pc < 12; pc++ {
		name := sequencer.NoteName(pc)
		if result.PitchClasses[pc].InScale {
			parts = append(parts, inStyle.Render(name))
		} else {
			parts = append(parts, outStyle.Render(name))
		}
	}

	label := result.Theory.String()
	if result.Mixed {
		label = "mixed"
	}
	return fmt.Sprintf("harmony: %-12s %s", label, strings.Join(parts, " "))
}
