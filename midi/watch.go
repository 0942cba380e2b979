package midi

import (
	"context"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortEvent is emitted when output ports appear/disappear
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// PortWatcher polls for MIDI output port hot-plug so the UI can show
// whether the configured synth output is actually reachable.
type PortWatcher struct {
	known    map[string]bool
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration

	out *PortOut // senders to invalidate on disconnect (may be nil)
}

// NewPortWatcher creates a port watcher; out may be nil
func NewPortWatcher(out *PortOut) *PortWatcher {
	return &PortWatcher{
		known:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		out:      out,
	}
}

// Events returns a channel of port connect/disconnect events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Available reports whether a named output port is currently present
func (w *PortWatcher) Available(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.known[name]
}

// Ports returns a snapshot of currently known output port names
func (w *PortWatcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.known))
	for name := range w.known {
		names = append(names, name)
	}
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-ctx.Done():
			close(w.events)
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *PortWatcher) scan() {
	// Port enumeration can hang on some backends - guard with a timeout
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	var outPorts []drivers.Out
	select {
	case outPorts = <-ch:
	case <-time.After(3 * time.Second):
		return
	}

	seen := make(map[string]bool, len(outPorts))
	for _, port := range outPorts {
		seen[port.String()] = true
	}

	w.mu.Lock()
	var connected, disconnected []string
	for name := range seen {
		if !w.known[name] {
			connected = append(connected, name)
		}
	}
	for name := range w.known {
		if !seen[name] {
			disconnected = append(disconnected, name)
		}
	}
	w.known = seen
	w.mu.Unlock()

	for _, name := range connected {
		w.emit(PortEvent{Type: PortConnected, Name: name})
	}
	for _, name := range disconnected {
		if w.out != nil {
			w.out.DropSender(name)
		}
		w.emit(PortEvent{Type: PortDisconnected, Name: name})
	}
}

func (w *PortWatcher) emit(e PortEvent) {
	select {
	case w.events <- e:
	default:
	}
}
