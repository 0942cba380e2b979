package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// PortOut dispatches events to real MIDI output ports, opening ports lazily
// and caching senders per port name.
type PortOut struct {
	defaultPort string

	senders   map[string]func(gomidi.Message) error
	sendersMu sync.RWMutex
}

// NewPortOut creates a dispatcher targeting the given default output port
func NewPortOut(defaultPort string) *PortOut {
	return &PortOut{
		defaultPort: defaultPort,
		senders:     make(map[string]func(gomidi.Message) error),
	}
}

// SetDefaultPort changes the default output port name
func (p *PortOut) SetDefaultPort(portName string) {
	p.sendersMu.Lock()
	p.defaultPort = portName
	p.sendersMu.Unlock()
}

// DefaultPort returns the current default output port name
func (p *PortOut) DefaultPort() string {
	p.sendersMu.RLock()
	defer p.sendersMu.RUnlock()
	return p.defaultPort
}

// Send implements Dispatcher
func (p *PortOut) Send(e Event) error {
	p.sendersMu.RLock()
	portName := p.defaultPort
	p.sendersMu.RUnlock()

	sender := p.getSender(portName)
	if sender == nil {
		return fmt.Errorf("midi port %q unavailable", portName)
	}

	midiCh := e.Channel - 1 // wire channels are 0-based
	switch e.Type {
	case NoteOn:
		return sender(gomidi.NoteOn(midiCh, e.Note, e.Velocity))
	case NoteOff:
		return sender(gomidi.NoteOff(midiCh, e.Note))
	case ControlChange:
		return sender(gomidi.ControlChange(midiCh, e.Controller, e.Value))
	case Trigger:
		if err := sender(gomidi.NoteOn(midiCh, e.Note, e.Velocity)); err != nil {
			return err
		}
		return sender(gomidi.NoteOff(midiCh, e.Note))
	}
	return fmt.Errorf("unknown event type %d", e.Type)
}

// Close releases the MIDI driver
func (p *PortOut) Close() {
	gomidi.CloseDriver()
}

// getSender returns a sender for the given port name, lazily opening it
func (p *PortOut) getSender(portName string) func(gomidi.Message) error {
	if portName == "" {
		return nil
	}

	p.sendersMu.RLock()
	if sender, ok := p.senders[portName]; ok {
		p.sendersMu.RUnlock()
		return sender
	}
	p.sendersMu.RUnlock()

	p.sendersMu.Lock()
	defer p.sendersMu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := p.senders[portName]; ok {
		return sender
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				return nil
			}
			p.senders[portName] = sender
			return sender
		}
	}
	return nil
}

// DropSender forgets a cached sender (port disappeared)
func (p *PortOut) DropSender(portName string) {
	p.sendersMu.Lock()
	delete(p.senders, portName)
	p.sendersMu.Unlock()
}

// ListPorts returns the names of all MIDI output ports
func ListPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}
