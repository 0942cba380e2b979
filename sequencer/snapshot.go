package sequencer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NodeSnapshot is one serialized pattern node. Content is split per variant
// so the JSON stays self-describing.
type NodeSnapshot struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Pad      int      `json:"pad,omitempty"`
	Children []string `json:"children,omitempty"`

	Melodic *MelodicContent `json:"melodic,omitempty"`
	Drum    *DrumContent    `json:"drum,omitempty"`
	Control *ControlContent `json:"control,omitempty"`
}

// LoopSnapshot serializes a track's pad-loop sequencer
type LoopSnapshot struct {
	Root   []string `json:"root,omitempty"`
	Repeat bool     `json:"repeat"`
}

// TrackSnapshot is one serialized track
type TrackSnapshot struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Kind       string          `json:"kind"`
	Channel    uint8           `json:"channel"`
	Controller uint8           `json:"controller,omitempty"`
	StepCount  int             `json:"stepCount"`
	Velocity   uint8           `json:"velocity"`
	GateRatio  float64         `json:"gateRatio"`
	Muted      bool            `json:"muted,omitempty"`
	Pads       [NumPads]string `json:"pads"`
	ActivePad  int             `json:"activePad"`
	QueuedPad  int             `json:"queuedPad"`
	Phase      string          `json:"phase"`
	Loop       LoopSnapshot    `json:"loop"`
}

// Snapshot is the serializable engine state handed to the persistence layer
type Snapshot struct {
	BPM    int             `json:"bpm"`
	Nodes  []NodeSnapshot  `json:"nodes"`
	Tracks []TrackSnapshot `json:"tracks"`
}

// Snapshot captures {tracks, pattern store, root sequences} for save
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{BPM: e.clock.BPM()}

	e.store.mu.RLock()
	for _, n := range e.store.nodes {
		ns := NodeSnapshot{
			ID:       n.ID,
			Kind:     n.Kind.String(),
			Name:     n.Name,
			Pad:      n.Pad,
			Children: append([]string(nil), n.Children...),
		}
		switch c := n.content.(type) {
		case *MelodicContent:
			ns.Melodic = c.clone().(*MelodicContent)
		case *DrumContent:
			ns.Drum = c.clone().(*DrumContent)
		case *ControlContent:
			ns.Control = c.clone().(*ControlContent)
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	e.store.mu.RUnlock()
	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })

	for _, t := range e.tracks {
		snap.Tracks = append(snap.Tracks, TrackSnapshot{
			ID:         t.ID,
			Name:       t.Name,
			Kind:       t.Kind.String(),
			Channel:    t.Channel,
			Controller: t.Controller,
			StepCount:  t.StepCount,
			Velocity:   t.Velocity,
			GateRatio:  t.GateRatio,
			Muted:      t.Muted,
			Pads:       t.Pads,
			ActivePad:  t.ActivePad,
			QueuedPad:  t.QueuedPad,
			Phase:      t.Phase.String(),
			Loop: LoopSnapshot{
				Root:   append([]string(nil), t.Loop.Root...),
				Repeat: t.Loop.Repeat,
			},
		})
	}
	return snap
}

// Restore replaces the engine state from a snapshot. The reference graph is
// re-validated through the same rank rules; a violating snapshot is rejected
// with no state change. The transport comes back stopped.
func (e *Engine) Restore(snap Snapshot) error {
	if snap.BPM < MinBPM || snap.BPM > MaxBPM {
		return rangeErrorf("bpm %d", snap.BPM)
	}

	store, err := buildStore(snap.Nodes)
	if err != nil {
		return err
	}
	tracks, err := buildTracks(snap.Tracks, store)
	if err != nil {
		return err
	}

	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.store.mu.Lock()
	e.store.nodes = store.nodes
	e.store.refs = store.refs
	e.store.seq = store.seq
	e.store.mu.Unlock()

	e.tracks = tracks
	e.byID = make(map[string]*Track, len(tracks))
	e.owner = make(map[string]string)
	e.rt = make(map[string]*trackRuntime, len(tracks))
	e.pending = make(map[string]Content)
	e.offs = e.offs[:0]
	maxSeq := 0
	for _, t := range tracks {
		e.byID[t.ID] = t
		e.rt[t.ID] = newTrackRuntime()
		for _, pad := range t.Pads {
			e.owner[pad] = t.ID
		}
		if n := idSeq(t.ID); n > maxSeq {
			maxSeq = n
		}
	}
	e.seq = maxSeq
	e.clock.SetBPM(snap.BPM)
	e.clock.Reset()
	e.refreshTransportLocked()
	return nil
}

func buildStore(nodes []NodeSnapshot) (*Store, error) {
	store := NewStore()
	// First pass: materialize nodes
	for _, ns := range nodes {
		kind, err := parseNodeKind(ns.Kind)
		if err != nil {
			return nil, err
		}
		if _, dup := store.nodes[ns.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidRange, "duplicate node id %q", ns.ID)
		}
		n := &Node{ID: ns.ID, Kind: kind, Name: ns.Name, Pad: ns.Pad}
		if kind == NodePad {
			if ns.Pad < 0 || ns.Pad >= NumPads {
				return nil, rangeErrorf("pad slot %d", ns.Pad)
			}
			switch {
			case ns.Melodic != nil:
				n.content = ns.Melodic.clone()
			case ns.Drum != nil:
				n.content = ns.Drum.clone()
			case ns.Control != nil:
				n.content = ns.Control.clone()
			default:
				return nil, errors.Wrapf(ErrInvalidRange, "pad %q has no content", ns.ID)
			}
			if len(ns.Children) > 0 {
				return nil, errors.Wrapf(ErrHierarchy, "pad %q cannot contain references", ns.ID)
			}
		}
		store.nodes[ns.ID] = n
		if n := idSeq(ns.ID); n > store.seq {
			store.seq = n
		}
	}
	// Second pass: wire children through the rank check
	for _, ns := range nodes {
		container := store.nodes[ns.ID]
		if container.Kind == NodePad {
			continue
		}
		for _, ref := range ns.Children {
			if err := store.checkInsertLocked(container.Kind, ref); err != nil {
				return nil, err
			}
			container.Children = append(container.Children, ref)
			store.refs[ref]++
		}
	}
	return store, nil
}

func buildTracks(snaps []TrackSnapshot, store *Store) ([]*Track, error) {
	seen := make(map[string]bool, len(snaps))
	tracks := make([]*Track, 0, len(snaps))
	for _, ts := range snaps {
		if seen[ts.ID] {
			return nil, errors.Wrapf(ErrInvalidRange, "duplicate track id %q", ts.ID)
		}
		seen[ts.ID] = true

		kind, err := parseTrackKind(ts.Kind)
		if err != nil {
			return nil, err
		}
		phase, err := parsePhase(ts.Phase)
		if err != nil {
			return nil, err
		}
		if ts.Channel > 16 {
			return nil, rangeErrorf("channel %d", ts.Channel)
		}
		if !ValidStepCount(kind, ts.StepCount) {
			return nil, rangeErrorf("step count %d for %s track", ts.StepCount, kind)
		}
		if ts.Velocity < 1 || ts.Velocity > 127 {
			return nil, rangeErrorf("velocity %d", ts.Velocity)
		}
		if ts.GateRatio < 0.05 || ts.GateRatio > 1.0 {
			return nil, rangeErrorf("gate ratio %.2f", ts.GateRatio)
		}
		if ts.Controller > 119 {
			return nil, rangeErrorf("controller %d", ts.Controller)
		}
		if ts.ActivePad < 0 || ts.ActivePad >= NumPads {
			return nil, rangeErrorf("active pad %d", ts.ActivePad)
		}
		if ts.QueuedPad < -1 || ts.QueuedPad >= NumPads {
			return nil, rangeErrorf("queued pad %d", ts.QueuedPad)
		}
		for _, padID := range ts.Pads {
			node, ok := store.nodes[padID]
			if !ok {
				return nil, errors.Wrapf(ErrNotFound, "pad %q", padID)
			}
			if node.Kind != NodePad {
				return nil, errors.Wrapf(ErrHierarchy, "track pad %q is a %s", padID, node.Kind)
			}
		}
		loop := NewPadLoop()
		loop.Repeat = ts.Loop.Repeat
		for _, ref := range ts.Loop.Root {
			if _, ok := store.nodes[ref]; !ok {
				return nil, errors.Wrapf(ErrNotFound, "loop ref %q", ref)
			}
		}
		loop.Root = append([]string(nil), ts.Loop.Root...)

		tracks = append(tracks, &Track{
			ID:         ts.ID,
			Name:       ts.Name,
			Kind:       kind,
			Channel:    ts.Channel,
			Controller: ts.Controller,
			StepCount:  ts.StepCount,
			Velocity:   ts.Velocity,
			GateRatio:  ts.GateRatio,
			Muted:      ts.Muted,
			Pads:       ts.Pads,
			ActivePad:  ts.ActivePad,
			QueuedPad:  ts.QueuedPad,
			Phase:      phase,
			Loop:       loop,
		})
	}
	return tracks, nil
}

func parseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "pad":
		return NodePad, nil
	case "group":
		return NodeGroup, nil
	case "super-group":
		return NodeSuperGroup, nil
	}
	return 0, errors.Wrapf(ErrInvalidRange, "node kind %q", s)
}

func parseTrackKind(s string) (TrackKind, error) {
	switch s {
	case "melodic":
		return KindMelodic, nil
	case "drum":
		return KindDrum, nil
	case "control":
		return KindControl, nil
	}
	return 0, errors.Wrapf(ErrInvalidRange, "track kind %q", s)
}

func parsePhase(s string) (Phase, error) {
	switch s {
	case "stopped":
		return Stopped, nil
	case "running":
		return Running, nil
	case "queued-start":
		return QueuedStart, nil
	case "queued-stop":
		return QueuedStop, nil
	}
	return 0, errors.Wrapf(ErrInvalidRange, "phase %q", s)
}

// idSeq extracts the numeric suffix of generated ids so restored stores
// keep allocating fresh identifiers.
func idSeq(id string) int {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0
	}
	return n
}
