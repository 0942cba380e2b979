package sequencer

// TrackKind selects the emitter family
type TrackKind int

const (
	KindMelodic TrackKind = iota
	KindDrum
	KindControl
)

func (k TrackKind) String() string {
	switch k {
	case KindMelodic:
		return "melodic"
	case KindDrum:
		return "drum"
	case KindControl:
		return "control"
	}
	return "unknown"
}

// PadKind returns the pad content variant for this track family
func (k TrackKind) PadKind() PadKind {
	switch k {
	case KindDrum:
		return PadDrum
	case KindControl:
		return PadControl
	default:
		return PadMelodic
	}
}

// Phase is the track run state. Queued phases are explicit so the transition
// table stays exhaustively matchable.
type Phase int

const (
	Stopped Phase = iota
	Running
	QueuedStart
	QueuedStop
)

func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case QueuedStart:
		return "queued-start"
	case QueuedStop:
		return "queued-stop"
	}
	return "unknown"
}

// IsRunning reports whether the track emits on the current step. A track in
// QueuedStop is still running until the boundary applies the stop.
func (p Phase) IsRunning() bool {
	return p == Running || p == QueuedStop
}

// NumPads is the number of pattern banks per track
const NumPads = 8

// Track is one sequencer lane. All fields are guarded by the engine mutex;
// tracks never talk to each other except through the clock and the harmony
// read of the running set.
type Track struct {
	ID         string
	Name       string
	Kind       TrackKind
	Channel    uint8 // 1..16, 0 = unbound (emission skipped)
	Controller uint8 // CC number, control tracks only
	StepCount  int   // local cycle length for this track family
	Velocity   uint8
	GateRatio  float64
	Muted      bool

	Pads      [NumPads]string // pattern store pad ids
	ActivePad int
	QueuedPad int // -1 when no switch is pending

	Phase Phase
	Loop  *PadLoop
}

// Valid step counts per track family
var familySteps = map[TrackKind][]int{
	KindMelodic: {16, 32},
	KindControl: {16, 32},
	KindDrum:    {4, 8, 16, 32},
}

// ValidStepCount reports whether a step count is allowed for the family
func ValidStepCount(kind TrackKind, steps int) bool {
	for _, n := range familySteps[kind] {
		if n == steps {
			return true
		}
	}
	return false
}

// RequestStart asks the track to run. While the transport is advancing the
// change is deferred to the next boundary; otherwise it applies immediately.
func (t *Track) RequestStart(transportRunning bool) {
	switch t.Phase {
	case Stopped:
		if transportRunning {
			t.Phase = QueuedStart
		} else {
			t.start()
		}
	case QueuedStop:
		// Cancel the pending stop
		t.Phase = Running
	}
}

// RequestStop asks the track to stop, deferred to the boundary while the
// transport is advancing.
func (t *Track) RequestStop(transportRunning bool) {
	switch t.Phase {
	case Running:
		if transportRunning {
			t.Phase = QueuedStop
		} else {
			t.Phase = Stopped
		}
	case QueuedStart:
		// Cancel the pending start
		t.Phase = Stopped
	}
}

func (t *Track) start() {
	t.Phase = Running
	if t.Loop != nil {
		t.Loop.Reset()
	}
}

// SelectPad requests a pad switch. Stopped tracks switch immediately;
// running tracks stage the pad and swap at the next boundary.
func (t *Track) SelectPad(pad int) error {
	if pad < 0 || pad >= NumPads {
		return rangeErrorf("pad %d", pad)
	}
	if t.Phase.IsRunning() {
		t.QueuedPad = pad
	} else {
		t.ActivePad = pad
		t.QueuedPad = -1
	}
	return nil
}

// applyBoundary applies queued transitions at the track's local cycle
// boundary. canStart gates queued starts on alignment with already-running
// tracks. Reports whether the run state flipped.
func (t *Track) applyBoundary(canStart bool) (started, stopped bool) {
	switch t.Phase {
	case QueuedStart:
		if canStart {
			t.start()
			started = true
		}
	case QueuedStop:
		t.Phase = Stopped
		stopped = true
	}

	if t.QueuedPad >= 0 && t.QueuedPad != t.ActivePad {
		t.ActivePad = t.QueuedPad
	}
	t.QueuedPad = -1
	return started, stopped
}

// LocalStep reduces a transport step to this track's cycle
func (t *Track) LocalStep(step int) int {
	if t.StepCount <= 0 {
		return 0
	}
	return step % t.StepCount
}

// ActiveLeaf resolves the pad whose content plays now: the pad-loop's
// current leaf when a loop sequence is set, else the manually active pad.
func (t *Track) ActiveLeaf(store *Store) string {
	if t.Loop != nil && len(t.Loop.Root) > 0 {
		if leaf, ok := t.Loop.Current(store); ok {
			return leaf.PadID
		}
	}
	return t.Pads[t.ActivePad]
}
