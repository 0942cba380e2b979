package sequencer

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/thomassresearch/orchestron-sub004/debug"
	"github.com/thomassresearch/orchestron-sub004/midi"
)

// Scheduler tuning. A tick that cannot be serviced in time is dropped, not
// queued, so a stalled emission pass never accumulates backlog.
const (
	schedulerSleep = time.Millisecond
	spinThreshold  = 800 * time.Microsecond
	minGate        = 5 * time.Millisecond
)

// gatedOff is a scheduled note release
type gatedOff struct {
	at      time.Time
	trackID string
	channel uint8
	note    uint8
}

type offHeap []gatedOff

func (h offHeap) Len() int           { return len(h) }
func (h offHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h offHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *offHeap) Push(x any)        { *h = append(*h, x.(gatedOff)) }
func (h *offHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// trackRuntime is per-track playback state owned by the engine
type trackRuntime struct {
	held          int            // melodic note sustained by a hold tie, -1 none
	lastCC        int            // last emitted controller value, -1 none
	active        map[uint8]bool // sounding notes, for stop-time flush
	warnedUnbound bool
}

func newTrackRuntime() *trackRuntime {
	return &trackRuntime{held: -1, lastCC: -1, active: make(map[uint8]bool)}
}

// Engine drives the clock, scans all tracks once per tick and applies
// queued transitions at boundaries. Mutation commands take the engine mutex,
// so a command applies entirely before or after a tick's emission pass.
type Engine struct {
	mu sync.Mutex

	store  *Store
	clock  *Clock
	out    midi.Dispatcher
	tracks []*Track
	byID   map[string]*Track
	owner  map[string]string // pad id -> track id

	rt      map[string]*trackRuntime
	offs    offHeap
	pending map[string]Content // active-pad edits staged for the next boundary

	session  bool
	playing  bool
	stopChan chan struct{}
	seq      int

	dispatchErrs []error

	// Notify the UI of updates (non-blocking, coalesced)
	UpdateChan chan struct{}
}

// NewEngine creates an engine over a store and a dispatch boundary
func NewEngine(store *Store, out midi.Dispatcher) (*Engine, error) {
	clock, err := NewClock(120)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = midi.Discard
	}
	return &Engine{
		store:      store,
		clock:      clock,
		out:        out,
		byID:       make(map[string]*Track),
		owner:      make(map[string]string),
		rt:         make(map[string]*trackRuntime),
		pending:    make(map[string]Content),
		UpdateChan: make(chan struct{}, 1),
	}, nil
}

// Store exposes the shared pattern store
func (e *Engine) Store() *Store { return e.store }

// AddTrack creates a track with eight pads in the pattern store. channel 0
// leaves the track unbound; its emission is skipped until a channel is set.
func (e *Engine) AddTrack(name string, kind TrackKind, channel uint8, stepCount int) (*Track, error) {
	if channel > 16 {
		return nil, rangeErrorf("channel %d", channel)
	}
	if !ValidStepCount(kind, stepCount) {
		return nil, rangeErrorf("step count %d for %s track", stepCount, kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	t := &Track{
		ID:        fmt.Sprintf("track-%d", e.seq),
		Name:      name,
		Kind:      kind,
		Channel:   channel,
		StepCount: stepCount,
		Velocity:  100,
		GateRatio: 0.8,
		QueuedPad: -1,
		Loop:      NewPadLoop(),
	}
	if kind == KindControl {
		t.Controller = 1
	}

	for i := 0; i < NumPads; i++ {
		var content Content
		switch kind {
		case KindDrum:
			content = NewDrumContent(8, stepCount)
		case KindControl:
			content = NewControlContent(t.Controller, 16)
		default:
			content = NewMelodicContent(stepCount)
		}
		padName := fmt.Sprintf("%s P%d", name, i+1)
		id, err := e.store.CreatePad(padName, i, content)
		if err != nil {
			return nil, err
		}
		t.Pads[i] = id
		e.owner[id] = t.ID
	}

	e.tracks = append(e.tracks, t)
	e.byID[t.ID] = t
	e.rt[t.ID] = newTrackRuntime()
	return t, nil
}

// Tracks returns the track list (engine order)
func (e *Engine) Tracks() []*Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Track(nil), e.tracks...)
}

// Session lifecycle

// SessionStarted marks the engine session active; tracks may run
func (e *Engine) SessionStarted() {
	e.mu.Lock()
	e.session = true
	e.mu.Unlock()
	e.notify()
}

// SessionEnded stops everything; tracks may not run without a session
func (e *Engine) SessionEnded() {
	e.Stop()
	e.mu.Lock()
	e.session = false
	for _, t := range e.tracks {
		t.Phase = Stopped
	}
	e.mu.Unlock()
	e.notify()
}

// Transport

// Play starts the timing loop. Fails with ErrNoSession when no engine
// session is active.
func (e *Engine) Play() error {
	e.mu.Lock()
	if !e.session {
		e.mu.Unlock()
		return ErrNoSession
	}
	if e.playing {
		e.mu.Unlock()
		return nil
	}
	e.playing = true
	e.stopChan = make(chan struct{})
	e.mu.Unlock()

	go e.run()
	e.notify()
	return nil
}

// Stop halts the timing loop, releases every sounding note and rewinds the
// transport step.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	close(e.stopChan)
	e.flushAllOffsLocked()
	e.allNotesOffLocked()
	// Nothing is sounding anymore, so staged edits land now. Leaving them
	// staged would replay them over edits made while stopped.
	for padID, c := range e.pending {
		e.store.UpdateContent(padID, c)
		delete(e.pending, padID)
	}
	e.clock.Reset()
	e.mu.Unlock()
	e.notify()
}

// Playing reports whether the transport is advancing
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// SetBPM changes the tempo, effective on the next tick
func (e *Engine) SetBPM(bpm int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.SetBPM(bpm)
}

// Track commands

// StartTrack requests a track start: immediate when the transport is idle,
// queued to the next aligned boundary while it runs.
func (e *Engine) StartTrack(trackID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.session {
		return ErrNoSession
	}
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.RequestStart(e.playing)
	return nil
}

// StopTrack requests a track stop; held notes are released when the stop
// applies so nothing hangs.
func (e *Engine) StopTrack(trackID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	wasRunning := t.Phase.IsRunning()
	t.RequestStop(e.playing)
	if wasRunning && t.Phase == Stopped {
		// Applied immediately (transport idle)
		e.flushTrackLocked(t)
	}
	return nil
}

// SelectPad requests a pad switch on a track
func (e *Engine) SelectPad(trackID string, pad int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.session {
		return ErrNoSession
	}
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	return t.SelectPad(pad)
}

// SetChannel binds a track to a MIDI channel (1..16)
func (e *Engine) SetChannel(trackID string, channel uint8) error {
	if channel < 1 || channel > 16 {
		return rangeErrorf("channel %d", channel)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.Channel = channel
	if rt := e.rt[trackID]; rt != nil {
		rt.warnedUnbound = false
	}
	return nil
}

// SetVelocity sets the melodic note velocity (1..127)
func (e *Engine) SetVelocity(trackID string, velocity uint8) error {
	if velocity < 1 || velocity > 127 {
		return rangeErrorf("velocity %d", velocity)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.Velocity = velocity
	return nil
}

// SetGateRatio sets the fraction of a step a non-held note sounds
func (e *Engine) SetGateRatio(trackID string, ratio float64) error {
	if ratio < 0.05 || ratio > 1.0 {
		return rangeErrorf("gate ratio %v", ratio)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.GateRatio = ratio
	return nil
}

// SetController sets the CC number a control track emits on (0..119)
func (e *Engine) SetController(trackID string, controller uint8) error {
	if controller > 119 {
		return rangeErrorf("controller %d", controller)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.Controller = controller
	return nil
}

// SetMuted mutes or unmutes a track; a muted track keeps running but its
// events are discarded before dispatch.
func (e *Engine) SetMuted(trackID string, muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	if muted && !t.Muted {
		e.flushTrackLocked(t)
	}
	t.Muted = muted
	return nil
}

// Pattern commands

// UpdatePadContent edits a pad's content. Edits to the pad a running track
// is currently sounding are staged and applied at that track's next local
// boundary; everything else applies immediately.
func (e *Engine) UpdatePadContent(padID string, c Content) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	trackID, owned := e.owner[padID]
	if owned && e.playing {
		if t := e.byID[trackID]; t != nil && t.Phase.IsRunning() && t.ActiveLeaf(e.store) == padID {
			// Validate against the current content before staging
			current, err := e.store.Content(padID)
			if err != nil {
				return err
			}
			if c == nil || current.Kind() != c.Kind() {
				return errors.Wrapf(ErrInvalidRange, "pad %q content kind mismatch", padID)
			}
			e.pending[padID] = c.clone()
			return nil
		}
	}
	return e.store.UpdateContent(padID, c)
}

// SetLoopSequence replaces a track's pad-loop root sequence. Every id must
// resolve in the store.
func (e *Engine) SetLoopSequence(trackID string, refs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	for _, id := range refs {
		if _, err := e.store.Node(id); err != nil {
			return err
		}
	}
	t.Loop.Root = append([]string(nil), refs...)
	t.Loop.Reset()
	return nil
}

// SetLoopRepeat switches a track's loop between wrap and hold-on-last
func (e *Engine) SetLoopRepeat(trackID string, repeat bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "track %q", trackID)
	}
	t.Loop.Repeat = repeat
	return nil
}

// DeleteNode removes a pattern node, rejecting deletion while any container
// or any track's loop sequence still references it.
func (e *Engine) DeleteNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tracks {
		for _, ref := range t.Loop.Root {
			if ref == id {
				return errors.Wrapf(ErrStillReferenced, "node %q is in track %q loop", id, t.ID)
			}
		}
		for _, pad := range t.Pads {
			if pad == id {
				return errors.Wrapf(ErrStillReferenced, "node %q is a track pad", id)
			}
		}
	}
	return e.store.Delete(id)
}

// IsPlayingNode reports whether a pattern node is on a track's current play
// path (leaf pad, enclosing group or super-group, or the manual active pad).
func (e *Engine) IsPlayingNode(trackID, nodeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[trackID]
	if !ok || !t.Phase.IsRunning() {
		return false
	}
	if len(t.Loop.Root) > 0 {
		return t.Loop.IsPlaying(e.store, nodeID)
	}
	return t.Pads[t.ActivePad] == nodeID
}

// Harmony resolves the shared theory of the currently running melodic
// tracks' active pads (pull model, computed on demand).
func (e *Engine) Harmony() HarmonyResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ResolveHarmony(e.activeTheoriesLocked())
}

func (e *Engine) activeTheoriesLocked() []TrackTheory {
	var active []TrackTheory
	for _, t := range e.tracks {
		if t.Kind != KindMelodic || !t.Phase.IsRunning() {
			continue
		}
		content, err := e.store.Content(t.ActiveLeaf(e.store))
		if err != nil {
			continue
		}
		if mc, ok := content.(*MelodicContent); ok {
			active = append(active, TrackTheory{TrackID: t.ID, Theory: mc.Theory})
		}
	}
	return active
}

// DrainErrors returns and clears collected dispatch failures
func (e *Engine) DrainErrors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := e.dispatchErrs
	e.dispatchErrs = nil
	return errs
}

// Timing loop

// run services the clock until Stop. Timing follows absolute step deadlines;
// when emission stalls past two intervals the deadline snaps forward and the
// missed ticks are dropped.
func (e *Engine) run() {
	next := time.Now().Add(10 * time.Millisecond)

	for {
		select {
		case <-e.stopChan:
			return
		default:
		}

		now := time.Now()
		e.flushDueOffs(now)

		e.mu.Lock()
		if !e.playing {
			e.mu.Unlock()
			return
		}
		interval := e.clock.Interval()
		e.mu.Unlock()

		wait := next.Sub(now)
		if wait > spinThreshold {
			time.Sleep(schedulerSleep)
			continue
		}
		if wait > 0 {
			continue
		}

		e.performStep(next)
		next = next.Add(interval)

		if next.Before(now.Add(-2 * interval)) {
			debug.Log("engine", "scheduler stalled, dropping ticks")
			next = now.Add(interval)
		}
	}
}

// performStep emits for the current step across all tracks, then advances
// the clock and applies boundary transitions. Runs entirely under the
// engine mutex so no mutation command tears a pass.
func (e *Engine) performStep(stepStart time.Time) {
	e.mu.Lock()
	if !e.playing {
		// Stop can land between the loop's select and this pass. Emitting
		// here would schedule note-offs nothing will ever drain.
		e.mu.Unlock()
		return
	}

	step := e.clock.Step()
	abs := e.clock.TotalStep()
	interval := e.clock.Interval()

	for _, t := range e.tracks {
		if !t.Phase.IsRunning() {
			continue
		}
		rt := e.rt[t.ID]
		if t.Channel < 1 || t.Channel > 16 {
			// Skip emission, but say so once instead of failing the start
			if rt != nil && !rt.warnedUnbound {
				rt.warnedUnbound = true
				if len(e.dispatchErrs) < 64 {
					e.dispatchErrs = append(e.dispatchErrs, errors.Wrapf(ErrUnboundTrack, "track %s", t.ID))
				}
			}
			continue
		}
		local := t.LocalStep(step)
		content, err := e.store.Content(t.ActiveLeaf(e.store))
		if err != nil {
			continue
		}

		switch c := content.(type) {
		case *MelodicContent:
			e.stepMelodicLocked(t, rt, c, local, stepStart, interval)
		case *DrumContent:
			for _, ev := range drumEvents(t, drumAt(c, local)) {
				e.sendLocked(t, ev)
			}
		case *ControlContent:
			v := controlAt(c, abs)
			if rt.lastCC != int(v) {
				rt.lastCC = int(v)
				e.sendLocked(t, midi.Event{
					Type:       midi.ControlChange,
					Channel:    t.Channel,
					Controller: t.Controller,
					Value:      v,
				})
			}
		}
	}

	e.applyBoundariesLocked(step + 1)
	e.clock.Advance()
	e.refreshTransportLocked()
	debug.LogEvery(64, "engine", "step %d cycle %d", step, e.clock.Cycle())

	e.mu.Unlock()
	e.notify()
}

func (e *Engine) stepMelodicLocked(t *Track, rt *trackRuntime, c *MelodicContent, local int, stepStart time.Time, interval time.Duration) {
	ms := melodicAt(c, local, rt.held)
	if ms.off >= 0 {
		e.sendLocked(t, midi.Event{Type: midi.NoteOff, Channel: t.Channel, Note: uint8(ms.off)})
		delete(rt.active, uint8(ms.off))
		if rt.held == ms.off {
			rt.held = -1
		}
	}
	if ms.on < 0 {
		return
	}
	note := uint8(ms.on)
	e.sendLocked(t, midi.Event{Type: midi.NoteOn, Channel: t.Channel, Note: note, Velocity: t.Velocity})
	rt.active[note] = true
	if ms.hold {
		rt.held = ms.on
		return
	}
	rt.held = -1
	gate := time.Duration(float64(interval) * t.GateRatio)
	if gate < minGate {
		gate = minGate
	}
	heap.Push(&e.offs, gatedOff{
		at:      stepStart.Add(gate),
		trackID: t.ID,
		channel: t.Channel,
		note:    note,
	})
}

// applyBoundariesLocked handles every track whose local cycle wraps at
// nextStep: queued start/stop, queued pad swap, staged content, loop
// advance. nextStep is reduced into the transport cycle first, so the wrap
// (step 0) counts as a boundary for every step count. A queued track longer
// than the current cycle therefore arms at the wrap rather than waiting on
// a step the clock can never reach; the cycle then stretches to cover it.
func (e *Engine) applyBoundariesLocked(nextStep int) {
	nextStep %= e.clock.StepsPerCycle()
	for _, t := range e.tracks {
		if nextStep%t.StepCount != 0 {
			continue
		}

		if t.Phase.IsRunning() && len(t.Loop.Root) > 0 {
			t.Loop.Advance(e.store)
		}

		canStart := e.canStartLocked(t, nextStep)
		_, stopped := t.applyBoundary(canStart)
		if stopped {
			e.flushTrackLocked(t)
			debug.Log("engine", "track %s stopped at boundary", t.ID)
		}

		// Staged active-pad edits become visible from the next traversal
		for _, padID := range t.Pads {
			if c, ok := e.pending[padID]; ok {
				if err := e.store.UpdateContent(padID, c); err == nil {
					delete(e.pending, padID)
				}
			}
		}
	}
}

// canStartLocked aligns newly armed tracks to boundaries shared with every
// running track. With nothing running the track arms now.
func (e *Engine) canStartLocked(t *Track, nextStep int) bool {
	for _, other := range e.tracks {
		if other == t || !other.Phase.IsRunning() {
			continue
		}
		if nextStep%other.StepCount != 0 {
			return false
		}
	}
	return true
}

// refreshTransportLocked re-derives the transport cycle length from the
// running tracks' step counts.
func (e *Engine) refreshTransportLocked() {
	var counts []int
	for _, t := range e.tracks {
		if t.Phase.IsRunning() {
			counts = append(counts, t.StepCount)
		}
	}
	e.clock.SetStepsPerCycle(transportStepCount(counts))
}

// sendLocked dispatches one event, discarding it for muted tracks and
// collecting failures without halting the clock.
func (e *Engine) sendLocked(t *Track, ev midi.Event) {
	if t.Muted {
		return
	}
	if err := e.out.Send(ev); err != nil {
		wrapped := errors.Wrapf(ErrDispatch, "track %s %s: %v", t.ID, ev.Type, err)
		if len(e.dispatchErrs) < 64 {
			e.dispatchErrs = append(e.dispatchErrs, wrapped)
		}
		debug.Log("dispatch", "track=%s type=%s err=%v", t.ID, ev.Type, err)
	}
}

// flushDueOffs releases gated notes whose time has come
func (e *Engine) flushDueOffs(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.offs) > 0 && !e.offs[0].at.After(now) {
		off := heap.Pop(&e.offs).(gatedOff)
		t := e.byID[off.trackID]
		if t == nil {
			continue
		}
		e.sendLocked(t, midi.Event{Type: midi.NoteOff, Channel: off.channel, Note: off.note})
		if rt := e.rt[off.trackID]; rt != nil {
			delete(rt.active, off.note)
		}
	}
}

// flushTrackLocked releases everything a track is sounding and drops its
// scheduled offs, guaranteeing no emitter output after a stop.
func (e *Engine) flushTrackLocked(t *Track) {
	rt := e.rt[t.ID]
	if rt == nil {
		return
	}
	for note := range rt.active {
		e.sendLocked(t, midi.Event{Type: midi.NoteOff, Channel: t.Channel, Note: note})
		delete(rt.active, note)
	}
	rt.held = -1
	rt.lastCC = -1

	kept := e.offs[:0]
	for _, off := range e.offs {
		if off.trackID != t.ID {
			kept = append(kept, off)
		}
	}
	e.offs = kept
	heap.Init(&e.offs)
}

func (e *Engine) flushAllOffsLocked() {
	for _, t := range e.tracks {
		e.flushTrackLocked(t)
	}
	e.offs = e.offs[:0]
}

// allNotesOffLocked is the system-wide safety: CC 123 (all notes off) and
// CC 120 (all sound off) on every channel in use.
func (e *Engine) allNotesOffLocked() {
	seen := make(map[uint8]bool)
	for _, t := range e.tracks {
		if t.Channel < 1 || t.Channel > 16 || seen[t.Channel] {
			continue
		}
		seen[t.Channel] = true
		e.sendLocked(t, midi.Event{Type: midi.ControlChange, Channel: t.Channel, Controller: 123, Value: 0})
		e.sendLocked(t, midi.Event{Type: midi.ControlChange, Channel: t.Channel, Controller: 120, Value: 0})
	}
}

// AllNotesOff flushes every sounding note and silences every channel in use
func (e *Engine) AllNotesOff() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushAllOffsLocked()
	e.allNotesOffLocked()
}

func (e *Engine) notify() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

// Read-only live state for the UI

// LoopEntryStatus is one root loop sequence entry as shown by the UI
type LoopEntryStatus struct {
	ID      string
	IsPad   bool
	Playing bool
}

// TrackStatus is a point-in-time view of one track
type TrackStatus struct {
	ID        string
	Name      string
	Kind      TrackKind
	Channel   uint8
	Phase     Phase
	Muted     bool
	ActivePad int
	QueuedPad int
	LeafPad   string // resolved currently playing pad id
	LoopHeld  bool   // Repeat: Off loop finished, holding last pad
	Loop      []LoopEntryStatus
	HeldNotes []uint8
}

// Status is a point-in-time view of the whole engine
type Status struct {
	SessionActive bool
	Playing       bool
	BPM           int
	Step          int
	Cycle         int
	StepsPerCycle int
	Tracks        []TrackStatus
}

// Status returns the live state snapshot polled by the UI
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		SessionActive: e.session,
		Playing:       e.playing,
		BPM:           e.clock.BPM(),
		Step:          e.clock.Step(),
		Cycle:         e.clock.Cycle(),
		StepsPerCycle: e.clock.StepsPerCycle(),
	}
	for _, t := range e.tracks {
		ts := TrackStatus{
			ID:        t.ID,
			Name:      t.Name,
			Kind:      t.Kind,
			Channel:   t.Channel,
			Phase:     t.Phase,
			Muted:     t.Muted,
			ActivePad: t.ActivePad,
			QueuedPad: t.QueuedPad,
			LeafPad:   t.ActiveLeaf(e.store),
			LoopHeld:  t.Loop.Held(),
		}
		if len(t.Loop.Root) > 0 {
			idx := t.Loop.PlayingIndex(e.store)
			for i, id := range t.Loop.Root {
				entry := LoopEntryStatus{ID: id, Playing: t.Phase.IsRunning() && i == idx}
				if node, err := e.store.Node(id); err == nil {
					entry.IsPad = node.Kind == NodePad
				}
				ts.Loop = append(ts.Loop, entry)
			}
		}
		if rt := e.rt[t.ID]; rt != nil {
			for note := range rt.active {
				ts.HeldNotes = append(ts.HeldNotes, note)
			}
		}
		s.Tracks = append(s.Tracks, ts)
	}
	return s
}
