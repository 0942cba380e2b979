package sequencer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func buildSnapshotEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}

	lead, err := e.AddTrack("lead", KindMelodic, 1, 16)
	if err != nil {
		t.Fatal(err)
	}
	drums, err := e.AddTrack("drums", KindDrum, 10, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddTrack("mod", KindControl, 1, 16); err != nil {
		t.Fatal(err)
	}

	mc := NewMelodicContent(16)
	mc.Cells[0] = StepCell{PitchClass: 7, Octave: 3, Hold: true}
	mc.Theory = Theory{Root: 7, Scale: ScaleMinor, Mode: 1}
	if err := e.UpdatePadContent(lead.Pads[0], mc); err != nil {
		t.Fatal(err)
	}

	dc := NewDrumContent(8, 8)
	dc.SetHit(0, 0, 100)
	dc.SetHit(2, 4, 80)
	if err := e.UpdatePadContent(drums.Pads[1], dc); err != nil {
		t.Fatal(err)
	}

	grp, err := e.Store().CreateGroup("verse", lead.Pads[0], lead.Pads[1])
	if err != nil {
		t.Fatal(err)
	}
	sup, err := e.Store().CreateSuperGroup("song", grp, lead.Pads[2])
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetLoopSequence(lead.ID, []string{sup, lead.Pads[3]}); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLoopRepeat(lead.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SetVelocity(lead.ID, 90); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMuted(drums.ID, true); err != nil {
		t.Fatal(err)
	}
	if err := e.SetBPM(140); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := buildSnapshotEngine(t)
	snap := src.Snapshot()

	dst, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(snap); err != nil {
		t.Fatal(err)
	}

	again := dst.Snapshot()
	if !reflect.DeepEqual(snap, again) {
		t.Errorf("round trip diverged:\n got %+v\nwant %+v", again, snap)
	}
}

func TestSnapshotSurvivesJSON(t *testing.T) {
	src := buildSnapshotEngine(t)
	snap := src.Snapshot()

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	dst, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(decoded); err != nil {
		t.Fatal(err)
	}
	if got := dst.Snapshot(); !reflect.DeepEqual(snap, got) {
		t.Errorf("JSON round trip diverged:\n got %+v\nwant %+v", got, snap)
	}
}

func TestRestoreKeepsAllocatingFreshIDs(t *testing.T) {
	src := buildSnapshotEngine(t)
	snap := src.Snapshot()

	dst, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(snap); err != nil {
		t.Fatal(err)
	}

	tr, err := dst.AddTrack("extra", KindMelodic, 1, 16)
	if err != nil {
		t.Fatal(err)
	}
	if _, dup := dst.byID[tr.ID]; !dup {
		t.Fatal("new track not registered")
	}
	for _, existing := range snap.Tracks {
		if existing.ID == tr.ID {
			t.Fatalf("restored engine reissued id %s", tr.ID)
		}
	}
}

func TestRestoreRejectsBadGraph(t *testing.T) {
	src := buildSnapshotEngine(t)
	snap := src.Snapshot()

	// Find a group node and make it reference itself
	corrupted := snap
	corrupted.Nodes = append([]NodeSnapshot(nil), snap.Nodes...)
	found := false
	for i, n := range corrupted.Nodes {
		if n.Kind == "group" {
			c := corrupted.Nodes[i]
			c.Children = append(append([]string(nil), c.Children...), c.ID)
			corrupted.Nodes[i] = c
			found = true
			break
		}
	}
	if !found {
		t.Fatal("fixture has no group")
	}

	dst, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(corrupted); !errors.Is(err, ErrHierarchy) {
		t.Errorf("self-referencing group: %v, want ErrHierarchy", err)
	}
	if dst.Store().Len() != 0 {
		t.Error("rejected restore must leave the engine untouched")
	}
}

func TestRestoreRejectsBadValues(t *testing.T) {
	src := buildSnapshotEngine(t)

	bad := src.Snapshot()
	bad.BPM = 1000
	dst, err := NewEngine(NewStore(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("bpm 1000: %v, want ErrInvalidRange", err)
	}

	bad = src.Snapshot()
	bad.Tracks[0].Phase = "sideways"
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("unknown phase: %v, want ErrInvalidRange", err)
	}

	bad = src.Snapshot()
	bad.Tracks[0].Pads[0] = "pad-404"
	if err := dst.Restore(bad); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing pad: %v, want ErrNotFound", err)
	}

	// Knob values go through the same ranges the live setters enforce
	bad = src.Snapshot()
	bad.Tracks[0].Velocity = 0
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("velocity 0: %v, want ErrInvalidRange", err)
	}

	bad = src.Snapshot()
	bad.Tracks[0].GateRatio = 0
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("gate ratio 0: %v, want ErrInvalidRange", err)
	}

	bad = src.Snapshot()
	bad.Tracks[0].GateRatio = 1.5
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("gate ratio 1.5: %v, want ErrInvalidRange", err)
	}

	bad = src.Snapshot()
	bad.Tracks[0].Controller = 125
	if err := dst.Restore(bad); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("controller 125: %v, want ErrInvalidRange", err)
	}
}
