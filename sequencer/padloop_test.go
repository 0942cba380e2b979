package sequencer

import "testing"

// loopFixture builds pads p1..p4, a group (p2 p3) and a super-group
// (group p4), so the flattened order of [p1, super] is p1 p2 p3 p4.
func loopFixture(t *testing.T) (*Store, []string, string, string) {
	t.Helper()
	s := NewStore()
	pads := makePads(t, s, 4)
	grp, err := s.CreateGroup("g", pads[1], pads[2])
	if err != nil {
		t.Fatal(err)
	}
	sup, err := s.CreateSuperGroup("s", grp, pads[3])
	if err != nil {
		t.Fatal(err)
	}
	return s, pads, grp, sup
}

func TestPadLoopFlattenOrder(t *testing.T) {
	s, pads, _, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	leaves := l.Flatten(s)
	want := []string{pads[0], pads[1], pads[2], pads[3]}
	if len(leaves) != len(want) {
		t.Fatalf("flattened to %d leaves, want %d", len(leaves), len(want))
	}
	for i, leaf := range leaves {
		if leaf.PadID != want[i] {
			t.Errorf("leaf %d = %s, want %s", i, leaf.PadID, want[i])
		}
	}
}

func TestPadLoopCurrentIsIdempotent(t *testing.T) {
	s, pads, _, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	first, ok := l.Current(s)
	if !ok {
		t.Fatal("expected a current leaf")
	}
	second, _ := l.Current(s)
	if first.PadID != second.PadID {
		t.Errorf("current changed without advance: %s then %s", first.PadID, second.PadID)
	}
}

func TestPadLoopAdvanceAndWrap(t *testing.T) {
	s, pads, _, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	order := []string{pads[0], pads[1], pads[2], pads[3], pads[0]}
	for i, want := range order {
		leaf, ok := l.Current(s)
		if !ok {
			t.Fatal("expected a current leaf")
		}
		if leaf.PadID != want {
			t.Errorf("position %d = %s, want %s", i, leaf.PadID, want)
		}
		l.Advance(s)
	}
}

func TestPadLoopRepeatOffHoldsLast(t *testing.T) {
	s, pads, _, _ := loopFixture(t)
	l := NewPadLoop()
	l.Repeat = false
	l.Root = []string{pads[0], pads[1]}

	l.Advance(s) // onto the last leaf
	l.Advance(s) // past the end
	if !l.Held() {
		t.Fatal("loop should be holding after running out")
	}
	leaf, _ := l.Current(s)
	if leaf.PadID != pads[1] {
		t.Errorf("holding %s, want last leaf %s", leaf.PadID, pads[1])
	}

	// Further advances stay put until a reset
	l.Advance(s)
	leaf, _ = l.Current(s)
	if leaf.PadID != pads[1] {
		t.Errorf("advance while held moved to %s", leaf.PadID)
	}

	l.Reset()
	if l.Held() {
		t.Error("reset must clear the hold")
	}
	leaf, _ = l.Current(s)
	if leaf.PadID != pads[0] {
		t.Errorf("after reset at %s, want %s", leaf.PadID, pads[0])
	}
}

func TestPadLoopEmptySequence(t *testing.T) {
	s := NewStore()
	l := NewPadLoop()
	if _, ok := l.Current(s); ok {
		t.Error("empty loop should have no current leaf")
	}
	l.Advance(s) // must not panic
	if l.PlayingIndex(s) != -1 {
		t.Errorf("playing index = %d, want -1", l.PlayingIndex(s))
	}
}

func TestPadLoopDanglingReferenceSkipped(t *testing.T) {
	s, pads, _, _ := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{"pad-404", pads[0]}

	leaves := l.Flatten(s)
	if len(leaves) != 1 || leaves[0].PadID != pads[0] {
		t.Errorf("leaves = %v, want just %s", leaves, pads[0])
	}
}

func TestPadLoopShrinkUnderCursor(t *testing.T) {
	s, pads, _, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	for i := 0; i < 3; i++ {
		l.Advance(s)
	}
	// Cursor sits at the fourth leaf; shrink the sequence under it
	l.Root = []string{pads[0]}
	leaf, ok := l.Current(s)
	if !ok || leaf.PadID != pads[0] {
		t.Errorf("after shrink current = %v ok=%v, want tail hold on %s", leaf.PadID, ok, pads[0])
	}
}

func TestPadLoopIsPlayingAtEveryLevel(t *testing.T) {
	s, pads, grp, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	l.Advance(s) // now on pads[1], inside grp inside sup

	for _, id := range []string{pads[1], grp, sup} {
		if !l.IsPlaying(s, id) {
			t.Errorf("%s should be on the play path", id)
		}
	}
	for _, id := range []string{pads[0], pads[3]} {
		if l.IsPlaying(s, id) {
			t.Errorf("%s should not be on the play path", id)
		}
	}
}

func TestPadLoopPlayingIndex(t *testing.T) {
	s, pads, _, sup := loopFixture(t)
	l := NewPadLoop()
	l.Root = []string{pads[0], sup}

	if got := l.PlayingIndex(s); got != 0 {
		t.Errorf("index at start = %d, want 0", got)
	}
	l.Advance(s)
	if got := l.PlayingIndex(s); got != 1 {
		t.Errorf("index inside super-group = %d, want 1", got)
	}
	l.Advance(s)
	l.Advance(s)
	if got := l.PlayingIndex(s); got != 1 {
		t.Errorf("index at last leaf = %d, want 1", got)
	}
}
