package sequencer

import "testing"

func TestTheoryPitchClasses(t *testing.T) {
	cMajor := Theory{Root: 0, Scale: ScaleMajor}
	want := map[int]bool{0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true}
	set := cMajor.PitchClasses()
	for pc := 0; pc < 12; pc++ {
		if set[pc] != want[pc] {
			t.Errorf("C major pc %d in scale = %v, want %v", pc, set[pc], want[pc])
		}
	}
}

func TestTheoryDegreeOf(t *testing.T) {
	gMajor := Theory{Root: 7, Scale: ScaleMajor}
	cases := map[int]int{7: 1, 9: 2, 11: 3, 0: 4, 2: 5, 4: 6, 6: 7}
	for pc, degree := range cases {
		got, ok := gMajor.DegreeOf(pc)
		if !ok || got != degree {
			t.Errorf("G major degree of %s = %d/%v, want %d", NoteName(pc), got, ok, degree)
		}
	}
	if _, ok := gMajor.DegreeOf(5); ok {
		t.Error("F is not diatonic to G major")
	}
}

func TestTheoryModeRotation(t *testing.T) {
	// Major rotated one degree yields the dorian interval set on the same root
	dorian := Theory{Root: 0, Scale: ScaleMajor, Mode: 1}
	want := map[int]bool{0: true, 2: true, 3: true, 5: true, 7: true, 9: true, 10: true}
	set := dorian.PitchClasses()
	for pc := 0; pc < 12; pc++ {
		if set[pc] != want[pc] {
			t.Errorf("mode 1 pc %d = %v, want %v", pc, set[pc], want[pc])
		}
	}
}

func TestResolveHarmonyEmptyFallsBack(t *testing.T) {
	result := ResolveHarmony(nil)
	if result.Mixed {
		t.Fatal("empty set should not be mixed")
	}
	if result.Theory != DefaultTheory {
		t.Errorf("theory = %v, want default", result.Theory)
	}
	if !result.PitchClasses[0].InScale || result.PitchClasses[1].InScale {
		t.Error("default C major highlighting is wrong")
	}
}

func TestResolveHarmonySingleTheory(t *testing.T) {
	th := Theory{Root: 7, Scale: ScaleMajor}
	result := ResolveHarmony([]TrackTheory{
		{TrackID: "track-1", Theory: th},
		{TrackID: "track-2", Theory: th},
	})
	if result.Mixed {
		t.Fatal("identical theories should resolve to a single theory")
	}
	if result.Theory != th {
		t.Errorf("theory = %v, want %v", result.Theory, th)
	}
	// Every diatonic pitch class carries a label per track
	if got := len(result.PitchClasses[7].Degrees); got != 2 {
		t.Errorf("G has %d degree labels, want 2", got)
	}
}

func TestResolveHarmonyMixedIntersection(t *testing.T) {
	result := ResolveHarmony([]TrackTheory{
		{TrackID: "track-1", Theory: Theory{Root: 0, Scale: ScaleMajor}},
		{TrackID: "track-2", Theory: Theory{Root: 7, Scale: ScaleMajor}},
	})
	if !result.Mixed {
		t.Fatal("differing theories should be mixed")
	}

	// C major and G major share C D E G A B; F and F# each belong to only one
	inScale := map[int]bool{0: true, 2: true, 4: true, 7: true, 9: true, 11: true}
	for pc := 0; pc < 12; pc++ {
		if result.PitchClasses[pc].InScale != inScale[pc] {
			t.Errorf("pc %s in scale = %v, want %v",
				NoteName(pc), result.PitchClasses[pc].InScale, inScale[pc])
		}
	}

	// C is degree 1 in C major and degree 4 in G major
	degrees := result.PitchClasses[0].Degrees
	if len(degrees) != 2 {
		t.Fatalf("C has %d labels, want 2", len(degrees))
	}
	byTrack := map[string]int{}
	for _, d := range degrees {
		byTrack[d.TrackID] = d.Degree
	}
	if byTrack["track-1"] != 1 || byTrack["track-2"] != 4 {
		t.Errorf("C degrees = %v, want track-1:1 track-2:4", byTrack)
	}

	// F is out of the intersection but still labeled by the theory holding it
	f := result.PitchClasses[5]
	if f.InScale {
		t.Error("F should be out of the intersection")
	}
	if len(f.Degrees) != 1 || f.Degrees[0].TrackID != "track-1" {
		t.Errorf("F labels = %v, want only track-1", f.Degrees)
	}
}
