package sequencer

// TrackTheory pairs a running melodic track with its active pad's theory
type TrackTheory struct {
	TrackID string
	Theory  Theory
}

// DegreeLabel is one scale-degree annotation for a pitch class. A pitch
// class carries one label per active theory that contains it.
type DegreeLabel struct {
	TrackID string
	Degree  int // 1-based
}

// PitchClassInfo describes one of the twelve absolute pitch classes in the
// resolved harmony.
type PitchClassInfo struct {
	InScale bool
	Degrees []DegreeLabel
}

// HarmonyResult is the shared or intersected theory used for manual-input
// key highlighting.
type HarmonyResult struct {
	Mixed        bool
	Theory       Theory // meaningful when !Mixed
	PitchClasses [12]PitchClassInfo
}

// ResolveHarmony computes the shared theory of the currently running
// melodic tracks. One distinct tuple (or none) yields that theory; differing
// tuples yield a mixed result where a pitch class is in scale only when it
// belongs to every active theory's diatonic set.
//
// Pull model: callers pass a snapshot of the running set; nothing is cached.
func ResolveHarmony(active []TrackTheory) HarmonyResult {
	if len(active) == 0 {
		return singleTheory(DefaultTheory, nil)
	}

	first := active[0].Theory
	mixed := false
	for _, tt := range active[1:] {
		if tt.Theory != first {
			mixed = true
			break
		}
	}
	if !mixed {
		return singleTheory(first, active)
	}

	var out HarmonyResult
	out.Mixed = true
	for pc := 0; pc < 12; pc++ {
		info := PitchClassInfo{InScale: true}
		for _, tt := range active {
			if degree, ok := tt.Theory.DegreeOf(pc); ok {
				info.Degrees = append(info.Degrees, DegreeLabel{TrackID: tt.TrackID, Degree: degree})
			} else {
				info.InScale = false
			}
		}
		out.PitchClasses[pc] = info
	}
	return out
}

func singleTheory(theory Theory, active []TrackTheory) HarmonyResult {
	out := HarmonyResult{Theory: theory}
	for pc := 0; pc < 12; pc++ {
		degree, ok := theory.DegreeOf(pc)
		if !ok {
			continue
		}
		info := PitchClassInfo{InScale: true}
		if len(active) == 0 {
			info.Degrees = []DegreeLabel{{Degree: degree}}
		} else {
			for _, tt := range active {
				info.Degrees = append(info.Degrees, DegreeLabel{TrackID: tt.TrackID, Degree: degree})
			}
		}
		out.PitchClasses[pc] = info
	}
	return out
}
