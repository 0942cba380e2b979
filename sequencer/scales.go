package sequencer

// ScaleType selects an interval table
type ScaleType int

const (
	ScaleChromatic ScaleType = iota
	ScaleMajor
	ScaleMinor
	ScalePentatonic
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScaleLocrian
	ScaleHarmonicMinor
	ScaleMelodicMinor
	ScaleBlues
	ScaleWholeTone
)

// Scale definitions - intervals from root (semitones)
var scales = map[ScaleType][]int{
	ScaleChromatic:     {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	ScaleMajor:         {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:         {0, 2, 3, 5, 7, 8, 10},
	ScalePentatonic:    {0, 2, 4, 7, 9},
	ScaleDorian:        {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:      {0, 1, 3, 5, 7, 8, 10},
	ScaleLydian:        {0, 2, 4, 6, 7, 9, 11},
	ScaleMixolydian:    {0, 2, 4, 5, 7, 9, 10},
	ScaleLocrian:       {0, 1, 3, 5, 6, 8, 10},
	ScaleHarmonicMinor: {0, 2, 3, 5, 7, 8, 11},
	ScaleMelodicMinor:  {0, 2, 3, 5, 7, 9, 11},
	ScaleBlues:         {0, 3, 5, 6, 7, 10},
	ScaleWholeTone:     {0, 2, 4, 6, 8, 10},
}

var scaleNames = map[ScaleType]string{
	ScaleChromatic:     "Chromatic",
	ScaleMajor:         "Major",
	ScaleMinor:         "Minor",
	ScalePentatonic:    "Pentatonic",
	ScaleDorian:        "Dorian",
	ScalePhrygian:      "Phrygian",
	ScaleLydian:        "Lydian",
	ScaleMixolydian:    "Mixolydian",
	ScaleLocrian:       "Locrian",
	ScaleHarmonicMinor: "Harm Min",
	ScaleMelodicMinor:  "Mel Min",
	ScaleBlues:         "Blues",
	ScaleWholeTone:     "Whole Tone",
}

func (s ScaleType) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return "Unknown"
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the name of a pitch class 0..11
func NoteName(pitchClass int) string {
	return noteNames[((pitchClass%12)+12)%12]
}

// Theory is a pad's harmonic identity: scale root, scale type and mode.
// Mode rotates the interval set (Major mode 1 = Dorian, and so on).
type Theory struct {
	Root  int       `json:"root"` // pitch class 0..11
	Scale ScaleType `json:"scale"`
	Mode  int       `json:"mode"` // rotation 0..len(scale)-1
}

// DefaultTheory is used when no melodic track is running
var DefaultTheory = Theory{Root: 0, Scale: ScaleMajor}

func (t Theory) String() string {
	return NoteName(t.Root) + " " + t.Scale.String()
}

// intervals returns the theory's interval set with the mode rotation applied,
// sorted ascending starting from 0.
func (t Theory) intervals() []int {
	base := scales[t.Scale]
	if len(base) == 0 {
		base = scales[ScaleMajor]
	}
	n := len(base)
	mode := ((t.Mode % n) + n) % n
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = ((base[(i+mode)%n] - base[mode]) + 12) % 12
	}
	return out
}

// PitchClasses returns the set of absolute pitch classes in the theory
func (t Theory) PitchClasses() [12]bool {
	var set [12]bool
	for _, iv := range t.intervals() {
		set[(t.Root+iv)%12] = true
	}
	return set
}

// DegreeOf returns the 1-based scale degree of an absolute pitch class, or
// false if the pitch class is not diatonic to the theory.
func (t Theory) DegreeOf(pitchClass int) (int, bool) {
	pc := ((pitchClass % 12) + 12) % 12
	for i, iv := range t.intervals() {
		if (t.Root+iv)%12 == pc {
			return i + 1, true
		}
	}
	return 0, false
}

// Contains reports whether an absolute pitch class is diatonic to the theory
func (t Theory) Contains(pitchClass int) bool {
	_, ok := t.DegreeOf(pitchClass)
	return ok
}
