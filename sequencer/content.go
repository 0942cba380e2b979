package sequencer

// PadKind discriminates the three pad content variants
type PadKind int

const (
	PadMelodic PadKind = iota
	PadDrum
	PadControl
)

func (k PadKind) String() string {
	switch k {
	case PadMelodic:
		return "melodic"
	case PadDrum:
		return "drum"
	case PadControl:
		return "control"
	}
	return "unknown"
}

// Content is the variant pad payload stored in the pattern arena.
// Store reads hand out clones so no caller holds live content by value
// across a mutation.
type Content interface {
	Kind() PadKind
	clone() Content
}

// StepCell is one melodic step
type StepCell struct {
	Rest       bool `json:"rest"`
	PitchClass int  `json:"pitchClass"` // 0..11
	Octave     int  `json:"octave"`     // MIDI octave, C4 = octave 4
	Hold       bool `json:"hold"`       // suppress the implicit note-off
	InScale    bool `json:"inScale"`
}

// MelodicContent is an ordered sequence of step cells plus the pad's own
// harmonic identity (pads transpose independently).
type MelodicContent struct {
	Cells  []StepCell `json:"cells"`
	Theory Theory     `json:"theory"`
}

func (c *MelodicContent) Kind() PadKind { return PadMelodic }

func (c *MelodicContent) clone() Content {
	out := &MelodicContent{Theory: c.Theory}
	out.Cells = append([]StepCell(nil), c.Cells...)
	return out
}

// MIDINote resolves a cell to a MIDI note number, clamped to 0..127
func (c *StepCell) MIDINote() uint8 {
	n := (c.Octave+1)*12 + c.PitchClass
	if n < 0 {
		n = 0
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}

// NewMelodicContent creates an all-rest melodic pad
func NewMelodicContent(steps int) *MelodicContent {
	cells := make([]StepCell, steps)
	for i := range cells {
		cells[i] = StepCell{Rest: true, Octave: 4}
	}
	return &MelodicContent{Cells: cells, Theory: DefaultTheory}
}

// DrumRow is one drum sound: a MIDI key and per-step hit velocities
// (0 = inactive, 1..127 = active).
type DrumRow struct {
	Key  uint8   `json:"key"`
	Hits []uint8 `json:"hits"`
}

// DrumContent is an ordered list of rows forming the hit grid
type DrumContent struct {
	Rows []DrumRow `json:"rows"`
}

func (c *DrumContent) Kind() PadKind { return PadDrum }

func (c *DrumContent) clone() Content {
	out := &DrumContent{Rows: make([]DrumRow, len(c.Rows))}
	for i, row := range c.Rows {
		out.Rows[i] = DrumRow{Key: row.Key, Hits: append([]uint8(nil), row.Hits...)}
	}
	return out
}

// SetHit writes one grid cell; velocity 0 deactivates the hit
func (c *DrumContent) SetHit(row, step int, velocity uint8) error {
	if row < 0 || row >= len(c.Rows) {
		return rangeErrorf("drum row %d", row)
	}
	if step < 0 || step >= len(c.Rows[row].Hits) {
		return rangeErrorf("drum step %d", step)
	}
	if velocity > 127 {
		return rangeErrorf("velocity %d", velocity)
	}
	c.Rows[row].Hits[step] = velocity
	return nil
}

// Default GM drum keys for new drum pads (kick, snare, hats first)
var defaultDrumKeys = []uint8{36, 38, 42, 46, 41, 43, 45, 49}

// NewDrumContent creates an empty hit grid with GM key defaults
func NewDrumContent(rows, steps int) *DrumContent {
	c := &DrumContent{Rows: make([]DrumRow, rows)}
	for i := range c.Rows {
		key := uint8(36 + i)
		if i < len(defaultDrumKeys) {
			key = defaultDrumKeys[i]
		}
		c.Rows[i] = DrumRow{Key: key, Hits: make([]uint8, steps)}
	}
	return c
}

// CurvePoint is one controller curve keypoint. Position is normalized to the
// pad length; the points at 0 and 1 are fixed and cannot be removed.
type CurvePoint struct {
	Pos   float64 `json:"pos"`   // 0..1
	Value float64 `json:"value"` // 0..127
}

// Valid curve rates (effective pad length in samples)
var curveRates = []int{8, 16, 32, 64}

// ControlContent is a controller curve pad
type ControlContent struct {
	Controller uint8        `json:"controller"` // CC number 0..119
	Rate       int          `json:"rate"`       // 8/16/32/64
	Points     []CurvePoint `json:"points"`     // sorted by Pos, boundaries included
}

func (c *ControlContent) Kind() PadKind { return PadControl }

func (c *ControlContent) clone() Content {
	return &ControlContent{
		Controller: c.Controller,
		Rate:       c.Rate,
		Points:     append([]CurvePoint(nil), c.Points...),
	}
}

// NewControlContent creates a flat curve with the two fixed boundary points
func NewControlContent(controller uint8, rate int) *ControlContent {
	return &ControlContent{
		Controller: controller,
		Rate:       rate,
		Points: []CurvePoint{
			{Pos: 0, Value: 64},
			{Pos: 1, Value: 64},
		},
	}
}

// ValidRate reports whether a curve rate is one of 8/16/32/64
func ValidRate(rate int) bool {
	for _, r := range curveRates {
		if r == rate {
			return true
		}
	}
	return false
}

// InsertPoint adds an interior keypoint, keeping points sorted by position
func (c *ControlContent) InsertPoint(pos, value float64) error {
	if pos <= 0 || pos >= 1 {
		return rangeErrorf("curve position %v", pos)
	}
	if value < 0 || value > 127 {
		return rangeErrorf("curve value %v", value)
	}
	idx := len(c.Points)
	for i, p := range c.Points {
		if p.Pos > pos {
			idx = i
			break
		}
	}
	c.Points = append(c.Points, CurvePoint{})
	copy(c.Points[idx+1:], c.Points[idx:])
	c.Points[idx] = CurvePoint{Pos: pos, Value: value}
	return nil
}

// RemovePoint removes an interior keypoint. The boundary points are fixed.
func (c *ControlContent) RemovePoint(index int) error {
	if index <= 0 || index >= len(c.Points)-1 {
		return rangeErrorf("curve point %d is not removable", index)
	}
	c.Points = append(c.Points[:index], c.Points[index+1:]...)
	return nil
}

// MovePoint drags a keypoint. Boundary points may only change value.
func (c *ControlContent) MovePoint(index int, pos, value float64) error {
	if index < 0 || index >= len(c.Points) {
		return rangeErrorf("curve point %d", index)
	}
	if value < 0 || value > 127 {
		return rangeErrorf("curve value %v", value)
	}
	if index == 0 || index == len(c.Points)-1 {
		c.Points[index].Value = value
		return nil
	}
	lo, hi := c.Points[index-1].Pos, c.Points[index+1].Pos
	if pos <= lo || pos >= hi {
		return rangeErrorf("curve position %v", pos)
	}
	c.Points[index] = CurvePoint{Pos: pos, Value: value}
	return nil
}

// Sample evaluates the interpolated curve at a normalized position
func (c *ControlContent) Sample(pos float64) uint8 {
	return sampleCurve(c.Points, pos)
}
