package sequencer

import "time"

// Clock is the single source of timing truth: a step counter inside the
// transport cycle plus a monotonic cycle count. Only the engine's timing
// loop advances it.
type Clock struct {
	bpm           int
	step          int
	cycle         int
	total         int
	stepsPerCycle int
}

const (
	MinBPM = 30
	MaxBPM = 300
)

// NewClock creates a clock with a 16-step transport cycle
func NewClock(bpm int) (*Clock, error) {
	c := &Clock{stepsPerCycle: 16}
	if err := c.SetBPM(bpm); err != nil {
		return nil, err
	}
	return c, nil
}

// SetBPM validates and sets the tempo; it takes effect on the next tick
// without resetting the step position.
func (c *Clock) SetBPM(bpm int) error {
	if bpm < MinBPM || bpm > MaxBPM {
		return rangeErrorf("bpm %d", bpm)
	}
	c.bpm = bpm
	return nil
}

func (c *Clock) BPM() int           { return c.bpm }
func (c *Clock) Step() int          { return c.step }
func (c *Clock) Cycle() int         { return c.cycle }
func (c *Clock) StepsPerCycle() int { return c.stepsPerCycle }

// TotalStep counts steps since the last reset, independent of the cycle
// length. Curve sampling uses it so that a curve rate longer than a track's
// cycle still traverses the whole curve.
func (c *Clock) TotalStep() int { return c.total }

// Interval is the wall-clock duration of one step (16th notes)
func (c *Clock) Interval() time.Duration {
	return time.Duration(float64(time.Second) * 60.0 / float64(c.bpm) / 4.0)
}

// Advance moves to the next step. On wrap it increments the cycle count and
// reports a transport boundary.
func (c *Clock) Advance() bool {
	c.total++
	c.step++
	if c.step >= c.stepsPerCycle {
		c.step = 0
		c.cycle++
		return true
	}
	return false
}

// SetStepsPerCycle re-derives the transport cycle length (the engine keeps
// it at the running tracks' combined length). The step position is reduced
// into the new range, never reset.
func (c *Clock) SetStepsPerCycle(n int) {
	if n < 1 {
		n = 16
	}
	c.stepsPerCycle = n
	c.step = c.step % n
}

// Reset rewinds the step position (transport stop)
func (c *Clock) Reset() {
	c.step = 0
	c.total = 0
}

// transportStepCount combines running tracks' step counts the way the
// transport cycle is derived: least common multiple, capped to 16 or 32.
func transportStepCount(counts []int) int {
	if len(counts) == 0 {
		return 16
	}
	loop := counts[0]
	for _, n := range counts[1:] {
		loop = lcm(loop, n)
	}
	if loop <= 16 {
		return 16
	}
	return 32
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
