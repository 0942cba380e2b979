package sequencer

import (
	"testing"
	"time"
)

func TestNewClockRejectsBPMOutOfRange(t *testing.T) {
	for _, bpm := range []int{0, 29, 301, -10} {
		if _, err := NewClock(bpm); err == nil {
			t.Errorf("NewClock(%d) should fail", bpm)
		}
	}
	for _, bpm := range []int{30, 120, 300} {
		if _, err := NewClock(bpm); err != nil {
			t.Errorf("NewClock(%d) failed: %v", bpm, err)
		}
	}
}

func TestClockInterval(t *testing.T) {
	c, err := NewClock(120)
	if err != nil {
		t.Fatal(err)
	}
	// 120 bpm sixteenths: 60/120/4 = 125ms
	if got := c.Interval(); got != 125*time.Millisecond {
		t.Errorf("interval = %v, want 125ms", got)
	}

	c.SetBPM(60)
	if got := c.Interval(); got != 250*time.Millisecond {
		t.Errorf("interval at 60 bpm = %v, want 250ms", got)
	}
}

func TestClockAdvanceWrapsCycle(t *testing.T) {
	c, err := NewClock(120)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 15; i++ {
		if c.Advance() {
			t.Fatalf("unexpected wrap at step %d", i)
		}
	}
	if c.Step() != 15 {
		t.Fatalf("step = %d, want 15", c.Step())
	}
	if !c.Advance() {
		t.Fatal("expected wrap at the 16th advance")
	}
	if c.Step() != 0 {
		t.Errorf("step after wrap = %d, want 0", c.Step())
	}
	if c.Cycle() != 1 {
		t.Errorf("cycle after wrap = %d, want 1", c.Cycle())
	}
	if c.TotalStep() != 16 {
		t.Errorf("total steps = %d, want 16", c.TotalStep())
	}
}

func TestClockTotalStepSurvivesCycleChanges(t *testing.T) {
	c, err := NewClock(120)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		c.Advance()
	}
	c.SetStepsPerCycle(32)
	for i := 0; i < 20; i++ {
		c.Advance()
	}
	if c.TotalStep() != 40 {
		t.Errorf("total steps = %d, want 40", c.TotalStep())
	}
	c.Reset()
	if c.TotalStep() != 0 {
		t.Errorf("total steps after reset = %d, want 0", c.TotalStep())
	}
}

func TestSetStepsPerCycleReducesStep(t *testing.T) {
	c, err := NewClock(120)
	if err != nil {
		t.Fatal(err)
	}
	c.SetStepsPerCycle(32)
	for i := 0; i < 20; i++ {
		c.Advance()
	}
	if c.Step() != 20 {
		t.Fatalf("step = %d, want 20", c.Step())
	}

	// Shrinking the cycle reduces the position instead of resetting it
	c.SetStepsPerCycle(16)
	if c.Step() != 4 {
		t.Errorf("step after shrink = %d, want 4", c.Step())
	}
}

func TestTransportStepCount(t *testing.T) {
	cases := []struct {
		counts []int
		want   int
	}{
		{nil, 16},
		{[]int{16}, 16},
		{[]int{4, 8}, 16},
		{[]int{4, 16}, 16},
		{[]int{16, 32}, 32},
		{[]int{32}, 32},
		{[]int{8, 32}, 32},
	}
	for _, tc := range cases {
		if got := transportStepCount(tc.counts); got != tc.want {
			t.Errorf("transportStepCount(%v) = %d, want %d", tc.counts, got, tc.want)
		}
	}
}
