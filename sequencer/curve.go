package sequencer

import "math"

// sampleCurve evaluates a Catmull-Rom spline through the keypoints at a
// normalized position, clamped to the MIDI value range. Points must be sorted
// by Pos with the fixed boundaries at 0 and 1.
func sampleCurve(points []CurvePoint, pos float64) uint8 {
	if len(points) == 0 {
		return 0
	}
	if len(points) == 1 {
		return clampValue(points[0].Value)
	}
	if pos <= points[0].Pos {
		return clampValue(points[0].Value)
	}
	last := len(points) - 1
	if pos >= points[last].Pos {
		return clampValue(points[last].Value)
	}

	// Find the segment containing pos
	seg := 0
	for i := 0; i < last; i++ {
		if pos < points[i+1].Pos {
			seg = i
			break
		}
	}

	p1 := points[seg]
	p2 := points[seg+1]
	p0 := p1
	if seg > 0 {
		p0 = points[seg-1]
	}
	p3 := p2
	if seg+2 <= last {
		p3 = points[seg+2]
	}

	span := p2.Pos - p1.Pos
	if span <= 0 {
		return clampValue(p1.Value)
	}
	t := (pos - p1.Pos) / span

	// Catmull-Rom with tangents scaled to the non-uniform segment widths
	m1 := tangent(p0, p1, p2) * span
	m2 := tangent(p1, p2, p3) * span

	t2 := t * t
	t3 := t2 * t
	v := (2*t3-3*t2+1)*p1.Value +
		(t3-2*t2+t)*m1 +
		(-2*t3+3*t2)*p2.Value +
		(t3-t2)*m2

	return clampValue(v)
}

func tangent(a, b, c CurvePoint) float64 {
	span := c.Pos - a.Pos
	if span <= 0 {
		return 0
	}
	return (c.Value - a.Value) / span
}

func clampValue(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(math.Round(v))
}
