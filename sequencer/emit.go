package sequencer

import "github.com/thomassresearch/orchestron-sub004/midi"

// Emitters convert (local step, active pad content) into events for the
// dispatch boundary. They perform no I/O and hold no locks; the engine owns
// held-note state and gate scheduling.

// melodicStep is the outcome of one melodic step: notes to release now, an
// optional note to start, and whether that note is held (no gate-off).
type melodicStep struct {
	off  int // note to release first, -1 none
	on   int // note to start, -1 none
	hold bool
}

// melodicAt reads the cell for a local step. held is the note currently
// sustained by a hold tie (-1 none). A held note survives until the next
// rest or retrigger; re-striking the same pitch with hold set sustains it
// without a retrigger.
func melodicAt(c *MelodicContent, step int, held int) melodicStep {
	out := melodicStep{off: -1, on: -1}
	if len(c.Cells) == 0 {
		out.off = held
		return out
	}
	cell := c.Cells[step%len(c.Cells)]
	if cell.Rest {
		out.off = held
		return out
	}
	note := int(cell.MIDINote())
	if held >= 0 {
		if cell.Hold && note == held {
			// Tie continues
			out.hold = true
			return out
		}
		out.off = held
	}
	out.on = note
	out.hold = cell.Hold
	return out
}

// drumHit is one momentary hit
type drumHit struct {
	key      uint8
	velocity uint8
}

// drumAt collects every active row hit at a local step. Velocity 0 cells
// are inactive and emit nothing.
func drumAt(c *DrumContent, step int) []drumHit {
	var hits []drumHit
	for _, row := range c.Rows {
		if len(row.Hits) == 0 {
			continue
		}
		v := row.Hits[step%len(row.Hits)]
		if v > 0 {
			hits = append(hits, drumHit{key: row.Key, velocity: v})
		}
	}
	return hits
}

// controlAt samples the curve for a clock step. The curve rate is the
// effective pad length in samples: one full traversal spans Rate clock
// steps, so the normalized position is (step mod Rate) / Rate. Callers pass
// the absolute step count so a rate longer than the track's cycle still
// walks the whole curve instead of restarting every local wrap.
func controlAt(c *ControlContent, step int) uint8 {
	rate := c.Rate
	if rate <= 0 {
		rate = 16
	}
	pos := float64(step%rate) / float64(rate)
	return c.Sample(pos)
}

// drumEvents wraps hits as momentary trigger events on the track's channel
func drumEvents(t *Track, hits []drumHit) []midi.Event {
	events := make([]midi.Event, 0, len(hits))
	for _, h := range hits {
		events = append(events, midi.Event{
			Type:     midi.Trigger,
			Channel:  t.Channel,
			Note:     h.key,
			Velocity: h.velocity,
		})
	}
	return events
}
