package sequencer

import "github.com/pkg/errors"

// Error taxonomy. Structural errors are synchronous return values from the
// command that caused them; dispatch errors are collected out-of-band and
// never halt the clock.
var (
	// ErrHierarchy is returned for a reference insertion that would create
	// disallowed nesting (a container may only hold nodes of strictly lower
	// rank, so no cycles are possible).
	ErrHierarchy = errors.New("hierarchy violation")

	// ErrStillReferenced rejects deletion of a node that is referenced by a
	// container or a track's loop sequence.
	ErrStillReferenced = errors.New("node still referenced")

	// ErrNoSession is returned when a start/pad command arrives while no
	// engine session is active.
	ErrNoSession = errors.New("no active session")

	// ErrUnboundTrack marks a track with no usable channel binding; its
	// emission is skipped until resolved.
	ErrUnboundTrack = errors.New("track has no channel binding")

	// ErrDispatch wraps failures from the external event boundary.
	ErrDispatch = errors.New("event dispatch failed")

	// ErrInvalidRange rejects out-of-bounds configuration before any state
	// mutation.
	ErrInvalidRange = errors.New("value out of range")

	// ErrNotFound is returned for unknown node or track identifiers.
	ErrNotFound = errors.New("not found")
)

func rangeErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidRange, format, args...)
}
