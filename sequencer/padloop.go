package sequencer

// LeafStep is one resolved position in a flattened loop sequence: the leaf
// pad plus the path of node ids leading to it (root entry first), so any
// nesting level can be asked "is this the one currently playing".
type LeafStep struct {
	PadID string
	Path  []string
}

// PadLoop is a track's pad-loop sequencer: an ordered root sequence of
// Pad | Group | SuperGroup references plus an independent play cursor that
// advances one leaf pad per local cycle.
type PadLoop struct {
	Root   []string
	Repeat bool

	pos  int  // index into the flattened leaf order
	done bool // Repeat: Off reached the end; hold the last leaf
}

// NewPadLoop creates an empty loop with Repeat: On
func NewPadLoop() *PadLoop {
	return &PadLoop{Repeat: true}
}

// Flatten resolves the hierarchy in order (root, super-group, group, pad)
// to the concrete leaf playback order. Dangling references resolve to
// nothing rather than failing mid-playback.
func (l *PadLoop) Flatten(store *Store) []LeafStep {
	var leaves []LeafStep
	for _, id := range l.Root {
		leaves = l.appendNode(store, leaves, id, nil)
	}
	return leaves
}

func (l *PadLoop) appendNode(store *Store, leaves []LeafStep, id string, path []string) []LeafStep {
	node, err := store.Node(id)
	if err != nil {
		return leaves
	}
	path = append(path, id)
	if node.Kind == NodePad {
		leaf := LeafStep{PadID: id, Path: append([]string(nil), path...)}
		return append(leaves, leaf)
	}
	for _, child := range node.Children {
		leaves = l.appendNode(store, leaves, child, path)
	}
	return leaves
}

// Current resolves the leaf pad due to play now. Resolving twice without an
// intervening advance yields the same leaf.
func (l *PadLoop) Current(store *Store) (LeafStep, bool) {
	leaves := l.Flatten(store)
	if len(leaves) == 0 {
		return LeafStep{}, false
	}
	pos := l.pos
	if pos >= len(leaves) {
		// Sequence shrank under the cursor; hold the tail
		pos = len(leaves) - 1
	}
	return leaves[pos], true
}

// Advance moves the cursor one leaf pad forward. With Repeat: Off the cursor
// holds on the last leaf indefinitely until Reset.
func (l *PadLoop) Advance(store *Store) {
	leaves := l.Flatten(store)
	if len(leaves) == 0 || l.done {
		return
	}
	if l.pos >= len(leaves)-1 {
		if l.Repeat {
			l.pos = 0
		} else {
			l.pos = len(leaves) - 1
			l.done = true
		}
		return
	}
	l.pos++
}

// Reset rewinds the cursor (track restart)
func (l *PadLoop) Reset() {
	l.pos = 0
	l.done = false
}

// Held reports whether a Repeat: Off loop has finished and is holding
func (l *PadLoop) Held() bool {
	return l.done
}

// IsPlaying reports whether a node is on the current play path at any
// nesting level, so the root view and an opened group editor can both show
// accurate playhead state at once.
func (l *PadLoop) IsPlaying(store *Store, nodeID string) bool {
	leaf, ok := l.Current(store)
	if !ok {
		return false
	}
	for _, id := range leaf.Path {
		if id == nodeID {
			return true
		}
	}
	return false
}

// PlayingIndex returns the index of the root entry currently playing, or
// -1 for an empty sequence. The same node can appear at several root
// positions, so this counts leaves rather than comparing ids.
func (l *PadLoop) PlayingIndex(store *Store) int {
	pos := l.pos
	count := 0
	for i, id := range l.Root {
		var leaves []LeafStep
		leaves = l.appendNode(store, leaves, id, nil)
		if pos < count+len(leaves) {
			return i
		}
		count += len(leaves)
	}
	if count > 0 {
		return len(l.Root) - 1
	}
	return -1
}
