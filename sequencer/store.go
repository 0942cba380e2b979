package sequencer

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// NodeKind is the pattern node variant
type NodeKind int

const (
	NodePad NodeKind = iota
	NodeGroup
	NodeSuperGroup
)

func (k NodeKind) String() string {
	switch k {
	case NodePad:
		return "pad"
	case NodeGroup:
		return "group"
	case NodeSuperGroup:
		return "super-group"
	}
	return "unknown"
}

// rank enforces acyclicity: a container may only reference nodes of strictly
// lower rank, so no traversal is ever needed.
func (k NodeKind) rank() int {
	switch k {
	case NodePad:
		return 0
	case NodeGroup:
		return 1
	default:
		return 2
	}
}

// Node is one pattern arena entry. Pads are leaves carrying content; groups
// and super-groups are ordered reference lists stored once and shared by
// identifier wherever they appear.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`
	Pad      int      `json:"pad"`      // P1..P8 slot, pads only
	Children []string `json:"children"` // groups and super-groups only

	content Content // pads only
}

// Store is the shared pattern arena. All reads are by identifier and observe
// fully-applied writes; reorder/remove on the same sequence never tear.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	refs  map[string]int // inbound reference counts from containers
	seq   int
}

// NewStore creates an empty pattern store
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		refs:  make(map[string]int),
	}
}

func (s *Store) newID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// CreatePad adds a leaf pad for slot 0..7 with the given content
func (s *Store) CreatePad(name string, pad int, c Content) (string, error) {
	if pad < 0 || pad > 7 {
		return "", rangeErrorf("pad slot %d", pad)
	}
	if c == nil {
		return "", errors.Wrap(ErrInvalidRange, "pad content required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID("pad")
	s.nodes[id] = &Node{ID: id, Kind: NodePad, Name: name, Pad: pad, content: c.clone()}
	return id, nil
}

// CreateGroup adds a group referencing the given pads
func (s *Store) CreateGroup(name string, padIDs ...string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range padIDs {
		if err := s.checkInsertLocked(NodeGroup, ref); err != nil {
			return "", err
		}
	}
	id := s.newID("grp")
	s.nodes[id] = &Node{ID: id, Kind: NodeGroup, Name: name, Children: append([]string(nil), padIDs...)}
	for _, ref := range padIDs {
		s.refs[ref]++
	}
	return id, nil
}

// CreateSuperGroup adds a super-group referencing pads and/or groups
func (s *Store) CreateSuperGroup(name string, refIDs ...string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refIDs {
		if err := s.checkInsertLocked(NodeSuperGroup, ref); err != nil {
			return "", err
		}
	}
	id := s.newID("sup")
	s.nodes[id] = &Node{ID: id, Kind: NodeSuperGroup, Name: name, Children: append([]string(nil), refIDs...)}
	for _, ref := range refIDs {
		s.refs[ref]++
	}
	return id, nil
}

// checkInsertLocked validates that a container of the given kind may
// reference refID. The rank rule alone rules out self-nesting and cycles.
func (s *Store) checkInsertLocked(container NodeKind, refID string) error {
	ref, ok := s.nodes[refID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", refID)
	}
	if ref.Kind.rank() >= container.rank() {
		return errors.Wrapf(ErrHierarchy, "%s may not contain %s %q", container, ref.Kind, refID)
	}
	return nil
}

// Node returns a copy of a node (children slice detached)
func (s *Store) Node(id string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, errors.Wrapf(ErrNotFound, "node %q", id)
	}
	out := *n
	out.Children = append([]string(nil), n.Children...)
	out.content = nil
	return out, nil
}

// Content returns a clone of a pad's content. Callers re-read after edits;
// nothing outside the store holds live content across a mutation.
func (s *Store) Content(id string) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "node %q", id)
	}
	if n.Kind != NodePad {
		return nil, errors.Wrapf(ErrInvalidRange, "node %q is a %s, not a pad", id, n.Kind)
	}
	return n.content.clone(), nil
}

// UpdateContent replaces a pad's content atomically
func (s *Store) UpdateContent(id string, c Content) error {
	if c == nil {
		return errors.Wrap(ErrInvalidRange, "pad content required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", id)
	}
	if n.Kind != NodePad {
		return errors.Wrapf(ErrInvalidRange, "node %q is a %s, not a pad", id, n.Kind)
	}
	if n.content.Kind() != c.Kind() {
		return errors.Wrapf(ErrInvalidRange, "pad %q is %s, got %s content", id, n.content.Kind(), c.Kind())
	}
	n.content = c.clone()
	return nil
}

// Rename changes a node's display name
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", id)
	}
	n.Name = name
	return nil
}

// InsertReference inserts refID into a container at index. Violating inserts
// are rejected with no state change.
func (s *Store) InsertReference(containerID string, index int, refID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	container, ok := s.nodes[containerID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", containerID)
	}
	if container.Kind == NodePad {
		return errors.Wrapf(ErrHierarchy, "pad %q cannot contain references", containerID)
	}
	if err := s.checkInsertLocked(container.Kind, refID); err != nil {
		return err
	}
	if index < 0 || index > len(container.Children) {
		return rangeErrorf("index %d", index)
	}
	container.Children = append(container.Children, "")
	copy(container.Children[index+1:], container.Children[index:])
	container.Children[index] = refID
	s.refs[refID]++
	return nil
}

// RemoveReference removes the reference at index from a container
func (s *Store) RemoveReference(containerID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	container, ok := s.nodes[containerID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", containerID)
	}
	if index < 0 || index >= len(container.Children) {
		return rangeErrorf("index %d", index)
	}
	ref := container.Children[index]
	container.Children = append(container.Children[:index], container.Children[index+1:]...)
	s.refs[ref]--
	return nil
}

// Reorder moves a container's reference from one index to another, atomic
// relative to any concurrent remove on the same sequence.
func (s *Store) Reorder(containerID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	container, ok := s.nodes[containerID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", containerID)
	}
	n := len(container.Children)
	if from < 0 || from >= n || to < 0 || to >= n {
		return rangeErrorf("reorder %d -> %d", from, to)
	}
	ref := container.Children[from]
	container.Children = append(container.Children[:from], container.Children[from+1:]...)
	container.Children = append(container.Children, "")
	copy(container.Children[to+1:], container.Children[to:])
	container.Children[to] = ref
	return nil
}

// Delete removes a node. Deletion of a node still referenced by a container
// is rejected; callers also guard against live loop-sequence references.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "node %q", id)
	}
	if s.refs[id] > 0 {
		return errors.Wrapf(ErrStillReferenced, "%s %q has %d references", n.Kind, id, s.refs[id])
	}
	for _, ref := range n.Children {
		s.refs[ref]--
	}
	delete(s.nodes, id)
	delete(s.refs, id)
	return nil
}

// Referenced reports whether any container currently references the node
func (s *Store) Referenced(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs[id] > 0
}

// Len returns the number of nodes in the arena
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// IDs returns all node identifiers (unordered)
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	return ids
}
