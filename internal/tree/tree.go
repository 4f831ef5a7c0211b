package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/loomui/loom/internal/logging"
	"github.com/loomui/loom/internal/shared/types"
	"github.com/loomui/loom/internal/widget"
)

// ErrNoSuchWidget indicates an operation on a widget id with no live node.
// This is a producer/consumer desynchronization, never absorbed silently.
var ErrNoSuchWidget = errors.New("no node for widget id")

// ErrBadEditScript indicates an UpdateChildren script that runs outside the
// bounds of the child sequence being edited.
var ErrBadEditScript = errors.New("edit script out of bounds")

// Node is the tree's record for one live widget.
type Node struct {
	Widget   widget.Widget
	Children []types.WidgetID
	Channel  types.ChannelID
}

// Tree maps widget ids to nodes in an arena. Nodes are owned by id, never
// by pointer between nodes, so cycles are structurally impossible and
// removal is O(1) per id.
//
// The tree is exclusively owned by the instruction-processing goroutine;
// all mutation is serial, so no locking is needed here.
type Tree struct {
	nodes   map[types.WidgetID]*Node
	linked  map[types.WidgetID]struct{} // ids with an established parent
	root    types.WidgetID
	mounted bool
	log     *logging.Logger
}

// New creates a tree holding only the root sentinel. The sentinel wraps the
// embedding application's empty widget, is always linked, and is never
// removed.
func New(empty widget.Widget, log *logging.Logger) *Tree {
	t := &Tree{
		nodes:  make(map[types.WidgetID]*Node),
		linked: make(map[types.WidgetID]struct{}),
		log:    log,
	}
	t.nodes[types.RootSentinelID] = &Node{Widget: empty}
	t.linked[types.RootSentinelID] = struct{}{}
	return t
}

// Insert registers a node for a freshly materialized widget.
func (t *Tree) Insert(id types.WidgetID, w widget.Widget, channel types.ChannelID) {
	t.nodes[id] = &Node{Widget: w, Channel: channel}
}

// Remove evicts the node for an id. Descendants are not removed; their own
// channel closures arrive independently. Child lists of other nodes that
// still reference the id are left as-is.
func (t *Tree) Remove(id types.WidgetID) {
	if id == types.RootSentinelID {
		return
	}
	delete(t.nodes, id)
	delete(t.linked, id)
	if t.mounted && t.root == id {
		t.mounted = false
	}
}

// Get returns the node for an id.
func (t *Tree) Get(id types.WidgetID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Resolve returns the live widget for an id, or nil. Used as the child
// resolver handed to widgets during incremental updates.
func (t *Tree) Resolve(id types.WidgetID) widget.Widget {
	if n, ok := t.nodes[id]; ok {
		return n.Widget
	}
	return nil
}

// MountRoot sets the tree's root and establishes parent links downward from
// the sentinel. Mounting an unknown id is a contract violation.
func (t *Tree) MountRoot(id types.WidgetID) (widget.Widget, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("mount root %d: %w", id, ErrNoSuchWidget)
	}
	t.root = id
	t.mounted = true
	t.link(types.RootSentinelID, id)
	return node.Widget, nil
}

// Root returns the mounted root id, if any.
func (t *Tree) Root() (types.WidgetID, bool) {
	return t.root, t.mounted
}

// SetChildren replaces a node's child sequence wholesale. Child ids with no
// live node are dropped from the resolved list rather than failing the
// operation; the stored sequence contains only resolved ids.
func (t *Tree) SetChildren(id types.WidgetID, childIDs []types.WidgetID) error {
	node, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("set children of %d: %w", id, ErrNoSuchWidget)
	}

	resolved := make([]types.WidgetID, 0, len(childIDs))
	children := make([]widget.Widget, 0, len(childIDs))
	for _, childID := range childIDs {
		child, ok := t.nodes[childID]
		if !ok {
			t.log.Debug("dropping unresolved child id",
				zap.Int32("widget_id", int32(id)),
				zap.Int32("child_id", int32(childID)))
			continue
		}
		resolved = append(resolved, childID)
		children = append(children, child.Widget)
	}

	node.Widget.SetChildren(children)
	for _, childID := range resolved {
		t.link(id, childID)
	}
	node.Children = resolved
	return nil
}

// UpdateChildren applies an incremental edit script to a node's child
// sequence with a single forward cursor, then notifies the widget with the
// op list and a resolver from child id to live widget.
func (t *Tree) UpdateChildren(id types.WidgetID, ops []types.ChildOp) error {
	node, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("update children of %d: %w", id, ErrNoSuchWidget)
	}

	seq := make([]types.WidgetID, len(node.Children))
	copy(seq, node.Children)
	cursor := 0

	for i, op := range ops {
		switch op.Kind {
		case types.ChildNoOp:
			cursor += op.Count

		case types.ChildInsert:
			if cursor < 0 || cursor > len(seq) {
				return scriptErr(id, i, op)
			}
			t.link(id, op.ID)
			seq = append(seq[:cursor], append([]types.WidgetID{op.ID}, seq[cursor:]...)...)
			cursor++

		case types.ChildRemove:
			if cursor < 0 || op.Count < 0 || cursor+op.Count > len(seq) {
				return scriptErr(id, i, op)
			}
			seq = append(seq[:cursor], seq[cursor+op.Count:]...)

		case types.ChildMove:
			if op.Index < 0 || op.Index >= len(seq) || cursor < 0 || cursor > len(seq) {
				return scriptErr(id, i, op)
			}
			moved := seq[op.Index]
			seq = append(seq[:op.Index], seq[op.Index+1:]...)
			if cursor > len(seq) {
				return scriptErr(id, i, op)
			}
			seq = append(seq[:cursor], append([]types.WidgetID{moved}, seq[cursor:]...)...)
			cursor++

		case types.ChildReplace:
			if cursor < 0 || cursor >= len(seq) {
				return scriptErr(id, i, op)
			}
			t.link(id, op.ID)
			seq[cursor] = op.ID
			cursor++

		default:
			return fmt.Errorf("update children of %d: op %d has unknown kind %q", id, i, op.Kind)
		}
	}

	node.Children = seq
	node.Widget.UpdateChildren(ops, t.Resolve)
	return nil
}

// ReapplyStyles walks the subtree rooted at id depth-first pre-order,
// invoking each widget's style-recomputation hook. A missing node is
// treated as already gone.
func (t *Tree) ReapplyStyles(id types.WidgetID) {
	node, ok := t.nodes[id]
	if !ok {
		return
	}
	node.Widget.ReapplyStyles()
	for _, childID := range node.Children {
		t.ReapplyStyles(childID)
	}
}

// ReapplyAll reapplies styles from the mounted root, if any. Returns true
// when a walk happened.
func (t *Tree) ReapplyAll() bool {
	if !t.mounted {
		return false
	}
	t.ReapplyStyles(t.root)
	return true
}

// Len returns the number of live nodes, excluding the root sentinel.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// link establishes childID's parent as parentID and descends into the
// child's recorded subtree. It only descends when the parent itself is
// linked, which keeps detached subtrees from acquiring parent links before
// they are reachable from the root.
func (t *Tree) link(parentID, childID types.WidgetID) {
	if _, ok := t.linked[parentID]; !ok {
		return
	}
	parent, ok := t.nodes[parentID]
	if !ok {
		return
	}
	child, ok := t.nodes[childID]
	if !ok {
		return
	}
	child.Widget.SetParent(parent.Widget)
	t.linked[childID] = struct{}{}
	for _, grandchild := range child.Children {
		t.link(childID, grandchild)
	}
}

func scriptErr(id types.WidgetID, index int, op types.ChildOp) error {
	return fmt.Errorf("update children of %d: op %d (%s): %w", id, index, op.Kind, ErrBadEditScript)
}
