package widget

import (
	"github.com/loomui/loom/internal/shared/types"
)

// Base is a minimal Widget implementation that tracks identity, parent, and
// child references. Concrete widget kinds can embed it and override the
// hooks they care about; the daemon uses it directly for headless trees.
type Base struct {
	id       types.WidgetID
	channel  types.ChannelID
	parent   Widget
	children []Widget
}

// NewBase creates a base widget bound to a channel.
func NewBase(id types.WidgetID, channel types.ChannelID) *Base {
	return &Base{id: id, channel: channel}
}

// ID returns the widget identifier.
func (b *Base) ID() types.WidgetID { return b.id }

// Channel returns the owning channel id.
func (b *Base) Channel() types.ChannelID { return b.channel }

// Parent returns the currently linked parent, or nil while detached.
func (b *Base) Parent() Widget { return b.parent }

// Children returns the widget's current child references.
func (b *Base) Children() []Widget { return b.children }

// SetParent records the widget's parent.
func (b *Base) SetParent(parent Widget) { b.parent = parent }

// SetChildren replaces the child references wholesale.
func (b *Base) SetChildren(children []Widget) {
	b.children = make([]Widget, len(children))
	copy(b.children, children)
}

// UpdateChildren mirrors the tree's edit script onto the widget's own child
// references with the same single forward cursor. Unresolvable ids become
// nil entries; the tree has already validated script bounds.
func (b *Base) UpdateChildren(ops []types.ChildOp, resolve Resolver) {
	seq := b.children
	cursor := 0
	for _, op := range ops {
		switch op.Kind {
		case types.ChildNoOp:
			cursor += op.Count
		case types.ChildInsert:
			seq = append(seq[:cursor], append([]Widget{resolve(op.ID)}, seq[cursor:]...)...)
			cursor++
		case types.ChildRemove:
			seq = append(seq[:cursor], seq[cursor+op.Count:]...)
		case types.ChildMove:
			moved := seq[op.Index]
			seq = append(seq[:op.Index], seq[op.Index+1:]...)
			seq = append(seq[:cursor], append([]Widget{moved}, seq[cursor:]...)...)
			cursor++
		case types.ChildReplace:
			seq[cursor] = resolve(op.ID)
			cursor++
		}
	}
	b.children = seq
}

// ReapplyStyles is a no-op for the base widget; concrete kinds override it
// to recompute their resolved style state.
func (b *Base) ReapplyStyles() {}
