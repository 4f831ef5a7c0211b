package widget

import (
	"github.com/loomui/loom/internal/shared/types"
)

// Resolver maps a child widget id to its live widget, or nil when the id
// has no corresponding node.
type Resolver func(types.WidgetID) Widget

// Widget is the capability surface the tree depends on. Concrete widget
// kinds are injected via the registry and never enumerated by the core.
type Widget interface {
	// ID returns the producer-assigned widget identifier.
	ID() types.WidgetID

	// Channel returns the id of the channel this widget owns.
	Channel() types.ChannelID

	// SetParent records the widget's parent. The parent may be the root
	// sentinel's empty widget.
	SetParent(parent Widget)

	// SetChildren replaces the widget's child references wholesale.
	SetChildren(children []Widget)

	// UpdateChildren applies an incremental edit script to the widget's
	// child references. The resolver yields the widget for ids referenced
	// by insert and replace steps.
	UpdateChildren(ops []types.ChildOp, resolve Resolver)

	// ReapplyStyles recomputes the widget's resolved style state after a
	// style, theme, or inheritance change.
	ReapplyStyles()
}
