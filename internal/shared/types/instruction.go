package types

// OpCode discriminates decoded protocol instructions.
type OpCode string

const (
	OpMountRoot       OpCode = "mount_root"
	OpRequestFrame    OpCode = "request_frame"
	OpSetChildren     OpCode = "set_children"
	OpUpdateChildren  OpCode = "update_children"
	OpAddStyles       OpCode = "add_styles"
	OpAddLayoutIDs    OpCode = "add_layout_ids"
	OpActivateTheme   OpCode = "activate_theme"
	OpDeactivateTheme OpCode = "deactivate_theme"
	OpRegisterClass   OpCode = "register_widget_class"
)

// Instruction is one decoded protocol message. Only the fields relevant
// to the instruction's Op are populated.
type Instruction struct {
	Op OpCode `json:"op" binding:"required"`

	WidgetID WidgetID   `json:"widget_id,omitempty"`
	Children []WidgetID `json:"children,omitempty"`
	Ops      []ChildOp  `json:"ops,omitempty"`

	Styles    []StyleRegistration `json:"styles,omitempty"`
	LayoutIDs []LayoutID          `json:"layout_ids,omitempty"`

	ThemeID ThemeID                          `json:"theme_id,omitempty"`
	Theme   map[WidgetClassID][]StyleClassID `json:"theme,omitempty"`

	ClassID   ClassID `json:"class_id,omitempty"`
	ClassName string  `json:"class_name,omitempty"`
}

// ChildOpKind discriminates edit-script operations.
type ChildOpKind string

const (
	ChildNoOp    ChildOpKind = "noop"
	ChildInsert  ChildOpKind = "insert"
	ChildRemove  ChildOpKind = "remove"
	ChildMove    ChildOpKind = "move"
	ChildReplace ChildOpKind = "replace"
)

// ChildOp is one step of an incremental child edit script. The script is
// applied with a single forward cursor starting at position 0.
type ChildOp struct {
	Kind ChildOpKind `json:"kind"`

	// Count is the element count for noop and remove.
	Count int `json:"count,omitempty"`

	// ID is the referenced widget for insert and replace.
	ID WidgetID `json:"id,omitempty"`

	// Index is the absolute source position for move, resolved against the
	// sequence as mutated so far.
	Index int `json:"index,omitempty"`
}

// CreateWidget is the creation record decoded from a newly opened child
// channel before any other message.
type CreateWidget struct {
	ClassID  ClassID  `json:"class_id"`
	WidgetID WidgetID `json:"widget_id"`
}
