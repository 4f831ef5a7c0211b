package types

// WidgetID identifies one live widget instance. IDs are assigned by the
// producer and are never reused after removal.
type WidgetID int32

// RootSentinelID is the reserved identifier of the synthetic root node.
// The sentinel is never removed and never appears as a child.
const RootSentinelID WidgetID = -1

// ChannelID identifies the multiplexed logical channel a widget owns.
type ChannelID int32

// GlobalID is the transport-wide identifier of a channel, unique across
// the whole connection rather than per parent.
type GlobalID int64

// ClassID is the runtime integer identifier the producer assigns to a
// widget class name via RegisterWidgetClass.
type ClassID int32

// WidgetClassID identifies a widget class for style and theme resolution.
type WidgetClassID int32

// StyleID identifies a registered style.
type StyleID int32

// StyleClassID identifies a style class within theme and remap tables.
type StyleClassID int32

// ThemeID identifies an activatable theme layer.
type ThemeID int32

// LayoutID identifies a layout property set. Layout resolution is not
// implemented; ids are accepted and ignored.
type LayoutID int32
