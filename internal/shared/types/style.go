package types

// StylePropKind discriminates raw style property records. A registration's
// property list mixes base properties with resolution directives.
type StylePropKind string

const (
	// PropValue is a base style property (name/value pair).
	PropValue StylePropKind = "value"
	// PropInherit declares the styles this one inherits from.
	PropInherit StylePropKind = "inherit"
	// PropExtend declares the styles whose base properties are prepended.
	PropExtend StylePropKind = "extend"
	// PropRemap maps one style class to a replacement class list.
	PropRemap StylePropKind = "remap"
	// PropWidgetClasses assigns style classes to a widget class.
	PropWidgetClasses StylePropKind = "widget_classes"
)

// StyleProp is one raw property record inside a style registration.
type StyleProp struct {
	Kind StylePropKind `json:"kind"`

	// Base property payload.
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`

	// Inherit / extend payload.
	Styles []StyleID `json:"styles,omitempty"`

	// Remap payload.
	Class   StyleClassID   `json:"class,omitempty"`
	Classes []StyleClassID `json:"classes,omitempty"`

	// Widget-class payload. Classes carries the style classes.
	WidgetClass WidgetClassID `json:"widget_class,omitempty"`
}

// StyleRegistration is one element of an AddStyles batch.
type StyleRegistration struct {
	ID    StyleID     `json:"id"`
	Name  string      `json:"name"`
	Props []StyleProp `json:"props"`
}
