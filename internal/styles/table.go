// Package styles stores registered styles and resolves inheritance,
// extension, remap, and widget-class directives against already-registered
// entries.
package styles

import (
	"errors"
	"fmt"
	"sync"

	"github.com/loomui/loom/internal/shared/types"
)

// ErrUnknownStyle indicates an extension or inheritance directive that
// references a style id with no registered entry. Registration order is
// define-before-reference; a miss here means the producer broke that
// discipline.
var ErrUnknownStyle = errors.New("referenced style is not registered")

// RegisteredStyle is the resolved form of one style registration. Entries
// are immutable once stored; re-registration under the same id replaces the
// entry wholesale.
type RegisteredStyle struct {
	// Props is the resolved property list: extended styles' base properties
	// followed by this style's own.
	Props []types.StyleProp

	// Inherited is the inheritance chain, always ending in this style's own
	// id, with no duplicates.
	Inherited []types.StyleID

	// Remaps maps a style class to its replacement class list.
	Remaps map[types.StyleClassID][]types.StyleClassID

	// WidgetClasses maps a widget class to its assigned style classes.
	WidgetClasses map[types.WidgetClassID][]types.StyleClassID
}

// Table stores registered styles by id and resolves incremental
// registrations against already-registered entries.
type Table struct {
	mu     sync.RWMutex
	styles map[types.StyleID]RegisteredStyle
}

// NewTable creates an empty style table.
func NewTable() *Table {
	return &Table{styles: make(map[types.StyleID]RegisteredStyle)}
}

// Add processes a registration batch. The producer sends styles
// most-recent-first, so the batch is walked in reverse to resolve
// dependencies oldest-first. The returned dirty flag is true when any entry
// changed inheritance, in which case the caller must reapply styles across
// the live tree.
func (t *Table) Add(batch []types.StyleRegistration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dirty := false
	for i := len(batch) - 1; i >= 0; i-- {
		entryDirty, err := t.register(batch[i])
		if err != nil {
			return dirty, err
		}
		dirty = dirty || entryDirty
	}
	return dirty, nil
}

// register resolves and stores one entry. Caller holds the write lock.
func (t *Table) register(reg types.StyleRegistration) (bool, error) {
	var (
		inheritRefs []types.StyleID
		extendRefs  []types.StyleID
		base        []types.StyleProp
	)
	remaps := make(map[types.StyleClassID][]types.StyleClassID)
	widgetClasses := make(map[types.WidgetClassID][]types.StyleClassID)

	for _, prop := range reg.Props {
		switch prop.Kind {
		case types.PropInherit:
			inheritRefs = append(inheritRefs, prop.Styles...)
		case types.PropExtend:
			extendRefs = append(extendRefs, prop.Styles...)
		case types.PropRemap:
			// Later directives overwrite earlier ones for the same key.
			remaps[prop.Class] = prop.Classes
		case types.PropWidgetClasses:
			widgetClasses[prop.WidgetClass] = prop.Classes
		default:
			base = append(base, prop)
		}
	}

	props, err := t.resolveExtension(reg, extendRefs, base)
	if err != nil {
		return false, err
	}

	inherited := []types.StyleID{reg.ID}
	dirty := false
	if len(inheritRefs) > 0 {
		inherited, err = t.resolveInheritance(reg, inheritRefs)
		if err != nil {
			return false, err
		}
		dirty = true
	}

	t.styles[reg.ID] = RegisteredStyle{
		Props:         props,
		Inherited:     inherited,
		Remaps:        remaps,
		WidgetClasses: widgetClasses,
	}
	return dirty, nil
}

// resolveExtension prepends the base properties of every extended style.
func (t *Table) resolveExtension(reg types.StyleRegistration, refs []types.StyleID, base []types.StyleProp) ([]types.StyleProp, error) {
	if len(refs) == 0 {
		return base, nil
	}

	var props []types.StyleProp
	for _, ref := range refs {
		ext, ok := t.styles[ref]
		if !ok {
			return nil, fmt.Errorf("style %d (%q) extends %d: %w", reg.ID, reg.Name, ref, ErrUnknownStyle)
		}
		props = append(props, ext.Props...)
	}
	return append(props, base...), nil
}

// resolveInheritance concatenates the referenced styles' chains, dedupes,
// and appends the registering style's own id last.
func (t *Table) resolveInheritance(reg types.StyleRegistration, refs []types.StyleID) ([]types.StyleID, error) {
	seen := make(map[types.StyleID]struct{})
	var chain []types.StyleID
	for _, ref := range refs {
		parent, ok := t.styles[ref]
		if !ok {
			return nil, fmt.Errorf("style %d (%q) inherits %d: %w", reg.ID, reg.Name, ref, ErrUnknownStyle)
		}
		for _, id := range parent.Inherited {
			if id == reg.ID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			chain = append(chain, id)
		}
	}
	return append(chain, reg.ID), nil
}

// Get returns the resolved style for an id. A miss is a normal empty
// result, not an error.
func (t *Table) Get(id types.StyleID) (RegisteredStyle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.styles[id]
	return s, ok
}

// Remaps returns the class-remap table for a style, or nil when absent.
func (t *Table) Remaps(id types.StyleID) map[types.StyleClassID][]types.StyleClassID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.styles[id].Remaps
}

// WidgetClassesOf returns the widget-class table for a style, or nil when
// absent.
func (t *Table) WidgetClassesOf(id types.StyleID) map[types.WidgetClassID][]types.StyleClassID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.styles[id].WidgetClasses
}

// Len returns the number of registered styles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.styles)
}
