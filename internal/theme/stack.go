// Package theme folds activatable theme layers into one active
// widget-class to style-class mapping.
package theme

import (
	"sync"

	"github.com/loomui/loom/internal/shared/types"
)

// Mapping assigns style classes to widget classes for one theme layer.
type Mapping map[types.WidgetClassID][]types.StyleClassID

type layer struct {
	id      types.ThemeID
	mapping Mapping
}

// Stack is an ordered sequence of theme layers. The active theme is purely
// derived: the fold of all layers in activation order, deduplicated per
// widget class while preserving first-seen order.
type Stack struct {
	mu     sync.RWMutex
	layers []layer
	active Mapping
}

// NewStack creates an empty theme stack.
func NewStack() *Stack {
	return &Stack{active: make(Mapping)}
}

// Activate appends a theme layer and rebuilds the active theme.
func (s *Stack) Activate(id types.ThemeID, mapping Mapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers, layer{id: id, mapping: mapping})
	s.rebuild()
}

// Deactivate removes all layers with the given id and rebuilds.
func (s *Stack) Deactivate(id types.ThemeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.layers[:0]
	for _, l := range s.layers {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	s.layers = kept
	s.rebuild()
}

// Apply returns the active theme's style classes for a widget class, or
// nil when absent. Style resolution prepends these ahead of explicitly
// assigned classes.
func (s *Stack) Apply(widgetClass types.WidgetClassID) []types.StyleClassID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[widgetClass]
}

// Len returns the number of active layers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// rebuild folds the layers in activation order: a later layer's classes
// append after earlier ones for the same widget class, repeated classes do
// not duplicate. Caller holds the write lock.
func (s *Stack) rebuild() {
	active := make(Mapping)
	seen := make(map[types.WidgetClassID]map[types.StyleClassID]struct{})

	for _, l := range s.layers {
		for widgetClass, classes := range l.mapping {
			dedup := seen[widgetClass]
			if dedup == nil {
				dedup = make(map[types.StyleClassID]struct{})
				seen[widgetClass] = dedup
			}
			for _, class := range classes {
				if _, dup := dedup[class]; dup {
					continue
				}
				dedup[class] = struct{}{}
				active[widgetClass] = append(active[widgetClass], class)
			}
		}
	}
	s.active = active
}
