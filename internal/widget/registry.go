package widget

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/loomui/loom/internal/shared/types"
)

// ErrNoBuilder indicates a widget class with no registered builder. This is
// a contract violation between producer and consumer, not a transient
// condition.
var ErrNoBuilder = errors.New("no builder registered for widget class")

// BuildContext carries the channel-scoped identity a builder needs to
// construct a widget.
type BuildContext struct {
	WidgetID  types.WidgetID
	ChannelID types.ChannelID
	GlobalID  types.GlobalID
}

// Builder constructs a widget bound to a channel. The reader is a cursor
// over any pending construction data following the creation record.
type Builder func(ctx BuildContext, r io.Reader) (Widget, error)

// Registry maps widget-class identifiers to builders. Class names are
// registered ahead of runtime by the embedding application; integer class
// ids are assigned by the producer at runtime. The two are combined lazily
// into a cache.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder       // class name -> builder, registered ahead of time
	classes  map[types.ClassID]string // runtime class id -> class name
	cache    map[types.ClassID]Builder
}

// NewRegistry creates an empty widget registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		classes:  make(map[types.ClassID]string),
		cache:    make(map[types.ClassID]Builder),
	}
}

// Register associates a class name with a builder. Last registration for a
// name wins.
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// RegisterClass records the runtime-assigned id for a class name. Must be
// recorded before any Build call using that id.
func (r *Registry) RegisterClass(classID types.ClassID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[classID] = name
}

// Build resolves the class id to a builder and invokes it. The resolved
// builder is cached on success. An unresolvable class id or name is a hard
// error wrapping ErrNoBuilder.
func (r *Registry) Build(classID types.ClassID, widgetID types.WidgetID, channelID types.ChannelID, globalID types.GlobalID, reader io.Reader) (Widget, error) {
	builder, err := r.resolve(classID)
	if err != nil {
		return nil, err
	}

	ctx := BuildContext{
		WidgetID:  widgetID,
		ChannelID: channelID,
		GlobalID:  globalID,
	}
	w, err := builder(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("build widget %d (class %d): %w", widgetID, classID, err)
	}
	return w, nil
}

// ClassName returns the registered name for a runtime class id.
func (r *Registry) ClassName(classID types.ClassID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.classes[classID]
	return name, ok
}

func (r *Registry) resolve(classID types.ClassID) (Builder, error) {
	r.mu.RLock()
	if b, ok := r.cache[classID]; ok {
		r.mu.RUnlock()
		return b, nil
	}
	name, named := r.classes[classID]
	builder, built := r.builders[name]
	r.mu.RUnlock()

	if !named {
		return nil, fmt.Errorf("class id %d unregistered: %w", classID, ErrNoBuilder)
	}
	if !built {
		return nil, fmt.Errorf("class %q (id %d): %w", name, classID, ErrNoBuilder)
	}

	r.mu.Lock()
	r.cache[classID] = builder
	r.mu.Unlock()
	return builder, nil
}
