package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/loomui/loom/internal/infrastructure/config"
	"github.com/loomui/loom/internal/infrastructure/monitoring"
	"github.com/loomui/loom/internal/logging"
	"github.com/loomui/loom/internal/shared/types"
	"github.com/loomui/loom/internal/styles"
	"github.com/loomui/loom/internal/theme"
	"github.com/loomui/loom/internal/tree"
	"github.com/loomui/loom/internal/widget"
)

// ErrUnknownInstruction indicates an instruction op the dispatcher does not
// recognize.
var ErrUnknownInstruction = errors.New("unknown instruction op")

// ErrBatchTooLarge indicates a payload exceeding the configured bounds.
var ErrBatchTooLarge = errors.New("instruction payload exceeds configured limit")

// Hooks are the callbacks the embedding application must supply.
type Hooks struct {
	// EmptyWidget builds the root sentinel's placeholder widget.
	EmptyWidget func(types.WidgetID) widget.Widget

	// MountRoot attaches the mounted root widget's renderable output to the
	// host environment.
	MountRoot func(root widget.Widget)

	// AddStyles propagates a processed style batch to the rendering layer.
	// The table has already resolved the batch when this fires.
	AddStyles func(batch []types.StyleRegistration)
}

// Engine owns the four state tables and processes the serial instruction
// stream. All mutation happens on the caller's goroutine; the transport
// delivers instructions strictly in order and never concurrently.
type Engine struct {
	registry *widget.Registry
	styles   *styles.Table
	themes   *theme.Stack
	tree     *tree.Tree

	hooks   Hooks
	limits  config.EngineConfig
	frame   atomic.Bool
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New creates an engine around a builder registry and embedding hooks.
func New(registry *widget.Registry, hooks Hooks, log *logging.Logger) *Engine {
	e := &Engine{
		registry: registry,
		styles:   styles.NewTable(),
		themes:   theme.NewStack(),
		hooks:    hooks,
		limits:   config.EngineConfig{MaxStyleBatch: 4096, MaxChildOps: 65536},
		log:      log,
	}
	e.tree = tree.New(hooks.EmptyWidget(types.RootSentinelID), log)
	return e
}

// WithMetrics adds metrics tracking to the engine.
func (e *Engine) WithMetrics(m *monitoring.Metrics) *Engine {
	e.metrics = m
	return e
}

// WithLimits overrides the default payload bounds.
func (e *Engine) WithLimits(limits config.EngineConfig) *Engine {
	e.limits = limits
	return e
}

// Styles exposes the style table for the embedding application's rendering
// layer.
func (e *Engine) Styles() *styles.Table {
	return e.styles
}

// Themes exposes the theme stack for style resolution in widgets.
func (e *Engine) Themes() *theme.Stack {
	return e.themes
}

// Tree exposes the widget tree. Reads only; mutation belongs to Dispatch.
func (e *Engine) Tree() *tree.Tree {
	return e.tree
}

// Dispatch processes one decoded protocol instruction.
func (e *Engine) Dispatch(instr types.Instruction) error {
	start := time.Now()
	err := e.dispatch(instr)
	if e.metrics != nil {
		op := string(instr.Op)
		e.metrics.InstructionsTotal.WithLabelValues(op).Inc()
		e.metrics.DispatchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			e.metrics.DispatchErrors.WithLabelValues(op).Inc()
		}
		e.metrics.WidgetsLive.Set(float64(e.tree.Len()))
		e.metrics.StylesStored.Set(float64(e.styles.Len()))
	}
	return err
}

func (e *Engine) dispatch(instr types.Instruction) error {
	switch instr.Op {
	case types.OpMountRoot:
		root, err := e.tree.MountRoot(instr.WidgetID)
		if err != nil {
			e.log.Error("mount root failed", zap.Int32("widget_id", int32(instr.WidgetID)), zap.Error(err))
			return err
		}
		if e.hooks.MountRoot != nil {
			e.hooks.MountRoot(root)
		}
		return nil

	case types.OpRequestFrame:
		e.frame.Store(true)
		if e.metrics != nil {
			e.metrics.FramesRequested.Inc()
		}
		return nil

	case types.OpSetChildren:
		return e.tree.SetChildren(instr.WidgetID, instr.Children)

	case types.OpUpdateChildren:
		if len(instr.Ops) > e.limits.MaxChildOps {
			return fmt.Errorf("update children: %d ops: %w", len(instr.Ops), ErrBatchTooLarge)
		}
		return e.tree.UpdateChildren(instr.WidgetID, instr.Ops)

	case types.OpAddStyles:
		return e.addStyles(instr.Styles)

	case types.OpAddLayoutIDs:
		// Layout resolution is not implemented; ids are accepted and dropped.
		e.log.Debug("ignoring layout ids", zap.Int("count", len(instr.LayoutIDs)))
		return nil

	case types.OpActivateTheme:
		e.themes.Activate(instr.ThemeID, theme.Mapping(instr.Theme))
		e.reapplyTree()
		return nil

	case types.OpDeactivateTheme:
		e.themes.Deactivate(instr.ThemeID)
		e.reapplyTree()
		return nil

	case types.OpRegisterClass:
		e.registry.RegisterClass(instr.ClassID, instr.ClassName)
		return nil

	default:
		return fmt.Errorf("op %q: %w", instr.Op, ErrUnknownInstruction)
	}
}

func (e *Engine) addStyles(batch []types.StyleRegistration) error {
	if len(batch) > e.limits.MaxStyleBatch {
		return fmt.Errorf("add styles: %d entries: %w", len(batch), ErrBatchTooLarge)
	}

	dirty, err := e.styles.Add(batch)
	if e.metrics != nil {
		e.metrics.StyleBatches.Inc()
	}
	if err != nil {
		e.log.Error("style batch failed", zap.Int("entries", len(batch)), zap.Error(err))
		return err
	}

	if e.hooks.AddStyles != nil {
		e.hooks.AddStyles(batch)
	}
	if dirty {
		// Inheritance changed; any live widget's resolved classes may
		// depend on a chain that just moved.
		e.reapplyTree()
	}
	return nil
}

func (e *Engine) reapplyTree() {
	if e.tree.ReapplyAll() && e.metrics != nil {
		e.metrics.TreeReapplies.Inc()
	}
}

// ShouldRenderFrame atomically reads and clears the frame-requested flag.
// Every RequestFrame yields exactly one true poll.
func (e *Engine) ShouldRenderFrame() bool {
	return e.frame.Swap(false)
}
