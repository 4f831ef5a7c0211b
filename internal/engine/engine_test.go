package engine

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomui/loom/internal/infrastructure/config"
	"github.com/loomui/loom/internal/logging"
	"github.com/loomui/loom/internal/shared/types"
	"github.com/loomui/loom/internal/styles"
	"github.com/loomui/loom/internal/tree"
	"github.com/loomui/loom/internal/widget"
)

type recWidget struct {
	*widget.Base
	reapplies int
}

func (r *recWidget) ReapplyStyles() { r.reapplies++ }

type recHooks struct {
	mounted []types.WidgetID
	batches [][]types.StyleRegistration
}

func newTestEngine(t *testing.T) (*Engine, map[types.WidgetID]*recWidget, *recHooks) {
	t.Helper()

	widgets := make(map[types.WidgetID]*recWidget)
	registry := widget.NewRegistry()
	registry.Register("box", func(ctx widget.BuildContext, _ io.Reader) (widget.Widget, error) {
		w := &recWidget{Base: widget.NewBase(ctx.WidgetID, ctx.ChannelID)}
		widgets[ctx.WidgetID] = w
		return w, nil
	})
	registry.RegisterClass(1, "box")

	rec := &recHooks{}
	hooks := Hooks{
		EmptyWidget: func(id types.WidgetID) widget.Widget {
			w := &recWidget{Base: widget.NewBase(id, 0)}
			widgets[id] = w
			return w
		},
		MountRoot: func(root widget.Widget) {
			rec.mounted = append(rec.mounted, root.ID())
		},
		AddStyles: func(batch []types.StyleRegistration) {
			rec.batches = append(rec.batches, batch)
		},
	}

	return New(registry, hooks, logging.NewNop()), widgets, rec
}

func materialize(t *testing.T, e *Engine, widgetID types.WidgetID, classID types.ClassID, channel types.ChannelID) {
	t.Helper()
	payload, err := sonic.Marshal(types.CreateWidget{ClassID: classID, WidgetID: widgetID})
	require.NoError(t, err)
	_, err = e.MaterializeChannel(channel, types.GlobalID(channel), bytes.NewReader(payload))
	require.NoError(t, err)
}

func TestMaterializeChannel(t *testing.T) {
	e, _, _ := newTestEngine(t)

	payload, _ := sonic.Marshal(types.CreateWidget{ClassID: 1, WidgetID: 7})
	bound, err := e.MaterializeChannel(3, 30, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, types.ChannelID(3), bound)
	assert.Equal(t, 1, e.Tree().Len())
}

func TestMaterializeUnregisteredClassFailsChannel(t *testing.T) {
	e, _, _ := newTestEngine(t)

	payload, _ := sonic.Marshal(types.CreateWidget{ClassID: 99, WidgetID: 7})
	_, err := e.MaterializeChannel(3, 30, bytes.NewReader(payload))
	require.Error(t, err)
	assert.True(t, errors.Is(err, widget.ErrNoBuilder))

	// No node may be inserted on failure.
	assert.Equal(t, 0, e.Tree().Len())
}

func TestMaterializeMalformedRecord(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.MaterializeChannel(3, 30, bytes.NewReader([]byte("{nope")))
	require.Error(t, err)
	assert.Equal(t, 0, e.Tree().Len())
}

func TestMountRootInvokesHook(t *testing.T) {
	e, _, rec := newTestEngine(t)
	materialize(t, e, 7, 1, 3)

	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpMountRoot, WidgetID: 7}))
	assert.Equal(t, []types.WidgetID{7}, rec.mounted)
}

func TestMountUnknownRootIsFatal(t *testing.T) {
	e, _, rec := newTestEngine(t)

	err := e.Dispatch(types.Instruction{Op: types.OpMountRoot, WidgetID: 42})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tree.ErrNoSuchWidget))
	assert.Empty(t, rec.mounted)
}

func TestFrameFlagYieldsExactlyOneRender(t *testing.T) {
	e, _, _ := newTestEngine(t)

	assert.False(t, e.ShouldRenderFrame())

	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpRequestFrame}))
	assert.True(t, e.ShouldRenderFrame())
	assert.False(t, e.ShouldRenderFrame(), "second poll without a request must be false")

	// Repeated requests within one cycle collapse into a single render.
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpRequestFrame}))
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpRequestFrame}))
	assert.True(t, e.ShouldRenderFrame())
	assert.False(t, e.ShouldRenderFrame())
}

func TestSetAndUpdateChildrenInstructions(t *testing.T) {
	e, _, _ := newTestEngine(t)
	materialize(t, e, 1, 1, 10)
	materialize(t, e, 2, 1, 11)
	materialize(t, e, 3, 1, 12)

	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpSetChildren, WidgetID: 1, Children: []types.WidgetID{2, 3},
	}))
	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpUpdateChildren, WidgetID: 1, Ops: []types.ChildOp{
			{Kind: types.ChildNoOp, Count: 1},
			{Kind: types.ChildRemove, Count: 1},
		},
	}))

	n, ok := e.Tree().Get(1)
	require.True(t, ok)
	assert.Equal(t, []types.WidgetID{2}, n.Children)
}

func TestAddStylesInvokesHook(t *testing.T) {
	e, _, rec := newTestEngine(t)

	batch := []types.StyleRegistration{
		{ID: 1, Name: "body", Props: []types.StyleProp{{Kind: types.PropValue, Name: "color", Value: "red"}}},
	}
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpAddStyles, Styles: batch}))

	require.Len(t, rec.batches, 1)
	_, ok := e.Styles().Get(1)
	assert.True(t, ok)
}

func TestAddStylesFailureDoesNotInvokeHook(t *testing.T) {
	e, _, rec := newTestEngine(t)

	err := e.Dispatch(types.Instruction{Op: types.OpAddStyles, Styles: []types.StyleRegistration{
		{ID: 2, Props: []types.StyleProp{{Kind: types.PropExtend, Styles: []types.StyleID{77}}}},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, styles.ErrUnknownStyle))
	assert.Empty(t, rec.batches)
}

func TestInheritanceChangeReappliesTree(t *testing.T) {
	e, widgets, _ := newTestEngine(t)
	materialize(t, e, 1, 1, 10)
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpMountRoot, WidgetID: 1}))

	// A plain batch does not trigger a walk.
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpAddStyles, Styles: []types.StyleRegistration{
		{ID: 1, Name: "a"},
	}}))
	assert.Equal(t, 0, widgets[1].reapplies)

	// An inheriting batch does.
	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpAddStyles, Styles: []types.StyleRegistration{
		{ID: 2, Name: "b", Props: []types.StyleProp{{Kind: types.PropInherit, Styles: []types.StyleID{1}}}},
	}}))
	assert.Equal(t, 1, widgets[1].reapplies)
}

func TestThemeChangesReapplyMountedTree(t *testing.T) {
	e, widgets, _ := newTestEngine(t)
	materialize(t, e, 1, 1, 10)

	// Unmounted: activation rebuilds the active theme but walks nothing.
	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpActivateTheme, ThemeID: 1,
		Theme: map[types.WidgetClassID][]types.StyleClassID{10: {1, 2}},
	}))
	assert.Equal(t, 0, widgets[1].reapplies)
	assert.Equal(t, []types.StyleClassID{1, 2}, e.Themes().Apply(10))

	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpMountRoot, WidgetID: 1}))
	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpActivateTheme, ThemeID: 2,
		Theme: map[types.WidgetClassID][]types.StyleClassID{10: {2, 3}},
	}))
	assert.Equal(t, 1, widgets[1].reapplies)
	assert.Equal(t, []types.StyleClassID{1, 2, 3}, e.Themes().Apply(10))

	require.NoError(t, e.Dispatch(types.Instruction{Op: types.OpDeactivateTheme, ThemeID: 1}))
	assert.Equal(t, 2, widgets[1].reapplies)
	assert.Equal(t, []types.StyleClassID{2, 3}, e.Themes().Apply(10))
}

func TestRegisterWidgetClassInstruction(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpRegisterClass, ClassID: 5, ClassName: "box",
	}))

	payload, _ := sonic.Marshal(types.CreateWidget{ClassID: 5, WidgetID: 9})
	_, err := e.MaterializeChannel(4, 40, bytes.NewReader(payload))
	require.NoError(t, err)
}

func TestAddLayoutIDsIsAcceptedNoOp(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpAddLayoutIDs, LayoutIDs: []types.LayoutID{1, 2, 3},
	}))
}

func TestUnknownInstruction(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.Dispatch(types.Instruction{Op: "defragment"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownInstruction))
}

func TestPayloadLimits(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.WithLimits(config.EngineConfig{MaxStyleBatch: 1, MaxChildOps: 1})

	err := e.Dispatch(types.Instruction{Op: types.OpAddStyles, Styles: []types.StyleRegistration{
		{ID: 1}, {ID: 2},
	}})
	assert.True(t, errors.Is(err, ErrBatchTooLarge))

	materialize(t, e, 1, 1, 10)
	err = e.Dispatch(types.Instruction{Op: types.OpUpdateChildren, WidgetID: 1, Ops: []types.ChildOp{
		{Kind: types.ChildNoOp}, {Kind: types.ChildNoOp},
	}})
	assert.True(t, errors.Is(err, ErrBatchTooLarge))
}

// Closing a widget's channel evicts only that node. Parents keep the
// dangling child id; the transport closes descendant channels itself.
func TestChannelClosedLeavesDanglingReference(t *testing.T) {
	e, _, _ := newTestEngine(t)
	materialize(t, e, 1, 1, 10)
	materialize(t, e, 2, 1, 11)
	require.NoError(t, e.Dispatch(types.Instruction{
		Op: types.OpSetChildren, WidgetID: 1, Children: []types.WidgetID{2},
	}))

	e.ChannelClosed(2)

	n, ok := e.Tree().Get(1)
	require.True(t, ok)
	assert.Equal(t, []types.WidgetID{2}, n.Children)
	assert.Nil(t, e.Tree().Resolve(2))
}
