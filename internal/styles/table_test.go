package styles

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomui/loom/internal/shared/types"
)

func baseProp(name string, value any) types.StyleProp {
	return types.StyleProp{Kind: types.PropValue, Name: name, Value: value}
}

func reg(id types.StyleID, name string, props ...types.StyleProp) types.StyleRegistration {
	return types.StyleRegistration{ID: id, Name: name, Props: props}
}

func TestRegisterPlainStyle(t *testing.T) {
	table := NewTable()

	dirty, err := table.Add([]types.StyleRegistration{
		reg(1, "body", baseProp("color", "#fff"), baseProp("size", 14)),
	})
	require.NoError(t, err)
	assert.False(t, dirty)

	s, ok := table.Get(1)
	require.True(t, ok)
	assert.Len(t, s.Props, 2)
	assert.Equal(t, []types.StyleID{1}, s.Inherited)
}

// C extends A and inherits B: props = A.props ++ C.base, inherited chain =
// B.inherited ++ [C].
func TestExtensionAndInheritanceChain(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{
		reg(1, "a", baseProp("color", "red"), baseProp("weight", 700)),
	})
	require.NoError(t, err)
	_, err = table.Add([]types.StyleRegistration{
		reg(2, "b", baseProp("margin", 4)),
	})
	require.NoError(t, err)

	dirty, err := table.Add([]types.StyleRegistration{
		reg(3, "c",
			types.StyleProp{Kind: types.PropExtend, Styles: []types.StyleID{1}},
			types.StyleProp{Kind: types.PropInherit, Styles: []types.StyleID{2}},
			baseProp("padding", 8),
		),
	})
	require.NoError(t, err)
	assert.True(t, dirty, "inheritance change must mark the table dirty")

	c, ok := table.Get(3)
	require.True(t, ok)

	require.Len(t, c.Props, 3)
	assert.Equal(t, "color", c.Props[0].Name)
	assert.Equal(t, "weight", c.Props[1].Name)
	assert.Equal(t, "padding", c.Props[2].Name)

	assert.Equal(t, []types.StyleID{2, 3}, c.Inherited)
}

func TestInheritanceDedupsAndEndsWithSelf(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{reg(1, "a")})
	require.NoError(t, err)
	_, err = table.Add([]types.StyleRegistration{
		reg(2, "b", types.StyleProp{Kind: types.PropInherit, Styles: []types.StyleID{1}}),
	})
	require.NoError(t, err)

	// c inherits both a and b; a appears in both chains but only once in c's.
	_, err = table.Add([]types.StyleRegistration{
		reg(3, "c", types.StyleProp{Kind: types.PropInherit, Styles: []types.StyleID{1, 2}}),
	})
	require.NoError(t, err)

	c, _ := table.Get(3)
	assert.Equal(t, []types.StyleID{1, 2, 3}, c.Inherited)
}

func TestBatchProcessedInReverse(t *testing.T) {
	table := NewTable()

	// The dependent entry arrives first in the batch; reversal makes the
	// dependency register before it.
	dirty, err := table.Add([]types.StyleRegistration{
		reg(2, "derived", types.StyleProp{Kind: types.PropExtend, Styles: []types.StyleID{1}}, baseProp("size", 12)),
		reg(1, "base", baseProp("color", "blue")),
	})
	require.NoError(t, err)
	assert.False(t, dirty)

	derived, ok := table.Get(2)
	require.True(t, ok)
	require.Len(t, derived.Props, 2)
	assert.Equal(t, "color", derived.Props[0].Name)
	assert.Equal(t, "size", derived.Props[1].Name)
}

func TestExtendUnregisteredStyleFails(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{
		reg(5, "broken", types.StyleProp{Kind: types.PropExtend, Styles: []types.StyleID{99}}),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStyle))
}

func TestInheritUnregisteredStyleFails(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{
		reg(5, "broken", types.StyleProp{Kind: types.PropInherit, Styles: []types.StyleID{42}}),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStyle))
}

func TestLaterDirectiveOverwritesSameKey(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{
		reg(1, "s",
			types.StyleProp{Kind: types.PropRemap, Class: 10, Classes: []types.StyleClassID{1, 2}},
			types.StyleProp{Kind: types.PropRemap, Class: 10, Classes: []types.StyleClassID{3}},
			types.StyleProp{Kind: types.PropWidgetClasses, WidgetClass: 20, Classes: []types.StyleClassID{5}},
			types.StyleProp{Kind: types.PropWidgetClasses, WidgetClass: 20, Classes: []types.StyleClassID{6, 7}},
		),
	})
	require.NoError(t, err)

	assert.Equal(t, []types.StyleClassID{3}, table.Remaps(1)[10])
	assert.Equal(t, []types.StyleClassID{6, 7}, table.WidgetClassesOf(1)[20])
}

func TestReRegistrationReplacesEntry(t *testing.T) {
	table := NewTable()

	_, err := table.Add([]types.StyleRegistration{
		reg(1, "v1", baseProp("color", "red"), baseProp("size", 10)),
	})
	require.NoError(t, err)

	_, err = table.Add([]types.StyleRegistration{
		reg(1, "v2", baseProp("color", "green")),
	})
	require.NoError(t, err)

	s, _ := table.Get(1)
	require.Len(t, s.Props, 1)
	assert.Equal(t, "green", s.Props[0].Value)
}

func TestLookupMissIsBenign(t *testing.T) {
	table := NewTable()

	_, ok := table.Get(404)
	assert.False(t, ok)
	assert.Nil(t, table.Remaps(404))
	assert.Nil(t, table.WidgetClassesOf(404))
}
