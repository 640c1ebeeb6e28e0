package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyPasteOffsetsAndSelects(t *testing.T) {
	e := NewEngine()
	e.AddShape(NewLine("line", 0, 0, 10, 10))
	e.Select("line")

	require.Equal(t, 1, e.Copy())
	pasted := e.Paste()

	require.Len(t, pasted, 1)
	assert.NotEqual(t, "line", pasted[0])
	assert.Equal(t, pasted, e.Selected())
	l := e.Shape(pasted[0]).(*Line)
	assertAt(t, 20, 20, l.X, l.Y)
	assertAt(t, 30, 30, l.EndX, l.EndY)

	second := e.Paste()
	require.Len(t, second, 1)
	assert.NotEqual(t, pasted[0], second[0], "every paste gets fresh ids")

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	assert.Equal(t, []string{"line"}, e.Scene().Roots())
}

func TestCopyWithNothingSelected(t *testing.T) {
	e := NewEngine()
	e.AddShape(NewLine("line", 0, 0, 10, 10))
	assert.Zero(t, e.Copy())
	assert.Empty(t, e.Clipboard())
}

func TestPasteCarriesInternalPinsOnly(t *testing.T) {
	e := NewEngine()
	e.AddShape(NewRectangle("rect", 0, 0, 100, 100))
	e.AddShape(NewRectangle("elsewhere", 500, 0, 10, 10))
	e.AddShape(pinned("inner", 100, 50, 200, 50, "rect", AnchorMiddleRight, "elsewhere", AnchorLeft))
	e.SelectShapes([]string{"rect", "inner"})

	require.Equal(t, 2, e.Copy())
	pasted := e.Paste()
	require.Len(t, pasted, 2)

	newRect, newLine := pasted[0], e.Shape(pasted[1]).(*Line)
	assert.Equal(t, newRect, newLine.StartShapeID)
	assert.Equal(t, AnchorMiddleRight, newLine.StartAnchorID)
	assert.Empty(t, newLine.EndShapeID, "pins to shapes left behind are dropped")
	assert.Empty(t, newLine.EndAnchorID)

	e.ClearSelection()
	require.True(t, e.Translate(newRect, 10, 0))
	assertAt(t, 130, 70, newLine.X, newLine.Y)
}

func TestPasteGroupReidentifiesMembers(t *testing.T) {
	e := NewEngine()
	e.AddShape(NewRectangle("a", 0, 0, 10, 10))
	e.AddShape(NewRectangle("b", 20, 0, 10, 10))
	groupID := e.Group([]string{"a", "b"})
	require.NotEmpty(t, groupID)

	e.Copy()
	pasted := e.Paste()
	require.Len(t, pasted, 1)

	g := e.Shape(pasted[0]).(*Group)
	require.Len(t, g.Children, 2)
	assert.NotContains(t, g.Children, "a")
	first := e.Shape(g.Children[0]).(*Rectangle)
	assertAt(t, 20, 20, first.X, first.Y)
	assert.Equal(t, pasted[0], e.Scene().Parent(first.ID))
}
