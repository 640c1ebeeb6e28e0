package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneWith(ids ...string) *Scene {
	s := NewScene()
	for i, id := range ids {
		s.Add(NewRectangle(id, float64(i*20), 0, 10, 10))
	}
	return s
}

func TestGroupNeedsTwoRootShapes(t *testing.T) {
	s := sceneWith("a", "b")
	assert.False(t, s.GroupShapes("g", []string{"a"}))
	assert.False(t, s.GroupShapes("g", []string{"a", "missing"}))
	assert.Equal(t, []string{"a", "b"}, s.Roots())
}

func TestGroupTakesTopmostPosition(t *testing.T) {
	s := sceneWith("a", "b", "c", "d")
	require.True(t, s.GroupShapes("g", []string{"d", "b"}))

	assert.Equal(t, []string{"a", "c", "g"}, s.Roots())
	g := s.Get("g").(*Group)
	assert.Equal(t, []string{"b", "d"}, g.Children, "members keep their relative order")
	assert.Equal(t, "g", s.Parent("b"))
	assertAt(t, 20, 0, g.X, g.Y)
}

func TestGroupUngroupRoundTrip(t *testing.T) {
	s := sceneWith("a", "b", "c", "d")
	before := s.Records()

	require.True(t, s.GroupShapes("g", []string{"b", "c"}))
	assert.Equal(t, []string{"a", "g", "d"}, s.Roots())

	released := s.Ungroup([]string{"g"})
	assert.Equal(t, []string{"b", "c"}, released)
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Roots())
	assert.Equal(t, before, s.Records())
	assert.False(t, s.Has("g"))
}

func TestUngroupKeepsNestedGroups(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("inner", []string{"a", "b"}))
	require.True(t, s.GroupShapes("outer", []string{"inner", "c"}))

	released := s.Ungroup([]string{"outer"})

	assert.Equal(t, []string{"inner", "c"}, released)
	assert.Equal(t, []string{"inner", "c"}, s.Roots())
	assert.Equal(t, []string{"a", "b"}, s.Get("inner").(*Group).Children)
}

func TestUngroupIgnoresNonGroups(t *testing.T) {
	s := sceneWith("a", "b")
	assert.Empty(t, s.Ungroup([]string{"a", "missing"}))
	assert.Equal(t, []string{"a", "b"}, s.Roots())
}

func TestResizeGroupScalesMembers(t *testing.T) {
	s := NewScene()
	r1 := NewRectangle("r1", 0, 0, 10, 10)
	r2 := NewRectangle("r2", 30, 20, 10, 10)
	text := NewText("t", 0, 14, "ab")
	s.Add(r1)
	s.Add(r2)
	s.Add(text)
	outside := pinned("out", 40, 30, 100, 100, "r2", AnchorBottomRight, "", "")
	s.Add(outside)
	require.True(t, s.GroupShapes("g", []string{"r1", "r2", "t"}))

	require.True(t, s.ResizeGroup("g", Rect{X: 0, Y: 0, Width: 80, Height: 60}))

	assertAt(t, 0, 0, r1.X, r1.Y)
	assert.Equal(t, 20.0, r1.Width)
	assert.Equal(t, 20.0, r1.Height)
	assertAt(t, 60, 40, r2.X, r2.Y)
	assert.Equal(t, 20.0, r2.Width)
	assert.Equal(t, 20.0, r2.Height)
	assert.Equal(t, DefaultFontSize*2, text.FontSize)
	assertAt(t, 80, 60, outside.X, outside.Y)

	b, ok := s.Bounds(s.Get("g"))
	require.True(t, ok)
	assert.Equal(t, 80.0, b.Width)
}

func TestResizeGroupKeepsDegenerateAxis(t *testing.T) {
	s := NewScene()
	s.Add(NewLine("l1", 0, 10, 50, 10))
	s.Add(NewLine("l2", 50, 10, 100, 10))
	require.True(t, s.GroupShapes("g", []string{"l1", "l2"}))

	require.True(t, s.ResizeGroup("g", Rect{X: 0, Y: 10, Width: 200, Height: 0}))

	l2 := s.Get("l2").(*Line)
	assertAt(t, 100, 10, l2.X, l2.Y)
	assertAt(t, 200, 10, l2.EndX, l2.EndY)
}

func TestGroupAnchorsSpanDescendants(t *testing.T) {
	s := NewScene()
	s.Add(NewRectangle("r", 0, 0, 10, 10))
	s.Add(NewCircle("c", 40, 40, 5, 5))
	s.Add(NewText("t", 500, 500, "no anchors"))
	require.True(t, s.GroupShapes("g", []string{"r", "c", "t"}))

	x, y, ok := s.AnchorPoint(s.Get("g"), AnchorBottomRight)
	require.True(t, ok)
	assertAt(t, 50, 50, x, y)
	x, y, ok = s.AnchorPoint(s.Get("g"), AnchorTopLeft)
	require.True(t, ok)
	assertAt(t, 0, 0, x, y)
}
