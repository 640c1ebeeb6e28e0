package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func assertAt(t *testing.T, wantX, wantY, gotX, gotY float64, msgAndArgs ...any) {
	t.Helper()
	if !scalar.EqualWithinAbs(wantX, gotX, eps) || !scalar.EqualWithinAbs(wantY, gotY, eps) {
		assert.Failf(t, "point mismatch", "want (%v, %v), got (%v, %v) %v", wantX, wantY, gotX, gotY, msgAndArgs)
	}
}

func pinned(id string, x, y, endX, endY float64, startShape, startAnchor, endShape, endAnchor string) *Line {
	l := NewLine(id, x, y, endX, endY)
	l.StartShapeID, l.StartAnchorID = startShape, startAnchor
	l.EndShapeID, l.EndAnchorID = endShape, endAnchor
	return l
}

func TestTranslateMovesEveryPositionalField(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect", 10, 20, 30, 40)
	line := NewLine("line", 0, 0, 10, 10)
	poly := NewPolygon("poly", PolygonTriangle, r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0}, r2.Vec{X: 5, Y: 8})
	path := NewPath("path", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2, Y: 3})
	circle := NewCircle("circle", 5, 5, 3, 2)
	text := NewText("text", 7, 7, "hi")
	for _, sh := range []Shape{rect, line, poly, path, circle, text} {
		s.Add(sh)
	}

	for _, id := range s.Roots() {
		require.True(t, s.Translate(id, 5, -3, nil))
	}

	assertAt(t, 15, 17, rect.X, rect.Y)
	assert.Equal(t, 30.0, rect.Width)
	assert.Equal(t, 40.0, rect.Height)
	assertAt(t, 5, -3, line.X, line.Y)
	assertAt(t, 15, 7, line.EndX, line.EndY)
	assert.Equal(t, []r2.Vec{{X: 5, Y: -3}, {X: 15, Y: -3}, {X: 10, Y: 5}}, poly.Points)
	assert.Equal(t, []r2.Vec{{X: 6, Y: -2}, {X: 7, Y: 0}}, path.Points)
	assertAt(t, 10, 2, circle.X, circle.Y)
	assertAt(t, 12, 4, text.X, text.Y)
}

func TestTranslateUnknownShapeIsNoop(t *testing.T) {
	s := NewScene()
	assert.False(t, s.Translate("missing", 1, 1, nil))
}

func TestPinnedLineFollowsShape(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect", 0, 0, 100, 100)
	line := pinned("line", 100, 50, 200, 50, "rect", AnchorMiddleRight, "", "")
	s.Add(rect)
	s.Add(line)

	s.Translate("rect", 10, 20, nil)

	x, y, ok := s.AnchorPoint(rect, AnchorMiddleRight)
	require.True(t, ok)
	assertAt(t, x, y, line.X, line.Y)
	assertAt(t, 200, 50, line.EndX, line.EndY, "free end stays")
}

func TestChainPropagation(t *testing.T) {
	// b is pinned to a, c is pinned to b's moving end.
	s := NewScene()
	s.Add(NewRectangle("a", 0, 0, 100, 100))
	b := pinned("b", 100, 50, 200, 50, "a", AnchorMiddleRight, "", "")
	c := pinned("c", 100, 50, 100, 150, "b", AnchorStart, "", "")
	s.Add(b)
	s.Add(c)

	s.Translate("a", 10, 5, nil)

	assertAt(t, 110, 55, b.X, b.Y)
	assertAt(t, 200, 50, b.EndX, b.EndY)
	assertAt(t, 110, 55, c.X, c.Y)
	assertAt(t, 100, 150, c.EndX, c.EndY)
}

func TestChainStopsAtUnmovedAnchor(t *testing.T) {
	s := NewScene()
	a := NewLine("line_a", 0, 0, 100, 0)
	b := pinned("line_b", 100, 0, 100, 100, "line_a", AnchorEnd, "", "")
	c := pinned("line_c", 100, 100, 200, 100, "line_b", AnchorEnd, "", "")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	s.Translate("line_a", 50, 0, nil)
	assertAt(t, 50, 0, a.X, a.Y)
	assertAt(t, 150, 0, a.EndX, a.EndY)
	assertAt(t, 150, 0, b.X, b.Y)
	assertAt(t, 100, 100, b.EndX, b.EndY)
	assertAt(t, 100, 100, c.X, c.Y, "c hangs off b's end, which did not move")

	s.Translate("line_b", 10, 10, nil)
	assertAt(t, 160, 10, b.X, b.Y)
	assertAt(t, 110, 110, b.EndX, b.EndY)
	assertAt(t, 110, 110, c.X, c.Y)
}

func TestMovingChildLinePullsParentLine(t *testing.T) {
	s := NewScene()
	a := NewLine("line_a", 0, 0, 100, 0)
	b := pinned("line_b", 100, 0, 100, 100, "line_a", AnchorEnd, "", "")
	s.Add(a)
	s.Add(b)

	s.Translate("line_b", 50, 50, nil)

	assertAt(t, 150, 50, b.X, b.Y)
	assertAt(t, 150, 50, a.EndX, a.EndY)
	assertAt(t, 0, 0, a.X, a.Y)
}

func TestConnectorDoesNotDragShape(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect", 0, 0, 100, 100)
	line := pinned("line", 0, 0, 50, 50, "rect", AnchorTopLeft, "", "")
	s.Add(rect)
	s.Add(line)

	s.Translate("line", 10, 10, nil)

	assertAt(t, 0, 0, rect.X, rect.Y)
	assertAt(t, 10, 10, line.X, line.Y)
}

func TestBatchMovesEachShapeOnce(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect1", 100, 100, 100, 100)
	line := pinned("line1", 100, 100, 50, 50, "rect1", AnchorTopLeft, "", "")
	s.Add(rect)
	s.Add(line)

	batch := map[string]bool{"rect1": true, "line1": true}
	s.Translate("rect1", 10, 10, batch)
	s.Translate("line1", 10, 10, batch)

	assertAt(t, 110, 110, rect.X, rect.Y)
	assertAt(t, 110, 110, line.X, line.Y)
	assertAt(t, 60, 60, line.EndX, line.EndY)
}

func TestBatchOfConnectedLines(t *testing.T) {
	s := NewScene()
	a := NewLine("line_a", 0, 0, 100, 0)
	b := pinned("line_b", 100, 0, 100, 100, "line_a", AnchorEnd, "", "")
	s.Add(a)
	s.Add(b)

	batch := map[string]bool{"line_a": true, "line_b": true}
	s.Translate("line_a", 10, 10, batch)
	s.Translate("line_b", 10, 10, batch)

	assertAt(t, 10, 10, a.X, a.Y)
	assertAt(t, 110, 10, a.EndX, a.EndY)
	assertAt(t, 110, 10, b.X, b.Y)
	assertAt(t, 110, 110, b.EndX, b.EndY)
}

func TestCycleTerminates(t *testing.T) {
	s := NewScene()
	l1 := pinned("l1", 0, 0, 100, 0, "l3", AnchorEnd, "l2", AnchorStart)
	l2 := pinned("l2", 100, 0, 100, 100, "l1", AnchorEnd, "l3", AnchorStart)
	l3 := pinned("l3", 100, 100, 0, 0, "l2", AnchorEnd, "l1", AnchorStart)
	s.Add(l1)
	s.Add(l2)
	s.Add(l3)

	require.True(t, s.Translate("l1", 5, 5, nil))

	assertAt(t, l1.EndX, l1.EndY, l2.X, l2.Y)
	assertAt(t, l2.EndX, l2.EndY, l3.X, l3.Y)
	assertAt(t, l3.EndX, l3.EndY, l1.X, l1.Y)
}

func TestGroupTranslateCarriesMembersAndAttachments(t *testing.T) {
	s := NewScene()
	s.Add(NewRectangle("r1", 0, 0, 10, 10))
	s.Add(NewRectangle("r2", 50, 0, 10, 10))
	member := pinned("member", 50, 0, 100, 100, "r2", AnchorTopLeft, "", "")
	onGroup := pinned("on_group", 0, 0, -50, -50, "g", AnchorTopLeft, "", "")
	s.Add(member)
	s.Add(onGroup)
	require.True(t, s.GroupShapes("g", []string{"r1", "r2"}))

	s.Translate("g", 5, 5, nil)

	assertAt(t, 5, 5, s.Get("r1").Common().X, s.Get("r1").Common().Y)
	assertAt(t, 55, 5, member.X, member.Y)
	assertAt(t, 100, 100, member.EndX, member.EndY)
	assertAt(t, 5, 5, onGroup.X, onGroup.Y)
	assertAt(t, -50, -50, onGroup.EndX, onGroup.EndY)
}

func TestGroupTranslateMovesConnectorBetweenMembers(t *testing.T) {
	s := NewScene()
	s.Add(NewRectangle("a", 0, 0, 10, 10))
	s.Add(NewRectangle("b", 100, 0, 10, 10))
	l := pinned("l", 10, 5, 100, 5, "a", AnchorMiddleRight, "b", AnchorMiddleLeft)
	s.Add(l)
	require.True(t, s.GroupShapes("g", []string{"a", "b"}))

	s.Translate("g", 0, 50, nil)

	assertAt(t, 10, 55, l.X, l.Y)
	assertAt(t, 100, 55, l.EndX, l.EndY)
}

func TestResizeGroupSnapsConnectorBetweenMembers(t *testing.T) {
	s := NewScene()
	s.Add(NewRectangle("a", 0, 0, 10, 10))
	s.Add(NewRectangle("b", 100, 0, 10, 10))
	l := pinned("l", 10, 5, 100, 5, "a", AnchorMiddleRight, "b", AnchorMiddleLeft)
	s.Add(l)
	require.True(t, s.GroupShapes("g", []string{"a", "b"}))

	require.True(t, s.ResizeGroup("g", Rect{X: 0, Y: 0, Width: 220, Height: 20}))

	assertAt(t, 20, 10, l.X, l.Y)
	assertAt(t, 200, 10, l.EndX, l.EndY)
}

func TestRefreshConnectionsSnapsToNewAnchors(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect", 0, 0, 100, 100)
	corner := pinned("corner", 100, 100, 200, 200, "rect", AnchorBottomRight, "", "")
	side := pinned("side", 300, 0, 100, 50, "", "", "rect", AnchorMiddleRight)
	s.Add(rect)
	s.Add(corner)
	s.Add(side)

	require.True(t, s.Resize("rect", HandleBottomRight, 150, 120))

	assert.Equal(t, 150.0, rect.Width)
	assert.Equal(t, 120.0, rect.Height)
	assertAt(t, 150, 120, corner.X, corner.Y)
	assertAt(t, 150, 60, side.EndX, side.EndY)
	assertAt(t, 300, 0, side.X, side.Y)
}

func TestRefreshFollowsLineToLine(t *testing.T) {
	s := NewScene()
	a := NewLine("a", 0, 0, 100, 0)
	b := pinned("b", 100, 0, 100, 100, "a", AnchorEnd, "", "")
	c := pinned("c", 100, 0, 0, 100, "b", AnchorStart, "", "")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	require.True(t, s.Resize("a", HandleEnd, 150, 50))

	assertAt(t, 150, 50, b.X, b.Y)
	assertAt(t, 150, 50, c.X, c.Y)
}

func TestRefreshIgnoresUnknownAnchor(t *testing.T) {
	s := NewScene()
	rect := NewRectangle("rect", 0, 0, 10, 10)
	line := pinned("line", 3, 3, 20, 20, "rect", "vertex_9", "", "")
	s.Add(rect)
	s.Add(line)

	s.RefreshConnections("rect")

	assertAt(t, 3, 3, line.X, line.Y)
}
