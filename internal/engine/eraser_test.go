package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("split_%d", n)
	}
}

func straightPath(id string) *Path {
	var pts []r2.Vec
	for x := 0.0; x <= 40; x += 10 {
		pts = append(pts, r2.Vec{X: x})
	}
	return NewPath(id, pts...)
}

func TestErasePointsSplitsRuns(t *testing.T) {
	s := NewScene()
	p := straightPath("p")
	p.Style.StrokeColor = "#ff0000"
	s.Add(p)
	s.Add(NewRectangle("above", 0, 0, 1, 1))

	changed, created := s.ErasePoints("p", 20, 0, 5, sequentialIDs())

	require.True(t, changed)
	assert.Equal(t, []string{"split_1"}, created)
	assert.Equal(t, []r2.Vec{{X: 0}, {X: 10}}, p.Points)
	split := s.Get("split_1").(*Path)
	assert.Equal(t, []r2.Vec{{X: 30}, {X: 40}}, split.Points)
	assertAt(t, 30, 0, split.X, split.Y)
	assert.Equal(t, "#ff0000", split.Style.StrokeColor)
	assert.Equal(t, []string{"p", "split_1", "above"}, s.Roots())
}

func TestErasePointsMissOrWrongKind(t *testing.T) {
	s := NewScene()
	s.Add(straightPath("p"))
	s.Add(NewRectangle("rect", 0, 0, 10, 10))

	changed, _ := s.ErasePoints("p", 100, 100, 5, sequentialIDs())
	assert.False(t, changed)
	changed, _ = s.ErasePoints("rect", 0, 0, 5, sequentialIDs())
	assert.False(t, changed)
}

func TestErasingEveryPointRemovesPath(t *testing.T) {
	s := NewScene()
	s.Add(straightPath("p"))

	changed, created := s.ErasePoints("p", 20, 0, 100, sequentialIDs())

	assert.True(t, changed)
	assert.Empty(t, created)
	assert.False(t, s.Has("p"))
}

func TestErasingInsideGroupKeepsParent(t *testing.T) {
	s := NewScene()
	s.Add(straightPath("p"))
	s.Add(NewRectangle("r", 0, 50, 10, 10))
	require.True(t, s.GroupShapes("g", []string{"p", "r"}))

	_, created := s.ErasePoints("p", 20, 0, 5, sequentialIDs())

	require.Len(t, created, 1)
	assert.Equal(t, "g", s.Parent(created[0]))
	assert.Equal(t, []string{"p", created[0], "r"}, s.Get("g").(*Group).Children)
}

func TestEngineErasePathIsUndoable(t *testing.T) {
	e := NewEngine()
	e.AddShape(straightPath("p"))

	require.True(t, e.ErasePath("p", 20, 0))
	assert.Len(t, e.Shapes(), 2)

	require.True(t, e.Undo())
	assert.Len(t, e.Shapes(), 1)
	assert.False(t, e.ErasePath("p", 500, 500))
}
