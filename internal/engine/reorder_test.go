package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func never(string) bool { return false }

func TestReorderInsertsAfterTarget(t *testing.T) {
	tests := []struct {
		name           string
		source, target string
		want           []string
	}{
		{name: "down to up", source: "1", target: "3", want: []string{"2", "3", "1", "4"}},
		{name: "up to down", source: "4", target: "2", want: []string{"1", "2", "4", "3"}},
		{name: "to bottom", source: "3", target: BottomTarget, want: []string{"3", "1", "2", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sceneWith("1", "2", "3", "4")
			require.True(t, s.Reorder(tt.source, tt.target, never))
			assert.Equal(t, tt.want, s.Roots())
		})
	}
}

func TestReorderRejectsStaleIDs(t *testing.T) {
	s := sceneWith("1", "2")
	assert.False(t, s.Reorder("missing", "1", never))
	assert.False(t, s.Reorder("1", "missing", never))
	assert.False(t, s.Reorder("1", "1", never))
	assert.Equal(t, []string{"1", "2"}, s.Roots())
}

func TestReorderIntoExpandedGroup(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("g", []string{"a", "b"}))
	expanded := func(id string) bool { return id == "g" }

	require.True(t, s.Reorder("c", "g", expanded))

	assert.Equal(t, []string{"g"}, s.Roots())
	assert.Equal(t, []string{"a", "b", "c"}, s.Get("g").(*Group).Children)
	assert.Equal(t, "g", s.Parent("c"))
}

func TestReorderNextToCollapsedGroup(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("g", []string{"a", "b"}))

	require.True(t, s.Reorder("c", "g", never))

	assert.Equal(t, []string{"g", "c"}, s.Roots())
	assert.Equal(t, []string{"a", "b"}, s.Get("g").(*Group).Children)
}

func TestReorderOutOfGroup(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("g", []string{"a", "b"}))

	require.True(t, s.Reorder("a", "c", never))

	assert.Equal(t, []string{"g", "c", "a"}, s.Roots())
	assert.Equal(t, []string{"b"}, s.Get("g").(*Group).Children)
	assert.Equal(t, "", s.Parent("a"))
	assert.True(t, s.IsRoot("a"))
}

func TestReorderWithinGroup(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("g", []string{"a", "b", "c"}))

	require.True(t, s.Reorder("a", "c", never))

	assert.Equal(t, []string{"b", "c", "a"}, s.Get("g").(*Group).Children)
}

func TestReorderRefusesCycles(t *testing.T) {
	s := sceneWith("a", "b", "c")
	require.True(t, s.GroupShapes("inner", []string{"a", "b"}))
	require.True(t, s.GroupShapes("outer", []string{"inner", "c"}))
	always := func(string) bool { return true }

	assert.False(t, s.Reorder("outer", "inner", always), "a group cannot move into its own child")
	assert.False(t, s.Reorder("outer", "a", always), "nor next to a deeper descendant")
	assert.False(t, s.Reorder("inner", "a", always))

	assert.Equal(t, []string{"outer"}, s.Roots())
	assert.Equal(t, []string{"inner", "c"}, s.Get("outer").(*Group).Children)
}

func TestFrontAndBackAreRootOnly(t *testing.T) {
	s := sceneWith("a", "b", "c", "d")
	require.True(t, s.GroupShapes("g", []string{"c", "d"}))

	require.True(t, s.MoveToBack("g"))
	assert.Equal(t, []string{"g", "a", "b"}, s.Roots())
	require.True(t, s.MoveToFront("a"))
	assert.Equal(t, []string{"g", "b", "a"}, s.Roots())

	assert.False(t, s.MoveToFront("c"))
	assert.False(t, s.MoveToBack("missing"))
}

func TestMoveForwardAndBackward(t *testing.T) {
	s := sceneWith("a", "b", "c")

	require.True(t, s.MoveForward("a"))
	assert.Equal(t, []string{"b", "a", "c"}, s.Roots())
	require.True(t, s.MoveBackward("c"))
	assert.Equal(t, []string{"b", "c", "a"}, s.Roots())

	assert.False(t, s.MoveForward("a"), "already on top")
	assert.False(t, s.MoveBackward("b"), "already at the bottom")
}
