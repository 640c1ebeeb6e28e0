package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackboard/blackboard/internal/document"
)

// testCatalog runs the behavior every Catalog shares.
func testCatalog(t *testing.T, c Catalog) {
	t.Helper()
	ctx := context.Background()

	assert.Equal(t, "main.json", c.Current())

	doc, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, doc.Count(), "a new board starts empty")

	doc.Shapes = append(doc.Shapes, document.ShapeRecord{Type: document.KindRectangle, ID: "r", Width: 10, Height: 5})
	doc.View.Zoom = 2
	require.NoError(t, c.Save(ctx, doc))
	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	b, err := c.Create(ctx, " second ")
	require.NoError(t, err)
	assert.Equal(t, Board{Name: "second.json"}, b)
	_, err = c.Create(ctx, "second.json")
	assert.ErrorIs(t, err, ErrBoardExists)
	_, err = c.Create(ctx, "../escape")
	assert.ErrorIs(t, err, ErrInvalidName)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Board{{Name: "main.json", Current: true}, {Name: "second.json"}}, list)

	require.NoError(t, c.Switch(ctx, "second"))
	assert.Equal(t, "second.json", c.Current())
	other, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, other.Count())
	assert.ErrorIs(t, c.Switch(ctx, "missing"), ErrBoardNotFound)

	require.NoError(t, c.Delete(ctx, "second.json"))
	assert.Equal(t, "main.json", c.Current(), "deleting the current board falls back to the first one left")
	assert.ErrorIs(t, c.Delete(ctx, "second.json"), ErrBoardNotFound)

	require.NoError(t, c.Delete(ctx, "main.json"))
	assert.Equal(t, DefaultBoard, c.Current(), "with nothing left a default board is created")
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Board{{Name: DefaultBoard, Current: true}}, list)
}

func TestBoardName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "plan", want: "plan.json"},
		{in: "plan.json", want: "plan.json"},
		{in: "  spaced  ", want: "spaced.json"},
		{in: "", wantErr: true},
		{in: ".json", wantErr: true},
		{in: "a/b", wantErr: true},
		{in: `a\b`, wantErr: true},
		{in: "..", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := BoardName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
