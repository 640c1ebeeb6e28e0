package engine

import (
	"fmt"
	"strconv"
)

// Anchor is a named point derived from a shape's current geometry.
type Anchor struct {
	ID string
	X  float64
	Y  float64
}

// Anchor names for box-like shapes.
const (
	AnchorTopLeft      = "top_left"
	AnchorTopCenter    = "top_center"
	AnchorTopRight     = "top_right"
	AnchorMiddleRight  = "middle_right"
	AnchorBottomRight  = "bottom_right"
	AnchorBottomCenter = "bottom_center"
	AnchorBottomLeft   = "bottom_left"
	AnchorMiddleLeft   = "middle_left"

	AnchorTop    = "top"
	AnchorRight  = "right"
	AnchorBottom = "bottom"
	AnchorLeft   = "left"

	AnchorStart = "start"
	AnchorEnd   = "end"
)

// TextWidthFactor approximates glyph width as a fraction of the font size.
const TextWidthFactor = 0.6

// Anchors computes the anchors of a shape. Groups derive theirs from the
// box around every descendant anchor; text and paths have none.
func (s *Scene) Anchors(sh Shape) []Anchor {
	switch v := sh.(type) {
	case *Rectangle:
		return boxAnchors(Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height})
	case *Circle:
		cx, cy := v.X+v.RadiusX, v.Y+v.RadiusY
		return []Anchor{
			{ID: AnchorTop, X: cx, Y: cy - v.RadiusY},
			{ID: AnchorRight, X: cx + v.RadiusX, Y: cy},
			{ID: AnchorBottom, X: cx, Y: cy + v.RadiusY},
			{ID: AnchorLeft, X: cx - v.RadiusX, Y: cy},
		}
	case *Polygon:
		anchors := make([]Anchor, len(v.Points))
		for i, p := range v.Points {
			anchors[i] = Anchor{ID: VertexAnchor(i), X: p.X, Y: p.Y}
		}
		return anchors
	case *Line:
		return []Anchor{
			{ID: AnchorStart, X: v.X, Y: v.Y},
			{ID: AnchorEnd, X: v.EndX, Y: v.EndY},
		}
	case *Text, *Path:
		return nil
	case *Group:
		var e extent
		for _, cid := range v.Children {
			child := s.Get(cid)
			if child == nil {
				continue
			}
			for _, a := range s.Anchors(child) {
				e.add(a.X, a.Y)
			}
		}
		box, ok := e.rect()
		if !ok {
			return nil
		}
		return boxAnchors(box)
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
}

// AnchorPoint resolves a single named anchor.
func (s *Scene) AnchorPoint(sh Shape, anchorID string) (float64, float64, bool) {
	if sh == nil || anchorID == "" {
		return 0, 0, false
	}
	for _, a := range s.Anchors(sh) {
		if a.ID == anchorID {
			return a.X, a.Y, true
		}
	}
	return 0, 0, false
}

// VertexAnchor names the anchor of the i-th polygon vertex.
func VertexAnchor(i int) string {
	return "vertex_" + strconv.Itoa(i)
}

func boxAnchors(r Rect) []Anchor {
	x1, y1 := r.X, r.Y
	x2, y2 := r.X+r.Width, r.Y+r.Height
	cx, cy := r.Center()
	return []Anchor{
		{ID: AnchorTopLeft, X: x1, Y: y1},
		{ID: AnchorTopCenter, X: cx, Y: y1},
		{ID: AnchorTopRight, X: x2, Y: y1},
		{ID: AnchorMiddleRight, X: x2, Y: cy},
		{ID: AnchorBottomRight, X: x2, Y: y2},
		{ID: AnchorBottomCenter, X: cx, Y: y2},
		{ID: AnchorBottomLeft, X: x1, Y: y2},
		{ID: AnchorMiddleLeft, X: x1, Y: cy},
	}
}

// Bounds returns the axis-aligned box of a shape. The boolean is false for
// shapes with no geometry, such as an empty group or a path without points.
func (s *Scene) Bounds(sh Shape) (Rect, bool) {
	switch v := sh.(type) {
	case *Rectangle:
		return Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}.Normalize(), true
	case *Circle:
		return Rect{X: v.X, Y: v.Y, Width: 2 * v.RadiusX, Height: 2 * v.RadiusY}.Normalize(), true
	case *Line:
		return RectFromPoints(v.X, v.Y, v.EndX, v.EndY), true
	case *Text:
		return textBox(v), true
	case *Path:
		return pointExtent(v.Points)
	case *Polygon:
		return pointExtent(v.Points)
	case *Group:
		var e extent
		for _, cid := range v.Children {
			child := s.Get(cid)
			if child == nil {
				continue
			}
			if b, ok := s.Bounds(child); ok {
				e.addRect(b)
			}
		}
		return e.rect()
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
}

func textBox(t *Text) Rect {
	return Rect{
		X:      t.X,
		Y:      t.Y,
		Width:  float64(len([]rune(t.Content))) * t.FontSize * TextWidthFactor,
		Height: t.FontSize,
	}
}
