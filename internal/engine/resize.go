package engine

import (
	"fmt"
	"math"
)

// Resize handles exposed for a single selected shape.
const (
	HandleStart       = "start"
	HandleEnd         = "end"
	HandleTopLeft     = "tl"
	HandleTopRight    = "tr"
	HandleBottomLeft  = "bl"
	HandleBottomRight = "br"
)

// degenerateExtent stands in for a zero polygon width or height when scaling.
const degenerateExtent = 0.001

// Resize moves one handle of a shape to (x, y) and snaps attached
// connections onto the new anchors. Text and paths have no handles.
func (s *Scene) Resize(id, handle string, x, y float64) bool {
	sh := s.Get(id)
	if sh == nil {
		return false
	}

	switch v := sh.(type) {
	case *Line:
		switch handle {
		case HandleStart:
			v.X, v.Y = x, y
		case HandleEnd:
			v.EndX, v.EndY = x, y
		default:
			return false
		}

	case *Rectangle:
		box, ok := moveCorner(Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}, handle, x, y)
		if !ok {
			return false
		}
		v.X, v.Y, v.Width, v.Height = box.X, box.Y, box.Width, box.Height

	case *Circle:
		box, ok := moveCorner(Rect{X: v.X, Y: v.Y, Width: 2 * v.RadiusX, Height: 2 * v.RadiusY}, handle, x, y)
		if !ok {
			return false
		}
		v.X, v.Y = box.X, box.Y
		v.RadiusX, v.RadiusY = box.Width/2, box.Height/2

	case *Polygon:
		old, ok := pointExtent(v.Points)
		if !ok {
			return false
		}
		box, ok := moveCorner(old, handle, x, y)
		if !ok {
			return false
		}
		scalePolygon(v, old, box)

	case *Group:
		old, ok := s.Bounds(v)
		if !ok {
			return false
		}
		box, ok := moveCorner(old, handle, x, y)
		if !ok {
			return false
		}
		return s.ResizeGroup(id, box)

	case *Text, *Path:
		return false

	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}

	s.RefreshConnections(id)
	return true
}

// moveCorner places the named corner of r at (x, y), keeping the opposite
// corner fixed. The result may have negative extents.
func moveCorner(r Rect, handle string, x, y float64) (Rect, bool) {
	x1, y1 := r.X, r.Y
	x2, y2 := r.X+r.Width, r.Y+r.Height
	switch handle {
	case HandleTopLeft:
		x1, y1 = x, y
	case HandleTopRight:
		x2, y1 = x, y
	case HandleBottomLeft:
		x1, y2 = x, y
	case HandleBottomRight:
		x2, y2 = x, y
	default:
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// scalePolygon rescales the points about the old box center into the new box.
func scalePolygon(p *Polygon, old, box Rect) {
	ow, oh := old.Width, old.Height
	if ow == 0 {
		ow = degenerateExtent
	}
	if oh == 0 {
		oh = degenerateExtent
	}
	sx, sy := box.Width/ow, box.Height/oh
	ocx, ocy := old.Center()
	ncx, ncy := box.Center()
	for i, pt := range p.Points {
		p.Points[i].X = ncx + (pt.X-ocx)*sx
		p.Points[i].Y = ncy + (pt.Y-ocy)*sy
	}
	p.X, p.Y = box.X, box.Y
}

// ResizeGroup scales every descendant so the group's bounds become box.
// Coordinates are remapped affinely relative to the old origin; lines
// outside the group that are pinned to it or its members are snapped
// afterwards.
func (s *Scene) ResizeGroup(id string, box Rect) bool {
	g, ok := s.Get(id).(*Group)
	if !ok {
		return false
	}
	old, ok := s.Bounds(g)
	if !ok {
		return false
	}

	m := Remap(old, box)
	g.X, g.Y = m.Apply(g.X, g.Y)
	for _, d := range s.Descendants(id) {
		applyScale(d, m)
	}
	s.RefreshConnections(id)
	return true
}

func applyScale(sh Shape, m Affine) {
	sx, sy := m.Scale.X, m.Scale.Y
	b := sh.Common()
	b.X, b.Y = m.Apply(b.X, b.Y)
	switch v := sh.(type) {
	case *Line:
		v.EndX, v.EndY = m.Apply(v.EndX, v.EndY)
	case *Rectangle:
		v.Width *= sx
		v.Height *= sy
	case *Circle:
		v.RadiusX *= sx
		v.RadiusY *= sy
	case *Text:
		v.FontSize *= math.Abs(sy)
	case *Path:
		for i, p := range v.Points {
			v.Points[i].X, v.Points[i].Y = m.Apply(p.X, p.Y)
		}
	case *Polygon:
		for i, p := range v.Points {
			v.Points[i].X, v.Points[i].Y = m.Apply(p.X, p.Y)
		}
	case *Group:
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
}
