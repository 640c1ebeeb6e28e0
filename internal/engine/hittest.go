package engine

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Screen-space tolerances, divided by the zoom before use.
const (
	LineHitTolerance   = 5.0
	PointHitTolerance  = 10.0
	HandleHitTolerance = 10.0
)

// HitTest returns the ID of the topmost root shape under (x, y), or "".
// A hit on any descendant of a group reports the group.
func (s *Scene) HitTest(x, y, zoom float64, exclude ...string) string {
	if zoom <= 0 {
		zoom = 1
	}
	p := r2.Vec{X: x, Y: y}
	for i := len(s.roots) - 1; i >= 0; i-- {
		id := s.roots[i]
		if slices.Contains(exclude, id) {
			continue
		}
		sh := s.shapes[id]
		if sh != nil && s.hit(sh, p, zoom) {
			return id
		}
	}
	return ""
}

func (s *Scene) hit(sh Shape, p r2.Vec, zoom float64) bool {
	switch v := sh.(type) {
	case *Rectangle:
		return Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}.Normalize().Contains(p.X, p.Y)
	case *Circle:
		if v.RadiusX == 0 || v.RadiusY == 0 {
			return false
		}
		cx, cy := v.X+v.RadiusX, v.Y+v.RadiusY
		nx := (p.X - cx) / v.RadiusX
		ny := (p.Y - cy) / v.RadiusY
		return nx*nx+ny*ny <= 1
	case *Line:
		a := r2.Vec{X: v.X, Y: v.Y}
		b := r2.Vec{X: v.EndX, Y: v.EndY}
		if a == b {
			return r2.Norm(r2.Sub(p, a)) < LineHitTolerance/zoom
		}
		return segmentDistance(p, a, b) < LineHitTolerance/zoom
	case *Text:
		return textBox(v).Contains(p.X, p.Y)
	case *Path:
		return pathHit(v.Points, p, zoom)
	case *Polygon:
		return pointInPolygon(v.Points, p)
	case *Group:
		for _, cid := range v.Children {
			if child := s.shapes[cid]; child != nil && s.hit(child, p, zoom) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
}

func pathHit(points []r2.Vec, p r2.Vec, zoom float64) bool {
	for _, q := range points {
		if r2.Norm(r2.Sub(p, q)) < PointHitTolerance/zoom {
			return true
		}
	}
	for i := 1; i < len(points); i++ {
		if segmentDistance(p, points[i-1], points[i]) < LineHitTolerance/zoom {
			return true
		}
	}
	return false
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = max(0, min(1, t))
	proj := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, proj))
}

// pointInPolygon is the even-odd ray cast.
func pointInPolygon(points []r2.Vec, p r2.Vec) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := points[i], points[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// MarqueeHits returns the root shapes whose bounds overlap the rect, in z-order.
func (s *Scene) MarqueeHits(r Rect) []string {
	r = r.Normalize()
	var ids []string
	for _, id := range s.roots {
		sh := s.shapes[id]
		if sh == nil {
			continue
		}
		if b, ok := s.Bounds(sh); ok && b.Overlaps(r) {
			ids = append(ids, id)
		}
	}
	return ids
}

// HandleAt returns the resize handle of sh under (x, y), or "".
func (s *Scene) HandleAt(sh Shape, x, y, zoom float64) string {
	if zoom <= 0 {
		zoom = 1
	}
	threshold := HandleHitTolerance / zoom
	p := r2.Vec{X: x, Y: y}
	near := func(hx, hy float64) bool {
		return r2.Norm(r2.Sub(p, r2.Vec{X: hx, Y: hy})) < threshold
	}

	if l, ok := sh.(*Line); ok {
		switch {
		case near(l.X, l.Y):
			return HandleStart
		case near(l.EndX, l.EndY):
			return HandleEnd
		}
		return ""
	}

	var box Rect
	switch v := sh.(type) {
	case *Rectangle:
		box = Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}
	case *Circle:
		box = Rect{X: v.X, Y: v.Y, Width: 2 * v.RadiusX, Height: 2 * v.RadiusY}
	case *Polygon, *Group:
		b, ok := s.Bounds(v)
		if !ok {
			return ""
		}
		box = b
	case *Text, *Path:
		return ""
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}

	x1, y1 := box.X, box.Y
	x2, y2 := box.X+box.Width, box.Y+box.Height
	switch {
	case near(x1, y1):
		return HandleTopLeft
	case near(x2, y1):
		return HandleTopRight
	case near(x1, y2):
		return HandleBottomLeft
	case near(x2, y2):
		return HandleBottomRight
	}
	return ""
}
