package engine

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// AnchorHit is the result of snapping a point to the nearest anchor.
type AnchorHit struct {
	ShapeID string
	Anchor  Anchor
}

// SnapToAnchor finds the anchor closest to (x, y) within radius, searching
// every shape including group members. Shapes in exclude are ignored.
func (s *Scene) SnapToAnchor(x, y, radius float64, exclude ...string) (AnchorHit, bool) {
	p := r2.Vec{X: x, Y: y}
	best := math.Inf(1)
	var hit AnchorHit
	s.Walk(func(sh Shape) {
		id := ID(sh)
		if slices.Contains(exclude, id) {
			return
		}
		for _, a := range s.Anchors(sh) {
			d := r2.Norm(r2.Sub(p, r2.Vec{X: a.X, Y: a.Y}))
			if d < radius && d < best {
				best = d
				hit = AnchorHit{ShapeID: id, Anchor: a}
			}
		}
	})
	return hit, !math.IsInf(best, 1)
}

// pin attaches one end of a line to the anchor nearest (x, y), falling
// back to the shape under the point with no anchor, or no pin at all.
func (s *Scene) pin(l *Line, end string, x, y, zoom float64) {
	shapeID, anchorID := "", ""
	if hit, ok := s.SnapToAnchor(x, y, PointHitTolerance/zoom, l.ID); ok {
		shapeID, anchorID = hit.ShapeID, hit.Anchor.ID
		x, y = hit.Anchor.X, hit.Anchor.Y
	} else {
		shapeID = s.HitTest(x, y, zoom, l.ID)
	}

	switch end {
	case AnchorStart:
		l.X, l.Y = x, y
		l.StartShapeID, l.StartAnchorID = shapeID, anchorID
	case AnchorEnd:
		l.EndX, l.EndY = x, y
		l.EndShapeID, l.EndAnchorID = shapeID, anchorID
	}
}

// ConnectLine moves one end of a line to (x, y) and pins it to whatever
// is there.
func (e *Engine) ConnectLine(lineID, end string, x, y float64) bool {
	if end != AnchorStart && end != AnchorEnd {
		return false
	}
	return e.mutate(func() bool {
		l, ok := e.scene.Get(lineID).(*Line)
		if !ok {
			return false
		}
		e.scene.pin(l, end, x, y, e.view.Zoom)
		e.scene.RefreshConnections(lineID)
		return true
	})
}

// SnapToAnchor finds the anchor nearest the world point within the
// handle tolerance at the current zoom.
func (e *Engine) SnapToAnchor(x, y float64, exclude ...string) (AnchorHit, bool) {
	return e.scene.SnapToAnchor(x, y, PointHitTolerance/e.view.Zoom, exclude...)
}

// ErasePath removes the points of a path near (x, y), splitting it as needed.
func (e *Engine) ErasePath(id string, x, y float64) bool {
	return e.mutate(func() bool {
		changed, _ := e.scene.ErasePoints(id, x, y, PointHitTolerance/e.view.Zoom, newShapeID)
		return changed
	})
}
