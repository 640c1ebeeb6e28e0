package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/blackboard/blackboard/internal/typeid"
)

var newShapeID = typeid.NewShapeID

type gestureMode int

const (
	gestureNone gestureMode = iota
	gesturePan
	gestureMove
	gestureResize
	gestureMarquee
	gestureDraw
	gestureErase
)

// gesture is the state of one press-drag-release sequence.
type gesture struct {
	mode    gestureMode
	shapeID string
	handle  string

	startX, startY float64 // world
	lastX, lastY   float64 // world
	screenX        float64
	screenY        float64
	panX, panY     float64

	marquee     Rect
	additive    bool
	snapshotted bool
	changed     bool
}

func (g gesture) active() bool { return g.mode != gestureNone }

// Marquee returns the marquee rectangle while a box selection is in progress.
func (e *Engine) Marquee() (Rect, bool) {
	if e.gesture.mode != gestureMarquee {
		return Rect{}, false
	}
	return e.gesture.marquee.Normalize(), true
}

// Press starts a gesture at the screen point. shift is the add/toggle modifier.
func (e *Engine) Press(sx, sy float64, shift bool) {
	if e.gesture.active() {
		e.Cancel()
	}
	x, y := e.ToWorld(sx, sy)
	e.gesture = gesture{
		startX: x, startY: y,
		lastX: x, lastY: y,
		screenX: sx, screenY: sy,
		panX: e.view.PanX, panY: e.view.PanY,
		additive: shift,
	}
	g := &e.gesture

	switch e.tool {
	case ToolHand:
		g.mode = gesturePan
	case ToolSelection:
		e.pressSelect(g, x, y, shift)
	case ToolBoxSelection:
		e.pressBox(g, x, y, shift)
	case ToolLine, ToolRectangle, ToolCircle, ToolPolygon, ToolPen:
		e.pressDraw(g, x, y)
	case ToolEraser:
		g.mode = gestureErase
		e.eraseAt(x, y, true)
	case ToolText:
	}
	e.Notify(false)
}

func (e *Engine) pressSelect(g *gesture, x, y float64, shift bool) {
	if id := e.selection.Single(); id != "" {
		if sh := e.scene.Get(id); sh != nil {
			if h := e.scene.HandleAt(sh, x, y, e.view.Zoom); h != "" {
				g.mode = gestureResize
				g.shapeID = id
				g.handle = h
				return
			}
		}
	}

	hit := e.HitTest(x, y)
	if hit == "" {
		e.selection.Clear()
		g.mode = gesturePan
		return
	}
	switch {
	case shift:
		e.selection.Toggle(hit)
	case !e.selection.Contains(hit):
		e.selection.Set([]string{hit})
	}
	g.mode = gestureMove
	e.BeginTransform()
}

func (e *Engine) pressBox(g *gesture, x, y float64, shift bool) {
	if hit := e.HitTest(x, y); hit != "" && e.selection.Contains(hit) {
		g.mode = gestureMove
		e.BeginTransform()
		return
	}
	g.mode = gestureMarquee
	g.marquee = Rect{X: x, Y: y}
	if !shift {
		e.selection.Clear()
	}
}

func (e *Engine) pressDraw(g *gesture, x, y float64) {
	var sh Shape
	switch e.tool {
	case ToolLine:
		l := NewLine(newShapeID(), x, y, x, y)
		l.LineType = e.lineType
		e.scene.pin(l, AnchorStart, x, y, e.view.Zoom)
		l.EndX, l.EndY = l.X, l.Y
		g.startX, g.startY = l.X, l.Y
		sh = l
	case ToolRectangle:
		sh = NewRectangle(newShapeID(), x, y, 0, 0)
	case ToolCircle:
		sh = NewCircle(newShapeID(), x, y, 0, 0)
	case ToolPolygon:
		p := NewPolygon(newShapeID(), e.polygonType)
		p.X, p.Y = x, y
		sh = p
	case ToolPen:
		sh = NewPath(newShapeID(), r2.Vec{X: x, Y: y})
	}
	if !e.AddShape(sh) {
		return
	}
	g.mode = gestureDraw
	g.shapeID = ID(sh)
	g.changed = true
}

// Drag continues the gesture at the screen point.
func (e *Engine) Drag(sx, sy float64, shift bool) {
	g := &e.gesture
	if !g.active() {
		return
	}
	if g.mode == gesturePan {
		e.view.PanX = g.panX + sx - g.screenX
		e.view.PanY = g.panY + sy - g.screenY
		g.changed = true
		e.Notify(false)
		return
	}

	x, y := e.ToWorld(sx, sy)
	dx, dy := x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y

	switch g.mode {
	case gestureMove:
		if dx == 0 && dy == 0 {
			return
		}
		e.snapshotOnce()
		for _, id := range e.movingRoots() {
			e.scene.Translate(id, dx, dy, e.batch)
		}
	case gestureResize:
		e.snapshotOnce()
		e.scene.Resize(g.shapeID, g.handle, x, y)
	case gestureMarquee:
		g.marquee = RectFromPoints(g.startX, g.startY, x, y)
	case gestureDraw:
		e.dragDraw(g, x, y, shift)
	case gestureErase:
		e.eraseAt(x, y, false)
	}
	e.Notify(false)
}

func (e *Engine) snapshotOnce() {
	g := &e.gesture
	if !g.snapshotted {
		e.Snapshot()
		g.snapshotted = true
	}
	g.changed = true
}

func (e *Engine) dragDraw(g *gesture, x, y float64, shift bool) {
	w, h := x-g.startX, y-g.startY
	switch v := e.scene.Get(g.shapeID).(type) {
	case *Line:
		if shift {
			const step = math.Pi / 4
			angle := math.Round(math.Atan2(h, w)/step) * step
			length := math.Hypot(w, h)
			v.EndX = v.X + length*math.Cos(angle)
			v.EndY = v.Y + length*math.Sin(angle)
		} else {
			v.EndX, v.EndY = x, y
		}
	case *Rectangle:
		if shift {
			w, h = square(w, h)
		}
		v.Width, v.Height = w, h
	case *Circle:
		rx, ry := w/2, h/2
		if shift {
			rx, ry = square(rx, ry)
		}
		v.RadiusX, v.RadiusY = rx, ry
	case *Polygon:
		rx, ry := math.Abs(w), math.Abs(h)
		if shift {
			rx = max(rx, ry)
			ry = rx
		}
		v.Points = PolygonPoints(g.startX, g.startY, rx, ry, v.PolygonType)
		if b, ok := pointExtent(v.Points); ok {
			v.X, v.Y = b.X, b.Y
		}
	case *Path:
		p := r2.Vec{X: x, Y: y}
		if n := len(v.Points); n == 0 || v.Points[n-1] != p {
			v.Points = append(v.Points, p)
		}
	}
}

// square makes both extents the larger magnitude, keeping their signs.
func square(w, h float64) (float64, float64) {
	m := max(math.Abs(w), math.Abs(h))
	return math.Copysign(m, w), math.Copysign(m, h)
}

func (e *Engine) finishDraw(g *gesture) {
	switch v := e.scene.Get(g.shapeID).(type) {
	case *Line:
		e.scene.pin(v, AnchorEnd, v.EndX, v.EndY, e.view.Zoom)
	case *Rectangle:
		r := Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}.Normalize()
		v.X, v.Y, v.Width, v.Height = r.X, r.Y, r.Width, r.Height
	case *Circle:
		r := Rect{X: v.X, Y: v.Y, Width: 2 * v.RadiusX, Height: 2 * v.RadiusY}.Normalize()
		v.X, v.Y = r.X, r.Y
		v.RadiusX, v.RadiusY = r.Width/2, r.Height/2
	}
}

// eraseAt erases under the world point. Paths lose the points in reach;
// other shapes are removed only on press.
func (e *Engine) eraseAt(x, y float64, removeShapes bool) {
	hit := e.HitTest(x, y)
	if hit == "" {
		return
	}
	before, ok := e.capture()
	changed := false
	if _, isPath := e.scene.Get(hit).(*Path); isPath {
		changed, _ = e.scene.ErasePoints(hit, x, y, PointHitTolerance/e.view.Zoom, newShapeID)
	} else if removeShapes {
		changed = e.scene.Remove(hit)
	}
	if !changed {
		return
	}
	g := &e.gesture
	if ok && !g.snapshotted {
		e.history.Commit(before)
		g.snapshotted = true
	}
	g.changed = true
	e.selection.Prune(e.scene)
}

// Release ends the gesture: a marquee selects what it overlaps, a drawn
// shape is finalized and any change is saved.
func (e *Engine) Release() {
	g := e.gesture
	switch g.mode {
	case gestureMarquee:
		hits := e.scene.MarqueeHits(g.marquee)
		if g.additive {
			for _, id := range hits {
				e.selection.Add(id)
			}
		} else {
			e.selection.Set(hits)
		}
	case gestureDraw:
		e.finishDraw(&g)
	}
	e.gesture = gesture{}
	e.batch = nil
	e.Notify(true)
}

// Cancel drops the gesture without finishing it. Changes already applied
// stay and are saved.
func (e *Engine) Cancel() {
	changed := e.gesture.changed
	e.gesture = gesture{}
	e.batch = nil
	e.Notify(changed)
}

// Dragging reports whether a gesture is in progress.
func (e *Engine) Dragging() bool {
	return e.gesture.active()
}
