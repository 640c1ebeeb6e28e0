package engine

import (
	"fmt"
	"slices"
)

// lineEnd names one endpoint of a line.
type lineEnd struct {
	line string
	end  string
}

// propagation carries the state of one top-level translate call. visited
// holds the shapes moved whole and ends the line endpoints moved on their
// own; both are shared by every recursive branch so that connection cycles
// terminate. batch holds shapes the caller moves itself this frame.
type propagation struct {
	scene   *Scene
	batch   map[string]bool
	visited map[string]bool
	ends    map[lineEnd]bool
}

// claim marks an endpoint as moved, reporting false if it already was.
func (p *propagation) claim(line, end string) bool {
	k := lineEnd{line: line, end: end}
	if p.ends[k] {
		return false
	}
	p.ends[k] = true
	return true
}

// Translate moves a shape by (dx, dy) and cascades the delta along the
// connection graph. Shapes in batch are skipped by the cascade because the
// caller translates each of them with the same delta.
func (s *Scene) Translate(id string, dx, dy float64, batch map[string]bool) bool {
	sh := s.Get(id)
	if sh == nil {
		return false
	}
	p := &propagation{
		scene:   s,
		batch:   batch,
		visited: make(map[string]bool),
		ends:    make(map[lineEnd]bool),
	}
	p.translate(sh, dx, dy)

	// A nested shape changes its groups' boxes.
	for _, anc := range s.Ancestors(id) {
		if g := s.Get(anc); g != nil {
			s.refresh(g, p.visited, p.ends)
		}
	}
	return true
}

func (p *propagation) translate(sh Shape, dx, dy float64) {
	moving := append([]Shape{sh}, p.scene.Descendants(ID(sh))...)
	for _, m := range moving {
		p.visited[ID(m)] = true
		shiftOwn(m, dx, dy)
	}
	for _, m := range moving {
		p.propagate(m, dx, dy, nil, "")
	}
}

// propagate moves the pinned ends of lines attached to sh. moved lists the
// anchors of sh that actually moved; nil means all of them.
func (p *propagation) propagate(sh Shape, dx, dy float64, moved []string, callerID string) {
	id := ID(sh)
	for _, l := range p.scene.Lines() {
		if l.ID == id || p.visited[l.ID] || p.batch[l.ID] {
			continue
		}
		var ends []string
		if l.StartShapeID == id && anchorMoved(moved, l.StartAnchorID) && p.claim(l.ID, AnchorStart) {
			l.X += dx
			l.Y += dy
			ends = append(ends, AnchorStart)
		}
		if l.EndShapeID == id && anchorMoved(moved, l.EndAnchorID) && p.claim(l.ID, AnchorEnd) {
			l.EndX += dx
			l.EndY += dy
			ends = append(ends, AnchorEnd)
		}
		if len(ends) == 0 {
			continue
		}
		p.propagate(l, dx, dy, ends, id)
	}

	if l, ok := sh.(*Line); ok {
		p.pull(l, l.StartShapeID, l.StartAnchorID, AnchorStart, moved, callerID, dx, dy)
		p.pull(l, l.EndShapeID, l.EndAnchorID, AnchorEnd, moved, callerID, dx, dy)
	}
}

// pull drags the endpoint of the line l is pinned to, so a moved connector
// keeps its parent line attached. Only line targets are pulled.
func (p *propagation) pull(l *Line, targetID, targetAnchor, end string, moved []string, callerID string, dx, dy float64) {
	if targetID == "" || !anchorMoved(moved, end) {
		return
	}
	if targetID == callerID || p.batch[targetID] || p.visited[targetID] {
		return
	}
	target, ok := p.scene.Get(targetID).(*Line)
	if !ok || (targetAnchor != AnchorStart && targetAnchor != AnchorEnd) {
		return
	}
	if !p.claim(targetID, targetAnchor) {
		return
	}
	if targetAnchor == AnchorStart {
		target.X += dx
		target.Y += dy
	} else {
		target.EndX += dx
		target.EndY += dy
	}
	p.propagate(target, dx, dy, []string{targetAnchor}, l.ID)
}

func anchorMoved(moved []string, anchorID string) bool {
	return moved == nil || anchorID == "" || slices.Contains(moved, anchorID)
}

// shiftOwn applies a delta to the shape's own coordinates only.
func shiftOwn(sh Shape, dx, dy float64) {
	b := sh.Common()
	b.X += dx
	b.Y += dy
	switch v := sh.(type) {
	case *Line:
		v.EndX += dx
		v.EndY += dy
	case *Path:
		for i := range v.Points {
			v.Points[i].X += dx
			v.Points[i].Y += dy
		}
	case *Polygon:
		for i := range v.Points {
			v.Points[i].X += dx
			v.Points[i].Y += dy
		}
	case *Rectangle, *Circle, *Text, *Group:
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
}

// RefreshConnections snaps every line pinned to the shape onto the anchor's
// current position, then follows lines chained off those lines. It is run
// after edits that are not plain translations.
func (s *Scene) RefreshConnections(id string) {
	sh := s.Get(id)
	if sh == nil {
		return
	}
	fixed := map[string]bool{id: true}
	ends := make(map[lineEnd]bool)
	s.refresh(sh, fixed, ends)
	if g, ok := sh.(*Group); ok {
		for _, d := range s.Descendants(g.ID) {
			s.refresh(d, fixed, ends)
		}
	}
	for _, anc := range s.Ancestors(id) {
		if g := s.Get(anc); g != nil {
			s.refresh(g, fixed, ends)
		}
	}
}

// refresh snaps the ends of lines pinned to sh. Lines in fixed are left
// alone and each endpoint is snapped at most once per walk.
func (s *Scene) refresh(sh Shape, fixed map[string]bool, ends map[lineEnd]bool) {
	id := ID(sh)
	for _, l := range s.Lines() {
		if l.ID == id || fixed[l.ID] {
			continue
		}
		changed := false
		if k := (lineEnd{line: l.ID, end: AnchorStart}); l.StartShapeID == id && !ends[k] {
			if x, y, ok := s.AnchorPoint(sh, l.StartAnchorID); ok {
				l.X, l.Y = x, y
				ends[k] = true
				changed = true
			}
		}
		if k := (lineEnd{line: l.ID, end: AnchorEnd}); l.EndShapeID == id && !ends[k] {
			if x, y, ok := s.AnchorPoint(sh, l.EndAnchorID); ok {
				l.EndX, l.EndY = x, y
				ends[k] = true
				changed = true
			}
		}
		if changed {
			s.refresh(l, fixed, ends)
		}
	}
}
