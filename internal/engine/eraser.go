package engine

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErasePoints removes the points of a path lying within radius of (x, y).
// The surviving runs of points become separate paths: the first run keeps
// the original path, later runs become new paths stacked right above it
// with the same style. A path left without points is removed. It reports
// whether anything changed and the IDs of the new paths.
func (s *Scene) ErasePoints(id string, x, y, radius float64, newID func() string) (bool, []string) {
	p, ok := s.Get(id).(*Path)
	if !ok {
		return false, nil
	}

	center := r2.Vec{X: x, Y: y}
	var runs [][]r2.Vec
	var run []r2.Vec
	erased := false
	for _, pt := range p.Points {
		if r2.Norm(r2.Sub(pt, center)) < radius {
			erased = true
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, pt)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	if !erased {
		return false, nil
	}
	if len(runs) == 0 {
		s.Remove(id)
		return true, nil
	}

	p.Points = runs[0]
	p.X, p.Y = runs[0][0].X, runs[0][0].Y

	parentID := s.Parent(id)
	at := s.IndexOf(id)
	var created []string
	for i, seg := range runs[1:] {
		np := &Path{Base: p.Base, Points: slices.Clone(seg)}
		np.ID = newID()
		np.Style.Dash = slices.Clone(p.Style.Dash)
		np.X, np.Y = seg[0].X, seg[0].Y
		s.register(np)
		s.insert(np.ID, parentID, at+1+i)
		created = append(created, np.ID)
	}
	return true, created
}
