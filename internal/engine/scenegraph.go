package engine

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Scene is the arena that owns every shape. Root shapes are kept in z-order
// (index 0 is the bottom); groups hold ordered ID lists of their children and
// the parent index maps a child back to its group. Root shapes have no entry.
type Scene struct {
	shapes map[string]Shape
	roots  []string
	parent map[string]string
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		shapes: make(map[string]Shape),
		parent: make(map[string]string),
	}
}

// Get returns the shape with the given ID or nil.
func (s *Scene) Get(id string) Shape {
	return s.shapes[id]
}

func (s *Scene) Has(id string) bool {
	_, ok := s.shapes[id]
	return ok
}

// Len returns the number of shapes in the scene, group members included.
func (s *Scene) Len() int {
	return len(s.shapes)
}

// Roots returns a copy of the root z-order.
func (s *Scene) Roots() []string {
	return slices.Clone(s.roots)
}

// Parent returns the ID of the group owning id, or "" for root shapes.
func (s *Scene) Parent(id string) string {
	return s.parent[id]
}

// IsRoot reports whether id is present and owned by the root list.
func (s *Scene) IsRoot(id string) bool {
	if !s.Has(id) {
		return false
	}
	_, nested := s.parent[id]
	return !nested
}

// Walk visits every shape depth first in z-order, parents before children.
func (s *Scene) Walk(fn func(Shape)) {
	var visit func(ids []string)
	visit = func(ids []string) {
		for _, id := range ids {
			sh := s.shapes[id]
			if sh == nil {
				continue
			}
			fn(sh)
			if g, ok := sh.(*Group); ok {
				visit(g.Children)
			}
		}
	}
	visit(s.roots)
}

// Descendants returns every shape nested below id in depth-first order.
func (s *Scene) Descendants(id string) []Shape {
	g, ok := s.shapes[id].(*Group)
	if !ok {
		return nil
	}
	var out []Shape
	var visit func(ids []string)
	visit = func(ids []string) {
		for _, cid := range ids {
			sh := s.shapes[cid]
			if sh == nil {
				continue
			}
			out = append(out, sh)
			if cg, ok := sh.(*Group); ok {
				visit(cg.Children)
			}
		}
	}
	visit(g.Children)
	return out
}

// Ancestors returns the chain of groups above id, nearest first.
func (s *Scene) Ancestors(id string) []string {
	var chain []string
	for p, ok := s.parent[id]; ok; p, ok = s.parent[p] {
		chain = append(chain, p)
	}
	return chain
}

// Lines returns every line in the scene, group members included.
func (s *Scene) Lines() []*Line {
	var lines []*Line
	s.Walk(func(sh Shape) {
		if l, ok := sh.(*Line); ok {
			lines = append(lines, l)
		}
	})
	return lines
}

// siblings returns a pointer to the list that owns id.
func (s *Scene) siblings(id string) *[]string {
	if p, ok := s.parent[id]; ok {
		if g, ok := s.shapes[p].(*Group); ok {
			return &g.Children
		}
	}
	return &s.roots
}

// listOf returns the child list of a group, or the root list for "".
func (s *Scene) listOf(parentID string) *[]string {
	if parentID == "" {
		return &s.roots
	}
	if g, ok := s.shapes[parentID].(*Group); ok {
		return &g.Children
	}
	return nil
}

// IndexOf returns the position of id within its owning list.
func (s *Scene) IndexOf(id string) int {
	return slices.Index(*s.siblings(id), id)
}

// insert places an already registered shape into parent's list at index.
// An out of range index appends.
func (s *Scene) insert(id, parentID string, index int) {
	list := s.listOf(parentID)
	if list == nil {
		return
	}
	if index < 0 || index > len(*list) {
		index = len(*list)
	}
	*list = slices.Insert(*list, index, id)
	if parentID == "" {
		delete(s.parent, id)
	} else {
		s.parent[id] = parentID
	}
}

// detach removes id from its owning list and returns the owner and the
// former index. The shape stays registered in the arena.
func (s *Scene) detach(id string) (string, int) {
	parentID := s.parent[id]
	list := s.siblings(id)
	idx := slices.Index(*list, id)
	if idx >= 0 {
		*list = slices.Delete(*list, idx, idx+1)
	}
	delete(s.parent, id)
	return parentID, idx
}

// register adds a shape to the arena without placing it in any list.
func (s *Scene) register(sh Shape) {
	s.shapes[ID(sh)] = sh
}

// Add appends a shape to the root list.
func (s *Scene) Add(sh Shape) {
	s.register(sh)
	s.insert(ID(sh), "", -1)
}

// Remove deletes a shape and, for groups, its whole subtree.
func (s *Scene) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	for _, d := range s.Descendants(id) {
		delete(s.shapes, ID(d))
		delete(s.parent, ID(d))
	}
	s.detach(id)
	delete(s.shapes, id)
	return true
}

// Clear drops every shape.
func (s *Scene) Clear() {
	s.shapes = make(map[string]Shape)
	s.parent = make(map[string]string)
	s.roots = nil
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Normalize flips negative extents so Width and Height are never negative.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Overlaps reports open intersection: touching edges do not count.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// RectFromPoints builds the normalized rect spanned by two corners.
func RectFromPoints(x1, y1, x2, y2 float64) Rect {
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}.Normalize()
}

// extent accumulates a bounding box over points, degenerate boxes included.
type extent struct {
	minX, minY, maxX, maxY float64
	ok                     bool
}

func (e *extent) add(x, y float64) {
	if !e.ok {
		e.minX, e.maxX, e.minY, e.maxY = x, x, y, y
		e.ok = true
		return
	}
	e.minX = min(e.minX, x)
	e.minY = min(e.minY, y)
	e.maxX = max(e.maxX, x)
	e.maxY = max(e.maxY, y)
}

func (e *extent) addRect(r Rect) {
	e.add(r.X, r.Y)
	e.add(r.X+r.Width, r.Y+r.Height)
}

func (e extent) rect() (Rect, bool) {
	if !e.ok {
		return Rect{}, false
	}
	return Rect{X: e.minX, Y: e.minY, Width: e.maxX - e.minX, Height: e.maxY - e.minY}, true
}

func pointExtent(points []r2.Vec) (Rect, bool) {
	var e extent
	for _, p := range points {
		e.add(p.X, p.Y)
	}
	return e.rect()
}
