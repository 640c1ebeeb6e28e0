package engine

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/blackboard/blackboard/internal/document"
)

// Default style values applied to shapes created without explicit styling.
const (
	DefaultStrokeWidth = 2.0
	DefaultFillColor   = "transparent"
	DefaultFontSize    = 16.0
	DefaultLineType    = "simple"
	DefaultPolygonType = "triangle"
)

// Line sub-types.
const (
	LineSimple    = "simple"
	LineArrow     = "arrow"
	LineConnector = "connector"
	LineDashed    = "dashed"
)

type Style struct {
	StrokeColor string // empty means the UI theme default
	StrokeWidth float64
	Dash        []float64
	Opacity     float64
	Join        string // "miter", "round" or "bevel"
}

type Fill struct {
	Color  string
	Filled bool
}

// Base carries the fields shared by every shape kind.
type Base struct {
	ID    string
	X     float64
	Y     float64
	Style Style
	Fill  Fill
}

func (b *Base) Common() *Base { return b }
func (b *Base) isShape()      {}

// Shape is the closed set of scene primitives. Only the types in this
// package implement it; every operation switches over all of them.
type Shape interface {
	Common() *Base
	Kind() document.Kind
	isShape()
}

// Line is a segment from (X, Y) to (EndX, EndY). Either end may be pinned
// to an anchor of another shape.
type Line struct {
	Base
	EndX          float64
	EndY          float64
	StartShapeID  string
	StartAnchorID string
	EndShapeID    string
	EndAnchorID   string
	LineType      string
}

type Rectangle struct {
	Base
	Width  float64
	Height float64
}

// Circle is an ellipse whose bounding box starts at (X, Y).
type Circle struct {
	Base
	RadiusX float64
	RadiusY float64
}

type Text struct {
	Base
	Content    string
	FontSize   float64
	FontFamily string
}

type Path struct {
	Base
	Points []r2.Vec
}

type Polygon struct {
	Base
	Points      []r2.Vec
	PolygonType string
}

// Group owns an ordered list of child IDs. The children themselves live in
// the scene arena.
type Group struct {
	Base
	Children []string
}

func (*Line) Kind() document.Kind      { return document.KindLine }
func (*Rectangle) Kind() document.Kind { return document.KindRectangle }
func (*Circle) Kind() document.Kind    { return document.KindCircle }
func (*Text) Kind() document.Kind      { return document.KindText }
func (*Path) Kind() document.Kind      { return document.KindPath }
func (*Polygon) Kind() document.Kind   { return document.KindPolygon }
func (*Group) Kind() document.Kind     { return document.KindGroup }

// DefaultStyle returns the stroke settings new shapes start with.
func DefaultStyle() Style {
	return Style{StrokeWidth: DefaultStrokeWidth, Opacity: 1}
}

func DefaultFill() Fill {
	return Fill{Color: DefaultFillColor}
}

func newBase(id string, x, y float64) Base {
	return Base{ID: id, X: x, Y: y, Style: DefaultStyle(), Fill: DefaultFill()}
}

func NewLine(id string, x, y, endX, endY float64) *Line {
	return &Line{Base: newBase(id, x, y), EndX: endX, EndY: endY, LineType: DefaultLineType}
}

func NewRectangle(id string, x, y, w, h float64) *Rectangle {
	return &Rectangle{Base: newBase(id, x, y), Width: w, Height: h}
}

func NewCircle(id string, x, y, rx, ry float64) *Circle {
	return &Circle{Base: newBase(id, x, y), RadiusX: rx, RadiusY: ry}
}

func NewText(id string, x, y float64, content string) *Text {
	return &Text{Base: newBase(id, x, y), Content: content, FontSize: DefaultFontSize}
}

func NewPath(id string, points ...r2.Vec) *Path {
	p := &Path{Base: newBase(id, 0, 0), Points: points}
	if len(points) > 0 {
		p.X, p.Y = points[0].X, points[0].Y
	}
	return p
}

func NewPolygon(id, polygonType string, points ...r2.Vec) *Polygon {
	p := &Polygon{Base: newBase(id, 0, 0), Points: points, PolygonType: polygonType}
	if b, ok := pointExtent(points); ok {
		p.X, p.Y = b.X, b.Y
	}
	return p
}

func NewGroup(id string, children ...string) *Group {
	return &Group{Base: newBase(id, 0, 0), Children: children}
}

// ID returns the shape's identifier.
func ID(s Shape) string { return s.Common().ID }

// Clone returns a deep copy of a single shape. Group children are copied
// as an ID list; the children themselves are not cloned.
func Clone(s Shape) Shape {
	cloneBase := func(b Base) Base {
		b.Style.Dash = slices.Clone(b.Style.Dash)
		return b
	}
	switch v := s.(type) {
	case *Line:
		c := *v
		c.Base = cloneBase(v.Base)
		return &c
	case *Rectangle:
		c := *v
		c.Base = cloneBase(v.Base)
		return &c
	case *Circle:
		c := *v
		c.Base = cloneBase(v.Base)
		return &c
	case *Text:
		c := *v
		c.Base = cloneBase(v.Base)
		return &c
	case *Path:
		c := *v
		c.Base = cloneBase(v.Base)
		c.Points = slices.Clone(v.Points)
		return &c
	case *Polygon:
		c := *v
		c.Base = cloneBase(v.Base)
		c.Points = slices.Clone(v.Points)
		return &c
	case *Group:
		c := *v
		c.Base = cloneBase(v.Base)
		c.Children = slices.Clone(v.Children)
		return &c
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", s))
	}
}
