package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/blackboard/blackboard/internal/document"
	"github.com/blackboard/blackboard/internal/typeid"
)

var (
	ErrUnknownKind = errors.New("unknown shape kind")
	ErrGroupRecord = errors.New("group records cannot be added directly")
)

// BuildScene loads shape records into a fresh scene. Records of unknown
// kind and records reusing an ID already in the tree are skipped; records
// without an ID get a new one.
func BuildScene(records []document.ShapeRecord) *Scene {
	s := NewScene()
	for i := range records {
		if sh := buildShape(s, &records[i]); sh != nil {
			s.insert(ID(sh), "", -1)
		}
	}
	return s
}

// ShapeFromRecord builds a detached shape from one record. Groups are
// formed with Group, so group records are refused.
func ShapeFromRecord(rec document.ShapeRecord) (Shape, error) {
	if rec.Type == document.KindGroup {
		return nil, fmt.Errorf("build shape: %w", ErrGroupRecord)
	}
	sh := buildShape(NewScene(), &rec)
	if sh == nil {
		return nil, fmt.Errorf("build shape: %w: %q", ErrUnknownKind, rec.Type)
	}
	return sh, nil
}

func buildShape(s *Scene, rec *document.ShapeRecord) Shape {
	id := rec.ID
	if id == "" {
		id = typeid.NewShapeID()
	}
	if s.Has(id) {
		slog.Warn("skipping duplicate shape id", "id", id, "type", rec.Type)
		return nil
	}

	base := baseFromRecord(id, rec)

	var sh Shape
	switch rec.Type {
	case document.KindLine:
		l := &Line{
			Base:          base,
			EndX:          rec.EndX,
			EndY:          rec.EndY,
			StartShapeID:  rec.StartShapeID,
			StartAnchorID: rec.StartAnchorID,
			EndShapeID:    rec.EndShapeID,
			EndAnchorID:   rec.EndAnchorID,
			LineType:      rec.LineType,
		}
		if l.LineType == "" {
			l.LineType = DefaultLineType
		}
		sh = l
	case document.KindRectangle:
		sh = &Rectangle{Base: base, Width: rec.Width, Height: rec.Height}
	case document.KindCircle:
		rx, ry := rec.RadiusX, rec.RadiusY
		if rx == 0 && ry == 0 && rec.Radius != 0 {
			rx, ry = rec.Radius, rec.Radius
		}
		sh = &Circle{Base: base, RadiusX: rx, RadiusY: ry}
	case document.KindText:
		t := &Text{Base: base, Content: rec.Content, FontSize: rec.FontSize, FontFamily: rec.FontFamily}
		if t.FontSize <= 0 {
			t.FontSize = DefaultFontSize
		}
		sh = t
	case document.KindPath:
		sh = &Path{Base: base, Points: toVecs(rec.Points)}
	case document.KindPolygon:
		p := &Polygon{Base: base, Points: toVecs(rec.Points), PolygonType: rec.PolygonType}
		if p.PolygonType == "" {
			p.PolygonType = DefaultPolygonType
		}
		sh = p
	case document.KindGroup:
		g := &Group{Base: base}
		s.register(g)
		for i := range rec.Children {
			if child := buildShape(s, &rec.Children[i]); child != nil {
				s.insert(ID(child), id, -1)
			}
		}
		return g
	default:
		slog.Warn("skipping shape of unknown type", "id", id, "type", rec.Type)
		return nil
	}

	s.register(sh)
	return sh
}

func baseFromRecord(id string, rec *document.ShapeRecord) Base {
	base := Base{
		ID: id,
		X:  rec.X,
		Y:  rec.Y,
		Style: Style{
			StrokeColor: rec.StrokeColor,
			StrokeWidth: rec.StrokeWidth,
			Dash:        slices.Clone(rec.StrokeDash),
			Opacity:     1,
			Join:        rec.StrokeJoin,
		},
		Fill: Fill{Color: rec.FillColor, Filled: rec.Filled},
	}
	if rec.Opacity != nil {
		base.Style.Opacity = *rec.Opacity
	}
	if base.Fill.Color == "" {
		base.Fill.Color = DefaultFillColor
	}

	return base
}

// Records serializes the scene's root list, nesting group members.
func (s *Scene) Records() []document.ShapeRecord {
	return s.records(s.roots)
}

// Record serializes one shape and its subtree.
func (s *Scene) Record(id string) (document.ShapeRecord, bool) {
	if !s.Has(id) {
		return document.ShapeRecord{}, false
	}
	recs := s.records([]string{id})
	return recs[0], true
}

func (s *Scene) records(ids []string) []document.ShapeRecord {
	out := make([]document.ShapeRecord, 0, len(ids))
	for _, id := range ids {
		sh := s.shapes[id]
		if sh == nil {
			continue
		}
		out = append(out, s.toRecord(sh))
	}
	return out
}

func (s *Scene) toRecord(sh Shape) document.ShapeRecord {
	b := sh.Common()
	opacity := b.Style.Opacity
	rec := document.ShapeRecord{
		Type:        sh.Kind(),
		ID:          b.ID,
		X:           b.X,
		Y:           b.Y,
		StrokeColor: b.Style.StrokeColor,
		StrokeWidth: b.Style.StrokeWidth,
		StrokeDash:  slices.Clone(b.Style.Dash),
		Opacity:     &opacity,
		StrokeJoin:  b.Style.Join,
		Filled:      b.Fill.Filled,
		FillColor:   b.Fill.Color,
	}

	switch v := sh.(type) {
	case *Line:
		rec.EndX, rec.EndY = v.EndX, v.EndY
		rec.StartShapeID, rec.StartAnchorID = v.StartShapeID, v.StartAnchorID
		rec.EndShapeID, rec.EndAnchorID = v.EndShapeID, v.EndAnchorID
		rec.LineType = v.LineType
	case *Rectangle:
		rec.Width, rec.Height = v.Width, v.Height
	case *Circle:
		rec.RadiusX, rec.RadiusY = v.RadiusX, v.RadiusY
	case *Text:
		rec.Content, rec.FontSize, rec.FontFamily = v.Content, v.FontSize, v.FontFamily
	case *Path:
		rec.Points = toPoints(v.Points)
	case *Polygon:
		rec.Points = toPoints(v.Points)
		rec.PolygonType = v.PolygonType
	case *Group:
		rec.Children = s.records(v.Children)
	default:
		panic(fmt.Sprintf("engine: unknown shape type %T", sh))
	}
	return rec
}

func toVecs(points []document.Point) []r2.Vec {
	if points == nil {
		return nil
	}
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return out
}

func toPoints(vecs []r2.Vec) []document.Point {
	if vecs == nil {
		return nil
	}
	out := make([]document.Point, len(vecs))
	for i, v := range vecs {
		out[i] = document.Point{v.X, v.Y}
	}
	return out
}
