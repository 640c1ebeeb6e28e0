package engine

import "gonum.org/v1/gonum/spatial/r2"

// Affine scales each axis and then offsets it: p' = p*Scale + Offset.
// Shapes never rotate, so no skew terms are carried.
type Affine struct {
	Scale  r2.Vec
	Offset r2.Vec
}

func Translation(dx, dy float64) Affine {
	return Affine{Scale: r2.Vec{X: 1, Y: 1}, Offset: r2.Vec{X: dx, Y: dy}}
}

func Scaling(sx, sy float64) Affine {
	return Affine{Scale: r2.Vec{X: sx, Y: sy}}
}

// Then returns the transform that applies a first and b second.
func (a Affine) Then(b Affine) Affine {
	return Affine{
		Scale: r2.Vec{X: a.Scale.X * b.Scale.X, Y: a.Scale.Y * b.Scale.Y},
		Offset: r2.Vec{
			X: a.Offset.X*b.Scale.X + b.Offset.X,
			Y: a.Offset.Y*b.Scale.Y + b.Offset.Y,
		},
	}
}

func (a Affine) Apply(x, y float64) (float64, float64) {
	return x*a.Scale.X + a.Offset.X, y*a.Scale.Y + a.Offset.Y
}

// Inverse reports false when an axis scale is zero.
func (a Affine) Inverse() (Affine, bool) {
	if a.Scale.X == 0 || a.Scale.Y == 0 {
		return Affine{}, false
	}
	sx, sy := 1/a.Scale.X, 1/a.Scale.Y
	return Affine{
		Scale:  r2.Vec{X: sx, Y: sy},
		Offset: r2.Vec{X: -a.Offset.X * sx, Y: -a.Offset.Y * sy},
	}, true
}

// Remap maps the box from onto the box to. A zero extent on from keeps
// that axis unscaled.
func Remap(from, to Rect) Affine {
	sx, sy := 1.0, 1.0
	if from.Width != 0 {
		sx = to.Width / from.Width
	}
	if from.Height != 0 {
		sy = to.Height / from.Height
	}
	return Translation(-from.X, -from.Y).Then(Scaling(sx, sy)).Then(Translation(to.X, to.Y))
}

// ViewTransform maps world coordinates to screen coordinates.
func ViewTransform(panX, panY, zoom float64) Affine {
	return Scaling(zoom, zoom).Then(Translation(panX, panY))
}
