package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon sub-types.
const (
	PolygonTriangle = "triangle"
	PolygonDiamond  = "diamond"
	PolygonPentagon = "pentagon"
	PolygonHexagon  = "hexagon"
	PolygonOctagon  = "octagon"
	PolygonStar     = "star"
)

const (
	starTips       = 5
	starInnerRatio = 0.4
)

var polygonSides = map[string]int{
	PolygonTriangle: 3,
	PolygonDiamond:  4,
	PolygonPentagon: 5,
	PolygonHexagon:  6,
	PolygonOctagon:  8,
}

// PolygonPoints generates the vertices of a regular polygon inscribed in
// the ellipse centered at (cx, cy), starting at the top and going clockwise
// in screen coordinates. Unknown types fall back to a triangle.
func PolygonPoints(cx, cy, rx, ry float64, polygonType string) []r2.Vec {
	const start = -math.Pi / 2

	if polygonType == PolygonStar {
		step := math.Pi / starTips
		points := make([]r2.Vec, 0, 2*starTips)
		for i := range 2 * starTips {
			px, py := rx, ry
			if i%2 == 1 {
				px, py = rx*starInnerRatio, ry*starInnerRatio
			}
			angle := start + float64(i)*step
			points = append(points, r2.Vec{X: cx + px*math.Cos(angle), Y: cy + py*math.Sin(angle)})
		}
		return points
	}

	sides, ok := polygonSides[polygonType]
	if !ok {
		sides = 3
	}
	step := 2 * math.Pi / float64(sides)
	points := make([]r2.Vec, 0, sides)
	for i := range sides {
		angle := start + float64(i)*step
		points = append(points, r2.Vec{X: cx + rx*math.Cos(angle), Y: cy + ry*math.Sin(angle)})
	}
	return points
}
