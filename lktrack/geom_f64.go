package lktrack

import "math"

// Point is a sub-pixel image coordinate.
type Point struct {
	X float64
	Y float64
}

// InvalidPoint is reported for trajectories without a record at the queried frame.
var InvalidPoint = Point{X: -1, Y: -1}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// DistanceTo returns Euclidean distance between two points
func (p Point) DistanceTo(q Point) float64 {
	return euclideanDistance(p, q)
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// Clamp pulls every point into [0, width-1] x [0, height-1].
// Points which left the image can not be recovered by the flow engine, so they are kept on the border instead.
func Clamp(points []Point, width, height int) {
	maxX := float64(maxInt(width-1, 0))
	maxY := float64(maxInt(height-1, 0))
	for i := range points {
		points[i].X = clampFloat64(points[i].X, 0, maxX)
		points[i].Y = clampFloat64(points[i].Y, 0, maxY)
	}
}
