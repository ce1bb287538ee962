package alarm

import "math"

// Position is a point in the simulation's flat 3D world space.
type Position struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the Euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
