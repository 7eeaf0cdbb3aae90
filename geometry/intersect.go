package geometry

import (
	"math"

	"github.com/jakecoffman/cp"
)

// CircleIntersectsLine reports whether a circle touches the segment p1-p2.
func CircleIntersectsLine(circle cp.Vector, radius float64, p1, p2 cp.Vector) bool {
	v := p2.Sub(p1)
	diff := p1.Sub(circle)
	a := v.Dot(v)
	if a == 0 {
		return circle.DistanceSq(p1) <= radius*radius
	}
	b := 2 * v.Dot(diff)
	c := diff.Dot(diff) - radius*radius
	quad := b*b - 4*a*c
	if quad < 0 {
		return false
	}
	root := math.Sqrt(quad)
	t1 := (-b - root) / (2 * a)
	t2 := (-b + root) / (2 * a)
	// Either crossing lies on the segment, or the segment is inside the
	// circle entirely.
	if (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1) {
		return true
	}
	return t1 < 0 && t2 > 1
}

// CircleIntersectsRectangle reports whether a circle touches a rectangle of
// size dim centered on rect and rotated by angle, including full overlap.
func CircleIntersectsRectangle(circle cp.Vector, radius float64, rect, dim cp.Vector, angle float64) bool {
	rel := circle.Sub(rect).Unrotate(cp.ForAngle(angle))
	hw, hh := dim.X/2, dim.Y/2

	if rel.X > -hw && rel.X < hw && rel.Y > -hh && rel.Y < hh {
		return true
	}
	nearest := cp.Vector{
		X: cp.Clamp(rel.X, -hw, hw),
		Y: cp.Clamp(rel.Y, -hh, hh),
	}
	return rel.Distance(nearest) < radius
}
