package geometry

import (
	"github.com/jakecoffman/cp"
)

type SectorType int

const (
	SectorNormal SectorType = iota
	SectorBlocking
)

func (t SectorType) String() string {
	if t == SectorBlocking {
		return "blocking"
	}
	return "normal"
}

// Hazard is an environmental effect attached to sectors. Effects name the
// status types it applies.
type Hazard struct {
	Name             string
	Effects          []string
	AssociatedLiquid bool
}

// Sector is a polygonal floor region at a fixed height.
type Sector struct {
	Index         int
	Z             float64
	Type          SectorType
	BottomlessPit bool
	Hazards       []*Hazard
	// HazardFloor confines the hazards to mobs touching the floor.
	HazardFloor bool
	Scroll      cp.Vector
	Polygon     []cp.Vector
	BB          cp.BB

	// Draining is set by the drain_liquid action.
	Draining bool
}

func NewSector(polygon []cp.Vector, z float64) *Sector {
	s := &Sector{Z: z, Polygon: polygon}
	s.updateBB()
	return s
}

func (s *Sector) updateBB() {
	if len(s.Polygon) == 0 {
		s.BB = cp.BB{}
		return
	}
	bb := cp.BB{L: s.Polygon[0].X, B: s.Polygon[0].Y, R: s.Polygon[0].X, T: s.Polygon[0].Y}
	for _, p := range s.Polygon[1:] {
		bb = bb.Expand(p)
	}
	s.BB = bb
}

// ContainsPoint runs an even-odd ray cast against the polygon.
func (s *Sector) ContainsPoint(p cp.Vector) bool {
	if s == nil || !s.BB.ContainsVect(p) {
		return false
	}
	inside := false
	n := len(s.Polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := s.Polygon[i], s.Polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// signedArea is positive when the polygon winds counter-clockwise in
// y-up coordinates.
func (s *Sector) signedArea() float64 {
	sum := 0.0
	n := len(s.Polygon)
	for i := 0; i < n; i++ {
		a, b := s.Polygon[i], s.Polygon[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func (s *Sector) HasLiquid() bool {
	for _, h := range s.Hazards {
		if h.AssociatedLiquid {
			return true
		}
	}
	return false
}

// Edge separates two sectors. Walking from Vertices[0] to Vertices[1],
// Sectors[0] is on the left in screen coordinates. A nil sector is the void.
type Edge struct {
	Vertices [2]cp.Vector
	Sectors  [2]*Sector
}

func (e *Edge) BB() cp.BB {
	bb := cp.BB{L: e.Vertices[0].X, B: e.Vertices[0].Y, R: e.Vertices[0].X, T: e.Vertices[0].Y}
	return bb.Expand(e.Vertices[1])
}

// Angle is the direction from vertex 0 to vertex 1.
func (e *Edge) Angle() float64 {
	return e.Vertices[1].Sub(e.Vertices[0]).ToAngle()
}

// Other returns the sector across the edge from s.
func (e *Edge) Other(s *Sector) *Sector {
	if e.Sectors[0] == s {
		return e.Sectors[1]
	}
	return e.Sectors[0]
}
