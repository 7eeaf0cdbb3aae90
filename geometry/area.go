package geometry

import (
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultBlockSize is the blockmap block width and height.
const DefaultBlockSize = 128.0

// Area owns the level geometry of one play session.
type Area struct {
	Sectors  []*Sector
	Edges    []*Edge
	Blockmap *Blockmap

	sectorEdges map[*Sector][]*Edge
}

type edgeKey struct {
	a, b cp.Vector
}

func makeEdgeKey(a, b cp.Vector) (edgeKey, bool) {
	if a.X < b.X || (a.X == b.X && a.Y < b.Y) {
		return edgeKey{a, b}, false
	}
	return edgeKey{b, a}, true
}

// NewArea derives the shared edges from the sector polygons and builds the
// blockmap.
func NewArea(sectors []*Sector, blockSize float64) *Area {
	a := &Area{Sectors: sectors, sectorEdges: map[*Sector][]*Edge{}}

	byKey := map[edgeKey]*Edge{}
	var order []edgeKey
	for i, s := range sectors {
		s.Index = i
		s.updateBB()
		n := len(s.Polygon)
		if n < 3 {
			continue
		}
		ccw := s.signedArea() > 0
		for v := 0; v < n; v++ {
			p1, p2 := s.Polygon[v], s.Polygon[(v+1)%n]
			if p1 == p2 {
				continue
			}
			key, _ := makeEdgeKey(p1, p2)
			e, ok := byKey[key]
			if !ok {
				e = &Edge{Vertices: [2]cp.Vector{p1, p2}}
				byKey[key] = e
				order = append(order, key)
			}
			sameDir := e.Vertices[0] == p1
			// Interior lies where cross(v1-v0, p-v0) > 0 when ccw and the
			// traversal matches the edge direction; that side is slot 1.
			slot := 0
			if ccw == sameDir {
				slot = 1
			}
			e.Sectors[slot] = s
			a.sectorEdges[s] = append(a.sectorEdges[s], e)
		}
	}
	for _, k := range order {
		e := byKey[k]
		a.Edges = append(a.Edges, e)
		a.fillIslandSide(e)
	}

	a.Blockmap = NewBlockmap(a, blockSize)
	return a
}

// fillIslandSide resolves the open side of an edge that belongs to a sector
// drawn inside another one.
func (a *Area) fillIslandSide(e *Edge) {
	slot := -1
	switch {
	case e.Sectors[0] == nil && e.Sectors[1] != nil:
		slot = 0
	case e.Sectors[1] == nil && e.Sectors[0] != nil:
		slot = 1
	}
	if slot < 0 {
		return
	}
	d := e.Vertices[1].Sub(e.Vertices[0]).Normalize()
	side := cp.Vector{X: d.Y, Y: -d.X}
	if slot == 1 {
		side = side.Neg()
	}
	mid := e.Vertices[0].Lerp(e.Vertices[1], 0.5)
	probe := mid.Add(side.Mult(islandProbeDistance))

	known := e.Sectors[1-slot]
	var best *Sector
	for _, s := range a.Sectors {
		if s == known || !s.ContainsPoint(probe) {
			continue
		}
		if best == nil || math.Abs(s.signedArea()) < math.Abs(best.signedArea()) {
			best = s
		}
	}
	if best == nil {
		return
	}
	e.Sectors[slot] = best
	a.sectorEdges[best] = append(a.sectorEdges[best], e)
}

const islandProbeDistance = 0.01

// SectorAt returns the sector containing p, or nil when out of bounds.
func (a *Area) SectorAt(p cp.Vector) *Sector {
	if a == nil || a.Blockmap == nil {
		return nil
	}
	col, row := a.Blockmap.Col(p.X), a.Blockmap.Row(p.Y)
	if col < 0 || row < 0 {
		return nil
	}
	var best *Sector
	for _, s := range a.Blockmap.Sectors[col][row] {
		if !s.ContainsPoint(p) {
			continue
		}
		// Nested sectors: the innermost one is the smallest.
		if best == nil || math.Abs(s.signedArea()) < math.Abs(best.signedArea()) {
			best = s
		}
	}
	return best
}

// SectorEdges returns the edges bordering s.
func (a *Area) SectorEdges(s *Sector) []*Edge {
	return a.sectorEdges[s]
}

// NeighborsWhere walks outwards from start through edges, collecting every
// connected sector for which keep returns true. start itself is included
// when it qualifies.
func (a *Area) NeighborsWhere(start *Sector, keep func(*Sector) bool) []*Sector {
	if start == nil || !keep(start) {
		return nil
	}
	seen := map[*Sector]bool{start: true}
	out := []*Sector{start}
	queue := []*Sector{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, e := range a.sectorEdges[s] {
			o := e.Other(s)
			if o == nil || seen[o] {
				continue
			}
			seen[o] = true
			if keep(o) {
				out = append(out, o)
				queue = append(queue, o)
			}
		}
	}
	return out
}

// Blockmap buckets edges and sectors into a grid of square blocks.
type Blockmap struct {
	TopLeft   cp.Vector
	BlockSize float64
	Cols      int
	Rows      int
	Edges     [][][]*Edge
	Sectors   [][][]*Sector
}

func NewBlockmap(a *Area, blockSize float64) *Blockmap {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	bm := &Blockmap{BlockSize: blockSize}
	if len(a.Sectors) == 0 {
		return bm
	}

	bb := a.Sectors[0].BB
	for _, s := range a.Sectors[1:] {
		bb = bb.Merge(s.BB)
	}
	bm.TopLeft = cp.Vector{X: bb.L, Y: bb.B}
	bm.Cols = int(math.Ceil((bb.R-bb.L)/blockSize)) + 1
	bm.Rows = int(math.Ceil((bb.T-bb.B)/blockSize)) + 1

	bm.Edges = make([][][]*Edge, bm.Cols)
	bm.Sectors = make([][][]*Sector, bm.Cols)
	for c := 0; c < bm.Cols; c++ {
		bm.Edges[c] = make([][]*Edge, bm.Rows)
		bm.Sectors[c] = make([][]*Sector, bm.Rows)
	}

	for _, e := range a.Edges {
		bm.forBlocks(e.BB(), func(c, r int) {
			bm.Edges[c][r] = append(bm.Edges[c][r], e)
		})
	}
	for _, s := range a.Sectors {
		bm.forBlocks(s.BB, func(c, r int) {
			bm.Sectors[c][r] = append(bm.Sectors[c][r], s)
		})
	}
	return bm
}

func (bm *Blockmap) forBlocks(bb cp.BB, fn func(c, r int)) {
	c1, c2 := bm.Col(bb.L), bm.Col(bb.R)
	r1, r2 := bm.Row(bb.B), bm.Row(bb.T)
	if c1 < 0 || c2 < 0 || r1 < 0 || r2 < 0 {
		return
	}
	for c := c1; c <= c2; c++ {
		for r := r1; r <= r2; r++ {
			fn(c, r)
		}
	}
}

// Col returns the block column of x, or -1 when outside the grid.
func (bm *Blockmap) Col(x float64) int {
	if bm == nil || x < bm.TopLeft.X {
		return -1
	}
	c := (x - bm.TopLeft.X) / bm.BlockSize
	if c >= float64(bm.Cols) {
		return -1
	}
	return int(c)
}

// Row returns the block row of y, or -1 when outside the grid.
func (bm *Blockmap) Row(y float64) int {
	if bm == nil || y < bm.TopLeft.Y {
		return -1
	}
	r := (y - bm.TopLeft.Y) / bm.BlockSize
	if r >= float64(bm.Rows) {
		return -1
	}
	return int(r)
}

// EdgesNear returns every edge stored in the blocks bb covers, without
// duplicates. ok is false when any part of bb falls outside the grid.
func (bm *Blockmap) EdgesNear(bb cp.BB) (edges []*Edge, ok bool) {
	c1, c2 := bm.Col(bb.L), bm.Col(bb.R)
	r1, r2 := bm.Row(bb.B), bm.Row(bb.T)
	if c1 < 0 || c2 < 0 || r1 < 0 || r2 < 0 {
		return nil, false
	}
	seen := map[*Edge]bool{}
	for c := c1; c <= c2; c++ {
		for r := r1; r <= r2; r++ {
			for _, e := range bm.Edges[c][r] {
				if seen[e] {
					continue
				}
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges, true
}
