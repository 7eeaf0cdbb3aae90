package geometry

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(l, t, r, b float64) []cp.Vector {
	return []cp.Vector{{X: l, Y: t}, {X: r, Y: t}, {X: r, Y: b}, {X: l, Y: b}}
}

// twoRooms is a floor at z=0 from x 0..200 and a ledge at z=100 from
// x 200..400, both 0..200 tall.
func twoRooms() (*Area, *Sector, *Sector) {
	low := NewSector(rect(0, 0, 200, 200), 0)
	high := NewSector(rect(200, 0, 400, 200), 100)
	return NewArea([]*Sector{low, high}, DefaultBlockSize), low, high
}

func TestNewAreaSharesEdges(t *testing.T) {
	a, low, high := twoRooms()

	require.Len(t, a.Edges, 7)

	var shared *Edge
	voids := 0
	for _, e := range a.Edges {
		if e.Sectors[0] != nil && e.Sectors[1] != nil {
			shared = e
		}
		if e.Sectors[0] == nil || e.Sectors[1] == nil {
			voids++
		}
	}
	require.NotNil(t, shared)
	assert.Equal(t, 6, voids)
	assert.ElementsMatch(t, []*Sector{low, high}, shared.Sectors[:])
	assert.Len(t, a.SectorEdges(low), 4)
	assert.Len(t, a.SectorEdges(high), 4)
}

func TestEdgeSidesFollowConvention(t *testing.T) {
	a, _, _ := twoRooms()

	for _, e := range a.Edges {
		d := e.Vertices[1].Sub(e.Vertices[0])
		mid := e.Vertices[0].Lerp(e.Vertices[1], 0.5)
		for slot, s := range e.Sectors {
			if s == nil {
				continue
			}
			// Probe a point just inside the sector and check its side.
			inward := s.BB.Center().Sub(mid).Normalize()
			p := mid.Add(inward)
			cross := d.Cross(p.Sub(e.Vertices[0]))
			if slot == 0 {
				assert.Less(t, cross, 0.0, "sector 0 must sit at negative cross")
			} else {
				assert.Greater(t, cross, 0.0, "sector 1 must sit at positive cross")
			}
		}
	}
}

func TestSectorAt(t *testing.T) {
	a, low, high := twoRooms()

	cases := []struct {
		name string
		p    cp.Vector
		want *Sector
	}{
		{"low_room", cp.Vector{X: 50, Y: 50}, low},
		{"high_room", cp.Vector{X: 350, Y: 150}, high},
		{"outside_right", cp.Vector{X: 900, Y: 50}, nil},
		{"outside_left", cp.Vector{X: -1, Y: 50}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Same(t, c.want, a.SectorAt(c.p))
		})
	}
}

func TestIslandSector(t *testing.T) {
	outer := NewSector(rect(0, 0, 400, 400), 0)
	island := NewSector(rect(150, 150, 250, 250), 30)
	a := NewArea([]*Sector{outer, island}, DefaultBlockSize)

	assert.Same(t, island, a.SectorAt(cp.Vector{X: 200, Y: 200}))
	assert.Same(t, outer, a.SectorAt(cp.Vector{X: 100, Y: 100}))

	for _, e := range a.SectorEdges(island) {
		assert.NotNil(t, e.Sectors[0])
		assert.NotNil(t, e.Sectors[1])
		assert.Same(t, outer, e.Other(island))
	}
}

func TestBlockmap(t *testing.T) {
	a, _, _ := twoRooms()
	bm := a.Blockmap

	assert.Equal(t, 0, bm.Col(0))
	assert.Equal(t, 1, bm.Col(128))
	assert.Equal(t, -1, bm.Col(-0.5))
	assert.Equal(t, -1, bm.Row(10000))

	edges, ok := bm.EdgesNear(cp.NewBBForCircle(cp.Vector{X: 200, Y: 100}, 10))
	require.True(t, ok)
	found := false
	for _, e := range edges {
		if e.Sectors[0] != nil && e.Sectors[1] != nil {
			found = true
		}
	}
	assert.True(t, found, "shared wall must be near x=200")

	_, ok = bm.EdgesNear(cp.NewBBForCircle(cp.Vector{X: -50, Y: 100}, 10))
	assert.False(t, ok)
}

func TestNeighborsWhere(t *testing.T) {
	a, low, high := twoRooms()
	water := &Hazard{Name: "water", AssociatedLiquid: true}
	low.Hazards = []*Hazard{water}
	high.Hazards = []*Hazard{water}

	got := a.NeighborsWhere(low, (*Sector).HasLiquid)
	assert.ElementsMatch(t, []*Sector{low, high}, got)

	high.Hazards = nil
	got = a.NeighborsWhere(low, (*Sector).HasLiquid)
	assert.Equal(t, []*Sector{low}, got)
}

func TestCircleIntersectsLine(t *testing.T) {
	p1, p2 := cp.Vector{X: 0, Y: 0}, cp.Vector{X: 100, Y: 0}
	cases := []struct {
		name   string
		center cp.Vector
		radius float64
		want   bool
	}{
		{"crossing", cp.Vector{X: 50, Y: 5}, 10, true},
		{"above", cp.Vector{X: 50, Y: 20}, 10, false},
		{"past_end", cp.Vector{X: 120, Y: 0}, 10, false},
		{"touching_end", cp.Vector{X: 105, Y: 0}, 10, true},
		{"segment_inside", cp.Vector{X: 50, Y: 0}, 500, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CircleIntersectsLine(c.center, c.radius, p1, p2))
		})
	}
}

func TestCircleIntersectsRectangle(t *testing.T) {
	dim := cp.Vector{X: 100, Y: 20}
	cases := []struct {
		name   string
		center cp.Vector
		angle  float64
		want   bool
	}{
		{"inside", cp.Vector{X: 0, Y: 0}, 0, true},
		{"near_long_side", cp.Vector{X: 0, Y: 15}, 0, true},
		{"far_above", cp.Vector{X: 0, Y: 40}, 0, false},
		{"rotated_hits", cp.Vector{X: 0, Y: 45}, math.Pi / 2, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CircleIntersectsRectangle(c.center, 10, cp.Vector{}, dim, c.angle))
		})
	}
}
