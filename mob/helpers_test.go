package mob

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/datanode"
	"github.com/milk9111/mobengine/geometry"
)

func rect(l, t, r, b float64) []cp.Vector {
	return []cp.Vector{{X: l, Y: t}, {X: r, Y: t}, {X: r, Y: b}, {X: l, Y: b}}
}

// newTestWorld builds a floor at z=0 covering x 0..500 next to a second
// sector at highZ covering x 500..1000. Both span y 0..500.
func newTestWorld(highZ float64) (*World, *geometry.Sector, *geometry.Sector) {
	low := geometry.NewSector(rect(0, 0, 500, 500), 0)
	high := geometry.NewSector(rect(500, 0, 1000, 500), highZ)
	area := geometry.NewArea([]*geometry.Sector{low, high}, geometry.DefaultBlockSize)
	w := NewWorld(area, config.Default().Physics)
	w.Sink = &RecordingSink{}
	return w, low, high
}

// loadType builds a custom mob type from script text and fails the test on
// any load error.
func loadType(t *testing.T, w *World, name, script string) *Type {
	t.Helper()
	mt := NewType(name, CategoryCustom)
	if w != nil {
		w.AddType(mt)
	}
	errs := loadTypeErrs(t, mt, script)
	require.Empty(t, errs)
	return mt
}

func loadTypeErrs(t *testing.T, mt *Type, script string) []error {
	t.Helper()
	root, err := datanode.ParseScript(script, mt.Name+".txt")
	require.NoError(t, err)
	return LoadTypeScript(mt, root)
}

// recorder returns a native action that appends tag to log.
func recorder(log *[]string, tag string) CustomFunc {
	return func(*Mob, Payload, Payload) {
		*log = append(*log, tag)
	}
}
