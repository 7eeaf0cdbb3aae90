package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCleanScriptPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"crate.txt", "scripts/crate.txt"},
		{"scripts/crate.txt", "scripts/crate.txt"},
		{"prefabs/scripts/crate.txt", "scripts/crate.txt"},
		{"prefabs/bulborb_wander.tengo", "scripts/bulborb_wander.tengo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanScriptPath(tt.in))
		})
	}
}

func TestEmbeddedContent(t *testing.T) {
	embeddedOnly(t)

	mobs, err := List(mobTypePattern)
	require.NoError(t, err)
	assert.Equal(t, []string{"mob_bulborb.yaml", "mob_crate.yaml", "mob_olimar.yaml", "mob_red_pikmin.yaml"}, mobs)

	areas, err := AreaFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"area_playground.yaml"}, areas)

	src, err := LoadScript("bulborb_wander.tengo")
	require.NoError(t, err)
	assert.Contains(t, string(src), "mob.action")

	_, ok := ModTime("mob_crate.yaml")
	assert.False(t, ok, "embedded files have no disk mod time")
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	prev := Dir()
	SetDir(dir)
	t.Cleanup(func() { SetDir(prev) })

	override := []byte("name: crate\nscript: {script: {only: {}}}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mob_crate.yaml"), override, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mob_extra.yaml"), []byte("name: extra\n"), 0o644))

	data, err := Load("mob_crate.yaml")
	require.NoError(t, err)
	assert.Equal(t, override, data)

	data, err = Load(filepath.Join(dir, "mob_crate.yaml"))
	require.NoError(t, err)
	assert.Equal(t, override, data)

	names, err := List(mobTypePattern)
	require.NoError(t, err)
	assert.Contains(t, names, "mob_extra.yaml")
	assert.Contains(t, names, "mob_bulborb.yaml")

	_, ok := ModTime("mob_crate.yaml")
	assert.True(t, ok)

	spec, err := LoadMobTypeSpec("mob_crate.yaml")
	require.NoError(t, err)
	assert.Equal(t, "crate", spec.Name)
	assert.Equal(t, "mob_crate.yaml", spec.File)
}

func TestVecUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Vec
		wantErr bool
	}{
		{name: "pair", src: "pos: [3, -4.5]", want: Vec{X: 3, Y: -4.5}},
		{name: "too short", src: "pos: [3]", wantErr: true},
		{name: "scalar", src: "pos: 3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PlacementSpec
			err := yaml.Unmarshal([]byte(tt.src), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Pos)
		})
	}
}
