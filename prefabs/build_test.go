package prefabs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/mob"
)

// embeddedOnly disables the disk override for the duration of the test.
func embeddedOnly(t *testing.T) {
	t.Helper()
	prev := Dir()
	SetDir("")
	t.Cleanup(func() { SetDir(prev) })
}

func loadPlayground(t *testing.T) *Scene {
	t.Helper()
	embeddedOnly(t)
	scene, errs := LoadScene("area_playground.yaml", config.Default())
	require.Empty(t, errs)
	require.NotNil(t, scene)
	return scene
}

func mobOfType(t *testing.T, w *mob.World, name string) *mob.Mob {
	t.Helper()
	for _, m := range w.Mobs {
		if m.Type.Name == name {
			return m
		}
	}
	t.Fatalf("no mob of type %q", name)
	return nil
}

func TestLoadScenePlayground(t *testing.T) {
	scene := loadPlayground(t)
	w := scene.World

	assert.Len(t, w.Area.Sectors, 7)
	assert.ElementsMatch(t, []string{"bulborb", "crate", "olimar", "red_pikmin"}, w.SortedTypeNames())
	assert.Len(t, w.Mobs, 6)
	assert.Contains(t, w.Catalog.Hazards, "water")
	assert.Contains(t, w.Catalog.StatusTypes, "spicy")

	require.NotNil(t, w.ActiveLeader)
	assert.Equal(t, "olimar", w.ActiveLeader.Type.Name)

	tests := []struct {
		typ   string
		state string
	}{
		{"olimar", "active"},
		{"red_pikmin", "idling"},
		{"bulborb", "idling"},
		{"crate", "resting"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			m := mobOfType(t, w, tt.typ)
			require.NotNil(t, m.FSM.Cur)
			assert.Equal(t, tt.state, m.FSM.Cur.Name)
		})
	}
}

func TestBuiltinCategoriesKeepTheirStates(t *testing.T) {
	scene := loadPlayground(t)

	leader := scene.World.Types["olimar"]
	require.Len(t, leader.States, 3)
	assert.Equal(t, "inactive", leader.States[mob.LeaderStateInactive].Name)
	assert.Equal(t, leader.StateIndex("dying"), leader.DeathStateIdx)
	assert.NotNil(t, leader.States[mob.LeaderStateActive].Events[mob.EvDamage], "global events reach builtin states")

	follower := scene.World.Types["red_pikmin"]
	require.Len(t, follower.States, 3)
	assert.Equal(t, "following", follower.States[mob.FollowerStateFollowing].Name)
	assert.Contains(t, follower.Sounds, "called")
}

func TestSpecAttributes(t *testing.T) {
	scene := loadPlayground(t)
	bulborb := scene.World.Types["bulborb"]

	assert.Equal(t, 32.0, bulborb.Radius)
	assert.InDelta(t, 2.0944, bulborb.RotationSpeed, 1e-4)
	assert.Equal(t, "bulborb", scene.Types["bulborb"].Name)
	require.Len(t, bulborb.Hitboxes, 2)
	assert.Equal(t, mob.HitboxAttack, bulborb.Hitboxes[1].Kind)
	require.Len(t, bulborb.Reaches, 2)
	assert.InDelta(t, 2.0944, bulborb.Reaches[0].Angle1, 1e-4)
	assert.Contains(t, bulborb.Scripts, "wander")

	crate := scene.World.Types["crate"]
	assert.True(t, crate.Walkable)
	assert.False(t, crate.Pushable)
	assert.Equal(t, 48.0, crate.RectangularDim.X)
}

func TestTengoWanderScript(t *testing.T) {
	scene := loadPlayground(t)
	b := mobOfType(t, scene.World, "bulborb")

	b.FSM.RunEvent(mob.EvTimer, nil, nil)

	assert.Equal(t, "1", b.Vars["wanders"])
	assert.Equal(t, mob.ChaseChasing, b.ChaseInfo.State)
	assert.Greater(t, b.ScriptTimer.TimeLeft, 0.0)
}

func TestTextScriptCrate(t *testing.T) {
	scene := loadPlayground(t)
	w := scene.World
	crate := mobOfType(t, w, "crate")
	other := w.Spawn(w.Types["crate"], crate.Pos, 0, 0, nil)

	other.SendMessage(crate, "hello")
	assert.False(t, crate.ToDelete)

	other.SendMessage(crate, "break")
	assert.True(t, crate.ToDelete)
}

func TestBuildMobTypeErrors(t *testing.T) {
	embeddedOnly(t)

	inline := func(src string) yaml.Node {
		var n yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(src), &n))
		return *n.Content[0]
	}

	tests := []struct {
		name    string
		spec    MobTypeSpec
		wantErr string
		noType  bool
	}{
		{
			name:    "no name",
			spec:    MobTypeSpec{File: "mob_x.yaml"},
			wantErr: "has no name",
			noType:  true,
		},
		{
			name:    "unknown category",
			spec:    MobTypeSpec{Name: "x", Category: "boss", Script: inline("script: {a: {on_enter: [stop]}}")},
			wantErr: `unknown category "boss"`,
		},
		{
			name:    "bad action",
			spec:    MobTypeSpec{Name: "x", File: "mob_x.yaml", Script: inline("script: {a: {on_enter: [jump_around]}}")},
			wantErr: `unknown script action name "jump_around"`,
		},
		{
			name:    "missing text script",
			spec:    MobTypeSpec{Name: "x", Script: inline("nowhere.txt")},
			wantErr: "load script scripts/nowhere.txt",
		},
		{
			name:    "missing tengo script",
			spec:    MobTypeSpec{Name: "x", Scripts: map[string]string{"go": "nowhere.tengo"}, Script: inline("script: {a: {}}")},
			wantErr: "load script nowhere.tengo",
		},
		{
			name:    "no states",
			spec:    MobTypeSpec{Name: "x", File: "mob_x.yaml"},
			wantErr: `mob type "x" has no states`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mob.NewWorld(nil, config.Default().Physics)
			mt, errs := BuildMobType(tt.spec, w)
			require.NotEmpty(t, errs)
			var msgs []string
			for _, err := range errs {
				msgs = append(msgs, err.Error())
			}
			assert.Contains(t, strings.Join(msgs, "\n"), tt.wantErr)
			if tt.noType {
				assert.Nil(t, mt)
			} else {
				assert.NotNil(t, mt)
			}
		})
	}
}

func TestBuildMobTypeLoadErrorLocation(t *testing.T) {
	embeddedOnly(t)
	var spec MobTypeSpec
	require.NoError(t, yaml.Unmarshal([]byte(`
name: x
script:
  script:
    a:
      on_enter:
        - set_state nowhere
`), &spec))
	spec.File = "mob_x.yaml"

	_, errs := BuildMobType(spec, mob.NewWorld(nil, config.Default().Physics))
	require.Len(t, errs, 1)
	var le *mob.LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, "mob_x.yaml", le.File)
	assert.Equal(t, 7, le.Line)
	assert.Equal(t, "x", le.Type)
}

func TestBuildArea(t *testing.T) {
	square := []Vec{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	tests := []struct {
		name    string
		spec    AreaSpec
		wantErr string
	}{
		{
			name: "ok",
			spec: AreaSpec{
				Hazards: []HazardSpec{{Name: "water", Effects: []string{"wet"}, Liquid: true}},
				Sectors: []SectorSpec{{Vertices: square, Hazards: []string{"water"}, Type: "normal"}},
			},
		},
		{
			name:    "too few vertices",
			spec:    AreaSpec{Name: "a", Sectors: []SectorSpec{{Vertices: square[:2]}}},
			wantErr: "sector 0: needs at least 3 vertices, has 2",
		},
		{
			name:    "unknown hazard",
			spec:    AreaSpec{Name: "a", Sectors: []SectorSpec{{Vertices: square, Hazards: []string{"lava"}}}},
			wantErr: `sector 0: unknown hazard "lava"`,
		},
		{
			name:    "unknown type",
			spec:    AreaSpec{Name: "a", Sectors: []SectorSpec{{Vertices: square, Type: "solid"}}},
			wantErr: `sector 0: unknown type "solid"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := mob.NewCatalog()
			area, err := BuildArea(tt.spec, catalog, 0)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, area.Sectors, 1)
			assert.True(t, area.Sectors[0].HasLiquid())
			assert.Equal(t, geometry.DefaultBlockSize, area.Blockmap.BlockSize)
			assert.Same(t, catalog.Hazards["water"], area.Sectors[0].Hazards[0])
		})
	}
}

func TestPopulateUnknownType(t *testing.T) {
	w := mob.NewWorld(nil, config.Default().Physics)
	mobs, err := Populate(w, AreaSpec{Name: "a", Mobs: []PlacementSpec{{Type: "ghost"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mob type "ghost"`)
	assert.Empty(t, mobs)
}
