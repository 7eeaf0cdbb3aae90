package mob

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Tick(physDT)
	}
}

func TestTouchEvents(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "bumper", `
script {
	idle {
		on_touch_object {
			set_var touched 1
		}
		on_touch_opponent {
			set_var fight 1
		}
	}
}
`)
	a := w.Spawn(mt, cp.Vector{X: 200, Y: 200}, 0, 0, nil)
	b := w.Spawn(mt, cp.Vector{X: 220, Y: 200}, 0, 0, nil)
	far := w.Spawn(mt, cp.Vector{X: 400, Y: 400}, 0, 0, nil)
	b.Team = 5

	w.Tick(physDT)
	assert.Equal(t, "1", a.Vars["touched"])
	assert.Equal(t, "1", b.Vars["touched"])
	assert.NotContains(t, far.Vars, "touched")
	assert.NotContains(t, a.Vars, "fight", "team none has no opponents")
}

func attackPair(t *testing.T, defense float64) (*World, *Mob, *Mob) {
	w, _, _ := newTestWorld(0)
	victimType := loadType(t, w, "victim", `
script {
	idle {
		on_damage {
			calculate hurt $hurt + 1
		}
	}
}
`)
	victimType.MaxHealth = 100
	victimType.Pushes = false
	victimType.Hitboxes = []Hitbox{{BodyPart: "body", Kind: HitboxNormal, Radius: 16, Value: defense}}

	attackerType := loadType(t, w, "attacker", `
script {
	idle {
		on_hitbox_touch_a_n {
			set_var bit 1
		}
	}
}
`)
	attackerType.Pushes = false
	attackerType.Hitboxes = []Hitbox{{BodyPart: "jaw", Kind: HitboxAttack, Radius: 16, Value: 10}}

	v := w.Spawn(victimType, cp.Vector{X: 200, Y: 200}, 0, 0, nil)
	a := w.Spawn(attackerType, cp.Vector{X: 220, Y: 200}, 0, 0, nil)
	return w, v, a
}

func TestAttackDamageAndCooldown(t *testing.T) {
	w, v, a := attackPair(t, 2)

	w.Tick(physDT)
	assert.Equal(t, 95.0, v.Health, "power 10 against defense 2")
	assert.Equal(t, "1", v.Vars["hurt"])
	assert.Equal(t, "1", a.Vars["bit"])

	tickN(w, 2)
	assert.Equal(t, 95.0, v.Health, "still cooling down")

	tickN(w, 7)
	assert.Equal(t, 90.0, v.Health)
	assert.Equal(t, "2", v.Vars["hurt"])
}

func TestZeroDefenseIsInvulnerable(t *testing.T) {
	w, v, a := attackPair(t, 0)

	tickN(w, 3)
	assert.Equal(t, 100.0, v.Health)
	assert.NotContains(t, v.Vars, "hurt")
	assert.Equal(t, "1", a.Vars["bit"], "the attacker still connects")
}

func TestDeathSwitchesToDeathState(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "fragile", `
death_state = dead
script {
	alive {
		on_enter {
			set_health 0
		}
	}
	dead {
		on_enter {
			calculate died $died + 1
		}
	}
}
`)
	mt.MaxHealth = 10
	m := w.Spawn(mt, cp.Vector{X: 200, Y: 200}, 0, 0, nil)

	tickN(w, 3)
	assert.Equal(t, "dead", m.FSM.CurStateName())
	assert.Equal(t, "1", m.Vars["died"])
}

func TestScriptTimer(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "clock", `
script {
	idle {
		on_enter {
			set_timer 1
		}
		on_timer {
			calculate rang $rang + 1
		}
	}
}
`)
	m := w.Spawn(mt, cp.Vector{X: 200, Y: 200}, 0, 0, nil)

	tickN(w, 9)
	assert.NotContains(t, m.Vars, "rang")
	tickN(w, 2)
	assert.Equal(t, "1", m.Vars["rang"])
}

func TestSpawnAndLinks(t *testing.T) {
	w, _, _ := newTestWorld(0)
	kid := loadType(t, w, "kid", `
script {
	idle {
		on_receive_message {
			get_info heard message
		}
	}
}
`)
	parent := NewType("parent", CategoryCustom)
	parent.Spawns = []SpawnInfo{{Name: "egg", TypeName: kid.Name, Relative: true, Coords: cp.Vector{X: 10}, LinkObjectToSpawn: true}}
	w.AddType(parent)
	require.Empty(t, loadTypeErrs(t, parent, `
script {
	idle {
		on_enter {
			spawn egg
			send_message_to_links hatch
		}
	}
}
`))

	p := w.Spawn(parent, cp.Vector{X: 200, Y: 200}, 0, math.Pi/2, nil)
	require.Len(t, w.Mobs, 2)
	k := w.Mobs[1]
	assert.Same(t, kid, k.Type)
	assert.InDelta(t, 200, k.Pos.X, 1e-9)
	assert.InDelta(t, 210, k.Pos.Y, 1e-9)
	assert.Equal(t, []*Mob{k}, p.Links)
	assert.Equal(t, "hatch", k.Vars["heard"])
}

func TestPurgeClearsReferences(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "watcher", `
script {
	idle {
		on_focus_off_reach {
			set_var lost 1
		}
	}
}
`)
	a := w.Spawn(mt, cp.Vector{X: 100, Y: 100}, 0, 0, nil)
	b := w.Spawn(mt, cp.Vector{X: 300, Y: 300}, 0, 0, nil)
	a.FocusOn(b)
	a.Links = append(a.Links, b)
	b.ToDelete = true

	w.Tick(physDT)
	assert.Nil(t, a.Focused)
	assert.Empty(t, a.Links)
	assert.Equal(t, []*Mob{a}, w.Mobs)
	assert.Nil(t, w.MobByID(b.ID))
}

func TestPurgeLeavesStateAndReleases(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "thing", `
script {
	idle {
		on_leave {
			set_var left 1
		}
		on_released {
			set_var released 1
		}
	}
}
`)
	doomed := w.Spawn(mt, cp.Vector{X: 200, Y: 200}, 0, 0, nil)
	chaser := w.Spawn(mt, cp.Vector{X: 100, Y: 100}, 0, 0, nil)
	held := w.Spawn(mt, cp.Vector{X: 210, Y: 200}, 0, 0, nil)
	limb := w.Spawn(mt, cp.Vector{X: 220, Y: 200}, 0, 0, nil)

	chaser.Chase(cp.Vector{}, 0, ChaseOptions{Orig: &doomed.Pos, OrigZ: &doomed.Z})
	chaser.Face(0, &doomed.Pos)
	doomed.Hold(held, InvalidIndex, 1, 0, false, HoldRotationNever)
	held.Chase(cp.Vector{X: 50}, 0, ChaseOptions{})
	limb.Parent = &MobParent{Mob: doomed}
	doomed.ToDelete = true

	w.Tick(physDT)

	assert.Equal(t, "1", doomed.Vars["left"], "on_leave runs on deletion")
	assert.Nil(t, doomed.FSM.Cur)

	assert.Equal(t, ChaseStopped, chaser.ChaseInfo.State)
	assert.Nil(t, chaser.ChaseInfo.Orig)
	assert.Nil(t, chaser.IntendedTurnPos)

	assert.Equal(t, "1", held.Vars["released"])
	assert.Nil(t, held.Holder.Mob)
	assert.Equal(t, ChaseStopped, held.ChaseInfo.State)

	assert.True(t, limb.ToDelete)
	assert.Equal(t, []*Mob{chaser, held}, w.Mobs)
}

func sprayWorld(t *testing.T) (*World, *Mob, *Type) {
	w, _, _ := newTestWorld(0)
	w.Catalog.StatusTypes["sticky"] = &StatusType{Name: "sticky", SpeedMultiplier: 0.5, Duration: 5}

	target := loadType(t, w, "target", "script {\n\tidle {\n\t}\n}\n")
	sprayer := NewType("sprayer", CategoryLeader)
	sprayer.Sprays = []SprayType{{
		Name: "ultra", Effects: []string{"sticky"},
		AngleRange: math.Pi / 2, Distance: 100, Charges: 2,
		Particles: "mist",
	}}
	w.AddType(sprayer)
	s := w.Spawn(sprayer, cp.Vector{X: 200, Y: 200}, 0, 0, nil)
	return w, s, target
}

func TestSprayWithNobodyAroundIsNoop(t *testing.T) {
	w, s, target := sprayWorld(t)
	behind := w.Spawn(target, cp.Vector{X: 100, Y: 200}, 0, 0, nil)

	assert.False(t, w.Spray(s, 0))
	assert.Equal(t, []int{2}, s.SprayCharges)
	assert.Empty(t, behind.Statuses)
	assert.Empty(t, w.Sink.(*RecordingSink).Calls)
}

func TestSprayAffectsMobsInFront(t *testing.T) {
	w, s, target := sprayWorld(t)
	front := w.Spawn(target, cp.Vector{X: 260, Y: 210}, 0, 0, nil)
	behind := w.Spawn(target, cp.Vector{X: 100, Y: 200}, 0, 0, nil)

	require.True(t, w.Spray(s, 0))
	assert.Equal(t, []int{1}, s.SprayCharges)
	require.Len(t, front.Statuses, 1)
	assert.Equal(t, "sticky", front.Statuses[0].Type.Name)
	assert.Equal(t, 0.5, front.SpeedMultiplier())
	assert.Empty(t, behind.Statuses)
	assert.Equal(t, []string{"start_particles"}, w.Sink.(*RecordingSink).Kinds())

	require.True(t, w.Spray(s, 0))
	assert.False(t, w.Spray(s, 0), "out of charges")
}

func TestStatusExpires(t *testing.T) {
	w, _, target := sprayWorld(t)
	m := w.Spawn(target, cp.Vector{X: 300, Y: 300}, 0, 0, nil)
	m.ApplyStatus(w.Catalog.StatusTypes["sticky"], false, false)

	tickN(w, 45)
	assert.Len(t, m.Statuses, 1)
	tickN(w, 10)
	assert.Empty(t, m.Statuses)
}

func TestFarFromHome(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mt := loadType(t, w, "homebody", `
script {
	idle {
		on_far_from_home {
			set_var far 1
		}
	}
}
`)
	mt.TerritoryRadius = 50
	m := w.Spawn(mt, cp.Vector{X: 100, Y: 100}, 0, 0, nil)

	w.Tick(physDT)
	assert.NotContains(t, m.Vars, "far")
	m.Pos = cp.Vector{X: 200, Y: 100}
	w.Tick(physDT)
	assert.Equal(t, "1", m.Vars["far"])
}

func TestSwallowChompedKeepsTheRestInTheMouth(t *testing.T) {
	w, _, _ := newTestWorld(0)
	mouth := NewType("mouth", CategoryCustom)
	w.AddType(mouth)
	victimType := loadType(t, w, "victim", `
script {
	idle {
		on_swallowed {
			set_var swallowed 1
		}
	}
}
`)
	eater := w.Spawn(mouth, cp.Vector{X: 100, Y: 100}, 0, 0, nil)
	eater.ChompMax = 3
	var victims []*Mob
	for i := range 3 {
		v := w.Spawn(victimType, cp.Vector{X: 110 + float64(i), Y: 100}, 0, 0, nil)
		eater.Chomp(v, InvalidIndex)
		victims = append(victims, v)
	}
	require.Len(t, eater.Chomping, 3)

	eater.SwallowChomped(1)
	assert.Len(t, eater.Chomping, 2)
	assert.Len(t, eater.Holding, 2)

	swallowed := 0
	for _, v := range victims {
		if v.Vars["swallowed"] == "1" {
			swallowed++
			assert.Nil(t, v.Holder.Mob)
			assert.Zero(t, v.Health)
		} else {
			assert.Same(t, eater, v.Holder.Mob)
		}
	}
	assert.Equal(t, 1, swallowed)

	eater.ReleaseChomped()
	assert.Empty(t, eater.Chomping)
	assert.Empty(t, eater.Holding)
	for _, v := range victims {
		assert.Nil(t, v.Holder.Mob)
	}
}
