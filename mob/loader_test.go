package mob

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/datanode"
	"github.com/milk9111/mobengine/geometry"
)

const crabScript = `
first_state = walking
death_state = dead
states_ignoring_death = stunned
states_ignoring_spray = dead; stunned
init {
	set_var mood calm
}
script {
	walking {
		on_enter {
			set_var entered walking
		}
		on_timer {
			set_state stunned
		}
	}
	stunned {
		on_enter {
			set_var entered stunned
		}
	}
	dead {
		on_enter {
			start_dying
		}
	}
}
global {
	on_itch {
		set_var itched 1
	}
}
`

func TestLoadTypeScript(t *testing.T) {
	mt := loadType(t, nil, "crab", crabScript)

	require.Len(t, mt.States, 3)
	assert.Equal(t, 0, mt.FirstStateIdx)
	assert.Equal(t, 2, mt.DeathStateIdx)
	require.Len(t, mt.InitActions, 1)
	assert.Equal(t, ActionSetVar, mt.InitActions[0].Type)

	walking, stunned, dead := mt.States[0], mt.States[1], mt.States[2]

	setState := walking.Event(EvTimer).Actions[0]
	assert.Equal(t, "1", setState.Args[0], "set_state names resolve to indexes")

	for _, st := range mt.States {
		assert.NotNil(t, st.Event(EvItch), "global event in %s", st.Name)
		assert.NotNil(t, st.Event(EvHitboxTouchNA), "generic attack handler in %s", st.Name)
		assert.NotNil(t, st.Event(EvBottomlessPit), "generic pit handler in %s", st.Name)
		assert.NotNil(t, st.Event(EvTouchedHazard), "generic hazard handler in %s", st.Name)
	}

	assert.NotNil(t, walking.Event(EvDeath))
	assert.Nil(t, stunned.Event(EvDeath), "listed as ignoring death")
	assert.Nil(t, dead.Event(EvDeath), "the death state does not die again")

	assert.NotNil(t, walking.Event(EvTouchedSpray))
	assert.Nil(t, stunned.Event(EvTouchedSpray))
	assert.Nil(t, dead.Event(EvTouchedSpray))
}

func TestGlobalEventMergeOrder(t *testing.T) {
	script := `
first_state = a
script {
	a {
		on_itch {
			set_var order state
		}
	}
	b {
		on_itch {
			global_actions_after
			set_var order state
		}
	}
}
global {
	on_itch {
		set_var order global
	}
}
`
	mt := loadType(t, nil, "merge", script)

	first := func(st *State) string { return st.Event(EvItch).Actions[0].Args[1] }
	last := func(st *State) string {
		acts := st.Event(EvItch).Actions
		return acts[len(acts)-1].Args[1]
	}

	assert.Equal(t, "global", first(mt.States[0]))
	assert.Equal(t, "state", last(mt.States[0]))
	assert.Equal(t, "state", first(mt.States[1]))
	assert.Equal(t, "global", last(mt.States[1]))
}

func TestScriptEventsMergeIntoBuiltinStates(t *testing.T) {
	var log []string
	mt := NewType("hybrid", CategoryCustom)

	var c EasyFSMCreator
	c.NewState("idle", 0)
	c.NewEvent(EvItch)
	c.Run(recorder(&log, "builtin"))
	mt.States = c.Finish()

	errs := loadTypeErrs(t, mt, `
script {
	idle {
		on_itch {
			custom_actions_after
			set_var scripted 1
		}
	}
	extra {
	}
}
`)
	require.Empty(t, errs)
	require.Len(t, mt.States, 2)
	acts := mt.States[0].Event(EvItch).Actions
	require.Len(t, acts, 2)
	assert.Equal(t, ActionCustom, acts[0].Type)
	assert.Equal(t, ActionSetVar, acts[1].Type)
	assert.Equal(t, 0, mt.FirstStateIdx, "defaults to the first state")
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown_action", "dance wildly", `unknown script action name "dance"`},
		{"too_few_args", "set_var x", `missing the "value" parameter`},
		{"too_many_args", "set_timer 1 2", `only takes 1 arguments`},
		{"const_param_as_var", "set_var $x 1", `can only be constant`},
		{"unknown_state", "set_state nowhere", `unknown state "nowhere"`},
		{"unknown_animation", "set_animation flail", `unknown animation "flail"`},
		{"bad_enum", "calculate x 1 ^ 2", `"^"`},
		{"unknown_status", "receive_status sleepy", `unknown status effect "sleepy"`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mt := NewType("broken", CategoryCustom)
			mt.Catalog = NewCatalog()
			errs := loadTypeErrs(t, mt, "script {\n\tidle {\n\t\ton_enter {\n\t\t\t"+c.body+"\n\t\t}\n\t}\n}\n")
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), c.want)
			assert.Contains(t, errs[0].Error(), "broken.txt:4: broken:")

			// The bad call is kept, flagged, and does nothing.
			call := mt.States[0].Event(EvEnter).Actions[0]
			assert.False(t, call.Valid)
			assert.False(t, call.Run(nil, nil, nil))
		})
	}
}

func TestUnknownEventName(t *testing.T) {
	mt := NewType("broken", CategoryCustom)
	errs := loadTypeErrs(t, mt, "script {\n\tidle {\n\t\ton_sneeze {\n\t\t}\n\t}\n}\n")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `unknown script event name "on_sneeze"`)
}

func TestBadFirstAndDeathState(t *testing.T) {
	mt := NewType("broken", CategoryCustom)
	errs := loadTypeErrs(t, mt, "first_state = nope\ndeath_state = gone\nscript {\n\tidle {\n\t}\n}\n")
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "first state")
	assert.Contains(t, errs[1].Error(), "death state")
}

func TestAssertActions(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"balanced", []string{"if $a = 1", "set_var b 1", "else", "set_var b 2", "end_if"}, nil},
		{"nested", []string{"if $a = 1", "if $b = 1", "end_if", "end_if"}, nil},
		{"missing_end_if", []string{"if $a = 1", "set_var b 1"}, []string{`without an "end_if"`}},
		{"stray_else", []string{"else"}, []string{`"else" without an "if"`}},
		{"stray_end_if", []string{"end_if"}, []string{`"end_if" without an "if"`}},
		{"double_else", []string{"if $a = 1", "else", "else", "end_if"}, []string{`more than one "else"`}},
		{"repeated_label", []string{"label x", "label x"}, []string{`repeated label "x"`}},
		{"goto_nowhere", []string{"goto y"}, []string{`unknown label "y"`}},
		{"goto_ok", []string{"label y", "goto y"}, nil},
		{"after_set_state", []string{"set_state a", "set_var b 1"}, []string{`"set_var" action after a "set_state"`}},
		{"set_state_then_end_if", []string{"if $a = 1", "set_state a", "end_if"}, nil},
	}

	states := []*State{NewState("a", 0)}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			node := datanode.New("on_enter", "")
			var actions []*ActionCall
			for _, l := range c.lines {
				a, err := ParseAction(datanode.New(l, ""), states, nil)
				require.NoError(t, err)
				actions = append(actions, a)
			}

			errs := AssertActions(actions, node)
			require.Len(t, errs, len(c.want))
			for i, w := range c.want {
				assert.Contains(t, errs[i].Error(), w)
			}
		})
	}
}

func TestGenericHazardHandlerRunsWithScriptedOne(t *testing.T) {
	tests := []struct {
		name        string
		script      string
		wantTouched string
	}{
		{
			name:   "no scripted handler",
			script: "script {\n\tidle {\n\t}\n}\n",
		},
		{
			name:        "scripted handler",
			script:      "script {\n\tidle {\n\t\ton_touch_hazard {\n\t\t\tset_var touched 1\n\t\t}\n\t}\n}\n",
			wantTouched: "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(nil, config.Default().Physics)
			wet := &StatusType{Name: "wet", Duration: 5}
			w.Catalog.StatusTypes["wet"] = wet
			mt := loadType(t, w, "walker", tt.script)
			m := w.Spawn(mt, cp.Vector{}, 0, 0, nil)

			water := &geometry.Hazard{Name: "water", Effects: []string{"wet"}}
			m.FSM.RunEvent(EvTouchedHazard, HazardPayload{Hazard: water}, nil)

			assert.Equal(t, tt.wantTouched, m.Vars["touched"])
			require.Len(t, m.Statuses, 1)
			assert.Same(t, wet, m.Statuses[0].Type)
		})
	}
}
