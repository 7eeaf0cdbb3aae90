package mob

import (
	"fmt"
	"strings"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/datanode"
)

type ActionType int

const (
	ActionUnknown ActionType = iota
	// ActionCustom calls run native code instead of a table entry.
	ActionCustom
	ActionAddHealth
	ActionArachnorbPlanLogic
	ActionCalculate
	ActionDelete
	ActionDrainLiquid
	ActionElse
	ActionEndIf
	ActionFinishDying
	ActionFocus
	ActionGetChomped
	ActionGetInfo
	ActionGetFocusInfo
	ActionGetFocusVar
	ActionGetRandomDecimal
	ActionGetRandomInt
	ActionGoto
	ActionHoldFocus
	ActionIf
	ActionLabel
	ActionMoveToAbsolute
	ActionMoveToRelative
	ActionMoveToTarget
	ActionOrderRelease
	ActionPlaySound
	ActionPrint
	ActionReceiveStatus
	ActionRelease
	ActionRemoveStatus
	ActionRunScript
	ActionSendMessageToFocus
	ActionSendMessageToLinks
	ActionSendMessageToNearby
	ActionSetAnimation
	ActionSetCanBlockPaths
	ActionSetFarReach
	ActionSetFlying
	ActionSetGravity
	ActionSetHealth
	ActionSetHeight
	ActionSetHiding
	ActionSetHoldable
	ActionSetHuntable
	ActionSetLimbAnimation
	ActionSetNearReach
	ActionSetRadius
	ActionSetSectorScroll
	ActionSetShadowVisibility
	ActionSetState
	ActionSetTangible
	ActionSetTeam
	ActionSetTimer
	ActionSetVar
	ActionShowMessageFromVar
	ActionSpawn
	ActionStabilizeZ
	ActionStartChomping
	ActionStartDying
	ActionStartHeightEffect
	ActionStartParticles
	ActionStop
	ActionStopChomping
	ActionStopHeightEffect
	ActionStopParticles
	ActionStopSound
	ActionStopVertically
	ActionSwallow
	ActionSwallowAll
	ActionTeleportToAbsolute
	ActionTeleportToRelative
	ActionThrowFocus
	ActionTurnToAbsolute
	ActionTurnToRelative
	ActionTurnToTarget

	actionTypeCount
)

type ParamType int

const (
	ParamFloat ParamType = iota
	ParamInt
	ParamBool
	ParamString
	ParamEnum
)

// ActionParam describes one parameter of an action. ForceConst params may
// not be given as variables. An Extras param swallows every remaining
// argument, and Optional params may be left out at the end of a line.
type ActionParam struct {
	Name       string
	Type       ParamType
	ForceConst bool
	Extras     bool
	Optional   bool
}

type actionDef struct {
	Type   ActionType
	Name   string
	Params []ActionParam
	Run    func(r *actionRun)
	// Load does extra validation and argument rewriting after the generic
	// checks. It returns a non-empty message on failure.
	Load func(c *ActionCall) string
}

func (d *actionDef) arity() (mandatory, max int, extras bool) {
	for _, p := range d.Params {
		switch {
		case p.Extras:
			extras = true
		case p.Optional:
			max++
		default:
			mandatory++
			max++
		}
	}
	return mandatory, max, extras
}

var (
	actionDefs   []*actionDef
	actionByName map[string]*actionDef
)

func p(name string, t ParamType, forceConst bool) ActionParam {
	return ActionParam{Name: name, Type: t, ForceConst: forceConst}
}

func opt(name string, t ParamType) ActionParam {
	return ActionParam{Name: name, Type: t, Optional: true}
}

func extras(name string, t ParamType, forceConst bool) ActionParam {
	return ActionParam{Name: name, Type: t, ForceConst: forceConst, Extras: true}
}

func init() {
	actionDefs = []*actionDef{
		{ActionAddHealth, "add_health", []ActionParam{p("amount", ParamFloat, false)}, runAddHealth, nil},
		{ActionArachnorbPlanLogic, "arachnorb_plan_logic", []ActionParam{p("goal", ParamEnum, true)}, runArachnorbPlanLogic, loadEnum(0, arachnorbGoals)},
		{ActionCalculate, "calculate", []ActionParam{
			p("destination variable", ParamString, true),
			p("operand", ParamFloat, false),
			p("operation", ParamEnum, true),
			p("operand", ParamFloat, false),
		}, runCalculate, loadEnum(2, calculateOps)},
		{ActionDelete, "delete", nil, runDelete, nil},
		{ActionDrainLiquid, "drain_liquid", nil, runDrainLiquid, nil},
		{ActionElse, "else", nil, nil, nil},
		{ActionEndIf, "end_if", nil, nil, nil},
		{ActionFinishDying, "finish_dying", nil, runFinishDying, nil},
		{ActionFocus, "focus", []ActionParam{p("target", ParamEnum, true)}, runFocus, loadEnum(0, focusTargets)},
		{ActionGetChomped, "get_chomped", nil, runGetChomped, nil},
		{ActionGetInfo, "get_info", []ActionParam{
			p("variable name", ParamString, true),
			p("info", ParamEnum, true),
		}, runGetInfo, loadEnum(1, infoTypes)},
		{ActionGetFocusInfo, "get_focus_info", []ActionParam{
			p("variable name", ParamString, true),
			p("info", ParamEnum, true),
		}, runGetFocusInfo, loadEnum(1, infoTypes)},
		{ActionGetFocusVar, "get_focus_var", []ActionParam{
			p("this mob's var name", ParamString, true),
			p("focused mob's var name", ParamString, true),
		}, runGetFocusVar, nil},
		{ActionGetRandomDecimal, "get_random_decimal", []ActionParam{
			p("variable name", ParamString, true),
			p("minimum value", ParamFloat, false),
			p("maximum value", ParamFloat, false),
		}, runGetRandomDecimal, nil},
		{ActionGetRandomInt, "get_random_int", []ActionParam{
			p("variable name", ParamString, true),
			p("minimum value", ParamInt, false),
			p("maximum value", ParamInt, false),
		}, runGetRandomInt, nil},
		{ActionGoto, "goto", []ActionParam{p("label name", ParamString, true)}, nil, nil},
		{ActionHoldFocus, "hold_focus", []ActionParam{
			p("body part", ParamString, true),
			opt("above", ParamBool),
		}, runHoldFocus, loadHoldFocus},
		{ActionIf, "if", []ActionParam{
			p("comparand", ParamString, false),
			p("operation", ParamEnum, true),
			extras("value", ParamString, false),
		}, runIf, loadEnum(1, ifOps)},
		{ActionLabel, "label", []ActionParam{p("label name", ParamString, true)}, nil, nil},
		{ActionMoveToAbsolute, "move_to_absolute", []ActionParam{
			p("x", ParamFloat, false),
			p("y", ParamFloat, false),
			opt("z", ParamFloat),
		}, runMoveToAbsolute, nil},
		{ActionMoveToRelative, "move_to_relative", []ActionParam{
			p("x", ParamFloat, false),
			p("y", ParamFloat, false),
			opt("z", ParamFloat),
		}, runMoveToRelative, nil},
		{ActionMoveToTarget, "move_to_target", []ActionParam{p("target", ParamEnum, true)}, runMoveToTarget, loadEnum(0, moveTargets)},
		{ActionOrderRelease, "order_release", nil, runOrderRelease, nil},
		{ActionPlaySound, "play_sound", []ActionParam{p("sound name", ParamString, true)}, runPlaySound, loadSound},
		{ActionPrint, "print", []ActionParam{extras("text", ParamString, false)}, runPrint, nil},
		{ActionReceiveStatus, "receive_status", []ActionParam{p("status name", ParamEnum, true)}, runReceiveStatus, loadStatus},
		{ActionRelease, "release", nil, runRelease, nil},
		{ActionRemoveStatus, "remove_status", []ActionParam{p("status name", ParamEnum, true)}, runRemoveStatus, loadStatus},
		{ActionRunScript, "run_script", []ActionParam{p("script name", ParamString, true)}, runRunScript, loadRunScript},
		{ActionSendMessageToFocus, "send_message_to_focus", []ActionParam{p("message", ParamString, false)}, runSendMessageToFocus, nil},
		{ActionSendMessageToLinks, "send_message_to_links", []ActionParam{p("message", ParamString, false)}, runSendMessageToLinks, nil},
		{ActionSendMessageToNearby, "send_message_to_nearby", []ActionParam{
			p("distance", ParamFloat, false),
			p("message", ParamString, false),
		}, runSendMessageToNearby, nil},
		{ActionSetAnimation, "set_animation", []ActionParam{
			p("animation name", ParamString, true),
			extras("options", ParamEnum, true),
		}, runSetAnimation, loadSetAnimation},
		{ActionSetCanBlockPaths, "set_can_block_paths", []ActionParam{p("blockable", ParamBool, false)}, runSetCanBlockPaths, nil},
		{ActionSetFarReach, "set_far_reach", []ActionParam{p("reach name", ParamEnum, true)}, runSetFarReach, loadReach},
		{ActionSetFlying, "set_flying", []ActionParam{p("flying", ParamBool, false)}, runSetFlying, nil},
		{ActionSetGravity, "set_gravity", []ActionParam{p("multiplier", ParamFloat, false)}, runSetGravity, nil},
		{ActionSetHealth, "set_health", []ActionParam{p("amount", ParamFloat, false)}, runSetHealth, nil},
		{ActionSetHeight, "set_height", []ActionParam{p("height", ParamFloat, false)}, runSetHeight, nil},
		{ActionSetHiding, "set_hiding", []ActionParam{p("hiding", ParamBool, false)}, runSetHiding, nil},
		{ActionSetHoldable, "set_holdable", []ActionParam{extras("options", ParamEnum, true)}, runSetHoldable, loadSetHoldable},
		{ActionSetHuntable, "set_huntable", []ActionParam{p("huntable", ParamBool, false)}, runSetHuntable, nil},
		{ActionSetLimbAnimation, "set_limb_animation", []ActionParam{p("animation name", ParamString, false)}, runSetLimbAnimation, nil},
		{ActionSetNearReach, "set_near_reach", []ActionParam{p("reach name", ParamEnum, true)}, runSetNearReach, loadReach},
		{ActionSetRadius, "set_radius", []ActionParam{p("radius", ParamFloat, false)}, runSetRadius, nil},
		{ActionSetSectorScroll, "set_sector_scroll", []ActionParam{
			p("x speed", ParamFloat, false),
			p("y speed", ParamFloat, false),
		}, runSetSectorScroll, nil},
		{ActionSetShadowVisibility, "set_shadow_visibility", []ActionParam{p("visible", ParamBool, false)}, runSetShadowVisibility, nil},
		{ActionSetState, "set_state", []ActionParam{p("state name", ParamString, true)}, runSetState, nil},
		{ActionSetTangible, "set_tangible", []ActionParam{p("tangible", ParamBool, false)}, runSetTangible, nil},
		{ActionSetTeam, "set_team", []ActionParam{p("team name", ParamEnum, true)}, runSetTeam, loadEnum(0, Teams)},
		{ActionSetTimer, "set_timer", []ActionParam{p("time", ParamFloat, false)}, runSetTimer, nil},
		{ActionSetVar, "set_var", []ActionParam{
			p("variable name", ParamString, true),
			p("value", ParamString, false),
		}, runSetVar, nil},
		{ActionShowMessageFromVar, "show_message_from_var", []ActionParam{p("variable name", ParamString, true)}, runShowMessageFromVar, nil},
		{ActionSpawn, "spawn", []ActionParam{p("spawn data", ParamEnum, true)}, runSpawn, loadSpawn},
		{ActionStabilizeZ, "stabilize_z", []ActionParam{
			p("reference", ParamEnum, true),
			p("offset", ParamFloat, false),
		}, runStabilizeZ, loadEnum(0, stabilizeRefs)},
		{ActionStartChomping, "start_chomping", []ActionParam{
			p("victim max", ParamInt, false),
			p("body part", ParamEnum, true),
			extras("more body parts", ParamEnum, true),
		}, runStartChomping, loadStartChomping},
		{ActionStartDying, "start_dying", nil, runStartDying, nil},
		{ActionStartHeightEffect, "start_height_effect", nil, runStartHeightEffect, nil},
		{ActionStartParticles, "start_particles", []ActionParam{
			p("generator name", ParamEnum, true),
			extras("offset coordinates", ParamFloat, false),
		}, runStartParticles, loadStartParticles},
		{ActionStop, "stop", nil, runStop, nil},
		{ActionStopChomping, "stop_chomping", nil, runStopChomping, nil},
		{ActionStopHeightEffect, "stop_height_effect", nil, runStopHeightEffect, nil},
		{ActionStopParticles, "stop_particles", nil, runStopParticles, nil},
		{ActionStopSound, "stop_sound", nil, runStopSound, nil},
		{ActionStopVertically, "stop_vertically", nil, runStopVertically, nil},
		{ActionSwallow, "swallow", []ActionParam{p("amount", ParamInt, false)}, runSwallow, nil},
		{ActionSwallowAll, "swallow_all", nil, runSwallowAll, nil},
		{ActionTeleportToAbsolute, "teleport_to_absolute", []ActionParam{
			p("x", ParamFloat, false),
			p("y", ParamFloat, false),
			p("z", ParamFloat, false),
		}, runTeleportToAbsolute, nil},
		{ActionTeleportToRelative, "teleport_to_relative", []ActionParam{
			p("x", ParamFloat, false),
			p("y", ParamFloat, false),
			p("z", ParamFloat, false),
		}, runTeleportToRelative, nil},
		{ActionThrowFocus, "throw_focus", []ActionParam{
			p("x", ParamFloat, false),
			p("y", ParamFloat, false),
			p("z", ParamFloat, false),
			p("max height", ParamFloat, false),
		}, runThrowFocus, nil},
		{ActionTurnToAbsolute, "turn_to_absolute", []ActionParam{
			p("angle or x", ParamFloat, false),
			opt("y", ParamFloat),
		}, runTurnToAbsolute, nil},
		{ActionTurnToRelative, "turn_to_relative", []ActionParam{
			p("angle or x", ParamFloat, false),
			opt("y", ParamFloat),
		}, runTurnToRelative, nil},
		{ActionTurnToTarget, "turn_to_target", []ActionParam{p("target", ParamEnum, true)}, runTurnToTarget, loadEnum(0, turnTargets)},
	}

	actionByName = make(map[string]*actionDef, len(actionDefs))
	for _, d := range actionDefs {
		actionByName[d.Name] = d
	}
}

// CustomFunc is native code run in place of a scripted action.
type CustomFunc func(m *Mob, d1, d2 Payload)

// ActionCall is one line of an event: an action plus its arguments, or a
// piece of native code. Calls that failed to load are kept with Valid set
// to false and do nothing when run.
type ActionCall struct {
	Type     ActionType
	Args     []string
	ArgIsVar []bool
	Custom   CustomFunc
	Valid    bool

	// ParentEvent is the event type this call belongs to. Some actions
	// read their payload differently depending on it.
	ParentEvent EventType

	def *actionDef
	mt  *Type
}

// NewCustomAction wraps native code as an action call.
func NewCustomAction(fn CustomFunc) *ActionCall {
	return &ActionCall{Type: ActionCustom, Custom: fn, Valid: true}
}

// NewActionCall builds a call to the named action with literal arguments,
// without the load-time checks. Builtin behaviors use it.
func NewActionCall(t ActionType, args ...string) *ActionCall {
	c := &ActionCall{Type: t, Args: args, ArgIsVar: make([]bool, len(args)), Valid: true}
	for _, d := range actionDefs {
		if d.Type == t {
			c.def = d
			break
		}
	}
	return c
}

// Name returns the script name of the call's action.
func (c *ActionCall) Name() string {
	switch {
	case c.def != nil:
		return c.def.Name
	case c.Type == ActionCustom:
		return "custom"
	}
	return "unknown"
}

// ParseAction loads an action line such as "set_animation idling" from a
// script node. The returned call is never nil: when the line is malformed
// the call is flagged invalid and the error describes why, so loading can
// go on and report every problem in one pass.
//
// When states is not nil, set_state targets are resolved against it right
// away; otherwise they keep their names until FixStates runs.
func ParseAction(node *datanode.Node, states []*State, mt *Type) (*ActionCall, error) {
	c := &ActionCall{mt: mt}

	words := strings.Fields(node.Name)
	if len(words) == 0 {
		return c, newLoadError(node, mt, "empty action line")
	}
	name, words := words[0], words[1:]

	def, ok := actionByName[name]
	if !ok {
		return c, newLoadError(node, mt, fmt.Sprintf("unknown script action name %q", name))
	}
	c.def = def
	c.Type = def.Type

	mandatory, max, hasExtras := def.arity()
	if len(words) < mandatory {
		return c, newLoadError(node, mt, fmt.Sprintf(
			"the %q action needs %d arguments, but this call only has %d; missing the %q parameter",
			def.Name, mandatory, len(words), def.Params[len(words)].Name,
		))
	}
	if !hasExtras && len(words) > max {
		return c, newLoadError(node, mt, fmt.Sprintf(
			"the %q action only takes %d arguments, but this call has %d",
			def.Name, max, len(words),
		))
	}

	for i, w := range words {
		param := def.Params[min(i, len(def.Params)-1)]
		isVar := len(w) > 1 && w[0] == '$'
		if isVar && w[1] == '$' {
			// "$$" is a literal "$".
			isVar = false
			w = w[1:]
		}
		if isVar {
			if param.ForceConst {
				return c, newLoadError(node, mt, fmt.Sprintf(
					"argument #%d (%q) is a variable, but the parameter %q can only be constant",
					i+1, w, param.Name,
				))
			}
			w = w[1:]
		}
		c.Args = append(c.Args, w)
		c.ArgIsVar = append(c.ArgIsVar, isVar)
	}

	if def.Type == ActionSetState && states != nil && !c.ArgIsVar[0] {
		idx := InvalidIndex
		for i, s := range states {
			if s.Name == c.Args[0] {
				idx = i
				break
			}
		}
		if idx == InvalidIndex {
			return c, newLoadError(node, mt, fmt.Sprintf("unknown state %q", c.Args[0]))
		}
		c.Args[0] = common.I2S(idx)
	}

	if def.Load != nil {
		if msg := def.Load(c); msg != "" {
			return c, newLoadError(node, mt, msg)
		}
	}

	c.Valid = true
	return c, nil
}

// Run executes the call against m. Only "if" returns a meaningful value:
// the result of its comparison. Invalid calls return false and do nothing.
func (c *ActionCall) Run(m *Mob, d1, d2 Payload) bool {
	if c == nil || !c.Valid || m == nil {
		return false
	}
	if c.Custom != nil {
		c.Custom(m, d1, d2)
		return false
	}
	if c.def == nil || c.def.Run == nil {
		return false
	}

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		if c.ArgIsVar[i] {
			args[i] = m.Vars[a]
		} else {
			args[i] = a
		}
	}

	r := &actionRun{m: m, call: c, args: args, d1: d1, d2: d2}
	c.def.Run(r)
	return r.ret
}

// actionRun is the state of one execution of an action call.
type actionRun struct {
	m    *Mob
	call *ActionCall
	args []string
	d1   Payload
	d2   Payload
	ret  bool
}

func (r *actionRun) s(i int) string {
	if i < 0 || i >= len(r.args) {
		return ""
	}
	return r.args[i]
}

func (r *actionRun) f(i int) float64 { return common.S2F(r.s(i)) }
func (r *actionRun) i(i int) int     { return common.S2I(r.s(i)) }
func (r *actionRun) b(i int) bool    { return common.S2B(r.s(i)) }

// tail joins every argument from i on with single spaces.
func (r *actionRun) tail(i int) string {
	if i >= len(r.args) {
		return ""
	}
	return strings.Join(r.args[i:], " ")
}
