package mob

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/milk9111/mobengine/datanode"
	"github.com/milk9111/mobengine/logging"
)

// LoadError is a problem found while loading a mob script. Loading carries
// on past it.
type LoadError struct {
	File string
	Line int
	Type string
	Msg  string
}

func (e *LoadError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "(no file)"
	}
	if e.Type == "" {
		return fmt.Sprintf("%s:%d: %s", loc, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s: %s", loc, e.Line, e.Type, e.Msg)
}

func newLoadError(node *datanode.Node, mt *Type, msg string) error {
	e := &LoadError{Msg: msg}
	if node != nil {
		e.File = node.File
		e.Line = node.Line
	}
	if mt != nil {
		e.Type = mt.Name
	}
	return e
}

// errList collects load errors and logs each one as it arrives.
type errList []error

func (l *errList) add(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		fields := []zap.Field{zap.Error(err)}
		if le, ok := err.(*LoadError); ok {
			fields = append(fields,
				zap.String("file", le.File),
				zap.Int("line", le.Line),
				zap.String("type", le.Type),
			)
		}
		logging.Warn("script load error", fields...)
		*l = append(*l, err)
	}
}

const (
	settingCustomActionsAfter = "custom_actions_after"
	settingGlobalActionsAfter = "global_actions_after"
)

// LoadTypeScript loads a mob type's whole script file: its init actions,
// its states and the first/death state settings. States already present
// on mt, such as builtin ones, are kept and receive the scripted events of
// the same name.
func LoadTypeScript(mt *Type, root *datanode.Node) []error {
	var errs errList

	if v := root.ChildByName("death_state", 0).Value; v != "" {
		mt.DeathStateName = v
	}
	if v := root.ChildByName("first_state", 0).Value; v != "" {
		mt.FirstStateName = v
	}
	mt.StatesIgnoringDeath = append(mt.StatesIgnoringDeath, splitList(root.ChildByName("states_ignoring_death", 0).Value)...)
	mt.StatesIgnoringSpray = append(mt.StatesIgnoringSpray, splitList(root.ChildByName("states_ignoring_spray", 0).Value)...)
	mt.StatesIgnoringHazard = append(mt.StatesIgnoringHazard, splitList(root.ChildByName("states_ignoring_hazard", 0).Value)...)

	errs.add(LoadScript(mt, root.ChildByName("script", 0), root.ChildByName("global", 0))...)

	if len(mt.States) > 0 {
		name := mt.FirstStateName
		if name == "" {
			name = mt.States[0].Name
		}
		mt.FirstStateIdx = mt.StateIndex(name)
		if mt.FirstStateIdx == InvalidIndex {
			errs.add(newLoadError(root.ChildByName("first_state", 0), mt,
				fmt.Sprintf("unknown state %q to set as the first state", name)))
		}
	}
	if mt.DeathStateName != "" {
		mt.DeathStateIdx = mt.StateIndex(mt.DeathStateName)
		if mt.DeathStateIdx == InvalidIndex {
			errs.add(newLoadError(root.ChildByName("death_state", 0), mt,
				fmt.Sprintf("unknown state %q to set as the death state", mt.DeathStateName)))
		}
	}

	errs.add(LoadInitActions(mt, root.ChildByName("init", 0))...)
	return errs
}

// LoadScript appends the states under scriptNode to mt and loads their
// events. Every state also receives the events under globalNode.
func LoadScript(mt *Type, scriptNode, globalNode *datanode.Node) []error {
	var errs errList

	// Create every state first so set_state lines can resolve forward
	// references.
	for i := 0; i < scriptNode.ChildCount(); i++ {
		name := scriptNode.Child(i).Name
		if mt.StateIndex(name) != InvalidIndex {
			continue
		}
		mt.States = append(mt.States, NewState(name, len(mt.States)))
	}

	for i, st := range mt.States {
		st.ID = i
		errs.add(LoadState(mt, scriptNode.ChildByName(st.Name, 0), globalNode, st)...)
	}

	_, fixErrs := FixStates(mt.States, "", mt)
	errs.add(fixErrs...)
	return errs
}

type loadedEvent struct {
	ev          *Event
	customAfter bool
	globalAfter bool
	fromGlobal  bool
}

// LoadState loads the events of one state. node may be empty, in which
// case the state only gets the global and the generic events.
//
// Global events are merged into same-typed state events, before the
// state's actions unless the state event asks for global_actions_after.
// Loaded events are merged into events the state already has, before them
// unless custom_actions_after is set. A state that had no handler of its
// own for being attacked, dying, falling into a pit, touching a hazard or
// touching a spray before loading gets the generic one, ahead of whatever
// the script declares for it.
func LoadState(mt *Type, node, globalNode *datanode.Node, st *State) []error {
	var errs errList
	var loaded []*loadedEvent
	generic := genericEvents(mt, st)

	for i := 0; i < node.ChildCount(); i++ {
		evNode := node.Child(i)
		le, lerrs := loadEvent(mt, evNode)
		errs.add(lerrs...)
		if le != nil {
			loaded = append(loaded, le)
		}
	}

	for i := 0; i < globalNode.ChildCount(); i++ {
		gNode := globalNode.Child(i)
		g, gerrs := loadEvent(mt, gNode)
		errs.add(gerrs...)
		if g == nil {
			continue
		}
		merged := false
		for _, le := range loaded {
			if le.ev.Type != g.ev.Type || le.fromGlobal {
				continue
			}
			if le.globalAfter {
				le.ev.Actions = append(le.ev.Actions, g.ev.Actions...)
			} else {
				le.ev.Actions = append(g.ev.Actions, le.ev.Actions...)
			}
			merged = true
			break
		}
		if !merged {
			g.fromGlobal = true
			loaded = append(loaded, g)
		}
	}

	for _, le := range loaded {
		existing := st.Events[le.ev.Type]
		if existing == nil {
			st.Events[le.ev.Type] = le.ev
			continue
		}
		if le.customAfter {
			existing.Actions = append(existing.Actions, le.ev.Actions...)
		} else {
			existing.Actions = append(le.ev.Actions, existing.Actions...)
		}
		for _, a := range existing.Actions {
			a.ParentEvent = existing.Type
		}
	}

	injectGenericEvents(st, generic)
	return errs
}

func loadEvent(mt *Type, evNode *datanode.Node) (*loadedEvent, []error) {
	et, ok := EventTypeByName(evNode.Name)
	if !ok {
		return nil, []error{newLoadError(evNode, mt, fmt.Sprintf("unknown script event name %q", evNode.Name))}
	}

	le := &loadedEvent{}
	actions, errs := loadActions(mt, evNode, func(setting string) {
		switch setting {
		case settingCustomActionsAfter:
			le.customAfter = true
		case settingGlobalActionsAfter:
			le.globalAfter = true
		}
	})
	errs = append(errs, AssertActions(actions, evNode)...)
	le.ev = NewEvent(et, actions...)
	return le, errs
}

// loadActions parses every action line under node. Setting lines are
// handed to onSetting instead; may be nil.
func loadActions(mt *Type, node *datanode.Node, onSetting func(string)) ([]*ActionCall, []error) {
	var actions []*ActionCall
	var errs []error
	for i := 0; i < node.ChildCount(); i++ {
		line := node.Child(i)
		switch line.Name {
		case settingCustomActionsAfter, settingGlobalActionsAfter:
			if onSetting != nil {
				onSetting(line.Name)
			}
			continue
		}
		a, err := ParseAction(line, mt.States, mt)
		if err != nil {
			errs = append(errs, err)
		}
		actions = append(actions, a)
	}
	return actions, errs
}

// LoadInitActions loads the actions a mob of type mt runs once on spawn,
// before entering its first state.
func LoadInitActions(mt *Type, node *datanode.Node) []error {
	var errs errList
	actions, lerrs := loadActions(mt, node, nil)
	errs.add(lerrs...)
	errs.add(AssertActions(actions, node)...)
	for _, a := range actions {
		a.ParentEvent = EvUnknown
	}
	mt.InitActions = actions
	return errs
}

type genericEvent struct {
	t  EventType
	fn CustomFunc
}

// genericEvents lists the generic handlers st lacks.
func genericEvents(mt *Type, st *State) []genericEvent {
	var out []genericEvent
	need := func(t EventType, fn CustomFunc) {
		if st.Events[t] == nil {
			out = append(out, genericEvent{t, fn})
		}
	}

	need(EvHitboxTouchNA, genBeAttacked)
	if mt.DeathStateName != "" && st.Name != mt.DeathStateName &&
		indexOf(mt.StatesIgnoringDeath, st.Name) == InvalidIndex {
		need(EvDeath, genDie)
	}
	need(EvBottomlessPit, genFallDownPit)
	if indexOf(mt.StatesIgnoringSpray, st.Name) == InvalidIndex {
		need(EvTouchedSpray, genTouchSpray)
	}
	if indexOf(mt.StatesIgnoringHazard, st.Name) == InvalidIndex {
		need(EvTouchedHazard, genTouchHazard)
	}
	return out
}

func injectGenericEvents(st *State, generic []genericEvent) {
	for _, g := range generic {
		a := NewCustomAction(g.fn)
		a.ParentEvent = g.t
		ev := st.Events[g.t]
		if ev == nil {
			st.Events[g.t] = NewEvent(g.t, a)
			continue
		}
		ev.Actions = append([]*ActionCall{a}, ev.Actions...)
	}
}

// FixStates resolves set_state calls that still name their target by
// name. It returns the index of startingState, or InvalidIndex.
func FixStates(states []*State, startingState string, mt *Type) (int, []error) {
	byName := make(map[string]int, len(states))
	for i, s := range states {
		byName[s.Name] = i
	}

	var errs []error
	for _, s := range states {
		for _, ev := range s.Events {
			if ev == nil {
				continue
			}
			for _, a := range ev.Actions {
				if a.Type != ActionSetState || !a.Valid || len(a.Args) == 0 || a.ArgIsVar[0] {
					continue
				}
				if _, err := strconv.Atoi(a.Args[0]); err == nil {
					continue
				}
				idx, ok := byName[a.Args[0]]
				if !ok {
					errs = append(errs, newLoadError(nil, mt,
						fmt.Sprintf("state %q: unknown state %q to switch to", s.Name, a.Args[0])))
					a.Valid = false
					idx = InvalidIndex
				}
				a.Args[0] = strconv.Itoa(idx)
			}
		}
	}

	first, ok := byName[startingState]
	if !ok {
		first = InvalidIndex
	}
	return first, errs
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ";") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
