package mob

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/datanode"
	"github.com/milk9111/mobengine/logging"
)

// Scripts run by "run_script" see two globals: "event", the name of the
// event being handled, and "mob", a map of functions acting on the mob
// that runs it:
//
//	get_var(name)          string value of a script variable
//	set_var(name, value)
//	set_state(name)        true if the state exists
//	send_event(name)       runs the named event on the mob's own FSM
//	position()             [x, y, z]
//	other()                ID of the mob that triggered the event, or 0
//	set_timer(seconds)
//	print(args...)
//	action(line)           runs one script action line, e.g. "stop"

// CompileScript compiles the named script of mt, caching the result on the
// type. The cached value is a template: callers that run it should Clone
// it first.
func CompileScript(mt *Type, name string) (*tengo.Compiled, error) {
	if c, ok := mt.compiled[name]; ok {
		return c, nil
	}
	src, ok := mt.Scripts[name]
	if !ok {
		return nil, fmt.Errorf("mob type %q has no script %q", mt.Name, name)
	}

	script := tengo.NewScript([]byte(src))
	_ = script.Add("event", "")
	_ = script.Add("mob", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script %q of %q: %w", name, mt.Name, err)
	}
	if mt.compiled == nil {
		mt.compiled = map[string]*tengo.Compiled{}
	}
	mt.compiled[name] = compiled
	return compiled, nil
}

func runRunScript(r *actionRun) {
	m := r.m
	name := r.s(0)
	tmpl, err := CompileScript(m.Type, name)
	if err != nil {
		m.log().Warn("run_script failed", zap.String("script", name), zap.Error(err))
		return
	}
	// Each run gets its own globals so a script can re-enter itself
	// through messages or events.
	compiled := tmpl.Clone()

	if err := compiled.Set("event", r.call.ParentEvent.String()); err != nil {
		m.log().Warn("run_script failed", zap.String("script", name), zap.Error(err))
		return
	}
	if err := compiled.Set("mob", buildScriptEngine(r)); err != nil {
		m.log().Warn("run_script failed", zap.String("script", name), zap.Error(err))
		return
	}
	if err := compiled.Run(); err != nil {
		m.log().Warn("run_script failed", zap.String("script", name), zap.Error(err))
	}
}

func buildScriptEngine(r *actionRun) *tengo.ImmutableMap {
	m := r.m
	values := map[string]tengo.Object{}

	values["get_var"] = &tengo.UserFunction{Name: "get_var", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return &tengo.String{}, nil
		}
		return &tengo.String{Value: m.Vars[objectAsString(args[0])]}, nil
	}}

	values["set_var"] = &tengo.UserFunction{Name: "set_var", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		m.SetVar(objectAsString(args[0]), objectAsString(args[1]))
		return tengo.TrueValue, nil
	}}

	values["set_state"] = &tengo.UserFunction{Name: "set_state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		if m.FSM.SetStateByName(objectAsString(args[0]), r.d1, r.d2) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["send_event"] = &tengo.UserFunction{Name: "send_event", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		t, ok := EventTypeByName(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		m.FSM.RunEvent(t, r.d1, r.d2)
		return tengo.TrueValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: m.Pos.X},
			&tengo.Float{Value: m.Pos.Y},
			&tengo.Float{Value: m.Z},
		}}, nil
	}}

	values["other"] = &tengo.UserFunction{Name: "other", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if o := r.trigger(); o != nil {
			return &tengo.Int{Value: int64(o.ID)}, nil
		}
		return &tengo.Int{}, nil
	}}

	values["set_timer"] = &tengo.UserFunction{Name: "set_timer", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		m.SetTimer(common.S2F(objectAsString(args[0])))
		return tengo.TrueValue, nil
	}}

	values["print"] = &tengo.UserFunction{Name: "print", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		logging.Info("script print",
			zap.Int("mob", m.ID),
			zap.String("type", m.Type.Name),
			zap.String("text", strings.Join(parts, " ")),
		)
		return tengo.UndefinedValue, nil
	}}

	values["action"] = &tengo.UserFunction{Name: "action", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		line := strings.TrimSpace(objectAsString(args[0]))
		call, err := ParseAction(datanode.New(line, ""), m.Type.States, m.Type)
		if err != nil {
			return nil, err
		}
		switch call.Type {
		case ActionIf, ActionElse, ActionEndIf, ActionGoto, ActionLabel, ActionRunScript:
			return nil, fmt.Errorf("action %q cannot run from a script", call.Name())
		}
		call.ParentEvent = r.call.ParentEvent
		if call.Run(m, r.d1, r.d2) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Float:
		return common.F2S(v.Value)
	default:
		return strings.Trim(v.String(), "\"")
	}
}
