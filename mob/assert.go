package mob

import (
	"fmt"

	"github.com/milk9111/mobengine/datanode"
)

// AssertActions checks the structure of one event's action list: every
// "if" has a matching "end_if" with at most one "else" in between, labels
// are unique, every "goto" has a label to jump to, and nothing but block
// ends follows a "set_state" in the same block.
func AssertActions(actions []*ActionCall, node *datanode.Node) []error {
	var mt *Type
	for _, a := range actions {
		if a != nil && a.mt != nil {
			mt = a.mt
			break
		}
	}
	fail := func(msg string) error { return newLoadError(node, mt, msg) }

	var errs []error
	// One entry per open "if"; true once its "else" was seen.
	var open []bool
	labels := map[string]bool{}

	for i, a := range actions {
		if a == nil {
			continue
		}
		switch a.Type {
		case ActionIf:
			open = append(open, false)
		case ActionElse:
			switch {
			case len(open) == 0:
				errs = append(errs, fail(`found an "else" without an "if"`))
			case open[len(open)-1]:
				errs = append(errs, fail(`found more than one "else" for the same "if"`))
			default:
				open[len(open)-1] = true
			}
		case ActionEndIf:
			if len(open) == 0 {
				errs = append(errs, fail(`found an "end_if" without an "if"`))
			} else {
				open = open[:len(open)-1]
			}
		case ActionLabel:
			if len(a.Args) == 0 {
				break
			}
			if labels[a.Args[0]] {
				errs = append(errs, fail(fmt.Sprintf("found repeated label %q", a.Args[0])))
			}
			labels[a.Args[0]] = true
		case ActionSetState:
			if i+1 < len(actions) && actions[i+1] != nil {
				switch actions[i+1].Type {
				case ActionElse, ActionEndIf, ActionLabel:
				default:
					errs = append(errs, fail(fmt.Sprintf(
						`found the %q action after a "set_state"; it will never run`, actions[i+1].Name())))
				}
			}
		}
	}
	if len(open) > 0 {
		errs = append(errs, fail(fmt.Sprintf(`%d "if" block(s) without an "end_if"`, len(open))))
	}

	for _, a := range actions {
		if a == nil || a.Type != ActionGoto || len(a.Args) == 0 {
			continue
		}
		if !labels[a.Args[0]] {
			errs = append(errs, fail(fmt.Sprintf("goto to unknown label %q", a.Args[0])))
		}
	}
	return errs
}
