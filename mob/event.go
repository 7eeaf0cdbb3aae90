package mob

// Event is the ordered action list a state runs for one event type.
type Event struct {
	Type    EventType
	Actions []*ActionCall
}

func NewEvent(t EventType, actions ...*ActionCall) *Event {
	e := &Event{Type: t, Actions: actions}
	for _, a := range actions {
		a.ParentEvent = t
	}
	return e
}

// Run executes the event's actions against m.
//
// If m is a limb whose parent relays events, the parent's FSM receives the
// event first, and m only runs its own actions when the parent is set to
// also handle them locally. An "if" that evaluates false skips to its
// matching "else" or "end_if"; reaching an "else" while running skips to
// the matching "end_if". A "set_state" ends the run.
func (e *Event) Run(m *Mob, d1, d2 Payload) {
	if e == nil || m == nil {
		return
	}
	if p := m.Parent; p != nil && p.Mob != nil && p.RelayEvents {
		p.Mob.FSM.RunEvent(e.Type, d1, d2)
		if !p.HandleEvents {
			return
		}
	}

	n := len(e.Actions)
	for i := 0; i < n; i++ {
		a := e.Actions[i]
		switch a.Type {
		case ActionIf:
			if !a.Run(m, d1, d2) {
				i = e.skipBranch(i, true)
			}
		case ActionElse:
			i = e.skipBranch(i, false)
		case ActionGoto:
			if target, ok := e.labelIndex(a); ok {
				i = target
			}
		case ActionEndIf, ActionLabel:
		default:
			a.Run(m, d1, d2)
			if a.Type == ActionSetState {
				return
			}
		}
	}
}

// skipBranch returns the index of the "else" (when stopAtElse) or "end_if"
// that closes the block opened just before from.
func (e *Event) skipBranch(from int, stopAtElse bool) int {
	depth := 0
	i := from + 1
	for ; i < len(e.Actions); i++ {
		switch e.Actions[i].Type {
		case ActionIf:
			depth++
		case ActionElse:
			if stopAtElse && depth == 0 {
				return i
			}
		case ActionEndIf:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return i
}

func (e *Event) labelIndex(g *ActionCall) (int, bool) {
	if len(g.Args) == 0 {
		return 0, false
	}
	for i, a := range e.Actions {
		if a.Type == ActionLabel && len(a.Args) > 0 && a.Args[0] == g.Args[0] {
			return i, true
		}
	}
	return 0, false
}
