package mob

import (
	"strings"

	"go.uber.org/zap"

	"github.com/milk9111/mobengine/logging"
)

// StateHistorySize is how many previous state names an FSM remembers.
const StateHistorySize = 3

// FSM is a mob's running state machine. States belong to the mob's type;
// the FSM only points at the current one.
type FSM struct {
	m   *Mob
	Cur *State

	// PrevStateNames[0] is the most recent state left.
	PrevStateNames [StateHistorySize]string

	// FirstStateOverride, when valid, replaces the type's first state on
	// spawn.
	FirstStateOverride int
}

func NewFSM(m *Mob) *FSM {
	return &FSM{m: m, FirstStateOverride: InvalidIndex}
}

// Event returns the current state's handler for t, or nil.
func (f *FSM) Event(t EventType) *Event {
	if f == nil || f.Cur == nil {
		return nil
	}
	return f.Cur.Event(t)
}

// RunEvent runs the current state's handler for t. A state without one
// simply ignores the event.
func (f *FSM) RunEvent(t EventType, d1, d2 Payload) {
	if f == nil {
		return
	}
	e := f.Event(t)
	if e == nil {
		if ce := logging.L().Check(zap.DebugLevel, "unhandled event"); ce != nil {
			ce.Write(
				zap.Int("mob", f.m.ID),
				zap.Stringer("event", t),
				zap.String("state", f.CurStateName()),
			)
		}
		return
	}
	e.Run(f.m, d1, d2)
}

// SetState leaves the current state, if any, and enters the state at idx.
// The leave handler runs before the enter handler, both with the same
// payloads. An invalid idx leaves the FSM with no current state and
// returns false.
func (f *FSM) SetState(idx int, d1, d2 Payload) bool {
	if f.Cur != nil {
		copy(f.PrevStateNames[1:], f.PrevStateNames[:StateHistorySize-1])
		f.PrevStateNames[0] = f.Cur.Name
		f.RunEvent(EvLeave, d1, d2)
	}

	states := f.m.Type.States
	if idx < 0 || idx >= len(states) {
		f.Cur = nil
		return false
	}
	f.Cur = states[idx]
	f.RunEvent(EvEnter, d1, d2)
	return true
}

func (f *FSM) SetStateByName(name string, d1, d2 Payload) bool {
	return f.SetState(f.StateIndex(name), d1, d2)
}

func (f *FSM) StateIndex(name string) int {
	return f.m.Type.StateIndex(name)
}

func (f *FSM) CurStateName() string {
	if f == nil || f.Cur == nil {
		return ""
	}
	return f.Cur.Name
}

// History describes the current and previous states, newest first.
func (f *FSM) History() string {
	var b strings.Builder
	b.WriteString("current: ")
	if f.Cur != nil {
		b.WriteString(f.Cur.Name)
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("; previous: ")
	for i, n := range f.PrevStateNames {
		if i > 0 {
			b.WriteString(", ")
		}
		if n == "" {
			n = "(none)"
		}
		b.WriteString(n)
	}
	return b.String()
}
