package mob

import "sort"

// EasyFSMCreator builds the states of builtin behaviors in code, in the
// same shape the script loader produces:
//
//	var c EasyFSMCreator
//	c.NewState("idling", 0)
//	c.NewEvent(EvTouchedLeader)
//	c.Run(joinGroup)
//	c.ChangeState("following")
//	states := c.Finish()
//
// A state declared twice keeps the last declaration, and an event type
// declared twice within a state keeps the last one.
type EasyFSMCreator struct {
	states   []*State
	curState *State
	curEvent *Event
}

func (c *EasyFSMCreator) commitEvent() {
	if c.curEvent == nil || c.curState == nil {
		c.curEvent = nil
		return
	}
	c.curState.Events[c.curEvent.Type] = c.curEvent
	c.curEvent = nil
}

func (c *EasyFSMCreator) commitState() {
	c.commitEvent()
	if c.curState == nil {
		return
	}
	for i, s := range c.states {
		if s.Name == c.curState.Name {
			c.states[i] = c.curState
			c.curState = nil
			return
		}
	}
	c.states = append(c.states, c.curState)
	c.curState = nil
}

// NewState closes the current state and starts a new one.
func (c *EasyFSMCreator) NewState(name string, id int) {
	c.commitState()
	c.curState = NewState(name, id)
}

// NewEvent closes the current event and starts one of type t in the
// current state.
func (c *EasyFSMCreator) NewEvent(t EventType) {
	c.commitEvent()
	c.curEvent = &Event{Type: t}
}

// Run appends native code to the current event.
func (c *EasyFSMCreator) Run(fn CustomFunc) {
	c.RunAction(NewCustomAction(fn))
}

// RunAction appends an action call to the current event.
func (c *EasyFSMCreator) RunAction(a *ActionCall) {
	if c.curEvent == nil {
		return
	}
	a.ParentEvent = c.curEvent.Type
	c.curEvent.Actions = append(c.curEvent.Actions, a)
}

// ChangeState appends a switch to the named state. The name is resolved
// by FixStates.
func (c *EasyFSMCreator) ChangeState(name string) {
	c.RunAction(NewActionCall(ActionSetState, name))
}

// Finish closes everything and returns the states sorted by ID.
func (c *EasyFSMCreator) Finish() []*State {
	c.commitState()
	states := c.states
	c.states = nil
	sort.SliceStable(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}
