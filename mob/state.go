package mob

// State is one node of a mob type's behavior graph. It holds at most one
// event per event type.
type State struct {
	Name   string
	ID     int
	Events [EventCount]*Event
}

func NewState(name string, id int) *State {
	return &State{Name: name, ID: id}
}

// Event returns the handler for t, or nil when the state ignores it.
func (s *State) Event(t EventType) *Event {
	if s == nil || t <= EvUnknown || t >= EventCount {
		return nil
	}
	return s.Events[t]
}
