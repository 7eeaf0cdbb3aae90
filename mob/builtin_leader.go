package mob

import (
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
)

const (
	LeaderStateInactive = iota
	LeaderStateActive
	LeaderStateDying

	leaderStateCount
)

// Input actions a leader understands in EvInputReceived. For move the
// payload value is the direction in radians, for whistle the radius and
// for spray the spray index.
const (
	InputMove    = "move"
	InputStop    = "stop"
	InputWhistle = "whistle"
	InputDismiss = "dismiss"
	InputSpray   = "spray"
)

// NewLeaderType returns a leader type running the builtin leader states.
// Scripts loaded on top of it add to those states.
func NewLeaderType(name string) *Type {
	mt := NewType(name, CategoryLeader)
	mt.States = LeaderStates()
	mt.FirstStateName = "inactive"
	mt.DeathStateName = "dying"
	finishBuiltinStates(mt)
	return mt
}

// LeaderStates builds the states of a player-controlled leader.
func LeaderStates() []*State {
	var c EasyFSMCreator

	c.NewState("inactive", LeaderStateInactive)
	c.NewEvent(EvEnter)
	c.RunAction(NewActionCall(ActionStop))
	c.NewEvent(EvActivated)
	c.ChangeState("active")

	c.NewState("active", LeaderStateActive)
	c.NewEvent(EvInputReceived)
	c.Run(leaderHandleInput)
	c.NewEvent(EvDeactivated)
	c.ChangeState("inactive")

	c.NewState("dying", LeaderStateDying)
	c.NewEvent(EvEnter)
	c.Run(leaderDie)

	states := c.Finish()
	engineAssert(len(states) == leaderStateCount, "wrong number of leader states",
		zap.Int("got", len(states)), zap.Int("want", leaderStateCount))
	return states
}

func leaderHandleInput(m *Mob, d1, _ Payload) {
	in, ok := d1.(InputPayload)
	if !ok {
		return
	}
	switch in.Action {
	case InputMove:
		target := m.Pos.Add(common.AngleToCoordinates(in.Value, m.Type.MoveSpeed))
		m.Chase(target, m.Z, ChaseOptions{FreeMove: true})
		m.Face(in.Value, nil)
	case InputStop:
		m.StopChasing()
	case InputWhistle:
		if m.World == nil {
			return
		}
		for _, o := range m.World.Mobs {
			if o.Type.Category != CategoryFollower || o.Following == m || o.ToDelete {
				continue
			}
			if m.Pos.Distance(o.Pos) <= in.Value {
				o.FSM.RunEvent(EvTouchedLeader, LeaderPayload{Leader: m}, nil)
			}
		}
	case InputDismiss:
		m.DismissGroup()
	case InputSpray:
		if m.World != nil {
			m.World.Spray(m, int(in.Value))
		}
	}
}

// leaderDie hands control to another leader when the dying one had it.
func leaderDie(m *Mob, _, _ Payload) {
	if idx := m.Type.AnimIndex("dying"); idx != InvalidIndex {
		m.SetAnimation(idx, 0)
	}
	m.StartDying()
	if m.IsActiveLeader() {
		m.World.SetActiveLeader(m.World.NextLeader(m))
	}
	m.FinishDying()
}
