package mob

import (
	"go.uber.org/zap"

	"github.com/jakecoffman/cp"
)

const (
	FollowerStateIdling = iota
	FollowerStateFollowing
	FollowerStateDying

	followerStateCount
)

// FollowGap is the space a follower keeps between itself and its leader.
const FollowGap = 16.0

// NewFollowerType returns a follower type running the builtin follower
// states.
func NewFollowerType(name string) *Type {
	mt := NewType(name, CategoryFollower)
	mt.States = FollowerStates()
	mt.FirstStateName = "idling"
	mt.DeathStateName = "dying"
	finishBuiltinStates(mt)
	return mt
}

// FollowerStates builds the states of a mob that joins a leader's group
// when the leader touches or whistles at it.
func FollowerStates() []*State {
	var c EasyFSMCreator

	c.NewState("idling", FollowerStateIdling)
	c.NewEvent(EvEnter)
	c.RunAction(NewActionCall(ActionStop))
	c.NewEvent(EvTouchedLeader)
	c.Run(followerJoinGroup)
	c.ChangeState("following")

	c.NewState("following", FollowerStateFollowing)
	c.NewEvent(EvEnter)
	c.Run(followerFollow)
	c.NewEvent(EvTick)
	c.Run(followerFollow)
	c.NewEvent(EvReleased)
	c.Run(followerLeaveGroup)
	c.ChangeState("idling")

	c.NewState("dying", FollowerStateDying)
	c.NewEvent(EvEnter)
	c.Run(followerDie)

	states := c.Finish()
	engineAssert(len(states) == followerStateCount, "wrong number of follower states",
		zap.Int("got", len(states)), zap.Int("want", followerStateCount))
	return states
}

func followerJoinGroup(m *Mob, d1, _ Payload) {
	info, ok := d1.(LeaderPayload)
	engineAssert(ok && info.Leader != nil, "follower joined a group without a leader",
		zap.Int("mob", m.ID), zap.String("history", m.FSM.History()))
	info.Leader.AddToGroup(m)
	if !info.Inactive && m.World != nil && indexOf(m.Type.Sounds, "called") != InvalidIndex {
		m.World.Sink.PlaySound(m, "called")
	}
}

// followerFollow keeps the follower chasing its leader. A follower whose
// leader is gone goes back to idling.
func followerFollow(m *Mob, _, _ Payload) {
	leader := m.Following
	if leader == nil {
		m.FSM.SetState(FollowerStateIdling, nil, nil)
		return
	}
	if m.ChaseInfo.State == ChaseChasing && m.ChaseInfo.Orig == &leader.Pos {
		return
	}
	gap := leader.Radius + m.Radius + FollowGap
	if m.Pos.Distance(leader.Pos) <= gap {
		return
	}
	m.Chase(cp.Vector{}, 0, ChaseOptions{
		Orig:           &leader.Pos,
		OrigZ:          &leader.Z,
		TargetDistance: gap,
	})
}

func followerLeaveGroup(m *Mob, _, _ Payload) {
	m.LeaveGroup()
	m.StopChasing()
}

func followerDie(m *Mob, _, _ Payload) {
	m.StartDying()
	m.LeaveGroup()
	m.FinishDying()
	m.ToDelete = true
}
