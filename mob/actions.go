package mob

import (
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/logging"
)

func runAddHealth(r *actionRun) {
	r.m.SetHealth(true, false, r.f(0))
}

func runArachnorbPlanLogic(r *actionRun) {
	m := r.m
	maxStep := common.S2F(m.Vars["max_step_distance"])
	maxTurn := common.DegToRad(common.S2F(m.Vars["max_turn_angle"]))
	minTurn := common.DegToRad(common.S2F(m.Vars["min_turn_angle"]))
	if maxStep == 0 {
		maxStep = 100
	}
	if maxTurn == 0 {
		maxTurn = common.Tau * 0.2
	}

	move, turn := 0.0, 0.0
	switch r.i(0) {
	case 0:
		turn = common.WrapAngle(common.AngleCWDiff(m.Angle, common.AngleBetween(m.Pos, m.Home)))
		if math.Abs(turn) < common.Tau*0.05 {
			move = m.Pos.Distance(m.Home)
		}
	case 1:
		move = maxStep
	case 2:
		turn = m.randf(minTurn, common.Tau*0.25)
	case 3:
		turn = m.randf(-common.Tau*0.25, -minTurn)
	}

	move = math.Min(move, maxStep)
	turn = common.Sign(turn) * math.Min(math.Abs(turn), maxTurn)

	angle := common.NormalizeAngle(m.Angle + turn)
	dest := m.Pos.Add(common.RotatePoint(cp.Vector{X: move}, angle))
	m.Vars["_destination_pos"] = common.F2S(dest.X) + " " + common.F2S(dest.Y)
	m.Vars["_destination_angle"] = common.F2S(angle)
}

func runCalculate(r *actionRun) {
	lhs, rhs := r.f(1), r.f(3)
	var result float64
	switch r.i(2) {
	case calcSum:
		result = lhs + rhs
	case calcSubtract:
		result = lhs - rhs
	case calcMultiply:
		result = lhs * rhs
	case calcDivide:
		if rhs != 0 {
			result = lhs / rhs
		}
	case calcModulo:
		if rhs != 0 {
			result = math.Mod(lhs, rhs)
		}
	}
	r.m.SetVar(r.s(0), common.F2S(result))
}

func runDelete(r *actionRun) {
	r.m.ToDelete = true
}

func runDrainLiquid(r *actionRun) {
	m := r.m
	if m.World == nil || m.World.Area == nil {
		return
	}
	start := m.World.Area.SectorAt(m.Pos)
	if start == nil || !start.HasLiquid() {
		return
	}
	for _, s := range m.World.Area.NeighborsWhere(start, (*geometry.Sector).HasLiquid) {
		s.Draining = true
	}
}

func runFinishDying(r *actionRun) {
	r.m.FinishDying()
}

func runFocus(r *actionRun) {
	m := r.m
	switch r.i(0) {
	case focusLink:
		if len(m.Links) > 0 && m.Links[0] != nil {
			m.FocusOn(m.Links[0])
		}
	case focusParent:
		if m.Parent != nil && m.Parent.Mob != nil {
			m.FocusOn(m.Parent.Mob)
		}
	case focusTrigger:
		if t := r.trigger(); t != nil {
			m.FocusOn(t)
		}
	}
}

// trigger is the mob that caused the running event: the toucher for touch
// and hitbox events, the sender for messages.
func (r *actionRun) trigger() *Mob {
	switch r.call.ParentEvent {
	case EvReceiveMessage:
		if msg, ok := r.d1.(MessagePayload); ok {
			return msg.Sender
		}
		return nil
	case EvTouchedObject, EvTouchedOpponent, EvObjectInReach, EvOpponentInReach,
		EvThrownPikminLanded, EvHeld, EvReleased, EvTouchedLeader,
		EvHitboxTouchAN, EvHitboxTouchNN, EvHitboxTouchNA, EvHitboxTouchEat,
		EvDamage, EvWeightAdded, EvWeightRemoved, EvRiderAdded, EvRiderRemoved:
		return payloadMob(r.d1)
	}
	return nil
}

func runGetChomped(r *actionRun) {
	if r.call.ParentEvent != EvHitboxTouchEat {
		return
	}
	hp, ok := r.d1.(HitboxPayload)
	if !ok || hp.Other == nil || hp.Theirs == nil {
		return
	}
	chomper := hp.Other
	chomper.Chomp(r.m, chomper.Type.BodyPartIndex(hp.Theirs.BodyPart))
}

func runGetInfo(r *actionRun) {
	r.m.SetVar(r.s(0), r.info(r.m, r.i(1)))
}

func runGetFocusInfo(r *actionRun) {
	if r.m.Focused == nil {
		return
	}
	r.m.SetVar(r.s(0), r.info(r.m.Focused, r.i(1)))
}

// info reads one of the facts get_info can store about target.
func (r *actionRun) info(target *Mob, what int) string {
	switch what {
	case infoBodyPart, infoOtherBodyPart:
		return r.bodyPartInfo(target, what == infoOtherBodyPart)
	case infoChompedPikmin:
		return common.I2S(len(target.Chomping))
	case infoDayMinutes:
		if target.World != nil {
			return common.I2S(int(target.World.DayMinutes))
		}
	case infoFieldPikmin:
		n := 0
		if target.World != nil {
			for _, o := range target.World.Mobs {
				if o.Type.Category == CategoryFollower && !o.ToDelete {
					n++
				}
			}
		}
		return common.I2S(n)
	case infoFrameSignal:
		if fs, ok := r.d1.(FramePayload); ok {
			return common.I2S(fs.Signal)
		}
	case infoHealth:
		return common.F2S(target.Health)
	case infoLatchedPikmin:
		return common.I2S(len(target.LatchedMobs()))
	case infoLatchedPikminWeight:
		w := 0.0
		for _, l := range target.LatchedMobs() {
			w += l.Type.Weight
		}
		return common.F2S(w)
	case infoMessage:
		if msg, ok := r.d1.(MessagePayload); ok {
			return msg.Text
		}
	case infoMessageSender:
		if msg, ok := r.d1.(MessagePayload); ok && msg.Sender != nil {
			return common.I2S(msg.Sender.ID)
		}
	case infoMobCategory:
		return target.Type.Category.String()
	case infoMobType:
		return target.Type.Name
	case infoState:
		return target.FSM.CurStateName()
	case infoWeight:
		w := 0.0
		for _, rider := range target.Riders() {
			w += rider.Type.Weight
		}
		return common.F2S(w)
	case infoX:
		return common.F2S(target.Pos.X)
	case infoY:
		return common.F2S(target.Pos.Y)
	case infoZ:
		return common.F2S(target.Z)
	}
	return ""
}

// bodyPartInfo names the body part involved in the running event, either
// target's own or the other mob's.
func (r *actionRun) bodyPartInfo(target *Mob, other bool) string {
	if hp, ok := r.d1.(HitboxPayload); ok {
		h := hp.Mine
		if other {
			h = hp.Theirs
		}
		if h != nil {
			return h.BodyPart
		}
		return ""
	}
	o := payloadMob(r.d1)
	if o == nil {
		return ""
	}
	owner, toward := target, o
	if other {
		owner, toward = o, target
	}
	idx := owner.ClosestHitbox(toward.Pos)
	if idx == InvalidIndex {
		return ""
	}
	return owner.Type.Hitboxes[idx].BodyPart
}

func runGetFocusVar(r *actionRun) {
	if r.m.Focused == nil {
		return
	}
	r.m.SetVar(r.s(0), r.m.Focused.Vars[r.s(1)])
}

func runGetRandomDecimal(r *actionRun) {
	r.m.SetVar(r.s(0), common.F2S(r.m.randf(r.f(1), r.f(2))))
}

func runGetRandomInt(r *actionRun) {
	lo, hi := r.i(1), r.i(2)
	if hi < lo {
		lo, hi = hi, lo
	}
	v := lo
	if r.m.World != nil && hi > lo {
		v = lo + r.m.World.Rand.Intn(hi-lo+1)
	}
	r.m.SetVar(r.s(0), common.I2S(v))
}

func (m *Mob) randf(lo, hi float64) float64 {
	if m.World == nil || hi <= lo {
		return lo
	}
	return lo + m.World.Rand.Float64()*(hi-lo)
}

func runHoldFocus(r *actionRun) {
	if r.m.Focused == nil {
		return
	}
	r.m.Hold(r.m.Focused, r.i(0), 0, 0, r.b(1), HoldRotationCopyHolder)
}

func runIf(r *actionRun) {
	lhs, rhs := r.s(0), r.tail(2)
	switch r.i(1) {
	case ifEqual:
		r.ret = looseEqual(lhs, rhs)
	case ifNot:
		r.ret = !looseEqual(lhs, rhs)
	case ifLess:
		r.ret = common.S2F(lhs) < common.S2F(rhs)
	case ifMore:
		r.ret = common.S2F(lhs) > common.S2F(rhs)
	case ifLessEq:
		r.ret = common.S2F(lhs) <= common.S2F(rhs)
	case ifMoreEq:
		r.ret = common.S2F(lhs) >= common.S2F(rhs)
	}
}

// looseEqual compares numerically when both sides are numbers and as text
// otherwise.
func looseEqual(a, b string) bool {
	if common.IsNumber(a) && common.IsNumber(b) {
		return common.S2F(a) == common.S2F(b)
	}
	return a == b
}

func runMoveToAbsolute(r *actionRun) {
	z := r.m.Z
	if len(r.args) > 2 {
		z = r.f(2)
	}
	r.m.Chase(cp.Vector{X: r.f(0), Y: r.f(1)}, z, ChaseOptions{})
}

func runMoveToRelative(r *actionRun) {
	m := r.m
	offset := common.RotatePoint(cp.Vector{X: r.f(0), Y: r.f(1)}, m.Angle)
	z := m.Z
	if len(r.args) > 2 {
		z += r.f(2)
	}
	m.Chase(m.Pos.Add(offset), z, ChaseOptions{})
}

func runMoveToTarget(r *actionRun) {
	m := r.m
	switch t := r.i(0); t {
	case moveAwayFromFocus, moveFocus, moveFocusPos:
		f := m.Focused
		if f == nil {
			m.StopChasing()
			return
		}
		switch t {
		case moveAwayFromFocus:
			a := common.AngleBetween(m.Pos, f.Pos) + common.Tau/2
			m.Chase(m.Pos.Add(common.RotatePoint(cp.Vector{X: 2000}, a)), m.Z, ChaseOptions{})
		case moveFocus:
			m.Chase(cp.Vector{}, 0, ChaseOptions{Orig: &f.Pos, OrigZ: &f.Z})
		case moveFocusPos:
			m.Chase(f.Pos, f.Z, ChaseOptions{})
		}
	case moveHome:
		m.Chase(m.Home, m.Z, ChaseOptions{})
	case moveLinkedAverage:
		var sum cp.Vector
		z, n := 0.0, 0
		for _, l := range m.Links {
			if l == nil {
				continue
			}
			sum = sum.Add(l.Pos)
			z += l.Z
			n++
		}
		if n == 0 {
			return
		}
		m.Chase(sum.Mult(1/float64(n)), z/float64(n), ChaseOptions{})
	}
}

func runOrderRelease(r *actionRun) {
	if h := r.m.Holder.Mob; h != nil {
		h.FSM.RunEvent(EvReleaseOrder, MobPayload{Mob: r.m}, nil)
	}
}

func runPlaySound(r *actionRun) {
	idx := r.i(0)
	if idx < 0 || idx >= len(r.m.Type.Sounds) || r.m.World == nil {
		return
	}
	r.m.World.Sink.PlaySound(r.m, r.m.Type.Sounds[idx])
}

func runPrint(r *actionRun) {
	logging.Info("script print",
		zap.Int("mob", r.m.ID),
		zap.String("type", r.m.Type.Name),
		zap.String("text", r.tail(0)),
	)
}

func runReceiveStatus(r *actionRun) {
	if st := r.m.statusType(r.s(0)); st != nil {
		r.m.ApplyStatus(st, false, false)
	}
}

func runRelease(r *actionRun) {
	r.m.ReleaseChomped()
}

func runRemoveStatus(r *actionRun) {
	r.m.RemoveStatus(r.s(0))
}

func runSendMessageToFocus(r *actionRun) {
	if r.m.Focused != nil {
		r.m.SendMessage(r.m.Focused, r.s(0))
	}
}

func runSendMessageToLinks(r *actionRun) {
	for _, l := range r.m.Links {
		if l == nil || l == r.m {
			continue
		}
		r.m.SendMessage(l, r.s(0))
	}
}

func runSendMessageToNearby(r *actionRun) {
	if r.m.World == nil {
		return
	}
	d := r.f(0)
	for _, o := range r.m.World.Mobs {
		if o == r.m || o.ToDelete || r.m.Pos.Distance(o.Pos) > d {
			continue
		}
		r.m.SendMessage(o, r.s(1))
	}
}

func runSetAnimation(r *actionRun) {
	opt := animNormal
	if len(r.args) > 1 {
		opt = r.i(1)
	}
	r.m.SetAnimation(r.i(0), opt)
}

func runSetCanBlockPaths(r *actionRun) {
	r.m.CanBlockPaths = r.b(0)
}

func runSetFarReach(r *actionRun) {
	r.m.FarReach = r.i(0)
}

func runSetFlying(r *actionRun) {
	r.m.Flags.Set(FlagCanMoveMidair, r.b(0))
}

func runSetGravity(r *actionRun) {
	r.m.GravityMult = r.f(0)
}

func runSetHealth(r *actionRun) {
	r.m.SetHealth(false, false, r.f(0))
}

func runSetHeight(r *actionRun) {
	m := r.m
	m.Height = r.f(0)
	if !m.Type.Walkable {
		return
	}
	for _, rider := range m.Riders() {
		rider.Z = m.Z + m.Height
	}
}

func runSetHiding(r *actionRun) {
	r.m.Flags.Set(FlagHidden, r.b(0))
}

func runSetHoldable(r *actionRun) {
	flags := 0
	for i := range r.args {
		flags |= r.i(i)
	}
	r.m.HoldableFlags = flags
}

func runSetHuntable(r *actionRun) {
	r.m.Flags.Set(FlagNonHuntable, !r.b(0))
}

func runSetLimbAnimation(r *actionRun) {
	p := r.m.Parent
	if p == nil || len(p.LimbAnimations) == 0 {
		return
	}
	if idx := indexOf(p.LimbAnimations, r.s(0)); idx != InvalidIndex {
		p.LimbAnimIdx = idx
	}
}

func runSetNearReach(r *actionRun) {
	r.m.NearReach = r.i(0)
}

func runSetRadius(r *actionRun) {
	r.m.Radius = r.f(0)
}

func runSetSectorScroll(r *actionRun) {
	m := r.m
	sec := m.GroundSector
	if m.World != nil && m.World.Area != nil {
		sec = m.World.Area.SectorAt(m.Pos)
	}
	if sec == nil {
		return
	}
	sec.Scroll = cp.Vector{X: r.f(0), Y: r.f(1)}
}

func runSetShadowVisibility(r *actionRun) {
	r.m.Flags.Set(FlagShadowInvisible, !r.b(0))
}

func runSetState(r *actionRun) {
	idx := r.i(0)
	if !common.IsNumber(r.s(0)) {
		idx = r.m.FSM.StateIndex(r.s(0))
	}
	r.m.FSM.SetState(idx, r.d1, r.d2)
}

func runSetTangible(r *actionRun) {
	r.m.Flags.Set(FlagIntangible, !r.b(0))
}

func runSetTeam(r *actionRun) {
	r.m.Team = r.i(0)
}

func runSetTimer(r *actionRun) {
	r.m.SetTimer(r.f(0))
}

func runSetVar(r *actionRun) {
	r.m.SetVar(r.s(0), r.s(1))
}

func runShowMessageFromVar(r *actionRun) {
	if r.m.World == nil {
		return
	}
	r.m.World.Sink.ShowMessage(r.m, r.m.Vars[r.s(0)])
}

func runSpawn(r *actionRun) {
	idx := r.i(0)
	if r.m.World == nil || idx < 0 || idx >= len(r.m.Type.Spawns) {
		return
	}
	r.m.World.SpawnFrom(r.m, &r.m.Type.Spawns[idx])
}

func runStabilizeZ(r *actionRun) {
	m := r.m
	if len(m.Links) == 0 || m.Links[0] == nil {
		return
	}
	best := m.Links[0].Z
	for _, l := range m.Links[1:] {
		if l == nil {
			continue
		}
		switch r.i(0) {
		case stabilizeHighest:
			best = math.Max(best, l.Z)
		case stabilizeLowest:
			best = math.Min(best, l.Z)
		}
	}
	m.Z = best + r.f(1)
}

func runStartChomping(r *actionRun) {
	m := r.m
	m.ChompMax = r.i(0)
	m.ChompBodyParts = m.ChompBodyParts[:0]
	for i := 1; i < len(r.args); i++ {
		m.ChompBodyParts = append(m.ChompBodyParts, r.i(i))
	}
}

func runStartDying(r *actionRun) {
	r.m.StartDying()
}

func runStartHeightEffect(r *actionRun) {
	r.m.StartHeightEffect()
}

func runStartParticles(r *actionRun) {
	m := r.m
	m.Particles = append(m.Particles, r.s(0))
	if m.World == nil {
		return
	}
	m.World.Sink.StartParticles(m, r.s(0), cp.Vector{X: r.f(1), Y: r.f(2)}, m.Z+r.f(3))
}

func runStop(r *actionRun) {
	r.m.StopChasing()
	r.m.StopTurning()
}

func runStopChomping(r *actionRun) {
	r.m.ChompMax = 0
	r.m.ChompBodyParts = nil
}

func runStopHeightEffect(r *actionRun) {
	r.m.StopHeightEffect()
}

func runStopParticles(r *actionRun) {
	r.m.Particles = nil
	if r.m.World != nil {
		r.m.World.Sink.StopParticles(r.m)
	}
}

func runStopSound(r *actionRun) {
	if r.m.World != nil {
		r.m.World.Sink.StopSound(r.m)
	}
}

func runStopVertically(r *actionRun) {
	r.m.SpeedZ = 0
}

func runSwallow(r *actionRun) {
	r.m.SwallowChomped(r.i(0))
}

func runSwallowAll(r *actionRun) {
	r.m.SwallowChomped(len(r.m.Chomping))
}

func runTeleportToAbsolute(r *actionRun) {
	r.m.StopChasing()
	r.m.Chase(cp.Vector{X: r.f(0), Y: r.f(1)}, r.f(2), ChaseOptions{Teleport: true})
}

func runTeleportToRelative(r *actionRun) {
	m := r.m
	m.StopChasing()
	offset := common.RotatePoint(cp.Vector{X: r.f(0), Y: r.f(1)}, m.Angle)
	m.Chase(m.Pos.Add(offset), m.Z+r.f(2), ChaseOptions{Teleport: true})
}

func runThrowFocus(r *actionRun) {
	m := r.m
	f := m.Focused
	if f == nil {
		return
	}
	if f.Holder.Mob == m {
		m.Release(f)
	}

	maxHeight := r.f(3)
	if maxHeight == 0 {
		return
	}
	gravity := -1300.0
	if m.World != nil {
		gravity = m.World.Physics.GravityAdder
	}

	f.StartHeightEffect()
	f.Speed, f.SpeedZ = common.CalculateThrow(f.Pos, f.Z, cp.Vector{X: r.f(0), Y: r.f(1)}, r.f(2), maxHeight, gravity)
	f.Flags.Set(FlagWasThrown, true)
	f.ZCap = f.Z + maxHeight
	f.FSM.RunEvent(EvThrown, MobPayload{Mob: m}, nil)
}

func runTurnToAbsolute(r *actionRun) {
	if len(r.args) > 1 {
		p := cp.Vector{X: r.f(0), Y: r.f(1)}
		r.m.Face(common.AngleBetween(r.m.Pos, p), nil)
		return
	}
	r.m.Face(common.DegToRad(r.f(0)), nil)
}

func runTurnToRelative(r *actionRun) {
	m := r.m
	if len(r.args) > 1 {
		p := m.Pos.Add(common.RotatePoint(cp.Vector{X: r.f(0), Y: r.f(1)}, m.Angle))
		m.Face(common.AngleBetween(m.Pos, p), nil)
		return
	}
	m.Face(m.Angle+common.DegToRad(r.f(0)), nil)
}

func runTurnToTarget(r *actionRun) {
	m := r.m
	switch r.i(0) {
	case turnFocus:
		if m.Focused != nil {
			m.Face(0, &m.Focused.Pos)
		}
	case turnHome:
		m.Face(common.AngleBetween(m.Pos, m.Home), nil)
	}
}
