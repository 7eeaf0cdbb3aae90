package mob

import (
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/logging"
)

type moveResult int

const (
	moveOK moveResult = iota
	moveFail
	moveTeleported
)

func (m *Mob) outOfBounds(where string) {
	if ce := logging.L().Check(zap.DebugLevel, "physics out of bounds"); ce != nil {
		ce.Write(zap.Int("mob", m.ID), zap.String("phase", where), zap.Float64("x", m.Pos.X), zap.Float64("y", m.Pos.Y))
	}
}

// TickPhysics moves the mob by one frame: rotation, horizontal movement
// with wall sliding, vertical movement, then riding on walkable mobs.
func (m *Mob) TickPhysics(dt float64) {
	if m.GroundSector == nil || m.World == nil || m.World.Area == nil {
		m.outOfBounds("start")
		return
	}

	mult := m.SpeedMultiplier()
	preMovePos := m.Pos
	moveSpeed := m.Speed
	preMoveGroundZ := m.GroundSector.Z
	touchedWall := false

	m.tickRotation(dt, mult)

	res := m.horizontalMovement(dt, mult, &moveSpeed)
	switch res {
	case moveFail:
		return
	case moveOK:
		touchedWall = m.tickHorizontal(dt, moveSpeed)
	}

	m.tickVertical(dt, preMoveGroundZ, res == moveTeleported)
	m.tickRiding()

	m.PushAmount = 0
	if touchedWall {
		m.FSM.RunEvent(EvTouchedWall, nil, nil)
	}
	if m.Type.Walkable {
		m.WalkableMoved = m.Pos.Sub(preMovePos).Mult(1 / dt)
	}
}

func (m *Mob) tickRotation(dt, mult float64) {
	m.Angle = common.WrapAngle(m.Angle)
	if m.IntendedTurnPos != nil {
		m.IntendedTurnAngle = common.AngleBetween(m.Pos, *m.IntendedTurnPos)
	}
	m.IntendedTurnAngle = common.WrapAngle(m.IntendedTurnAngle)

	diff := common.WrapAngle(m.IntendedTurnAngle - m.Angle)
	m.Angle += common.Sign(diff) * math.Min(m.Type.RotationSpeed*mult*dt, math.Abs(diff))

	if m.Holder.Mob == nil {
		return
	}
	switch m.Holder.Rotation {
	case HoldRotationFaceHolder:
		final, _ := m.Holder.FinalPos()
		m.Angle = common.AngleBetween(final, m.Holder.Mob.Pos)
		m.StopTurning()
	case HoldRotationCopyHolder:
		m.Angle = m.Holder.Mob.Angle
		m.StopTurning()
	}
}

// horizontalMovement works out the velocity the mob wants this frame.
// Teleports are applied right away.
func (m *Mob) horizontalMovement(dt, mult float64, moveSpeed *cp.Vector) moveResult {
	phys := &m.World.Physics

	if m.Holder.Mob != nil {
		final, z := m.Holder.FinalPos()
		m.SpeedZ = 0
		m.Chase(final, z+phys.HeldZOffset, ChaseOptions{Teleport: true})
	}

	c := &m.ChaseInfo
	if c.State == ChaseChasing {
		target := c.Target()
		if c.Teleport {
			sec := m.World.Area.SectorAt(target)
			if sec == nil {
				m.outOfBounds("teleport")
				return moveFail
			}
			if c.TeleportZ {
				m.Z = c.TargetZ()
			}
			m.GroundSector = sec
			m.CenterSector = sec
			m.Speed = cp.Vector{}
			m.Pos = target
			c.State = ChaseFinished
			return moveTeleported
		}

		d := m.Pos.Distance(target)
		amount := math.Min(d/dt, c.Speed*mult)
		angle := m.Angle
		if c.FreeMove || d <= phys.FreeMoveThreshold {
			angle = common.AngleBetween(m.Pos, target)
		}
		*moveSpeed = common.AngleToCoordinates(angle, amount)
	}

	if m.PushAmount != 0 {
		if m.TimeAlive < phys.PushThrottleTimeout.Seconds() {
			m.PushAmount = 0
		} else {
			m.PushAmount = math.Min(m.PushAmount, m.Radius/dt*4)
			*moveSpeed = moveSpeed.Add(common.AngleToCoordinates(m.PushAngle, m.PushAmount+phys.PushExtraAmount))
		}
	}

	if g := m.GroundSector; (g.Scroll.X != 0 || g.Scroll.Y != 0) && m.Z <= g.Z {
		*moveSpeed = moveSpeed.Add(g.Scroll)
	}

	if m.StandingOnMob != nil {
		*moveSpeed = moveSpeed.Add(m.StandingOnMob.WalkableMoved)
	}
	return moveOK
}

// wallEdges returns the edges near pos that may block the mob. ok is false
// when pos is out of bounds or touches the edge of the map.
func (m *Mob) wallEdges(pos cp.Vector) (walls []*geometry.Edge, ok bool) {
	candidates, ok := m.World.Area.Blockmap.EdgesNear(cp.NewBBForCircle(pos, m.Radius))
	if !ok {
		return nil, false
	}

	for _, e := range candidates {
		if !geometry.CircleIntersectsLine(pos, m.Radius, e.Vertices[0], e.Vertices[1]) {
			continue
		}
		s0, s1 := e.Sectors[0], e.Sectors[1]
		if s0 == nil || s1 == nil {
			return nil, false
		}

		blocking := s0.Type == geometry.SectorBlocking || s1.Type == geometry.SectorBlocking
		if !blocking {
			if s0.Z == s1.Z {
				continue
			}
			if s0.Z < m.Z && s1.Z < m.Z {
				continue
			}
		}
		if s0.Z > m.Z && s1.Z > m.Z {
			continue
		}
		if s0.Type == geometry.SectorBlocking && s1.Type == geometry.SectorBlocking {
			continue
		}
		walls = append(walls, e)
	}
	return walls, true
}

// wallSlideAngle returns the angle to slide along e when moving at
// moveAngle into it. wallSide is the edge side holding the wall. ok is
// false when the mob is moving away from the wall.
func wallSlideAngle(e *geometry.Edge, wallSide int, moveAngle float64) (slide float64, ok bool) {
	wallAngle := e.Angle()
	var normal float64
	if wallSide == 0 {
		normal = common.NormalizeAngle(wallAngle + common.Tau/4)
	} else {
		normal = common.NormalizeAngle(wallAngle - common.Tau/4)
	}

	nd := common.AngleCWDiff(normal, moveAngle)
	if nd < common.Tau*0.25 || nd > common.Tau*0.75 {
		return 0, false
	}
	if nd < common.Tau/2 {
		return normal + common.Tau/4, true
	}
	return normal - common.Tau/4, true
}

// tickHorizontal moves the mob by speed, sliding along at most one wall.
// It reports whether a wall was touched.
func (m *Mob) tickHorizontal(dt float64, speed cp.Vector) (touchedWall bool) {
	if speed.X == 0 && speed.Y == 0 {
		return false
	}
	step := m.World.Physics.SectorStep
	headOn := common.Tau/4 - m.World.Physics.HeadOnTolerance
	sliding := false

	for {
		ok := true
		newPos := m.Pos.Add(speed.Mult(dt))
		newZ := m.Z

		center := m.World.Area.SectorAt(newPos)
		if center == nil {
			m.outOfBounds("move")
			return touchedWall
		}
		if m.Z+step < center.Z {
			return touchedWall
		}
		ground := center
		stepSector := center

		walls, inBounds := m.wallEdges(newPos)
		if !inBounds {
			m.outOfBounds("edges")
			return touchedWall
		}

		for _, e := range walls {
			tallest := m.GroundSector
			if e.Sectors[0].Type != geometry.SectorBlocking && e.Sectors[1].Type != geometry.SectorBlocking {
				if e.Sectors[0].Z > e.Sectors[1].Z {
					tallest = e.Sectors[0]
				} else {
					tallest = e.Sectors[1]
				}
			}
			if tallest.Z > ground.Z && tallest.Z <= m.Z {
				ground = tallest
			}
			if !m.Flags.Has(FlagWasThrown) && tallest.Z <= m.Z+step && tallest.Z > stepSector.Z {
				stepSector = tallest
			}
		}
		if stepSector.Z > ground.Z {
			ground = stepSector
		}
		if m.Z < stepSector.Z {
			newZ = stepSector.Z
		}

		moveAngle, total := common.CoordinatesToAngle(speed)
		slideAngle := moveAngle
		slideDiff := 0.0

		for _, e := range walls {
			isWall := false
			wallSide := 0
			for s := 0; s < 2; s++ {
				if e.Sectors[s].Type == geometry.SectorBlocking {
					isWall, wallSide = true, s
				}
			}
			if !isWall {
				for s := 0; s < 2; s++ {
					if e.Sectors[s].Z > newZ {
						isWall, wallSide = true, s
					}
				}
			}
			if !isWall {
				continue
			}

			if !sliding {
				tentative, can := wallSlideAngle(e, wallSide, moveAngle)
				if !can {
					continue
				}
				if sd := common.AngleSmallestDiff(moveAngle, tentative); sd > slideDiff {
					slideDiff = sd
					slideAngle = tentative
				}
			}
			ok = false
			touchedWall = true
		}

		if !ok && slideDiff > headOn {
			newPos = m.Pos
			ok = true
		}

		if ok {
			m.Pos = newPos
			m.Z = newZ
			m.GroundSector = ground
			m.CenterSector = center
			return touchedWall
		}
		if sliding {
			return touchedWall
		}
		sliding = true
		total *= 1 - slideDiff/common.Tau/2
		speed = common.AngleToCoordinates(slideAngle, total)
	}
}

func (m *Mob) tickVertical(dt, preMoveGroundZ float64, wasTeleport bool) {
	phys := &m.World.Physics
	g := m.GroundSector
	applyGravity := true
	midair := m.Flags.Has(FlagCanMoveMidair)

	if m.StandingOnMob == nil && preMoveGroundZ-g.Z <= phys.SectorStep && m.Z == preMoveGroundZ {
		m.Z = g.Z
	}

	if m.ChaseInfo.State == ChaseChasing && midair && !m.ChaseInfo.Teleport {
		applyGravity = false
		targetZ := m.ChaseInfo.TargetZ()
		m.SpeedZ = math.Min(math.Abs(targetZ-m.Z)/dt, m.ChaseInfo.Speed)
		if targetZ < m.Z {
			m.SpeedZ = -m.SpeedZ
		}
		m.Z += m.SpeedZ * dt
	}

	if applyGravity && !midair && m.Holder.Mob == nil && !wasTeleport {
		m.Z += m.SpeedZ*dt + (phys.GravityAdder*m.GravityMult/2)*dt*dt
		m.SpeedZ += phys.GravityAdder * dt * m.GravityMult
	}

	var newHazard *geometry.Hazard
	if m.SpeedZ <= 0 {
		switch {
		case m.StandingOnMob != nil:
			m.Z = m.StandingOnMob.Z + m.StandingOnMob.Height
			m.land()
		case m.Z <= g.Z:
			m.Z = g.Z
			m.land()
			if g.BottomlessPit {
				m.FSM.RunEvent(EvBottomlessPit, nil, nil)
			}
			for _, h := range g.Hazards {
				m.FSM.RunEvent(EvTouchedHazard, HazardPayload{Hazard: h}, nil)
				newHazard = h
			}
		}
	}

	if m.SpeedZ <= 0 {
		m.ZCap = NoZCap
	} else if m.ZCap < NoZCap {
		m.Z = math.Min(m.Z, m.ZCap)
	}

	if m.Z > g.Z && !g.HazardFloor {
		for _, h := range g.Hazards {
			m.FSM.RunEvent(EvTouchedHazard, HazardPayload{Hazard: h}, nil)
			newHazard = h
		}
	}

	if newHazard != m.OnHazard && m.OnHazard != nil {
		m.FSM.RunEvent(EvLeftHazard, HazardPayload{Hazard: m.OnHazard}, nil)
		for i := range m.Statuses {
			if m.Statuses[i].Type.RemoveOnLeave {
				m.Statuses[i].toDelete = true
			}
		}
		m.deleteOldStatuses()
	}
	m.OnHazard = newHazard

	m.Z = math.Max(m.Z, g.Z)
}

func (m *Mob) land() {
	m.SpeedZ = 0
	m.Flags.Set(FlagWasThrown, false)
	m.FSM.RunEvent(EvLanded, nil, nil)
	m.StopHeightEffect()
}

// mobToWalkOn returns the tallest walkable mob whose top is within a step
// of m and that overlaps it horizontally.
func (m *Mob) mobToWalkOn() *Mob {
	if m.SpeedZ > 0 {
		return nil
	}
	step := m.World.Physics.SectorStep
	var best *Mob
	for _, o := range m.World.Mobs {
		if o == m || !o.Type.Walkable || o.ToDelete {
			continue
		}
		if math.Abs(m.Z-(o.Z+o.Height)) > step {
			continue
		}
		if best != nil && o.Z <= best.Z {
			continue
		}
		if !m.overlaps(o) {
			continue
		}
		best = o
	}
	return best
}

func (m *Mob) overlaps(o *Mob) bool {
	switch {
	case o.RectangularDim.X != 0:
		return geometry.CircleIntersectsRectangle(m.Pos, m.Radius, o.Pos, o.RectangularDim, o.Angle)
	case m.RectangularDim.X != 0:
		return geometry.CircleIntersectsRectangle(o.Pos, o.Radius, m.Pos, m.RectangularDim, m.Angle)
	}
	return m.Pos.Distance(o.Pos) <= m.Radius+o.Radius
}

func (m *Mob) tickRiding() {
	next := m.mobToWalkOn()
	if next != nil {
		m.Z = next.Z + next.Height
	}
	prev := m.StandingOnMob
	m.StandingOnMob = next
	if next == prev {
		return
	}
	if prev != nil {
		prev.FSM.RunEvent(EvRiderRemoved, MobPayload{Mob: m}, nil)
		if m.Type.Weight != 0 {
			prev.FSM.RunEvent(EvWeightRemoved, MobPayload{Mob: m}, nil)
		}
	}
	if next != nil {
		next.FSM.RunEvent(EvRiderAdded, MobPayload{Mob: m}, nil)
		if m.Type.Weight != 0 {
			next.FSM.RunEvent(EvWeightAdded, MobPayload{Mob: m}, nil)
		}
	}
}
