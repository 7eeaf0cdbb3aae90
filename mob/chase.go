package mob

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/mobengine/common"
)

const (
	// DefaultChaseTargetDistance is how close a chase must get before it
	// counts as arrived.
	DefaultChaseTargetDistance = 3.0
)

type ChaseState int

const (
	ChaseStopped ChaseState = iota
	ChaseChasing
	ChaseFinished
)

// ChaseInfo is a mob's "move toward a point" request. When Orig is set the
// target follows it, plus Offset; otherwise Offset is the absolute target.
type ChaseInfo struct {
	State          ChaseState
	Offset         cp.Vector
	Orig           *cp.Vector
	OffsetZ        float64
	OrigZ          *float64
	Teleport       bool
	TeleportZ      bool
	FreeMove       bool
	TargetDistance float64
	Speed          float64
}

func (c *ChaseInfo) Target() cp.Vector {
	if c.Orig != nil {
		return c.Orig.Add(c.Offset)
	}
	return c.Offset
}

func (c *ChaseInfo) TargetZ() float64 {
	if c.OrigZ != nil {
		return *c.OrigZ + c.OffsetZ
	}
	return c.OffsetZ
}

// ChaseOptions tweak a chase. The zero value walks with tank controls at
// the type's move speed and stops within DefaultChaseTargetDistance.
type ChaseOptions struct {
	Orig           *cp.Vector
	OrigZ          *float64
	Teleport       bool
	FreeMove       bool
	TargetDistance float64
	Speed          float64
}

// Chase starts moving toward offset (relative to opts.Orig when given) at
// height z. Teleport chases apply on the next physics tick.
func (m *Mob) Chase(offset cp.Vector, z float64, opts ChaseOptions) {
	dist := opts.TargetDistance
	if dist <= 0 {
		dist = DefaultChaseTargetDistance
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = m.Type.MoveSpeed
	}
	m.ChaseInfo = ChaseInfo{
		State:          ChaseChasing,
		Offset:         offset,
		Orig:           opts.Orig,
		OffsetZ:        z,
		OrigZ:          opts.OrigZ,
		Teleport:       opts.Teleport,
		TeleportZ:      opts.Teleport,
		FreeMove:       opts.FreeMove,
		TargetDistance: dist,
		Speed:          speed,
	}
}

func (m *Mob) StopChasing() {
	m.ChaseInfo.State = ChaseStopped
	m.ChaseInfo.Orig = nil
	m.ChaseInfo.OrigZ = nil
	m.Speed = cp.Vector{}
}

// Face makes the mob turn toward angle, or keep turning toward pos every
// frame when pos is not nil.
func (m *Mob) Face(angle float64, pos *cp.Vector) {
	if m.CarriedBy() {
		return
	}
	m.IntendedTurnAngle = angle
	m.IntendedTurnPos = pos
}

func (m *Mob) StopTurning() {
	m.IntendedTurnAngle = m.Angle
	m.IntendedTurnPos = nil
}

// CarriedBy reports whether a holder dictates the mob's facing.
func (m *Mob) CarriedBy() bool {
	return m.Holder.Mob != nil && m.Holder.Rotation != HoldRotationNever
}

type HoldRotation int

const (
	HoldRotationNever HoldRotation = iota
	HoldRotationFaceHolder
	HoldRotationCopyHolder
)

// Holder records who is holding a mob and where.
type Holder struct {
	Mob         *Mob
	HitboxIdx   int
	OffsetDist  float64
	OffsetAngle float64
	Above       bool
	Rotation    HoldRotation
}

// FinalPos returns where the held mob should be, and at what height.
func (h *Holder) FinalPos() (cp.Vector, float64) {
	if h.Mob == nil {
		return cp.Vector{}, 0
	}
	holder := h.Mob
	var pos cp.Vector
	z := holder.Z

	if h.HitboxIdx >= 0 && h.HitboxIdx < len(holder.Type.Hitboxes) {
		hb := &holder.Type.Hitboxes[h.HitboxIdx]
		pos = holder.Pos.Add(common.RotatePoint(hb.Offset, holder.Angle))
		pos = pos.Add(common.AngleToCoordinates(h.OffsetAngle+holder.Angle, h.OffsetDist*hb.Radius))
		z += hb.Z
	} else {
		pos = holder.Pos.Add(common.AngleToCoordinates(h.OffsetAngle+holder.Angle, h.OffsetDist*holder.Radius))
	}
	if h.Above {
		z += holder.Height
	}
	return pos, z
}

// Hold makes m hold other. other receives EvHeld.
func (m *Mob) Hold(other *Mob, hitboxIdx int, offsetDist, offsetAngle float64, above bool, rot HoldRotation) {
	if other == nil || other == m {
		return
	}
	m.Holding = append(m.Holding, other)
	other.Holder = Holder{
		Mob:         m,
		HitboxIdx:   hitboxIdx,
		OffsetDist:  offsetDist,
		OffsetAngle: offsetAngle,
		Above:       above,
		Rotation:    rot,
	}
	other.FSM.RunEvent(EvHeld, MobPayload{Mob: m}, nil)
}

// Release lets go of other. other receives EvReleased.
func (m *Mob) Release(other *Mob) {
	idx := -1
	for i, h := range m.Holding {
		if h == other {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	m.Holding = append(m.Holding[:idx], m.Holding[idx+1:]...)
	other.Holder = Holder{}
	other.StopChasing()
	other.FSM.RunEvent(EvReleased, MobPayload{Mob: m}, nil)
}
