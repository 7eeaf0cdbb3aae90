package mob

import (
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/logging"
)

// Flags are per-mob behavior switches toggled by scripts and physics.
type Flags uint32

const (
	FlagCanMoveMidair Flags = 1 << iota
	FlagIntangible
	FlagHidden
	FlagNonHuntable
	FlagShadowInvisible
	FlagWasThrown
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

func (f *Flags) Set(flag Flags, on bool) {
	if on {
		*f |= flag
	} else {
		*f &^= flag
	}
}

// NoZCap disables the height cap.
const NoZCap = math.MaxFloat64

// HitCooldown is how long an attacker ignores a mob it just hit.
const HitCooldown = 0.5

// Timer counts down from Duration once started.
type Timer struct {
	Duration float64
	TimeLeft float64
}

func (t *Timer) Start() { t.TimeLeft = t.Duration }

// Tick advances the timer and reports whether it reached zero this call.
func (t *Timer) Tick(dt float64) bool {
	if t.TimeLeft <= 0 {
		return false
	}
	t.TimeLeft -= dt
	if t.TimeLeft <= 0 {
		t.TimeLeft = 0
		return true
	}
	return false
}

// Status is a status effect currently applied to a mob.
type Status struct {
	Type       *StatusType
	TimeLeft   float64
	FromHazard bool

	toDelete bool
}

// MobParent links a limb to the mob it belongs to.
type MobParent struct {
	Mob            *Mob
	HandleEvents   bool
	RelayEvents    bool
	HandleStatuses bool
	RelayStatuses  bool

	LimbAnimations []string
	LimbAnimIdx    int
}

// Mob is a live instance of a Type.
type Mob struct {
	ID    int
	Type  *Type
	World *World
	FSM   *FSM

	Pos               cp.Vector
	Z                 float64
	Angle             float64
	IntendedTurnAngle float64
	IntendedTurnPos   *cp.Vector
	Speed             cp.Vector
	SpeedZ            float64
	GravityMult       float64
	PushAmount        float64
	PushAngle         float64
	Radius            float64
	Height            float64
	RectangularDim    cp.Vector
	ZCap              float64
	Flags             Flags
	HoldableFlags     int
	CanBlockPaths     bool
	Home              cp.Vector

	GroundSector      *geometry.Sector
	CenterSector      *geometry.Sector
	StandingOnMob     *Mob
	WalkableMoved     cp.Vector
	OnHazard          *geometry.Hazard
	HeightEffectPivot float64

	ChaseInfo ChaseInfo
	Holder    Holder
	Holding   []*Mob

	Health      float64
	MaxHealth   float64
	Team        int
	TimeAlive   float64
	ScriptTimer Timer
	Statuses    []Status
	Vars        map[string]string
	Links       []*Mob
	Parent      *MobParent
	Focused     *Mob

	AnimIdx   int
	AnimTime  float64
	FarReach  int
	NearReach int

	ChompBodyParts []int
	ChompMax       int
	Chomping       []*Mob

	SprayCharges []int
	Particles    []string

	// Group holds the followers of a leader; Following is the leader a
	// follower is in the group of.
	Group     []*Mob
	Following *Mob

	ToDelete bool

	animEnded    bool
	hitOpponents map[*Mob]float64
}

func newMob(w *World, t *Type, id int, pos cp.Vector, z, angle float64) *Mob {
	m := &Mob{
		ID:                id,
		Type:              t,
		World:             w,
		Pos:               pos,
		Z:                 z,
		Angle:             angle,
		IntendedTurnAngle: angle,
		GravityMult:       1,
		Radius:            t.Radius,
		Height:            t.Height,
		RectangularDim:    t.RectangularDim,
		ZCap:              NoZCap,
		Home:              pos,
		HeightEffectPivot: NoZCap,
		Health:            t.MaxHealth,
		MaxHealth:         t.MaxHealth,
		Vars:              make(map[string]string, len(t.Vars)),
		AnimIdx:           InvalidIndex,
		FarReach:          InvalidIndex,
		NearReach:         InvalidIndex,
		hitOpponents:      map[*Mob]float64{},
	}
	for k, v := range t.Vars {
		m.Vars[k] = v
	}
	for _, s := range t.Sprays {
		m.SprayCharges = append(m.SprayCharges, s.Charges)
	}
	m.FSM = NewFSM(m)
	return m
}

// SetHealth changes health, either to amount or by amount when add is
// set. With ratio, amount is a fraction of the max health. The result is
// clamped to [0, MaxHealth].
func (m *Mob) SetHealth(add, ratio bool, amount float64) {
	change := amount
	if ratio {
		change = m.MaxHealth * amount
	}
	base := 0.0
	if add {
		base = m.Health
	}
	m.Health = common.Clamp(base+change, 0, m.MaxHealth)
}

// SetAnimation switches to the animation at idx. Unknown indexes are
// ignored.
func (m *Mob) SetAnimation(idx, option int) {
	if idx < 0 || idx >= len(m.Type.Animations) {
		return
	}
	if option != animNoRestart || m.AnimIdx != idx {
		m.AnimTime = 0
		m.animEnded = false
	}
	m.AnimIdx = idx

	dur := m.Type.Animations[idx].Duration
	switch {
	case option == animRandomTime && m.World != nil:
		m.AnimTime = m.World.Rand.Float64() * dur
	case option == animRandomTimeOnSpawn && m.TimeAlive == 0 && m.World != nil:
		m.AnimTime = m.World.Rand.Float64() * dur
	}
}

// AnimName is the name of the current animation, or "".
func (m *Mob) AnimName() string {
	if m.AnimIdx < 0 || m.AnimIdx >= len(m.Type.Animations) {
		return ""
	}
	return m.Type.Animations[m.AnimIdx].Name
}

func (m *Mob) SetTimer(t float64) {
	m.ScriptTimer.Duration = t
	m.ScriptTimer.Start()
}

func (m *Mob) SetVar(name, value string) {
	m.Vars[name] = value
}

func (m *Mob) FocusOn(other *Mob) {
	m.Unfocus()
	m.Focused = other
}

func (m *Mob) Unfocus() {
	m.Focused = nil
}

// SendMessage delivers msg to to's "on_receive_message" handler.
func (m *Mob) SendMessage(to *Mob, msg string) {
	if to == nil {
		return
	}
	to.FSM.RunEvent(EvReceiveMessage, MessagePayload{Text: msg, Sender: m}, nil)
}

// IsOpponent reports whether m and other are on hostile teams.
func (m *Mob) IsOpponent(other *Mob) bool {
	if other == nil || other == m {
		return false
	}
	return m.Team != TeamNone && other.Team != TeamNone && m.Team != other.Team
}

// CanHurt reports whether m's attacks may damage v right now.
func (m *Mob) CanHurt(v *Mob) bool {
	if m.Team == v.Team && m.Team != TeamNone {
		return false
	}
	if v.Flags.Has(FlagIntangible) {
		return false
	}
	return m.hitOpponents[v] <= 0
}

// ApplyStatus gives the mob a status effect. Limbs relay statuses to their
// parent when configured to, and parents pass them down to their limbs.
func (m *Mob) ApplyStatus(st *StatusType, givenByParent, fromHazard bool) {
	if st == nil {
		return
	}
	if p := m.Parent; p != nil && p.Mob != nil && p.RelayStatuses && !givenByParent {
		p.Mob.ApplyStatus(st, false, fromHazard)
		if !p.HandleStatuses {
			return
		}
	}
	if m.World != nil {
		for _, child := range m.World.Mobs {
			if child.Parent != nil && child.Parent.Mob == m {
				child.ApplyStatus(st, true, fromHazard)
			}
		}
	}

	for i := range m.Statuses {
		if m.Statuses[i].Type == st {
			m.Statuses[i].TimeLeft = st.Duration
			m.Statuses[i].toDelete = false
			return
		}
	}
	m.Statuses = append(m.Statuses, Status{Type: st, TimeLeft: st.Duration, FromHazard: fromHazard})
}

// RemoveStatus marks every status with the given name for removal.
func (m *Mob) RemoveStatus(name string) {
	for i := range m.Statuses {
		if m.Statuses[i].Type.Name == name {
			m.Statuses[i].toDelete = true
		}
	}
	m.deleteOldStatuses()
}

func (m *Mob) deleteOldStatuses() {
	kept := m.Statuses[:0]
	for _, s := range m.Statuses {
		if !s.toDelete {
			kept = append(kept, s)
		}
	}
	m.Statuses = kept
}

// SpeedMultiplier is the product of every status's speed multiplier.
func (m *Mob) SpeedMultiplier() float64 {
	mult := 1.0
	for _, s := range m.Statuses {
		if s.Type.SpeedMultiplier != 0 {
			mult *= s.Type.SpeedMultiplier
		}
	}
	return mult
}

func (m *Mob) StartHeightEffect() { m.HeightEffectPivot = m.Z }
func (m *Mob) StopHeightEffect()  { m.HeightEffectPivot = NoZCap }

// StartDying zeroes health, stops movement, clears statuses and dismisses
// the mob's group.
func (m *Mob) StartDying() {
	m.SetHealth(false, false, 0)
	m.StopChasing()
	m.StopTurning()
	m.GravityMult = 1
	for i := range m.Statuses {
		m.Statuses[i].toDelete = true
	}
	m.deleteOldStatuses()

	m.DismissGroup()
}

// DismissGroup sends every group member away. Each receives EvReleased
// before leaving.
func (m *Mob) DismissGroup() {
	for len(m.Group) > 0 {
		member := m.Group[0]
		member.FSM.RunEvent(EvReleased, MobPayload{Mob: m}, nil)
		member.LeaveGroup()
	}
}

// IsActiveLeader reports whether m is the leader under player control.
func (m *Mob) IsActiveLeader() bool {
	return m.World != nil && m.World.ActiveLeader == m
}

func (m *Mob) FinishDying() {
	m.ReleaseChomped()
}

// AddToGroup makes member follow m.
func (m *Mob) AddToGroup(member *Mob) {
	if member == nil || member.Following == m {
		return
	}
	member.LeaveGroup()
	member.Following = m
	m.Group = append(m.Group, member)
}

func (m *Mob) LeaveGroup() {
	leader := m.Following
	if leader == nil {
		return
	}
	for i, g := range leader.Group {
		if g == m {
			leader.Group = append(leader.Group[:i], leader.Group[i+1:]...)
			break
		}
	}
	m.Following = nil
}

// Chomp grabs victim with the given body part.
func (m *Mob) Chomp(victim *Mob, hitboxIdx int) {
	if victim == nil || len(m.Chomping) >= m.ChompMax {
		return
	}
	m.Hold(victim, hitboxIdx, 0.5, 0, true, HoldRotationNever)
	victim.FocusOn(m)
	m.Chomping = append(m.Chomping, victim)
}

func (m *Mob) ReleaseChomped() {
	for _, c := range m.Chomping {
		m.Release(c)
	}
	m.Chomping = nil
}

// SwallowChomped kills up to n chomped victims, picked at random. The rest
// stay in the mouth.
func (m *Mob) SwallowChomped(n int) {
	total := min(n, len(m.Chomping))
	for range total {
		idx := 0
		if m.World != nil && len(m.Chomping) > 1 {
			idx = m.World.Rand.Intn(len(m.Chomping))
		}
		c := m.Chomping[idx]
		m.Chomping = append(m.Chomping[:idx], m.Chomping[idx+1:]...)
		c.FSM.RunEvent(EvSwallowed, nil, nil)
		c.SetHealth(false, false, 0)
		m.Release(c)
	}
}

// LatchedMobs are the followers currently held by m.
func (m *Mob) LatchedMobs() []*Mob {
	var out []*Mob
	for _, h := range m.Holding {
		if h.Type.Category == CategoryFollower {
			out = append(out, h)
		}
	}
	return out
}

// Riders are the mobs standing on top of m.
func (m *Mob) Riders() []*Mob {
	if m.World == nil {
		return nil
	}
	var out []*Mob
	for _, o := range m.World.Mobs {
		if o.StandingOnMob == m {
			out = append(out, o)
		}
	}
	return out
}

// HitboxPos is where the hitbox at idx currently is, horizontally.
func (m *Mob) HitboxPos(idx int) cp.Vector {
	if idx < 0 || idx >= len(m.Type.Hitboxes) {
		return m.Pos
	}
	return m.Pos.Add(common.RotatePoint(m.Type.Hitboxes[idx].Offset, m.Angle))
}

// ClosestHitbox returns the index of the hitbox nearest to p, or
// InvalidIndex when the type has none.
func (m *Mob) ClosestHitbox(p cp.Vector) int {
	best := InvalidIndex
	bestDist := 0.0
	for i := range m.Type.Hitboxes {
		d := m.HitboxPos(i).Distance(p) - m.Type.Hitboxes[i].Radius
		if best == InvalidIndex || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (m *Mob) log() *zap.Logger {
	return logging.L().With(zap.Int("mob", m.ID), zap.String("type", m.Type.Name))
}
