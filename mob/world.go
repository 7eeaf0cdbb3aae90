package mob

import (
	"math/rand"
	"slices"
	"sort"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/logging"
)

// Catalog is the content shared by every mob type in a world.
type Catalog struct {
	StatusTypes map[string]*StatusType
	Hazards     map[string]*geometry.Hazard
	Particles   []string
}

func NewCatalog() *Catalog {
	return &Catalog{
		StatusTypes: map[string]*StatusType{},
		Hazards:     map[string]*geometry.Hazard{},
	}
}

// Sink receives the effects the simulation does not own: sound,
// particles and on-screen text.
type Sink interface {
	PlaySound(m *Mob, sound string)
	StopSound(m *Mob)
	StartParticles(m *Mob, generator string, offset cp.Vector, z float64)
	StopParticles(m *Mob)
	ShowMessage(m *Mob, text string)
}

type nopSink struct{}

func (nopSink) PlaySound(*Mob, string)                          {}
func (nopSink) StopSound(*Mob)                                  {}
func (nopSink) StartParticles(*Mob, string, cp.Vector, float64) {}
func (nopSink) StopParticles(*Mob)                              {}
func (nopSink) ShowMessage(*Mob, string)                        {}

// World is one simulation session: the area, the loaded types and the
// live mobs.
type World struct {
	Area       *geometry.Area
	Physics    config.Physics
	Catalog    *Catalog
	Types      map[string]*Type
	Mobs       []*Mob
	Sink       Sink
	Rand       *rand.Rand
	DayMinutes float64

	// ActiveLeader is the leader under player control, if any.
	ActiveLeader *Mob

	nextID int
}

func NewWorld(area *geometry.Area, physics config.Physics) *World {
	return &World{
		Area:    area,
		Physics: physics,
		Catalog: NewCatalog(),
		Types:   map[string]*Type{},
		Sink:    nopSink{},
		Rand:    rand.New(rand.NewSource(1)),
	}
}

// AddType registers t under its name and points it at the world catalog.
func (w *World) AddType(t *Type) {
	t.Catalog = w.Catalog
	w.Types[t.Name] = t
}

// SetActiveLeader hands player control to leader. The previous leader
// receives EvDeactivated and the new one EvActivated.
func (w *World) SetActiveLeader(leader *Mob) {
	if leader == w.ActiveLeader {
		return
	}
	if old := w.ActiveLeader; old != nil {
		w.ActiveLeader = nil
		old.FSM.RunEvent(EvDeactivated, nil, nil)
	}
	w.ActiveLeader = leader
	if leader != nil {
		leader.FSM.RunEvent(EvActivated, nil, nil)
	}
}

// NextLeader returns the first living leader after current in spawn
// order, wrapping around, or nil when there is none besides current.
func (w *World) NextLeader(current *Mob) *Mob {
	start := 0
	for i, m := range w.Mobs {
		if m == current {
			start = i + 1
			break
		}
	}
	n := len(w.Mobs)
	for k := 0; k < n; k++ {
		m := w.Mobs[(start+k)%n]
		if m != current && m.Type.Category == CategoryLeader && !m.ToDelete && m.Health > 0 {
			return m
		}
	}
	return nil
}

func (w *World) MobByID(id int) *Mob {
	for _, m := range w.Mobs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Spawn creates a mob of type t, runs its init actions and enters its
// first state. vars override the type's default variables.
func (w *World) Spawn(t *Type, pos cp.Vector, z, angle float64, vars map[string]string) *Mob {
	w.nextID++
	m := newMob(w, t, w.nextID, pos, z, angle)
	for k, v := range vars {
		m.Vars[k] = v
	}
	if w.Area != nil {
		m.GroundSector = w.Area.SectorAt(pos)
		m.CenterSector = m.GroundSector
	}
	w.Mobs = append(w.Mobs, m)

	if len(t.InitActions) > 0 {
		init := &Event{Type: EvUnknown, Actions: t.InitActions}
		init.Run(m, nil, nil)
	}

	first := t.FirstStateIdx
	if m.FSM.FirstStateOverride != InvalidIndex {
		first = m.FSM.FirstStateOverride
	}
	m.FSM.SetState(first, nil, nil)
	return m
}

// SpawnFrom creates the mob described by info on behalf of parent. It
// returns nil when the type is unknown or the spot is out of bounds.
func (w *World) SpawnFrom(parent *Mob, info *SpawnInfo) *Mob {
	t, ok := w.Types[info.TypeName]
	if !ok {
		parent.log().Warn("spawn of unknown mob type", zap.String("spawn_type", info.TypeName))
		return nil
	}

	pos, z, angle := info.Coords, info.Z, info.Angle
	if info.Relative {
		pos = parent.Pos.Add(common.RotatePoint(info.Coords, parent.Angle))
		z = parent.Z + info.Z
		angle = parent.Angle + info.Angle
	}
	if w.Area != nil && w.Area.SectorAt(pos) == nil {
		return nil
	}

	m := w.Spawn(t, pos, z, angle, info.Vars)
	if info.LinkObjectToSpawn {
		parent.Links = append(parent.Links, m)
	}
	if info.LinkSpawnToObject {
		m.Links = append(m.Links, parent)
	}
	if info.Momentum != 0 {
		a := w.Rand.Float64() * common.Tau
		m.Speed = common.AngleToCoordinates(a, info.Momentum)
		m.SpeedZ = info.Momentum * 7
	}
	return m
}

// Tick advances the world by dt seconds. Mobs are ticked in spawn order;
// mobs marked for deletion are removed once every mob has ticked.
func (w *World) Tick(dt float64) {
	for i := 0; i < len(w.Mobs); i++ {
		w.Mobs[i].Tick(dt)
	}
	w.processInteractions(dt)
	w.purge()
}

// Tick runs one frame of the mob: brain, physics, misc logic, animation
// and script, stopping early if the mob gets marked for deletion.
func (m *Mob) Tick(dt float64) {
	if m.ToDelete {
		return
	}
	m.tickBrain(dt)
	if m.ToDelete {
		return
	}
	m.TickPhysics(dt)
	if m.ToDelete {
		return
	}
	m.tickMisc(dt)
	if m.ToDelete {
		return
	}
	m.tickAnimation(dt)
	if m.ToDelete {
		return
	}
	m.tickScript(dt)
}

func (m *Mob) tickBrain(dt float64) {
	c := &m.ChaseInfo
	if c.State != ChaseChasing || c.Teleport {
		return
	}
	midair := m.Flags.Has(FlagCanMoveMidair)
	if m.SpeedZ != 0 && !midair {
		return
	}

	target := c.Target()
	horiz := m.Pos.Distance(target)
	vert := 0.0
	if midair {
		vert = abs(m.Z - c.TargetZ())
	}
	if horiz > c.TargetDistance || vert > 1 {
		if !c.FreeMove && horiz > 0 {
			m.Face(common.AngleBetween(m.Pos, target), nil)
		}
		return
	}
	c.State = ChaseFinished
	m.FSM.RunEvent(EvReachedDestination, nil, nil)
}

func (m *Mob) tickMisc(dt float64) {
	if m.TimeAlive == 0 {
		m.FSM.RunEvent(EvReady, nil, nil)
	}
	m.TimeAlive += dt

	for i := range m.Statuses {
		s := &m.Statuses[i]
		if s.Type.Duration > 0 {
			s.TimeLeft -= dt
			if s.TimeLeft <= 0 {
				s.toDelete = true
			}
		}
		if s.Type.HealthChange != 0 {
			m.SetHealth(true, false, s.Type.HealthChange*dt)
		}
	}
	m.deleteOldStatuses()

	for o, left := range m.hitOpponents {
		if left-dt <= 0 {
			delete(m.hitOpponents, o)
		} else {
			m.hitOpponents[o] = left - dt
		}
	}

	if m.GroundSector != nil && m.GroundSector.BottomlessPit && m.HeightEffectPivot == NoZCap {
		m.HeightEffectPivot = m.Z
	}
	if m.CanBlockPaths && m.Health <= 0 {
		m.CanBlockPaths = false
	}
}

func (m *Mob) tickAnimation(dt float64) {
	if m.AnimIdx < 0 || m.AnimIdx >= len(m.Type.Animations) {
		return
	}
	for _, s := range m.Statuses {
		if s.Type.FreezeAnimation {
			return
		}
	}
	anim := m.Type.Animations[m.AnimIdx]
	if anim.Duration <= 0 || m.animEnded {
		return
	}
	m.AnimTime += dt * m.SpeedMultiplier()
	if m.AnimTime < anim.Duration {
		return
	}
	if anim.Loop {
		for m.AnimTime >= anim.Duration {
			m.AnimTime -= anim.Duration
		}
	} else {
		m.AnimTime = anim.Duration
		m.animEnded = true
	}
	m.FSM.RunEvent(EvAnimationEnd, nil, nil)
}

func (m *Mob) tickScript(dt float64) {
	if m.FSM.Cur == nil {
		return
	}

	if m.ScriptTimer.Duration > 0 && m.ScriptTimer.Tick(dt) {
		m.FSM.RunEvent(EvTimer, nil, nil)
	}

	if m.Health <= 0 && m.MaxHealth != 0 {
		m.FSM.RunEvent(EvDeath, MobPayload{Mob: m}, nil)
	}

	if f := m.Focused; f != nil {
		if (f.Health <= 0 && f.MaxHealth != 0) || f.ToDelete {
			m.FSM.RunEvent(EvFocusOffReach, nil, nil)
		} else if m.FarReach != InvalidIndex && m.FSM.Event(EvFocusOffReach) != nil {
			if !m.inReach(f, &m.Type.Reaches[m.FarReach]) {
				m.FSM.RunEvent(EvFocusOffReach, nil, nil)
			}
		}
	}

	if m.Type.TerritoryRadius > 0 && m.Pos.Distance(m.Home) >= m.Type.TerritoryRadius {
		m.FSM.RunEvent(EvFarFromHome, nil, nil)
	}

	m.FSM.RunEvent(EvTick, nil, nil)
}

// inReach reports whether other is inside either of r's radius/angle
// pairs, measured from m's edge to other's edge.
func (m *Mob) inReach(other *Mob, r *Reach) bool {
	d := m.Pos.Distance(other.Pos)
	faceDiff := common.AngleSmallestDiff(m.Angle, common.AngleBetween(m.Pos, other.Pos))
	span := m.Radius + other.Radius
	if d <= r.Radius1+span && faceDiff <= r.Angle1/2 {
		return true
	}
	return d <= r.Radius2+span && faceDiff <= r.Angle2/2
}

func zOverlap(m1, m2 *Mob) bool {
	if m1.Height == 0 || m2.Height == 0 {
		return true
	}
	return m1.Z <= m2.Z+m2.Height && m2.Z <= m1.Z+m1.Height
}

// processInteractions computes pushes and fires the touch, reach and
// hitbox events between every pair of live mobs.
func (w *World) processInteractions(dt float64) {
	for _, m1 := range w.Mobs {
		if m1.ToDelete {
			continue
		}
		for _, m2 := range w.Mobs {
			if m2 == m1 || m2.ToDelete || m1.ToDelete {
				continue
			}
			w.interact(m1, m2, dt)
		}
	}
}

func (w *World) interact(m1, m2 *Mob, dt float64) {
	tangible := !m1.Flags.Has(FlagIntangible) && !m2.Flags.Has(FlagIntangible)
	d := m1.Pos.Distance(m2.Pos)
	rsum := m1.Radius + m2.Radius
	touching := tangible && d <= rsum && zOverlap(m1, m2)

	if touching &&
		m2.Type.Pushes && m1.Type.Pushable &&
		m1.Holder.Mob == nil && m2.Holder.Mob == nil &&
		m1.StandingOnMob != m2 && m2.StandingOnMob != m1 && d < rsum {
		amount := (rsum - d) / dt
		if amount > m1.PushAmount {
			m1.PushAmount = amount
			if d == 0 {
				m1.PushAngle = float64(m1.ID)
			} else {
				m1.PushAngle = common.AngleBetween(m2.Pos, m1.Pos)
			}
		}
	}

	if touching {
		m1.FSM.RunEvent(EvTouchedObject, MobPayload{Mob: m2}, nil)
		if m1.IsOpponent(m2) {
			m1.FSM.RunEvent(EvTouchedOpponent, MobPayload{Mob: m2}, nil)
		}
		if m2.Type.Category == CategoryLeader && m1.Type.Category == CategoryFollower {
			m1.FSM.RunEvent(EvTouchedLeader, LeaderPayload{Leader: m2, Inactive: !m2.IsActiveLeader()}, nil)
		}
	}

	if tangible && m1.NearReach != InvalidIndex && zOverlap(m1, m2) &&
		m1.inReach(m2, &m1.Type.Reaches[m1.NearReach]) {
		m1.FSM.RunEvent(EvObjectInReach, MobPayload{Mob: m2}, nil)
		if m1.IsOpponent(m2) {
			m1.FSM.RunEvent(EvOpponentInReach, MobPayload{Mob: m2}, nil)
		}
	}

	if tangible {
		w.hitboxTouches(m1, m2)
	}
}

// hitboxTouches fires the events for m2's hitboxes touching m1's normal
// hitboxes.
func (w *World) hitboxTouches(m1, m2 *Mob) {
	for i1 := range m1.Type.Hitboxes {
		h1 := &m1.Type.Hitboxes[i1]
		if h1.Kind != HitboxNormal {
			continue
		}
		p1 := m1.HitboxPos(i1)
		for i2 := range m2.Type.Hitboxes {
			h2 := &m2.Type.Hitboxes[i2]
			if h2.Kind == HitboxDisabled {
				continue
			}
			if p1.Distance(m2.HitboxPos(i2)) > h1.Radius+h2.Radius {
				continue
			}
			if !hitboxZOverlap(m1, h1, m2, h2) {
				continue
			}

			if h2.Kind == HitboxNormal {
				m1.FSM.RunEvent(EvHitboxTouchNN, HitboxPayload{Other: m2, Mine: h1, Theirs: h2}, nil)
				continue
			}
			if !m2.CanHurt(m1) {
				continue
			}
			m2.hitOpponents[m1] = HitCooldown
			if m2.chompsWith(i2) {
				m1.FSM.RunEvent(EvHitboxTouchEat, HitboxPayload{Other: m2, Mine: h1, Theirs: h2}, nil)
			}
			m1.FSM.RunEvent(EvHitboxTouchNA, HitboxPayload{Other: m2, Mine: h1, Theirs: h2}, nil)
			m2.FSM.RunEvent(EvHitboxTouchAN, HitboxPayload{Other: m1, Mine: h2, Theirs: h1}, nil)
		}
	}
}

func hitboxZOverlap(m1 *Mob, h1 *Hitbox, m2 *Mob, h2 *Hitbox) bool {
	if h1.Height == 0 || h2.Height == 0 {
		return true
	}
	z1, z2 := m1.Z+h1.Z, m2.Z+h2.Z
	return z1 <= z2+h2.Height && z2 <= z1+h1.Height
}

func (m *Mob) chompsWith(hitboxIdx int) bool {
	if len(m.Chomping) >= m.ChompMax {
		return false
	}
	for _, b := range m.ChompBodyParts {
		if b == hitboxIdx {
			return true
		}
	}
	return false
}

// Spray makes m use the spray at idx toward its facing. Nothing happens,
// and no charge is used, when no mob would be affected. It returns whether
// the spray went off.
func (w *World) Spray(m *Mob, idx int) bool {
	if idx < 0 || idx >= len(m.Type.Sprays) {
		return false
	}
	st := &m.Type.Sprays[idx]
	if st.Charges > 0 && m.SprayCharges[idx] <= 0 {
		return false
	}

	var affected []*Mob
	for _, o := range w.Mobs {
		if o == m || o.ToDelete || o.Flags.Has(FlagIntangible) {
			continue
		}
		if st.Group {
			if o.Following == m {
				affected = append(affected, o)
			}
			continue
		}
		d := m.Pos.Distance(o.Pos)
		if d > st.Distance+o.Radius {
			continue
		}
		diff := common.AngleSmallestDiff(m.Angle+st.Angle, common.AngleBetween(m.Pos, o.Pos))
		if d > 0 && diff > st.AngleRange/2 {
			continue
		}
		affected = append(affected, o)
	}
	if len(affected) == 0 {
		return false
	}

	if st.Charges > 0 {
		m.SprayCharges[idx]--
	}
	if st.Particles != "" {
		w.Sink.StartParticles(m, st.Particles, cp.Vector{}, m.Z)
	}
	for _, o := range affected {
		o.FSM.RunEvent(EvTouchedSpray, SprayPayload{Spray: st}, nil)
	}
	return true
}

// purge drops mobs marked for deletion and clears every reference to them.
// Limbs of a deleted parent go with it. Each deleted mob leaves its state,
// and the mobs it held are released.
func (w *World) purge() {
	gone := map[*Mob]bool{}
	for _, m := range w.Mobs {
		if m.ToDelete {
			gone[m] = true
		}
	}
	if len(gone) == 0 {
		return
	}
	for grew := true; grew; {
		grew = false
		for _, m := range w.Mobs {
			if !gone[m] && m.Parent != nil && gone[m.Parent.Mob] {
				m.ToDelete = true
				gone[m] = true
				grew = true
			}
		}
	}

	for _, m := range w.Mobs {
		if !gone[m] {
			continue
		}
		m.FSM.SetState(InvalidIndex, nil, nil)
		for _, held := range slices.Clone(m.Holding) {
			if !gone[held] {
				m.Release(held)
			}
		}
		m.LeaveGroup()
	}

	kept := w.Mobs[:0]
	for _, m := range w.Mobs {
		if !gone[m] {
			kept = append(kept, m)
		}
	}
	clear(w.Mobs[len(kept):])
	w.Mobs = kept
	if gone[w.ActiveLeader] {
		w.ActiveLeader = nil
	}

	for _, m := range w.Mobs {
		m.forget(gone)
	}
	for m := range gone {
		if ce := logging.L().Check(zap.DebugLevel, "mob deleted"); ce != nil {
			ce.Write(zap.Int("mob", m.ID), zap.String("type", m.Type.Name))
		}
	}
}

func (m *Mob) forget(gone map[*Mob]bool) {
	if gone[m.Focused] {
		m.Focused = nil
	}
	if gone[m.StandingOnMob] {
		m.StandingOnMob = nil
	}
	if gone[m.Holder.Mob] {
		m.Holder = Holder{}
	}
	if gone[m.Following] {
		m.Following = nil
	}
	for g := range gone {
		c := &m.ChaseInfo
		if c.State != ChaseStopped && (c.Orig == &g.Pos || c.OrigZ == &g.Z) {
			m.StopChasing()
		}
		if m.IntendedTurnPos == &g.Pos {
			m.StopTurning()
		}
	}
	m.Links = without(m.Links, gone)
	m.Holding = without(m.Holding, gone)
	m.Chomping = without(m.Chomping, gone)
	m.Group = without(m.Group, gone)
	for o := range m.hitOpponents {
		if gone[o] {
			delete(m.hitOpponents, o)
		}
	}
}

func without(list []*Mob, gone map[*Mob]bool) []*Mob {
	kept := list[:0]
	for _, m := range list {
		if !gone[m] {
			kept = append(kept, m)
		}
	}
	return kept
}

// SortedTypeNames lists the registered type names alphabetically.
func (w *World) SortedTypeNames() []string {
	names := make([]string, 0, len(w.Types))
	for n := range w.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
