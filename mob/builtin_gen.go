package mob

import (
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/logging"
)

// Generic handlers the loader gives every state that does not handle these
// events itself.

// genBeAttacked takes damage from an attack hitbox: its power divided by
// the defense of the hitbox it hit. A defense of 0 makes the hitbox
// invulnerable. Hazards on the attack hitbox are applied too.
func genBeAttacked(m *Mob, d1, _ Payload) {
	info, ok := d1.(HitboxPayload)
	if !ok || info.Mine == nil || info.Theirs == nil {
		return
	}
	if info.Mine.Value == 0 {
		return
	}
	damage := info.Theirs.Value / info.Mine.Value
	m.SetHealth(true, false, -damage)
	m.FSM.RunEvent(EvDamage, info, nil)

	if m.Type.Catalog == nil {
		return
	}
	for _, name := range info.Theirs.Hazards {
		if hz, ok := m.Type.Catalog.Hazards[name]; ok {
			m.FSM.RunEvent(EvTouchedHazard, HazardPayload{Hazard: hz}, nil)
		}
	}
}

// genDie switches to the type's death state.
func genDie(m *Mob, d1, d2 Payload) {
	if m.Type.DeathStateIdx == InvalidIndex {
		return
	}
	m.FSM.SetState(m.Type.DeathStateIdx, d1, d2)
}

func genFallDownPit(m *Mob, _, _ Payload) {
	m.SetHealth(false, false, 0)
	m.FinishDying()
	m.ToDelete = true
}

// genTouchHazard applies the statuses of the hazard touched.
func genTouchHazard(m *Mob, d1, _ Payload) {
	info, ok := d1.(HazardPayload)
	if !ok || info.Hazard == nil {
		return
	}
	for _, name := range info.Hazard.Effects {
		m.ApplyStatus(m.statusType(name), false, true)
	}
}

// genTouchSpray applies the statuses of the spray touched.
func genTouchSpray(m *Mob, d1, _ Payload) {
	info, ok := d1.(SprayPayload)
	if !ok || info.Spray == nil {
		return
	}
	for _, name := range info.Spray.Effects {
		m.ApplyStatus(m.statusType(name), false, false)
	}
}

func (m *Mob) statusType(name string) *StatusType {
	if m.Type.Catalog == nil {
		return nil
	}
	return m.Type.Catalog.StatusTypes[name]
}

// engineAssert logs msg with the given context at Error and panics when
// cond does not hold. It guards invariants of the builtin behaviors.
func engineAssert(cond bool, msg string, fields ...zap.Field) {
	if cond {
		return
	}
	logging.Error(msg, fields...)
	panic("mob: " + msg)
}

// finishBuiltinStates gives builtin states the generic events and
// resolves their state switches.
func finishBuiltinStates(mt *Type) {
	for _, st := range mt.States {
		injectGenericEvents(st, genericEvents(mt, st))
	}
	_, errs := FixStates(mt.States, mt.FirstStateName, mt)
	engineAssert(len(errs) == 0, "builtin states do not resolve",
		zap.String("type", mt.Name), zap.Errors("errors", errs))
	mt.FirstStateIdx = mt.StateIndex(mt.FirstStateName)
	mt.DeathStateIdx = mt.StateIndex(mt.DeathStateName)
}
