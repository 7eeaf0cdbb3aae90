package mob

import "github.com/milk9111/mobengine/geometry"

// Payload is the data an event carries. Which concrete payload arrives with
// which event is fixed by the sender; handlers type-switch on it and treat a
// mismatch as "nothing to do".
type Payload interface {
	isPayload()
}

// MobPayload names another mob involved in the event (touch, held,
// released, rider added, and so on).
type MobPayload struct {
	Mob *Mob
}

// HitboxPayload is sent on hitbox touches and damage. Mine belongs to the
// receiving mob and Theirs to Other.
type HitboxPayload struct {
	Other  *Mob
	Mine   *Hitbox
	Theirs *Hitbox
}

type HazardPayload struct {
	Hazard *geometry.Hazard
}

type MessagePayload struct {
	Text   string
	Sender *Mob
}

// LeaderPayload is sent by leaders to followers. Inactive is set when the
// leader sending it is not the one under player control.
type LeaderPayload struct {
	Leader   *Mob
	Inactive bool
}

type SprayPayload struct {
	Spray *SprayType
}

type FramePayload struct {
	Signal int
}

type InputPayload struct {
	Action string
	Value  float64
}

func (MobPayload) isPayload()     {}
func (HitboxPayload) isPayload()  {}
func (HazardPayload) isPayload()  {}
func (MessagePayload) isPayload() {}
func (LeaderPayload) isPayload()  {}
func (SprayPayload) isPayload()   {}
func (FramePayload) isPayload()   {}
func (InputPayload) isPayload()   {}

// payloadMob returns the mob carried by p, if any.
func payloadMob(p Payload) *Mob {
	switch v := p.(type) {
	case MobPayload:
		return v.Mob
	case HitboxPayload:
		return v.Other
	case MessagePayload:
		return v.Sender
	case LeaderPayload:
		return v.Leader
	}
	return nil
}
