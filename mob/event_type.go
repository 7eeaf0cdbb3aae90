package mob

// EventType identifies a signal a state may handle.
type EventType int

const (
	EvUnknown EventType = iota
	EvEnter
	EvLeave
	EvTick
	EvReady
	EvAnimationEnd
	EvDamage
	EvFarFromHome
	EvFinishedReceivingDelivery
	EvFocusOffReach
	EvFrameSignal
	EvHeld
	EvHitboxTouchEat
	EvHitboxTouchAN
	EvHitboxTouchNN
	EvInputReceived
	EvItch
	EvLanded
	EvLeftHazard
	EvObjectInReach
	EvOpponentInReach
	EvThrownPikminLanded
	EvReceiveMessage
	EvReleased
	EvReachedDestination
	EvStartedReceivingDelivery
	EvSwallowed
	EvTimer
	EvTouchedHazard
	EvTouchedObject
	EvTouchedOpponent
	EvTouchedWall
	EvWeightAdded
	EvWeightRemoved

	// Engine-internal events. Scripts cannot name these, but builtin
	// behaviors and injected handlers use them.
	EvDeath
	EvHitboxTouchNA
	EvTouchedSpray
	EvBottomlessPit
	EvRiderAdded
	EvRiderRemoved
	EvThrown
	EvTouchedLeader
	EvActivated
	EvDeactivated
	EvSpray
	EvStartedDelivery
	EvFinishedDelivery
	EvReleaseOrder

	EventCount
)

var eventNames = map[string]EventType{
	"on_enter":                     EvEnter,
	"on_leave":                     EvLeave,
	"on_tick":                      EvTick,
	"on_ready":                     EvReady,
	"on_animation_end":             EvAnimationEnd,
	"on_damage":                    EvDamage,
	"on_far_from_home":             EvFarFromHome,
	"on_finish_receiving_delivery": EvFinishedReceivingDelivery,
	"on_focus_off_reach":           EvFocusOffReach,
	"on_frame_signal":              EvFrameSignal,
	"on_held":                      EvHeld,
	"on_hitbox_touch_eat":          EvHitboxTouchEat,
	"on_hitbox_touch_a_n":          EvHitboxTouchAN,
	"on_hitbox_touch_n_n":          EvHitboxTouchNN,
	"on_input_received":            EvInputReceived,
	"on_itch":                      EvItch,
	"on_land":                      EvLanded,
	"on_leave_hazard":              EvLeftHazard,
	"on_object_in_reach":           EvObjectInReach,
	"on_opponent_in_reach":         EvOpponentInReach,
	"on_pikmin_land":               EvThrownPikminLanded,
	"on_receive_message":           EvReceiveMessage,
	"on_released":                  EvReleased,
	"on_reach_destination":         EvReachedDestination,
	"on_start_receiving_delivery":  EvStartedReceivingDelivery,
	"on_swallowed":                 EvSwallowed,
	"on_timer":                     EvTimer,
	"on_touch_hazard":              EvTouchedHazard,
	"on_touch_object":              EvTouchedObject,
	"on_touch_opponent":            EvTouchedOpponent,
	"on_touch_wall":                EvTouchedWall,
	"on_weight_added":              EvWeightAdded,
	"on_weight_removed":            EvWeightRemoved,
}

var internalEventNames = map[EventType]string{
	EvDeath:            "death",
	EvHitboxTouchNA:    "hitbox_touch_n_a",
	EvTouchedSpray:     "touched_spray",
	EvBottomlessPit:    "bottomless_pit",
	EvRiderAdded:       "rider_added",
	EvRiderRemoved:     "rider_removed",
	EvThrown:           "thrown",
	EvTouchedLeader:    "touched_leader",
	EvActivated:        "activated",
	EvDeactivated:      "deactivated",
	EvSpray:            "spray",
	EvStartedDelivery:  "started_delivery",
	EvFinishedDelivery: "finished_delivery",
	EvReleaseOrder:     "release_order",
}

var eventScriptNames = func() map[EventType]string {
	out := make(map[EventType]string, len(eventNames))
	for name, t := range eventNames {
		out[t] = name
	}
	return out
}()

// EventTypeByName resolves a script event name such as "on_enter".
func EventTypeByName(name string) (EventType, bool) {
	t, ok := eventNames[name]
	return t, ok
}

func (t EventType) String() string {
	if n, ok := eventScriptNames[t]; ok {
		return n
	}
	if n, ok := internalEventNames[t]; ok {
		return n
	}
	return "unknown"
}
