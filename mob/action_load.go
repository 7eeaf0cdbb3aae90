package mob

import (
	"fmt"

	"github.com/milk9111/mobengine/common"
)

var (
	arachnorbGoals = []string{"home", "forward", "cw_turn", "ccw_turn"}
	calculateOps   = []string{"+", "-", "*", "/", "%"}
	focusTargets   = []string{"link", "parent", "trigger"}
	ifOps          = []string{"=", "!=", "<", ">", "<=", ">="}
	moveTargets    = []string{"away_from_focused_mob", "focused_mob", "focused_mob_position", "home", "linked_mob_average"}
	stabilizeRefs  = []string{"highest", "lowest"}
	turnTargets    = []string{"focused_mob", "home"}
	animOptions    = []string{"normal", "no_restart", "random_time", "random_time_on_spawn"}
	holdableFlags  = []string{"pikmin", "enemies"}
	infoTypes      = []string{
		"body_part", "chomped_pikmin", "day_minutes", "field_pikmin",
		"frame_signal", "health", "latched_pikmin", "latched_pikmin_weight",
		"message", "message_sender", "mob_category", "mob_type",
		"other_body_part", "state", "weight", "x", "y", "z",
	}

	// Teams lists the team names set_team accepts, in team number order.
	Teams = []string{"none", "player_1", "player_2", "player_3", "player_4", "enemy_1", "enemy_2", "obstacle", "other"}
)

const (
	calcSum = iota
	calcSubtract
	calcMultiply
	calcDivide
	calcModulo
)

const (
	focusLink = iota
	focusParent
	focusTrigger
)

const (
	ifEqual = iota
	ifNot
	ifLess
	ifMore
	ifLessEq
	ifMoreEq
)

const (
	moveAwayFromFocus = iota
	moveFocus
	moveFocusPos
	moveHome
	moveLinkedAverage
)

const (
	stabilizeHighest = iota
	stabilizeLowest
)

const (
	turnFocus = iota
	turnHome
)

const (
	animNormal = iota
	animNoRestart
	animRandomTime
	animRandomTimeOnSpawn
)

const (
	holdablePikmin = 1 << iota
	holdableEnemies
)

const (
	infoBodyPart = iota
	infoChompedPikmin
	infoDayMinutes
	infoFieldPikmin
	infoFrameSignal
	infoHealth
	infoLatchedPikmin
	infoLatchedPikminWeight
	infoMessage
	infoMessageSender
	infoMobCategory
	infoMobType
	infoOtherBodyPart
	infoState
	infoWeight
	infoX
	infoY
	infoZ
)

func enumError(c *ActionCall, arg int) string {
	param := c.def.Params[min(arg, len(c.def.Params)-1)]
	return fmt.Sprintf("the parameter %q does not know what the value %q means", param.Name, c.Args[arg])
}

// loadEnum rewrites argument arg from a name in values to its index.
func loadEnum(arg int, values []string) func(c *ActionCall) string {
	return func(c *ActionCall) string {
		idx := indexOf(values, c.Args[arg])
		if idx == InvalidIndex {
			return enumError(c, arg)
		}
		c.Args[arg] = common.I2S(idx)
		return ""
	}
}

func loadHoldFocus(c *ActionCall) string {
	idx := c.mt.BodyPartIndex(c.Args[0])
	if idx == InvalidIndex {
		return fmt.Sprintf("unknown body part %q", c.Args[0])
	}
	c.Args[0] = common.I2S(idx)
	return ""
}

func loadSound(c *ActionCall) string {
	idx := indexOf(c.mt.Sounds, c.Args[0])
	if idx == InvalidIndex {
		return fmt.Sprintf("unknown sound info block %q", c.Args[0])
	}
	c.Args[0] = common.I2S(idx)
	return ""
}

func loadStatus(c *ActionCall) string {
	if c.mt.Catalog == nil {
		return ""
	}
	if _, ok := c.mt.Catalog.StatusTypes[c.Args[0]]; !ok {
		return fmt.Sprintf("unknown status effect %q", c.Args[0])
	}
	return ""
}

func loadRunScript(c *ActionCall) string {
	if _, ok := c.mt.Scripts[c.Args[0]]; !ok {
		return fmt.Sprintf("unknown script %q", c.Args[0])
	}
	return ""
}

func loadSetAnimation(c *ActionCall) string {
	idx := c.mt.AnimIndex(c.Args[0])
	if idx == InvalidIndex {
		return fmt.Sprintf("unknown animation %q", c.Args[0])
	}
	c.Args[0] = common.I2S(idx)
	for i := 1; i < len(c.Args); i++ {
		opt := indexOf(animOptions, c.Args[i])
		if opt == InvalidIndex {
			opt = animNormal
		}
		c.Args[i] = common.I2S(opt)
	}
	return ""
}

func loadReach(c *ActionCall) string {
	idx := c.mt.ReachIndex(c.Args[0])
	if idx == InvalidIndex {
		return fmt.Sprintf("unknown reach %q", c.Args[0])
	}
	c.Args[0] = common.I2S(idx)
	return ""
}

func loadSetHoldable(c *ActionCall) string {
	for i, a := range c.Args {
		idx := indexOf(holdableFlags, a)
		if idx == InvalidIndex {
			return enumError(c, i)
		}
		c.Args[i] = common.I2S(1 << idx)
	}
	return ""
}

func loadSpawn(c *ActionCall) string {
	idx := c.mt.SpawnIndex(c.Args[0])
	if idx == InvalidIndex {
		return fmt.Sprintf("unknown spawn info block %q", c.Args[0])
	}
	c.Args[0] = common.I2S(idx)
	return ""
}

func loadStartChomping(c *ActionCall) string {
	for i := 1; i < len(c.Args); i++ {
		idx := c.mt.BodyPartIndex(c.Args[i])
		if idx == InvalidIndex {
			return fmt.Sprintf("unknown body part %q", c.Args[i])
		}
		c.Args[i] = common.I2S(idx)
	}
	return ""
}

func loadStartParticles(c *ActionCall) string {
	if indexOf(c.mt.Particles, c.Args[0]) != InvalidIndex {
		return ""
	}
	if c.mt.Catalog != nil && indexOf(c.mt.Catalog.Particles, c.Args[0]) != InvalidIndex {
		return ""
	}
	return fmt.Sprintf("unknown particle generator %q", c.Args[0])
}
