package mob

import (
	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"
)

type Category int

const (
	CategoryCustom Category = iota
	CategoryLeader
	CategoryFollower
)

var categoryNames = []string{"custom", "leader", "follower"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

func CategoryByName(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return CategoryCustom, false
}

type HitboxKind int

const (
	HitboxNormal HitboxKind = iota
	HitboxAttack
	HitboxDisabled
)

// Hitbox is a body part. Offset is relative to the mob's center with the
// mob facing angle 0.
type Hitbox struct {
	BodyPart string
	Kind     HitboxKind
	Offset   cp.Vector
	Z        float64
	Height   float64
	Radius   float64
	// Value is the attack power of attack hitboxes and the defense
	// multiplier of normal ones. A normal hitbox with value 0 is
	// invulnerable.
	Value   float64
	Hazards []string
}

type Animation struct {
	Name     string
	Duration float64
	Loop     bool
}

type Reach struct {
	Name    string
	Radius1 float64
	Angle1  float64
	Radius2 float64
	Angle2  float64
}

// SpawnInfo describes a mob the "spawn" action can create.
type SpawnInfo struct {
	Name              string
	TypeName          string
	Relative          bool
	Coords            cp.Vector
	Z                 float64
	Angle             float64
	Vars              map[string]string
	LinkObjectToSpawn bool
	LinkSpawnToObject bool
	Momentum          float64
}

// SprayType is an area-of-effect a leader can spray.
type SprayType struct {
	Name string
	// Effects are status type names applied to every affected mob.
	Effects    []string
	Group      bool
	Angle      float64
	AngleRange float64
	Distance   float64
	Particles  string
	// Charges is how many times a mob may spray it; 0 is unlimited.
	Charges int
}

type StatusType struct {
	Name            string
	SpeedMultiplier float64
	// Duration in seconds; 0 lasts until removed.
	Duration        float64
	HealthChange    float64
	RemoveOnLeave   bool
	FreezeAnimation bool
}

// Type is the shared template every mob of a kind is built from. States and
// actions are immutable once loading finishes.
type Type struct {
	Name     string
	Category Category

	Radius         float64
	Height         float64
	RectangularDim cp.Vector
	RotationSpeed  float64
	MoveSpeed      float64
	Weight         float64
	Walkable       bool
	Pushable       bool
	Pushes         bool
	MaxHealth      float64
	// TerritoryRadius fires "on_far_from_home" beyond it; 0 disables.
	TerritoryRadius float64

	Animations []Animation
	Hitboxes   []Hitbox
	Reaches    []Reach
	Spawns     []SpawnInfo
	Sounds     []string
	Particles  []string
	Sprays     []SprayType
	Vars       map[string]string
	Scripts    map[string]string

	States        []*State
	FirstStateIdx int
	DeathStateIdx int

	FirstStateName       string
	DeathStateName       string
	StatesIgnoringDeath  []string
	StatesIgnoringSpray  []string
	StatesIgnoringHazard []string

	InitActions []*ActionCall

	// Catalog holds the world-wide content names the script loader checks
	// against. It may be nil, in which case those checks are skipped.
	Catalog *Catalog

	compiled map[string]*tengo.Compiled
}

// NewType returns a type with no states and the defaults every mob type
// starts from.
func NewType(name string, category Category) *Type {
	return &Type{
		Name:          name,
		Category:      category,
		Radius:        16,
		Height:        32,
		RotationSpeed: 6.28,
		MoveSpeed:     100,
		Pushable:      true,
		Pushes:        true,
		Vars:          map[string]string{},
		Scripts:       map[string]string{},
		FirstStateIdx: InvalidIndex,
		DeathStateIdx: InvalidIndex,
	}
}

// TeamNone is the index of the "none" team in Teams.
const TeamNone = 0

// InvalidIndex marks a missing state, animation or similar entry.
const InvalidIndex = -1

func (t *Type) AnimIndex(name string) int {
	for i, a := range t.Animations {
		if a.Name == name {
			return i
		}
	}
	return InvalidIndex
}

func (t *Type) ReachIndex(name string) int {
	for i, r := range t.Reaches {
		if r.Name == name {
			return i
		}
	}
	return InvalidIndex
}

func (t *Type) SpawnIndex(name string) int {
	for i, s := range t.Spawns {
		if s.Name == name {
			return i
		}
	}
	return InvalidIndex
}

func (t *Type) BodyPartIndex(name string) int {
	for i, h := range t.Hitboxes {
		if h.BodyPart == name {
			return i
		}
	}
	return InvalidIndex
}

func (t *Type) SprayIndex(name string) int {
	for i, s := range t.Sprays {
		if s.Name == name {
			return i
		}
	}
	return InvalidIndex
}

func indexOf(list []string, name string) int {
	for i, s := range list {
		if s == name {
			return i
		}
	}
	return InvalidIndex
}

// StateIndex returns the index of the named state, or InvalidIndex.
func (t *Type) StateIndex(name string) int {
	for i, s := range t.States {
		if s.Name == name {
			return i
		}
	}
	return InvalidIndex
}
