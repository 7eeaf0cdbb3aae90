package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// MobTypeSpec is the YAML form of a mob type. Angles are in degrees.
type MobTypeSpec struct {
	Name            string            `yaml:"name"`
	Category        string            `yaml:"category"`
	Radius          float64           `yaml:"radius"`
	Height          float64           `yaml:"height"`
	RectangularDim  Vec               `yaml:"rectangular_dim"`
	RotationSpeed   float64           `yaml:"rotation_speed"`
	MoveSpeed       float64           `yaml:"move_speed"`
	Weight          float64           `yaml:"weight"`
	Walkable        bool              `yaml:"walkable"`
	Pushable        *bool             `yaml:"pushable"`
	Pushes          *bool             `yaml:"pushes"`
	MaxHealth       float64           `yaml:"max_health"`
	TerritoryRadius float64           `yaml:"territory_radius"`
	Color           *YAMLColor        `yaml:"color"`
	Animations      []AnimationSpec   `yaml:"animations"`
	Hitboxes        []HitboxSpec      `yaml:"hitboxes"`
	Reaches         []ReachSpec       `yaml:"reaches"`
	Spawns          []SpawnSpec       `yaml:"spawns"`
	Sounds          []string          `yaml:"sounds"`
	Particles       []string          `yaml:"particles"`
	Sprays          []SpraySpec       `yaml:"sprays"`
	Statuses        []StatusSpec      `yaml:"statuses"`
	Vars            map[string]string `yaml:"vars"`

	// Script is either the script tree written inline or the name of a
	// text script file under scripts/.
	Script yaml.Node `yaml:"script"`
	// Scripts maps run_script names to tengo files under scripts/.
	Scripts map[string]string `yaml:"scripts"`

	// File is the file the spec was read from.
	File string `yaml:"-"`
}

func LoadMobTypeSpec(filename string) (MobTypeSpec, error) {
	spec, err := LoadSpec[MobTypeSpec](filename)
	if err != nil {
		return spec, err
	}
	spec.File = cleanPrefabPath(filename)
	return spec, nil
}

type AnimationSpec struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
	Loop     bool    `yaml:"loop"`
}

type HitboxSpec struct {
	BodyPart string   `yaml:"body_part"`
	Kind     string   `yaml:"kind"`
	Offset   Vec      `yaml:"offset"`
	Z        float64  `yaml:"z"`
	Height   float64  `yaml:"height"`
	Radius   float64  `yaml:"radius"`
	Value    float64  `yaml:"value"`
	Hazards  []string `yaml:"hazards"`
}

type ReachSpec struct {
	Name    string  `yaml:"name"`
	Radius1 float64 `yaml:"radius_1"`
	Angle1  float64 `yaml:"angle_1"`
	Radius2 float64 `yaml:"radius_2"`
	Angle2  float64 `yaml:"angle_2"`
}

type SpawnSpec struct {
	Name              string            `yaml:"name"`
	Type              string            `yaml:"type"`
	Relative          bool              `yaml:"relative"`
	Coords            Vec               `yaml:"coords"`
	Z                 float64           `yaml:"z"`
	Angle             float64           `yaml:"angle"`
	Vars              map[string]string `yaml:"vars"`
	LinkObjectToSpawn bool              `yaml:"link_object_to_spawn"`
	LinkSpawnToObject bool              `yaml:"link_spawn_to_object"`
	Momentum          float64           `yaml:"momentum"`
}

type SpraySpec struct {
	Name       string   `yaml:"name"`
	Effects    []string `yaml:"effects"`
	Group      bool     `yaml:"group"`
	Angle      float64  `yaml:"angle"`
	AngleRange float64  `yaml:"angle_range"`
	Distance   float64  `yaml:"distance"`
	Particles  string   `yaml:"particles"`
	Charges    int      `yaml:"charges"`
}

type StatusSpec struct {
	Name            string  `yaml:"name"`
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	Duration        float64 `yaml:"duration"`
	HealthChange    float64 `yaml:"health_change"`
	RemoveOnLeave   bool    `yaml:"remove_on_leave"`
	FreezeAnimation bool    `yaml:"freeze_animation"`
}

// AreaSpec is the YAML form of an area: its geometry, the statuses and
// hazards its sectors use and the mobs placed in it.
type AreaSpec struct {
	Name     string          `yaml:"name"`
	Statuses []StatusSpec    `yaml:"statuses"`
	Hazards  []HazardSpec    `yaml:"hazards"`
	Sectors  []SectorSpec    `yaml:"sectors"`
	Mobs     []PlacementSpec `yaml:"mobs"`
}

func LoadAreaSpec(filename string) (AreaSpec, error) {
	return LoadSpec[AreaSpec](filename)
}

type HazardSpec struct {
	Name    string   `yaml:"name"`
	Effects []string `yaml:"effects"`
	Liquid  bool     `yaml:"liquid"`
}

type SectorSpec struct {
	Z             float64    `yaml:"z"`
	Type          string     `yaml:"type"`
	BottomlessPit bool       `yaml:"bottomless_pit"`
	Hazards       []string   `yaml:"hazards"`
	HazardFloor   bool       `yaml:"hazard_floor"`
	Scroll        Vec        `yaml:"scroll"`
	Vertices      []Vec      `yaml:"vertices"`
	Color         *YAMLColor `yaml:"color"`
}

type PlacementSpec struct {
	Type  string            `yaml:"type"`
	Pos   Vec               `yaml:"pos"`
	Z     float64           `yaml:"z"`
	Angle float64           `yaml:"angle"`
	Vars  map[string]string `yaml:"vars"`
	// Leader marks the leader the player starts controlling.
	Leader bool `yaml:"leader"`
}

// Vec is a point written as a two element list, "[x, y]".
type Vec struct {
	X, Y float64
}

func (v *Vec) UnmarshalYAML(value *yaml.Node) error {
	var xy []float64
	if err := value.Decode(&xy); err != nil {
		return fmt.Errorf("line %d: point must be [x, y]: %w", value.Line, err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point must be [x, y], got %d values", value.Line, len(xy))
	}
	v.X, v.Y = xy[0], xy[1]
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
