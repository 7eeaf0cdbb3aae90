package prefabs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/mobengine/common"
	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/datanode"
	"github.com/milk9111/mobengine/geometry"
	"github.com/milk9111/mobengine/logging"
	"github.com/milk9111/mobengine/mob"
)

const (
	mobTypePattern = "mob_*.yaml"
	areaPattern    = "area_*.yaml"
)

// BuildMobType turns spec into a mob type registered in w. Problems with
// the type's script do not stop the build: they are returned alongside
// the type, which is usable but may be missing events.
func BuildMobType(spec MobTypeSpec, w *mob.World) (*mob.Type, []error) {
	if spec.Name == "" {
		return nil, []error{fmt.Errorf("prefabs: %s: mob type has no name", spec.File)}
	}

	var errs []error
	category, ok := mob.CategoryByName(spec.Category)
	if spec.Category != "" && !ok {
		errs = append(errs, fmt.Errorf("prefabs: %s: unknown category %q", spec.File, spec.Category))
	}

	var mt *mob.Type
	switch category {
	case mob.CategoryLeader:
		mt = mob.NewLeaderType(spec.Name)
	case mob.CategoryFollower:
		mt = mob.NewFollowerType(spec.Name)
	default:
		mt = mob.NewType(spec.Name, mob.CategoryCustom)
	}
	applyAttributes(mt, spec)

	for _, st := range spec.Statuses {
		w.Catalog.StatusTypes[st.Name] = buildStatus(st)
	}

	for name, file := range spec.Scripts {
		src, err := LoadScript(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("prefabs: load script %s: %w", file, err))
			continue
		}
		mt.Scripts[name] = string(src)
	}

	w.AddType(mt)

	root, err := scriptRoot(spec)
	if err != nil {
		errs = append(errs, err)
	} else if !root.IsEmpty() {
		errs = append(errs, mob.LoadTypeScript(mt, root)...)
	}
	if len(mt.States) == 0 {
		errs = append(errs, fmt.Errorf("prefabs: %s: mob type %q has no states", spec.File, spec.Name))
	}
	return mt, errs
}

func applyAttributes(mt *mob.Type, spec MobTypeSpec) {
	if spec.Radius > 0 {
		mt.Radius = spec.Radius
	}
	if spec.Height > 0 {
		mt.Height = spec.Height
	}
	mt.RectangularDim = cp.Vector{X: spec.RectangularDim.X, Y: spec.RectangularDim.Y}
	if spec.RotationSpeed > 0 {
		mt.RotationSpeed = common.DegToRad(spec.RotationSpeed)
	}
	if spec.MoveSpeed > 0 {
		mt.MoveSpeed = spec.MoveSpeed
	}
	mt.Weight = spec.Weight
	mt.Walkable = spec.Walkable
	if spec.Pushable != nil {
		mt.Pushable = *spec.Pushable
	}
	if spec.Pushes != nil {
		mt.Pushes = *spec.Pushes
	}
	mt.MaxHealth = spec.MaxHealth
	mt.TerritoryRadius = spec.TerritoryRadius
	mt.Sounds = spec.Sounds
	mt.Particles = spec.Particles
	for k, v := range spec.Vars {
		mt.Vars[k] = v
	}

	for _, a := range spec.Animations {
		mt.Animations = append(mt.Animations, mob.Animation{Name: a.Name, Duration: a.Duration, Loop: a.Loop})
	}
	for _, h := range spec.Hitboxes {
		mt.Hitboxes = append(mt.Hitboxes, mob.Hitbox{
			BodyPart: h.BodyPart,
			Kind:     hitboxKind(h.Kind),
			Offset:   cp.Vector{X: h.Offset.X, Y: h.Offset.Y},
			Z:        h.Z,
			Height:   h.Height,
			Radius:   h.Radius,
			Value:    h.Value,
			Hazards:  h.Hazards,
		})
	}
	for _, r := range spec.Reaches {
		mt.Reaches = append(mt.Reaches, mob.Reach{
			Name:    r.Name,
			Radius1: r.Radius1,
			Angle1:  common.DegToRad(r.Angle1),
			Radius2: r.Radius2,
			Angle2:  common.DegToRad(r.Angle2),
		})
	}
	for _, s := range spec.Spawns {
		mt.Spawns = append(mt.Spawns, mob.SpawnInfo{
			Name:              s.Name,
			TypeName:          s.Type,
			Relative:          s.Relative,
			Coords:            cp.Vector{X: s.Coords.X, Y: s.Coords.Y},
			Z:                 s.Z,
			Angle:             common.DegToRad(s.Angle),
			Vars:              s.Vars,
			LinkObjectToSpawn: s.LinkObjectToSpawn,
			LinkSpawnToObject: s.LinkSpawnToObject,
			Momentum:          s.Momentum,
		})
	}
	for _, s := range spec.Sprays {
		mt.Sprays = append(mt.Sprays, mob.SprayType{
			Name:       s.Name,
			Effects:    s.Effects,
			Group:      s.Group,
			Angle:      common.DegToRad(s.Angle),
			AngleRange: common.DegToRad(s.AngleRange),
			Distance:   s.Distance,
			Particles:  s.Particles,
			Charges:    s.Charges,
		})
	}
}

func hitboxKind(kind string) mob.HitboxKind {
	switch kind {
	case "attack":
		return mob.HitboxAttack
	case "disabled":
		return mob.HitboxDisabled
	default:
		return mob.HitboxNormal
	}
}

func buildStatus(s StatusSpec) *mob.StatusType {
	return &mob.StatusType{
		Name:            s.Name,
		SpeedMultiplier: s.SpeedMultiplier,
		Duration:        s.Duration,
		HealthChange:    s.HealthChange,
		RemoveOnLeave:   s.RemoveOnLeave,
		FreezeAnimation: s.FreezeAnimation,
	}
}

// scriptRoot returns the script tree of spec, reading the text script
// file when the spec names one.
func scriptRoot(spec MobTypeSpec) (*datanode.Node, error) {
	switch spec.Script.Kind {
	case 0:
		return datanode.New("", ""), nil
	case yaml.ScalarNode:
		file := cleanScriptPath(spec.Script.Value)
		data, err := LoadScript(spec.Script.Value)
		if err != nil {
			return nil, fmt.Errorf("prefabs: load script %s: %w", file, err)
		}
		root, err := datanode.ParseScript(string(data), file)
		if err != nil {
			return nil, fmt.Errorf("prefabs: parse script %s: %w", file, err)
		}
		return root, nil
	default:
		root, err := datanode.FromYAMLNode(&spec.Script, spec.File)
		if err != nil {
			return nil, fmt.Errorf("prefabs: parse script of %s: %w", spec.File, err)
		}
		return root, nil
	}
}

// BuildArea builds the area geometry of spec and registers its statuses
// and hazards in catalog.
func BuildArea(spec AreaSpec, catalog *mob.Catalog, blockSize float64) (*geometry.Area, error) {
	for _, st := range spec.Statuses {
		catalog.StatusTypes[st.Name] = buildStatus(st)
	}
	for _, h := range spec.Hazards {
		catalog.Hazards[h.Name] = &geometry.Hazard{Name: h.Name, Effects: h.Effects, AssociatedLiquid: h.Liquid}
	}

	var errs []error
	sectors := make([]*geometry.Sector, 0, len(spec.Sectors))
	for i, ss := range spec.Sectors {
		if len(ss.Vertices) < 3 {
			errs = append(errs, fmt.Errorf("sector %d: needs at least 3 vertices, has %d", i, len(ss.Vertices)))
			continue
		}
		poly := make([]cp.Vector, len(ss.Vertices))
		for j, v := range ss.Vertices {
			poly[j] = cp.Vector{X: v.X, Y: v.Y}
		}
		s := geometry.NewSector(poly, ss.Z)
		switch ss.Type {
		case "", "normal":
			s.Type = geometry.SectorNormal
		case "blocking":
			s.Type = geometry.SectorBlocking
		default:
			errs = append(errs, fmt.Errorf("sector %d: unknown type %q", i, ss.Type))
		}
		s.BottomlessPit = ss.BottomlessPit
		s.HazardFloor = ss.HazardFloor
		s.Scroll = cp.Vector{X: ss.Scroll.X, Y: ss.Scroll.Y}
		for _, name := range ss.Hazards {
			h, ok := catalog.Hazards[name]
			if !ok {
				errs = append(errs, fmt.Errorf("sector %d: unknown hazard %q", i, name))
				continue
			}
			s.Hazards = append(s.Hazards, h)
		}
		sectors = append(sectors, s)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("prefabs: area %s: %w", spec.Name, errors.Join(errs...))
	}
	if blockSize <= 0 {
		blockSize = geometry.DefaultBlockSize
	}
	return geometry.NewArea(sectors, blockSize), nil
}

// Populate spawns the mobs placed in spec. Placements of unknown types are
// skipped and reported.
func Populate(w *mob.World, spec AreaSpec) ([]*mob.Mob, error) {
	var errs []error
	var mobs []*mob.Mob
	for i, p := range spec.Mobs {
		t, ok := w.Types[p.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("placement %d: unknown mob type %q", i, p.Type))
			continue
		}
		m := w.Spawn(t, cp.Vector{X: p.Pos.X, Y: p.Pos.Y}, p.Z, common.DegToRad(p.Angle), p.Vars)
		if p.Leader {
			w.SetActiveLeader(m)
		}
		mobs = append(mobs, m)
	}
	if len(errs) > 0 {
		return mobs, fmt.Errorf("prefabs: populate %s: %w", spec.Name, errors.Join(errs...))
	}
	return mobs, nil
}

// LoadMobTypes builds every mob_*.yaml type into w and returns the specs
// by type name.
func LoadMobTypes(w *mob.World) (map[string]MobTypeSpec, []error) {
	files, err := List(mobTypePattern)
	if err != nil {
		return nil, []error{err}
	}

	specs := make(map[string]MobTypeSpec, len(files))
	var errs []error
	for _, file := range files {
		spec, err := LoadMobTypeSpec(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := specs[spec.Name]; dup {
			errs = append(errs, fmt.Errorf("prefabs: %s: mob type %q defined twice", file, spec.Name))
		}
		if _, terrs := BuildMobType(spec, w); len(terrs) > 0 {
			errs = append(errs, terrs...)
		}
		specs[spec.Name] = spec
	}
	return specs, errs
}

// AreaFiles lists the area_*.yaml files.
func AreaFiles() ([]string, error) {
	return List(areaPattern)
}

// Scene is a world loaded from content: an area, every mob type and the
// area's mobs.
type Scene struct {
	World *mob.World
	Area  AreaSpec
	Types map[string]MobTypeSpec
}

// LoadScene builds a world for areaFile. The returned errors are content
// problems that did not stop the load; a nil scene means the area itself
// could not be built.
func LoadScene(areaFile string, cfg *config.Config) (*Scene, []error) {
	spec, err := LoadAreaSpec(areaFile)
	if err != nil {
		return nil, []error{err}
	}

	w := mob.NewWorld(nil, cfg.Physics)
	area, err := BuildArea(spec, w.Catalog, cfg.Geometry.BlockmapBlockSize)
	if err != nil {
		return nil, []error{err}
	}
	w.Area = area

	types, errs := LoadMobTypes(w)
	if _, err := Populate(w, spec); err != nil {
		errs = append(errs, err)
	}

	logging.Info("scene loaded",
		zap.String("area", areaFile),
		zap.Int("sectors", len(area.Sectors)),
		zap.Int("types", len(types)),
		zap.Int("mobs", len(w.Mobs)),
		zap.Int("errors", len(errs)),
	)
	return &Scene{World: w, Area: spec, Types: types}, errs
}
