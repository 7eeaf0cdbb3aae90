package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Physics holds the mob physics tuning values.
type Physics struct {
	GravityAdder        float64
	SectorStep          float64
	PushExtraAmount     float64
	PushThrottleTimeout time.Duration
	FreeMoveThreshold   float64
	HeadOnTolerance     float64
	HeldZOffset         float64
}

type Geometry struct {
	BlockmapBlockSize float64
}

type Logger struct {
	Level      string
	Dir        string
	File       string
	Rotation   bool
	Stdout     bool
	MaxSize    int
	MaxAge     int
	MaxBackups int
	Compress   bool
}

type Content struct {
	Dir   string
	Watch bool
	// Settle is how long the content dir must stay quiet before a batch
	// of changes is reported.
	Settle time.Duration
}

type Sandbox struct {
	TPS  int
	Area string
}

// Config is the full engine configuration.
type Config struct {
	Physics  Physics
	Geometry Geometry
	Logger   Logger
	Content  Content
	Sandbox  Sandbox
}

const envPrefix = "MOBENGINE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("physics.gravity_adder", -1300.0)
	v.SetDefault("physics.sector_step", 50.0)
	v.SetDefault("physics.push_extra_amount", 50.0)
	v.SetDefault("physics.push_throttle_timeout", time.Second)
	v.SetDefault("physics.free_move_threshold", 10.0)
	v.SetDefault("physics.head_on_tolerance", 0.05)
	v.SetDefault("physics.held_z_offset", 1.0)

	v.SetDefault("geometry.blockmap_block_size", 128.0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.dir", "")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.rotation", false)
	v.SetDefault("logger.stdout", true)
	v.SetDefault("logger.maxsize", 50)
	v.SetDefault("logger.maxage", 7)
	v.SetDefault("logger.maxbackups", 3)
	v.SetDefault("logger.compress", false)

	v.SetDefault("content.dir", "prefabs")
	v.SetDefault("content.watch", false)
	v.SetDefault("content.settle", 150*time.Millisecond)

	v.SetDefault("sandbox.tps", 60)
	v.SetDefault("sandbox.area", "area_playground.yaml")
}

// New returns a viper instance with every engine key defaulted and
// MOBENGINE_* environment overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration.
func Default() *Config {
	return FromViper(New())
}

// Load reads path (if not empty) on top of the defaults.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v), nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Physics: Physics{
			GravityAdder:        v.GetFloat64("physics.gravity_adder"),
			SectorStep:          v.GetFloat64("physics.sector_step"),
			PushExtraAmount:     v.GetFloat64("physics.push_extra_amount"),
			PushThrottleTimeout: v.GetDuration("physics.push_throttle_timeout"),
			FreeMoveThreshold:   v.GetFloat64("physics.free_move_threshold"),
			HeadOnTolerance:     v.GetFloat64("physics.head_on_tolerance"),
			HeldZOffset:         v.GetFloat64("physics.held_z_offset"),
		},
		Geometry: Geometry{
			BlockmapBlockSize: v.GetFloat64("geometry.blockmap_block_size"),
		},
		Logger: Logger{
			Level:      v.GetString("logger.level"),
			Dir:        v.GetString("logger.dir"),
			File:       v.GetString("logger.file"),
			Rotation:   v.GetBool("logger.rotation"),
			Stdout:     v.GetBool("logger.stdout"),
			MaxSize:    v.GetInt("logger.maxsize"),
			MaxAge:     v.GetInt("logger.maxage"),
			MaxBackups: v.GetInt("logger.maxbackups"),
			Compress:   v.GetBool("logger.compress"),
		},
		Content: Content{
			Dir:    v.GetString("content.dir"),
			Watch:  v.GetBool("content.watch"),
			Settle: v.GetDuration("content.settle"),
		},
		Sandbox: Sandbox{
			TPS:  v.GetInt("sandbox.tps"),
			Area: v.GetString("sandbox.area"),
		},
	}
}
