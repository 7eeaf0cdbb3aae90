package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, -1300.0, c.Physics.GravityAdder)
	assert.Equal(t, 50.0, c.Physics.SectorStep)
	assert.Equal(t, 50.0, c.Physics.PushExtraAmount)
	assert.Equal(t, time.Second, c.Physics.PushThrottleTimeout)
	assert.Equal(t, 10.0, c.Physics.FreeMoveThreshold)
	assert.Equal(t, 0.05, c.Physics.HeadOnTolerance)
	assert.Equal(t, 128.0, c.Geometry.BlockmapBlockSize)
	assert.Equal(t, "info", c.Logger.Level)
	assert.Equal(t, 150*time.Millisecond, c.Content.Settle)
}

func TestLoad(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "override_physics",
			body: "physics:\n  sector_step: 30\n  push_throttle_timeout: 500ms\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 30.0, c.Physics.SectorStep)
				assert.Equal(t, 500*time.Millisecond, c.Physics.PushThrottleTimeout)
				assert.Equal(t, -1300.0, c.Physics.GravityAdder)
			},
		},
		{
			name: "override_logger",
			body: "logger:\n  level: debug\n  stdout: false\n",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "debug", c.Logger.Level)
				assert.False(t, c.Logger.Stdout)
			},
		},
		{
			name:    "broken_yaml",
			body:    "physics: [\n",
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "engine.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.body), 0o644))

			cfg, err := Load(path)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			c.check(t, cfg)
		})
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Physics, cfg.Physics)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MOBENGINE_PHYSICS_GRAVITY_ADDER", "-2600")
	assert.Equal(t, -2600.0, Default().Physics.GravityAdder)
}
