package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/milk9111/mobengine/config"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseLevel(c.in)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSetRoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Debug("d", zap.Int("n", 1))
	Warnf("w %d", 2)
	Named("child").Info("c")

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "d", entries[0].Message)
	assert.Equal(t, "w 2", entries[1].Message)
	assert.Equal(t, "child", entries[2].LoggerName)
}

func TestNilSetIsNoop(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() {
		Info("nothing")
		Errorf("nothing %s", "here")
	})
}

func TestInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	err := Init("engine", config.Logger{Level: "debug", Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { Set(nil) })

	Info("hello", zap.String("k", "v"))
	_ = Sync()

	data, err := os.ReadFile(filepath.Join(dir, "engine.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestInitRejectsBadLevel(t *testing.T) {
	assert.Error(t, Init("engine", config.Logger{Level: "shout"}))
}
