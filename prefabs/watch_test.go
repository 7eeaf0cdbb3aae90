package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesContentChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scripts"), 0o755))

	w, err := WatchDir(dir, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	script := filepath.Join(dir, "scripts", "crate.txt")
	spec := filepath.Join(dir, "mob_crate.yaml")
	require.NoError(t, os.WriteFile(script, []byte("script {\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(spec, []byte("name: crate\n"), 0o644))
	require.NoError(t, os.WriteFile(script, []byte("script {\n\tidle {\n\t}\n}\n"), 0o644))

	select {
	case batch := <-w.Changes():
		assert.ElementsMatch(t, []string{script, spec}, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch for the changed files")
	}

	files, ok := w.Poll()
	assert.False(t, ok, "one batch per burst, got %v", files)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(0, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettle, w.settle)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("changes channel was not closed")
	}
}

func TestContentFileFilters(t *testing.T) {
	tests := []struct {
		path   string
		spec   bool
		script bool
	}{
		{"mob_crate.yaml", true, false},
		{"AREA.YML", true, false},
		{"scripts/wander.tengo", false, true},
		{"scripts/crate.txt", false, true},
		{"sprite.png", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.spec, isSpecFile(tt.path))
			assert.Equal(t, tt.script, isScriptFile(tt.path))
		})
	}
}
