package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/mobengine/config"
	"github.com/milk9111/mobengine/mob"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr []string
	}{
		{
			name: "embedded content is clean",
		},
		{
			name: "broken script",
			files: map[string]string{
				"mob_broken.yaml": "name: broken\nscript:\n  script:\n    a:\n      on_enter:\n        - if $x = 1\n        - stop\n",
			},
			wantErr: []string{`1 "if" block(s) without an "end_if"`},
		},
		{
			name: "unknown placement type",
			files: map[string]string{
				"area_extra.yaml": "name: extra\nsectors:\n  - vertices: [[0, 0], [10, 0], [10, 10]]\nmobs:\n  - {type: ghost, pos: [1, 1]}\n",
			},
			wantErr: []string{`area extra: placement 0: unknown mob type "ghost"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, src := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
			}
			cfg := config.Default()
			cfg.Content.Dir = dir

			errs := check(cfg)
			if len(tt.wantErr) == 0 {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, len(tt.wantErr))
			for i, want := range tt.wantErr {
				assert.Contains(t, errs[i].Error(), want)
			}
		})
	}
}

func TestCheckReportsLoadErrorLocation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mob_broken.yaml"),
		[]byte("name: broken\nscript:\n  script:\n    a:\n      on_enter:\n        - fly_away\n"), 0o644))
	cfg := config.Default()
	cfg.Content.Dir = dir

	errs := check(cfg)
	require.Len(t, errs, 1)
	var le *mob.LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, "mob_broken.yaml", le.File)
	assert.Equal(t, 6, le.Line)
}
