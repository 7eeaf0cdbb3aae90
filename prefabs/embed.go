package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

//go:embed scripts/*.tengo scripts/*.txt
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

var (
	dirMu sync.RWMutex
	dir   = "prefabs"
)

// SetDir changes the directory whose files take precedence over the
// embedded content. An empty dir disables the disk override.
func SetDir(d string) {
	dirMu.Lock()
	dir = d
	dirMu.Unlock()
}

// Dir returns the content directory on disk.
func Dir() string {
	dirMu.RLock()
	defer dirMu.RUnlock()
	return dir
}

// LoadScript reads a script file, from disk first and then from the
// embedded scripts.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, ok := readDisk(clean); ok {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, ok := readDisk(clean); ok {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	p, ok := diskPrefabPath(cleanPrefabPath(name))
	if !ok {
		return time.Time{}, false
	}
	info, err := os.Stat(p)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the names of every content file matching pattern, such as
// "mob_*.yaml", from the embedded content and the disk directory.
func List(pattern string) ([]string, error) {
	seen := map[string]bool{}
	embedded, err := fs.Glob(PrefabsFS, pattern)
	if err != nil {
		return nil, fmt.Errorf("prefabs: list %s: %w", pattern, err)
	}
	for _, name := range embedded {
		seen[name] = true
	}
	if d := Dir(); d != "" {
		onDisk, err := filepath.Glob(filepath.Join(d, pattern))
		if err != nil {
			return nil, fmt.Errorf("prefabs: list %s: %w", pattern, err)
		}
		for _, p := range onDisk {
			seen[filepath.Base(p)] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func readDisk(clean string) ([]byte, bool) {
	p, ok := diskPrefabPath(clean)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if d := filepath.ToSlash(Dir()); d != "" {
		s = strings.TrimPrefix(s, d+"/")
	}
	return strings.TrimPrefix(s, "prefabs/")
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := cleanPrefabPath(p)

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return path.Join("scripts", s)
}

func diskPrefabPath(clean string) (string, bool) {
	d := Dir()
	if d == "" || clean == "" {
		return "", false
	}
	return filepath.Join(d, filepath.FromSlash(clean)), true
}
