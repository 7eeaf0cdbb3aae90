package prefabs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/milk9111/mobengine/logging"
)

const DefaultSettle = 150 * time.Millisecond

// Watcher collects changes to content files into batches. A batch is
// delivered once the watched dirs have been quiet for the settle period,
// so saving several files triggers one reload. Watch errors are logged.
type Watcher struct {
	fsw     *fsnotify.Watcher
	settle  time.Duration
	changes chan []string
	done    chan struct{}
	stop    sync.Once
}

// NewWatcher watches dirs. A settle of zero or less uses DefaultSettle.
func NewWatcher(settle time.Duration, dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	if settle <= 0 {
		settle = DefaultSettle
	}
	w := &Watcher{
		fsw:     fsw,
		settle:  settle,
		changes: make(chan []string, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// WatchDir watches the content dir and, when present, its scripts
// subdirectory.
func WatchDir(dir string, settle time.Duration) (*Watcher, error) {
	dirs := []string{dir}
	if scripts := filepath.Join(dir, "scripts"); isDir(scripts) {
		dirs = append(dirs, scripts)
	}
	return NewWatcher(settle, dirs...)
}

// Changes delivers sorted batches of changed file paths. It is closed
// after Close.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Poll returns the next batch without blocking. ok is false when no batch
// is ready or the watcher is closed.
func (w *Watcher) Poll() (files []string, ok bool) {
	select {
	case files, ok = <-w.changes:
		return files, ok
	default:
		return nil, false
	}
}

func (w *Watcher) Close() error {
	var err error
	w.stop.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.changes)

	pending := map[string]bool{}
	quiet := time.NewTimer(w.settle)
	quiet.Stop()
	var flush <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isContentChange(ev) {
				continue
			}
			pending[ev.Name] = true
			quiet.Reset(w.settle)
			flush = quiet.C

		case <-flush:
			flush = nil
			batch := make([]string, 0, len(pending))
			for name := range pending {
				batch = append(batch, name)
			}
			slices.Sort(batch)
			clear(pending)
			logging.Debug("content changed", zap.Strings("files", batch))
			select {
			case w.changes <- batch:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("content watch error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func isContentChange(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	return isSpecFile(ev.Name) || isScriptFile(ev.Name)
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// isScriptFile matches tengo scripts and text mob scripts.
func isScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tengo" || ext == ".txt"
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
