package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var watchDenyDirs = map[string]bool{
	"node_modules": true, "target": true, "dist": true,
	"build": true, ".git": true, "vendor": true,
}

// Watch watches root for filesystem changes and calls onReindex after each
// debounce-quiet period, until ctx is cancelled. It never reports events
// individually; any change in the debounce window triggers one full Reindex
// call, the same incremental pass Index already performs by content hash.
func (p *Pipeline) Watch(ctx context.Context, debounce time.Duration, onReindex func(*Stats, error)) error {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursively(w, filepath.Join(p.root)); err != nil {
		return err
	}

	var mu sync.Mutex
	var timer *time.Timer
	fire := func() {
		stats, err := p.Reindex(ctx)
		onReindex(stats, err)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				_ = addDirsRecursively(w, event.Name)
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, fire)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func addDirsRecursively(w *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && p != dir {
			return filepath.SkipDir
		}
		if watchDenyDirs[name] {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
