package cache

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/hirepulse/tadash/internal/tracker"
)

// watchSet is the set of local paths and glob patterns a watcher reacts to.
type watchSet struct {
	files    map[string]bool
	patterns []string
}

func (ws watchSet) matches(name string) bool {
	name = filepath.Clean(name)
	if ws.files[name] {
		return true
	}
	for _, p := range ws.patterns {
		if ok, _ := doublestar.PathMatch(p, name); ok {
			return true
		}
	}
	return false
}

// Watch invalidates the cache whenever one of the local sources is written,
// created, renamed or removed. Plain paths are watched through their parent
// directory so that editors which replace files atomically are still
// noticed. Glob patterns are watched from their static base directory down,
// so new exports matching the pattern also count. Watch returns once the
// watcher is running; it stops when ctx is done.
func (c *Cache) Watch(ctx context.Context, sources []string) error {
	ws := watchSet{files: make(map[string]bool)}
	dirs := make(map[string]bool)
	var trees []string
	for _, s := range sources {
		if !tracker.IsLocal(s) {
			continue
		}
		abs, err := filepath.Abs(s)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", s, err)
		}
		if !tracker.IsGlob(s) {
			ws.files[abs] = true
			dirs[filepath.Dir(abs)] = true
			continue
		}
		if !doublestar.ValidatePathPattern(abs) {
			return fmt.Errorf("invalid pattern %q", s)
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
		ws.patterns = append(ws.patterns, abs)
		trees = append(trees, filepath.FromSlash(base))
	}
	if len(ws.files) == 0 && len(ws.patterns) == 0 {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	for _, root := range trees {
		if err := addTree(w, root); err != nil {
			w.Close()
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// fsnotify is not recursive; follow directories created
				// under a glob base.
				if ev.Has(fsnotify.Create) && len(trees) > 0 && underAny(ev.Name, trees) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						if err := addTree(w, ev.Name); err != nil {
							log.Printf("cache: watching %s: %v", ev.Name, err)
						}
						continue
					}
				}
				if !ws.matches(ev.Name) {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
					log.Printf("cache: %s changed, invalidating", ev.Name)
					c.Invalidate()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("cache: watcher error: %v", err)
			}
		}
	}()
	return nil
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func underAny(path string, roots []string) bool {
	for _, r := range roots {
		rel, err := filepath.Rel(r, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
