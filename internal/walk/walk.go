// Package walk implements the Path Walker (spec §4.1): a recursive,
// ignore-aware enumeration of the files eligible for ingestion.
package walk

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// denyDirs is the fixed deny-list from spec §4.1. Matched against a
// directory's base name, case-sensitively, at any depth.
var denyDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".git":         true,
	"vendor":       true,
}

// Entry is one file the walker yields: (path, file-size, modification-time).
// Path is repository-relative and always forward-slash separated.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Warning is a non-fatal condition surfaced during a walk (e.g. a detected
// symlink cycle). Warnings never abort the walk.
type Warning struct {
	Path    string
	Message string
}

// Walker enumerates eligible files under Root.
type Walker struct {
	fs          afero.Fs
	root        string
	maxBytes    int64
	ignoreGlobs []glob.Glob
	gitignore   *ignore.GitIgnore
	warnings    []Warning
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxBytes sets the byte ceiling above which a file is skipped. Zero
// (the default) means no ceiling.
func WithMaxBytes(n int64) Option {
	return func(w *Walker) { w.maxBytes = n }
}

// WithIgnoreGlobs adds extra deny patterns supplied by configuration,
// independent of any on-disk ignore file. Patterns use gobwas/glob syntax
// with '/' as separator and are matched against the repository-relative
// path; a leading "**/" also matches entries at the root.
func WithIgnoreGlobs(patterns []string) Option {
	return func(w *Walker) {
		for _, p := range patterns {
			if g, err := glob.Compile(p, '/'); err == nil {
				w.ignoreGlobs = append(w.ignoreGlobs, g)
			}
		}
	}
}

// WithIgnoreFile loads a project-provided ignore file (gitignore syntax,
// e.g. ".gitignore" or ".rlmignore") relative to root.
func WithIgnoreFile(fs afero.Fs, root, ignoreFileRelPath string) Option {
	return func(w *Walker) {
		data, err := afero.ReadFile(fs, path.Join(root, ignoreFileRelPath))
		if err != nil {
			return
		}
		lines := strings.Split(string(data), "\n")
		w.gitignore = ignore.CompileIgnoreLines(lines...)
	}
}

// New creates a Walker rooted at root, reading through fs.
func New(fs afero.Fs, root string, opts ...Option) *Walker {
	w := &Walker{fs: fs, root: root}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Warnings returns the warnings accumulated by the most recent Walk call
// (symlink cycles, symlinks escaping the root, broken symlinks). An
// unreadable directory is not a warning: it ends the walk with an error.
func (w *Walker) Warnings() []Warning { return w.warnings }

// Walk enumerates eligible files. Ordering is unspecified (spec §4.1);
// callers that need determinism should sort the result, which this
// implementation does for test reproducibility — the spec explicitly
// allows that downstream sort.
//
// ctx cancellation stops the walk early and returns context.Canceled;
// entries discovered so far are still returned so an in-flight ingestion
// batch can commit partial progress (spec §5 cancellation semantics).
func (w *Walker) Walk(ctx context.Context) ([]Entry, error) {
	w.warnings = nil
	var entries []Entry
	visited := map[string]bool{} // real (symlink-resolved) dir paths, for cycle detection

	rootReal := w.realPath(w.root)

	var walkDir func(relDir, absDir string) error
	walkDir = func(relDir, absDir string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		key := w.realPath(absDir)
		if visited[key] {
			w.warnings = append(w.warnings, Warning{Path: relDir, Message: "symlink cycle detected"})
			return nil
		}
		visited[key] = true

		infos, err := afero.ReadDir(w.fs, absDir)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", absDir, err)
		}

		for _, info := range infos {
			name := info.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			childRel := path.Join(relDir, name)
			childRelSlash := path.ToSlash(childRel)
			childAbs := path.Join(absDir, name)
			childInfo := info
			isDir := info.IsDir()

			if info.Mode()&os.ModeSymlink != 0 {
				targetAbs := w.realPath(childAbs)
				if !withinRoot(targetAbs, rootReal) {
					w.warnings = append(w.warnings, Warning{Path: childRelSlash, Message: "symlink escapes root, skipped"})
					continue
				}
				targetInfo, err := w.fs.Stat(targetAbs)
				if err != nil {
					w.warnings = append(w.warnings, Warning{Path: childRelSlash, Message: "broken symlink, skipped"})
					continue
				}
				childAbs = targetAbs
				childInfo = targetInfo
				isDir = targetInfo.IsDir()
			}

			if isDir {
				if denyDirs[name] {
					continue
				}
				if w.shouldIgnore(childRelSlash + "/") {
					continue
				}
				if err := walkDir(childRel, childAbs); err != nil {
					return err
				}
				continue
			}

			if w.shouldIgnore(childRelSlash) {
				continue
			}
			if w.maxBytes > 0 && childInfo.Size() > w.maxBytes {
				continue
			}

			entries = append(entries, Entry{
				Path:    childRelSlash,
				Size:    childInfo.Size(),
				ModTime: childInfo.ModTime(),
			})
		}
		return nil
	}

	if err := walkDir("", w.root); err != nil {
		return entries, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (w *Walker) shouldIgnore(relPath string) bool {
	if w.gitignore != nil && w.gitignore.MatchesPath(relPath) {
		return true
	}
	for _, g := range w.ignoreGlobs {
		if g.Match(relPath) || g.Match("/"+relPath) {
			return true
		}
	}
	return false
}

// realPath resolves absPath to its canonical, symlink-free form when the
// underlying Fs supports reading links (only afero.OsFs does); it returns
// absPath unchanged for in-memory filesystems and on any resolution error,
// which is always safe since those have no symlinks to collide on.
func (w *Walker) realPath(absPath string) string {
	if _, ok := w.fs.(afero.LinkReader); !ok {
		return absPath
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath
	}
	return resolved
}

// withinRoot reports whether target is root itself or a descendant of it,
// per spec §4.1's "symlinks are followed only when they stay within the
// root" boundary.
func withinRoot(target, root string) bool {
	target = filepath.Clean(target)
	root = filepath.Clean(root)
	if target == root {
		return true
	}
	return strings.HasPrefix(target, root+string(filepath.Separator))
}
