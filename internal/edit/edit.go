// Package edit implements the Surgical Editor (spec §4.7): AST-located
// byte-range replace/insert with syntax-guard validation, preview-or-write
// semantics, and atomic on-disk writes.
package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/langparser"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
)

// Position names where inserted code lands relative to a container's body
// (spec §4.7).
type Position int

const (
	PositionBodyStart Position = iota
	PositionBodyEnd
	PositionBeforeLine
	PositionAfterLine
)

// InsertAt pairs a Position with the line argument before_line/after_line
// need; Line is ignored for the body positions.
type InsertAt struct {
	Position Position
	Line     int // 1-based; required for PositionBeforeLine/PositionAfterLine
}

// Result is what an edit operation returns: a unified diff of the change
// (always populated, preview or not) and whether it was actually written.
type Result struct {
	Path    string
	Diff    string
	Written bool
}

// ReindexFunc is called with the repo-relative path of a file the Editor
// just wrote, so the caller can enqueue the reindex spec §4.7 requires.
// It runs after the write completes, while the file's advisory lock is still
// held.
type ReindexFunc func(path string) error

// Editor is the Surgical Editor. One Editor instance is expected to own the
// whole repository's advisory-lock table; concurrent edits to the same path
// serialize, edits to different paths proceed in parallel (spec §5).
type Editor struct {
	fs       afero.Fs
	root     string
	registry *langparser.Registry
	store    *store.Store
	reindex  ReindexFunc

	locksMu sync.Mutex
	locks   map[string]*flock.Flock
}

func New(fs afero.Fs, root string, registry *langparser.Registry, st *store.Store, reindex ReindexFunc) *Editor {
	return &Editor{
		fs:       fs,
		root:     root,
		registry: registry,
		store:    st,
		reindex:  reindex,
		locks:    map[string]*flock.Flock{},
	}
}

func (e *Editor) lockFor(absPath string) *flock.Flock {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	l, ok := e.locks[absPath]
	if !ok {
		l = flock.New(absPath + ".rlm-lock")
		e.locks[absPath] = l
	}
	return l
}

// Replace implements spec §4.7's replace operation.
func (e *Editor) Replace(path string, sel Selector, newCode string, preview bool) (*Result, error) {
	abs := filepath.Join(e.root, path)
	lock := e.lockFor(abs)
	if err := lock.Lock(); err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindIO, "acquire file lock", err)
	}
	defer lock.Unlock()

	return e.replaceLocked(path, abs, sel, newCode, preview)
}

func (e *Editor) replaceLocked(path, abs string, sel Selector, newCode string, preview bool) (*Result, error) {
	src, f, parser, err := e.loadForEdit(path)
	if err != nil {
		return nil, err
	}

	startByte, endByte, err := resolveSelector(e.store, f.ID, src, sel)
	if err != nil {
		return nil, err
	}

	newSrc := splice(src, startByte, endByte, newCode)
	return e.applyOrPreview(path, abs, parser, src, newSrc, preview)
}

// Insert implements spec §4.7's insert operation.
func (e *Editor) Insert(path string, containerSel Selector, at InsertAt, code string, preview bool) (*Result, error) {
	abs := filepath.Join(e.root, path)
	lock := e.lockFor(abs)
	if err := lock.Lock(); err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindIO, "acquire file lock", err)
	}
	defer lock.Unlock()

	src, f, parser, err := e.loadForEdit(path)
	if err != nil {
		return nil, err
	}

	container, err := resolveContainer(e.store, f.ID, containerSel)
	if err != nil {
		return nil, err
	}

	var insertAt int
	var indent string
	switch at.Position {
	case PositionBodyStart:
		bs, _, ind := bodyBounds(container.Content)
		insertAt = container.StartByte + bs
		indent = ind
	case PositionBodyEnd:
		_, be, ind := bodyBounds(container.Content)
		insertAt = container.StartByte + be
		indent = ind
	case PositionBeforeLine, PositionAfterLine:
		offsets := lineOffsets(src)
		line := at.Line
		if line < 1 || line > len(offsets) {
			return nil, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("line %d out of range", line))
		}
		if at.Position == PositionBeforeLine {
			insertAt = offsets[line-1]
		} else if line >= len(offsets) {
			insertAt = len(src)
		} else {
			insertAt = offsets[line]
		}
	default:
		return nil, rlmerr.New(rlmerr.KindUnsupportedForEdit, "unknown insert position")
	}

	indented := applyIndent(code, indent)
	newSrc := splice(src, insertAt, insertAt, indented)
	return e.applyOrPreview(path, abs, parser, src, newSrc, preview)
}

// loadForEdit reads the file, looks up its indexed record and parser, and
// rejects languages that cannot be surgically edited: unknown extensions
// (plaintext fallback) have no AST to syntax-guard against.
func (e *Editor) loadForEdit(path string) ([]byte, chunk.File, langparser.Parser, error) {
	abs := filepath.Join(e.root, path)
	src, err := afero.ReadFile(e.fs, abs)
	if err != nil {
		return nil, chunk.File{}, nil, rlmerr.Wrap(rlmerr.KindIO, "read file", err)
	}

	ext := filepath.Ext(path)
	parser := e.registry.Lookup(ext)
	if !parser.Language().IsASTAware() {
		return nil, chunk.File{}, nil, rlmerr.New(rlmerr.KindUnsupportedForEdit,
			fmt.Sprintf("language %q has no syntax guard; plain-text files cannot be surgically edited", parser.Language()))
	}

	f, err := e.store.GetFileByPath(path)
	if err != nil {
		return nil, chunk.File{}, nil, err
	}

	return src, f, parser, nil
}

// applyOrPreview runs the Syntax Guard over newSrc, then either returns a
// diff-only preview or writes the file atomically and enqueues a reindex.
func (e *Editor) applyOrPreview(path, abs string, parser langparser.Parser, oldSrc, newSrc []byte, preview bool) (*Result, error) {
	tree, err := parser.Parse(newSrc)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindParseRejected, "parse edited content", err)
	}
	defer tree.Close()

	if hasErrors, spans := parser.HasErrors(tree); hasErrors {
		return nil, rlmerr.ParseRejected("edited content fails syntax guard", toRlmSpans(spans, newSrc))
	}

	diffText, err := unifiedDiff(path, oldSrc, newSrc)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindIO, "build diff", err)
	}

	if preview {
		return &Result{Path: path, Diff: diffText, Written: false}, nil
	}

	if err := e.writeAtomic(abs, newSrc); err != nil {
		return nil, err
	}

	if e.reindex != nil {
		if err := e.reindex(path); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindIO, "enqueue reindex", err)
		}
	}

	return &Result{Path: path, Diff: diffText, Written: true}, nil
}

// writeAtomic writes data to a sibling temp file, fsyncs it, renames it over
// abs, then fsyncs the containing directory — the durability sequence spec
// §4.7 requires.
func (e *Editor) writeAtomic(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	tmpPath := filepath.Join(dir, ".rlm-edit-"+uuid.New().String())
	tmp, err := e.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindIO, "create temp file", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		e.fs.Remove(tmpPath)
		return rlmerr.Wrap(rlmerr.KindIO, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		e.fs.Remove(tmpPath)
		return rlmerr.Wrap(rlmerr.KindIO, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		e.fs.Remove(tmpPath)
		return rlmerr.Wrap(rlmerr.KindIO, "close temp file", err)
	}

	if err := e.fs.Rename(tmpPath, abs); err != nil {
		e.fs.Remove(tmpPath)
		return rlmerr.Wrap(rlmerr.KindIO, "rename into place", err)
	}

	// Directory fsync only applies to real filesystems; afero's in-memory
	// backends have no directory to sync and os.Open simply errors, which we
	// treat as a no-op rather than a write failure.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}

	return nil
}

func splice(src []byte, start, end int, replacement string) []byte {
	out := make([]byte, 0, len(src)-(end-start)+len(replacement))
	out = append(out, src[:start]...)
	out = append(out, replacement...)
	out = append(out, src[end:]...)
	return out
}

func applyIndent(code, indent string) string {
	if indent == "" {
		return code
	}
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

func unifiedDiff(path string, a, b []byte) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func toRlmSpans(spans []chunk.ErrorSpan, src []byte) []rlmerr.ErrorSpan {
	lineStarts := lineOffsets(src)
	out := make([]rlmerr.ErrorSpan, 0, len(spans))
	for _, s := range spans {
		if len(out) >= 5 {
			break // "the first few error byte ranges", per spec §4.7
		}
		startLine, startCol := lineCol(lineStarts, s.StartByte)
		endLine, endCol := lineCol(lineStarts, s.EndByte)
		out = append(out, rlmerr.ErrorSpan{
			StartByte: s.StartByte, EndByte: s.EndByte,
			StartLine: startLine, StartCol: startCol,
			EndLine: endLine, EndCol: endCol,
		})
	}
	return out
}

func lineCol(lineStarts []int, byteOffset int) (line, col int) {
	line = 1
	for i, start := range lineStarts {
		if start > byteOffset {
			break
		}
		line = i + 1
	}
	col = byteOffset - lineStarts[line-1] + 1
	return line, col
}
