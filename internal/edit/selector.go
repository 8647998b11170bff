package edit

import (
	"fmt"
	"strings"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
)

// Selector identifies the chunk an edit targets (spec §4.7): either a symbol
// name plus optional kind, or an explicit line range. Exactly one of
// Identifier or StartLine should be set; if both are, Identifier wins.
type Selector struct {
	Identifier string
	Kind       chunk.Kind // optional narrowing; empty matches any kind

	StartLine int // 1-based, inclusive; used when Identifier == ""
	EndLine   int // 1-based, inclusive; defaults to StartLine if zero
}

func (s Selector) isExplicitRange() bool { return s.Identifier == "" }

// resolveSelector turns a Selector into the byte range it names. For an
// identifier selector, it looks up chunks of fileID by (identifier, kind)
// and requires exactly one match, per spec §4.7's determinism requirement.
// For a line-range selector, it maps the lines to byte offsets directly from
// src, with no store lookup at all.
func resolveSelector(st *store.Store, fileID int64, src []byte, sel Selector) (startByte, endByte int, err error) {
	if sel.isExplicitRange() {
		start, end := sel.StartLine, sel.EndLine
		if end == 0 {
			end = start
		}
		if start < 1 || end < start {
			return 0, 0, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("invalid line range %d-%d", start, end))
		}
		offsets := lineOffsets(src)
		if start > len(offsets) {
			return 0, 0, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("line %d is past end of file", start))
		}
		startByte = offsets[start-1]
		if end >= len(offsets) {
			endByte = len(src)
		} else {
			endByte = offsets[end]
		}
		return startByte, endByte, nil
	}

	chunks, err := st.ListChunksForFile(fileID)
	if err != nil {
		return 0, 0, err
	}

	var matches []chunk.Chunk
	for _, c := range chunks {
		if c.Identifier != sel.Identifier {
			continue
		}
		if sel.Kind != "" && c.Kind != sel.Kind {
			continue
		}
		matches = append(matches, c)
	}

	switch len(matches) {
	case 0:
		return 0, 0, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("selector %q not found", selectorLabel(sel)))
	case 1:
		return matches[0].StartByte, matches[0].EndByte, nil
	default:
		return 0, 0, rlmerr.New(rlmerr.KindAmbiguous, fmt.Sprintf("selector %q matches %d chunks", selectorLabel(sel), len(matches)))
	}
}

// resolveContainer resolves a selector to the one chunk it names (rather
// than just its byte range), for Insert's container lookup. Containers must
// be addressed by identifier; a line-range selector cannot name a container.
func resolveContainer(st *store.Store, fileID int64, sel Selector) (chunk.Chunk, error) {
	if sel.isExplicitRange() {
		return chunk.Chunk{}, rlmerr.New(rlmerr.KindNotFound, "insert requires an identifier selector for its container")
	}

	chunks, err := st.ListChunksForFile(fileID)
	if err != nil {
		return chunk.Chunk{}, err
	}

	var matches []chunk.Chunk
	for _, c := range chunks {
		if c.Identifier != sel.Identifier {
			continue
		}
		if sel.Kind != "" && c.Kind != sel.Kind {
			continue
		}
		matches = append(matches, c)
	}

	switch len(matches) {
	case 0:
		return chunk.Chunk{}, rlmerr.New(rlmerr.KindNotFound, fmt.Sprintf("container %q not found", selectorLabel(sel)))
	case 1:
		return matches[0], nil
	default:
		return chunk.Chunk{}, rlmerr.New(rlmerr.KindAmbiguous, fmt.Sprintf("container %q matches %d chunks", selectorLabel(sel), len(matches)))
	}
}

func selectorLabel(sel Selector) string {
	if sel.Kind != "" {
		return fmt.Sprintf("%s:%s", sel.Kind, sel.Identifier)
	}
	return sel.Identifier
}

// lineOffsets returns the byte offset of the start of each line in src;
// offsets[i] is the start of line i+1 (1-based).
func lineOffsets(src []byte) []int {
	offsets := []int{0}
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// leadingIndent returns the whitespace prefix of the first line of s.
func leadingIndent(s string) string {
	line := s
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		line = s[:idx]
	}
	var i int
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}
