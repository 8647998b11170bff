package langparser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// tomlParser chunks a document by top-level table ("[section]") and bare
// top-level "key = value" lines. BurntSushi/toml's public API decodes
// straight into Go values without exposing node positions, so chunking here
// works line-by-line rather than off a syntax tree; toml.Decode is used only
// to validate the document.
type tomlParser struct{}

func newTOMLParser() Parser { return &tomlParser{} }

func (p *tomlParser) Language() chunk.Language { return chunk.LangTOML }

func (p *tomlParser) Parse(src []byte) (Tree, error) {
	return Tree{Raw: src}, nil
}

func (p *tomlParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) {
	src, _ := t.Raw.([]byte)
	var out map[string]any
	if _, err := toml.Decode(string(src), &out); err != nil {
		return true, []chunk.ErrorSpan{{StartByte: 0, EndByte: len(src)}}
	}
	return false, nil
}

var (
	tomlTableHeader = regexp.MustCompile(`^\s*\[\[?([^\]]+)\]\]?\s*$`)
	tomlBareKey     = regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*=`)
)

func (p *tomlParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	uiContext := chunk.UIContext(filePath)
	offsets := computeLineOffsets(src)
	lines := strings.Split(string(src), "\n")

	type open struct {
		identifier string
		startLine  int
	}
	var current *open
	var result []chunk.Chunk

	closeAt := func(endLineExclusive int) {
		if current == nil {
			return
		}
		startByte := offsets[current.startLine-1]
		endByte := len(src)
		if endLineExclusive-1 < len(offsets) {
			endByte = offsets[endLineExclusive-1]
		}
		content := bytes.TrimRight(src[startByte:endByte], "\n")
		result = append(result, chunk.Chunk{
			Kind:       chunk.KindTopLevelKey,
			Identifier: current.identifier,
			StartLine:  current.startLine,
			EndLine:    endLineExclusive - 1,
			StartByte:  startByte,
			EndByte:    startByte + len(content),
			Content:    string(content),
			UIContext:  uiContext,
		})
		current = nil
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if m := tomlTableHeader.FindStringSubmatch(line); m != nil {
			closeAt(lineNo)
			current = &open{identifier: m[1], startLine: lineNo}
			continue
		}
		if current == nil {
			if m := tomlBareKey.FindStringSubmatch(line); m != nil {
				closeAt(lineNo)
				current = &open{identifier: m[1], startLine: lineNo}
				closeAt(lineNo + 1)
			}
		}
	}
	closeAt(len(lines) + 1)

	return result, nil
}
