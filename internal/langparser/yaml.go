package langparser

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// yamlParser chunks a document by its top-level mapping keys. yaml.v3's
// *yaml.Node retains a Line (1-based) for every node, which is enough to
// carve byte ranges by re-deriving offsets from the source's line index.
type yamlParser struct{}

func newYAMLParser() Parser { return &yamlParser{} }

func (p *yamlParser) Language() chunk.Language { return chunk.LangYAML }

func (p *yamlParser) Parse(src []byte) (Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return Tree{}, err
	}
	return Tree{Raw: &doc}, nil
}

func (p *yamlParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) { return false, nil }

func (p *yamlParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	doc, ok := t.Raw.(*yaml.Node)
	if !ok || doc == nil || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}

	uiContext := chunk.UIContext(filePath)
	lineOffsets := computeLineOffsets(src)

	var result []chunk.Chunk
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		startByte := lineOffsets[keyNode.Line-1]
		endLine := valNode.Line
		if next := i + 2; next+1 < len(root.Content) {
			endLine = root.Content[next].Line - 1
		} else {
			endLine = countLines(src)
		}
		endByte := len(src)
		if endLine < len(lineOffsets) {
			endByte = lineOffsets[endLine]
		}
		if endByte < startByte {
			endByte = len(src)
		}

		content := bytes.TrimRight(src[startByte:endByte], "\n")
		result = append(result, chunk.Chunk{
			Kind:       chunk.KindTopLevelKey,
			Identifier: keyNode.Value,
			StartLine:  keyNode.Line,
			EndLine:    endLine,
			StartByte:  startByte,
			EndByte:    startByte + len(content),
			Content:    string(content),
			UIContext:  uiContext,
		})
	}

	return result, nil
}

// computeLineOffsets returns, for each 0-based line index, the byte offset
// of that line's first byte. Line N (1-based) starts at offsets[N-1].
func computeLineOffsets(src []byte) []int {
	offsets := []int{0}
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func countLines(src []byte) int {
	return 1 + bytes.Count(src, []byte("\n"))
}
