package langparser

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// jsonParser chunks a JSON document by its top-level keys (or array indices,
// addressed as "[0]", "[1]", ...). jsonparser's offset-aware callbacks give
// byte positions without building an intermediate tree.
type jsonParser struct{}

func newJSONParser() Parser { return &jsonParser{} }

func (p *jsonParser) Language() chunk.Language { return chunk.LangJSON }

func (p *jsonParser) Parse(src []byte) (Tree, error) {
	return Tree{Raw: src}, nil
}

func (p *jsonParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) {
	src, _ := t.Raw.([]byte)
	// Cheapest validity probe available without a full tree: try to walk the
	// document as an object or an array; a syntactically broken document
	// fails both.
	objErr := jsonparser.ObjectEach(src, func(_, _ []byte, _ jsonparser.ValueType, _ int) error { return nil })
	if objErr == nil {
		return false, nil
	}
	_, arrErr := jsonparser.ArrayEach(src, func(_ []byte, _ jsonparser.ValueType, _ int, _ error) {})
	if arrErr == nil {
		return false, nil
	}
	return true, []chunk.ErrorSpan{{StartByte: 0, EndByte: len(src)}}
}

func lineAt(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	return 1 + bytes.Count(src[:offset], []byte("\n"))
}

func (p *jsonParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	uiContext := chunk.UIContext(filePath)
	cursor := 0
	var result []chunk.Chunk

	emit := func(identifier string, value []byte, offset int) {
		keyPattern := []byte(fmt.Sprintf("%q", identifier))
		start := cursor
		if idx := bytes.Index(src[cursor:], keyPattern); idx >= 0 {
			start = cursor + idx
		}
		end := offset
		if end < start {
			end = start + len(value)
		}
		if end > len(src) {
			end = len(src)
		}
		result = append(result, chunk.Chunk{
			Kind:       chunk.KindTopLevelKey,
			Identifier: identifier,
			StartLine:  lineAt(src, start),
			EndLine:    lineAt(src, end),
			StartByte:  start,
			EndByte:    end,
			Content:    string(src[start:end]),
			UIContext:  uiContext,
		})
		cursor = end
	}

	objErr := jsonparser.ObjectEach(src, func(key, value []byte, dataType jsonparser.ValueType, offset int) error {
		emit(string(key), value, offset)
		return nil
	})
	if objErr == nil {
		return result, nil
	}

	cursor = 0
	index := 0
	_, arrErr := jsonparser.ArrayEach(src, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		emit(fmt.Sprintf("[%d]", index), value, offset)
		index++
	})
	if arrErr != nil {
		return nil, nil
	}

	return result, nil
}
