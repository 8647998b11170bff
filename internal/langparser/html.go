package langparser

import (
	"bytes"

	"golang.org/x/net/html"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// htmlParser chunks by element, keyed on the "id" attribute. x/net/html's
// parse tree doesn't retain source offsets, so extraction re-walks the raw
// tokenizer instead of the parsed document; the parsed document is kept only
// to confirm the markup is at least tokenizable.
type htmlParser struct{}

func newHTMLParser() Parser { return &htmlParser{} }

func (p *htmlParser) Language() chunk.Language { return chunk.LangHTML }

func (p *htmlParser) Parse(src []byte) (Tree, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return Tree{}, err
	}
	return Tree{Raw: doc}, nil
}

// HasErrors always reports clean: html.Parse recovers from malformed markup
// rather than rejecting it, so there is nothing to surface as a syntax span.
func (p *htmlParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) { return false, nil }

type htmlOpenElement struct {
	tag       string
	id        string
	startByte int
	startLine int
}

func (p *htmlParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	uiContext := chunk.UIContext(filePath)
	tok := html.NewTokenizer(bytes.NewReader(src))

	var stack []htmlOpenElement
	var result []chunk.Chunk
	offset := 0
	line := 1

	advanceLine := func(b []byte) {
		line += bytes.Count(b, []byte("\n"))
	}

	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := tok.Raw()
		start := offset

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			id := ""
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tok.TagAttr()
				if string(key) == "id" {
					id = string(val)
				}
			}
			if tt == html.StartTagToken {
				stack = append(stack, htmlOpenElement{tag: string(name), id: id, startByte: start, startLine: line})
			} else if id != "" {
				result = append(result, chunk.Chunk{
					Kind:       chunk.KindElement,
					Identifier: id,
					StartLine:  line,
					EndLine:    line,
					StartByte:  start,
					EndByte:    start + len(raw),
					Content:    string(raw),
					UIContext:  uiContext,
				})
			}

		case html.EndTagToken:
			name, _ := tok.TagName()
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].tag == string(name) {
					open := stack[i]
					stack = stack[:i]
					if open.id != "" {
						end := start + len(raw)
						result = append(result, chunk.Chunk{
							Kind:       chunk.KindElement,
							Identifier: open.id,
							StartLine:  open.startLine,
							EndLine:    line,
							StartByte:  open.startByte,
							EndByte:    end,
							Content:    string(src[open.startByte:end]),
							UIContext:  uiContext,
						})
					}
					break
				}
			}
		}

		advanceLine(raw)
		offset += len(raw)
	}

	return result, nil
}
