package langparser

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// markdownParser chunks a document into nested heading sections: each
// heading opens a chunk that runs until the next heading of the same or
// shallower level, mirroring how a reader collapses a document's outline.
type markdownParser struct {
	md goldmark.Markdown
}

func newMarkdownParser() Parser {
	return &markdownParser{md: goldmark.New()}
}

func (p *markdownParser) Language() chunk.Language { return chunk.LangMarkdown }

func (p *markdownParser) Parse(src []byte) (Tree, error) {
	reader := text.NewReader(src)
	doc := p.md.Parser().Parse(reader)
	return Tree{Raw: doc}, nil
}

func (p *markdownParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) { return false, nil }

type headingSection struct {
	level     int
	title     string
	startByte int
	startLine int
	ordinal   int64
}

func (p *markdownParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	doc, ok := t.Raw.(ast.Node)
	if !ok || doc == nil {
		return nil, nil
	}

	uiContext := chunk.UIContext(filePath)
	lineStart := func(byteOffset int) int {
		return 1 + bytes.Count(src[:byteOffset], []byte("\n"))
	}

	var result []chunk.Chunk
	var stack []headingSection

	closeThrough := func(level int, endByte int) {
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			idx := top.ordinal - 1
			result[idx].EndByte = endByte
			result[idx].EndLine = lineStart(endByte)
			result[idx].Content = string(src[result[idx].StartByte:endByte])
		}
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var startByte int
		if lines := heading.Lines(); lines.Len() > 0 {
			startByte = lines.At(0).Start
		}
		// The heading's text segment starts after any "#" markers; the
		// chunk starts at the beginning of the heading line.
		startByte = bytes.LastIndexByte(src[:startByte], '\n') + 1

		closeThrough(heading.Level, startByte)

		var parentOrdinal int64
		if len(stack) > 0 {
			parentOrdinal = stack[len(stack)-1].ordinal
		}

		title := string(headingText(heading, src))
		result = append(result, chunk.Chunk{
			Kind:       chunk.KindHeading,
			Identifier: title,
			StartLine:  lineStart(startByte),
			StartByte:  startByte,
			EndByte:    len(src),
			EndLine:    lineStart(len(src)),
			Content:    string(src[startByte:]),
			UIContext:  uiContext,
			ParentID:   parentOrdinal,
		})

		stack = append(stack, headingSection{
			level:     heading.Level,
			title:     title,
			startByte: startByte,
			ordinal:   int64(len(result)),
		})

		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	closeThrough(0, len(src))

	return result, nil
}

func headingText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}
	}
	return buf.Bytes()
}
