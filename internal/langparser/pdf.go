package langparser

import (
	"bytes"
	"strconv"

	"github.com/ledongthuc/pdf"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// pdfParser chunks a PDF into one chunk per page. PDF has no AST in the
// source-code sense (spec §6's fifteen AST-aware languages exclude it), so
// this is a page-based strategy rather than a syntax-tree walk. A page
// chunk's Content is the page's extracted plain text, and its StartByte and
// EndByte index into that text, not into the PDF file's bytes.
type pdfParser struct{}

func newPDFParser() Parser { return &pdfParser{} }

func (p *pdfParser) Language() chunk.Language { return chunk.LangPDF }

func (p *pdfParser) Parse(src []byte) (Tree, error) {
	reader, err := pdf.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return Tree{}, err
	}
	return Tree{Raw: reader}, nil
}

func (p *pdfParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) { return false, nil }

func (p *pdfParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	reader, ok := t.Raw.(*pdf.Reader)
	if !ok || reader == nil {
		return nil, nil
	}

	uiContext := chunk.UIContext(filePath)
	var result []chunk.Chunk
	lineCursor := 1

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		startLine := lineCursor
		lineCount := bytes.Count([]byte(text), []byte("\n")) + 1
		lineCursor += lineCount

		result = append(result, chunk.Chunk{
			Kind:       chunk.KindPage,
			Identifier: strconv.Itoa(i),
			StartLine:  startLine,
			EndLine:    lineCursor - 1,
			StartByte:  0,
			EndByte:    len(text),
			Content:    text,
			UIContext:  uiContext,
		})
	}

	return result, nil
}
