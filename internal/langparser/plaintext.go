package langparser

import (
	"bytes"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// plaintextParser is the whole-file fallback (spec §4.3): one chunk of kind
// "file" spanning the entire document. Used for any extension without a
// registered capability, and for the non-AST-aware language tags.
type plaintextParser struct {
	lang chunk.Language
}

var extLanguage = map[string]chunk.Language{
	"sh":    chunk.LangBash,
	"bash":  chunk.LangBash,
	"sql":   chunk.LangSQL,
	"xml":   chunk.LangXML,
	"cpp":   chunk.LangCPP,
	"cc":    chunk.LangCPP,
	"cxx":   chunk.LangCPP,
	"hpp":   chunk.LangCPP,
	"txt":   chunk.LangPlaintext,
}

func plaintextParserFor(ext string) Parser {
	lang, ok := extLanguage[ext]
	if !ok {
		lang = chunk.LangUnknown
	}
	return &plaintextParser{lang: lang}
}

func (p *plaintextParser) Language() chunk.Language { return p.lang }

func (p *plaintextParser) Parse(src []byte) (Tree, error) {
	return Tree{Raw: src}, nil
}

func (p *plaintextParser) HasErrors(t Tree) (bool, []chunk.ErrorSpan) { return false, nil }

func (p *plaintextParser) Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error) {
	if len(src) == 0 {
		return nil, nil
	}
	return []chunk.Chunk{
		{
			Kind:      chunk.KindFile,
			StartLine: 1,
			EndLine:   1 + bytes.Count(src, []byte("\n")),
			StartByte: 0,
			EndByte:   len(src),
			Content:   string(src),
			UIContext: chunk.UIContext(filePath),
		},
	}, nil
}
