// Package langparser is the Parser Registry (spec §4.2): a static mapping
// from lowercase file extension to a parser capability plus the chunk
// extractor that walks its syntax tree (spec §4.3). Bundling the two under
// one Parser per language keeps the registry itself a plain table of
// capability records, per the "no inheritance required" design note in
// spec §9 — dynamic dispatch is just a map lookup.
package langparser

import (
	"strings"

	"github.com/outpost-dev/rlm/internal/chunk"
)

// Tree is the opaque syntax tree a Parser produces. Raw holds the
// language-specific representation (*sitter.Tree, a goldmark ast.Node, a
// *yaml.Node, ...); only the Parser that produced it type-asserts Raw.
// Release, if non-nil, must be called once the tree is no longer needed
// (tree-sitter trees own C memory).
type Tree struct {
	Raw     any
	Release func()
}

// Close releases the tree's resources, if any.
func (t Tree) Close() {
	if t.Release != nil {
		t.Release()
	}
}

// Parser is one entry in the registry: a capability to parse bytes into a
// Tree, check that Tree for syntax errors, and extract chunks from it.
type Parser interface {
	// Language reports the tag this parser is registered under.
	Language() chunk.Language

	// Parse produces an opaque syntax tree from source bytes.
	Parse(src []byte) (Tree, error)

	// HasErrors reports whether the tree contains syntax errors, and the
	// byte ranges of each error/missing-node span.
	HasErrors(t Tree) (bool, []chunk.ErrorSpan)

	// Extract walks the tree and produces the file's chunks. filePath is
	// used only for UI-context derivation (spec §4.3) and chunk-kind
	// `file` fallbacks; it is never read from disk here.
	Extract(t Tree, src []byte, filePath string) ([]chunk.Chunk, error)
}

// Registry maps a lowercase file extension to its Parser.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds the registry with every parser this repository ships.
// This is the sole place a new language is wired in (spec §4.2).
func NewRegistry() *Registry {
	r := &Registry{byExt: map[string]Parser{}}

	r.register([]string{"go"}, newTreeSitterParser(chunk.LangGo, goLanguageConfig()))
	r.register([]string{"rs"}, newTreeSitterParser(chunk.LangRust, rustLanguageConfig()))
	r.register([]string{"java"}, newTreeSitterParser(chunk.LangJava, javaLanguageConfig()))
	r.register([]string{"cs"}, newTreeSitterParser(chunk.LangCSharp, csharpLanguageConfig()))
	r.register([]string{"py", "pyi"}, newTreeSitterParser(chunk.LangPython, pythonLanguageConfig()))
	r.register([]string{"php"}, newTreeSitterParser(chunk.LangPHP, phpLanguageConfig()))
	r.register([]string{"js", "mjs", "cjs", "jsx"}, newTreeSitterParser(chunk.LangJavaScript, javascriptLanguageConfig()))
	r.register([]string{"ts"}, newTreeSitterParser(chunk.LangTypeScript, typescriptLanguageConfig()))
	r.register([]string{"tsx"}, newTreeSitterParser(chunk.LangTSX, tsxLanguageConfig()))
	r.register([]string{"c", "h"}, newTreeSitterParser(chunk.LangC, cLanguageConfig()))

	r.register([]string{"html", "htm"}, newHTMLParser())
	r.register([]string{"css"}, newTreeSitterParser(chunk.LangCSS, cssLanguageConfig()))

	r.register([]string{"md", "markdown"}, newMarkdownParser())
	r.register([]string{"json"}, newJSONParser())
	r.register([]string{"yml", "yaml"}, newYAMLParser())
	r.register([]string{"toml"}, newTOMLParser())
	r.register([]string{"pdf"}, newPDFParser())

	return r
}

func (r *Registry) register(exts []string, p Parser) {
	for _, ext := range exts {
		r.byExt[ext] = p
	}
}

// Lookup returns the Parser registered for ext (without the leading dot;
// case-insensitive). The caller always gets a usable Parser: unknown
// extensions get the plain-text fallback from plaintextParserFor.
func (r *Registry) Lookup(ext string) Parser {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if p, ok := r.byExt[ext]; ok {
		return p
	}
	return plaintextParserFor(ext)
}
