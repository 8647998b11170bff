package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func javaLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(java.Language()),
		Rules: []rule{
			{NodeType: "class_declaration", Kind: chunk.KindClass, Container: true, DocTypes: []string{"block_comment", "line_comment"}, AttrTypes: []string{"modifiers"}},
			{NodeType: "interface_declaration", Kind: chunk.KindInterface, Container: true, DocTypes: []string{"block_comment", "line_comment"}, AttrTypes: []string{"modifiers"}},
			{NodeType: "enum_declaration", Kind: chunk.KindEnum, DocTypes: []string{"block_comment", "line_comment"}, AttrTypes: []string{"modifiers"}},
			{
				NodeType:    "method_declaration",
				Kind:        chunk.KindMethod,
				SigEndField: "body",
				DocTypes:    []string{"block_comment", "line_comment"},
				AttrTypes:   []string{"modifiers"},
			},
		},
	}
}
