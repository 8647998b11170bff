package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func cLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(c.Language()),
		Rules: []rule{
			{NodeType: "struct_specifier", Kind: chunk.KindStruct, DocTypes: []string{"comment"}},
			{NodeType: "enum_specifier", Kind: chunk.KindEnum, DocTypes: []string{"comment"}},
			{
				NodeType:    "function_definition",
				Kind:        chunk.KindFunction,
				NameField:   "declarator",
				SigEndField: "body",
				DocTypes:    []string{"comment"},
			},
		},
	}
}
