package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func goLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(golang.Language()),
		Rules: []rule{
			{
				NodeType:    "function_declaration",
				Kind:        chunk.KindFunction,
				SigEndField: "body",
				DocTypes:    []string{"comment"},
			},
			{
				NodeType:    "method_declaration",
				Kind:        chunk.KindMethod,
				SigEndField: "body",
				DocTypes:    []string{"comment"},
			},
			{
				NodeType:  "type_spec",
				Kind:      chunk.KindTypeAlias,
				KindField: "type",
				KindByChildKind: map[string]chunk.Kind{
					"struct_type":    chunk.KindStruct,
					"interface_type": chunk.KindInterface,
				},
				DocTypes: []string{"comment"},
			},
		},
	}
}
