package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func pythonLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(python.Language()),
		Rules: []rule{
			{NodeType: "class_definition", Kind: chunk.KindClass, Container: true, DocTypes: []string{"comment"}, AttrTypes: []string{"decorator"}},
			{
				NodeType:    "function_definition",
				Kind:        chunk.KindFunction,
				SigEndField: "body",
				DocTypes:    []string{"comment"},
				AttrTypes:   []string{"decorator"},
			},
		},
	}
}
