package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func phpLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(php.LanguagePHP()),
		Rules: []rule{
			{NodeType: "namespace_definition", Kind: chunk.KindNamespace, Container: true},
			{NodeType: "class_declaration", Kind: chunk.KindClass, Container: true, DocTypes: []string{"comment"}},
			{NodeType: "interface_declaration", Kind: chunk.KindInterface, Container: true, DocTypes: []string{"comment"}},
			{NodeType: "trait_declaration", Kind: chunk.KindTrait, Container: true, DocTypes: []string{"comment"}},
			{
				NodeType:    "function_definition",
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
		},
	}
}
