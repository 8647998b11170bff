package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func jsLikeRules() []rule {
	return []rule{
		{NodeType: "class_declaration", Kind: chunk.KindClass, Container: true, BodyField: "body", DocTypes: []string{"comment"}},
		{NodeType: "function_declaration", Kind: chunk.KindFunction, SigEndField: "body", DocTypes: []string{"comment"}},
		{NodeType: "method_definition", Kind: chunk.KindMethod, SigEndField: "body"},
		{NodeType: "interface_declaration", Kind: chunk.KindInterface, Container: true, DocTypes: []string{"comment"}},
		{NodeType: "type_alias_declaration", Kind: chunk.KindTypeAlias, DocTypes: []string{"comment"}},
	}
}

func javascriptLanguageConfig() languageConfig {
	return languageConfig{
		Lang:  sitter.NewLanguage(javascript.Language()),
		Rules: jsLikeRules(),
	}
}
