package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func csharpLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(csharp.Language()),
		Rules: []rule{
			{NodeType: "namespace_declaration", Kind: chunk.KindNamespace, Container: true},
			{NodeType: "class_declaration", Kind: chunk.KindClass, Container: true, DocTypes: []string{"comment"}, AttrTypes: []string{"attribute_list"}},
			{NodeType: "interface_declaration", Kind: chunk.KindInterface, Container: true, DocTypes: []string{"comment"}, AttrTypes: []string{"attribute_list"}},
			{NodeType: "struct_declaration", Kind: chunk.KindStruct, Container: true, DocTypes: []string{"comment"}, AttrTypes: []string{"attribute_list"}},
			{NodeType: "enum_declaration", Kind: chunk.KindEnum, DocTypes: []string{"comment"}, AttrTypes: []string{"attribute_list"}},
			{
				NodeType:  "method_declaration",
				Kind:      chunk.KindMethod,
				DocTypes:  []string{"comment"},
				AttrTypes: []string{"attribute_list"},
			},
		},
	}
}
