package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func rustLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(rust.Language()),
		Rules: []rule{
			{NodeType: "struct_item", Kind: chunk.KindStruct, DocTypes: []string{"line_comment", "block_comment"}},
			{NodeType: "enum_item", Kind: chunk.KindEnum, DocTypes: []string{"line_comment", "block_comment"}},
			{NodeType: "trait_item", Kind: chunk.KindTrait, Container: true, DocTypes: []string{"line_comment", "block_comment"}},
			{NodeType: "impl_item", Kind: chunk.KindImpl, Container: true, NameField: "type"},
			{
				NodeType:    "function_item",
				Kind:        chunk.KindFunction,
				SigEndField: "body",
				DocTypes:    []string{"line_comment", "block_comment"},
			},
			{NodeType: "mod_item", Kind: chunk.KindModule, Container: true, DocTypes: []string{"line_comment", "block_comment"}},
			{NodeType: "type_item", Kind: chunk.KindTypeAlias},
		},
	}
}
