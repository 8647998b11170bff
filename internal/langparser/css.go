package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	css "github.com/tree-sitter/tree-sitter-css/bindings/go"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func cssLanguageConfig() languageConfig {
	return languageConfig{
		Lang: sitter.NewLanguage(css.Language()),
		Rules: []rule{
			{NodeType: "rule_set", Kind: chunk.KindRule, NameField: "selectors"},
			{NodeType: "media_statement", Kind: chunk.KindRule, Container: true, BodyField: "body"},
		},
	}
}
