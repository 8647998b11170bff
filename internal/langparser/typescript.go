package langparser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func typescriptLanguageConfig() languageConfig {
	return languageConfig{
		Lang:  sitter.NewLanguage(typescript.LanguageTypescript()),
		Rules: jsLikeRules(),
	}
}

func tsxLanguageConfig() languageConfig {
	return languageConfig{
		Lang:  sitter.NewLanguage(typescript.LanguageTSX()),
		Rules: jsLikeRules(),
	}
}
