// Package chunk holds the broker's core data model: the closed language and
// chunk-kind enumerations, the File and Chunk records, and the invariants
// that bind them together (see spec §3 and §6).
package chunk

// Language is one of the closed set of language tags the broker understands.
// Only the AST-aware subset (see IsASTAware) gets a real parser capability;
// the rest fall back to plain-text chunking.
type Language string

const (
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangPython     Language = "python"
	LangPHP        Language = "php"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangYAML       Language = "yaml"
	LangTOML       Language = "toml"
	LangJSON       Language = "json"
	LangMarkdown   Language = "markdown"
	LangPDF        Language = "pdf"
	LangBash       Language = "bash"
	LangSQL        Language = "sql"
	LangXML        Language = "xml"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangPlaintext  Language = "plaintext"
	LangUnknown    Language = "unknown"
)

// astAware is the first fifteen language tags from spec §6. Tags outside the
// set are not AST-aware even when they have an extractor: pdf is chunked per
// page, c by its tree-sitter grammar, and the rest as a whole file.
var astAware = map[Language]bool{
	LangRust: true, LangGo: true, LangJava: true, LangCSharp: true,
	LangPython: true, LangPHP: true, LangJavaScript: true, LangTypeScript: true,
	LangTSX: true, LangHTML: true, LangCSS: true, LangYAML: true,
	LangTOML: true, LangJSON: true, LangMarkdown: true,
}

// IsASTAware reports whether l is one of the fifteen AST-aware language
// tags.
func (l Language) IsASTAware() bool { return astAware[l] }

// Kind is one of the closed set of chunk kinds from spec §6.
type Kind string

const (
	KindFunction       Kind = "function"
	KindMethod         Kind = "method"
	KindClass          Kind = "class"
	KindStruct         Kind = "struct"
	KindEnum           Kind = "enum"
	KindInterface      Kind = "interface"
	KindTrait          Kind = "trait"
	KindImpl           Kind = "impl"
	KindModule         Kind = "module"
	KindNamespace      Kind = "namespace"
	KindTypeAlias      Kind = "type_alias"
	KindArrowFunction  Kind = "arrow_function"
	KindComponent      Kind = "component"
	KindHeading        Kind = "heading"
	KindPage           Kind = "page"
	KindTopLevelKey    Kind = "top_level_key"
	KindElement        Kind = "element"
	KindRule           Kind = "rule"
	KindFile           Kind = "file"
)

// ParseQuality summarizes how much of a file the parser recovered.
type ParseQuality string

const (
	QualityComplete  ParseQuality = "complete"
	QualityPartial   ParseQuality = "partial"
	QualityFailed    ParseQuality = "failed"
	QualityNotParsed ParseQuality = "not-parsed"
)

// ErrorSpan is a byte range the parser reported as a syntax error, used to
// compute ParseQuality and surfaced on File records with partial quality.
type ErrorSpan struct {
	StartByte int
	EndByte   int
}

// File is the persisted record for one tracked source file (spec §3).
type File struct {
	ID           int64
	Path         string // repo-relative, forward-slash separated
	Hash         string // hex-encoded SHA-256 of the file's bytes
	Size         int64
	Language     Language
	ParseQuality ParseQuality
	ErrorSpans   []ErrorSpan
}

// Chunk is one semantically-bounded byte range of a source file (spec §3).
type Chunk struct {
	ID         int64
	FileID     int64
	Kind       Kind
	Identifier string // may be empty for anonymous chunks
	StartLine  int    // 1-based, inclusive
	EndLine    int    // 1-based, inclusive
	StartByte  int    // 0-based, half-open range start
	EndByte    int    // 0-based, half-open range end
	Content    string // verbatim source bytes in [StartByte, EndByte)
	Signature  string // optional
	Doc        string // optional leading doc-comment
	Attr       string // optional leading attribute/decorator text
	UIContext  string // empty if none

	// ParentID is 0 if there is no enclosing chunk (parent-pointer relaxation,
	// §4.3). Between extraction and storage it holds a 1-based ordinal into
	// the slice an Extractor returned, not yet a persisted id; the Store
	// remaps ordinals to real row ids inside ReplaceChunks, in the same
	// transaction as the insert, before any reader can observe them.
	ParentID int64
}

// Summary is the lightweight projection most query operations return:
// enough to locate a chunk without paying for its (possibly large) Content.
type Summary struct {
	ChunkID    int64
	FilePath   string
	Kind       Kind
	Identifier string
	StartLine  int
	EndLine    int
}

func (c Chunk) Summary(filePath string) Summary {
	return Summary{
		ChunkID:    c.ID,
		FilePath:   filePath,
		Kind:       c.Kind,
		Identifier: c.Identifier,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
	}
}
