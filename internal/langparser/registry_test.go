package langparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-dev/rlm/internal/chunk"
)

func TestRegistry_LookupKnownExtensions(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		ext  string
		want chunk.Language
	}{
		{"go", chunk.LangGo},
		{".go", chunk.LangGo},
		{"GO", chunk.LangGo},
		{"py", chunk.LangPython},
		{"pyi", chunk.LangPython},
		{"ts", chunk.LangTypeScript},
		{"tsx", chunk.LangTSX},
		{"md", chunk.LangMarkdown},
		{"markdown", chunk.LangMarkdown},
		{"json", chunk.LangJSON},
		{"yml", chunk.LangYAML},
		{"yaml", chunk.LangYAML},
		{"toml", chunk.LangTOML},
		{"pdf", chunk.LangPDF},
		{"html", chunk.LangHTML},
	}
	for _, c := range cases {
		p := r.Lookup(c.ext)
		require.NotNil(t, p, "ext %s", c.ext)
		assert.Equal(t, c.want, p.Language(), "ext %s", c.ext)
	}
}

func TestRegistry_LookupUnknownExtensionFallsBackToPlaintext(t *testing.T) {
	r := NewRegistry()
	p := r.Lookup("xyz")
	require.NotNil(t, p)
	assert.False(t, p.Language().IsASTAware())
}

func TestGoParser_ExtractFunctionsAndTypes(t *testing.T) {
	r := NewRegistry()
	p := r.Lookup("go")
	require.Equal(t, chunk.LangGo, p.Language())

	src := []byte(`package sample

// Add returns the sum of two ints.
func Add(a, b int) int {
	return a + b
}

type Point struct {
	X, Y int
}

func (p Point) String() string {
	return "point"
}
`)

	tree, err := p.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	hasErrors, spans := p.HasErrors(tree)
	require.False(t, hasErrors, "spans: %v", spans)

	chunks, err := p.Extract(tree, src, "sample.go")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	byIdentifier := map[string]chunk.Chunk{}
	for _, c := range chunks {
		byIdentifier[c.Identifier] = c
	}

	add, ok := byIdentifier["Add"]
	require.True(t, ok)
	assert.Equal(t, chunk.KindFunction, add.Kind)
	assert.Contains(t, add.Doc, "Add returns the sum")
	assert.Contains(t, add.Signature, "func Add(a, b int) int")

	point, ok := byIdentifier["Point"]
	require.True(t, ok)
	assert.Equal(t, chunk.KindStruct, point.Kind)

	str, ok := byIdentifier["String"]
	require.True(t, ok)
	assert.Equal(t, chunk.KindMethod, str.Kind)
}

func TestGoParser_HasErrorsOnBrokenSyntax(t *testing.T) {
	r := NewRegistry()
	p := r.Lookup("go")

	src := []byte(`package broken

func Oops( {
`)
	tree, err := p.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	hasErrors, spans := p.HasErrors(tree)
	assert.True(t, hasErrors)
	assert.NotEmpty(t, spans)
}
