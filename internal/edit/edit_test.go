package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/ingest"
	"github.com/outpost-dev/rlm/internal/langparser"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
	"github.com/outpost-dev/rlm/internal/walk"
)

const goSource = `package greet

func Hello() string {
	return "hi"
}

func Bye() string {
	return "bye"
}
`

// newTestEditor writes goSource to a real temp directory, indexes it with
// the Ingestion Pipeline so the store has real chunk rows to select
// against, and returns an Editor over the same root.
func newTestEditor(t *testing.T) (*Editor, *store.Store, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.go"), []byte(goSource), 0644))

	fs := afero.NewOsFs()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry := langparser.NewRegistry()
	w := walk.New(fs, root)
	pipe := ingest.New(fs, root, w, registry, st)
	_, err = pipe.Index(t.Context())
	require.NoError(t, err)

	var reindexed []string
	reindex := func(path string) error {
		reindexed = append(reindexed, path)
		_, err := pipe.Index(t.Context())
		return err
	}

	e := New(fs, root, registry, st, reindex)
	return e, st, root
}

func TestReplace_Preview(t *testing.T) {
	e, _, root := newTestEditor(t)

	result, err := e.Replace("greet.go", Selector{Identifier: "Hello", Kind: chunk.KindFunction},
		"func Hello() string {\n\treturn \"hello\"\n}", true)
	require.NoError(t, err)
	require.False(t, result.Written)
	require.Contains(t, result.Diff, "-\treturn \"hi\"")
	require.Contains(t, result.Diff, "+\treturn \"hello\"")

	original, err := os.ReadFile(filepath.Join(root, "greet.go"))
	require.NoError(t, err)
	require.Equal(t, goSource, string(original))
}

func TestReplace_WritesAndReindexes(t *testing.T) {
	e, st, root := newTestEditor(t)

	result, err := e.Replace("greet.go", Selector{Identifier: "Hello", Kind: chunk.KindFunction},
		"func Hello() string {\n\treturn \"hello\"\n}", false)
	require.NoError(t, err)
	require.True(t, result.Written)

	written, err := os.ReadFile(filepath.Join(root, "greet.go"))
	require.NoError(t, err)
	require.Contains(t, string(written), `"hello"`)
	require.NotContains(t, string(written), `"hi"`)

	f, err := st.GetFileByPath("greet.go")
	require.NoError(t, err)
	chunks, err := st.ListChunksForFile(f.ID)
	require.NoError(t, err)
	found := false
	for _, c := range chunks {
		if c.Identifier == "Hello" {
			found = true
			require.Contains(t, c.Content, "hello")
		}
	}
	require.True(t, found)
}

func TestReplace_SyntaxGuardRejectsBrokenCode(t *testing.T) {
	e, _, _ := newTestEditor(t)

	_, err := e.Replace("greet.go", Selector{Identifier: "Hello", Kind: chunk.KindFunction},
		"func Hello() string {\n\treturn \"unterminated", false)
	require.Error(t, err)
	rlmErr, ok := rlmerr.As(err)
	require.True(t, ok)
	require.Equal(t, rlmerr.KindParseRejected, rlmErr.Kind)
}

func TestReplace_SelectorNotFound(t *testing.T) {
	e, _, _ := newTestEditor(t)

	_, err := e.Replace("greet.go", Selector{Identifier: "Nope", Kind: chunk.KindFunction}, "func Nope() {}", false)
	require.Error(t, err)
	rlmErr, ok := rlmerr.As(err)
	require.True(t, ok)
	require.Equal(t, rlmerr.KindNotFound, rlmErr.Kind)
}

func TestInsert_BodyEnd(t *testing.T) {
	e, _, root := newTestEditor(t)

	result, err := e.Insert("greet.go", Selector{Identifier: "Hello", Kind: chunk.KindFunction},
		InsertAt{Position: PositionBodyEnd}, `println("added")`, false)
	require.NoError(t, err)
	require.True(t, result.Written)

	written, err := os.ReadFile(filepath.Join(root, "greet.go"))
	require.NoError(t, err)
	require.Contains(t, string(written), `println("added")`)
}

func TestEdit_RejectsUnsupportedLanguage(t *testing.T) {
	e, _, root := newTestEditor(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello world\n"), 0644))

	_, err := e.Replace("notes.txt", Selector{StartLine: 1, EndLine: 1}, "goodbye world", false)
	require.Error(t, err)
	rlmErr, ok := rlmerr.As(err)
	require.True(t, ok)
	require.Equal(t, rlmerr.KindUnsupportedForEdit, rlmErr.Kind)
}
