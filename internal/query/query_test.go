package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/rlmerr"
	"github.com/outpost-dev/rlm/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedFile(t *testing.T, st *store.Store, path string, chunks []chunk.Chunk) int64 {
	t.Helper()
	id, err := st.UpsertFile(chunk.File{Path: path, Hash: "h", Size: 100, Language: chunk.LangGo, ParseQuality: chunk.QualityComplete})
	require.NoError(t, err)
	require.NoError(t, st.ReplaceChunks(id, chunks))
	return id
}

func TestResolveSymbol_Unique(t *testing.T) {
	st := newTestStore(t)
	seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "DoThing", StartLine: 1, EndLine: 3, Content: "func DoThing() {}"},
	})
	e, err := New(st)
	require.NoError(t, err)

	c, err := e.ResolveSymbol("", "DoThing", "")
	require.NoError(t, err)
	require.Equal(t, "DoThing", c.Identifier)
}

func TestResolveSymbol_AmbiguousWithoutFile(t *testing.T) {
	st := newTestStore(t)
	seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Run", StartLine: 1, EndLine: 3, Content: "func Run() {}"},
	})
	seedFile(t, st, "b.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Run", StartLine: 5, EndLine: 7, Content: "func Run() {}"},
	})
	e, err := New(st)
	require.NoError(t, err)

	_, err = e.ResolveSymbol("", "Run", "")
	require.Error(t, err)
	rlmErr, ok := rlmerr.As(err)
	require.True(t, ok)
	require.Equal(t, rlmerr.KindAmbiguous, rlmErr.Kind)
}

func TestResolveSymbol_ScopedByFile(t *testing.T) {
	st := newTestStore(t)
	seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Run", StartLine: 1, EndLine: 3, Content: "func Run() {}"},
	})
	seedFile(t, st, "b.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Run", StartLine: 5, EndLine: 7, Content: "func Run() {}"},
	})
	e, err := New(st)
	require.NoError(t, err)

	c, err := e.ResolveSymbol("b.go", "Run", "")
	require.NoError(t, err)
	require.Equal(t, 5, c.StartLine)
}

func TestResolveSymbol_NotFound(t *testing.T) {
	st := newTestStore(t)
	e, err := New(st)
	require.NoError(t, err)

	_, err = e.ResolveSymbol("", "Missing", "")
	require.Error(t, err)
	rlmErr, ok := rlmerr.As(err)
	require.True(t, ok)
	require.Equal(t, rlmerr.KindNotFound, rlmErr.Kind)
}

func TestTreeAndMap(t *testing.T) {
	st := newTestStore(t)
	seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindStruct, Identifier: "Widget", StartLine: 1, EndLine: 10, Content: "type Widget struct {}"},
		{Kind: chunk.KindMethod, Identifier: "Widget.Size", StartLine: 3, EndLine: 5, Content: "func (w Widget) Size() int", ParentID: 1},
	})
	e, err := New(st)
	require.NoError(t, err)

	flat, err := e.Map("a.go")
	require.NoError(t, err)
	require.Len(t, flat, 2)

	tree, err := e.Tree("a.go")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, 0, tree[0].Depth)
	require.Equal(t, 1, tree[1].Depth)
}

func TestImpactView(t *testing.T) {
	st := newTestStore(t)
	seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Helper", StartLine: 1, EndLine: 3, Content: "func Helper() {}"},
	})
	seedFile(t, st, "b.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Caller", StartLine: 1, EndLine: 3, Content: "func Caller() { Helper() }"},
	})
	e, err := New(st)
	require.NoError(t, err)

	result, err := e.ImpactView("", "Helper")
	require.NoError(t, err)
	require.True(t, result.BestEffort)
	require.Equal(t, "Helper", result.Root.Identifier)
	require.Len(t, result.Callers, 1)
	require.Equal(t, "Caller", result.Callers[0].Identifier)
}

func TestInvalidate(t *testing.T) {
	st := newTestStore(t)
	fileID := seedFile(t, st, "a.go", []chunk.Chunk{
		{Kind: chunk.KindFunction, Identifier: "Run", StartLine: 1, EndLine: 3, Content: "func Run() {}"},
	})
	e, err := New(st)
	require.NoError(t, err)

	_, err = e.Map("a.go")
	require.NoError(t, err)

	e.Invalidate(fileID)
	_, ok := e.fileChunksCache.Get(fileID)
	require.False(t, ok)
}
