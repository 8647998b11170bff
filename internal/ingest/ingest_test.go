package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/langparser"
	"github.com/outpost-dev/rlm/internal/store"
	"github.com/outpost-dev/rlm/internal/walk"
)

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store, string) {
	t.Helper()
	root := t.TempDir()

	fs := afero.NewOsFs()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry := langparser.NewRegistry()
	w := walk.New(fs, root)
	pipe := New(fs, root, w, registry, st)
	return pipe, st, root
}

func writeRootFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestIndex_ParsesAndStoresChunks(t *testing.T) {
	pipe, st, root := newTestPipeline(t)
	writeRootFile(t, root, "main.go", "package main\n\nfunc Main() {}\n")

	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSeen)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.Equal(t, 0, stats.FilesFailed)

	f, err := st.GetFileByPath("main.go")
	require.NoError(t, err)
	assert.Equal(t, chunk.LangGo, f.Language)
	assert.Equal(t, chunk.QualityComplete, f.ParseQuality)

	chunks, err := st.ListChunksForFile(f.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Main", chunks[0].Identifier)
}

func TestIndex_SkipsUnchangedFileOnRerun(t *testing.T) {
	pipe, _, root := newTestPipeline(t)
	writeRootFile(t, root, "main.go", "package main\n\nfunc Main() {}\n")

	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)

	stats, err = pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)
}

func TestIndex_ReindexesChangedFile(t *testing.T) {
	pipe, st, root := newTestPipeline(t)
	writeRootFile(t, root, "main.go", "package main\n\nfunc Main() {}\n")

	_, err := pipe.Index(t.Context())
	require.NoError(t, err)

	writeRootFile(t, root, "main.go", "package main\n\nfunc Main() {}\n\nfunc Other() {}\n")
	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesSkipped)

	f, err := st.GetFileByPath("main.go")
	require.NoError(t, err)
	chunks, err := st.ListChunksForFile(f.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestIndex_DeletesRemovedFiles(t *testing.T) {
	pipe, st, root := newTestPipeline(t)
	writeRootFile(t, root, "main.go", "package main\n\nfunc Main() {}\n")
	writeRootFile(t, root, "extra.go", "package main\n\nfunc Extra() {}\n")

	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesIndexed)

	require.NoError(t, os.Remove(filepath.Join(root, "extra.go")))

	stats, err = pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesDeleted)

	_, err = st.GetFileByPath("extra.go")
	assert.Error(t, err)
}

func TestIndex_MarksBrokenSyntaxAsFailedOrPartial(t *testing.T) {
	pipe, st, root := newTestPipeline(t)
	writeRootFile(t, root, "broken.go", "package main\n\nfunc Oops( {\n")

	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)

	f, err := st.GetFileByPath("broken.go")
	require.NoError(t, err)
	assert.NotEqual(t, chunk.QualityComplete, f.ParseQuality)
}

func TestIndex_BatchesWritesAcrossMultipleTransactions(t *testing.T) {
	root := t.TempDir()
	fs := afero.NewOsFs()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	for i := 0; i < 5; i++ {
		writeRootFile(t, root, filepath.Join("pkg", "file"+string(rune('a'+i))+".go"),
			"package pkg\n\nfunc F"+string(rune('A'+i))+"() {}\n")
	}

	registry := langparser.NewRegistry()
	w := walk.New(fs, root)
	pipe := New(fs, root, w, registry, st, WithBatchSize(2))

	stats, err := pipe.Index(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.FilesIndexed, "every file is indexed regardless of batch boundaries")

	paths, err := st.ListFilePaths()
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestClassifyQuality(t *testing.T) {
	assert.Equal(t, chunk.QualityFailed, classifyQuality(nil, 0))
	assert.Equal(t, chunk.QualityPartial, classifyQuality([]chunk.ErrorSpan{{StartByte: 0, EndByte: 10}}, 100))
	assert.Equal(t, chunk.QualityFailed, classifyQuality([]chunk.ErrorSpan{{StartByte: 0, EndByte: 60}}, 100))
}
