package walk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dirOf(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func dirOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

func TestWalker_BasicEnumeration(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")
	writeFile(t, fs, "/repo/pkg/util.go", "package pkg\n")

	w := New(fs, "/repo")
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "main.go", entries[0].Path)
	assert.Equal(t, "pkg/util.go", entries[1].Path)
}

func TestWalker_DeterministicOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/zeta.go", "z\n")
	writeFile(t, fs, "/repo/alpha.go", "a\n")
	writeFile(t, fs, "/repo/mid/beta.go", "b\n")

	w := New(fs, "/repo")
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"alpha.go", "mid/beta.go", "zeta.go"}, paths)
}

func TestWalker_DenyDirsExcluded(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")
	writeFile(t, fs, "/repo/node_modules/lib/index.js", "module.exports = {}\n")
	writeFile(t, fs, "/repo/.git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, fs, "/repo/vendor/dep/dep.go", "package dep\n")
	writeFile(t, fs, "/repo/dist/out.js", "x\n")
	writeFile(t, fs, "/repo/build/out.o", "x\n")
	writeFile(t, fs, "/repo/target/out.class", "x\n")

	w := New(fs, "/repo")
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.go", entries[0].Path)
}

func TestWalker_DotfilesSkipped(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")
	writeFile(t, fs, "/repo/.env", "SECRET=1\n")
	writeFile(t, fs, "/repo/.hidden/file.go", "package hidden\n")

	w := New(fs, "/repo")
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.go", entries[0].Path)
}

func TestWalker_MaxBytesExcludesLargeFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/small.go", "small\n")
	writeFile(t, fs, "/repo/big.go", string(make([]byte, 1000)))

	w := New(fs, "/repo", WithMaxBytes(100))
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "small.go", entries[0].Path)
}

func TestWalker_IgnoreGlobsExcludeMatches(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")
	writeFile(t, fs, "/repo/main_test.go", "package main\n")
	writeFile(t, fs, "/repo/fixtures/sample.min.js", "x\n")

	w := New(fs, "/repo", WithIgnoreGlobs([]string{"**/*_test.go", "**/*.min.js"}))
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.go", entries[0].Path)
}

func TestWalker_IgnoreFileExcludesListedPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")
	writeFile(t, fs, "/repo/secrets.txt", "password\n")
	writeFile(t, fs, "/repo/.rlmignore", "secrets.txt\n")

	w := New(fs, "/repo", WithIgnoreFile(fs, "/repo", ".rlmignore"))
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.go", entries[0].Path)
}

func TestWalker_ContextCancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/main.go", "package main\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(fs, "/repo")
	_, err := w.Walk(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalker_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))

	w := New(fs, "/repo")
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// The symlink tests below need a real filesystem: afero.MemMapFs does not
// support symlinks at all, so they use afero.NewOsFs() over t.TempDir(),
// matching the convention internal/edit and internal/ingest's tests use for
// real-filesystem coverage.

func TestWalker_FollowsSymlinkedDirectoryWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "inner.go"), []byte("package real\n"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	w := New(afero.NewOsFs(), root)
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "link/inner.go")
}

func TestWalker_SkipsSymlinkEscapingRoot(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.go"), []byte("package outside\n"), 0o644))

	root := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	w := New(afero.NewOsFs(), root)
	entries, err := w.Walk(context.Background())
	require.NoError(t, err)

	for _, e := range entries {
		assert.NotContains(t, e.Path, "secret.go")
	}

	found := false
	for _, warning := range w.Warnings() {
		if warning.Path == "escape" {
			found = true
		}
	}
	assert.True(t, found, "expected a warning for the out-of-root symlink")
}

func TestWalker_DetectsSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "back")))

	w := New(afero.NewOsFs(), root)
	_, err := w.Walk(context.Background())
	require.NoError(t, err)

	var sawCycle bool
	for _, warning := range w.Warnings() {
		if warning.Message == "symlink cycle detected" {
			sawCycle = true
		}
	}
	assert.True(t, sawCycle)
}
