package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes rootCmd with args against root, capturing stdout.
func runCLI(t *testing.T, root string, args ...string) string {
	t.Helper()
	oldRoot := rootDir
	rootDir = root
	defer func() { rootDir = oldRoot }()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	require.NoError(t, execErr)
	return buf.String()
}

func TestCLI_IndexAndMap(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc Main() {}\n"), 0o644))

	indexOut := runCLI(t, root, "index")
	assert.Contains(t, indexOut, "1 indexed")

	mapOut := runCLI(t, root, "map", "main.go")
	assert.Contains(t, mapOut, "Main")
}

func TestCLI_Tree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc Main() {}\n"), 0o644))
	runCLI(t, root, "index")

	out := runCLI(t, root, "tree", "main.go")
	assert.Contains(t, out, "function Main")
}

func TestParsePosition(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"body_end", false},
		{"body_start", false},
		{"before_line", false},
		{"after_line", false},
		{"nonsense", true},
	}
	for _, c := range cases {
		_, err := parsePosition(c.in)
		if c.wantErr {
			assert.Error(t, err, "position %q", c.in)
		} else {
			assert.NoError(t, err, "position %q", c.in)
		}
	}
}

func TestKindOrEmpty(t *testing.T) {
	assert.Equal(t, "", string(kindOrEmpty("")))
	assert.Equal(t, "function", string(kindOrEmpty("function")))
}
