package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIContext(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"src/pages/Home.tsx", "pages"},
		{"src/components/Button.tsx", "components"},
		{"app/views/admin/index.html", "views"},
		{"src/Screens/Login.tsx", "screens"},
		{"internal/ui/widgets/menu.go", "ui"},
		{"src/Widget.tsx", "tsx"},
		{"src/Widget.jsx", "jsx"},
		{"internal/store/store.go", ""},
		{"README.md", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, UIContext(c.path), "path %s", c.path)
	}
}

func TestLanguage_IsASTAware(t *testing.T) {
	assert.True(t, LangGo.IsASTAware())
	assert.True(t, LangMarkdown.IsASTAware())
	assert.False(t, LangPDF.IsASTAware())
	assert.False(t, LangPlaintext.IsASTAware())
	assert.False(t, LangUnknown.IsASTAware())
}

func TestChunk_Summary(t *testing.T) {
	c := Chunk{
		ID:         42,
		Kind:       KindFunction,
		Identifier: "Add",
		StartLine:  3,
		EndLine:    5,
		Content:    "func Add(a, b int) int { return a + b }",
	}
	s := c.Summary("internal/mathutil/add.go")
	assert.Equal(t, Summary{
		ChunkID:    42,
		FilePath:   "internal/mathutil/add.go",
		Kind:       KindFunction,
		Identifier: "Add",
		StartLine:  3,
		EndLine:    5,
	}, s)
}
