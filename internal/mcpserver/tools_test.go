package mcpserver

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-dev/rlm/internal/chunk"
	"github.com/outpost-dev/rlm/internal/edit"
	"github.com/outpost-dev/rlm/internal/rlmerr"
)

func TestArgsOf(t *testing.T) {
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{
		Arguments: map[string]interface{}{"file": "a.go"},
	}}

	args, ok := argsOf(req)
	require.True(t, ok)
	assert.Equal(t, "a.go", args["file"])
}

func TestArgsOf_WrongType(t *testing.T) {
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: "not a map"}}

	_, ok := argsOf(req)
	assert.False(t, ok)
}

func TestStringResult(t *testing.T) {
	result := stringResult(map[string]int{"a": 1})
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, 1, decoded["a"])
}

func TestErrResult_TypedError(t *testing.T) {
	result, err := errResult(rlmerr.New(rlmerr.KindNotFound, "symbol not found"))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestErrResult_RawError(t *testing.T) {
	cause := errors.New("boom")
	result, err := errResult(cause)
	assert.Nil(t, result)
	assert.Same(t, cause, err)
}

func TestSelectorFromArgs(t *testing.T) {
	sel := selectorFromArgs(map[string]interface{}{
		"identifier": "Add",
		"kind":       "function",
		"start_line": float64(3),
		"end_line":   float64(5),
	})
	assert.Equal(t, edit.Selector{
		Identifier: "Add",
		Kind:       chunk.KindFunction,
		StartLine:  3,
		EndLine:    5,
	}, sel)
}

func TestSelectorFromArgs_Minimal(t *testing.T) {
	sel := selectorFromArgs(map[string]interface{}{"identifier": "Add"})
	assert.Equal(t, "Add", sel.Identifier)
	assert.Equal(t, 0, sel.StartLine)
	assert.Equal(t, 0, sel.EndLine)
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, clampInt(0, 1, 200))
	assert.Equal(t, 200, clampInt(1000, 1, 200))
	assert.Equal(t, 50, clampInt(50, 1, 200))
}
