package rlmerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_ExitCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, 2},
		{KindAmbiguous, 3},
		{KindParseRejected, 4},
		{KindIO, 5},
		{KindUnsupportedForEdit, 6},
		{KindStore, 7},
		{KindWalk, 1},
		{KindCancelled, 1},
		{Kind("something_unknown"), 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.kind.ExitCode(), "kind %s", c.kind)
	}
}

func TestNew(t *testing.T) {
	err := New(KindNotFound, "symbol not found")
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Nil(t, err.Cause)
	assert.Equal(t, "not_found: symbol not found", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, "failed to write file", cause)
	assert.Equal(t, KindIO, err.Kind)
	assert.Same(t, cause, err.Cause)
	assert.Equal(t, "io: failed to write file: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestParseRejected(t *testing.T) {
	spans := []ErrorSpan{{StartLine: 3, EndLine: 3, StartCol: 1, EndCol: 5}}
	err := ParseRejected("unexpected token", spans)
	assert.Equal(t, KindParseRejected, err.Kind)
	assert.Equal(t, spans, err.Spans)
}

func TestAs(t *testing.T) {
	base := New(KindAmbiguous, "multiple matches")

	t.Run("direct", func(t *testing.T) {
		got, ok := As(base)
		assert.True(t, ok)
		assert.Same(t, base, got)
	})

	t.Run("wrapped by fmt.Errorf", func(t *testing.T) {
		wrapped := fmt.Errorf("resolving symbol: %w", base)
		got, ok := As(wrapped)
		assert.True(t, ok)
		assert.Same(t, base, got)
	})

	t.Run("nil", func(t *testing.T) {
		got, ok := As(nil)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("unrelated error", func(t *testing.T) {
		got, ok := As(errors.New("plain"))
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
