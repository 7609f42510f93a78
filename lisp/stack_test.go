// Copyright © 2026 The Spill authors

package lisp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

func TestCallStack(t *testing.T) {
	s := &lisp.CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())
	loc := &token.Location{File: "test", Line: 3, Col: 1}
	require.NoError(t, s.Push(loc, "outer"))
	require.NoError(t, s.Push(nil, ""))
	err := s.Push(nil, "deep")
	require.Error(t, err)
	assert.IsType(t, &lisp.StackOverflowError{}, err)
	assert.Equal(t, 2, s.Height())
	assert.Equal(t, "<anonymous>", s.Top().String())

	cp := s.Copy()
	s.Pop()
	assert.Equal(t, 1, s.Height())
	assert.Equal(t, 2, cp.Height())

	var buf bytes.Buffer
	_, err = cp.DebugPrint(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Stack Trace [2 frames -- entrypoint last]:\n"+
		"  height 1: <anonymous>\n"+
		"  height 0: test:3:1: outer\n", buf.String())

	s.Pop()
	assert.Panics(t, func() { s.Pop() })
}
