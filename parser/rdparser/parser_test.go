// Copyright © 2026 The Spill authors

package rdparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/spill/lisp"
	"github.com/luthersystems/spill/parser/token"
)

func TestParser(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`0`, `0`},
		{`12`, `12`},
		{`-1`, `-1`},
		{`+1`, `1`},
		{`abc`, `abc`},
		{`abc?`, `abc?`},
		{`set!`, `set!`},
		{`-`, `-`},
		{`-x`, `-x`},
		{`'xyz`, `(quote xyz)`},
		{"`xyz", `(quasiquote xyz)`},
		{"`(a ,b ,@c)", `(quasiquote (a (unquote b) (unquote-splicing c)))`},
		{`"xyz"`, `"xyz"`},
		{`"x\nyz"`, `"x\nyz"`},
		{`"x\\yz"`, `"x\\yz"`},
		{`"x\"yz"`, `"x\"yz"`},
		{`"x\'yz"`, `"x'yz"`},
		{`"\x41\x62"`, `"Ab"`},
		{`""`, `""`},
		{`()`, `()`},
		{`'()`, `(quote ())`},
		{`(1 2 3)`, `(1 2 3)`},
		{`(1 "abc" '(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`((a) ((b)))`, `((a) ((b)))`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		s := token.NewScanner(name, strings.NewReader(test.source))
		p := New(s)
		exprs, err := p.ParseProgram()
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		if !assert.Len(t, exprs, 1, "test %d", i) {
			continue
		}
		testLValLocation(t, exprs[0])
		assert.Equal(t, test.output, exprs[0].String(), "test %d", i)
	}
}

// Rendering a parsed value and parsing the rendering again must produce an
// equal value.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		`42`, `-7`, `sym`, `"a \"quoted\"\nline\\"`, `(a (b "c" 1) ())`,
		`'x`, "`(a ,b ,@c)", `"\x7f"`,
	}
	for _, src := range sources {
		first, err := New(token.NewScanner("first", strings.NewReader(src))).ParseProgram()
		require.NoError(t, err, src)
		require.Len(t, first, 1, src)
		rendered := first[0].String()
		second, err := New(token.NewScanner("second", strings.NewReader(rendered))).ParseProgram()
		require.NoError(t, err, rendered)
		require.Len(t, second, 1, rendered)
		assert.True(t, lisp.Equal(first[0], second[0]), "%s: %v != %v", src, first[0], second[0])
	}
}

func TestComments(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`(1 2 3) ; A comment`, `(1 2 3)`},
		{`	; A comment
			(1 "abc" '(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`(1 "abc" ; A comment
			'(x y z))`, `(1 "abc" (quote (x y z)))`},
		{`(1 "abc" ; A comment
			)`, `(1 "abc")`},
		{`;{{ a block
			comment ;}} (1 2)`, `(1 2)`},
		{`(1 #| inline |# 2)`, `(1 2)`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(token.NewScanner(name, strings.NewReader(test.source)))
		exprs, err := p.ParseProgram()
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		if assert.Len(t, exprs, 1, "test %d", i) {
			assert.Equal(t, test.output, exprs[0].String(), "test %d", i)
		}
	}
}

func testLValLocation(t *testing.T, v *lisp.LVal) {
	if v.Source == nil {
		t.Errorf("value missing source location: %v", v)
	}
	for _, v := range v.Cells {
		testLValLocation(t, v)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source string
		errmsg string
	}{
		{`(1 2 3`, `test0:1:1: syntax-error: unmatched (`},
		{`(1 2 3)
  )`, `test1:2:3: syntax-error: unmatched )`},
		{`(a ,(b))`, `test2:1:5: syntax-error: expected identifier but got (`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(token.NewScanner(name, strings.NewReader(test.source)))
		exprs, err := p.ParseProgram()
		if !assert.Error(t, err, "test %d", i) {
			continue
		}
		assert.Nil(t, exprs)
		assert.Equal(t, test.errmsg, err.Error(), "test %d", i)
	}
}

func TestUnterminatedString(t *testing.T) {
	p := New(token.NewScanner("test", strings.NewReader(`(pr "abc`)))
	_, err := p.ParseProgram()
	var lerr *lisp.ErrorVal
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, lisp.CondSyntaxError, lerr.Condition())
}

func TestParseEach(t *testing.T) {
	p := New(token.NewScanner("test", strings.NewReader(`1 (a b) "c" )`)))
	var seen []string
	err := p.ParseEach(func(v *lisp.LVal) error {
		seen = append(seen, v.String())
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, []string{`1`, `(a b)`, `"c"`}, seen)

	stop := errors.New("stop")
	p = New(token.NewScanner("test", strings.NewReader(`1 2 3`)))
	n := 0
	err = p.ParseEach(func(v *lisp.LVal) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 2, n)
}

func TestReaderLocation(t *testing.T) {
	r := NewReader()
	lr, ok := r.(lisp.LocationReader)
	require.True(t, ok)
	exprs, err := lr.ReadLocation("core.spl", "/lib/core.spl", strings.NewReader("\n  (foo)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	require.NotNil(t, exprs[0].Source)
	assert.Equal(t, "core.spl", exprs[0].Source.File)
	assert.Equal(t, "/lib/core.spl", exprs[0].Source.Path)
	assert.Equal(t, 2, exprs[0].Source.Line)
	assert.Equal(t, 3, exprs[0].Source.Col)
}
