// Copyright © 2026 The Spill authors

package profiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/spill/lisp"
)

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{
			name:     "empty",
			label:    "",
			expected: "",
		},
		{
			name:     "normal",
			label:    "@trace{ Add-It }",
			expected: "Add-It",
		},
		{
			name:     "mutator",
			label:    "Sets things. @trace{ user-add! }",
			expected: "user-add!",
		},
		{
			name:     "predicate",
			label:    "@trace { user-exists? }",
			expected: "user-exists?",
		},
		{
			name:     "spaces",
			label:    "@trace{Add  It}",
			expected: "Add_It",
		},
		{
			name:     "no label",
			label:    "@trace",
			expected: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := cleanLabel(tc.label)
			assert.Equal(t, tc.expected, actual, "cleanLabel(%s)", tc.label)
		})
	}
}

func TestPrettyFunName(t *testing.T) {
	traced := lisp.Closure(nil, lisp.Formals(), lisp.Int(1), "@trace{ Custom Label }")
	traced.Str = "f"
	plain := lisp.Closure(nil, lisp.Formals(), lisp.Int(1), "")

	p := &profiler{}
	p.applyConfigs(WithDocLabeler(), WithDocFilter())
	label, name := p.prettyFunName(traced)
	assert.Equal(t, "Custom_Label", label)
	assert.Equal(t, "f", name)
	label, name = p.prettyFunName(plain)
	assert.Equal(t, "anonymous", label)
	assert.Equal(t, "anonymous", name)

	assert.True(t, p.skipTrace(traced), "disabled profilers skip everything")
	assert.NoError(t, p.Enable())
	assert.Error(t, p.Enable())
	assert.False(t, p.skipTrace(traced))
	assert.True(t, p.skipTrace(plain))
	assert.True(t, p.skipTrace(lisp.Int(1)))
}
