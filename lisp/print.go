// Copyright © 2026 The Spill authors

package lisp

import (
	"bytes"
	"strconv"
	"strings"
)

var stringEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)

// String returns the canonical representation of v.  The canonical form of
// any value built from integers, symbols, strings and lists reads back as an
// equal value.
func (v *LVal) String() string {
	var buf bytes.Buffer
	v.write(&buf, false)
	return buf.String()
}

// Display returns the representation of v used for program output.  It is
// the canonical form except that strings are written without quotes or
// escapes.
func (v *LVal) Display() string {
	var buf bytes.Buffer
	v.write(&buf, true)
	return buf.String()
}

func (v *LVal) write(buf *bytes.Buffer, display bool) {
	switch v.Type {
	case LInt:
		buf.WriteString(strconv.Itoa(v.Int))
	case LSymbol:
		buf.WriteString(v.Str)
	case LString:
		if display {
			buf.WriteString(v.Str)
			return
		}
		buf.WriteByte('"')
		buf.WriteString(stringEscaper.Replace(v.Str))
		buf.WriteByte('"')
	case LSExpr:
		buf.WriteByte('(')
		for i, c := range v.Cells {
			if i > 0 {
				buf.WriteByte(' ')
			}
			c.write(buf, display)
		}
		buf.WriteByte(')')
	case LFun:
		if v.IsBuiltin() || len(v.Cells) < 2 {
			buf.WriteString("<builtin ")
			buf.WriteString(v.Str)
			buf.WriteByte('>')
			return
		}
		buf.WriteString("<fn ")
		v.Cells[0].write(buf, false)
		buf.WriteByte(' ')
		v.Cells[1].write(buf, false)
		buf.WriteByte('>')
	case LError:
		buf.WriteString((*ErrorVal)(v).baseMessage())
	default:
		buf.WriteString("<invalid>")
	}
}
